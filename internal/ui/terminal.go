// Package ui provides terminal styling for tasks CLI output.
package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsAgentMode reports whether output should stay plain for machine parsing.
// Agents set TASKS_AGENT_MODE to opt out of markdown rendering and pagers.
func IsAgentMode() bool {
	return os.Getenv("TASKS_AGENT_MODE") != ""
}

// ShouldUseColor determines whether styled output is appropriate.
// Precedence: NO_COLOR always wins, then CLICOLOR_FORCE forces color on,
// then the conventional env checks (CLICOLOR=0, dumb terminals), and
// finally the TTY/profile detection.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force := os.Getenv("CLICOLOR_FORCE"); force != "" && force != "0" {
		return true
	}
	if termenv.EnvNoColor() {
		return false
	}
	if !IsTerminal() {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// ShouldUseEmoji reports whether emoji are appropriate in output.
func ShouldUseEmoji() bool {
	if os.Getenv("TASKS_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}

// TerminalWidth returns the stdout width, or 0 when undetectable.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
