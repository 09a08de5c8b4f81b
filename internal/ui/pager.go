// Package ui provides terminal styling and pager support for tasks CLI output.
package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions controls pager behavior
type PagerOptions struct {
	// NoPager disables pager for this command (--no-pager flag)
	NoPager bool
}

// shouldUsePager determines if output should be piped to a pager.
// Returns false if:
// - NoPager option is set
// - TASKS_NO_PAGER environment variable is set
// - agent mode is active (agents want the raw stream)
// - stdout is not a TTY (e.g., piped to another command)
func shouldUsePager(opts PagerOptions) bool {
	if opts.NoPager {
		return false
	}

	if os.Getenv("TASKS_NO_PAGER") != "" {
		return false
	}

	if IsAgentMode() {
		return false
	}

	return IsTerminal()
}

// getPagerCommand returns the pager command to use.
// Checks TASKS_PAGER, then PAGER, defaults to "less".
func getPagerCommand() string {
	if pager := os.Getenv("TASKS_PAGER"); pager != "" {
		return pager
	}
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	return "less"
}

// contentHeight counts the number of lines in the content.
func contentHeight(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// terminalHeight returns the stdout height in lines, or 0 when undetectable.
func terminalHeight() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	_, h, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return h
}

// ToPager pipes content to a pager if appropriate.
// If pager should not be used (not a TTY, --no-pager, etc.), prints directly.
// If content fits in terminal, prints directly without pager.
func ToPager(content string, opts PagerOptions) error {
	if !shouldUsePager(opts) {
		fmt.Print(content)
		return nil
	}

	termHeight := terminalHeight()
	if termHeight > 0 && contentHeight(content) <= termHeight-1 {
		fmt.Print(content)
		return nil
	}

	pagerCmd := getPagerCommand()

	// Pager command may include arguments like "less -R".
	parts := strings.Fields(pagerCmd)
	if len(parts) == 0 {
		fmt.Print(content)
		return nil
	}

	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command is user-configurable by design
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// -R: allow ANSI color codes
	// -F: quit if content fits on one screen
	// -X: don't clear screen on exit
	if os.Getenv("LESS") == "" {
		cmd.Env = append(os.Environ(), "LESS=-RFX")
	} else {
		cmd.Env = os.Environ()
	}

	return cmd.Run()
}
