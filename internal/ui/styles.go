// Package ui provides terminal styling for tasks CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Ayu theme color palette
var (
	ColorDone = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorPending = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorBlocked = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
)

// Status styles - consistent across all commands
var (
	DoneStyle    = lipgloss.NewStyle().Foreground(ColorDone)
	PendingStyle = lipgloss.NewStyle().Foreground(ColorPending)
	BlockedStyle = lipgloss.NewStyle().Foreground(ColorBlocked)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle  = lipgloss.NewStyle().Foreground(ColorAccent)
)

// HeaderStyle for section headers - bold with accent color
var HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// Status icons
const (
	IconDone    = "✓"
	IconPending = "○"
	IconWarn    = "⚠"
)

// RenderDone renders text with done (green) styling
func RenderDone(s string) string {
	return DoneStyle.Render(s)
}

// RenderPending renders text with pending (yellow) styling
func RenderPending(s string) string {
	return PendingStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderHeader renders a section header in uppercase with accent color
func RenderHeader(s string) string {
	return HeaderStyle.Render(strings.ToUpper(s))
}

// RenderStatus styles a derived status token by family: the done* family is
// green, unknown is muted, everything else (the open family) is yellow.
func RenderStatus(status string) string {
	switch {
	case strings.HasPrefix(status, "done"):
		return DoneStyle.Render(status)
	case status == "unknown":
		return MutedStyle.Render(status)
	default:
		return PendingStyle.Render(status)
	}
}
