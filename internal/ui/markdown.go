// Package ui provides terminal styling for tasks CLI output.
package ui

import (
	glamour "charm.land/glamour/v2"
)

// RenderMarkdown renders markdown text using glamour.
// Returns the rendered markdown or the original text if rendering fails.
// Word wraps at terminal width, capped at 100 columns for readability.
func RenderMarkdown(markdown string) string {
	// Skip glamour in agent mode to keep output clean for parsing
	if IsAgentMode() {
		return markdown
	}

	// Skip glamour if colors are disabled
	if !ShouldUseColor() {
		return markdown
	}

	const maxReadableWidth = 100
	wrapWidth := 80 // default if terminal size unavailable
	if w := TerminalWidth(); w > 0 {
		wrapWidth = w
	}
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	// Environment config respects GLAMOUR_STYLE and light/dark detection
	renderer, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return rendered
}
