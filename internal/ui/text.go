// Package ui provides terminal styling for tasks CLI output.
package ui

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens text to maxLen runes, appending a single-character
// ellipsis when truncation occurs. UTF-8 safe.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen == 1 {
		return "…"
	}
	runes := []rune(text)
	return string(runes[:maxLen-1]) + "…"
}

// CollapseSpace replaces every run of whitespace with a single space and
// trims the ends. Multi-line text becomes one line.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// WrapText wraps text at word boundaries to fit within maxWidth.
// Preserves existing line breaks.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(wrapLine(line, maxWidth))
	}

	return result.String()
}

// wrapLine wraps a single line at word boundaries.
func wrapLine(line string, maxWidth int) string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(line) {
		wordLen := utf8.RuneCountInString(word)

		// First word on a line goes in even if too long.
		if currentLen == 0 {
			result.WriteString(word)
			currentLen = wordLen
			continue
		}

		if currentLen+1+wordLen <= maxWidth {
			result.WriteString(" ")
			result.WriteString(word)
			currentLen += 1 + wordLen
		} else {
			result.WriteString("\n")
			result.WriteString(word)
			currentLen = wordLen
		}
	}

	return result.String()
}
