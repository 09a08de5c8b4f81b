package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short text unchanged", "fix bug", 20, "fix bug"},
		{"exact length unchanged", "abcde", 5, "abcde"},
		{"truncated with ellipsis", "investigate the flaky retry loop", 12, "investigate…"},
		{"multibyte safe", "日本語のテキストです", 5, "日本語の…"},
		{"max one", "hello", 1, "…"},
		{"zero max", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single line unchanged", "one two", "one two"},
		{"wrapped lines joined", "first line\n  second line", "first line second line"},
		{"tabs and runs collapsed", "a\t\tb   c", "a b c"},
		{"leading and trailing trimmed", "  padded  ", "padded"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CollapseSpace(tt.text); got != tt.want {
				t.Errorf("CollapseSpace(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	got := WrapText("alpha beta gamma delta", 11)
	want := "alpha beta\ngamma delta"
	if got != want {
		t.Errorf("WrapText = %q, want %q", got, want)
	}

	// Existing breaks survive.
	got = WrapText("one\ntwo", 80)
	if got != "one\ntwo" {
		t.Errorf("WrapText should preserve line breaks, got %q", got)
	}

	// A word longer than the width stays on its own line.
	got = WrapText("supercalifragilistic ok", 10)
	if got != "supercalifragilistic\nok" {
		t.Errorf("long word handling, got %q", got)
	}
}

func TestRenderStatusFamilies(t *testing.T) {
	// Styles may be no-ops without a TTY; the contract here is that the
	// status text itself always survives rendering.
	for _, status := range []string{"done", "done-archived", "pending", "unknown", "blocked"} {
		got := RenderStatus(status)
		if got == "" {
			t.Errorf("RenderStatus(%q) returned empty string", status)
		}
	}
}
