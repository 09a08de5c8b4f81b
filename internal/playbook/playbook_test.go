package playbook

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writePatternFile(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, ".agent", "patterns")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPatternFor(t *testing.T) {
	tests := []struct {
		taskType string
		want     string
	}{
		{"feature", "Build"},
		{"refactor", "Build"},
		{"commit", "Build"},
		{"bugfix", "Investigate"},
		{"explore", "Investigate"},
		{"research", "Investigate"},
		{"spike", "Investigate"},
		{"decision", "Decide"},
		{"review", "Evaluate"},
		{"test", "Evaluate"},
	}
	for _, tt := range tests {
		got, err := PatternFor(tt.taskType)
		if err != nil {
			t.Errorf("PatternFor(%q): %v", tt.taskType, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PatternFor(%q) = %q, want %q", tt.taskType, got, tt.want)
		}
	}
}

func TestPatternForUnknown(t *testing.T) {
	_, err := PatternFor("banana")
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "unknown type") {
		t.Errorf("error = %q, want mention of unknown type", err)
	}
	// The valid set should be listed so callers can self-correct.
	if !strings.Contains(err.Error(), "bugfix") || !strings.Contains(err.Error(), "feature") {
		t.Errorf("error = %q, want valid types listed", err)
	}
}

func TestTypesSorted(t *testing.T) {
	types := Types()
	if len(types) != 10 {
		t.Fatalf("len(Types()) = %d, want 10", len(types))
	}
	if !sort.StringsAreSorted(types) {
		t.Errorf("Types() not sorted: %v", types)
	}
}

func TestLoadEmbeddedDefault(t *testing.T) {
	root := t.TempDir()

	body, err := Load(root, "feature")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.HasPrefix(body, "### Build") {
		t.Errorf("body starts with %q, want ### Build heading", firstLine(body))
	}
	if !strings.Contains(body, "- [ ]") {
		t.Error("embedded pattern has no gates")
	}
	if strings.HasSuffix(body, "\n") {
		t.Error("body should not carry a trailing newline")
	}
}

func TestLoadEmbeddedDefaultEveryPattern(t *testing.T) {
	root := t.TempDir()
	for _, taskType := range Types() {
		body, err := Load(root, taskType)
		if err != nil {
			t.Errorf("Load(%q): %v", taskType, err)
			continue
		}
		if !strings.HasPrefix(body, "### ") {
			t.Errorf("Load(%q) body starts with %q, want a ### heading", taskType, firstLine(body))
		}
	}
}

func TestLoadTOMLOverride(t *testing.T) {
	root := t.TempDir()
	writePatternFile(t, root, "build.pattern.toml", `pattern = "Build"
title = "Build"

[[gates]]
text = "Reproduce the problem"

[[gates]]
text = "Owner"
field = true
`)

	body, err := Load(root, "feature")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "### Build\n- [ ] Reproduce the problem\n- **Owner**:"
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestLoadTOMLDefaultTitle(t *testing.T) {
	root := t.TempDir()
	writePatternFile(t, root, "decide.pattern.toml", `[[gates]]
text = "List the options"
`)

	body, err := Load(root, "decision")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Pattern name fills in when the file names neither pattern nor title.
	if !strings.HasPrefix(body, "### Decide\n") {
		t.Errorf("body = %q, want ### Decide heading", body)
	}
}

func TestLoadTOMLParseError(t *testing.T) {
	root := t.TempDir()
	writePatternFile(t, root, "build.pattern.toml", "gates = [unclosed")

	_, err := Load(root, "feature")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "build.pattern.toml") {
		t.Errorf("error = %q, want file path in message", err)
	}
}

func TestLoadSkillBlock(t *testing.T) {
	root := t.TempDir()
	skill := "# Playbook\n\n" +
		"### Build\n\n" +
		"```markdown\n" +
		"- [ ] Custom gate one\n" +
		"- [ ] Custom gate two\n" +
		"```\n\n" +
		"### Decide\n\n" +
		"```markdown\n" +
		"- [ ] Other gate\n" +
		"```\n"
	writePatternFile(t, root, "SKILL.md", skill)

	body, err := Load(root, "feature")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "- [ ] Custom gate one\n- [ ] Custom gate two"
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestLoadTOMLBeatsSkill(t *testing.T) {
	root := t.TempDir()
	writePatternFile(t, root, "SKILL.md", "### Build\n\n```markdown\n- [ ] From skill\n```\n")
	writePatternFile(t, root, "build.pattern.toml", `[[gates]]
text = "From toml"
`)

	body, err := Load(root, "feature")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(body, "From toml") {
		t.Errorf("body = %q, want the TOML override to win", body)
	}
}

func TestSource(t *testing.T) {
	root := t.TempDir()

	if got := Source(root, "feature"); got != "embedded:build.md" {
		t.Errorf("Source = %q, want embedded:build.md", got)
	}

	path := writePatternFile(t, root, "build.pattern.toml", `[[gates]]
text = "g"
`)
	if got := Source(root, "feature"); got != path {
		t.Errorf("Source = %q, want %q", got, path)
	}
}

func TestExtractSkillBlock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		pattern string
		want    string
	}{
		{
			name:    "missing heading",
			content: "### Other\n\n```markdown\n- [ ] x\n```\n",
			pattern: "Build",
			want:    "",
		},
		{
			name:    "heading without block",
			content: "### Build\n\nProse only.\n\n### Next\n",
			pattern: "Build",
			want:    "",
		},
		{
			name:    "stops at closing fence",
			content: "### Build\n```markdown\n- [ ] a\n```\n- [ ] outside\n",
			pattern: "Build",
			want:    "- [ ] a",
		},
		{
			name:    "stops at next section outside a fence",
			content: "### Build\nintro\n### Decide\n```markdown\n- [ ] b\n```\n",
			pattern: "Build",
			want:    "",
		},
		{
			name:    "indented heading still matches",
			content: "  ### Build\n```markdown\n- [ ] a\n```\n",
			pattern: "Build",
			want:    "- [ ] a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractSkillBlock(tt.content, tt.pattern)
			if got != tt.want {
				t.Errorf("extractSkillBlock = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSkillGuide(t *testing.T) {
	root := t.TempDir()
	if got := SkillGuide(root); got != "" {
		t.Errorf("SkillGuide on empty root = %q, want empty", got)
	}

	writePatternFile(t, root, "SKILL.md", "# Guide\n\nDesign tasks with care.\n\n## Mind Map\n\nNot relevant here.\n")
	got := SkillGuide(root)
	if strings.Contains(got, "Not relevant") {
		t.Errorf("SkillGuide = %q, want mind map section trimmed", got)
	}
	if !strings.Contains(got, "Design tasks with care.") {
		t.Errorf("SkillGuide = %q, want guide body kept", got)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
