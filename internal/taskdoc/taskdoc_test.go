package taskdoc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDoc = `# 007 - Fix Parser

## Status
pending

## Intent
(make the parser resilient to malformed headers)

## Work Plan
- [x] Read the failing input
- [ ] Add the guard clause
- [ ] Extend the table test
some prose in between
- [ ] Update MIND_MAP.md
- [ ] Final review
`

func TestStatusLastWins(t *testing.T) {
	doc := Parse("## Status\npending\n\n## Status\ndone\n")
	if got := doc.Status(); got != "done" {
		t.Errorf("Status() = %q, want \"done\" (last heading wins)", got)
	}
}

func TestStatusMissing(t *testing.T) {
	doc := Parse("# 001 - Something\n\nNo status here.\n")
	if got := doc.Status(); got != StatusUnknown {
		t.Errorf("Status() = %q, want %q", got, StatusUnknown)
	}
}

func TestStatusHeadingIsLastLine(t *testing.T) {
	doc := Parse("# 001 - Something\n\n## Status\n")
	if got := doc.Status(); got != StatusUnknown {
		t.Errorf("Status() = %q, want %q when heading has no following line", got, StatusUnknown)
	}
}

func TestStatusTrimsValue(t *testing.T) {
	doc := Parse("## Status\n   in progress  \n")
	if got := doc.Status(); got != "in progress" {
		t.Errorf("Status() = %q, want \"in progress\"", got)
	}
}

func TestIsDone(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"done", true},
		{"done 2026-08-25", true},
		{"pending", false},
		{"in progress", false},
		{"", false},
	}
	for _, tt := range tests {
		doc := Parse("## Status\n" + tt.status + "\n")
		if got := doc.IsDone(); got != tt.want {
			t.Errorf("IsDone() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestHeadPositionFirstUnchecked(t *testing.T) {
	doc := Parse(sampleDoc)
	if got := doc.HeadPosition(); got != "Add the guard clause" {
		t.Errorf("HeadPosition() = %q, want \"Add the guard clause\"", got)
	}
}

func TestHeadPositionEmptyRequiredField(t *testing.T) {
	doc := Parse("## References\n- **Origin**:\n- [ ] Do the thing\n")
	if got := doc.HeadPosition(); got != "- **Origin**:" {
		t.Errorf("HeadPosition() = %q, want the empty field line", got)
	}
}

func TestHeadPositionFilledFieldSkipped(t *testing.T) {
	doc := Parse("- **Origin**: M042\n- [ ] Do the thing\n")
	if got := doc.HeadPosition(); got != "Do the thing" {
		t.Errorf("HeadPosition() = %q, want \"Do the thing\" (filled field is not a gate)", got)
	}
}

func TestHeadPositionSentinelIffAllChecked(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sentinel bool
	}{
		{"all checked", "- [x] one\n- [X] two\n", true},
		{"no gates at all", "# Title\n\nprose only\n", true},
		{"one open", "- [x] one\n- [ ] two\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.content).HeadPosition()
			if (got == AllCheckedSentinel) != tt.sentinel {
				t.Errorf("HeadPosition() = %q, sentinel = %v, want %v", got, !tt.sentinel, tt.sentinel)
			}
		})
	}
}

func TestCheckNextGate(t *testing.T) {
	doc := Parse(sampleDoc)
	result, err := doc.CheckNextGate()
	if err != nil {
		t.Fatalf("CheckNextGate() error: %v", err)
	}

	if result.Checked != "Add the guard clause" {
		t.Errorf("Checked = %q, want \"Add the guard clause\"", result.Checked)
	}

	want := []string{"Extend the table test", "Update MIND_MAP.md", "Final review"}
	if len(result.Upcoming) != len(want) {
		t.Fatalf("Upcoming = %v, want %v", result.Upcoming, want)
	}
	for i := range want {
		if result.Upcoming[i] != want[i] {
			t.Errorf("Upcoming[%d] = %q, want %q", i, result.Upcoming[i], want[i])
		}
	}

	content := doc.Content()
	if !strings.Contains(content, "- [x] Add the guard clause") {
		t.Error("flipped gate not present in content")
	}
	if strings.Count(content, "- [x]") != 2 {
		t.Errorf("expected exactly 2 checked gates after one flip, content:\n%s", content)
	}
}

func TestCheckNextGatePreservesIndentation(t *testing.T) {
	doc := Parse("  - [ ] indented gate\n")
	if _, err := doc.CheckNextGate(); err != nil {
		t.Fatalf("CheckNextGate() error: %v", err)
	}
	if got := doc.Content(); got != "  - [x] indented gate\n" {
		t.Errorf("Content() = %q, want indentation preserved", got)
	}
}

func TestCheckNextGateUpcomingIncludesFields(t *testing.T) {
	doc := Parse("- [ ] first\n- **Owner**:\n- [ ] second\nprose\n- [ ] third\n- [ ] fourth\n")
	result, err := doc.CheckNextGate()
	if err != nil {
		t.Fatalf("CheckNextGate() error: %v", err)
	}
	want := []string{"- **Owner**:", "second", "third"}
	if len(result.Upcoming) != 3 {
		t.Fatalf("Upcoming = %v, want 3 entries", result.Upcoming)
	}
	for i := range want {
		if result.Upcoming[i] != want[i] {
			t.Errorf("Upcoming[%d] = %q, want %q", i, result.Upcoming[i], want[i])
		}
	}
}

func TestCheckNextGateNoOpen(t *testing.T) {
	doc := Parse("- [x] all\n- [x] checked\n")
	_, err := doc.CheckNextGate()
	if !errors.Is(err, ErrNoOpenGate) {
		t.Errorf("CheckNextGate() error = %v, want ErrNoOpenGate", err)
	}
}

func TestGateExhaustionEndsEligibility(t *testing.T) {
	doc := Parse("## Status\npending\n\n- [ ] one\n- [ ] two\n- [ ] three\n")
	if !doc.ActiveEligible() {
		t.Fatal("document should start active-eligible")
	}

	for {
		if _, err := doc.CheckNextGate(); err != nil {
			if !errors.Is(err, ErrNoOpenGate) {
				t.Fatalf("unexpected error: %v", err)
			}
			break
		}
	}

	if got := doc.HeadPosition(); got != AllCheckedSentinel {
		t.Errorf("HeadPosition() after exhaustion = %q, want sentinel", got)
	}
	if doc.ActiveEligible() {
		t.Error("document with exhausted gates must not be active-eligible, regardless of status")
	}
	if got := doc.Status(); got != "pending" {
		t.Errorf("Status() = %q, checking gates must not touch the status line", got)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		content string
		checked int
		total   int
		str     string
	}{
		{"mixed", sampleDoc, 1, 5, "1/5"},
		{"uppercase counts", "- [X] a\n- [x] b\n- [ ] c\n", 2, 3, "2/3"},
		{"no gates", "# Title\nprose\n", 0, 0, "-"},
		{"all open", "- [ ] a\n- [ ] b\n", 0, 2, "0/2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.content)
			checked, total := doc.Progress()
			if checked != tt.checked || total != tt.total {
				t.Errorf("Progress() = (%d, %d), want (%d, %d)", checked, total, tt.checked, tt.total)
			}
			if got := doc.ProgressString(); got != tt.str {
				t.Errorf("ProgressString() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestMarkDone(t *testing.T) {
	doc := Parse("## Status\npending\n\n- [ ] gate\n")
	doc.MarkDone()
	if !doc.IsDone() {
		t.Error("IsDone() = false after MarkDone()")
	}
	if got := doc.Content(); !strings.Contains(got, "## Status\ndone\n") {
		t.Errorf("Content() = %q, want status line rewritten", got)
	}
	if !strings.Contains(doc.Content(), "- [ ] gate") {
		t.Error("MarkDone() must not touch gates")
	}
}

func TestMarkDoneLastWins(t *testing.T) {
	doc := Parse("## Status\npending\n\n## Status\nblocked\n")
	doc.MarkDone()
	content := doc.Content()
	if !strings.Contains(content, "## Status\npending") {
		t.Errorf("first status section should be untouched, got:\n%s", content)
	}
	if got := doc.Status(); got != "done" {
		t.Errorf("Status() = %q, want \"done\"", got)
	}
}

func TestMarkDoneHeadingIsLastLine(t *testing.T) {
	doc := Parse("# 001 - X\n\n## Status")
	doc.MarkDone()
	if got := doc.Status(); got != "done" {
		t.Errorf("Status() = %q, want \"done\" after value line insertion", got)
	}
}

func TestMarkDoneNoHeading(t *testing.T) {
	doc := Parse("# 001 - X\n\n- [ ] gate\n")
	doc.MarkDone()
	if got := doc.Status(); got != "done" {
		t.Errorf("Status() = %q, want \"done\" after section append", got)
	}
}

func TestIntent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"intent with parens", sampleDoc, "make the parser resilient to malformed headers"},
		{"problem heading", "## Problem\n\nusers cannot log in\n", "users cannot log in"},
		{"skips blanks", "## Intent\n\n\n  real text\n", "real text"},
		{"stops at next heading", "## Intent\n## Why\nnot the intent\n", ""},
		{"no section", "# Title\nprose\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.content).Intent(); got != tt.want {
				t.Errorf("Intent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetJudgeFindingsReplacesBody(t *testing.T) {
	doc := Parse(`## Judge
- [ ] Run the judge

(judge findings appear here)

---

## Work Plan
- [ ] build it
`)
	doc.SetJudgeFindings("Finding 1: the plan skips error handling.\nFinding 2: no test for the empty case.")

	content := doc.Content()
	if strings.Contains(content, "(judge findings appear here)") {
		t.Error("old judge body still present")
	}
	if !strings.Contains(content, "Finding 1: the plan skips error handling.") {
		t.Error("new findings missing")
	}
	if !strings.Contains(content, "## Work Plan\n- [ ] build it") {
		t.Errorf("following section damaged:\n%s", content)
	}
}

func TestSetJudgeFindingsIdempotent(t *testing.T) {
	doc := Parse(sampleDoc)
	doc.SetJudgeFindings("No findings.")
	first := doc.Content()

	doc2 := Parse(first)
	doc2.SetJudgeFindings("No findings.")
	second := doc2.Content()

	if first != second {
		t.Errorf("SetJudgeFindings not idempotent:\nfirst:\n%q\nsecond:\n%q", first, second)
	}
}

func TestSetIntentReplacesBody(t *testing.T) {
	doc := Parse(sampleDoc)
	doc.SetIntent("ship the guard clause without breaking old inputs")

	content := doc.Content()
	if strings.Contains(content, "make the parser resilient") {
		t.Error("old intent body still present")
	}
	if got := doc.Intent(); got != "ship the guard clause without breaking old inputs" {
		t.Errorf("Intent() after SetIntent = %q", got)
	}
	if !strings.Contains(content, "## Work Plan\n- [x] Read the failing input") {
		t.Errorf("following section damaged:\n%s", content)
	}
}

func TestSetIntentAppendsSection(t *testing.T) {
	doc := Parse("# 001 - Something\n\n## Work Plan\n- [ ] build it\n")
	doc.SetIntent("first intent")

	if got := doc.Intent(); got != "first intent" {
		t.Errorf("Intent() = %q, want \"first intent\"", got)
	}
	if !strings.Contains(doc.Content(), "## Intent\n\nfirst intent") {
		t.Errorf("intent section not appended:\n%s", doc.Content())
	}
	if got := doc.HeadPosition(); got != "build it" {
		t.Errorf("HeadPosition() = %q, want \"build it\" (gates untouched)", got)
	}
}

func TestParseContentRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"\n",
		"one line",
		"one line\n",
		"a\n\nb\n",
		"ends without newline\nreally",
	}
	for _, content := range tests {
		if got := Parse(content).Content(); got != content {
			t.Errorf("round trip of %q = %q", content, got)
		}
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := doc.CheckNextGate(); err != nil {
		t.Fatalf("CheckNextGate() error: %v", err)
	}
	doc.MarkDone()
	if err := doc.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after save error: %v", err)
	}
	if got := reloaded.Status(); got != "done" {
		t.Errorf("reloaded Status() = %q, want \"done\"", got)
	}
	if !strings.Contains(reloaded.Content(), "- [x] Add the guard clause") {
		t.Error("flip not persisted")
	}
}

func TestSaveWithoutPath(t *testing.T) {
	doc := Parse("x\n")
	if err := doc.Save(); err == nil {
		t.Error("Save() on pathless document should fail")
	}
}
