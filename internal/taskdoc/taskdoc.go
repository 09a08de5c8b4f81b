// Package taskdoc parses and mutates task documents.
//
// A task document is a markdown file with a small fixed vocabulary: a
// status heading whose following line carries the status token, checkbox
// lines ("gates") in two states, and free-text sections. The document is
// parsed once per operation into a Document; mutations happen in memory
// and Save writes the whole file back atomically, so a reader never sees
// a half-applied change.
package taskdoc

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/gatework/tasks/internal/lockfile"
)

// FileName is the document file inside each task directory.
const FileName = "task.md"

const (
	// StatusHeading introduces the status value on its following line.
	// The last occurrence wins, so status can be appended rather than
	// edited in place.
	StatusHeading = "## Status"

	// StatusUnknown is reported when no status heading is present or the
	// heading is the final line.
	StatusUnknown = "unknown"

	// StatusDone is the token family prefix that closes a task.
	StatusDone = "done"

	// AllCheckedSentinel is the head position of a document with no
	// unchecked gates left.
	AllCheckedSentinel = "(all gates checked)"
)

const (
	uncheckedMarker = "- [ ]"
	checkedMarker   = "- [x]"
	checkedUpper    = "- [X]"
	fieldMarker     = "- **"
	judgeHeading    = "## Judge"
	intentHeading   = "## Intent"
)

// ErrNoOpenGate is returned by CheckNextGate when every gate is already
// checked.
var ErrNoOpenGate = errors.New("no open gates")

// lockTimeout bounds how long Save waits for a sibling process before
// proceeding unlocked.
const lockTimeout = 2 * time.Second

// Document is one parsed task file. Lines are retained verbatim so that
// serialization reproduces the input byte-for-byte apart from the applied
// mutation.
type Document struct {
	// Path is where Save writes. Empty for in-memory documents.
	Path string

	lines           []string
	trailingNewline bool
}

// Parse builds a Document from raw content.
func Parse(content string) *Document {
	d := &Document{}
	if content == "" {
		return d
	}
	if strings.HasSuffix(content, "\n") {
		d.trailingNewline = true
		content = strings.TrimSuffix(content, "\n")
	}
	d.lines = strings.Split(content, "\n")
	return d
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 - task paths come from the store
	if err != nil {
		return nil, err
	}
	d := Parse(string(data))
	d.Path = path
	return d, nil
}

// Content serializes the document back to text.
func (d *Document) Content() string {
	s := strings.Join(d.lines, "\n")
	if d.trailingNewline {
		s += "\n"
	}
	return s
}

// Save atomically replaces the file with the current content. A sidecar
// advisory lock is taken best-effort: when another process holds it past
// the timeout, or the platform has no lock support, the write proceeds
// unlocked (last writer wins, the documented degradation).
func (d *Document) Save() error {
	if d.Path == "" {
		return errors.New("document has no path")
	}
	if lock, err := lockfile.Acquire(d.Path+".lock", lockTimeout); err == nil {
		defer lock.Release()
	}
	if err := atomic.WriteFile(d.Path, strings.NewReader(d.Content())); err != nil {
		return fmt.Errorf("writing %s: %w", d.Path, err)
	}
	return nil
}

// Status returns the trimmed line following the last status heading, or
// StatusUnknown when the heading is absent or has nothing after it.
func (d *Document) Status() string {
	statusIdx := -1
	for i, line := range d.lines {
		if strings.TrimSpace(line) == StatusHeading {
			statusIdx = i
		}
	}
	if statusIdx >= 0 && statusIdx+1 < len(d.lines) {
		return strings.TrimSpace(d.lines[statusIdx+1])
	}
	return StatusUnknown
}

// IsDone reports whether the status is in the done family (prefix match,
// so "done 2026-08-25" still counts).
func (d *Document) IsDone() bool {
	return strings.HasPrefix(d.Status(), StatusDone)
}

// HeadPosition returns the text of the first unchecked gate, or the whole
// line of the first still-empty required field (bold field marker ending in
// a colon), whichever comes first in document order. When neither exists,
// every gate is checked and AllCheckedSentinel is returned.
func (d *Document) HeadPosition() string {
	for _, line := range d.lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, uncheckedMarker) {
			return strings.TrimSpace(stripped[len(uncheckedMarker):])
		}
		if strings.HasSuffix(stripped, ":") && strings.HasPrefix(stripped, fieldMarker) {
			return stripped
		}
	}
	return AllCheckedSentinel
}

// ActiveEligible reports whether this task can be "the" active task: not
// done and with a head position that is a real gate, not a parenthesized
// sentinel.
func (d *Document) ActiveEligible() bool {
	return !d.IsDone() && !strings.HasPrefix(d.HeadPosition(), "(")
}

// GateCheck reports a checked gate and a short preview of what remains.
type GateCheck struct {
	Checked  string
	Upcoming []string
}

// CheckNextGate flips the first unchecked checkbox in place, preserving
// every other byte of the line, and collects up to three upcoming
// gate-shaped lines (unchecked boxes or empty required fields) after it.
// The mutation is in memory; call Save to persist. Returns ErrNoOpenGate
// when nothing is left to check.
func (d *Document) CheckNextGate() (*GateCheck, error) {
	checkedIdx := -1
	var checkedText string
	for i, line := range d.lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, uncheckedMarker) {
			checkedText = strings.TrimSpace(stripped[len(uncheckedMarker):])
			d.lines[i] = strings.Replace(line, uncheckedMarker, checkedMarker, 1)
			checkedIdx = i
			break
		}
	}
	if checkedIdx == -1 {
		return nil, ErrNoOpenGate
	}

	var upcoming []string
	for _, line := range d.lines[checkedIdx+1:] {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, uncheckedMarker):
			upcoming = append(upcoming, strings.TrimSpace(stripped[len(uncheckedMarker):]))
		case strings.HasSuffix(stripped, ":") && strings.HasPrefix(stripped, fieldMarker):
			upcoming = append(upcoming, stripped)
		default:
			continue
		}
		if len(upcoming) >= 3 {
			break
		}
	}

	return &GateCheck{Checked: checkedText, Upcoming: upcoming}, nil
}

// Progress counts checked and total checkbox lines.
func (d *Document) Progress() (checked, total int) {
	for _, line := range d.lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, checkedMarker), strings.HasPrefix(stripped, checkedUpper):
			checked++
			total++
		case strings.HasPrefix(stripped, uncheckedMarker):
			total++
		}
	}
	return checked, total
}

// ProgressString renders progress as "checked/total", or "-" for a
// document with no gates at all, which is distinct from "0/N".
func (d *Document) ProgressString() string {
	checked, total := d.Progress()
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", checked, total)
}

// MarkDone sets the line after the last status heading to the done token,
// appending the value line when the heading is the final line and the
// whole section when no heading exists.
func (d *Document) MarkDone() {
	statusIdx := -1
	for i, line := range d.lines {
		if strings.TrimSpace(line) == StatusHeading {
			statusIdx = i
		}
	}
	switch {
	case statusIdx == -1:
		if len(d.lines) > 0 && strings.TrimSpace(d.lines[len(d.lines)-1]) != "" {
			d.lines = append(d.lines, "")
		}
		d.lines = append(d.lines, StatusHeading, StatusDone)
		d.trailingNewline = true
	case statusIdx+1 >= len(d.lines):
		d.lines = append(d.lines, StatusDone)
		d.trailingNewline = true
	default:
		d.lines[statusIdx+1] = StatusDone
	}
}

// SetJudgeFindings replaces the body of the judge section (everything
// between the heading and the next "##" heading) with text, appending the
// section when absent. Idempotent: applying the same findings twice yields
// identical content.
func (d *Document) SetJudgeFindings(text string) {
	d.setSection(judgeHeading, text)
}

// SetIntent replaces the body of the intent section, appending the section
// when absent.
func (d *Document) SetIntent(text string) {
	d.setSection(intentHeading, text)
}

// setSection rewrites everything between heading and the next "##" heading.
func (d *Document) setSection(heading, text string) {
	body := strings.Split(strings.TrimSpace(text), "\n")

	start := -1
	for i, line := range d.lines {
		if strings.TrimSpace(line) == heading {
			start = i
			break
		}
	}

	if start == -1 {
		if len(d.lines) > 0 && strings.TrimSpace(d.lines[len(d.lines)-1]) != "" {
			d.lines = append(d.lines, "")
		}
		d.lines = append(d.lines, heading, "")
		d.lines = append(d.lines, body...)
		d.lines = append(d.lines, "")
		d.trailingNewline = true
		return
	}

	end := len(d.lines)
	for i := start + 1; i < len(d.lines); i++ {
		if strings.HasPrefix(d.lines[i], "##") {
			end = i
			break
		}
	}

	newLines := make([]string, 0, len(d.lines))
	newLines = append(newLines, d.lines[:start+1]...)
	newLines = append(newLines, "")
	newLines = append(newLines, body...)
	newLines = append(newLines, "")
	newLines = append(newLines, d.lines[end:]...)
	d.lines = newLines
}

// Intent returns the first non-empty line under the Problem or Intent
// heading, with surrounding parentheses stripped. Empty when neither
// section has content before the next heading.
func (d *Document) Intent() string {
	inSection := false
	for _, line := range d.lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "## Problem" || trimmed == "## Intent" {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(line, "##") {
			break
		}
		if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
			trimmed = trimmed[1 : len(trimmed)-1]
		}
		return trimmed
	}
	return ""
}
