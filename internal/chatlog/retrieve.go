package chatlog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/ui"
)

// CompactBudget is the character budget of one compacted message line.
const CompactBudget = 200

// tailScanLimit bounds the fallback scan when a task has no span markers.
const tailScanLimit = 20

// ContextMessages returns the transcript messages attributed to a task,
// each compacted to a single line. Attribution comes from the task's span
// markers; when the transcript carries none for the task, the last
// messages are returned instead (a raw tail-scan, reported through the
// second return so callers can label it). A nonzero since drops messages
// whose header timestamp precedes it.
func ContextMessages(transcript string, id taskstore.ID, since time.Time) ([]string, bool) {
	lines, _ := splitLines(transcript)

	msgs, found := spanMessages(lines, id)
	if !found {
		msgs = parseMessages(lines)
		if len(msgs) > tailScanLimit {
			msgs = msgs[len(msgs)-tailScanLimit:]
		}
	}

	var out []string
	for _, m := range msgs {
		if !since.IsZero() && m.At.Before(since) {
			continue
		}
		out = append(out, Compact(m))
	}
	return out, found
}

// ContextFromFile is ContextMessages over the transcript file at path. A
// missing transcript yields no messages without error.
func ContextFromFile(path string, id taskstore.ID, since time.Time) ([]string, bool, error) {
	data, err := os.ReadFile(path) // #nosec G304 - transcript path comes from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading transcript: %w", err)
	}
	msgs, found := ContextMessages(string(data), id, since)
	return msgs, found, nil
}

// spanMessages collects the messages inside the marker spans of one task.
// The second return reports whether any open marker for the task exists;
// markers of other tasks are passed over without affecting span state.
func spanMessages(lines []string, id taskstore.ID) ([]Message, bool) {
	var msgs []Message
	found := false
	open := false
	cur := -1
	for _, line := range lines {
		if m := markerLine.FindStringSubmatch(line); m != nil {
			if mid, err := taskstore.ParseID(m[2]); err == nil && mid == id {
				if m[1] == "/" {
					open = false
				} else {
					open = true
					found = true
				}
			}
			cur = -1
			continue
		}
		if hid, at, ok := parseHeader(line); ok {
			if open {
				msgs = append(msgs, Message{ID: hid, At: at})
				cur = len(msgs) - 1
			} else {
				cur = -1
			}
			continue
		}
		if cur >= 0 {
			msgs[cur].Body = append(msgs[cur].Body, line)
		}
	}
	return msgs, found
}

// Compact renders a message as one line within the character budget: the
// header with its bold markers dropped, then the body with whitespace
// collapsed and the gate-echo block excluded.
func Compact(m Message) string {
	line := fmt.Sprintf("[%s] %s UTC", m.ID, m.At.UTC().Format(timeLayout))
	if body := compactBody(m.Body); body != "" {
		line += " " + body
	}
	return ui.Truncate(line, CompactBudget)
}

// compactBody flattens body lines to one string, skipping the gate-echo
// region: the first "> gate:" line through the next blank line.
func compactBody(body []string) string {
	var parts []string
	skipping := false
	for _, line := range body {
		t := strings.TrimSpace(line)
		if skipping {
			if t == "" {
				skipping = false
			}
			continue
		}
		if strings.HasPrefix(t, "> gate:") {
			skipping = true
			continue
		}
		if t != "" {
			parts = append(parts, t)
		}
	}
	return ui.CollapseSpace(strings.Join(parts, " "))
}
