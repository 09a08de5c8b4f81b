package chatlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Event is one parsed history log record.
type Event struct {
	At      time.Time
	Command string
}

// ParseEvents reads every well-formed record from history log content.
// Unparseable lines are skipped silently.
func ParseEvents(content string) []Event {
	var events []Event
	for _, line := range strings.Split(content, "\n") {
		m := historyLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		at, err := time.ParseInLocation(timeLayout, m[1], time.UTC)
		if err != nil {
			continue
		}
		events = append(events, Event{At: at, Command: m[2]})
	}
	return events
}

// DedupEcho drops duplicate-echo events. The upstream shell hook can
// record the same command twice in a short window (once from the agent
// layer, once from the script layer), so within a run of consecutive
// identical records the odd occurrences are kept and the even ones
// dropped. Any intervening different command ends the run: a genuine
// reissue later in the log is a fresh run and survives.
func DedupEcho(events []Event) []Event {
	kept := make([]Event, 0, len(events))
	prev := ""
	keep := false
	for i, e := range events {
		if i == 0 || e.Command != prev {
			keep = true
		} else {
			keep = !keep
		}
		if keep {
			kept = append(kept, e)
		}
		prev = e.Command
	}
	return kept
}

// AppendCommand appends one timestamped record to the history log,
// creating the file and its directory as needed. This is the hook entry
// point behind `tasks log-command`.
func AppendCommand(path, command string, at time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304 - log path comes from config
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s UTC] %s\n", at.UTC().Format(timeLayout), command)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}
