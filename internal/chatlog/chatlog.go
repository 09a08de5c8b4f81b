// Package chatlog reconstructs which task was active at each point of a
// chat transcript, and annotates the transcript with span markers.
//
// Two inputs drive it: the history log, an append-only file of timestamped
// shell commands fed by the log-command hook, and the transcript, a
// markdown file of timestamped messages. Activation commands in the log
// form a step function from timestamp to active task; the annotation pass
// replays every message header against that function and wraps contiguous
// runs of same-task messages in marker comments. The pass strips old
// markers before inserting, so rerunning it is idempotent. Lines that
// don't match the expected shapes are skipped, never errors: both files
// get hand-edited.
package chatlog

import (
	"regexp"
	"strings"
	"time"

	"github.com/gatework/tasks/internal/taskstore"
)

// timeLayout is the timestamp shape shared by history lines and message
// headers. Both are recorded in UTC.
const timeLayout = "2006-01-02 15:04:05"

var (
	// historyLine matches one event log record:
	//   [2026-08-25 14:03:22 UTC] tasks work 007
	historyLine = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) UTC\] (.+)$`)

	// messageHeader matches one transcript message header:
	//   **[M042] 2026-08-25 14:05:10 UTC**
	messageHeader = regexp.MustCompile(`^\*\*\[(M\d+)\] (\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}) UTC\*\*\s*$`)

	// markerLine matches a span marker, open or close:
	//   <!-- task:007 -->  /  <!-- /task:007 -->
	markerLine = regexp.MustCompile(`^<!-- (/?)task:(\d+) -->$`)

	// activateCommand captures the task number of an activation event.
	activateCommand = regexp.MustCompile(`^tasks work (\d+)$`)
)

// deactivateCommand is the literal command text of a deactivation event.
const deactivateCommand = "tasks work done"

// OpenMarker renders the span-opening comment for a task.
func OpenMarker(id taskstore.ID) string {
	return "<!-- task:" + id.String() + " -->"
}

// CloseMarker renders the span-closing comment for a task.
func CloseMarker(id taskstore.ID) string {
	return "<!-- /task:" + id.String() + " -->"
}

// Message is one parsed transcript message.
type Message struct {
	ID   string // header identifier, e.g. "M042"
	At   time.Time
	Body []string // body lines, header and marker lines excluded
}

// splitLines breaks content into lines, reporting whether a trailing
// newline was present so serialization can restore it.
func splitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, false
	}
	trailing := strings.HasSuffix(content, "\n")
	if trailing {
		content = strings.TrimSuffix(content, "\n")
	}
	return strings.Split(content, "\n"), trailing
}

// joinLines is the inverse of splitLines.
func joinLines(lines []string, trailing bool) string {
	s := strings.Join(lines, "\n")
	if trailing {
		s += "\n"
	}
	return s
}

// parseHeader decodes a message header line. The second return is false
// for lines that aren't headers.
func parseHeader(line string) (id string, at time.Time, ok bool) {
	m := messageHeader.FindStringSubmatch(line)
	if m == nil {
		return "", time.Time{}, false
	}
	ts, err := time.ParseInLocation(timeLayout, m[2], time.UTC)
	if err != nil {
		return "", time.Time{}, false
	}
	return m[1], ts, true
}

// parseMessages extracts every message from transcript lines, in order.
// Marker lines are transparent: they neither start nor join a message
// body.
func parseMessages(lines []string) []Message {
	var msgs []Message
	cur := -1
	for _, line := range lines {
		if markerLine.MatchString(line) {
			continue
		}
		if id, at, ok := parseHeader(line); ok {
			msgs = append(msgs, Message{ID: id, At: at})
			cur = len(msgs) - 1
			continue
		}
		if cur >= 0 {
			msgs[cur].Body = append(msgs[cur].Body, line)
		}
	}
	return msgs
}
