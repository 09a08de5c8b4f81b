package chatlog

import (
	"os"
	"sort"
	"time"

	"github.com/gatework/tasks/internal/taskstore"
)

// Transition is one point where the active task changes. Task 0 records a
// deactivation: nothing active from this instant on.
type Transition struct {
	At   time.Time
	Task taskstore.ID
}

// Timeline is the step function from timestamp to active task, built from
// the deduplicated activation events of a history log.
type Timeline struct {
	transitions []Transition
}

// BuildTimeline parses history log content into a timeline: parse, dedup
// echoes, keep the activation/deactivation commands, sort by timestamp.
// The sort is stable so records sharing a wall-clock second stay in log
// order — a deactivate immediately followed by an activate within one
// second must resolve to the activate.
func BuildTimeline(content string) *Timeline {
	var transitions []Transition
	for _, e := range DedupEcho(ParseEvents(content)) {
		if e.Command == deactivateCommand {
			transitions = append(transitions, Transition{At: e.At})
			continue
		}
		if m := activateCommand.FindStringSubmatch(e.Command); m != nil {
			if id, err := taskstore.ParseID(m[1]); err == nil {
				transitions = append(transitions, Transition{At: e.At, Task: id})
			}
		}
	}
	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].At.Before(transitions[j].At)
	})
	return &Timeline{transitions: transitions}
}

// LoadTimeline builds the timeline from a history log file. A missing
// file yields an empty timeline: no log means nothing was ever active.
func LoadTimeline(path string) (*Timeline, error) {
	data, err := os.ReadFile(path) // #nosec G304 - log path comes from config
	if err != nil {
		if os.IsNotExist(err) {
			return &Timeline{}, nil
		}
		return nil, err
	}
	return BuildTimeline(string(data)), nil
}

// ActiveTaskAt returns the task active at ts: the task of the rightmost
// transition at or before ts. Zero means no task — either ts precedes the
// first transition or the latest transition was a deactivation.
func (tl *Timeline) ActiveTaskAt(ts time.Time) taskstore.ID {
	idx := sort.Search(len(tl.transitions), func(i int) bool {
		return tl.transitions[i].At.After(ts)
	})
	if idx == 0 {
		return 0
	}
	return tl.transitions[idx-1].Task
}

// Len returns the number of transitions, for diagnostics.
func (tl *Timeline) Len() int {
	return len(tl.transitions)
}
