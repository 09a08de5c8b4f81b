package chatlog

import (
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/gatework/tasks/internal/taskstore"
)

// AnnotateResult reports what an annotation pass did.
type AnnotateResult struct {
	Opened  int  `json:"opened"`
	Closed  int  `json:"closed"`
	Changed bool `json:"changed"`
}

// Annotate rewrites a transcript so every contiguous run of messages
// attributed to the same task is wrapped in that task's span markers.
// Runs attributed to no task get no markers. Previously inserted markers
// are stripped first, which makes the pass idempotent: annotating an
// already annotated transcript with the same timeline reproduces it
// byte for byte.
func Annotate(transcript string, tl *Timeline) (string, AnnotateResult) {
	lines, trailing := splitLines(transcript)

	stripped := make([]string, 0, len(lines))
	for _, line := range lines {
		if markerLine.MatchString(line) {
			continue
		}
		stripped = append(stripped, line)
	}

	var res AnnotateResult
	out := make([]string, 0, len(stripped)+8)
	var open taskstore.ID
	for _, line := range stripped {
		if _, at, ok := parseHeader(line); ok {
			want := tl.ActiveTaskAt(at)
			if want != open {
				if open != 0 {
					out = append(out, CloseMarker(open))
					res.Closed++
				}
				if want != 0 {
					out = append(out, OpenMarker(want))
					res.Opened++
				}
				open = want
			}
		}
		out = append(out, line)
	}
	if open != 0 {
		out = append(out, CloseMarker(open))
		res.Closed++
		// A close marker appended at end of stream needs its newline.
		trailing = true
	}

	result := joinLines(out, trailing)
	res.Changed = result != transcript
	return result, res
}

// AnnotateFile runs the annotation pass over the transcript at
// transcriptPath against the history log at historyPath. Unless dryRun is
// set, a changed transcript is written back with an atomic replace; the
// dry run computes the same result entirely in memory.
func AnnotateFile(transcriptPath, historyPath string, dryRun bool) (AnnotateResult, error) {
	data, err := os.ReadFile(transcriptPath) // #nosec G304 - transcript path comes from config
	if err != nil {
		return AnnotateResult{}, fmt.Errorf("reading transcript: %w", err)
	}

	tl, err := LoadTimeline(historyPath)
	if err != nil {
		return AnnotateResult{}, fmt.Errorf("reading history log: %w", err)
	}

	annotated, res := Annotate(string(data), tl)
	if dryRun || !res.Changed {
		return res, nil
	}
	if err := atomic.WriteFile(transcriptPath, strings.NewReader(annotated)); err != nil {
		return res, fmt.Errorf("writing transcript: %w", err)
	}
	return res, nil
}
