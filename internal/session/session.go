// Package session tracks which task each working session has pinned.
//
// The state is a set of pointer files under the project's state directory:
// an unkeyed current_state that every caller observes, plus one
// current_state.<token> per live session so concurrent sessions against
// the same project don't clobber each other. Activation always writes the
// unkeyed pointer and additionally the keyed one when a token is present;
// that dual-write contract lives here, not in call sites. Pointer files are
// whole-file overwrites with last-writer-wins semantics, no locking.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/gatework/tasks/internal/config"
	"github.com/gatework/tasks/internal/debug"
	"github.com/gatework/tasks/internal/taskstore"
)

// PointerFile is the unkeyed pointer name; keyed variants append ".<token>".
const PointerFile = "current_state"

// ErrNoActiveTask is returned by Deactivate when no pointer is set.
var ErrNoActiveTask = errors.New("no active task")

// Store manages the pointer files of one project.
type Store struct {
	dir   string
	tasks *taskstore.Store
}

// New builds a session store for a project root. The state directory comes
// from configuration, defaulting to .agent.
func New(root string) *Store {
	dir := config.GetString("state.dir")
	if dir == "" {
		dir = config.DefaultStateDir
	}
	return &Store{dir: filepath.Join(root, dir), tasks: taskstore.New(root)}
}

// pointerPath returns the pointer file for a session token, or the unkeyed
// pointer for the empty token.
func (s *Store) pointerPath(token string) string {
	if token == "" {
		return filepath.Join(s.dir, PointerFile)
	}
	return filepath.Join(s.dir, PointerFile+"."+token)
}

// Activate pins a task: the unkeyed pointer is always written so
// non-session-aware tooling observes the active task, and the keyed pointer
// is written too when a token is supplied. Stale keyed pointers are
// garbage-collected opportunistically on the way.
func (s *Store) Activate(id taskstore.ID, token string) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	s.GCStale(config.SessionTTL())

	content := id.String() + "\n"
	if err := atomic.WriteFile(s.pointerPath(""), strings.NewReader(content)); err != nil {
		return fmt.Errorf("writing pointer: %w", err)
	}
	if token != "" {
		if err := atomic.WriteFile(s.pointerPath(token), strings.NewReader(content)); err != nil {
			return fmt.Errorf("writing session pointer: %w", err)
		}
	}

	debug.LogEvent("TASK_ACTIVATE", id.String(), "session="+token)
	return nil
}

// Active reads the pinned task: the session-keyed pointer first when a
// token is present, falling back to the unkeyed pointer. The second return
// is false when neither holds a parseable identifier.
func (s *Store) Active(token string) (taskstore.ID, bool) {
	if token != "" {
		if id, ok := readPointer(s.pointerPath(token)); ok {
			return id, true
		}
	}
	return readPointer(s.pointerPath(""))
}

// Deactivate unpins the active task, marks its document done, and removes
// every pointer file holding that identifier — not just the one that was
// read, because several sessions may have pinned the same task. Returns
// ErrNoActiveTask when nothing is pinned.
func (s *Store) Deactivate(token string) (taskstore.ID, error) {
	id, ok := s.Active(token)
	if !ok {
		return 0, ErrNoActiveTask
	}

	task, err := s.tasks.Get(id)
	switch {
	case errors.Is(err, taskstore.ErrNotFound):
		// Pointer to a deleted task: nothing to mark, still unpin.
	case err != nil:
		return 0, err
	default:
		doc, err := task.Load()
		if err != nil {
			return 0, fmt.Errorf("reading task %s: %w", id, err)
		}
		doc.MarkDone()
		if err := doc.Save(); err != nil {
			return 0, err
		}
	}

	s.removePointers(id)
	debug.LogEvent("TASK_DEACTIVATE", id.String(), "session="+token)
	return id, nil
}

// removePointers deletes every pointer file whose content resolves to id.
// Removal failures are swallowed; a leftover pointer only means the next
// deactivate repeats an idempotent mark-done.
func (s *Store) removePointers(id taskstore.ID) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if name != PointerFile && !strings.HasPrefix(name, PointerFile+".") {
			continue
		}
		path := filepath.Join(s.dir, name)
		if got, ok := readPointer(path); ok && got == id {
			if err := os.Remove(path); err != nil {
				debug.Logf("session: removing %s: %v\n", path, err)
			}
		}
	}
}

// GCStale deletes session-keyed pointers whose modification time is older
// than ttl. The unkeyed pointer is never collected. All failures are
// swallowed: garbage collection is opportunistic, never load-bearing.
func (s *Store) GCStale(ttl time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-ttl)
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), PointerFile+".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(s.dir, e.Name()))
		}
	}
}

// readPointer parses one pointer file.
func readPointer(path string) (taskstore.ID, bool) {
	data, err := os.ReadFile(path) // #nosec G304 - pointer paths are derived from the state dir
	if err != nil {
		return 0, false
	}
	id, err := taskstore.ParseID(string(data))
	if err != nil {
		return 0, false
	}
	return id, true
}
