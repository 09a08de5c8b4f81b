// Package taskstore enumerates and creates the task documents under a
// project's task root.
//
// Each task is a directory named NNN-slug holding one task.md. Identifiers
// are positive integers, zero-padded to three digits, assigned as
// max(existing)+1 and never reused. A missing task root is not an error:
// every enumeration operation degrades to "no tasks".
package taskstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/gatework/tasks/internal/config"
	"github.com/gatework/tasks/internal/playbook"
	"github.com/gatework/tasks/internal/taskdoc"
	"github.com/gatework/tasks/internal/templates"
)

// Lookup failures are distinguishable so callers can say why a task is not
// workable, not just that it isn't.
var (
	// ErrNotFound means no directory matches the identifier.
	ErrNotFound = errors.New("task not found")

	// ErrNoOpenGates means the task exists but every gate is checked and it
	// is not yet marked done.
	ErrNoOpenGates = errors.New("no open gates")

	// ErrAlreadyDone means the task's status is in the done family.
	ErrAlreadyDone = errors.New("task already done")

	// ErrAlreadyExists means create collided with an existing numbered
	// directory.
	ErrAlreadyExists = errors.New("task directory already exists")
)

// ID is a task identifier: a positive integer unique within a project.
type ID int

// String renders the canonical zero-padded form ("007"). Identifiers past
// 999 simply widen.
func (id ID) String() string {
	return fmt.Sprintf("%03d", int(id))
}

// ParseID accepts decimal identifiers with or without zero padding.
func ParseID(s string) (ID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid task identifier %q", s)
	}
	return ID(n), nil
}

// numberedDir matches task directory names and captures the identifier.
var numberedDir = regexp.MustCompile(`^(\d+)-`)

// Task is one on-disk task directory.
type Task struct {
	ID   ID
	Name string // directory base name, NNN-slug
	Dir  string // absolute directory path
}

// DocPath returns the path of the task document.
func (t *Task) DocPath() string {
	return filepath.Join(t.Dir, taskdoc.FileName)
}

// Load parses the task document.
func (t *Task) Load() (*taskdoc.Document, error) {
	return taskdoc.Load(t.DocPath())
}

// Store enumerates tasks under one project root.
type Store struct {
	root string
	dir  string
}

// New builds a store for a project root. The tasks directory comes from
// configuration, defaulting to .agent/tasks.
func New(root string) *Store {
	dir := config.GetString("tasks.dir")
	if dir == "" {
		dir = config.DefaultTasksDir
	}
	return &Store{root: root, dir: filepath.Join(root, dir)}
}

// Root returns the project root the store was built for.
func (s *Store) Root() string {
	return s.root
}

// TasksDir returns the directory task folders live in.
func (s *Store) TasksDir() string {
	return s.dir
}

// NextID returns max(existing)+1 over the numbered directories, or 1 when
// the root is absent or holds none. Deleted tasks leave a gap; their
// numbers are not reissued because the maximum survives in later tasks.
func (s *Store) NextID() ID {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 1
	}
	max := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := numberedDir.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return ID(max + 1)
}

// Tasks returns every task in ascending identifier order. Directory listing
// order is lexicographic, which matches numeric order while identifiers are
// zero-padded to the same width. Numbered directories without a task.md are
// skipped.
func (s *Store) Tasks() ([]*Task, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.dir, err)
	}

	var tasks []*Task
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := numberedDir.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		t := &Task{ID: ID(n), Name: e.Name(), Dir: filepath.Join(s.dir, e.Name())}
		if _, err := os.Stat(t.DocPath()); err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Get resolves an identifier to its task directory.
func (s *Store) Get(id ID) (*Task, error) {
	tasks, err := s.Tasks()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
}

// FindActive returns the earliest active-eligible task: not done, with a
// head position that is a real gate rather than a parenthesized sentinel.
// An optional filter restricts the scan to directory names containing it.
// Returns nil without error when no task qualifies.
func (s *Store) FindActive(filter string) (*Task, error) {
	tasks, err := s.Tasks()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if filter != "" && !strings.Contains(t.Name, filter) {
			continue
		}
		doc, err := t.Load()
		if err != nil {
			continue
		}
		if doc.ActiveEligible() {
			return t, nil
		}
	}
	return nil, nil
}

// Workable resolves an identifier and checks that the task can be worked
// on. The failure kinds are distinguishable: ErrNotFound, ErrAlreadyDone
// (whose message carries a reopen hint when gates remain open), and
// ErrNoOpenGates.
func (s *Store) Workable(id ID) (*Task, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	doc, err := t.Load()
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", id, err)
	}
	done := doc.IsDone()
	open := !strings.HasPrefix(doc.HeadPosition(), "(")
	switch {
	case done && open:
		return nil, fmt.Errorf("task %s is done but has open gates; set Status to 'pending' to reopen: %w", id, ErrAlreadyDone)
	case done:
		return nil, fmt.Errorf("task %s is done (all gates complete): %w", id, ErrAlreadyDone)
	case !open:
		return nil, fmt.Errorf("task %s: %w", id, ErrNoOpenGates)
	}
	return t, nil
}

// Row is one task in a listing.
type Row struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Progress string `json:"progress"`
	Intent   string `json:"intent,omitempty"`
}

// Summary tallies every task by status family, including rows a pending
// filter omitted.
type Summary struct {
	Done    int `json:"done"`
	Pending int `json:"pending"`
	Other   int `json:"other"`
}

// List produces a row per task plus the status tally. With pendingOnly the
// done rows are omitted but still counted.
func (s *Store) List(pendingOnly bool) ([]Row, Summary, error) {
	tasks, err := s.Tasks()
	if err != nil {
		return nil, Summary{}, err
	}

	var rows []Row
	var sum Summary
	for _, t := range tasks {
		doc, err := t.Load()
		if err != nil {
			sum.Other++
			if !pendingOnly {
				rows = append(rows, Row{Name: t.Name, Status: "error", Progress: "-"})
			}
			continue
		}

		status := doc.Status()
		done := doc.IsDone()
		switch {
		case done:
			sum.Done++
		case strings.HasPrefix(status, "pending"):
			sum.Pending++
		default:
			sum.Other++
		}

		if pendingOnly && done {
			continue
		}
		rows = append(rows, Row{
			Name:     t.Name,
			Status:   status,
			Progress: doc.ProgressString(),
			Intent:   doc.Intent(),
		})
	}
	return rows, sum, nil
}

// explicitPrefix matches a caller-supplied NNN- prefix on a task name.
var explicitPrefix = regexp.MustCompile(`^(\d{3})-(.+)$`)

// Create allocates the next identifier and writes a fresh task document
// rendered for the type's pattern. A name carrying an explicit NNN- prefix
// must match the allocated identifier; the prefix is then stripped rather
// than duplicated in the slug. The numbered directory is created with an
// atomic create-if-absent, so a concurrent create of the same number fails
// with ErrAlreadyExists instead of silently sharing the directory.
func (s *Store) Create(name, taskType string) (*Task, error) {
	patternName, err := playbook.PatternFor(taskType)
	if err != nil {
		return nil, err
	}

	id := s.NextID()
	if m := explicitPrefix.FindStringSubmatch(name); m != nil {
		if m[1] != id.String() {
			return nil, fmt.Errorf("provided task number %s doesn't match next number %s", m[1], id)
		}
		name = m[2]
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("name %q produces an empty slug", name)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating task root: %w", err)
	}

	dirName := fmt.Sprintf("%s-%s", id, slug)
	t := &Task{ID: id, Name: dirName, Dir: filepath.Join(s.dir, dirName)}
	if err := os.Mkdir(t.Dir, 0o750); err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%s: %w", dirName, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating %s: %w", dirName, err)
	}

	content, err := templates.TaskDocument(s.root, int(id), templates.TitleCase(name), patternName)
	if err != nil {
		return nil, err
	}
	if body, err := playbook.Load(s.root, taskType); err == nil && body != "" {
		content += "\n" + body + "\n"
	}

	if err := atomic.WriteFile(t.DocPath(), strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", t.DocPath(), err)
	}
	return t, nil
}

var (
	slugSeparators = regexp.MustCompile(`[\s_]+`)
	slugDisallowed = regexp.MustCompile(`[^a-zA-Z0-9-]`)
	slugRepeats    = regexp.MustCompile(`-+`)
)

// Slugify converts a task name to its directory slug: lowercase, runs of
// whitespace and underscores become single hyphens, every other character
// outside [a-zA-Z0-9-] is dropped, repeated hyphens collapse, and leading
// or trailing hyphens are trimmed.
func Slugify(name string) string {
	slug := slugSeparators.ReplaceAllString(name, "-")
	slug = slugDisallowed.ReplaceAllString(slug, "")
	slug = slugRepeats.ReplaceAllString(slug, "-")
	return strings.ToLower(strings.Trim(slug, "-"))
}
