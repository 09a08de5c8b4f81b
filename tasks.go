// Package tasks provides a minimal public API for driving the task
// lifecycle from Go instead of through the CLI.
//
// Most automation should shell out to the tasks binary and parse its
// --json output. This package exports only the types and constructors
// needed by Go programs that want to read or advance task state
// in-process.
package tasks

import (
	"github.com/gatework/tasks/internal/session"
	"github.com/gatework/tasks/internal/taskdoc"
	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/workspace"
)

// Core types for working with tasks
type (
	ID        = taskstore.ID
	Task      = taskstore.Task
	Store     = taskstore.Store
	Row       = taskstore.Row
	Summary   = taskstore.Summary
	Document  = taskdoc.Document
	GateCheck = taskdoc.GateCheck
	Session   = session.Store
)

// Sentinel error kinds, comparable with errors.Is
var (
	ErrNotFound      = taskstore.ErrNotFound
	ErrNoOpenGates   = taskstore.ErrNoOpenGates
	ErrAlreadyDone   = taskstore.ErrAlreadyDone
	ErrAlreadyExists = taskstore.ErrAlreadyExists
	ErrNoOpenGate    = taskdoc.ErrNoOpenGate
	ErrNoActiveTask  = session.ErrNoActiveTask
)

// ParseID accepts decimal task identifiers with or without zero padding.
func ParseID(s string) (ID, error) {
	return taskstore.ParseID(s)
}

// Open returns the task store for a project root.
func Open(root string) *Store {
	return taskstore.New(root)
}

// OpenSession returns the session pointer store for a project root.
func OpenSession(root string) *Session {
	return session.New(root)
}

// FindRoot resolves the project root the way the CLI does: TASKS_ROOT if
// set, else a walk-up looking for project markers, else the working
// directory.
func FindRoot() string {
	return workspace.Find()
}

// LoadDocument parses the task document at path.
func LoadDocument(path string) (*Document, error) {
	return taskdoc.Load(path)
}
