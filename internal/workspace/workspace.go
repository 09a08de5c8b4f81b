// Package workspace resolves the project root that holds the .agent tree.
//
// The root is the directory the task store, session pointers, and chat logs
// hang off. Resolution order: the TASKS_ROOT environment variable, then an
// upward walk from the working directory looking for project markers, then
// the working directory itself. Commands never fail on a missing root; a
// fresh directory simply has no tasks yet.
package workspace

import (
	"os"
	"path/filepath"
)

// AgentDirName is the per-project state directory under the root.
const AgentDirName = ".agent"

// markers identify a project root during the upward walk, checked in order.
var markers = []string{
	filepath.Join(AgentDirName, "tasks"),
	"MIND_MAP.md",
	"CLAUDE.md",
}

// Find resolves the project root.
func Find() string {
	if root := os.Getenv("TASKS_ROOT"); root != "" {
		abs := CanonicalizePath(root)
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	return cwd
}

// AgentDir returns the state directory for a root.
func AgentDir(root string) string {
	return filepath.Join(root, AgentDirName)
}

// SessionToken returns the opaque per-session token, or "" when the caller
// is not session-aware.
func SessionToken() string {
	return os.Getenv("TASKS_SESSION_ID")
}

// MindMapName is the project knowledge file at the root.
const MindMapName = "MIND_MAP.md"

// MindMap loads the project's mind map, truncated to maxChars (0 means no
// cap). The second return is false when the file does not exist.
func MindMap(root string, maxChars int) (string, bool) {
	data, err := os.ReadFile(filepath.Join(root, MindMapName))
	if err != nil {
		return "", false
	}
	content := string(data)
	if maxChars > 0 && len(content) > maxChars {
		content = content[:maxChars] + "\n... (truncated)"
	}
	return content, true
}

// CanonicalizePath converts a path to canonical form by making it absolute
// and resolving symlinks. Falls back to the best available form when a step
// fails: absolute path if symlinks cannot resolve, the original otherwise.
func CanonicalizePath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	canonical, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return absPath
	}

	return canonical
}
