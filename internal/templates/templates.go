// Package templates renders the documents the CLI scaffolds: new task
// files, project init files, and the judge review prompt.
//
// The task document template is resolved through a lookup chain so teams
// can version their own shape (highest to lowest priority):
//  1. .agent/templates/task.md.tmpl (project-level, version-controlled)
//  2. <user config dir>/tasks/templates/task.md.tmpl (user-level)
//  3. Embedded default (fallback)
//
// Callers treat every producer here as an opaque string source; the rest
// of the system never inspects rendered content.
package templates

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/gatework/tasks/internal/debug"
	"github.com/gatework/tasks/internal/workspace"
)

//go:embed defaults/*.tmpl
var defaults embed.FS

const taskTemplateFile = "task.md.tmpl"

// taskDocData feeds the task document template.
type taskDocData struct {
	Num      string // canonical zero-padded identifier
	Title    string
	Playbook string // pattern reference, e.g. "playbook/Build"
}

// TaskDocument renders the scaffold for a new task file.
func TaskDocument(root string, num int, title, patternName string) (string, error) {
	playbookRef := "(none)"
	if patternName != "" {
		playbookRef = "playbook/" + patternName
	}

	content, source, err := resolveTaskTemplate(root)
	if err != nil {
		return "", err
	}
	debug.Logf("templates: loaded %s from %s", taskTemplateFile, source)

	tmpl, err := template.New(taskTemplateFile).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", source, err)
	}

	var b strings.Builder
	data := taskDocData{Num: fmt.Sprintf("%03d", num), Title: title, Playbook: playbookRef}
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", source, err)
	}
	return b.String(), nil
}

// resolveTaskTemplate walks the lookup chain and returns the template text
// and its source.
func resolveTaskTemplate(root string) ([]byte, string, error) {
	if root != "" {
		path := filepath.Join(workspace.AgentDir(root), "templates", taskTemplateFile)
		if content, err := os.ReadFile(path); err == nil { // #nosec G304 - path rooted in the project
			return content, path, nil
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(configDir, "tasks", "templates", taskTemplateFile)
		if content, err := os.ReadFile(path); err == nil { // #nosec G304 - user config path
			return content, path, nil
		}
	}

	content, err := defaults.ReadFile("defaults/" + taskTemplateFile)
	if err != nil {
		return nil, "", fmt.Errorf("embedded task template missing: %w", err)
	}
	return content, "embedded:" + taskTemplateFile, nil
}

// renderEmbedded executes one of the embedded templates with data.
func renderEmbedded(name string, data any) (string, error) {
	content, err := defaults.ReadFile("defaults/" + name)
	if err != nil {
		return "", fmt.Errorf("embedded template %s missing: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}

// ClaudeMD renders the CLAUDE.md scaffold written by init.
func ClaudeMD(title string) (string, error) {
	return renderEmbedded("claude.md.tmpl", struct{ Title string }{title})
}

// MindMap renders the MIND_MAP.md scaffold written by init.
func MindMap(title string) (string, error) {
	return renderEmbedded("mindmap.md.tmpl", struct{ Title string }{title})
}

// ConfigYAML renders the starter config.yaml written by init: every knob
// present but commented out, so 'tasks config set' can uncomment in place.
func ConfigYAML() (string, error) {
	return renderEmbedded("config.yaml.tmpl", nil)
}

// WorkflowBriefing is printed on task activation, ahead of the document.
func WorkflowBriefing() string {
	return `- One gate at a time: read gate → do work → check box → next gate
- Pattern templates in task.md ARE the work plan — fill them in, don't skip`
}

// IdentityPreamble is the one-line framing at the top of bootstrap output.
func IdentityPreamble() string {
	return "You are a coding assistant working with a task management harness."
}

// MindMapHeader is the navigation note shown before the full mind map.
func MindMapHeader() string {
	return "Project knowledge graph. Nodes cross-reference with [N] IDs.\n" +
		"Full map below — drill into a node: grep '^\\[N\\]' MIND_MAP.md"
}

// CLIReference is the quick reference shown at bootstrap.
func CLIReference() string {
	return `Tasks CLI:
  tasks work <N>           activate task (start here)
  tasks work done          mark done + deactivate
  tasks new <type> <name>  create task (doesn't activate)
  tasks gate               check off the current gate
  tasks judge <N>          blind plan review
  tasks list [--pending]   show tasks
  tasks status             current gate position`
}

// BlockReminder is printed after deactivation.
func BlockReminder() string {
	return "Code edits blocked until: tasks work <N>"
}

// JudgePrompt builds the review prompt for a task. Mode is "plan" for
// pre-implementation review or "impl" for reviewing a finished change.
// With inlineContext the prompt says the context follows inline instead of
// arriving as a system prompt.
func JudgePrompt(taskNum, mode string, inlineContext bool) string {
	contextLocation := "provided in your system prompt"
	if inlineContext {
		contextLocation = "provided below"
	}

	intentCheck := ""
	if taskNum != "" {
		intentCheck = fmt.Sprintf(
			"If .agent/chat_log.md exists, run `tasks context %s` to see the user's original messages. "+
				"Check whether the task addresses what the user actually asked for, not just the agent's interpretation. ",
			taskNum)
	}

	if mode == "impl" {
		return "You are a senior engineer reviewing a COMPLETED implementation. " +
			fmt.Sprintf("The MIND_MAP.md and task.md are %s. ", contextLocation) +
			"Read the source files changed by this task (look at the Work Plan gates for paths). " +
			intentCheck +
			"Review through four lenses: " +
			"(1) Simplify — what's unnecessary or over-engineered? What can be removed? " +
			"(2) Self-critique — does the code actually fulfill the stated Intent? What would a skeptic say? " +
			"(3) Bug scan — find actual bugs, edge cases, race conditions, or security issues. " +
			"(4) Prove it works — cite file:line evidence showing correctness, or construct a concrete scenario showing failure. " +
			"Be specific and adversarial — your job is to find problems, not approve. " +
			"Max 5 findings, Critical and Important only — drop Minor. " +
			"Each finding: cite file:line, 1-2 sentences stating the problem, 1 sentence stating the fix. No elaboration."
	}

	return "You are a senior engineer reviewing a PLAN — no code has been written yet. " +
		fmt.Sprintf("The MIND_MAP.md and task.md are %s. ", contextLocation) +
		"Read the source files referenced in the plan to understand existing patterns. " +
		intentCheck +
		"Then critique the plan through four lenses: " +
		"(1) Intent alignment — will this approach actually fulfill the stated Intent? What's missing or underspecified? " +
		"(2) Failure modes — what will go wrong that isn't addressed? Construct a concrete failing scenario. " +
		"(3) Simplify — is anything over-engineered? What can be dropped? " +
		"(4) Prove it — cite file:line evidence for claims about existing code. No hand-waving. " +
		"Be specific and adversarial — your job is to find problems, not approve. " +
		"Max 5 findings, Critical and Important only — drop Minor. " +
		"Each finding: cite file:line, 1-2 sentences stating the problem, 1 sentence stating the fix. No elaboration."
}

// TitleCase capitalizes the first letter of each word and lowercases the
// rest, treating any non-letter as a word boundary.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			prevLetter = false
			b.WriteRune(r)
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			prevLetter = true
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
