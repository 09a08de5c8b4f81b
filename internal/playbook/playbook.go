// Package playbook provides named gate checklists ("patterns") that seed
// the work plan of new task documents.
//
// Task types map to pattern names (feature work uses Build, bug hunts use
// Investigate, and so on). The pattern body is markdown resolved through a
// lookup chain (highest to lowest priority):
//  1. .agent/patterns/<name>.pattern.toml (structured override)
//  2. .agent/patterns/SKILL.md (the ```markdown block under "### <Name>")
//  3. Embedded default (fallback)
package playbook

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gatework/tasks/internal/debug"
	"github.com/gatework/tasks/internal/workspace"
)

//go:embed patterns/*.md
var defaultPatterns embed.FS

// patternsByType maps task types to pattern names.
var patternsByType = map[string]string{
	"feature":  "Build",
	"bugfix":   "Investigate",
	"refactor": "Build",
	"explore":  "Investigate",
	"research": "Investigate",
	"spike":    "Investigate",
	"decision": "Decide",
	"review":   "Evaluate",
	"commit":   "Build",
	"test":     "Evaluate",
}

// Types returns the valid task types, sorted.
func Types() []string {
	types := make([]string, 0, len(patternsByType))
	for t := range patternsByType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// PatternFor maps a task type to its pattern name. Unknown types are
// rejected with the valid set in the message.
func PatternFor(taskType string) (string, error) {
	name, ok := patternsByType[taskType]
	if !ok {
		return "", fmt.Errorf("unknown type %q (valid: %s)", taskType, strings.Join(Types(), ", "))
	}
	return name, nil
}

// Load returns the pattern body for a task type, resolved through the
// lookup chain rooted at the project root.
func Load(root, taskType string) (string, error) {
	name, err := PatternFor(taskType)
	if err != nil {
		return "", err
	}
	body, source, err := resolve(root, name)
	if err != nil {
		return "", err
	}
	debug.Logf("playbook: loaded pattern %s from %s", name, source)
	return body, nil
}

// Source returns where the pattern for a task type would be loaded from,
// without rendering it. Useful for diagnostics.
func Source(root, taskType string) string {
	name, err := PatternFor(taskType)
	if err != nil {
		return "unknown type"
	}
	_, source, err := resolve(root, name)
	if err != nil {
		return "not found"
	}
	return source
}

// patternSpec is the shape of a .pattern.toml override file.
type patternSpec struct {
	Pattern string        `toml:"pattern"`
	Title   string        `toml:"title"`
	Gates   []patternGate `toml:"gates"`
}

type patternGate struct {
	Text string `toml:"text"`
	// Field marks an empty-required-field line instead of a checkbox.
	Field bool `toml:"field"`
}

func (p *patternSpec) render() string {
	title := p.Title
	if title == "" {
		title = p.Pattern
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n", title)
	for _, g := range p.Gates {
		if g.Field {
			fmt.Fprintf(&b, "- **%s**:\n", g.Text)
		} else {
			fmt.Fprintf(&b, "- [ ] %s\n", g.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// resolve walks the lookup chain and returns the pattern body and its
// source.
func resolve(root, name string) (string, string, error) {
	patternsDir := filepath.Join(root, workspace.AgentDirName, "patterns")
	lower := strings.ToLower(name)

	tomlPath := filepath.Join(patternsDir, lower+".pattern.toml")
	if data, err := os.ReadFile(tomlPath); err == nil { // #nosec G304 - path rooted in the project
		var spec patternSpec
		if err := toml.Unmarshal(data, &spec); err != nil {
			return "", "", fmt.Errorf("parse %s: %w", tomlPath, err)
		}
		if spec.Pattern == "" {
			spec.Pattern = name
		}
		return spec.render(), tomlPath, nil
	}

	skillPath := filepath.Join(patternsDir, "SKILL.md")
	if data, err := os.ReadFile(skillPath); err == nil { // #nosec G304 - path rooted in the project
		if block := extractSkillBlock(string(data), name); block != "" {
			return block, skillPath, nil
		}
	}

	data, err := defaultPatterns.ReadFile("patterns/" + lower + ".md")
	if err != nil {
		return "", "", fmt.Errorf("no embedded pattern %q: %w", name, err)
	}
	return strings.TrimRight(string(data), "\n"), "embedded:" + lower + ".md", nil
}

// extractSkillBlock pulls the ```markdown fenced block beneath the
// "### <name>" heading. Extraction stops at the closing fence or, outside
// a fence, at the next "### " heading. Empty when the heading or block is
// absent.
func extractSkillBlock(content, name string) string {
	inSection := false
	inCode := false
	var lines []string

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "### "+name {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.HasPrefix(line, "### ") && !inCode {
			break
		}
		if strings.TrimSpace(line) == "```markdown" {
			inCode = true
			continue
		}
		if inCode {
			if strings.TrimSpace(line) == "```" {
				break
			}
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// SkillGuide returns the project's playbook guide with sections not
// relevant to task design trimmed off, or "" when the project has none.
func SkillGuide(root string) string {
	data, err := os.ReadFile(filepath.Join(root, workspace.AgentDirName, "patterns", "SKILL.md"))
	if err != nil {
		return ""
	}
	content := string(data)
	for _, marker := range []string{"## Mind Map", "> Evidence base:"} {
		if idx := strings.Index(content, marker); idx > 0 {
			content = content[:idx]
		}
	}
	return strings.TrimRight(content, "\n")
}
