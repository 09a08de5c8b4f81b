package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gatework/tasks/internal/workspace"
)

// SetYamlConfig writes a key into the project's .agent/config.yaml, creating
// the file on first write. Existing keys are updated in place, including
// commented-out ones, which become active.
func SetYamlConfig(key, value string) error {
	configPath, err := resolveConfigYaml()
	if err != nil {
		return err
	}

	content := ""
	if data, readErr := os.ReadFile(configPath); readErr == nil { // #nosec G304 - path from resolveConfigYaml
		content = string(data)
	}

	newContent := updateYamlKey(content, key, value)

	if err := os.WriteFile(configPath, []byte(newContent), 0o600); err != nil {
		return fmt.Errorf("failed to write config.yaml: %w", err)
	}

	return nil
}

// GetYamlConfig returns the effective value for a key through the singleton.
// Empty string when the key is unset or Initialize has not run.
func GetYamlConfig(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// resolveConfigYaml finds where config.yaml lives or should live: the
// .agent directory of the nearest project root. Errors when no .agent
// directory exists anywhere up the tree.
func resolveConfigYaml() (string, error) {
	if root := os.Getenv("TASKS_ROOT"); root != "" {
		agentDir := filepath.Join(root, workspace.AgentDirName)
		if info, err := os.Stat(agentDir); err == nil && info.IsDir() {
			return filepath.Join(agentDir, "config.yaml"), nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		agentDir := filepath.Join(dir, workspace.AgentDirName)
		if info, err := os.Stat(agentDir); err == nil && info.IsDir() {
			return filepath.Join(agentDir, "config.yaml"), nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	return "", fmt.Errorf("no %s directory found (run 'tasks init' first)", workspace.AgentDirName)
}

// updateYamlKey updates a key in yaml content, handling commented-out keys.
// Keys that do not exist are appended at the end. Dotted keys are written
// flat; viper resolves them against nested structure at read time.
func updateYamlKey(content, key, value string) string {
	newLine := fmt.Sprintf("%s: %s", key, formatYamlValue(value))

	keyPattern := regexp.MustCompile(`^(\s*)(#\s*)?` + regexp.QuoteMeta(key) + `\s*:`)

	found := false
	var result []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if keyPattern.MatchString(line) {
			indent := keyPattern.FindStringSubmatch(line)[1]
			result = append(result, indent+newLine)
			found = true
		} else {
			result = append(result, line)
		}
	}

	if !found {
		if len(result) > 0 && result[len(result)-1] != "" {
			result = append(result, "")
		}
		result = append(result, newLine)
	}

	return strings.Join(result, "\n")
}

// formatYamlValue renders a value for YAML: booleans and numbers bare,
// durations bare, strings quoted only when they contain special characters.
func formatYamlValue(value string) string {
	lower := strings.ToLower(value)
	if lower == "true" || lower == "false" {
		return lower
	}

	if isNumeric(value) || isDuration(value) {
		return value
	}

	if needsQuoting(value) {
		return fmt.Sprintf("%q", value)
	}

	return value
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isDuration(s string) bool {
	if len(s) < 2 {
		return false
	}
	suffix := s[len(s)-1]
	if suffix != 's' && suffix != 'm' && suffix != 'h' {
		return false
	}
	return isNumeric(s[:len(s)-1])
}

func needsQuoting(s string) bool {
	special := []string{":", "#", "[", "]", "{", "}", ",", "&", "*", "!", "|", ">", "'", "\"", "%", "@", "`"}
	for _, c := range special {
		if strings.Contains(s, c) {
			return true
		}
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	return false
}
