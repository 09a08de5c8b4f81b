// Package config manages configuration through a viper singleton.
//
// Values come from three layers, lowest priority first: built-in defaults,
// the project's .agent/config.yaml, and TASKS_* environment variables
// (dots and dashes in keys become underscores, so judge.max-tokens is
// TASKS_JUDGE_MAX_TOKENS). Getters are nil-safe: before Initialize they
// return zero values rather than panicking.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gatework/tasks/internal/workspace"
)

// Defaults seeded by Initialize. Exported so scaffolding and help text can
// name them without reading the singleton.
const (
	DefaultTasksDir        = ".agent/tasks"
	DefaultStateDir        = ".agent"
	DefaultSessionTTL      = 24 * time.Hour
	DefaultChatLog         = ".agent/history.log"
	DefaultTranscript      = ".agent/chat_log.md"
	DefaultJudgeModel      = "claude-3-5-haiku-20241022"
	DefaultJudgeMaxTokens  = 1024
	DefaultJudgeTimeout    = 120 * time.Second
	DefaultMindMapMaxChars = 25000
)

var v *viper.Viper

// Initialize builds the viper instance from defaults, the discovered
// config.yaml, and the environment. Safe to call repeatedly; each call
// rebuilds from scratch so tests can re-point discovery.
func Initialize() error {
	nv := viper.New()

	nv.SetDefault("json", false)
	nv.SetDefault("tasks.dir", DefaultTasksDir)
	nv.SetDefault("state.dir", DefaultStateDir)
	nv.SetDefault("session.ttl", DefaultSessionTTL)
	nv.SetDefault("chat.log", DefaultChatLog)
	nv.SetDefault("chat.transcript", DefaultTranscript)
	nv.SetDefault("judge.model", DefaultJudgeModel)
	nv.SetDefault("judge.max-tokens", DefaultJudgeMaxTokens)
	nv.SetDefault("judge.timeout", DefaultJudgeTimeout)
	nv.SetDefault("mindmap.max-chars", DefaultMindMapMaxChars)

	nv.SetEnvPrefix("TASKS")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()

	// The conventional Anthropic variable also selects the judge model.
	if err := nv.BindEnv("judge.model", "TASKS_JUDGE_MODEL", "ANTHROPIC_MODEL"); err != nil {
		return fmt.Errorf("binding judge.model: %w", err)
	}

	if path := findConfigYaml(); path != "" {
		nv.SetConfigFile(path)
		nv.SetConfigType("yaml")
		if err := nv.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}

	v = nv
	return nil
}

// findConfigYaml locates .agent/config.yaml. TASKS_ROOT short-circuits the
// walk; otherwise every directory from the CWD up to the filesystem root is
// checked. Returns "" when no file exists, which is not an error.
func findConfigYaml() string {
	candidate := func(dir string) string {
		path := filepath.Join(dir, workspace.AgentDirName, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}

	if root := os.Getenv("TASKS_ROOT"); root != "" {
		return candidate(root)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		if path := candidate(dir); path != "" {
			return path
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

// GetString returns the string value for key, or "" before Initialize.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool returns the boolean value for key, or false before Initialize.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt returns the integer value for key, or 0 before Initialize.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration returns the duration value for key, or 0 before Initialize.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice returns the slice value for key, or an empty slice before
// Initialize.
func GetStringSlice(key string) []string {
	if v == nil {
		return []string{}
	}
	return v.GetStringSlice(key)
}

// Set overrides a value in the running process. No-op before Initialize.
func Set(key string, value interface{}) {
	if v == nil {
		return
	}
	v.Set(key, value)
}

// AllSettings returns every effective setting, or an empty map before
// Initialize.
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

// SessionTTL returns the pointer expiry window. Unset or nonpositive values
// fall back to the default so garbage collection never runs with a zero
// window.
func SessionTTL() time.Duration {
	d := GetDuration("session.ttl")
	if d <= 0 {
		return DefaultSessionTTL
	}
	return d
}

// JudgeTimeout returns the wall-clock budget for a judge call, falling back
// to the default when unset.
func JudgeTimeout() time.Duration {
	d := GetDuration("judge.timeout")
	if d <= 0 {
		return DefaultJudgeTimeout
	}
	return d
}
