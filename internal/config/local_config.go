package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of config.yaml read directly from disk rather
// than through the viper singleton. Useful when the CWD has changed since
// Initialize ran, or for discovery-time peeking before it runs at all.
type LocalConfig struct {
	Tasks struct {
		Dir string `yaml:"dir"`
	} `yaml:"tasks"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	Judge struct {
		Model string `yaml:"model"`
	} `yaml:"judge"`
}

// LoadLocalConfig reads config.yaml from the given state directory. Returns
// an empty LocalConfig (never nil) when the file is missing or unparsable,
// so callers can chain field access without checks.
func LoadLocalConfig(agentDir string) *LocalConfig {
	configPath := filepath.Join(agentDir, "config.yaml")
	data, err := os.ReadFile(configPath) // #nosec G304 - path is rooted in the state dir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}

	return &cfg
}

// LoadLocalConfigWithEnv reads config.yaml and applies environment
// overrides. TASKS_JUDGE_MODEL and ANTHROPIC_MODEL (in that order) take
// precedence over the judge.model file value.
func LoadLocalConfigWithEnv(agentDir string) *LocalConfig {
	cfg := LoadLocalConfig(agentDir)

	if m := os.Getenv("TASKS_JUDGE_MODEL"); m != "" {
		cfg.Judge.Model = m
	} else if m := os.Getenv("ANTHROPIC_MODEL"); m != "" {
		cfg.Judge.Model = m
	}

	return cfg
}

// LocalTasksDir returns the configured task directory for a state dir,
// falling back to the default when unset.
func LocalTasksDir(agentDir string) string {
	if dir := LoadLocalConfig(agentDir).Tasks.Dir; dir != "" {
		return dir
	}
	return DefaultTasksDir
}
