package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long: `Manage the project configuration in .agent/config.yaml.

Keys:
  tasks.dir          task root relative to the project (default .agent/tasks)
  session.ttl        stale session pointer lifetime (default 24h)
  chat.log           command history log (default .agent/history.log)
  chat.transcript    annotated transcript (default .agent/chat_log.md)
  judge.model        reviewer model
  judge.max-tokens   reviewer response budget
  judge.timeout      reviewer wall-clock limit (default 120s)
  mindmap.max-chars  mind map context cap (default 25000)
  json               always emit JSON output

Environment variables (TASKS_<KEY> with dots as underscores) override
file values.

Examples:
  tasks config set judge.timeout 300s
  tasks config get tasks.dir
  tasks config list`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		key, value := args[0], args[1]
		if err := config.SetYamlConfig(key, value); err != nil {
			FatalError("setting config: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"key":      key,
				"value":    value,
				"location": "config.yaml",
			})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Set %s = %s (in config.yaml)\n", green("✓"), key, value)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get the effective value of a key",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		key := args[0]
		value := config.GetYamlConfig(key)

		if jsonOutput {
			outputJSON(map[string]string{
				"key":   key,
				"value": value,
			})
			return
		}
		if value == "" {
			fmt.Printf("%s (not set)\n", key)
			return
		}
		fmt.Println(value)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective merged configuration",
	Run: func(_ *cobra.Command, _ []string) {
		settings := flattenSettings("", config.AllSettings())

		if jsonOutput {
			outputJSON(settings)
			return
		}
		if len(settings) == 0 {
			fmt.Println("No configuration set")
			return
		}

		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println("Configuration:")
		for _, k := range keys {
			fmt.Printf("  %s = %v\n", k, settings[k])
		}
	},
}

// flattenSettings turns viper's nested settings map into dotted keys.
func flattenSettings(prefix string, in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, val := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]interface{}); ok {
			for nk, nv := range flattenSettings(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
