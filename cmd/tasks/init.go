package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/config"
	"github.com/gatework/tasks/internal/templates"
	"github.com/gatework/tasks/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a project for task tracking",
	Long: `Scaffold the task-tracking layout in a directory (default: the
current one): the task root, a mind map, a CLAUDE.md, and a starter
config. Files that already exist are left alone, so init can be re-run
safely.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runInit(args)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(args []string) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	target = workspace.CanonicalizePath(target)
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		FatalError("directory not found: %s", target)
	}

	base := filepath.Base(target)
	title := templates.TitleCase(strings.NewReplacer("-", " ", "_", " ").Replace(base))

	results := map[string]string{}
	report := func(name, state string) {
		results[name] = state
		if !jsonOutput {
			fmt.Printf("  %-20s%s\n", name, state)
		}
	}

	if !jsonOutput {
		fmt.Printf("Initializing project: %s\n", base)
	}

	tasksDir := filepath.Join(target, config.DefaultTasksDir)
	state := "created"
	if _, err := os.Stat(tasksDir); err == nil {
		state = "exists"
	} else if err := os.MkdirAll(tasksDir, 0o750); err != nil {
		FatalError("creating %s: %v", tasksDir, err)
	}
	report(config.DefaultTasksDir+"/", state)

	scaffoldFile(target, workspace.MindMapName, report, func() (string, error) {
		return templates.MindMap(title)
	})
	scaffoldFile(target, "CLAUDE.md", report, func() (string, error) {
		return templates.ClaudeMD(title)
	})
	scaffoldFile(target, filepath.Join(workspace.AgentDirName, "config.yaml"), report, func() (string, error) {
		return templates.ConfigYAML()
	})

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"project": base,
			"items":   results,
		})
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("\n%s Project ready.\n\n", green("✓"))
	fmt.Printf("Run %s to load the workflow, or %s to file the first task.\n",
		cyan("tasks bootstrap"), cyan("tasks new <name>"))
}

// scaffoldFile writes a rendered template at root/name unless it already
// exists, and reports which happened.
func scaffoldFile(root, name string, report func(name, state string), render func() (string, error)) {
	path := filepath.Join(root, name)
	if _, err := os.Stat(path); err == nil {
		report(name, "exists")
		return
	}
	content, err := render()
	if err != nil {
		FatalError("%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		FatalError("writing %s: %v", path, err)
	}
	report(name, "created")
}
