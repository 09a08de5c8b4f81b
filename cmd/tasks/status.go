package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the gate position of each open task",
	Long: `Show one line per open task: name, progress, and the head position
(the first unchecked gate or empty required field). Done tasks are
skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		runStatus()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus() {
	store := getStore()
	relDir := relativeToRoot(store.Root(), store.TasksDir())
	if _, err := os.Stat(store.TasksDir()); os.IsNotExist(err) {
		fmt.Printf("No %s/ directory found\n", relDir)
		return
	}

	tasks, err := store.Tasks()
	if err != nil {
		FatalError("%v", err)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return
	}

	var open []map[string]interface{}
	for _, t := range tasks {
		doc, err := t.Load()
		if err != nil {
			if !jsonOutput {
				fmt.Printf("%-40s | %-8s | %s\n", t.Name, "-", "(error reading)")
			}
			continue
		}
		if doc.IsDone() {
			continue
		}
		if jsonOutput {
			open = append(open, map[string]interface{}{
				"name":     t.Name,
				"progress": doc.ProgressString(),
				"head":     doc.HeadPosition(),
			})
			continue
		}
		fmt.Printf("%-40s | %-8s | %s\n", t.Name, doc.ProgressString(), doc.HeadPosition())
	}

	if jsonOutput {
		outputJSON(map[string]interface{}{"open": open})
	}
}
