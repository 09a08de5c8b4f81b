package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/taskdoc"
	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/ui"
)

var (
	listPendingFlag bool
	listWatchFlag   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks with status, progress, and intent",
	Long: `List every task as a table of name, status, progress, and intent,
followed by a status tally.

With --pending, done tasks are hidden from the table but still counted.
With --watch, the table is redrawn whenever a task file changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		runList()
	},
}

func init() {
	listCmd.Flags().BoolVar(&listPendingFlag, "pending", false, "Hide done tasks (still counted in the summary)")
	listCmd.Flags().BoolVar(&listWatchFlag, "watch", false, "Redisplay when task files change")
	rootCmd.AddCommand(listCmd)
}

func runList() {
	store := getStore()

	if jsonOutput {
		rows, sum, err := store.List(listPendingFlag)
		if err != nil {
			outputJSONError(err, "list_failed")
		}
		outputJSON(map[string]interface{}{
			"tasks":   rows,
			"summary": sum,
		})
		return
	}

	if err := displayList(store, listPendingFlag); err != nil {
		FatalError("%v", err)
	}
	if listWatchFlag {
		watchTasks(store, listPendingFlag)
	}
}

// displayList renders the task table. Column widths follow the name column;
// status and intent cells are truncated to keep rows on one line.
func displayList(store *taskstore.Store, pendingOnly bool) error {
	relDir := relativeToRoot(store.Root(), store.TasksDir())
	if _, err := os.Stat(store.TasksDir()); os.IsNotExist(err) {
		fmt.Printf("No %s/ directory found\n", relDir)
		return nil
	}

	rows, sum, err := store.List(pendingOnly)
	if err != nil {
		return err
	}
	if sum.Done+sum.Pending+sum.Other == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	const statusW, progressW, intentW = 7, 8, 40
	nameW := 4 // wide enough for "Name"
	for _, r := range rows {
		if len(r.Name) > nameW {
			nameW = len(r.Name)
		}
	}

	fmt.Printf("%-*s | %-*s | %-*s | Intent\n", nameW, "Name", statusW, "Status", progressW, "Progress")
	fmt.Printf("%s-+-%s-+-%s-+-%s\n",
		strings.Repeat("-", nameW), strings.Repeat("-", statusW),
		strings.Repeat("-", progressW), strings.Repeat("-", intentW))

	for _, r := range rows {
		status := r.Status
		if len(status) > statusW {
			status = status[:statusW]
		}
		statusCell := ui.RenderStatus(fmt.Sprintf("%-*s", statusW, status))
		fmt.Printf("%-*s | %s | %-*s | %s\n",
			nameW, r.Name, statusCell, progressW, r.Progress, ui.Truncate(r.Intent, 500))
	}

	fmt.Println()
	var parts []string
	if sum.Done > 0 {
		parts = append(parts, fmt.Sprintf("%d done", sum.Done))
	}
	if sum.Pending > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", sum.Pending))
	}
	if sum.Other > 0 {
		parts = append(parts, fmt.Sprintf("%d other", sum.Other))
	}
	summary := "Summary: " + strings.Join(parts, ", ")
	if pendingOnly {
		summary += fmt.Sprintf(" (showing %d open)", len(rows))
	}
	fmt.Println(summary)
	fmt.Printf("Task files: %s/<name>/task.md — activate with: tasks work <number>\n", relDir)
	return nil
}

// watchTasks redraws the table when task files change, until interrupted.
// The task root is watched directly and each task directory is added as it
// appears, since watches do not recurse.
func watchTasks(store *taskstore.Store, pendingOnly bool) {
	dir := store.TasksDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: nothing to watch, %s does not exist\n", dir)
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		return
	}
	defer func() { _ = watcher.Close() }() // Best effort cleanup

	if err := watcher.Add(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching directory: %v\n", err)
		return
	}
	if tasks, err := store.Tasks(); err == nil {
		for _, t := range tasks {
			_ = watcher.Add(t.Dir)
		}
	}

	fmt.Fprintf(os.Stderr, "\nWatching for changes... (Press Ctrl+C to exit)\n")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Debounce timer
	var debounceTimer *time.Timer
	debounceDelay := 500 * time.Millisecond

	for {
		select {
		case <-sigChan:
			fmt.Fprintf(os.Stderr, "\nStopped watching.\n")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			// Only react to task documents or task directories appearing
			// and disappearing under the root.
			if filepath.Base(event.Name) != taskdoc.FileName && filepath.Dir(event.Name) != dir {
				continue
			}
			// Debounce rapid changes
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := displayList(store, pendingOnly); err != nil {
					fmt.Fprintf(os.Stderr, "Error refreshing tasks: %v\n", err)
					return
				}
				fmt.Fprintf(os.Stderr, "\nWatching for changes... (Press Ctrl+C to exit)\n")
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}
