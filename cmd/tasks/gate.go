package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/debug"
	"github.com/gatework/tasks/internal/taskdoc"
	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/ui"
	"github.com/gatework/tasks/internal/workspace"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Check off the current gate",
	Long: `Check off the next open gate of the active task.

The active task is the one pinned by 'tasks work <number>'; without a
pin, the earliest open task with unchecked gates is used. Prints the
gate that was checked and a preview of up to three upcoming gates.`,
	Run: func(cmd *cobra.Command, args []string) {
		runGate()
	},
}

func init() {
	rootCmd.AddCommand(gateCmd)
}

func runGate() {
	store := getStore()
	task := resolveGateTask(store)
	if task == nil {
		noTask := errors.New("no active task with open gates")
		if jsonOutput {
			outputJSONError(noTask, "no_active_task")
		}
		FatalError("%v", noTask)
	}

	doc, err := task.Load()
	if err != nil {
		FatalError("%v", err)
	}

	gc, err := doc.CheckNextGate()
	if err != nil {
		if errors.Is(err, taskdoc.ErrNoOpenGate) {
			if jsonOutput {
				outputJSONError(err, "no_open_gates")
			}
			FatalError("no unchecked gate in %s", task.Name)
		}
		FatalError("%v", err)
	}
	if err := doc.Save(); err != nil {
		FatalError("saving %s: %v", doc.Path, err)
	}
	debug.LogEvent("GATE_CHECK", task.ID.String(), gc.Checked)

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"task":     task.ID.String(),
			"name":     task.Name,
			"checked":  gc.Checked,
			"upcoming": gc.Upcoming,
		})
		return
	}

	fmt.Printf("%s %s\n", ui.RenderDone(ui.IconDone), gc.Checked)
	if len(gc.Upcoming) > 0 {
		debug.PrintlnNormal("Upcoming:")
		for _, g := range gc.Upcoming {
			debug.PrintNormal("  %s %s\n", ui.RenderPending(ui.IconPending), g)
		}
		return
	}
	debug.PrintlnNormal(ui.RenderMuted(taskdoc.AllCheckedSentinel))
	debug.PrintlnNormal("All gates checked. Close out with: tasks work done")
}

// resolveGateTask prefers the session pin, then the earliest open task.
// Nil when neither yields a task with open gates.
func resolveGateTask(store *taskstore.Store) *taskstore.Task {
	sess := getSession()
	if id, ok := sess.Active(workspace.SessionToken()); ok {
		if task, err := store.Get(id); err == nil {
			return task
		}
		// Pinned task vanished; fall through to the scan.
	}
	task, err := store.FindActive("")
	if err != nil || task == nil {
		return nil
	}
	return task
}
