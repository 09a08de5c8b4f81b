package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/debug"
	"github.com/gatework/tasks/internal/session"
	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/templates"
	"github.com/gatework/tasks/internal/ui"
	"github.com/gatework/tasks/internal/workspace"
)

var workCmd = &cobra.Command{
	Use:   "work <number>|done",
	Short: "Activate a task, or 'done' to finish the active one",
	Long: `Activate a task by number, pinning it for this session and printing the
workflow briefing plus the full task document. A non-numeric argument is
treated as a name filter and activates the earliest open task matching it.

'tasks work done' deactivates the active task and marks its document done.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if args[0] == "done" {
			runWorkDone()
			return
		}
		runWorkActivate(args[0])
	},
}

var workNoPagerFlag bool

func init() {
	workCmd.Flags().BoolVar(&workNoPagerFlag, "no-pager", false, "Disable pager output")
	rootCmd.AddCommand(workCmd)
}

func runWorkActivate(arg string) {
	store := getStore()
	token := workspace.SessionToken()

	var task *taskstore.Task
	if id, err := taskstore.ParseID(arg); err == nil {
		task = resolveWorkable(store, id)
	} else {
		// Name filter: earliest open task whose directory name contains it.
		found, ferr := store.FindActive(arg)
		if ferr != nil {
			FatalError("%v", ferr)
		}
		if found == nil {
			FatalError("no open task matching %q", arg)
		}
		task = found
	}

	if err := getSession().Activate(task.ID, token); err != nil {
		FatalError("%v", err)
	}

	doc, err := task.Load()
	if err != nil {
		FatalError("reading %s: %v", task.DocPath(), err)
	}

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"activated": task.ID.String(),
			"name":      task.Name,
			"head":      doc.HeadPosition(),
			"progress":  doc.ProgressString(),
		})
		return
	}

	// Workflow rules are briefed at activation, not at bootstrap, so they
	// arrive next to the document they govern.
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "=== WORKFLOW ===")
	fmt.Fprintln(&buf, templates.WorkflowBriefing())
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, ui.RenderMarkdown(strings.TrimRight(doc.Content(), "\n")))

	if err := ui.ToPager(buf.String(), ui.PagerOptions{NoPager: workNoPagerFlag}); err != nil {
		fmt.Print(buf.String())
	}
}

// resolveWorkable maps lookup failures to the distinguishable user-facing
// outcomes: not found, done-but-reopenable, done, and no open gates.
func resolveWorkable(store *taskstore.Store, id taskstore.ID) *taskstore.Task {
	task, err := store.Workable(id)
	if err == nil {
		return task
	}

	if jsonOutput {
		outputJSONError(err, workableErrorCode(err))
	}

	switch {
	case errors.Is(err, taskstore.ErrNotFound):
		FatalError("task %s not found", id)
	case errors.Is(err, taskstore.ErrAlreadyDone):
		// Diagnose whether open gates remain: that distinguishes a task
		// worth reopening from one that is genuinely finished.
		if t, gerr := store.Get(id); gerr == nil {
			if doc, lerr := t.Load(); lerr == nil && !strings.HasPrefix(doc.HeadPosition(), "(") {
				FatalErrorWithHint(
					fmt.Sprintf("task %s is done but has open gates", id),
					fmt.Sprintf("set Status to 'pending' in %s to reopen, then rerun: tasks work %d", t.DocPath(), int(id)),
				)
			}
		}
		FatalError("task %s is done (all gates complete)", id)
	case errors.Is(err, taskstore.ErrNoOpenGates):
		FatalError("task %s has no open gates", id)
	default:
		FatalError("%v", err)
	}
	return nil // unreachable
}

func workableErrorCode(err error) string {
	switch {
	case errors.Is(err, taskstore.ErrNotFound):
		return "not_found"
	case errors.Is(err, taskstore.ErrAlreadyDone):
		return "already_done"
	case errors.Is(err, taskstore.ErrNoOpenGates):
		return "no_open_gates"
	}
	return ""
}

func runWorkDone() {
	token := workspace.SessionToken()

	id, err := getSession().Deactivate(token)
	switch {
	case errors.Is(err, session.ErrNoActiveTask):
		if jsonOutput {
			outputJSON(map[string]interface{}{"deactivated": nil})
			return
		}
		fmt.Println("No active task.")
	case err != nil:
		if jsonOutput {
			outputJSONError(err, "")
		}
		FatalError("%v", err)
	default:
		if jsonOutput {
			outputJSON(map[string]interface{}{"deactivated": id.String()})
			return
		}
		fmt.Printf("Task %s done.\n", id)
	}
	debug.PrintlnNormal(templates.BlockReminder())
}
