package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/debug"
	"github.com/gatework/tasks/internal/judge"
	"github.com/gatework/tasks/internal/taskstore"
)

var judgeModeFlag string

var judgeCmd = &cobra.Command{
	Use:   "judge <number>",
	Short: "Blind review of a task by an independent model",
	Long: `Send a task document (plus the project mind map, when present) to an
independent reviewer model and record its findings.

The reviewer sees only the documents, not this session's conversation,
so it judges what is written rather than what was meant. Findings are
written into the document's Judge section and appended to judge.log in
the task directory.

Modes:
  plan   review the plan before work starts (default)
  impl   review the implementation evidence against the plan`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runJudge(args[0])
	},
}

func init() {
	judgeCmd.Flags().StringVar(&judgeModeFlag, "mode", judge.ModePlan, "Review mode: plan or impl")
	rootCmd.AddCommand(judgeCmd)
}

func runJudge(arg string) {
	id, err := taskstore.ParseID(arg)
	if err != nil {
		FatalError("invalid task number %q", arg)
	}

	store := getStore()
	task, err := store.Get(id)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			FatalError("task %s not found", id)
		}
		FatalError("%v", err)
	}

	j, err := judge.New()
	if err != nil {
		if errors.Is(err, judge.ErrAPIKeyRequired) {
			FatalErrorWithHint(err.Error(), "export ANTHROPIC_API_KEY to enable the judge")
		}
		FatalError("%v", err)
	}

	relDoc := relativeToRoot(store.Root(), task.DocPath())
	if !jsonOutput {
		fmt.Printf("Running blind judge on %s...\n", relDoc)
	}

	res, err := j.Evaluate(getRootContext(), store, task, judgeModeFlag)
	if err != nil {
		if jsonOutput {
			outputJSONError(err, "judge_failed")
		}
		FatalError("%v", err)
	}
	debug.Logf("judge: model=%s mode=%s tokens=%d/%d elapsed=%s\n",
		res.Model, res.Mode, res.InputTokens, res.OutputTokens, res.Elapsed.Round(time.Millisecond))

	if jsonOutput {
		outputJSON(res)
		return
	}

	fmt.Println(strings.TrimRight(res.Findings, "\n"))
	fmt.Printf("\nSaved: %s\n", relativeToRoot(store.Root(), filepath.Join(task.Dir, judge.LogName)))
}
