package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/chatlog"
	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/timeparse"
	"github.com/gatework/tasks/internal/ui"
)

var contextSinceFlag string

var contextCmd = &cobra.Command{
	Use:   "context <number>",
	Short: "Show chat messages attributed to a task",
	Long: `Show the transcript messages attributed to a task, one compacted
line per message.

Attribution comes from the span markers written by 'tasks annotate'.
When the transcript carries no markers for the task, the most recent
messages are shown instead.

--since bounds the window. It accepts durations (90m, 1h30m), compact
offsets (-2d), natural phrases ("yesterday"), and dates (2026-08-01).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runContext(args[0])
	},
}

func init() {
	contextCmd.Flags().StringVar(&contextSinceFlag, "since", "", "Only messages at or after this time")
	rootCmd.AddCommand(contextCmd)
}

func runContext(arg string) {
	id, err := taskstore.ParseID(arg)
	if err != nil {
		FatalError("invalid task number %q", arg)
	}

	var since time.Time
	if contextSinceFlag != "" {
		since, err = timeparse.ParseSince(contextSinceFlag, time.Now())
		if err != nil {
			FatalError("%v", err)
		}
	}

	msgs, attributed, err := chatlog.ContextFromFile(transcriptPath(), id, since)
	if err != nil {
		FatalError("%v", err)
	}

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"task":       id.String(),
			"attributed": attributed,
			"messages":   msgs,
		})
		return
	}

	if len(msgs) == 0 {
		fmt.Printf("No messages found for task %s\n", id)
		return
	}
	if !attributed {
		fmt.Println(ui.RenderMuted(fmt.Sprintf("(no markers for task %s; showing the most recent messages)", id)))
	}
	for _, m := range msgs {
		fmt.Println(m)
	}
}
