package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/chatlog"
	"github.com/gatework/tasks/internal/debug"
)

// logCommandCmd is the hook entry point feeding the attribution log. It is
// hidden: hooks call it on every command, users never do.
var logCommandCmd = &cobra.Command{
	Use:    "log-command <text>",
	Short:  "Append a timestamped line to the command history log",
	Hidden: true,
	Args:   cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLogCommand(strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(logCommandCmd)
}

func runLogCommand(text string) {
	if err := chatlog.AppendCommand(historyPath(), text, time.Now()); err != nil {
		FatalError("%v", err)
	}
	debug.Logf("logged command: %s\n", text)
}
