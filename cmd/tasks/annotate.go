package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/chatlog"
	"github.com/gatework/tasks/internal/ui"
)

var annotateDryRunFlag bool

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Wrap transcript messages in task span markers",
	Long: `Rewrite the chat transcript so every run of messages is wrapped in
the span markers of the task that was active when they were written.
Attribution replays the command history log. Existing markers are
stripped first, so the pass can be re-run at any time.

With --dry-run the result is computed but nothing is written.`,
	Run: func(cmd *cobra.Command, args []string) {
		runAnnotate()
	},
}

func init() {
	annotateCmd.Flags().BoolVar(&annotateDryRunFlag, "dry-run", false, "Report what would change without writing")
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate() {
	res, err := chatlog.AnnotateFile(transcriptPath(), historyPath(), annotateDryRunFlag)
	if err != nil {
		if jsonOutput {
			outputJSONError(err, "annotate_failed")
		}
		FatalError("%v", err)
	}

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"opened":  res.Opened,
			"closed":  res.Closed,
			"changed": res.Changed,
			"dry_run": annotateDryRunFlag,
		})
		return
	}

	verb := "Annotated"
	if annotateDryRunFlag {
		verb = "Would annotate"
	}
	fmt.Printf("%s %s: %d spans opened, %d closed\n",
		verb, relativeToRoot(projectRoot, transcriptPath()), res.Opened, res.Closed)
	if !res.Changed {
		fmt.Println(ui.RenderMuted("(transcript already up to date)"))
	}
}
