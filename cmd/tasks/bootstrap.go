package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/config"
	"github.com/gatework/tasks/internal/templates"
	"github.com/gatework/tasks/internal/workspace"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Print session orientation: mind map, CLI reference, pending tasks",
	Long: `Print everything a fresh working session needs: the identity
preamble, the CLI quick reference, the full project mind map, and the
pending task list. Meant to be injected at session start.`,
	Run: func(cmd *cobra.Command, args []string) {
		runBootstrap()
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap() {
	store := getStore()

	limit := config.GetInt("mindmap.max-chars")
	if limit <= 0 {
		limit = config.DefaultMindMapMaxChars
	}
	mindMap, hasMindMap := workspace.MindMap(projectRoot, limit)

	if jsonOutput {
		rows, sum, err := store.List(true)
		if err != nil {
			outputJSONError(err, "list_failed")
		}
		out := map[string]interface{}{
			"preamble":      templates.IdentityPreamble(),
			"cli_reference": templates.CLIReference(),
			"pending":       rows,
			"summary":       sum,
		}
		if hasMindMap {
			out["mind_map"] = mindMap
		}
		outputJSON(out)
		return
	}

	fmt.Println(templates.IdentityPreamble())
	fmt.Println()
	fmt.Println(templates.CLIReference())
	fmt.Println()

	if hasMindMap {
		fmt.Printf("=== MIND MAP (%s) ===\n", workspace.MindMapName)
		fmt.Println(templates.MindMapHeader())
		fmt.Println()
		fmt.Println(strings.TrimRight(mindMap, "\n"))
		fmt.Println()
	}

	fmt.Println("=== PENDING TASKS ===")
	if err := displayList(store, true); err != nil {
		FatalError("%v", err)
	}
}
