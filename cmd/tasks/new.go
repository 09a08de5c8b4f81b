package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/playbook"
	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/templates"
)

var newFormFlag bool

var newCmd = &cobra.Command{
	Use:   "new <type> <name>",
	Short: "Create a numbered task from a playbook pattern",
	Long: `Create a numbered task directory with a task.md seeded from the
pattern for the given type.

The task number is allocated automatically. The name becomes the
directory slug, so "Add Auth" creates e.g. 003-add-auth/task.md.

Examples:
  tasks new feature "Add OAuth login"
  tasks new bugfix broken-pagination
  tasks new --form`,
	Run: func(cmd *cobra.Command, args []string) {
		runNew(args)
	},
}

func init() {
	newCmd.Flags().BoolVar(&newFormFlag, "form", false, "Fill in type, name, and intent interactively")
	rootCmd.AddCommand(newCmd)
}

func runNew(args []string) {
	var taskType, name string
	if len(args) > 0 {
		taskType = args[0]
	}
	if len(args) > 1 {
		name = strings.Join(args[1:], " ")
	}

	var intent string
	if newFormFlag {
		runNewForm(&taskType, &name, &intent)
	}

	if taskType == "" || name == "" {
		fmt.Fprintln(os.Stderr, "Error: 'new' requires a type and a name")
		fmt.Fprintln(os.Stderr, "Usage: tasks new <type> <name>")
		fmt.Fprintf(os.Stderr, "Types: %s\n", strings.Join(playbook.Types(), ", "))
		os.Exit(1)
	}

	store := getStore()
	task, err := store.Create(name, taskType)
	if err != nil {
		if jsonOutput {
			outputJSONError(err, "create_failed")
		}
		FatalError("%v", err)
	}

	if intent != "" {
		if doc, err := task.Load(); err == nil {
			doc.SetIntent(intent)
			if err := doc.Save(); err != nil {
				WarnError("saving intent: %v", err)
			}
		}
	}

	patternName, _ := playbook.PatternFor(taskType)
	rel := relativeToRoot(store.Root(), task.DocPath())

	if jsonOutput {
		outputJSON(map[string]interface{}{
			"created": task.ID.String(),
			"name":    task.Name,
			"type":    taskType,
			"pattern": patternName,
			"path":    rel,
		})
		return
	}

	fmt.Printf("Created: %s\n", rel)
	fmt.Printf("Pattern: %s\n", patternName)
	fmt.Printf("Next: fill in task.md gates, then ask user to run: tasks work %s\n", task.ID)
	fmt.Println()

	if guide := playbook.SkillGuide(projectRoot); guide != "" {
		fmt.Println("=== PLAYBOOK (task.md design guide) ===")
		fmt.Println("Use this to improve your task.md: select patterns and gates as appropriate,")
		fmt.Println("or invent new ones. This is a starting point — expand as needed.")
		fmt.Println()
		fmt.Println(guide)
		fmt.Println()
		fmt.Printf("Now fill in %s — design a good task.md.\n", rel)
	}
}

// runNewForm collects type, name, and intent interactively. Values passed
// on the command line pre-seed the matching fields.
func runNewForm(taskType, name, intent *string) {
	typeOptions := make([]huh.Option[string], 0, len(playbook.Types()))
	for _, t := range playbook.Types() {
		typeOptions = append(typeOptions, huh.NewOption(templates.TitleCase(t), t))
	}

	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Becomes the task directory slug (required)").
				Placeholder("e.g., Add OAuth login").
				Value(name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a name is required")
					}
					if taskstore.Slugify(s) == "" {
						return fmt.Errorf("name needs at least one letter or digit")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Type").
				Description("Picks the gate pattern for task.md").
				Options(typeOptions...).
				Value(taskType),

			huh.NewText().
				Title("Intent").
				Description("The outcome this task exists to achieve (optional)").
				Placeholder("What should be true when this is done?").
				CharLimit(2000).
				Value(intent),

			huh.NewConfirm().
				Title("Create this task?").
				Affirmative("Create").
				Negative("Cancel").
				Value(&confirm),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Fprintln(os.Stderr, "Task creation cancelled.")
			os.Exit(0)
		}
		FatalError("form error: %v", err)
	}
	if !confirm {
		fmt.Fprintln(os.Stderr, "Task creation cancelled.")
		os.Exit(0)
	}
	*intent = strings.TrimSpace(*intent)
}

// relativeToRoot shortens a path for display, falling back to the input
// when no relative form exists.
func relativeToRoot(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
