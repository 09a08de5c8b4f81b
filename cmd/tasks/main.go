package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatework/tasks/internal/config"
	"github.com/gatework/tasks/internal/debug"
	"github.com/gatework/tasks/internal/session"
	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/telemetry"
	"github.com/gatework/tasks/internal/workspace"
)

var (
	jsonOutput  bool
	rootFlag    string
	verboseFlag bool // Enable verbose/debug output
	quietFlag   bool // Suppress non-essential output

	// projectRoot is resolved once per invocation in PersistentPreRun.
	projectRoot string

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

func init() {
	// Initialize viper configuration
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	// Register persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root (default: auto-discover via .agent/tasks, MIND_MAP.md, CLAUDE.md)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	// Add --version flag to root command (same behavior as version subcommand)
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

var rootCmd = &cobra.Command{
	Use:   "tasks",
	Short: "tasks - Gate-based task lifecycle for working sessions",
	Long: `Tasks live as markdown documents under .agent/tasks/, one numbered
directory per task. Work moves one gate (checkbox) at a time; the session
pointer tracks which task is active, and the chat attribution engine maps
transcript messages back to the task that was active when they were written.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Handle --version flag on root command
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("tasks version %s (%s)\n", Version, Build)
			return
		}
		// No subcommand - show help
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		applyVerbosityFlags()

		// --root overrides discovery for this process and its children.
		if rootFlag != "" {
			_ = os.Setenv("TASKS_ROOT", workspace.CanonicalizePath(rootFlag))
			// Re-read config so .agent/config.yaml under the override wins.
			if err := config.Initialize(); err != nil {
				WarnError("reloading config: %v", err)
			}
		}
		if config.GetBool("json") {
			jsonOutput = true
		}

		if err := telemetry.Init(getRootContext(), "tasks", Version); err != nil {
			WarnError("telemetry init failed: %v", err)
		}

		projectRoot = workspace.Find()
		debug.Logf("project root: %s\n", projectRoot)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		telemetry.Shutdown(ctx)

		// Cancel the signal context to clean up resources
		if rootCancel != nil {
			rootCancel()
		}
	},
}

// setupSignalContext creates a context that cancels on SIGINT/SIGTERM for
// graceful shutdown of long-running operations (judge calls, list --watch).
func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags propagates --verbose and --quiet to the debug package.
func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

func getRootContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

// getStore returns a task store for the resolved project root.
func getStore() *taskstore.Store {
	return taskstore.New(projectRoot)
}

// getSession returns a session store for the resolved project root.
func getSession() *session.Store {
	return session.New(projectRoot)
}

// transcriptPath resolves the annotated chat transcript location. Relative
// configured paths are anchored at the project root.
func transcriptPath() string {
	return rootedPath(config.GetString("chat.transcript"), config.DefaultTranscript)
}

// historyPath resolves the command history log location.
func historyPath() string {
	return rootedPath(config.GetString("chat.log"), config.DefaultChatLog)
}

func rootedPath(p, fallback string) string {
	if p == "" {
		p = fallback
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectRoot, p)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
