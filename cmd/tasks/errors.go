package main

import (
	"fmt"
	"os"

	"github.com/gatework/tasks/internal/debug"
)

// FatalError writes an error message to stderr and exits with code 1.
// Use this for fatal errors that prevent the command from completing.
//
// Example:
//
//	if err := store.Create(name, taskType); err != nil {
//	    FatalError("%v", err)
//	}
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// FatalErrorWithHint writes an error message with a hint to stderr and exits.
// Use this when you can provide an actionable suggestion to fix the error.
//
// Example:
//
//	FatalErrorWithHint("task 007 is done but has open gates", "Set Status to 'pending' to reopen")
func FatalErrorWithHint(message, hint string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	os.Exit(1)
}

// WarnError writes a warning message to stderr and returns. Suppressed
// under --quiet. Use this for optional operations that enhance
// functionality but aren't required.
//
// Example:
//
//	if err := writeConfigYaml(agentDir); err != nil {
//	    WarnError("failed to create config.yaml: %v", err)
//	}
func WarnError(format string, args ...interface{}) {
	if debug.IsQuiet() {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
