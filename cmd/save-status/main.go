// Package main implements the save-status hook for jobvault.
//
// This program reads one job status event from stdin (JSON format), validates
// it, and records it in the configured persistence mirror. Task runners that
// cannot link jobvault directly pipe their status changes through this
// binary.
//
// Exit codes:
//   - 0: Success (status saved, or event carried no state and was ignored)
//   - 1: Error (invalid input, unknown backend, unusable mirror)
//
// Environment variables:
//   - JOBVAULT_HOME: Base directory for storage (default: current directory).
//   - JOBVAULT_BACKEND: Mirror backend: "fs" (default), "sqlite" or "postgres".
//   - JOBVAULT_DIR, JOBVAULT_SQLITE_PATH, JOBVAULT_PG_URL: Backend locations.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jobvault/jobvault/internal/event"
	"github.com/jobvault/jobvault/internal/status"
	"github.com/jobvault/jobvault/internal/store"
)

// run contains the main logic, returning an exit code.
//
// Accepts an io.Reader for stdin to enable testing without modifying global
// state.
func run(stdin io.Reader) int {
	ev, err := event.ReadStatusEvent(stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving status: %v\n", err)
		return 1
	}

	// No state reported, nothing to record.
	if ev == nil {
		return 0
	}

	baseDir := strings.TrimSpace(os.Getenv("JOBVAULT_HOME"))
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving status: %v\n", err)
			return 1
		}
		baseDir = wd
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	mirror, err := store.GetMirror(baseDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving status: %v\n", err)
		return 1
	}

	st := store.New(status.NewJSONCodec(), mirror, logger)
	st.Put(event.BuildRecord(ev))

	fmt.Printf("Saved %s status for job %v\n", ev.State, ev.JobID)
	return 0
}

func main() {
	os.Exit(run(os.Stdin))
}
