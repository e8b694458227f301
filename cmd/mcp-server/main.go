// Package main implements the jobvault MCP server.
//
// The server exposes the job status store over stdio JSON-RPC (Model Context
// Protocol): get_status, store_status, remove_status and list_statuses. On
// startup it rebuilds the in-memory cache from the configured persistence
// mirror, then serves lookups from the cache only.
//
// Environment variables:
//   - JOBVAULT_HOME: Base directory for storage (default: current directory).
//   - JOBVAULT_BACKEND: Mirror backend: "fs" (default), "sqlite" or "postgres".
//   - JOBVAULT_DIR, JOBVAULT_SQLITE_PATH, JOBVAULT_PG_URL: Backend locations.
package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jobvault/jobvault/internal/mcpserver"
	"github.com/jobvault/jobvault/internal/status"
	"github.com/jobvault/jobvault/internal/store"
)

func run() int {
	errLogger := log.New(os.Stderr, "[jobvault] ", log.LstdFlags)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	baseDir := strings.TrimSpace(os.Getenv("JOBVAULT_HOME"))
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			errLogger.Printf("Failed to determine working directory: %v", err)
			return 1
		}
		baseDir = wd
	}

	mirror, err := store.GetMirror(baseDir, logger)
	if err != nil {
		errLogger.Printf("Failed to configure persistence mirror: %v", err)
		return 1
	}

	st := store.New(status.NewJSONCodec(), mirror, logger)
	st.Initialize()

	srv := mcpserver.NewServer(st)

	if err := server.ServeStdio(srv, server.WithErrorLogger(errLogger)); err != nil {
		errLogger.Printf("Server error: %v", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
