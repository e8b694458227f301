package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobvault/jobvault/internal/pathutil"
)

// GetMirror returns the configured persistence mirror based on environment
// variables.
//
// Environment variables:
//   - JOBVAULT_BACKEND: "fs" (default), "sqlite" or "postgres"
//   - JOBVAULT_DIR: custom storage root for the fs mirror
//     (default: <baseDir>/.jobvault/status)
//   - JOBVAULT_SQLITE_PATH: custom SQLite path
//     (default: <baseDir>/.jobvault/status.db)
//   - JOBVAULT_PG_URL: PostgreSQL connection string, required for "postgres"
//
// Custom paths are validated to stay within baseDir. Returns an error for an
// unknown backend type, an escaping path, or a database that cannot be
// initialized.
func GetMirror(baseDir string, logger *slog.Logger) (Mirror, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("JOBVAULT_BACKEND")))
	if backend == "" {
		backend = "fs"
	}

	switch backend {
	case "fs":
		root, err := envPath(baseDir, "JOBVAULT_DIR", filepath.Join(".jobvault", "status"))
		if err != nil {
			return nil, fmt.Errorf("failed to determine storage root: %w", err)
		}
		return NewFSMirror(root, logger), nil

	case "sqlite":
		path, err := envPath(baseDir, "JOBVAULT_SQLITE_PATH", filepath.Join(".jobvault", "status.db"))
		if err != nil {
			return nil, fmt.Errorf("failed to determine SQLite database path: %w", err)
		}
		return NewSQLiteMirror(path)

	case "postgres":
		connStr := strings.TrimSpace(os.Getenv("JOBVAULT_PG_URL"))
		if connStr == "" {
			return nil, fmt.Errorf("JOBVAULT_PG_URL is required for the postgres backend")
		}
		return NewPostgresMirror(connStr)

	default:
		return nil, fmt.Errorf("unknown mirror backend: %q. Expected 'fs', 'sqlite' or 'postgres'", backend)
	}
}

// envPath resolves a path override from the named environment variable,
// validating that it stays within baseDir, or falls back to the default
// relative path under baseDir.
func envPath(baseDir, envVar, defaultRel string) (string, error) {
	custom := strings.TrimSpace(os.Getenv(envVar))
	if custom == "" {
		return filepath.Join(baseDir, defaultRel), nil
	}

	safe, err := pathutil.ResolveSafePath(baseDir, custom)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", envVar, err)
	}
	return safe, nil
}
