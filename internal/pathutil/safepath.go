// Package pathutil validates operator-supplied paths before the storage
// layer uses them.
//
// Storage locations can be overridden through environment variables, so every
// override is resolved and checked for containment to keep the mirror inside
// the directory it was configured under.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveSafePath resolves userPath relative to baseDir and verifies that the
// result stays within baseDir after symlink resolution.
//
// Relative paths are joined with baseDir; absolute paths are accepted but
// still checked for containment. The target does not need to exist yet: the
// nearest existing ancestor is resolved and the remaining components are
// reattached.
//
// Returns an error if userPath is empty or whitespace-only, contains a null
// byte, or escapes baseDir (including via symlinks).
func ResolveSafePath(baseDir, userPath string) (string, error) {
	if strings.TrimSpace(userPath) == "" {
		return "", fmt.Errorf("path is empty or whitespace-only")
	}
	if strings.Contains(userPath, "\x00") {
		return "", fmt.Errorf("path contains null byte")
	}

	candidate := userPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(baseDir, candidate)
	}
	candidate = filepath.Clean(candidate)

	resolved, err := resolveWithMissingTail(candidate)
	if err != nil {
		return "", err
	}

	baseResolved, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	rel, err := filepath.Rel(baseResolved, resolved)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %s", userPath)
	}

	return resolved, nil
}

// resolveWithMissingTail resolves symlinks in path, tolerating components
// that do not exist yet: it walks up to the nearest existing ancestor,
// resolves that, and rejoins the missing tail.
func resolveWithMissingTail(path string) (string, error) {
	current := path
	var tail []string

	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to resolve symlinks: %w", err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing parent directory found for %s", path)
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}
}
