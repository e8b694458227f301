package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jobvault/jobvault/internal/jobid"
)

// FSMirror persists records as a directory tree: one directory per encoded
// identifier segment, with the serialized record in RecordFileName. A
// directory can simultaneously hold a record and child directories, so
// identifiers remain prefix-extensible.
//
// This is the default mirror and the only one with a legacy on-disk shape:
// trees written by the old layout keep the record file under a LegacyStatusDir
// subdirectory, and LoadAll reads both shapes.
type FSMirror struct {
	root   string
	logger *slog.Logger
}

// NewFSMirror creates a mirror rooted at root. The root does not need to
// exist yet; Save creates it on demand and LoadAll treats a missing root as
// an empty mirror.
func NewFSMirror(root string, logger *slog.Logger) *FSMirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSMirror{root: root, logger: logger}
}

// Root returns the storage root directory.
func (m *FSMirror) Root() string {
	return m.root
}

// Save writes data to <root>/<encoded id path>/status.json, creating missing
// ancestor directories. The write goes through a temp file and rename so a
// reader never observes a half-written record.
func (m *FSMirror) Save(id jobid.ID, data []byte) error {
	dir := dirFor(m.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}

	target := filepath.Join(dir, RecordFileName)

	tmp, err := os.CreateTemp(dir, "*.tmp")
	if err != nil {
		return fmt.Errorf("create temp status file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write status file: %w", writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close status file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename status file: %w", err)
	}

	return nil
}

// Delete removes the entire directory subtree for id, including the records
// of any identifier that extends it. A subtree that never existed is not an
// error.
func (m *FSMirror) Delete(id jobid.ID) error {
	dir := dirFor(m.root, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete status dir: %w", err)
	}
	return nil
}

// LoadAll walks the storage tree depth-first and streams every readable
// record file to fn. Unreadable directories and files are logged and
// skipped; only a missing or unreadable root ends the walk, and a missing
// root is simply an empty mirror.
func (m *FSMirror) LoadAll(fn func(src string, data []byte)) error {
	if _, err := os.Stat(m.root); os.IsNotExist(err) {
		return nil
	}
	return m.loadDir(m.root, true, fn)
}

// loadDir processes one directory of the tree. Directory entries dispatch on
// kind and name:
//
//   - a directory named LegacyStatusDir holds a record file directly (legacy
//     layout) and is not a further identifier segment
//   - any other directory is a deeper identifier prefix and recurses
//   - a file named RecordFileName is the current directory's record
//
// The legacy branch and recursion into sibling directories are independent;
// both run.
func (m *FSMirror) loadDir(dir string, isRoot bool, fn func(src string, data []byte)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !isRoot {
			m.logger.Warn("skipping unreadable status directory", "dir", dir, "error", err)
			return nil
		}
		return fmt.Errorf("read storage root: %w", err)
	}

	for _, entry := range entries {
		switch {
		case entry.IsDir() && entry.Name() == LegacyStatusDir:
			m.loadRecordFile(filepath.Join(dir, entry.Name(), RecordFileName), fn)
		case entry.IsDir():
			_ = m.loadDir(filepath.Join(dir, entry.Name()), false, fn)
		case entry.Name() == RecordFileName:
			m.loadRecordFile(filepath.Join(dir, entry.Name()), fn)
		}
	}

	return nil
}

// loadRecordFile reads one record file and hands it to fn. Read failures are
// logged and skipped so a single bad file never aborts recovery.
func (m *FSMirror) loadRecordFile(path string, fn func(src string, data []byte)) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("skipping unreadable status file", "file", path, "error", err)
		}
		return
	}
	fn(path, data)
}
