package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/jobvault/jobvault/internal/jobid"
)

// sqliteSchemaDDL defines the schema for the SQLite mirror.
//
// Records are keyed by the same encoded relative path the filesystem mirror
// uses as a directory path, which keeps the identifier-to-key mapping
// collision-free and makes subtree deletes a prefix match.
const sqliteSchemaDDL = `
CREATE TABLE IF NOT EXISTS job_status (
    path TEXT PRIMARY KEY,
    data BLOB NOT NULL
);
`

// SQLiteMirror implements Mirror on a single SQLite file.
//
// Uses WAL mode and a connection per operation, so the mirror holds no open
// handles between store calls.
type SQLiteMirror struct {
	// DBPath is the absolute path to the SQLite database file.
	DBPath string
}

// NewSQLiteMirror creates the mirror and initializes its schema immediately.
// Parent directories are created if missing.
func NewSQLiteMirror(dbPath string) (*SQLiteMirror, error) {
	m := &SQLiteMirror{DBPath: dbPath}
	if err := m.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return m, nil
}

// connect opens a database connection with WAL mode enabled, creating the
// parent directory if needed.
func (m *SQLiteMirror) connect() (*sql.DB, error) {
	dir := filepath.Dir(m.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", m.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	return db, nil
}

func (m *SQLiteMirror) ensureSchema() error {
	db, err := m.connect()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(sqliteSchemaDDL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}

	return nil
}

// Save upserts the serialized record for id.
func (m *SQLiteMirror) Save(id jobid.ID, data []byte) error {
	db, err := m.connect()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.Exec(
		`INSERT INTO job_status (path, data) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET data = excluded.data`,
		RelPath(id), data,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job status: %w", err)
	}

	return nil
}

// Delete removes the record for id and every record under it. Deleting the
// empty identifier clears the whole mirror, matching the filesystem mirror's
// removal of its entire root.
func (m *SQLiteMirror) Delete(id jobid.ID) error {
	db, err := m.connect()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if id.IsEmpty() {
		if _, err := db.Exec(`DELETE FROM job_status`); err != nil {
			return fmt.Errorf("failed to clear job statuses: %w", err)
		}
		return nil
	}

	// substr comparison instead of LIKE: encoded paths contain literal '%'.
	_, err = db.Exec(
		`DELETE FROM job_status
		 WHERE path = ?1 OR substr(path, 1, length(?1) + 1) = ?1 || '/'`,
		RelPath(id),
	)
	if err != nil {
		return fmt.Errorf("failed to delete job status: %w", err)
	}

	return nil
}

// LoadAll streams every stored record to fn. A row that cannot be scanned
// ends the load; SQLite either returns a row or fails the query, there is no
// per-row corruption to skip at this layer.
func (m *SQLiteMirror) LoadAll(fn func(src string, data []byte)) error {
	db, err := m.connect()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT path, data FROM job_status ORDER BY path`)
	if err != nil {
		return fmt.Errorf("failed to query job statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var path string
		var data []byte
		if err := rows.Scan(&path, &data); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		fn("sqlite:"+path, data)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	return nil
}
