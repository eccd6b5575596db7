// Package history persists migration history records in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded migration run.
type Entry struct {
	ID            int64     `json:"id"`
	FromVersion   string    `json:"from_version"`
	ToVersion     string    `json:"to_version"`
	AppliedAt     time.Time `json:"applied_at"`
	TotalFiles    int       `json:"total_files"`
	AffectedFiles int       `json:"affected_files"`
	ErrorCount    int       `json:"error_count"`
	BackupPath    string    `json:"backup_path,omitempty"`
}

// Store is the SQLite-backed history log handle.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database under the vault's metadata
// directory.
func Open(vaultPath string) (*Store, error) {
	dir := filepath.Join(vaultPath, ".quill")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .quill directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_version TEXT NOT NULL,
			to_version TEXT NOT NULL,
			applied_at TEXT NOT NULL,
			total_files INTEGER NOT NULL,
			affected_files INTEGER NOT NULL,
			error_count INTEGER NOT NULL,
			backup_path TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// Record appends one migration run to the log.
func (s *Store) Record(e Entry) error {
	appliedAt := e.AppliedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO migrations (from_version, to_version, applied_at, total_files, affected_files, error_count, backup_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.FromVersion, e.ToVersion, appliedAt.UTC().Format(time.RFC3339),
		e.TotalFiles, e.AffectedFiles, e.ErrorCount, e.BackupPath,
	)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// List returns all recorded migrations, most recent first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, from_version, to_version, applied_at, total_files, affected_files, error_count, backup_path
		 FROM migrations ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var appliedAt string
		if err := rows.Scan(&e.ID, &e.FromVersion, &e.ToVersion, &appliedAt,
			&e.TotalFiles, &e.AffectedFiles, &e.ErrorCount, &e.BackupPath); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, appliedAt); parseErr == nil {
			e.AppliedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
