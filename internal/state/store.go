// Package state persists document fingerprints across watch-session
// revalidations so unchanged files can skip re-validation. Full builds never
// consult it; strict rebuild semantics come from a fresh build context.
package state

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Status values recorded per document.
const (
	StatusValid  = "valid"
	StatusIssues = "issues"
)

// Store is a SQLite-backed fingerprint index.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the store at dbPath. Use ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize state schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		status TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Fingerprint returns the stored content hash and status for path.
func (s *Store) Fingerprint(ctx context.Context, path string) (hash, status string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, "SELECT hash, status FROM documents WHERE path = ?", path)
	switch err := row.Scan(&hash, &status); err {
	case nil:
		return hash, status, true, nil
	case sql.ErrNoRows:
		return "", "", false, nil
	default:
		return "", "", false, fmt.Errorf("query fingerprint: %w", err)
	}
}

// Record upserts the fingerprint for path.
func (s *Store) Record(ctx context.Context, path, hash, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (path, hash, status, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, status = excluded.status, updated_at = excluded.updated_at`,
		path, hash, status, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record fingerprint: %w", err)
	}
	return nil
}

// Forget removes the fingerprint for path (deleted or renamed files).
func (s *Store) Forget(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE path = ?", path); err != nil {
		return fmt.Errorf("forget fingerprint: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashBytes computes the content fingerprint used for change detection.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
