// Package localstore provides the on-device key/value replica backed by
// embedded SQLite.
//
// This is the synchronous half of the local-first persistence cycle: every
// itinerary mutation writes here before any network is attempted, and the
// insight cache keeps resolved answers here so they survive restarts and
// work offline.
//
// The database runs in embedded mode (ncruces/go-sqlite3, no cgo) with WAL
// so the watch daemon can read while the CLI writes.
//
// Layout:
//   - Database file: <data-dir>/local.db
//   - Single kv table: key TEXT PRIMARY KEY, value TEXT, updated_at TEXT
//   - Keys: "stops" for the collection, "insight:<stop-id>" per insight
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store wraps the embedded SQLite connection holding the kv table.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the key/value database at path.
//
// The database is opened in embedded mode with WAL for concurrent reads.
// Missing parent directories are created. The caller must Close when done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Path returns the database file path. The watch daemon uses it as the
// fsnotify target.
func (s *Store) Path() string {
	return s.path
}

// Close checkpoints the WAL and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// Get returns the value for key and whether the key exists.
func (s *Store) Get(key string) (string, bool, error) {
	return s.GetContext(context.Background(), key)
}

// GetContext returns the value for key with context support.
func (s *Store) GetContext(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value for key.
func (s *Store) Set(key, value string) error {
	return s.SetContext(context.Background(), key, value)
}

// SetContext inserts or replaces the value for key with context support.
func (s *Store) SetContext(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO kv (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.conn.ExecContext(ctx, query, key, value, now); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Missing keys are not an error (idempotent).
func (s *Store) Delete(key string) error {
	return s.DeleteContext(context.Background(), key)
}

// DeleteContext removes a key with context support.
func (s *Store) DeleteContext(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Keys returns all keys with the given prefix, sorted ascending. An empty
// prefix lists every key.
func (s *Store) Keys(prefix string) ([]string, error) {
	return s.KeysContext(context.Background(), prefix)
}

// KeysContext returns matching keys with context support.
func (s *Store) KeysContext(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT key FROM kv WHERE key LIKE ? ORDER BY key ASC", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return keys, nil
}
