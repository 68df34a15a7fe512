package remote

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

// LibSQL is the Turso-backed remote store.
type LibSQL struct {
	conn *sql.DB
}

// OpenLibSQL connects to a Turso database. rawURL is a libsql:// URL; the
// auth token, when non-empty, is appended as the authToken query
// parameter. The caller must Close when done.
func OpenLibSQL(rawURL, authToken string) (*LibSQL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote url: %w", err)
	}
	if authToken != "" {
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
	}

	conn, err := sql.Open("libsql", u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &LibSQL{conn: conn}
	if err := s.InitSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// NewLibSQL wraps an existing connection. Used by tests to run the backend
// against a local SQLite file.
func NewLibSQL(conn *sql.DB) *LibSQL {
	return &LibSQL{conn: conn}
}

// Close closes the underlying connection.
func (s *LibSQL) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// InitSchema creates the stops table if it doesn't exist. Idempotent.
func (s *LibSQL) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS stops (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		address TEXT NOT NULL,
		scheduled_at TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		cost REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'planned',
		position INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_stops_position ON stops(position);
	`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize remote schema: %w", err)
	}
	return nil
}

// FetchAll returns every stored stop ordered by creation position.
func (s *LibSQL) FetchAll(ctx context.Context) ([]itinerary.Stop, error) {
	query := `
	SELECT id, title, address, scheduled_at, notes, cost, status, position
	FROM stops
	ORDER BY position ASC
	`
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	var stops []itinerary.Stop
	for rows.Next() {
		var (
			st          itinerary.Stop
			scheduledAt string
			status      string
		)
		if err := rows.Scan(&st.ID, &st.Title, &st.Address, &scheduledAt,
			&st.Notes, &st.Cost, &status, &st.Position); err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		t, err := time.Parse(time.RFC3339, scheduledAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse scheduled_at for %s: %w", st.ID, err)
		}
		st.ScheduledAt = t
		st.Status = itinerary.Status(status)
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stops: %w", err)
	}
	return stops, nil
}

// UpsertAll inserts or updates the given stops by id in one transaction.
// created_at is only set on first insert.
func (s *LibSQL) UpsertAll(ctx context.Context, stops []itinerary.Stop) error {
	for i := range stops {
		if err := stops[i].Validate(); err != nil {
			return fmt.Errorf("refusing to upsert: %w", err)
		}
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO stops (id, title, address, scheduled_at, notes, cost, status, position)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		address = excluded.address,
		scheduled_at = excluded.scheduled_at,
		notes = excluded.notes,
		cost = excluded.cost,
		status = excluded.status,
		position = excluded.position
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, st := range stops {
		_, err := stmt.ExecContext(ctx,
			st.ID,
			st.Title,
			st.Address,
			st.ScheduledAt.UTC().Format(time.RFC3339),
			st.Notes,
			st.Cost,
			string(st.Status),
			st.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert stop %s: %w", st.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// DeleteByID removes one stop row. Missing ids are not an error.
func (s *LibSQL) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM stops WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete stop %s: %w", id, err)
	}
	return nil
}
