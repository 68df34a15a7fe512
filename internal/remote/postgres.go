package remote

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

// Postgres is the pgx-backed remote store for self-hosted setups.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to a PostgreSQL database using a standard
// postgres:// connection URL. The caller must Close when done.
func OpenPostgres(ctx context.Context, connURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping remote database: %w", err)
	}

	s := &Postgres{pool: pool}
	if err := s.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgres wraps an existing pool. Used by tests.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close releases the connection pool.
func (s *Postgres) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// InitSchema creates the stops table if it doesn't exist. Idempotent.
func (s *Postgres) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS stops (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		address TEXT NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'planned',
		position INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_stops_position ON stops(position);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize remote schema: %w", err)
	}
	return nil
}

// FetchAll returns every stored stop ordered by creation position.
func (s *Postgres) FetchAll(ctx context.Context) ([]itinerary.Stop, error) {
	query := `
	SELECT id, title, address, scheduled_at, notes, cost, status, position
	FROM stops
	ORDER BY position ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	var stops []itinerary.Stop
	for rows.Next() {
		var (
			st     itinerary.Stop
			status string
		)
		if err := rows.Scan(&st.ID, &st.Title, &st.Address, &st.ScheduledAt,
			&st.Notes, &st.Cost, &status, &st.Position); err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		st.ScheduledAt = st.ScheduledAt.UTC()
		st.Status = itinerary.Status(status)
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stops: %w", err)
	}
	return stops, nil
}

// UpsertAll inserts or updates the given stops by id in one batch.
// created_at is only set on first insert.
func (s *Postgres) UpsertAll(ctx context.Context, stops []itinerary.Stop) error {
	if len(stops) == 0 {
		return nil
	}
	for i := range stops {
		if err := stops[i].Validate(); err != nil {
			return fmt.Errorf("refusing to upsert: %w", err)
		}
	}

	query := `
	INSERT INTO stops (id, title, address, scheduled_at, notes, cost, status, position)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		address = EXCLUDED.address,
		scheduled_at = EXCLUDED.scheduled_at,
		notes = EXCLUDED.notes,
		cost = EXCLUDED.cost,
		status = EXCLUDED.status,
		position = EXCLUDED.position
	`
	batch := &pgx.Batch{}
	for _, st := range stops {
		batch.Queue(query,
			st.ID, st.Title, st.Address, st.ScheduledAt.UTC(),
			st.Notes, st.Cost, string(st.Status), st.Position)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range stops {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert stops: %w", err)
		}
	}
	return nil
}

// DeleteByID removes one stop row. Missing ids are not an error.
func (s *Postgres) DeleteByID(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM stops WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete stop %s: %w", id, err)
	}
	return nil
}
