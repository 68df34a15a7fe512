package remote

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

// Both backends must satisfy the store's sync interface.
var (
	_ itinerary.RemoteStore = (*LibSQL)(nil)
	_ itinerary.RemoteStore = (*Postgres)(nil)
)

func openSQLiteBackend(t *testing.T) *LibSQL {
	t.Helper()
	path := filepath.Join(t.TempDir(), "remote.db")
	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s := NewLibSQL(conn)
	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testStop(id string, hour, position int) itinerary.Stop {
	return itinerary.Stop{
		ID:          id,
		Title:       "Stop " + id,
		Address:     "Jl. Malioboro " + id,
		ScheduledAt: time.Date(2025, 7, 14, hour, 0, 0, 0, time.UTC),
		Notes:       "bring cash",
		Cost:        25000,
		Status:      itinerary.StatusPlanned,
		Position:    position,
	}
}

// runRemoteContract exercises the behavior every backend must share.
func runRemoteContract(t *testing.T, rs itinerary.RemoteStore) {
	t.Helper()
	ctx := context.Background()

	stops, err := rs.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll(empty): %v", err)
	}
	if len(stops) != 0 {
		t.Fatalf("FetchAll(empty) = %d stops, want 0", len(stops))
	}

	// Insert out of position order; FetchAll must return position order.
	b := testStop("b", 10, 1)
	a := testStop("a", 9, 0)
	if err := rs.UpsertAll(ctx, []itinerary.Stop{b, a}); err != nil {
		t.Fatalf("UpsertAll: %v", err)
	}

	stops, err = rs.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(stops) != 2 || stops[0].ID != "a" || stops[1].ID != "b" {
		t.Fatalf("FetchAll = %+v, want [a b] by position", stops)
	}

	got := stops[0]
	if got.Title != a.Title || got.Address != a.Address || got.Notes != a.Notes ||
		got.Cost != a.Cost || got.Status != a.Status || got.Position != a.Position {
		t.Fatalf("fetched stop = %+v, want %+v", got, a)
	}
	if !got.ScheduledAt.Equal(a.ScheduledAt) {
		t.Fatalf("scheduled_at = %v, want %v", got.ScheduledAt, a.ScheduledAt)
	}

	// Upserting the same id updates in place.
	a.Status = itinerary.StatusVisited
	a.Cost = 30000
	if err := rs.UpsertAll(ctx, []itinerary.Stop{a}); err != nil {
		t.Fatalf("UpsertAll(update): %v", err)
	}
	stops, err = rs.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(stops) != 2 {
		t.Fatalf("upsert of existing id grew the table to %d rows", len(stops))
	}
	if stops[0].Status != itinerary.StatusVisited || stops[0].Cost != 30000 {
		t.Fatalf("updated stop = %+v, want visited/30000", stops[0])
	}

	// Deletes are targeted and idempotent.
	if err := rs.DeleteByID(ctx, "a"); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if err := rs.DeleteByID(ctx, "a"); err != nil {
		t.Fatalf("DeleteByID(missing): %v", err)
	}
	stops, err = rs.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(stops) != 1 || stops[0].ID != "b" {
		t.Fatalf("after delete FetchAll = %+v, want [b]", stops)
	}
}

func TestLibSQLContract(t *testing.T) {
	runRemoteContract(t, openSQLiteBackend(t))
}

func TestLibSQLEmptyUpsert(t *testing.T) {
	s := openSQLiteBackend(t)
	if err := s.UpsertAll(context.Background(), nil); err != nil {
		t.Fatalf("UpsertAll(nil): %v", err)
	}
}

func TestLibSQLRejectsInvalidStop(t *testing.T) {
	s := openSQLiteBackend(t)

	bad := testStop("x", 9, 0)
	bad.Title = ""
	err := s.UpsertAll(context.Background(), []itinerary.Stop{bad})
	if !errors.Is(err, itinerary.ErrValidation) {
		t.Fatalf("UpsertAll(invalid) error = %v, want ErrValidation", err)
	}

	stops, err := s.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(stops) != 0 {
		t.Fatalf("rejected upsert still wrote %d rows", len(stops))
	}
}

func TestPostgresContract(t *testing.T) {
	connURL := os.Getenv("WTE_POSTGRES_TEST_URL")
	if connURL == "" {
		t.Skip("WTE_POSTGRES_TEST_URL not set")
	}

	ctx := context.Background()
	s, err := OpenPostgres(ctx, connURL)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.pool.Exec(ctx, "DELETE FROM stops"); err != nil {
		t.Fatalf("clean table: %v", err)
	}
	runRemoteContract(t, s)
}
