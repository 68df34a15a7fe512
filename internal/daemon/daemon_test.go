package daemon

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/localstore"
)

// testStore opens a real local database and a store over it, mirroring
// daemon use: the watcher needs an actual file path on disk.
func testStore(t *testing.T, remote itinerary.RemoteStore, net itinerary.ConnectivitySignal) (*itinerary.Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "local.db")
	local, err := localstore.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	store, err := itinerary.New(itinerary.Options{
		Local:  local,
		Remote: remote,
		Net:    net,
		Logger: log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })
	return store, dbPath
}

// startDaemon runs the daemon in the background and registers shutdown
// checks with the test.
func startDaemon(t *testing.T, d *Daemon) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Daemon error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Daemon did not shut down within timeout")
		}
	})

	// Give the watcher a moment to register before tests start writing.
	time.Sleep(100 * time.Millisecond)
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

type fakeResolver struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeResolver) Resolve(ctx context.Context, stop itinerary.Stop) insight.Insight {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, stop.ID)
	return insight.Insight{
		StopID: stop.ID,
		Title:  stop.Title,
		Tips:   "bring water",
		Source: insight.SourceOffline,
	}
}

func (f *fakeResolver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNet struct {
	mu     sync.Mutex
	online bool
	fns    []func(bool)
}

func (f *fakeNet) Online() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeNet) OnChange(fn func(bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fns = append(f.fns, fn)
}

func (f *fakeNet) set(online bool) {
	f.mu.Lock()
	changed := f.online != online
	f.online = online
	fns := append([]func(bool){}, f.fns...)
	f.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range fns {
		fn(online)
	}
}

type countingRemote struct {
	mu      sync.Mutex
	stops   []itinerary.Stop
	upserts int
	lastLen int
}

func (r *countingRemote) FetchAll(ctx context.Context) ([]itinerary.Stop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]itinerary.Stop{}, r.stops...), nil
}

func (r *countingRemote) UpsertAll(ctx context.Context, stops []itinerary.Stop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.lastLen = len(stops)
	return nil
}

func (r *countingRemote) DeleteByID(ctx context.Context, id string) error { return nil }

func (r *countingRemote) upsertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts
}

func testConfig() *Config {
	config := DefaultConfig()
	config.DebounceInterval = 50 * time.Millisecond
	config.PullInterval = 0
	config.Prefetch = false
	config.Logger = log.New(io.Discard, "", 0)
	return config
}

func TestNew(t *testing.T) {
	store, dbPath := testStore(t, nil, nil)

	tests := []struct {
		name    string
		store   *itinerary.Store
		dbPath  string
		wantErr bool
	}{
		{name: "valid configuration", store: store, dbPath: dbPath},
		{name: "nil store", store: nil, dbPath: dbPath, wantErr: true},
		{name: "empty db path", store: store, dbPath: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.store, nil, nil, tt.dbPath, testConfig())
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if d != nil {
				defer d.Stop()
			}
		})
	}
}

func TestDaemon_ExternalWriteReload(t *testing.T) {
	store, dbPath := testStore(t, nil, nil)
	store.Load(context.Background())

	d, err := New(store, nil, nil, dbPath, testConfig())
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}
	startDaemon(t, d)

	// A second store over the same database stands in for another process
	// editing the itinerary while the daemon runs.
	second, err := localstore.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open second local store: %v", err)
	}
	t.Cleanup(func() { second.Close() })
	other, err := itinerary.New(itinerary.Options{Local: second, Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("Failed to create second store: %v", err)
	}
	other.Load(context.Background())
	_, _, err = other.Add(context.Background(), itinerary.NewStop{
		Title:   "Uluwatu Temple",
		Address: "Pecatu, Badung",
		At:      time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ok := eventually(t, 3*time.Second, func() bool {
		return len(store.Snapshot().Stops) == 1
	})
	if !ok {
		t.Fatalf("daemon did not pick up external write, got %d stops", len(store.Snapshot().Stops))
	}
	if got := store.Snapshot().Stops[0].Title; got != "Uluwatu Temple" {
		t.Errorf("reloaded title = %q, want %q", got, "Uluwatu Temple")
	}
}

func TestDaemon_PrefetchNextStop(t *testing.T) {
	store, dbPath := testStore(t, nil, nil)
	store.Load(context.Background())

	resolver := &fakeResolver{}
	got := make(chan insight.Insight, 8)

	config := testConfig()
	config.Prefetch = true
	config.OnInsight = func(ins insight.Insight) { got <- ins }

	d, err := New(store, resolver, nil, dbPath, config)
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}
	startDaemon(t, d)

	later := time.Now().Add(48 * time.Hour)
	if _, _, err := store.Add(context.Background(), itinerary.NewStop{Title: "Tanah Lot", Address: "Beraban", At: later}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	select {
	case ins := <-got:
		if ins.Title != "Tanah Lot" {
			t.Errorf("prefetched insight for %q, want %q", ins.Title, "Tanah Lot")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no insight prefetched after first add")
	}

	// An earlier stop becomes the new next and triggers another prefetch.
	earlier := time.Now().Add(24 * time.Hour)
	if _, _, err := store.Add(context.Background(), itinerary.NewStop{Title: "Ubud Market", Address: "Ubud", At: earlier}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	select {
	case ins := <-got:
		if ins.Title != "Ubud Market" {
			t.Errorf("prefetched insight for %q, want %q", ins.Title, "Ubud Market")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no insight prefetched after next stop changed")
	}

	// Adding a stop after the current next must not re-resolve.
	calls := resolver.count()
	if _, _, err := store.Add(context.Background(), itinerary.NewStop{Title: "Airport", Address: "Tuban", At: time.Now().Add(96 * time.Hour)}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if resolver.count() != calls {
		t.Errorf("resolver called %d times after unrelated add, want %d", resolver.count(), calls)
	}
}

func TestDaemon_ReconnectFlush(t *testing.T) {
	t.Run("opt-in pushes on reconnect", func(t *testing.T) {
		remote := &countingRemote{}
		net := &fakeNet{online: false}
		store, dbPath := testStore(t, remote, net)
		store.Load(context.Background())
		if _, _, err := store.Add(context.Background(), itinerary.NewStop{Title: "Borobudur", Address: "Magelang", At: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		config := testConfig()
		config.FlushOnReconnect = true
		d, err := New(store, nil, net, dbPath, config)
		if err != nil {
			t.Fatalf("Failed to create daemon: %v", err)
		}
		startDaemon(t, d)

		if remote.upsertCount() != 0 {
			t.Fatalf("remote received %d pushes while offline", remote.upsertCount())
		}
		net.set(true)

		if !eventually(t, 2*time.Second, func() bool { return remote.upsertCount() > 0 }) {
			t.Fatal("reconnect did not push the local collection")
		}
		remote.mu.Lock()
		lastLen := remote.lastLen
		remote.mu.Unlock()
		if lastLen != 1 {
			t.Errorf("pushed %d stops, want 1", lastLen)
		}
	})

	t.Run("default leaves remote alone", func(t *testing.T) {
		remote := &countingRemote{}
		net := &fakeNet{online: false}
		store, dbPath := testStore(t, remote, net)
		store.Load(context.Background())
		if _, _, err := store.Add(context.Background(), itinerary.NewStop{Title: "Borobudur", Address: "Magelang", At: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		d, err := New(store, nil, net, dbPath, testConfig())
		if err != nil {
			t.Fatalf("Failed to create daemon: %v", err)
		}
		startDaemon(t, d)

		net.set(true)
		time.Sleep(200 * time.Millisecond)
		if got := remote.upsertCount(); got != 0 {
			t.Errorf("remote received %d pushes, want 0 without flush_on_reconnect", got)
		}
	})
}

func TestDaemon_PeriodicPull(t *testing.T) {
	remote := &countingRemote{stops: []itinerary.Stop{
		{ID: "r1", Title: "Prambanan", Status: itinerary.StatusPlanned, Position: 0},
		{ID: "r2", Title: "Malioboro", Status: itinerary.StatusPlanned, Position: 1},
	}}
	net := &fakeNet{online: true}
	store, dbPath := testStore(t, remote, net)

	config := testConfig()
	config.PullInterval = 30 * time.Millisecond

	d, err := New(store, nil, net, dbPath, config)
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}
	startDaemon(t, d)

	ok := eventually(t, 2*time.Second, func() bool {
		return len(store.Snapshot().Stops) == 2
	})
	if !ok {
		t.Fatalf("periodic pull never populated the store, got %d stops", len(store.Snapshot().Stops))
	}
}

func TestDaemon_GracefulShutdown(t *testing.T) {
	store, dbPath := testStore(t, nil, nil)

	d, err := New(store, nil, nil, dbPath, testConfig())
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Daemon shutdown error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Daemon did not shut down within timeout")
	}
}
