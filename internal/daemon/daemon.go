// Package daemon provides the watch-mode loop behind `wte watch` and the
// dashboard.
//
// The daemon:
//  1. Watches the local database for writes made by other processes and
//     reloads the in-memory collection when they happen
//  2. Prefetches the insight for the current next stop whenever it changes
//  3. Periodically pulls the remote collection so edits from other devices
//     show up without a restart
//  4. Optionally pushes the full collection when the network comes back
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/insight"
	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

// Resolver produces insights for prefetching.
type Resolver interface {
	Resolve(ctx context.Context, stop itinerary.Stop) insight.Insight
}

// Connectivity is the network signal the daemon reacts to.
type Connectivity interface {
	Online() bool
	OnChange(fn func(online bool))
}

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long to wait before reacting to database
	// file events. Batches the bursts SQLite produces per write.
	DebounceInterval time.Duration

	// PullInterval is how often to pull the remote collection. Zero
	// disables periodic pulls.
	PullInterval time.Duration

	// Prefetch resolves the next stop's insight ahead of need.
	Prefetch bool

	// FlushOnReconnect pushes the full collection when the network comes
	// back. Off by default; see the sync configuration for why.
	FlushOnReconnect bool

	// OnInsight receives prefetched insights, e.g. for the dashboard.
	OnInsight func(insight.Insight)

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 200 * time.Millisecond,
		PullInterval:     5 * time.Minute,
		Prefetch:         true,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates file watching, remote pulls, and insight prefetch.
type Daemon struct {
	store    *itinerary.Store
	resolver Resolver
	net      Connectivity
	dbPath   string
	config   *Config

	watcher       *fsnotify.Watcher
	changeQueue   map[string]time.Time // event path -> timestamp
	changeQueueMu sync.Mutex

	activeMu   sync.Mutex
	activeStop string // id of the stop whose insight was last prefetched

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a daemon. resolver and net may be nil, disabling prefetch
// and reconnect handling respectively. dbPath is the local database file
// whose directory is watched.
func New(store *itinerary.Store, resolver Resolver, net Connectivity, dbPath string, config *Config) (*Daemon, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		store:       store,
		resolver:    resolver,
		net:         net,
		dbPath:      dbPath,
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins the daemon's operation and blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting watch daemon")

	// SQLite writes touch the -wal and -shm siblings, and the file can be
	// replaced outright on checkpoint, so watch the directory and filter.
	dir := filepath.Dir(d.dbPath)
	if err := d.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch data directory: %w", err)
	}
	d.config.Logger.Printf("Watching: %s", d.dbPath)

	d.store.Subscribe(d.onSnapshot)
	d.onSnapshot(d.store.Snapshot())

	if d.net != nil {
		d.net.OnChange(d.onConnectivityChange)
	}

	d.wg.Add(3)
	go d.watchFileEvents()
	go d.processChangeQueue()
	go d.pullRemote()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping watch daemon")
	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}
	d.wg.Wait()

	d.config.Logger.Println("Watch daemon stopped")
	return nil
}

// watchFileEvents monitors filesystem events and queues relevant ones.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	base := filepath.Base(d.dbPath)
	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// local.db plus its -wal and -shm siblings.
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange adds an event to the change queue with debouncing.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	d.changeQueue[path] = time.Now()
}

// processChangeQueue reloads the collection once queued events settle.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.processPendingChanges()
		}
	}
}

// processPendingChanges triggers a reload when events are old enough.
func (d *Daemon) processPendingChanges() {
	d.changeQueueMu.Lock()
	now := time.Now()
	settled := false
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		delete(d.changeQueue, path)
		settled = true
	}
	d.changeQueueMu.Unlock()

	if !settled {
		return
	}
	if d.store.ReloadLocal() {
		d.config.Logger.Println("Reloaded collection after external change")
	}
}

// pullRemote periodically refreshes from the remote store.
func (d *Daemon) pullRemote() {
	defer d.wg.Done()

	if d.config.PullInterval <= 0 || !d.store.HasRemote() {
		return
	}
	ticker := time.NewTicker(d.config.PullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			if !d.store.Online() {
				continue
			}
			if _, err := d.store.PullRemote(d.ctx); err != nil {
				d.config.Logger.Printf("Periodic pull failed: %v", err)
			}
		}
	}
}

// onSnapshot tracks the next stop and prefetches its insight when it
// changes. Runs on the mutating goroutine, so the actual resolution is
// pushed to a background goroutine.
func (d *Daemon) onSnapshot(snap itinerary.Snapshot) {
	if !d.config.Prefetch || d.resolver == nil {
		return
	}

	next := snap.Next()

	d.activeMu.Lock()
	if next == nil {
		d.activeStop = ""
		d.activeMu.Unlock()
		return
	}
	if next.ID == d.activeStop {
		d.activeMu.Unlock()
		return
	}
	d.activeStop = next.ID
	d.activeMu.Unlock()

	stop := *next
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ins := d.resolver.Resolve(d.ctx, stop)

		// The next stop may have moved on while we resolved; stale
		// results are dropped rather than announced.
		d.activeMu.Lock()
		current := d.activeStop == stop.ID
		d.activeMu.Unlock()
		if !current {
			return
		}

		d.config.Logger.Printf("Prefetched insight for %s (%s)", stop.Title, ins.Source)
		if d.config.OnInsight != nil {
			d.config.OnInsight(ins)
		}
	}()
}

// onConnectivityChange reacts to network transitions.
func (d *Daemon) onConnectivityChange(onlineNow bool) {
	if !onlineNow || !d.config.FlushOnReconnect || !d.store.HasRemote() {
		return
	}

	d.config.Logger.Println("Network restored, pushing local collection")
	ctx, cancel := context.WithTimeout(d.ctx, 30*time.Second)
	defer cancel()
	if err := d.store.FlushRemote(ctx); err != nil {
		d.config.Logger.Printf("Reconnect push failed: %v", err)
	}
}
