package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"sync"
	"time"
)

// collectionKey is the local-store key holding the serialized collection.
// The whole collection lives under one key and is rewritten in full on
// every mutation.
const collectionKey = "stops"

// LocalStore is the synchronous on-device key/value replica the store
// writes through to. It must work without network access.
type LocalStore interface {
	// Get returns the value for key and whether the key exists.
	Get(key string) (string, bool, error)
	// Set replaces the value for key.
	Set(key, value string) error
}

// RemoteStore is the optional row store used for cross-device sync. All
// methods take a context so slow networks stay cancelable.
type RemoteStore interface {
	// FetchAll returns every remote stop, ordered by position ascending.
	FetchAll(ctx context.Context) ([]Stop, error)
	// UpsertAll inserts or updates the given stops keyed by id.
	UpsertAll(ctx context.Context, stops []Stop) error
	// DeleteByID removes one stop row. Unknown ids are not an error.
	DeleteByID(ctx context.Context, id string) error
}

// ConnectivitySignal reports whether the network is currently reachable.
// The store consults it before every remote attempt.
type ConnectivitySignal interface {
	Online() bool
}

// alwaysOnline is the fallback signal when none is configured.
type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }

// Options configures New.
type Options struct {
	// Local is the on-device replica. Required.
	Local LocalStore

	// Remote is the cross-device row store. Nil disables remote sync.
	Remote RemoteStore

	// Net gates remote attempts. Defaults to an always-online signal.
	Net ConnectivitySignal

	// Logger receives sync diagnostics. Defaults to a stderr logger.
	Logger *log.Logger

	// RemoteTimeout bounds each background remote call. Defaults to 10s.
	RemoteTimeout time.Duration
}

// Store holds the authoritative stop collection and drives the local-first
// persistence cycle. All exported methods are safe for concurrent use.
type Store struct {
	local  LocalStore
	remote RemoteStore
	net    ConnectivitySignal
	logger *log.Logger
	pusher *pusher

	mu    sync.Mutex
	stops []Stop
	rev   uint64
	next  int // next creation position
	subs  []func(Snapshot)
}

// New creates a store over the given replicas. Call Load before reading
// state.
func New(opts Options) (*Store, error) {
	if opts.Local == nil {
		return nil, fmt.Errorf("local store is required")
	}
	if opts.Net == nil {
		opts.Net = alwaysOnline{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "[itinerary] ", log.LstdFlags)
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = 10 * time.Second
	}
	s := &Store{
		local:  opts.Local,
		remote: opts.Remote,
		net:    opts.Net,
		logger: opts.Logger,
	}
	if s.remote != nil {
		s.pusher = newPusher(s.remote, s.net, s.logger, opts.RemoteTimeout)
	}
	return s, nil
}

// Load primes the collection: local replica first so state exists without
// network, then the remote collection if one is configured and reachable.
// The remote wins outright when the fetch succeeds; on any failure the
// local state stands and the error is only logged.
func (s *Store) Load(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.local.Get(collectionKey)
	switch {
	case err != nil:
		s.logger.Printf("WARNING: failed to read local collection, starting empty: %v", err)
	case ok && raw != "":
		var stops []Stop
		if err := json.Unmarshal([]byte(raw), &stops); err != nil {
			s.logger.Printf("WARNING: local collection is unreadable, starting empty: %v", err)
		} else {
			sortByTime(stops)
			s.stops = stops
		}
	}
	s.next = nextPosition(s.stops)

	if s.remote != nil && s.net.Online() {
		if err := s.pullLocked(ctx); err != nil {
			s.logger.Printf("WARNING: remote load failed, keeping local state: %v", err)
		}
	}

	return s.snapshotLocked()
}

// Add validates the input, assigns an id and creation position, and runs
// the persist cycle. The new stop always starts planned.
func (s *Store) Add(ctx context.Context, in NewStop) (Snapshot, Stop, error) {
	if err := in.validate(); err != nil {
		return Snapshot{}, Stop{}, err
	}
	cost := in.Cost
	if cost < 0 || math.IsNaN(cost) {
		cost = 0
	}

	s.mu.Lock()
	stop := Stop{
		ID:          newID(),
		Title:       strings.TrimSpace(in.Title),
		Address:     strings.TrimSpace(in.Address),
		ScheduledAt: in.At,
		Notes:       strings.TrimSpace(in.Notes),
		Cost:        cost,
		Status:      StatusPlanned,
		Position:    s.next,
	}
	s.next++
	s.stops = append(s.stops, stop)
	sortByTime(s.stops)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterMutation(snap, "")
	return snap, stop, nil
}

// SetStatus updates the status of the stop with the given id. An empty
// target toggles: visited flips back to planned, anything else becomes
// visited. An unknown id changes nothing but still runs the persist cycle,
// so the replicas re-converge on the current collection either way.
func (s *Store) SetStatus(ctx context.Context, id string, target Status) (Snapshot, error) {
	if target != "" && !target.Valid() {
		return Snapshot{}, fmt.Errorf("%w: unknown status %q", ErrValidation, target)
	}

	s.mu.Lock()
	for i := range s.stops {
		if s.stops[i].ID != id {
			continue
		}
		switch {
		case target != "":
			s.stops[i].Status = target
		case s.stops[i].Status == StatusVisited:
			s.stops[i].Status = StatusPlanned
		default:
			s.stops[i].Status = StatusVisited
		}
		break
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterMutation(snap, "")
	return snap, nil
}

// Remove deletes the stop with the given id. A missing id is not an error;
// the persist cycle runs regardless and the remote receives a targeted
// delete, which is idempotent on its side.
func (s *Store) Remove(ctx context.Context, id string) Snapshot {
	s.mu.Lock()
	kept := s.stops[:0]
	for _, st := range s.stops {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	s.stops = kept
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterMutation(snap, id)
	return snap
}

// MergeStats reports what a Merge changed.
type MergeStats struct {
	Created int
	Updated int
}

// Merge upserts a batch of stops by id: a known id replaces the stored
// stop, an unknown or empty id creates a new one. The whole batch is
// validated before anything mutates, and the result lands in a single
// persist cycle. Updated stops keep their original creation position;
// created stops are numbered in batch order.
func (s *Store) Merge(ctx context.Context, incoming []Stop) (Snapshot, MergeStats, error) {
	for i, in := range incoming {
		if strings.TrimSpace(in.Title) == "" {
			return Snapshot{}, MergeStats{}, fmt.Errorf("%w: stop %d: title is required", ErrValidation, i+1)
		}
		if strings.TrimSpace(in.Address) == "" {
			return Snapshot{}, MergeStats{}, fmt.Errorf("%w: stop %d: address is required", ErrValidation, i+1)
		}
		if in.ScheduledAt.IsZero() {
			return Snapshot{}, MergeStats{}, fmt.Errorf("%w: stop %d: scheduled time is required", ErrValidation, i+1)
		}
		if in.Status != "" && !in.Status.Valid() {
			return Snapshot{}, MergeStats{}, fmt.Errorf("%w: stop %d: unknown status %q", ErrValidation, i+1, in.Status)
		}
	}

	s.mu.Lock()
	var stats MergeStats
	for _, in := range incoming {
		in.Title = strings.TrimSpace(in.Title)
		in.Address = strings.TrimSpace(in.Address)
		in.Notes = strings.TrimSpace(in.Notes)
		if in.Status == "" {
			in.Status = StatusPlanned
		}
		if in.Cost < 0 || math.IsNaN(in.Cost) {
			in.Cost = 0
		}

		if idx := s.indexLocked(in.ID); idx >= 0 {
			in.Position = s.stops[idx].Position
			s.stops[idx] = in
			stats.Updated++
			continue
		}
		if in.ID == "" {
			in.ID = newID()
		}
		in.Position = s.next
		s.next++
		s.stops = append(s.stops, in)
		stats.Created++
	}
	sortByTime(s.stops)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.afterMutation(snap, "")
	return snap, stats, nil
}

// indexLocked returns the index of the stop with the given id, or -1.
func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.stops {
		if s.stops[i].ID == id {
			return i
		}
	}
	return -1
}

// Snapshot returns a copy of the current collection state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ResolveID resolves an exact stop id or a unique id prefix to a full id.
// Returns ErrStopNotFound when nothing matches and ErrAmbiguousID when the
// prefix matches more than one stop.
func (s *Store) ResolveID(idOrPrefix string) (string, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrStopNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var match string
	for _, st := range s.stops {
		if st.ID == idOrPrefix {
			return st.ID, nil
		}
		if strings.HasPrefix(st.ID, idOrPrefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %q matches multiple stops", ErrAmbiguousID, idOrPrefix)
			}
			match = st.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrStopNotFound, idOrPrefix)
	}
	return match, nil
}

// Subscribe registers fn to receive every snapshot produced after a
// mutation or pull. Callbacks run on the mutating goroutine and must not
// call back into the store.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// FlushRemote pushes the entire current collection to the remote store
// synchronously. Unlike the background cycle this returns the error, so
// an explicit sync command can report failure.
func (s *Store) FlushRemote(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	snap := s.Snapshot()
	if err := s.remote.UpsertAll(ctx, snap.Stops); err != nil {
		return fmt.Errorf("failed to push collection: %w", err)
	}
	s.logger.Printf("pushed %d stops (rev %d)", len(snap.Stops), snap.Rev)
	return nil
}

// PullRemote fetches the remote collection and replaces local state
// wholesale, mirroring the load-time refresh but on demand.
func (s *Store) PullRemote(ctx context.Context) (Snapshot, error) {
	if s.remote == nil {
		return Snapshot{}, ErrNoRemote
	}

	s.mu.Lock()
	if err := s.pullLocked(ctx); err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

// HasRemote reports whether a remote store is configured.
func (s *Store) HasRemote() bool { return s.remote != nil }

// Online reports the current connectivity signal.
func (s *Store) Online() bool { return s.net.Online() }

// WaitRemote blocks until all queued background pushes have settled or ctx
// expires. Short-lived commands call this before exiting so a queued push
// is not lost to process teardown.
func (s *Store) WaitRemote(ctx context.Context) error {
	if s.pusher == nil {
		return nil
	}
	return s.pusher.wait(ctx)
}

// Close drains pending remote work (bounded by ctx) and stops the sync
// worker. The store must not be used after Close.
func (s *Store) Close(ctx context.Context) error {
	if s.pusher == nil {
		return nil
	}
	err := s.pusher.wait(ctx)
	s.pusher.close()
	return err
}

// ReloadLocal re-reads the collection from the local replica when its
// content differs from memory, picking up writes made by another process
// on the same device. Returns whether anything changed. Events caused by
// this process's own writes compare equal and are ignored.
func (s *Store) ReloadLocal() bool {
	s.mu.Lock()
	raw, ok, err := s.local.Get(collectionKey)
	if err != nil {
		s.mu.Unlock()
		s.logger.Printf("WARNING: failed to re-read local collection: %v", err)
		return false
	}
	if !ok {
		s.mu.Unlock()
		return false
	}
	if cur, err := marshalStops(s.stops); err == nil && string(cur) == raw {
		s.mu.Unlock()
		return false
	}

	var stops []Stop
	if err := json.Unmarshal([]byte(raw), &stops); err != nil {
		s.mu.Unlock()
		s.logger.Printf("WARNING: local collection is unreadable, keeping memory: %v", err)
		return false
	}
	sortByTime(stops)
	s.stops = stops
	s.next = nextPosition(s.stops)
	s.rev++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// pullLocked fetches the full remote collection and replaces memory and the
// local replica. Caller holds s.mu.
func (s *Store) pullLocked(ctx context.Context) error {
	stops, err := s.remote.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch remote collection: %w", err)
	}
	sortByTime(stops)
	s.stops = stops
	s.next = nextPosition(s.stops)
	s.rev++
	s.writeLocalLocked()
	return nil
}

// commitLocked bumps the revision and writes the collection through to the
// local replica. Local write failures are logged, not fatal: memory stays
// authoritative and the next mutation rewrites the key in full.
func (s *Store) commitLocked() Snapshot {
	s.rev++
	s.writeLocalLocked()
	return s.snapshotLocked()
}

func (s *Store) writeLocalLocked() {
	data, err := marshalStops(s.stops)
	if err != nil {
		s.logger.Printf("WARNING: failed to encode collection: %v", err)
		return
	}
	if err := s.local.Set(collectionKey, string(data)); err != nil {
		s.logger.Printf("WARNING: failed to write local collection: %v", err)
	}
}

func marshalStops(stops []Stop) ([]byte, error) {
	if stops == nil {
		stops = []Stop{}
	}
	return json.Marshal(stops)
}

func (s *Store) snapshotLocked() Snapshot {
	stops := make([]Stop, len(s.stops))
	copy(stops, s.stops)
	return Snapshot{Rev: s.rev, Stops: stops}
}

// afterMutation hands the snapshot to the background pusher and fans it out
// to subscribers. deletedID switches the remote op from a full-collection
// upsert to a targeted delete.
func (s *Store) afterMutation(snap Snapshot, deletedID string) {
	if s.pusher != nil {
		if deletedID != "" {
			s.pusher.enqueueDelete(deletedID)
		} else {
			s.pusher.enqueuePush(snap)
		}
	}
	s.notify(snap)
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	subs := make([]func(Snapshot), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// nextPosition returns one past the highest creation position in stops.
func nextPosition(stops []Stop) int {
	next := 0
	for _, st := range stops {
		if st.Position >= next {
			next = st.Position + 1
		}
	}
	return next
}
