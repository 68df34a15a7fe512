package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/papalova-x/Web-Traveling-Eazy/internal/itinerary"
)

// cachePrefix namespaces insight entries in the shared local store.
const cachePrefix = "insight:"

// CacheKey returns the local-store key for a stop's cached insight.
func CacheKey(stopID string) string {
	return cachePrefix + stopID
}

// Cache is the persistent key/value storage behind the resolver.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// Connectivity reports whether online generation is worth attempting.
type Connectivity interface {
	Online() bool
}

// Generator produces a fresh insight for a stop, typically by calling a
// model API. Implementations fill Costs, Weather, Recommendations, and
// Tips; the resolver owns the rest of the fields.
type Generator interface {
	Generate(ctx context.Context, stop itinerary.Stop) (Insight, error)
}

// Options configures NewResolver.
type Options struct {
	// Cache is required.
	Cache Cache

	// Generator is optional. Nil means resolution is permanently offline
	// and every miss gets a heuristic answer.
	Generator Generator

	// Net gates generation attempts. Defaults to always online.
	Net Connectivity

	// Logger receives resolution diagnostics. Defaults to stderr.
	Logger *log.Logger
}

type always struct{}

func (always) Online() bool { return true }

// Resolver walks the cache-first resolution chain. Safe for concurrent
// use as long as the cache is.
type Resolver struct {
	cache  Cache
	gen    Generator
	net    Connectivity
	logger *log.Logger
}

// NewResolver creates a resolver over the given cache and generator.
func NewResolver(opts Options) (*Resolver, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if opts.Net == nil {
		opts.Net = always{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "[insight] ", log.LstdFlags)
	}
	return &Resolver{
		cache:  opts.Cache,
		gen:    opts.Generator,
		net:    opts.Net,
		logger: opts.Logger,
	}, nil
}

// Resolve returns an insight for the stop: cached verbatim if present,
// otherwise generated online and cached, otherwise a canned heuristic.
// It never fails; the worst case is a heuristic answer.
func (r *Resolver) Resolve(ctx context.Context, stop itinerary.Stop) Insight {
	if ins, ok := r.Cached(stop.ID); ok {
		return ins
	}
	return r.generate(ctx, stop)
}

// Refresh bypasses and replaces any cached answer for the stop. Offline
// it falls back to a heuristic and leaves the existing cache entry alone,
// so a stale real answer is never displaced by a canned one.
func (r *Resolver) Refresh(ctx context.Context, stop itinerary.Stop) Insight {
	return r.generate(ctx, stop)
}

// Cached returns the stored insight for a stop id, if any. Unreadable
// entries are treated as misses.
func (r *Resolver) Cached(stopID string) (Insight, bool) {
	raw, ok, err := r.cache.Get(CacheKey(stopID))
	if err != nil {
		r.logger.Printf("WARNING: cache read failed for %s: %v", stopID, err)
		return Insight{}, false
	}
	if !ok {
		return Insight{}, false
	}

	var ins Insight
	if err := json.Unmarshal([]byte(raw), &ins); err != nil {
		r.logger.Printf("WARNING: cached insight for %s is unreadable, ignoring: %v", stopID, err)
		return Insight{}, false
	}
	ins.Source = SourceCache
	return ins, true
}

// generate runs the online rung with heuristic fallback.
func (r *Resolver) generate(ctx context.Context, stop itinerary.Stop) Insight {
	if r.gen == nil || !r.net.Online() {
		return Offline(stop)
	}

	ins, err := r.gen.Generate(ctx, stop)
	if err != nil {
		r.logger.Printf("WARNING: generation failed for %s, serving offline answer: %v", stop.ID, err)
		return Offline(stop)
	}

	ins.StopID = stop.ID
	ins.Title = stop.Title
	if ins.GeneratedAt.IsZero() {
		ins.GeneratedAt = time.Now().UTC()
	}
	ins.Source = SourceOnline
	r.store(ins)
	return ins
}

// store caches a generated insight. Failures are logged, never fatal: a
// lost cache write only costs a regeneration later.
func (r *Resolver) store(ins Insight) {
	data, err := json.Marshal(ins)
	if err != nil {
		r.logger.Printf("WARNING: failed to encode insight for %s: %v", ins.StopID, err)
		return
	}
	if err := r.cache.Set(CacheKey(ins.StopID), string(data)); err != nil {
		r.logger.Printf("WARNING: failed to cache insight for %s: %v", ins.StopID, err)
	}
}

// Invalidate drops the cached answer for one stop.
func (r *Resolver) Invalidate(stopID string) error {
	return r.cache.Delete(CacheKey(stopID))
}

// Prune removes cached insights whose stop id is not in validIDs and
// returns how many entries were dropped. Run after removals to stop the
// cache from accumulating answers for stops that no longer exist.
func (r *Resolver) Prune(validIDs []string) (int, error) {
	keys, err := r.cache.Keys(cachePrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list cached insights: %w", err)
	}

	valid := make(map[string]bool, len(validIDs))
	for _, id := range validIDs {
		valid[id] = true
	}

	removed := 0
	for _, key := range keys {
		id := strings.TrimPrefix(key, cachePrefix)
		if valid[id] {
			continue
		}
		if err := r.cache.Delete(key); err != nil {
			return removed, fmt.Errorf("failed to prune insight %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}

// Clear removes every cached insight and returns how many were dropped.
func (r *Resolver) Clear() (int, error) {
	keys, err := r.cache.Keys(cachePrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list cached insights: %w", err)
	}
	for i, key := range keys {
		if err := r.cache.Delete(key); err != nil {
			return i, fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return len(keys), nil
}
