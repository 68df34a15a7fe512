// Package itinerary owns the authoritative in-memory stop collection and the
// local-first persistence protocol around it.
//
// # Overview
//
// The Store applies all mutations (add, status change, remove), keeps the
// collection sorted by scheduled time, and drives synchronization to two
// replicas: a synchronous on-device key/value store and an optional remote
// row store.
//
// # Architecture
//
// The store is local-first. Every mutation follows the same cycle:
//
//	mutation → in-memory collection
//	         → local store (synchronous full-collection write)
//	         → remote store (background, best effort)
//
// On startup the local replica is loaded synchronously so state is available
// without network access. If a remote store is configured and the
// connectivity signal reports online, the remote collection is fetched and
// replaces both memory and the local replica wholesale: the remote wins
// outright on load, there is no merge. A remote failure at any point keeps
// the local state and is logged, never surfaced as a blocking error.
//
// Remote writes after add/status mutations push the entire collection as an
// upsert-by-id batch; removals send a single targeted delete. The background
// pusher is single-flight and coalesces queued pushes down to the newest
// snapshot, so two overlapping syncs cannot land out of order and regress
// the remote to stale state. Remote failures are logged and dropped; local
// state is the source of truth until the next successful full sync.
//
// # Usage
//
//	store, err := itinerary.New(itinerary.Options{
//	    Local:  kv,
//	    Remote: rs,  // nil for local-only operation
//	    Net:    monitor,
//	})
//	if err != nil {
//	    return err
//	}
//	snap := store.Load(ctx)
//	snap, err = store.Add(ctx, itinerary.NewStop{
//	    Title:   "Candi Borobudur",
//	    Address: "Magelang",
//	    At:      departure,
//	})
package itinerary
