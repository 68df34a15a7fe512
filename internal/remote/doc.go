// Package remote implements the cross-device row store behind the
// itinerary sync cycle.
//
// Two backends are provided:
//
//   - libSQL/Turso (default): a hosted SQLite-compatible database reached
//     over libsql:// URLs with an auth token. Also works against a plain
//     SQLite file, which the tests use.
//   - PostgreSQL: for self-hosted setups, via pgx connection pools.
//
// Both persist the same stops table keyed by id and satisfy the store's
// RemoteStore interface: FetchAll returns rows ordered by creation
// position, UpsertAll writes the full collection transactionally, and
// DeleteByID is idempotent. A created_at column is assigned server-side on
// first insert and never read back into the collection.
package remote
