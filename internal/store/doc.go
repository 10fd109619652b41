// Package store provides SQLite-backed storage for telescope entries.
//
// The store is an append-only log with two tables:
//   - telescope_entries: one row per entry, content compressed with zstd
//   - telescope_entries_tags: the tag index, one row per (entry, tag)
//
// # Ordering
//
// sequence is assigned by SQLite AUTOINCREMENT and never reused. Listings
// are ordered by sequence descending; it doubles as the paging cursor
// (ir.QueryOptions.BeforeSequence).
//
// # Time
//
// created_at is stored as "2006-01-02 15:04:05" text in the store's
// location, the same location tag filters infer dates in. Text in that
// layout sorts chronologically, so created:>... filters compare text.
// Instants inside a daylight-saving fold render identically; entries in
// that hour compare by wall clock, not by instant.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Tags are deleted with their entry
package store
