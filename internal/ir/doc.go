// Package ir provides the shared entry types for the telescope store.
//
// This package contains type definitions and identity helpers only. All
// other internal packages may import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Entries are append-only; nothing in this module mutates a stored entry
//   - Sequence is the ordering key, never CreatedAt
//   - All JSON tags use snake_case
package ir
