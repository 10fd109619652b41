// Package filterir provides the predicate tree that tag queries compile to.
//
// The filter IR is the boundary between the tag-query language and the
// backends that evaluate it:
//
//	[tag query] → [filter IR] → [SQL backend]      (internal/querysql)
//	                          → [in-memory backend] (Match)
//
// Both backends must select the same entries for the same predicate. The
// conformance harness runs every scenario through both and compares.
//
// # Nodes
//
// Leaves:
//   - TagIn: entry carries at least one of the tags (exact, case-sensitive)
//   - CreatedCompare: created_at ordered against a full timestamp
//   - CreatedContains: created_at rendered with an inferred date format
//     contains (or, negated, does not contain) a needle
//   - Never: matches nothing; the result of an unparseable date
//   - Equals: a scope column equals a value
//   - SequenceBefore: pagination cursor
//
// Composites: Or, And. An empty And matches everything, an empty Or matches
// nothing.
//
// # Sealed Interfaces
//
// Query and Predicate use the marker method pattern so backends can switch
// over every node type exhaustively.
package filterir
