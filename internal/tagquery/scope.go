package tagquery

import (
	"github.com/roach88/telescope/internal/filterir"
	"github.com/roach88/telescope/internal/ir"
)

// Scope builds the complete filter for listing entries of entryType.
//
// Each option narrows the result when set: type, batch id, tag query,
// family hash and the BeforeSequence cursor. Entries hidden from the index
// are excluded unless a batch, tag or family lookup asks for them.
// An empty entryType lists every type.
func (c *Compiler) Scope(entryType string, opts ir.QueryOptions) filterir.Predicate {
	var preds []filterir.Predicate

	if entryType != "" {
		preds = append(preds, filterir.Equals{Field: filterir.ColumnType, Value: entryType})
	}
	if opts.BatchID != "" {
		preds = append(preds, filterir.Equals{Field: filterir.ColumnBatchID, Value: opts.BatchID})
	}
	if opts.Tag != "" {
		preds = append(preds, c.Compile(opts.Tag))
	}
	if opts.FamilyHash != "" {
		preds = append(preds, filterir.Equals{Field: filterir.ColumnFamilyHash, Value: opts.FamilyHash})
	}
	if opts.BeforeSequence > 0 {
		preds = append(preds, filterir.SequenceBefore{Sequence: opts.BeforeSequence})
	}
	if !opts.ShowsAll() {
		preds = append(preds, filterir.Equals{Field: filterir.ColumnShouldDisplayOnIndex, Value: true})
	}

	return filterir.AllOf(preds...)
}
