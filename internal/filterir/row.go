package filterir

import (
	"time"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/ir"
)

// RowOf builds the in-memory view of e as the store would persist it,
// with created_at rendered in loc.
func RowOf(e ir.Entry, loc *time.Location) Row {
	columns := map[string]any{
		ColumnType:                 e.Type,
		ColumnBatchID:              e.BatchID,
		ColumnShouldDisplayOnIndex: e.ShouldDisplayOnIndex,
	}
	if e.FamilyHash != "" {
		columns[ColumnFamilyHash] = e.FamilyHash
	}

	return Row{
		UUID:      e.UUID,
		Sequence:  e.Sequence,
		CreatedAt: e.CreatedAt.In(loc).Format(datefmt.TimestampLayout),
		Tags:      e.Tags,
		Columns:   columns,
	}
}
