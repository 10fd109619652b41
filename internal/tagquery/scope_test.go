package tagquery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/telescope/internal/filterir"
	"github.com/roach88/telescope/internal/ir"
)

var visibleOnly = filterir.Equals{Field: filterir.ColumnShouldDisplayOnIndex, Value: true}

func TestScope_DefaultsToIndexVisibleEntries(t *testing.T) {
	c := newTestCompiler(t)

	assert.Equal(t, visibleOnly, c.Scope("", ir.QueryOptions{}))
	assert.Equal(t,
		filterir.And{Predicates: []filterir.Predicate{
			filterir.Equals{Field: filterir.ColumnType, Value: ir.TypeRequest},
			filterir.SequenceBefore{Sequence: 40},
			visibleOnly,
		}},
		c.Scope(ir.TypeRequest, ir.QueryOptions{BeforeSequence: 40}))
}

func TestScope_LookupsShowHiddenEntries(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		name string
		opts ir.QueryOptions
		want filterir.Predicate
	}{
		{"batch", ir.QueryOptions{BatchID: "b-1"},
			filterir.Equals{Field: filterir.ColumnBatchID, Value: "b-1"}},
		{"family", ir.QueryOptions{FamilyHash: "f-1"},
			filterir.Equals{Field: filterir.ColumnFamilyHash, Value: "f-1"}},
		{"tag", ir.QueryOptions{Tag: "status:403"},
			filterir.TagIn{Tags: []string{"status:403"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Scope("", tc.opts))
		})
	}
}

func TestScope_AllOptions(t *testing.T) {
	c := newTestCompiler(t)

	got := c.Scope(ir.TypeQuery, ir.QueryOptions{
		BatchID:        "b-1",
		FamilyHash:     "f-1",
		Tag:            "slow|created:>2024-01-01",
		BeforeSequence: 9,
	})

	assert.Equal(t,
		filterir.And{Predicates: []filterir.Predicate{
			filterir.Equals{Field: filterir.ColumnType, Value: ir.TypeQuery},
			filterir.Equals{Field: filterir.ColumnBatchID, Value: "b-1"},
			filterir.Or{Predicates: []filterir.Predicate{
				filterir.TagIn{Tags: []string{"slow"}},
				filterir.CreatedCompare{Op: ">", Value: "2024-01-01 00:00:00"},
			}},
			filterir.Equals{Field: filterir.ColumnFamilyHash, Value: "f-1"},
			filterir.SequenceBefore{Sequence: 9},
		}},
		got)
}

func TestScope_UnrestrictedTagStillShowsHidden(t *testing.T) {
	c := newTestCompiler(t)

	// A tag option made only of separators places no restriction, but it
	// is still a tag lookup.
	assert.Nil(t, c.Scope("", ir.QueryOptions{Tag: " , "}))
}
