package harness

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/telescope/internal/filterir"
	"github.com/roach88/telescope/internal/ir"
	"github.com/roach88/telescope/internal/store"
)

// Harness runs the queries of one scenario against a populated store.
type Harness struct {
	store  *store.Store
	loc    *time.Location
	rows   []filterir.Row
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Open an in-memory store in the scenario timezone
// 2. Store the entries in file order
// 3. Run every query through SQL and through filterir.Match
// 4. Return result with pass/fail, outcomes and errors
//
// The returned error reports a scenario that could not be executed;
// query mismatches are reported through Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	loc, err := scenario.Location()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	st, err := store.Open(":memory:", store.WithLocation(loc), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, loc: loc, logger: logger}
	if err := h.load(ctx, scenario.Entries); err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	result := NewResult()
	for _, query := range scenario.Queries {
		outcome, err := h.runQuery(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", query.Name, err)
		}
		result.Queries = append(result.Queries, outcome)

		if err := assertPathsAgree(outcome); err != nil {
			result.AddError(err.Error())
		}
		if err := assertExpected(query, outcome); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

// load stores the fixtures one at a time so each gets the next sequence.
func (h *Harness) load(ctx context.Context, fixtures []EntryFixture) error {
	for _, fixture := range fixtures {
		entry, err := fixture.Entry(h.loc)
		if err != nil {
			return err
		}
		stored, err := h.store.Store(ctx, entry)
		if err != nil {
			return err
		}
		for _, e := range stored {
			h.rows = append(h.rows, filterir.RowOf(e, h.loc))
		}
	}
	return nil
}

func (h *Harness) runQuery(ctx context.Context, query QueryCase) (QueryOutcome, error) {
	opts := query.Options()

	sqlText, params, err := h.store.Explain(query.Type, opts)
	if err != nil {
		return QueryOutcome{}, err
	}

	entries, err := h.store.Query(ctx, query.Type, opts)
	if err != nil {
		return QueryOutcome{}, err
	}

	return QueryOutcome{
		Name:   query.Name,
		Tag:    query.Tag,
		Filter: filterir.Format(h.store.Scopes().Compile(query.Tag)),
		SQL:    sqlText,
		Params: params,
		Stored: uuidsOf(entries),
		Memory: h.matchInMemory(query.Type, opts),
	}, nil
}

// matchInMemory evaluates the listing scope over the loaded rows the way
// the store does: matching rows, newest first, at most one page.
func (h *Harness) matchInMemory(entryType string, opts ir.QueryOptions) []string {
	scope := h.store.Scopes().Scope(entryType, opts)

	var matched []filterir.Row
	for _, row := range h.rows {
		if filterir.Match(scope, row) {
			matched = append(matched, row)
		}
	}

	slices.SortFunc(matched, func(a, b filterir.Row) int {
		return cmp.Compare(b.Sequence, a.Sequence)
	})
	if len(matched) > opts.PageSize() {
		matched = matched[:opts.PageSize()]
	}

	ids := make([]string, len(matched))
	for i, row := range matched {
		ids[i] = row.UUID
	}
	return ids
}

func uuidsOf(entries []ir.Entry) []string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.UUID
	}
	return ids
}
