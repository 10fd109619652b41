package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when a query result differs from what was
// expected. It includes the compiled query to help debug the failure.
type AssertionError struct {
	Query    string // Query case name
	Type     string // "paths_agree" or "expect"
	Expected []string
	Actual   []string
	Filter   string
	SQL      string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Query, e.Type)
	fmt.Fprintf(&buf, "  Expected: %q\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %q\n", e.Actual)
	if missing := difference(e.Expected, e.Actual); len(missing) > 0 {
		fmt.Fprintf(&buf, "  Missing: %q\n", missing)
	}
	if extra := difference(e.Actual, e.Expected); len(extra) > 0 {
		fmt.Fprintf(&buf, "  Unexpected: %q\n", extra)
	}
	fmt.Fprintf(&buf, "  Filter: %s\n", e.Filter)
	fmt.Fprintf(&buf, "  SQL: %s\n", e.SQL)

	return buf.String()
}

// assertPathsAgree checks that SQLite and filterir.Match returned the same
// entries in the same order.
func assertPathsAgree(outcome QueryOutcome) error {
	if slices.Equal(outcome.Stored, outcome.Memory) {
		return nil
	}
	return &AssertionError{
		Query:    outcome.Name,
		Type:     "paths_agree",
		Expected: outcome.Memory,
		Actual:   outcome.Stored,
		Filter:   outcome.Filter,
		SQL:      outcome.SQL,
	}
}

// assertExpected checks the stored result against the case expectation.
// A case without expectation always passes.
func assertExpected(query QueryCase, outcome QueryOutcome) error {
	if query.Expect == nil || slices.Equal(query.Expect, outcome.Stored) {
		return nil
	}
	return &AssertionError{
		Query:    outcome.Name,
		Type:     "expect",
		Expected: query.Expect,
		Actual:   outcome.Stored,
		Filter:   outcome.Filter,
		SQL:      outcome.SQL,
	}
}

// difference returns the items of a missing from b, in a's order.
func difference(a, b []string) []string {
	var out []string
	for _, item := range a {
		if !slices.Contains(b, item) {
			out = append(out, item)
		}
	}
	return out
}
