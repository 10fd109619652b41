package filterir

import (
	"slices"
	"strings"
	"time"

	"github.com/roach88/telescope/internal/datefmt"
)

// Row is the in-memory view of a stored entry. CreatedAt holds the stored
// text form (datefmt.TimestampLayout in the store's location), so ordering
// and rendering behave exactly as they do against the database column.
type Row struct {
	UUID      string
	Sequence  int64
	CreatedAt string
	Tags      []string
	Columns   map[string]any
}

// Match evaluates p against row. A nil predicate matches every row.
func Match(p Predicate, row Row) bool {
	if p == nil {
		return true
	}

	switch pred := p.(type) {
	case TagIn:
		for _, tag := range pred.Tags {
			if slices.Contains(row.Tags, tag) {
				return true
			}
		}
		return false
	case CreatedCompare:
		return compareText(row.CreatedAt, pred.Op, pred.Value)
	case CreatedContains:
		contains := strings.Contains(renderStored(row.CreatedAt, pred.Format), pred.Needle)
		return contains != pred.Negate
	case Never:
		return false
	case Equals:
		value, ok := row.Columns[pred.Field]
		return ok && equalScalar(value, pred.Value)
	case SequenceBefore:
		return row.Sequence < pred.Sequence
	case Or:
		for _, child := range pred.Predicates {
			if Match(child, row) {
				return true
			}
		}
		return false
	case And:
		for _, child := range pred.Predicates {
			if !Match(child, row) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// compareText orders stored timestamps as text, like SQLite does for
// TEXT columns under BINARY collation.
func compareText(stored, op, value string) bool {
	c := strings.Compare(stored, value)
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	default:
		return false
	}
}

// renderStored re-renders a stored timestamp with f. Unparseable stored
// values render as themselves.
func renderStored(stored string, f datefmt.Format) string {
	t, err := time.Parse(datefmt.TimestampLayout, stored)
	if err != nil {
		return stored
	}
	return f.Render(t, DisplayDateSeparator, DisplayTimeSeparator)
}

// equalScalar compares column values of the types Equals accepts.
// Anything else never matches.
func equalScalar(a, b any) bool {
	switch b := b.(type) {
	case string:
		v, ok := a.(string)
		return ok && v == b
	case bool:
		v, ok := a.(bool)
		return ok && v == b
	case int:
		v, ok := a.(int)
		return ok && v == b
	case int64:
		v, ok := a.(int64)
		return ok && v == b
	default:
		return false
	}
}
