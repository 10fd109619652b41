package filterir

import (
	"fmt"
	"strings"

	"github.com/roach88/telescope/internal/datefmt"
)

// Separators used when rendering created_at for containment tests.
const (
	DisplayDateSeparator = "-"
	DisplayTimeSeparator = ":"
)

// Column names of the entries table that predicates may reference.
const (
	ColumnType                 = "type"
	ColumnBatchID              = "batch_id"
	ColumnFamilyHash           = "family_hash"
	ColumnShouldDisplayOnIndex = "should_display_on_index"
)

// Query is a sealed interface over executable queries.
type Query interface {
	queryNode()
}

// Predicate is a sealed interface over filter conditions.
type Predicate interface {
	predicateNode()
	fmt.Stringer
}

// Select reads entries matching Filter, newest sequence first.
//
//	SELECT <entry columns> FROM <From> WHERE <Filter>
//	ORDER BY sequence DESC LIMIT <Limit>
//
// A nil Filter selects every entry. Limit <= 0 means no limit.
type Select struct {
	From   string
	Filter Predicate
	Limit  int
}

func (Select) queryNode() {}

// TagIn matches entries tagged with any of Tags.
type TagIn struct {
	Tags []string
}

func (TagIn) predicateNode() {}

func (p TagIn) String() string {
	return fmt.Sprintf("tag in %q", p.Tags)
}

// CreatedCompare orders created_at against Value, a timestamp in
// datefmt.TimestampLayout. Op is one of <, <=, >, >=.
type CreatedCompare struct {
	Op    string
	Value string
}

func (CreatedCompare) predicateNode() {}

func (p CreatedCompare) String() string {
	return fmt.Sprintf("created_at %s %q", p.Op, p.Value)
}

// CreatedContains renders created_at with Format and tests whether the
// result contains Needle. Negate inverts the test.
type CreatedContains struct {
	Format datefmt.Format
	Needle string
	Negate bool
}

func (CreatedContains) predicateNode() {}

func (p CreatedContains) String() string {
	op := "contains"
	if p.Negate {
		op = "excludes"
	}
	pattern := p.Format.Pattern(DisplayDateSeparator, DisplayTimeSeparator)
	return fmt.Sprintf("created_at[%s] %s %q", pattern, op, p.Needle)
}

// Never matches no entry.
type Never struct{}

func (Never) predicateNode() {}

func (Never) String() string { return "never" }

// Equals matches entries whose Field column equals Value.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

func (p Equals) String() string {
	return fmt.Sprintf("%s = %#v", p.Field, p.Value)
}

// SequenceBefore matches entries with a sequence below Sequence.
type SequenceBefore struct {
	Sequence int64
}

func (SequenceBefore) predicateNode() {}

func (p SequenceBefore) String() string {
	return fmt.Sprintf("sequence < %d", p.Sequence)
}

// Or matches when any child matches. Empty matches nothing.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

func (p Or) String() string {
	return "(" + join(p.Predicates, " OR ") + ")"
}

// And matches when every child matches. Empty matches everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

func (p And) String() string {
	return "(" + join(p.Predicates, " AND ") + ")"
}

func join(preds []Predicate, sep string) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}

// Format returns a printable form of p; nil prints as "all".
func Format(p Predicate) string {
	if p == nil {
		return "all"
	}
	return p.String()
}

// AllOf combines predicates with And, dropping nils. It returns nil when
// nothing is left and the predicate itself when only one is left.
func AllOf(preds ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
