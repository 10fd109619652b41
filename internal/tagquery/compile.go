// Package tagquery compiles the tag search language into filter predicates.
//
// Grammar, lowest precedence first:
//
//	query  = and { "|" and }        any segment matches
//	and    = list { ";" list }      every segment matches
//	list   = atom { "," atom }      any tag matches, and every created: atom
//	atom   = tag | key ":" value
//
// Atoms are looked up verbatim in the tag index. The created key (any
// case) compares the entry's creation time instead:
//
//	created:>2024-01-01       created strictly after the start of that day
//	created:<=2024-01-01 12   created up to 12:00:00
//	created:2024-03           created any time in March 2024
//	created:!2024-03          created outside March 2024
//
// Several created: atoms in one comma list are AND-ed together, unlike
// plain tags in the same list, so that a range can be written as
// created:>2024-01-01,created:<2024-02-01.
//
// Malformed input never produces an error. Empty segments are dropped and
// dates that cannot be inferred produce a predicate matching nothing.
package tagquery

import (
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/filterir"
)

// CreatedKey is the atom key that switches to date comparison.
const CreatedKey = "created"

// Compiler turns tag query strings into filter predicates.
type Compiler struct {
	dates  *datefmt.Inferencer
	logger *slog.Logger
}

// NewCompiler returns a Compiler inferring created: dates with dates.
// A nil dates uses the default location; a nil logger discards.
func NewCompiler(dates *datefmt.Inferencer, logger *slog.Logger) *Compiler {
	if dates == nil {
		dates = datefmt.NewInferencer(nil)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compiler{dates: dates, logger: logger}
}

// Compile parses filter into a predicate. A nil predicate means the filter
// places no restriction on entries.
func (c *Compiler) Compile(filter string) filterir.Predicate {
	if strings.Contains(filter, "|") {
		children := c.compileSegments(splitTrimmed(filter, "|"))
		for _, child := range children {
			// An unrestricted branch makes the whole disjunction unrestricted.
			if child == nil {
				return nil
			}
		}
		switch len(children) {
		case 0:
			return nil
		case 1:
			return children[0]
		default:
			return filterir.Or{Predicates: children}
		}
	}

	if strings.Contains(filter, ";") {
		return filterir.AllOf(c.compileSegments(splitTrimmed(filter, ";"))...)
	}

	return c.compileList(filter)
}

func (c *Compiler) compileSegments(segments []string) []filterir.Predicate {
	preds := make([]filterir.Predicate, len(segments))
	for i, segment := range segments {
		preds[i] = c.Compile(segment)
	}
	return preds
}

// compileList handles a comma list: plain tags are alternatives within one
// index lookup, created: atoms each add a conjunctive date condition.
func (c *Compiler) compileList(list string) filterir.Predicate {
	atoms := splitTrimmed(list, ",")
	if len(atoms) == 0 {
		return nil
	}

	var (
		tags  []string
		dates []filterir.Predicate
	)
	for _, atom := range atoms {
		if isCreatedAtom(atom) {
			dates = append(dates, c.compileCreated(atom))
			continue
		}
		tags = append(tags, atom)
	}

	var lookup filterir.Predicate
	if len(tags) > 0 {
		lookup = filterir.TagIn{Tags: tags}
	}
	return filterir.AllOf(append([]filterir.Predicate{lookup}, dates...)...)
}

// compileCreated builds the date condition for one created:<op><date> atom.
func (c *Compiler) compileCreated(atom string) filterir.Predicate {
	atom = strings.TrimSpace(strings.ToLower(atom))
	_, value, _ := strings.Cut(atom, ":")
	op, text := splitOperator(strings.TrimSpace(value))

	result := c.dates.Guess(text)
	if !result.OK() {
		c.logger.Debug("created filter matches nothing",
			"atom", atom,
			"reason", result.Err,
		)
		return filterir.Never{}
	}

	if filterir.IsOrderingOp(op) {
		return filterir.CreatedCompare{
			Op:    op,
			Value: result.Time.Format(datefmt.TimestampLayout),
		}
	}

	return filterir.CreatedContains{
		Format: result.Format,
		Needle: result.Format.Render(result.Time, filterir.DisplayDateSeparator, filterir.DisplayTimeSeparator),
		Negate: strings.HasPrefix(op, "!"),
	}
}

// isCreatedAtom reports whether the atom's key, case-insensitively, is created.
func isCreatedAtom(atom string) bool {
	key, _, _ := strings.Cut(atom, ":")
	return strings.ToLower(key) == CreatedKey
}

// splitOperator strips a leading comparison operator, two-character
// operators first. Without one the operator is "=".
func splitOperator(value string) (op, rest string) {
	for _, candidate := range []string{"<=", ">=", "==", "!=", "<", ">", "=", "!"} {
		if strings.HasPrefix(value, candidate) {
			return candidate, strings.TrimSpace(value[len(candidate):])
		}
	}
	return "=", value
}

// splitTrimmed splits s on sep, trims every part and drops empty ones.
func splitTrimmed(s, sep string) []string {
	var parts []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
