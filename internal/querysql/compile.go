package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/filterir"
)

// Tables holding entries and their tag index.
const (
	EntriesTable = "telescope_entries"
	TagsTable    = "telescope_entries_tags"
)

// EntryColumns is the column list every entry query selects, in scan order.
const EntryColumns = "sequence, uuid, batch_id, family_hash, type, content, should_display_on_index, created_at"

// SQLCompiler compiles filter IR to parameterized SQL for SQLite.
//
// Every Select is ordered by sequence, newest first, so paging with a
// BeforeSequence cursor is stable. Values are always bound as parameters;
// only column names and constant separators appear in the SQL text.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a filter IR query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q filterir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case filterir.Select:
		return c.compileSelect(query)
	case *filterir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q filterir.Select) (string, []any, error) {
	from := q.From
	if from == "" {
		from = EntriesTable
	}

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.CompilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY sequence DESC", EntryColumns, from, whereClause)

	if q.Limit > 0 {
		sql += " LIMIT ?"
		params = append(params, q.Limit)
	}

	return sql, params, nil
}

// CompilePredicate compiles a predicate to a WHERE clause fragment.
// A nil predicate compiles to an always-true condition.
func (c *SQLCompiler) CompilePredicate(p filterir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case filterir.TagIn:
		return c.compileTagIn(pred)
	case filterir.CreatedCompare:
		if !filterir.IsOrderingOp(pred.Op) {
			return "", nil, fmt.Errorf("unsupported created_at operator %q", pred.Op)
		}
		return fmt.Sprintf("created_at %s ?", pred.Op), []any{pred.Value}, nil
	case filterir.CreatedContains:
		cmp := "> 0"
		if pred.Negate {
			cmp = "= 0"
		}
		return fmt.Sprintf("instr(%s, ?) %s", renderExpr(pred.Format), cmp), []any{pred.Needle}, nil
	case filterir.Never:
		return "0 = 1", nil, nil
	case filterir.Equals:
		if !filterir.IsColumn(pred.Field) {
			return "", nil, fmt.Errorf("unknown column %q", pred.Field)
		}
		return fmt.Sprintf("%s = ?", pred.Field), []any{pred.Value}, nil
	case filterir.SequenceBefore:
		return "sequence < ?", []any{pred.Sequence}, nil
	case filterir.Or:
		return c.compileOr(pred)
	case filterir.And:
		return c.compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileTagIn resolves a batch of tags through the tag index in one
// membership test.
func (c *SQLCompiler) compileTagIn(in filterir.TagIn) (string, []any, error) {
	if len(in.Tags) == 0 {
		return "0 = 1", nil, nil
	}

	params := make([]any, len(in.Tags))
	for i, tag := range in.Tags {
		params[i] = tag
	}

	sql := fmt.Sprintf("uuid IN (SELECT entry_uuid FROM %s WHERE tag IN (%s))",
		TagsTable, placeholders(len(in.Tags)))
	return sql, params, nil
}

// compileOr compiles a disjunction; it is always parenthesized.
func (c *SQLCompiler) compileOr(or filterir.Or) (string, []any, error) {
	if len(or.Predicates) == 0 {
		return "0 = 1", nil, nil
	}
	sqlParts, params, err := c.compileAll(or.Predicates)
	if err != nil {
		return "", nil, err
	}
	return "(" + strings.Join(sqlParts, " OR ") + ")", params, nil
}

// compileAnd compiles a conjunction. AND binds tighter than OR, so the
// parts need no parentheses of their own.
func (c *SQLCompiler) compileAnd(and filterir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	sqlParts, params, err := c.compileAll(and.Predicates)
	if err != nil {
		return "", nil, err
	}
	return strings.Join(sqlParts, " AND "), params, nil
}

func (c *SQLCompiler) compileAll(preds []filterir.Predicate) ([]string, []any, error) {
	sqlParts := make([]string, 0, len(preds))
	var allParams []any
	for _, pred := range preds {
		sql, params, err := c.CompilePredicate(pred)
		if err != nil {
			return nil, nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}
	return sqlParts, allParams, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// renderExpr builds an SQL expression rendering created_at the way
// datefmt.Format.Render renders a time. Runs of zero-padded fields are
// folded into a single strftime call.
func renderExpr(f datefmt.Format) string {
	if f.Kind != datefmt.KindLayout {
		return "created_at"
	}

	b := &exprBuilder{}
	for i, field := range f.Date {
		if i > 0 {
			b.literal(filterir.DisplayDateSeparator)
		}
		switch field {
		case datefmt.DayPadded:
			b.conv("%d")
		case datefmt.Day:
			b.expr("CAST(strftime('%d', created_at) AS INTEGER)")
		case datefmt.MonthPadded:
			b.conv("%m")
		case datefmt.Month:
			b.expr("CAST(strftime('%m', created_at) AS INTEGER)")
		case datefmt.YearShort:
			b.expr("substr(strftime('%Y', created_at), 3, 2)")
		default:
			b.conv("%Y")
		}
	}

	if f.Time != datefmt.NoTime {
		b.literal(" ")
		b.conv("%H")
		if f.Time >= datefmt.Minute {
			b.literal(filterir.DisplayTimeSeparator)
			b.conv("%M")
		}
		if f.Time == datefmt.Second {
			b.literal(filterir.DisplayTimeSeparator)
			b.conv("%S")
		}
	}

	return b.String()
}

// exprBuilder concatenates strftime runs, literals and expressions.
type exprBuilder struct {
	parts   []string
	pending strings.Builder
	hasConv bool
}

// conv appends a strftime conversion to the current run.
func (b *exprBuilder) conv(s string) {
	b.pending.WriteString(s)
	b.hasConv = true
}

// literal appends constant text to the current run.
func (b *exprBuilder) literal(s string) {
	b.pending.WriteString(strings.ReplaceAll(s, "%", "%%"))
}

// expr closes the current run and appends a complete SQL expression.
func (b *exprBuilder) expr(e string) {
	b.flush()
	b.parts = append(b.parts, e)
}

func (b *exprBuilder) flush() {
	if b.pending.Len() == 0 {
		return
	}
	text := b.pending.String()
	if b.hasConv {
		b.parts = append(b.parts, fmt.Sprintf("strftime('%s', created_at)", text))
	} else {
		b.parts = append(b.parts, "'"+strings.ReplaceAll(text, "%%", "%")+"'")
	}
	b.pending.Reset()
	b.hasConv = false
}

func (b *exprBuilder) String() string {
	b.flush()
	return strings.Join(b.parts, " || ")
}
