package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/filterir"
	"github.com/roach88/telescope/internal/querysql"
	"github.com/roach88/telescope/internal/tagquery"
)

// ExplainResult shows how a query is compiled.
type ExplainResult struct {
	Filter   string   `json:"filter"`
	Scope    string   `json:"scope"`
	Warnings []string `json:"warnings,omitempty"`
	SQL      string   `json:"sql"`
	Params   []any    `json:"params"`
}

// NewExplainCommand creates the explain command. It shares the query
// command's flags but never opens the database.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain [tag-query]",
		Short: "Show the filter and SQL a query compiles to",
		Long: `Compile a query without running it.

Prints the compiled tag filter, the full scope including type, batch,
family, cursor and index visibility, any warnings about the filter, and
the parameterized SQL.

Examples:
  telescope explain "status:403,status:404"
  telescope explain --type request "created:!2024-03"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Tag = args[0]
			}
			return runExplain(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "entry type")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "tag query")
	cmd.Flags().StringVar(&opts.BatchID, "batch", "", "batch id")
	cmd.Flags().StringVar(&opts.FamilyHash, "family", "", "family hash")
	cmd.Flags().Int64Var(&opts.Before, "before", 0, "sequence cursor")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (default: config page_size)")

	return cmd
}

func runExplain(opts *QueryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	scopes := tagquery.NewCompiler(datefmt.NewInferencer(opts.Location), opts.Logger)
	qopts := opts.queryOptions()

	filter := scopes.Compile(opts.Tag)
	scope := scopes.Scope(opts.Type, qopts)

	sqlText, params, err := querysql.NewSQLCompiler().Compile(filterir.Select{
		Filter: scope,
		Limit:  qopts.PageSize(),
	})
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInput, "failed to compile query", err)
	}

	result := ExplainResult{
		Filter:   filterir.Format(filter),
		Scope:    filterir.Format(scope),
		Warnings: filterir.Validate(filter).Warnings,
		SQL:      sqlText,
		Params:   params,
	}

	lines := []string{
		"Filter: " + result.Filter,
		"Scope:  " + result.Scope,
	}
	for _, w := range result.Warnings {
		lines = append(lines, "Warning: "+w)
	}
	lines = append(lines, "SQL:    "+result.SQL, fmt.Sprintf("Params: %v", result.Params))

	return formatter.Success(result, lines...)
}
