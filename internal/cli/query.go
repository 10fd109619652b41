package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/telescope/internal/ir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Type       string
	Tag        string
	BatchID    string
	FamilyHash string
	Before     int64
	Limit      int
}

// QueryResult is one page of entries.
type QueryResult struct {
	Entries []EntrySummary `json:"entries"`
	// Next is the cursor for the following page, 0 when the page was short.
	Next int64 `json:"next,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [tag-query]",
		Short: "List entries, newest first",
		Long: `List one page of entries, newest first.

Without --tag, --batch or --family only entries marked for the index are
listed. Pass the printed cursor to --before for the next page.

Examples:
  telescope query --type request
  telescope query --type request "status:403;created:2024-03"
  telescope query --batch 01890a5d-ac96-774b-bcce-b302099a8057
  telescope query --type request --before 120 --limit 25`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if opts.Tag != "" {
					return NewExitError(ExitCommandError, "tag query given both as argument and --tag")
				}
				opts.Tag = args[0]
			}
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "entry type (default: all types)")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "tag query")
	cmd.Flags().StringVar(&opts.BatchID, "batch", "", "batch id")
	cmd.Flags().StringVar(&opts.FamilyHash, "family", "", "family hash")
	cmd.Flags().Int64Var(&opts.Before, "before", 0, "list entries with a sequence below this cursor")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (default: config page_size)")

	return cmd
}

func (o *QueryOptions) queryOptions() ir.QueryOptions {
	return ir.QueryOptions{
		BatchID:        o.BatchID,
		FamilyHash:     o.FamilyHash,
		Tag:            o.Tag,
		BeforeSequence: o.Before,
		Limit:          o.pageSize(o.Limit),
	}
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Before < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "--before must not be negative", nil)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	qopts := opts.queryOptions()
	entries, err := st.Query(cmd.Context(), opts.Type, qopts)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "query failed", err)
	}

	result := QueryResult{Entries: make([]EntrySummary, 0, len(entries))}
	lines := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		summary := summarize(e, opts.RootOptions)
		result.Entries = append(result.Entries, summary)
		lines = append(lines, summary.String())
	}
	if len(entries) == qopts.PageSize() {
		result.Next = entries[len(entries)-1].Sequence
	}

	switch {
	case len(entries) == 0:
		lines = append(lines, "No entries")
	case result.Next != 0:
		lines = append(lines, fmt.Sprintf("-- more: --before %d", result.Next))
	}

	return formatter.Success(result, lines...)
}
