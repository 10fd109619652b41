package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/telescope/internal/datefmt"
)

// PruneOptions holds flags for the prune command.
type PruneOptions struct {
	*RootOptions
	Hours int
	now   func() time.Time
}

// PruneResult reports a prune run.
type PruneResult struct {
	Cutoff  string `json:"cutoff"`
	Deleted int64  `json:"deleted"`
}

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PruneOptions{RootOptions: rootOpts, now: time.Now}

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old entries",
		Long: `Delete entries created more than --hours ago, with their tags.

Examples:
  telescope prune
  telescope prune --hours 48`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Hours, "hours", 24, "keep entries younger than this many hours")

	return cmd
}

func runPrune(opts *PruneOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Hours < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "--hours must not be negative", nil)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	cutoff := opts.now().Add(-time.Duration(opts.Hours) * time.Hour).In(opts.Location)
	deleted, err := st.Prune(cmd.Context(), cutoff)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "prune failed", err)
	}

	result := PruneResult{
		Cutoff:  cutoff.Format(datefmt.TimestampLayout),
		Deleted: deleted,
	}
	return formatter.Success(result,
		fmt.Sprintf("Deleted %d entries created before %s", result.Deleted, result.Cutoff))
}
