package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/filterir"
)

// GuessResult reports how one input was read.
type GuessResult struct {
	Input   string `json:"input"`
	Format  string `json:"format,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Time    string `json:"time,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewGuessCommand creates the guess command.
func NewGuessCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guess <date>...",
		Short: "Show how dates are read",
		Long: `Infer the format of each date and parse it in the configured time zone.

Inputs of ten characters or fewer are read as the start of their day.
Exits 1 if any input cannot be read.

Examples:
  telescope guess 2024-03-15 "15.03.2024 10:30" 2/4-22
  telescope guess --timezone UTC 20240315`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuess(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runGuess(opts *RootOptions, inputs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	dates := datefmt.NewInferencer(opts.Location)

	results := make([]GuessResult, 0, len(inputs))
	lines := make([]string, 0, len(inputs))
	failed := 0

	for _, input := range inputs {
		r := dates.Guess(input)
		res := GuessResult{Input: input}
		if !r.OK() {
			failed++
			res.Error = r.Err.Error()
			lines = append(lines, fmt.Sprintf("%-24q  error: %s", input, res.Error))
		} else {
			res.Format = r.Format.String()
			res.Pattern = r.Format.Pattern(filterir.DisplayDateSeparator, filterir.DisplayTimeSeparator)
			res.Time = r.Time.Format(datefmt.TimestampLayout)
			lines = append(lines, fmt.Sprintf("%-24q  %-16s  %s", input, res.Pattern, res.Time))
		}
		results = append(results, res)
	}

	if err := formatter.Success(results, lines...); err != nil {
		return err
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d dates could not be read", failed, len(inputs)))
	}
	return nil
}
