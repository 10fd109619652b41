package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/ir"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	UUID       string
	Type       string
	BatchID    string
	FamilyHash string
	Tags       []string
	Content    string
	CreatedAt  string
	Hidden     bool
}

// EntrySummary is the listing view of an entry.
type EntrySummary struct {
	Sequence  int64    `json:"sequence"`
	UUID      string   `json:"uuid"`
	Type      string   `json:"type"`
	BatchID   string   `json:"batch_id"`
	Hidden    bool     `json:"hidden,omitempty"`
	CreatedAt string   `json:"created_at"`
	Tags      []string `json:"tags"`
}

func summarize(e ir.Entry, opts *RootOptions) EntrySummary {
	return EntrySummary{
		Sequence:  e.Sequence,
		UUID:      e.UUID,
		Type:      e.Type,
		BatchID:   e.BatchID,
		Hidden:    !e.ShouldDisplayOnIndex,
		CreatedAt: e.CreatedAt.In(opts.Location).Format(datefmt.TimestampLayout),
		Tags:      e.Tags,
	}
}

func (s EntrySummary) String() string {
	line := fmt.Sprintf("%6d  %s  %-9s  %s", s.Sequence, s.UUID, s.Type, s.CreatedAt)
	if s.Hidden {
		line += "  (hidden)"
	}
	if len(s.Tags) > 0 {
		line += "  [" + strings.Join(s.Tags, ", ") + "]"
	}
	return line
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append one entry",
		Long: `Append one entry to the store.

--created accepts any date the tag query language understands, read in
the configured time zone. Without it the entry is stamped with the
current time.

Examples:
  telescope record --type request --tag status:403 --tag method:POST
  telescope record --type job --content '{"name":"SendMail"}' --created "2024-03-15 10:30"
  telescope record --type query --family 7f3a --hidden`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "entry type, e.g. request (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&opts.UUID, "uuid", "", "entry uuid (default: generated)")
	cmd.Flags().StringVar(&opts.BatchID, "batch", "", "batch id (default: the entry uuid)")
	cmd.Flags().StringVar(&opts.FamilyHash, "family", "", "family hash")
	cmd.Flags().StringArrayVar(&opts.Tags, "tag", nil, "tag, repeatable")
	cmd.Flags().StringVar(&opts.Content, "content", "{}", "JSON content")
	cmd.Flags().StringVar(&opts.CreatedAt, "created", "", "creation date (default: now)")
	cmd.Flags().BoolVar(&opts.Hidden, "hidden", false, "keep the entry off the index listing")

	return cmd
}

func runRecord(opts *RecordOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	entry := ir.Entry{
		UUID:                 opts.UUID,
		BatchID:              opts.BatchID,
		FamilyHash:           opts.FamilyHash,
		Type:                 opts.Type,
		Content:              json.RawMessage(opts.Content),
		Tags:                 opts.Tags,
		ShouldDisplayOnIndex: !opts.Hidden,
	}

	if opts.CreatedAt != "" {
		result := datefmt.NewInferencer(opts.Location).Guess(opts.CreatedAt)
		if !result.OK() {
			return formatter.Fail(ExitCommandError, ErrCodeDate,
				fmt.Sprintf("cannot read --created %q", opts.CreatedAt), result.Err)
		}
		entry.CreatedAt = result.Time
		formatter.VerboseLog("--created read as %s (%s)", result.Format, entry.CreatedAt.Format(datefmt.TimestampLayout))
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	stored, err := st.Store(cmd.Context(), entry)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInput, "failed to record entry", err)
	}

	summary := summarize(stored[0], opts.RootOptions)
	return formatter.Success(summary, "Recorded "+summary.String())
}
