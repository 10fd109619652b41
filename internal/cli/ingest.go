package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/ir"
)

// maxLineBytes bounds a single JSON line.
const maxLineBytes = 4 << 20

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	BatchSize int
}

// IngestResult summarizes an ingest run.
type IngestResult struct {
	Stored       int   `json:"stored"`
	Batches      int   `json:"batches"`
	LastSequence int64 `json:"last_sequence"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Append entries from JSON lines",
		Long: `Append entries read as JSON lines from a file, or stdin when the file
is omitted or "-". A line may hold one entry object or an array of them.

Entry fields:
  type                     required
  uuid, batch_id           default: generated, the entry uuid
  family_hash              optional
  tags                     array of strings
  content                  any JSON value (default {})
  should_display_on_index  default true
  created_at               date string in any inferable format, or Unix
                           seconds (default: now)

Entries are stored in transactions of --batch-size. A malformed line
stops the run; earlier batches stay stored.

Examples:
  telescope ingest entries.jsonl
  tail -f app.jsonl | telescope ingest --batch-size 1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runIngest(opts, path, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 500, "entries per transaction")

	return cmd
}

func runIngest(opts *IngestOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.BatchSize <= 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "--batch-size must be positive", nil)
	}

	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to open input", err)
		}
		defer f.Close()
		in = f
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	decoder := newEntryDecoder(opts.Location, time.Now)
	result := IngestResult{}
	var pending []ir.Entry

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		stored, err := st.Store(cmd.Context(), pending...)
		if err != nil {
			return err
		}
		result.Stored += len(stored)
		result.Batches++
		result.LastSequence = stored[len(stored)-1].Sequence
		formatter.VerboseLog("stored batch %d (%d entries)", result.Batches, len(stored))
		pending = pending[:0]
		return nil
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		entries, err := decoder.decodeLine([]byte(text))
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeInput, fmt.Sprintf("line %d: invalid entry", line), err)
		}

		for _, entry := range entries {
			pending = append(pending, entry)
			if len(pending) >= opts.BatchSize {
				if err := flush(); err != nil {
					return formatter.Fail(ExitFailure, ErrCodeStore, fmt.Sprintf("line %d: failed to store entries", line), err)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "failed to read input", err)
	}
	if err := flush(); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "failed to store entries", err)
	}

	return formatter.Success(result,
		fmt.Sprintf("Stored %d entries in %d batches", result.Stored, result.Batches))
}

// entryDecoder parses JSON-line entries.
type entryDecoder struct {
	parser fastjson.ParserPool
	dates  *datefmt.Inferencer
	now    func() time.Time
}

func newEntryDecoder(loc *time.Location, now func() time.Time) *entryDecoder {
	return &entryDecoder{dates: datefmt.NewInferencer(loc), now: now}
}

// decodeLine parses one line holding an entry object or an array of them.
func (d *entryDecoder) decodeLine(data []byte) ([]ir.Entry, error) {
	p := d.parser.Get()
	defer d.parser.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if v.Type() != fastjson.TypeArray {
		entry, err := d.decodeEntry(v)
		if err != nil {
			return nil, err
		}
		return []ir.Entry{entry}, nil
	}

	arr, _ := v.Array()
	entries := make([]ir.Entry, 0, len(arr))
	for i, val := range arr {
		entry, err := d.decodeEntry(val)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (d *entryDecoder) decodeEntry(v *fastjson.Value) (ir.Entry, error) {
	if v.Type() != fastjson.TypeObject {
		return ir.Entry{}, fmt.Errorf("entry must be an object, got %s", v.Type())
	}

	entry := ir.Entry{
		UUID:                 string(v.GetStringBytes("uuid")),
		BatchID:              string(v.GetStringBytes("batch_id")),
		FamilyHash:           string(v.GetStringBytes("family_hash")),
		Type:                 string(v.GetStringBytes("type")),
		ShouldDisplayOnIndex: true,
	}
	if entry.Type == "" {
		return ir.Entry{}, fmt.Errorf("type is required")
	}

	if display := v.Get("should_display_on_index"); display != nil {
		b, err := display.Bool()
		if err != nil {
			return ir.Entry{}, fmt.Errorf("should_display_on_index: %w", err)
		}
		entry.ShouldDisplayOnIndex = b
	}

	for i, tag := range v.GetArray("tags") {
		b, err := tag.StringBytes()
		if err != nil {
			return ir.Entry{}, fmt.Errorf("tags[%d]: %w", i, err)
		}
		entry.Tags = append(entry.Tags, string(b))
	}

	if content := v.Get("content"); content != nil {
		entry.Content = json.RawMessage(content.MarshalTo(nil))
	}

	createdAt, err := d.createdAt(v.Get("created_at"))
	if err != nil {
		return ir.Entry{}, err
	}
	entry.CreatedAt = createdAt

	return entry, nil
}

func (d *entryDecoder) createdAt(v *fastjson.Value) (time.Time, error) {
	if v == nil {
		return d.now(), nil
	}
	switch v.Type() {
	case fastjson.TypeNumber:
		secs, err := v.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("created_at: %w", err)
		}
		return time.Unix(secs, 0), nil
	case fastjson.TypeString:
		text := string(v.GetStringBytes())
		result := d.dates.Guess(text)
		if !result.OK() {
			return time.Time{}, fmt.Errorf("created_at %q: %w", text, result.Err)
		}
		return result.Time, nil
	default:
		return time.Time{}, fmt.Errorf("created_at must be a string or number, got %s", v.Type())
	}
}
