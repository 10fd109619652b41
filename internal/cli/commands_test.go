package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/testutil"
)

func TestRecord(t *testing.T) {
	db := testDB(t)

	run := executeJSON(t, db, "", "record",
		"--type", "request",
		"--uuid", "req-1",
		"--batch", "batch-1",
		"--tag", "status:403", "--tag", " method:POST ", "--tag", "status:403",
		"--content", `{"uri":"/login"}`,
		"--created", "15.03.2024 10:30",
	)
	require.NoError(t, run.err, run.stdout)

	summary := decodeData[EntrySummary](t, run)
	assert.Equal(t, int64(1), summary.Sequence)
	assert.Equal(t, "req-1", summary.UUID)
	assert.Equal(t, "batch-1", summary.BatchID)
	assert.Equal(t, "2024-03-15 10:30:00", summary.CreatedAt)
	assert.Equal(t, []string{"status:403", "method:POST"}, summary.Tags)
	assert.False(t, summary.Hidden)
}

func TestRecord_Defaults(t *testing.T) {
	db := testDB(t)

	run := executeJSON(t, db, "", "record", "--type", "job", "--hidden")
	require.NoError(t, run.err, run.stdout)

	summary := decodeData[EntrySummary](t, run)
	assert.NotEmpty(t, summary.UUID)
	assert.Equal(t, summary.UUID, summary.BatchID)
	assert.True(t, summary.Hidden)

	created, err := time.ParseInLocation(datefmt.TimestampLayout, summary.CreatedAt, time.UTC)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), created, time.Minute)
}

func TestRecord_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantExit int
		wantCode string
	}{
		{"unreadable date", []string{"--type", "request", "--created", "someday"}, ExitCommandError, ErrCodeDate},
		{"invalid content", []string{"--type", "request", "--content", "{nope"}, ExitFailure, ErrCodeInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := executeJSON(t, testDB(t), "", append([]string{"record"}, tt.args...)...)
			require.Error(t, run.err)
			assert.Equal(t, tt.wantExit, GetExitCode(run.err))
			assert.Equal(t, tt.wantCode, decodeError(t, run).Code)
		})
	}
}

func TestRecord_TypeRequired(t *testing.T) {
	run := executeJSON(t, testDB(t), "", "record")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), `"type" not set`)
}

func TestRecord_TextOutput(t *testing.T) {
	run := execute(t, "", "--db", testDB(t), "--timezone", "UTC",
		"record", "--type", "request", "--uuid", "req-1", "--tag", "a", "--created", "2024-01-02")
	require.NoError(t, run.err)
	assert.Equal(t, "Recorded      1  req-1  request    2024-01-02 00:00:00  [a]\n", run.stdout)
}

const ingestInput = `{"uuid":"e-1","type":"request","tags":["status:200"],"created_at":"2024-03-01 08:00:00","content":{"uri":"/"}}

{"uuid":"e-2","type":"request","tags":["status:403"],"created_at":1709884800}
[{"uuid":"e-3","type":"query","batch_id":"e-1","created_at":"2024-03-09"},{"uuid":"e-4","type":"request","should_display_on_index":false,"created_at":"2024-03-10 12:00"}]
`

func TestIngest_Stdin(t *testing.T) {
	db := testDB(t)

	run := executeJSON(t, db, ingestInput, "ingest", "--batch-size", "3")
	require.NoError(t, run.err, run.stdout)

	result := decodeData[IngestResult](t, run)
	assert.Equal(t, IngestResult{Stored: 4, Batches: 2, LastSequence: 4}, result)

	run = executeJSON(t, db, "", "query", "--type", "request")
	require.NoError(t, run.err)
	page := decodeData[QueryResult](t, run)
	require.Len(t, page.Entries, 2, "hidden e-4 is off the index")
	assert.Equal(t, "e-2", page.Entries[0].UUID)
	assert.Equal(t, "2024-03-08 08:00:00", page.Entries[0].CreatedAt)
	assert.Equal(t, "e-1", page.Entries[1].UUID)

	run = executeJSON(t, db, "", "query", "--batch", "e-1")
	require.NoError(t, run.err)
	page = decodeData[QueryResult](t, run)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "e-3", page.Entries[0].UUID)
	assert.Equal(t, "2024-03-09 00:00:00", page.Entries[0].CreatedAt)
}

func TestIngest_File(t *testing.T) {
	db := testDB(t)
	path := filepath.Join(t.TempDir(), "entries.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(ingestInput), 0o644))

	run := executeJSON(t, db, "", "ingest", path)
	require.NoError(t, run.err, run.stdout)
	assert.Equal(t, IngestResult{Stored: 4, Batches: 1, LastSequence: 4}, decodeData[IngestResult](t, run))
}

func TestIngest_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		args     []string
		wantExit int
		wantMsg  string
	}{
		{
			name:     "malformed json",
			input:    "{\"type\":\"request\"}\n{oops\n",
			wantExit: ExitFailure,
			wantMsg:  "line 2: invalid entry",
		},
		{
			name:     "missing type",
			input:    "{\"uuid\":\"e-1\"}\n",
			wantExit: ExitFailure,
			wantMsg:  "line 1: invalid entry",
		},
		{
			name:     "unreadable date",
			input:    "{\"type\":\"request\",\"created_at\":\"soon\"}\n",
			wantExit: ExitFailure,
			wantMsg:  "line 1: invalid entry",
		},
		{
			name:     "missing file",
			args:     []string{"does-not-exist.jsonl"},
			wantExit: ExitCommandError,
			wantMsg:  "failed to open input",
		},
		{
			name:     "bad batch size",
			args:     []string{"--batch-size", "0"},
			wantExit: ExitCommandError,
			wantMsg:  "--batch-size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := executeJSON(t, testDB(t), tt.input, append([]string{"ingest"}, tt.args...)...)
			require.Error(t, run.err)
			assert.Equal(t, tt.wantExit, GetExitCode(run.err))
			assert.Equal(t, tt.wantMsg, decodeError(t, run).Message)
		})
	}
}

func TestIngest_KeepsEarlierBatches(t *testing.T) {
	db := testDB(t)
	input := "{\"uuid\":\"e-1\",\"type\":\"request\"}\n{\"uuid\":\"e-2\",\"type\":\"request\"}\nnot json\n"

	run := executeJSON(t, db, input, "ingest", "--batch-size", "1")
	require.Error(t, run.err)

	run = executeJSON(t, db, "", "query")
	require.NoError(t, run.err)
	assert.Len(t, decodeData[QueryResult](t, run).Entries, 2)
}

func TestEntryDecoder(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := testutil.NewStepClock(now, time.Second)
	decoder := newEntryDecoder(time.UTC, clock.Now)

	entries, err := decoder.decodeLine([]byte(`{"type":"cache","family_hash":"f1","content":[1,2],"tags":["a","b"]}`))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "cache", e.Type)
	assert.Equal(t, "f1", e.FamilyHash)
	assert.JSONEq(t, `[1,2]`, string(e.Content))
	assert.Equal(t, []string{"a", "b"}, e.Tags)
	assert.True(t, e.ShouldDisplayOnIndex)
	assert.Equal(t, now, e.CreatedAt)

	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{"scalar", `42`, "entry must be an object"},
		{"array element", `[{"type":"a"},"b"]`, "element 1"},
		{"tag type", `{"type":"a","tags":[1]}`, "tags[0]"},
		{"display type", `{"type":"a","should_display_on_index":"yes"}`, "should_display_on_index"},
		{"created type", `{"type":"a","created_at":true}`, "created_at must be a string or number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decoder.decodeLine([]byte(tt.line))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQuery_TagFilterAndPaging(t *testing.T) {
	db := testDB(t)

	var lines []string
	for i, tag := range []string{"status:200", "status:403", "status:403", "status:404", "status:403"} {
		lines = append(lines, `{"uuid":"e-`+string(rune('1'+i))+`","type":"request","tags":["`+tag+`"],"created_at":"2024-03-0`+string(rune('1'+i))+`"}`)
	}
	run := executeJSON(t, db, strings.Join(lines, "\n"), "ingest")
	require.NoError(t, run.err, run.stdout)

	run = executeJSON(t, db, "", "query", "--type", "request", "--limit", "2", "status:403,status:404")
	require.NoError(t, run.err, run.stdout)
	page := decodeData[QueryResult](t, run)
	assert.Equal(t, []string{"e-5", "e-4"}, summaryUUIDs(page.Entries))
	assert.Equal(t, int64(4), page.Next)

	run = executeJSON(t, db, "", "query", "--type", "request", "--limit", "2", "--before", "4", "--tag", "status:403,status:404")
	require.NoError(t, run.err, run.stdout)
	page = decodeData[QueryResult](t, run)
	assert.Equal(t, []string{"e-3", "e-2"}, summaryUUIDs(page.Entries))

	run = executeJSON(t, db, "", "query", "--type", "request", "--limit", "2", "--before", "2", "status:403,status:404")
	require.NoError(t, run.err, run.stdout)
	page = decodeData[QueryResult](t, run)
	assert.Empty(t, page.Entries)
	assert.Zero(t, page.Next)

	run = executeJSON(t, db, "", "query", "status:403;created:>=2024-03-03")
	require.NoError(t, run.err, run.stdout)
	assert.Equal(t, []string{"e-5", "e-3"}, summaryUUIDs(decodeData[QueryResult](t, run).Entries))
}

func TestQuery_Errors(t *testing.T) {
	run := executeJSON(t, testDB(t), "", "query", "--tag", "a", "b")
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))

	run = executeJSON(t, testDB(t), "", "query", "--before", "-1")
	require.Error(t, run.err)
	assert.Equal(t, ErrCodeInput, decodeError(t, run).Code)
}

func TestQuery_TextOutput(t *testing.T) {
	db := testDB(t)
	run := execute(t, "", "--db", db, "query")
	require.NoError(t, run.err)
	assert.Equal(t, "No entries\n", run.stdout)
}

func summaryUUIDs(entries []EntrySummary) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.UUID
	}
	return out
}

func TestGuess(t *testing.T) {
	run := execute(t, "", "--format", "json", "--timezone", "UTC", "guess", "2024-03-15", "2/4-22", "15.03.2024 10:30")
	require.NoError(t, run.err, run.stdout)

	results := decodeData[[]GuessResult](t, run)
	require.Len(t, results, 3)
	assert.Equal(t, GuessResult{Input: "2024-03-15", Format: "Y#m#d", Pattern: "Y-m-d", Time: "2024-03-15 00:00:00"}, results[0])
	assert.Equal(t, "2022-04-02 00:00:00", results[1].Time)
	assert.Equal(t, "d-m-Y H:i", results[2].Pattern)
	assert.Equal(t, "2024-03-15 10:30:00", results[2].Time)
}

func TestGuess_Failure(t *testing.T) {
	run := execute(t, "", "--format", "json", "guess", "2024-03-15", "whenever")
	require.Error(t, run.err)
	assert.Equal(t, ExitFailure, GetExitCode(run.err))
	assert.Contains(t, run.err.Error(), "1 of 2 dates")

	results := decodeData[[]GuessResult](t, run)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, datefmt.ErrNoFormat.Error(), results[1].Error)
}

func TestExplain(t *testing.T) {
	db := testDB(t)

	run := executeJSON(t, db, "", "explain", "--type", "request", "--limit", "10", "status:403|created:2024-03")
	require.NoError(t, run.err, run.stdout)

	result := decodeData[ExplainResult](t, run)
	assert.Equal(t, `(tag in ["status:403"] OR created_at[Y-m] contains "2024-03")`, result.Filter)
	assert.Contains(t, result.Scope, `type = "request"`)
	assert.NotContains(t, result.Scope, "should_display_on_index")
	assert.Contains(t, result.SQL, "ORDER BY sequence DESC LIMIT ?")
	assert.Equal(t, float64(10), result.Params[len(result.Params)-1])
	assert.Empty(t, result.Warnings)

	_, err := os.Stat(db)
	assert.True(t, os.IsNotExist(err), "explain must not create the database")
}

func TestExplain_ParamsAreJSON(t *testing.T) {
	run := executeJSON(t, testDB(t), "", "explain", "a,b")
	require.NoError(t, run.err)

	v, err := fastjson.Parse(run.stdout)
	require.NoError(t, err)
	params := v.GetArray("data", "params")
	require.Len(t, params, 3, "a tag query shows hidden entries")
	assert.Equal(t, "a", string(params[0].GetStringBytes()))
	assert.Equal(t, "b", string(params[1].GetStringBytes()))
	assert.Equal(t, 50, params[2].GetInt())
}

func TestPrune(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()
	old := now.Add(-48 * time.Hour).Format(datefmt.TimestampLayout)
	recent := now.Add(-time.Hour).Format(datefmt.TimestampLayout)

	input := `{"uuid":"old","type":"request","tags":["x"],"created_at":"` + old + `"}` + "\n" +
		`{"uuid":"recent","type":"request","tags":["x"],"created_at":"` + recent + `"}` + "\n"
	run := executeJSON(t, db, input, "ingest")
	require.NoError(t, run.err, run.stdout)

	run = executeJSON(t, db, "", "prune", "--hours", "24")
	require.NoError(t, run.err, run.stdout)
	assert.Equal(t, int64(1), decodeData[PruneResult](t, run).Deleted)

	run = executeJSON(t, db, "", "query", "x")
	require.NoError(t, run.err)
	assert.Equal(t, []string{"recent"}, summaryUUIDs(decodeData[QueryResult](t, run).Entries))
}

func TestPrune_NegativeHours(t *testing.T) {
	run := executeJSON(t, testDB(t), "", "prune", "--hours", "-1")
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}
