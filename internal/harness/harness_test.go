package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
			assert.Len(t, result.Queries, len(scenario.Queries))
		})
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "One entry, one query",
		Timezone:    "UTC",
		Entries: []EntryFixture{
			{UUID: "e-1", Type: "request", Tags: []string{"a"}, CreatedAt: "2024-01-01 00:00:00"},
		},
		Queries: []QueryCase{
			{Name: "by_tag", Tag: "a", Expect: []string{"e-1"}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Queries, 1)

	outcome := result.Queries[0]
	assert.Equal(t, `tag in ["a"]`, outcome.Filter)
	assert.Equal(t, []string{"e-1"}, outcome.Stored)
	assert.Equal(t, []string{"e-1"}, outcome.Memory)
	assert.Contains(t, outcome.SQL, "ORDER BY sequence DESC")
	assert.Equal(t, []any{"a", 50}, outcome.Params)
}

func TestRun_ExpectationMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "Expectation that does not hold",
		Entries: []EntryFixture{
			{UUID: "e-1", Type: "request", Tags: []string{"a"}, CreatedAt: "2024-01-01 00:00:00"},
			{UUID: "e-2", Type: "request", Tags: []string{"b"}, CreatedAt: "2024-01-01 00:00:00"},
		},
		Queries: []QueryCase{
			{Name: "wrong", Tag: "a", Expect: []string{"e-2"}},
			{Name: "unchecked", Tag: "b"},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: wrong (expect)")
	assert.Contains(t, result.Errors[0], `Missing: ["e-2"]`)
	assert.Contains(t, result.Errors[0], `Unexpected: ["e-1"]`)
}

func TestRun_EmptyExpectation(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty",
		Description: "Expect nothing",
		Entries: []EntryFixture{
			{UUID: "e-1", Type: "request", Tags: []string{"a"}, CreatedAt: "2024-01-01 00:00:00"},
		},
		Queries: []QueryCase{
			{Name: "nothing", Tag: "a", Expect: []string{}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{
		Query:    "q",
		Type:     "paths_agree",
		Expected: []string{"a", "b"},
		Actual:   []string{"b", "c"},
		Filter:   "all",
		SQL:      "SELECT 1",
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: q (paths_agree)")
	assert.Contains(t, msg, `Expected: ["a" "b"]`)
	assert.Contains(t, msg, `Missing: ["a"]`)
	assert.Contains(t, msg, `Unexpected: ["c"]`)
	assert.Contains(t, msg, "SQL: SELECT 1")
}

func TestAssertPathsAgree_Order(t *testing.T) {
	err := assertPathsAgree(QueryOutcome{
		Name:   "order",
		Stored: []string{"a", "b"},
		Memory: []string{"b", "a"},
	})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "Missing")
}

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/visibility.yaml")
	require.NoError(t, err)

	assert.Equal(t, "visibility", scenario.Name)
	assert.Len(t, scenario.Entries, 3)
	assert.True(t, scenario.Entries[1].Hidden)
	assert.Equal(t, "fam-1", scenario.Queries[3].Options().FamilyHash)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	const entry = `
entries:
  - uuid: e-1
    type: request
    created_at: "2024-01-01 00:00:00"
`
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: y\nqueries: [{name: q}]\nexpects: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: y\nqueries: [{name: q}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nqueries: [{name: q}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no queries",
			yaml:    "name: x\ndescription: y\n",
			wantErr: "queries list is required",
		},
		{
			name:    "bad timezone",
			yaml:    "name: x\ndescription: y\ntimezone: Nowhere/Land\nqueries: [{name: q}]\n",
			wantErr: "load timezone",
		},
		{
			name:    "bad created_at",
			yaml:    "name: x\ndescription: y\nqueries: [{name: q}]\nentries:\n  - {uuid: e, type: request, created_at: \"01/01/2024\"}\n",
			wantErr: "created_at",
		},
		{
			name:    "missing type",
			yaml:    "name: x\ndescription: y\nqueries: [{name: q}]\nentries:\n  - {uuid: e, created_at: \"2024-01-01 00:00:00\"}\n",
			wantErr: "type is required",
		},
		{
			name:    "duplicate uuid",
			yaml:    "name: x\ndescription: y\nqueries: [{name: q}]" + entry + "  - uuid: e-1\n    type: job\n    created_at: \"2024-01-01 00:00:00\"\n",
			wantErr: "duplicate uuid",
		},
		{
			name:    "duplicate query",
			yaml:    "name: x\ndescription: y\nqueries: [{name: q}, {name: q}]\n",
			wantErr: "duplicate name",
		},
		{
			name:    "unknown expected entry",
			yaml:    "name: x\ndescription: y\nqueries: [{name: q, expect: [e-2]}]" + entry,
			wantErr: "unknown entry",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadScenarios_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\n"), 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestSnapshot(t *testing.T) {
	result := NewResult()
	result.Queries = append(result.Queries, QueryOutcome{
		Name:   "q",
		Filter: "never",
		Stored: []string{},
	})

	assert.Equal(t, "scenario: s\nq: never => []\n", string(Snapshot("s", result)))
}
