package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/telescope/internal/datefmt"
	"github.com/roach88/telescope/internal/ir"
)

// Scenario defines a conformance test scenario: entries to store and
// queries to run over them.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Timezone is the store location. Default: datefmt.DefaultTimezone.
	Timezone string `yaml:"timezone,omitempty"`

	Entries []EntryFixture `yaml:"entries"`
	Queries []QueryCase    `yaml:"queries"`
}

// EntryFixture is one entry to store before the queries run.
type EntryFixture struct {
	UUID       string   `yaml:"uuid"`
	Type       string   `yaml:"type"`
	BatchID    string   `yaml:"batch_id,omitempty"`
	FamilyHash string   `yaml:"family_hash,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`

	// CreatedAt is wall-clock text in datefmt.TimestampLayout, read in the
	// scenario timezone.
	CreatedAt string `yaml:"created_at"`

	// Hidden entries are kept off the index listing.
	Hidden bool `yaml:"hidden,omitempty"`
}

// QueryCase is one listing query and its expected result.
type QueryCase struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type,omitempty"`
	Tag            string `yaml:"tag,omitempty"`
	BatchID        string `yaml:"batch_id,omitempty"`
	FamilyHash     string `yaml:"family_hash,omitempty"`
	BeforeSequence int64  `yaml:"before_sequence,omitempty"`
	Limit          int    `yaml:"limit,omitempty"`

	// Expect lists the uuids the query returns, newest first.
	// If nil, only agreement between the SQL and in-memory paths is checked.
	Expect []string `yaml:"expect,omitempty"`
}

// Options returns the store query options of the case.
func (q QueryCase) Options() ir.QueryOptions {
	return ir.QueryOptions{
		BatchID:        q.BatchID,
		FamilyHash:     q.FamilyHash,
		Tag:            q.Tag,
		BeforeSequence: q.BeforeSequence,
		Limit:          q.Limit,
	}
}

// Location loads the scenario timezone.
func (s *Scenario) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return datefmt.DefaultLocation(), nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Entry converts the fixture to an entry created in loc.
func (f EntryFixture) Entry(loc *time.Location) (ir.Entry, error) {
	createdAt, err := time.ParseInLocation(datefmt.TimestampLayout, f.CreatedAt, loc)
	if err != nil {
		return ir.Entry{}, fmt.Errorf("entry %s: created_at: %w", f.UUID, err)
	}
	return ir.Entry{
		UUID:                 f.UUID,
		BatchID:              f.BatchID,
		FamilyHash:           f.FamilyHash,
		Type:                 f.Type,
		Tags:                 f.Tags,
		ShouldDisplayOnIndex: !f.Hidden,
		CreatedAt:            createdAt,
	}, nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	loc, err := s.Location()
	if err != nil {
		return err
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Entries))
	for i, entry := range s.Entries {
		if entry.UUID == "" {
			return fmt.Errorf("entries[%d]: uuid is required", i)
		}
		if seen[entry.UUID] {
			return fmt.Errorf("entries[%d]: duplicate uuid %q", i, entry.UUID)
		}
		seen[entry.UUID] = true
		if entry.Type == "" {
			return fmt.Errorf("entries[%d]: type is required", i)
		}
		if _, err := entry.Entry(loc); err != nil {
			return fmt.Errorf("entries[%d]: %w", i, err)
		}
	}

	names := make(map[string]bool, len(s.Queries))
	for i, query := range s.Queries {
		if query.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if names[query.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, query.Name)
		}
		names[query.Name] = true
		if query.BeforeSequence < 0 {
			return fmt.Errorf("queries[%d]: before_sequence must be non-negative", i)
		}
		for _, id := range query.Expect {
			if !seen[id] {
				return fmt.Errorf("queries[%d]: expect references unknown entry %q", i, id)
			}
		}
	}

	return nil
}
