package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/telescope/internal/ir"
)

var testLocation = mustLoadLocation("Europe/Copenhagen")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, append([]Option{WithLocation(testLocation)}, opts...)...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// at parses a wall-clock time in the test location.
func at(value string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", value, testLocation)
	if err != nil {
		panic(err)
	}
	return t
}

// createTestEntry creates a visible request entry with minimal required fields.
func createTestEntry(id string, createdAt time.Time, tags ...string) ir.Entry {
	return ir.Entry{
		UUID:                 id,
		BatchID:              "batch-1",
		Type:                 ir.TypeRequest,
		Content:              json.RawMessage(fmt.Sprintf(`{"id":%q}`, id)),
		Tags:                 tags,
		ShouldDisplayOnIndex: true,
		CreatedAt:            createdAt,
	}
}

// storeEntries stores entries one by one so sequences follow argument order.
func storeEntries(t *testing.T, s *Store, entries ...ir.Entry) []ir.Entry {
	t.Helper()
	var stored []ir.Entry
	for _, entry := range entries {
		out, err := s.Store(context.Background(), entry)
		if err != nil {
			t.Fatalf("Store(%s) failed: %v", entry.UUID, err)
		}
		stored = append(stored, out...)
	}
	return stored
}

// uuidsOf lists entry uuids in order.
func uuidsOf(entries []ir.Entry) []string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.UUID
	}
	return ids
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count %s failed: %v", table, err)
	}
	return count
}
