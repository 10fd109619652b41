package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/telescope/internal/filterir"
	"github.com/roach88/telescope/internal/ir"
	"github.com/roach88/telescope/internal/querysql"
)

// Query lists entries of entryType within the scope of opts, newest first.
//
// An empty entryType lists every type. At most opts.PageSize() entries are
// returned; pass the smallest returned Sequence as opts.BeforeSequence to
// fetch the next page.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Query(ctx context.Context, entryType string, opts ir.QueryOptions) ([]ir.Entry, error) {
	sqlText, params, err := s.Explain(entryType, opts)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []ir.Entry
	for rows.Next() {
		entry, err := s.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	if entries == nil {
		return []ir.Entry{}, nil
	}

	if err := s.attachTags(ctx, entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// Explain returns the SQL and parameters Query would run.
func (s *Store) Explain(entryType string, opts ir.QueryOptions) (string, []any, error) {
	sqlText, params, err := s.compiler.Compile(filterir.Select{
		Filter: s.scopes.Scope(entryType, opts),
		Limit:  opts.PageSize(),
	})
	if err != nil {
		return "", nil, fmt.Errorf("compile entry query: %w", err)
	}
	return sqlText, params, nil
}

// Get retrieves a single entry with its tags.
// The error wraps sql.ErrNoRows if no entry has the uuid.
func (s *Store) Get(ctx context.Context, entryUUID string) (ir.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+querysql.EntryColumns+" FROM "+querysql.EntriesTable+" WHERE uuid = ?",
		entryUUID,
	)

	entry, err := s.scanEntry(row)
	if err != nil {
		return ir.Entry{}, fmt.Errorf("get entry %s: %w", entryUUID, err)
	}

	tags, err := s.Tags(ctx, entryUUID)
	if err != nil {
		return ir.Entry{}, err
	}
	entry.Tags = tags

	return entry, nil
}

// Tags returns the tags of an entry in sorted order.
// Returns an empty slice (not nil) for unknown entries.
func (s *Store) Tags(ctx context.Context, entryUUID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag FROM telescope_entries_tags
		WHERE entry_uuid = ?
		ORDER BY tag COLLATE BINARY ASC
	`, entryUUID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return tags, nil
}

// attachTags loads the tags of all entries with one query.
func (s *Store) attachTags(ctx context.Context, entries []ir.Entry) error {
	byUUID := make(map[string]int, len(entries))
	args := make([]any, len(entries))
	for i := range entries {
		entries[i].Tags = []string{}
		byUUID[entries[i].UUID] = i
		args[i] = entries[i].UUID
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(entries)), ", ")
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_uuid, tag FROM telescope_entries_tags
		WHERE entry_uuid IN (`+placeholders+`)
		ORDER BY entry_uuid, tag COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryUUID, tag string
		if err := rows.Scan(&entryUUID, &tag); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		if i, ok := byUUID[entryUUID]; ok {
			entries[i].Tags = append(entries[i].Tags, tag)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tags: %w", err)
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry scans the querysql.EntryColumns of one row.
func (s *Store) scanEntry(row rowScanner) (ir.Entry, error) {
	var entry ir.Entry
	var familyHash sql.NullString
	var blob []byte
	var createdAt string

	if err := row.Scan(
		&entry.Sequence, &entry.UUID, &entry.BatchID, &familyHash, &entry.Type,
		&blob, &entry.ShouldDisplayOnIndex, &createdAt,
	); err != nil {
		return ir.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	entry.FamilyHash = familyHash.String

	content, err := s.codec.unmarshalContent(blob)
	if err != nil {
		return ir.Entry{}, fmt.Errorf("entry %s: %w", entry.UUID, err)
	}
	entry.Content = content

	entry.CreatedAt, err = unmarshalTime(createdAt, s.loc)
	if err != nil {
		return ir.Entry{}, fmt.Errorf("entry %s: %w", entry.UUID, err)
	}

	return entry, nil
}
