package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/telescope/internal/ir"
)

// Store appends entries and their tags in a single transaction.
//
// Missing fields are filled in before writing: a UUIDv7 when UUID is empty
// and the store clock when CreatedAt is zero. Sequence is assigned by the
// database; the returned entries carry the assigned values.
//
// Either every entry is written or none is.
func (s *Store) Store(ctx context.Context, entries ...ir.Entry) ([]ir.Entry, error) {
	if len(entries) == 0 {
		return []ir.Entry{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store entries: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stored := make([]ir.Entry, 0, len(entries))
	for _, entry := range entries {
		entry, err := s.writeEntry(ctx, tx, entry)
		if err != nil {
			return nil, fmt.Errorf("store entries: %w", err)
		}
		stored = append(stored, entry)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store entries: commit: %w", err)
	}

	s.logger.Debug("entries stored", "count", len(stored))
	return stored, nil
}

func (s *Store) writeEntry(ctx context.Context, tx *sql.Tx, entry ir.Entry) (ir.Entry, error) {
	if entry.Type == "" {
		return ir.Entry{}, fmt.Errorf("entry %q: type is required", entry.UUID)
	}
	if entry.UUID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return ir.Entry{}, fmt.Errorf("generate uuid: %w", err)
		}
		entry.UUID = id.String()
	}
	if entry.BatchID == "" {
		entry.BatchID = entry.UUID
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	// Stored text has second precision.
	entry.CreatedAt = entry.CreatedAt.In(s.loc).Truncate(time.Second)
	entry.Tags = normalizeTags(entry.Tags)

	blob, err := s.codec.marshalContent(entry.Content)
	if err != nil {
		return ir.Entry{}, fmt.Errorf("entry %s: %w", entry.UUID, err)
	}

	var familyHash any
	if entry.FamilyHash != "" {
		familyHash = entry.FamilyHash
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO telescope_entries
		(uuid, batch_id, family_hash, should_display_on_index, type, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.UUID,
		entry.BatchID,
		familyHash,
		entry.ShouldDisplayOnIndex,
		entry.Type,
		blob,
		marshalTime(entry.CreatedAt, s.loc),
	)
	if err != nil {
		return ir.Entry{}, fmt.Errorf("insert entry %s: %w", entry.UUID, err)
	}

	entry.Sequence, err = result.LastInsertId()
	if err != nil {
		return ir.Entry{}, fmt.Errorf("entry %s: sequence: %w", entry.UUID, err)
	}

	for _, tag := range entry.Tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO telescope_entries_tags (entry_uuid, tag)
			VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, entry.UUID, tag); err != nil {
			return ir.Entry{}, fmt.Errorf("insert tag %q for entry %s: %w", tag, entry.UUID, err)
		}
	}

	return entry, nil
}

// Prune deletes entries created before cutoff, with their tags.
// Returns the number of entries deleted.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM telescope_entries WHERE created_at < ?",
		marshalTime(cutoff, s.loc),
	)
	if err != nil {
		return 0, fmt.Errorf("prune entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune entries: rows affected: %w", err)
	}

	s.logger.Info("entries pruned", "before", marshalTime(cutoff, s.loc), "deleted", deleted)
	return deleted, nil
}
