package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/storage"
)

// ExportBundle copies the whole live log into a portable bundle.
func (s *Store) ExportBundle(ctx context.Context) (storage.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return storage.Bundle{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Bundle{}, fmt.Errorf("storage is not configured")
	}

	var bundle storage.Bundle
	afterHeight := uint64(0)
	for {
		page, err := s.ListEvents(ctx, afterHeight, 500)
		if err != nil {
			return storage.Bundle{}, err
		}
		if len(page) == 0 {
			break
		}
		bundle.Events = append(bundle.Events, page...)
		afterHeight = page[len(page)-1].Height
	}
	if len(bundle.Events) > 0 {
		bundle.LatestSeq = bundle.Events[len(bundle.Events)-1].Height
	}
	return bundle, nil
}

// ReplaceEvents swaps the live log's contents for the bundle's events in a
// single transaction, preserving the bundle's original heights. The
// current-state and snapshot caches are cleared since they describe the
// old log. Clearing and reinserting rows avoids deleting and recreating
// the store itself, which other open connections would block.
func (s *Store) ReplaceEvents(ctx context.Context, bundle storage.Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	for i, evt := range bundle.Events {
		if evt.Height == 0 {
			return fmt.Errorf("bundle event %d has no height", i)
		}
		if evt.EventID == "" {
			return fmt.Errorf("bundle event %d has no event id", i)
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := clearLiveLog(ctx, tx); err != nil {
		return err
	}
	for _, evt := range bundle.Events {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events (height, event_id, event_type, timestamp, payload_json) VALUES (?, ?, ?, ?, ?)",
			int64(evt.Height), evt.EventID, string(evt.Type), toMillis(evt.Timestamp), evt.PayloadJSON,
		); err != nil {
			return fmt.Errorf("reinsert event %d: %w", evt.Height, err)
		}
	}
	if err := setHeightSequence(ctx, tx, bundle.LatestSeq); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ResetLog clears the live log and appends the seed events to the fresh
// log, all in one transaction. It returns the stored seeds with their
// newly assigned heights.
func (s *Store) ResetLog(ctx context.Context, seeds []event.Event) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := clearLiveLog(ctx, tx); err != nil {
		return nil, err
	}
	if err := setHeightSequence(ctx, tx, 0); err != nil {
		return nil, err
	}

	stored := make([]event.Event, 0, len(seeds))
	for i, seed := range seeds {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO events (event_id, event_type, timestamp, payload_json) VALUES (?, ?, ?, ?)",
			seed.EventID, string(seed.Type), toMillis(seed.Timestamp), seed.PayloadJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("seed event %d: %w", i, err)
		}
		height, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("seed event %d height: %w", i, err)
		}
		seed.Height = uint64(height)
		stored = append(stored, seed)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

func clearLiveLog(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"events", "state", "snapshots"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// setHeightSequence pins the AUTOINCREMENT counter so the next appended
// event gets height latestSeq+1 regardless of what the cleared log held.
func setHeightSequence(ctx context.Context, tx *sql.Tx, latestSeq uint64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'events'"); err != nil {
		return fmt.Errorf("reset height sequence: %w", err)
	}
	if latestSeq > 0 {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO sqlite_sequence (name, seq) VALUES ('events', ?)",
			int64(latestSeq),
		); err != nil {
			return fmt.Errorf("set height sequence: %w", err)
		}
	}
	return nil
}
