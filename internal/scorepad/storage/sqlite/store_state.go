package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/scorepad/internal/scorepad/storage"
)

// PutCurrentState overwrites the single cached current-state row. The row
// is last-writer-wins: it is always recomputable from the log, so any tab
// may replace it.
func (s *Store) PutCurrentState(ctx context.Context, current storage.CurrentState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(current.StateJSON) == 0 {
		return fmt.Errorf("state json is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO state (id, height, state_json) VALUES ('current', ?, ?)
		 ON CONFLICT(id) DO UPDATE SET height = excluded.height, state_json = excluded.state_json`,
		int64(current.Height), current.StateJSON,
	); err != nil {
		return fmt.Errorf("put current state: %w", err)
	}
	return nil
}

// GetCurrentState loads the cached current-state row.
func (s *Store) GetCurrentState(ctx context.Context) (storage.CurrentState, error) {
	if err := ctx.Err(); err != nil {
		return storage.CurrentState{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CurrentState{}, fmt.Errorf("storage is not configured")
	}

	var (
		height    int64
		stateJSON []byte
	)
	row := s.sqlDB.QueryRowContext(ctx, "SELECT height, state_json FROM state WHERE id = 'current'")
	if err := row.Scan(&height, &stateJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CurrentState{}, storage.ErrNotFound
		}
		return storage.CurrentState{}, fmt.Errorf("get current state: %w", err)
	}
	return storage.CurrentState{Height: uint64(height), StateJSON: stateJSON}, nil
}

// PutSnapshot stores a snapshot at its height, replacing any previous
// snapshot there.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if snapshot.Height == 0 {
		return fmt.Errorf("snapshot height must be greater than zero")
	}
	if len(snapshot.StateJSON) == 0 {
		return fmt.Errorf("state json is required")
	}
	createdAt := snapshot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO snapshots (height, state_json, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(height) DO UPDATE SET state_json = excluded.state_json, created_at = excluded.created_at`,
		int64(snapshot.Height), snapshot.StateJSON, toMillis(createdAt),
	); err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// LatestSnapshotAt returns the newest snapshot with height at or below
// maxHeight. A maxHeight of zero means no bound.
func (s *Store) LatestSnapshotAt(ctx context.Context, maxHeight uint64) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Snapshot{}, fmt.Errorf("storage is not configured")
	}

	query := "SELECT height, state_json, created_at FROM snapshots ORDER BY height DESC LIMIT 1"
	args := []any{}
	if maxHeight > 0 {
		query = "SELECT height, state_json, created_at FROM snapshots WHERE height <= ? ORDER BY height DESC LIMIT 1"
		args = append(args, int64(maxHeight))
	}

	var (
		height    int64
		stateJSON []byte
		createdAt int64
	)
	row := s.sqlDB.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&height, &stateJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Snapshot{}, storage.ErrNotFound
		}
		return storage.Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return storage.Snapshot{
		Height:    uint64(height),
		StateJSON: stateJSON,
		CreatedAt: fromMillis(createdAt),
	}, nil
}
