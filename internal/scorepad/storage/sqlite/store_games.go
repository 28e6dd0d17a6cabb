package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/scorepad/internal/scorepad/storage"
)

// PutGame stores one archived game record.
func (s *Store) PutGame(ctx context.Context, record storage.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("game id is required")
	}

	summaryJSON, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	bundleJSON, err := json.Marshal(record.Bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO games (id, title, created_at, finished_at, last_seq, summary_json, bundle_json) VALUES (?, ?, ?, ?, ?, ?, ?)",
		record.ID, record.Title, toMillis(record.CreatedAt), toMillis(record.FinishedAt),
		int64(record.LastSeq), summaryJSON, bundleJSON,
	); err != nil {
		return fmt.Errorf("put game: %w", err)
	}
	return nil
}

// GetGame retrieves one archived game by id.
func (s *Store) GetGame(ctx context.Context, gameID string) (storage.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.GameRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.GameRecord{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return storage.GameRecord{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, title, created_at, finished_at, last_seq, summary_json, bundle_json FROM games WHERE id = ?",
		gameID,
	)
	record, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.GameRecord{}, storage.ErrNotFound
		}
		return storage.GameRecord{}, fmt.Errorf("get game: %w", err)
	}
	return record, nil
}

// ListGames returns archived games newest first.
func (s *Store) ListGames(ctx context.Context) ([]storage.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT id, title, created_at, finished_at, last_seq, summary_json, bundle_json FROM games ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var records []storage.GameRecord
	for rows.Next() {
		record, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return records, nil
}

// DeleteGame removes an archived game, used both for permanent deletion
// and for rolling back a partially completed archive.
func (s *Store) DeleteGame(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("game id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM games WHERE id = ?", gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete game result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanGame(row rowScanner) (storage.GameRecord, error) {
	var (
		id          string
		title       string
		createdAt   int64
		finishedAt  int64
		lastSeq     int64
		summaryJSON []byte
		bundleJSON  []byte
	)
	if err := row.Scan(&id, &title, &createdAt, &finishedAt, &lastSeq, &summaryJSON, &bundleJSON); err != nil {
		return storage.GameRecord{}, err
	}
	record := storage.GameRecord{
		ID:         id,
		Title:      title,
		CreatedAt:  fromMillis(createdAt),
		FinishedAt: fromMillis(finishedAt),
		LastSeq:    uint64(lastSeq),
	}
	if err := json.Unmarshal(summaryJSON, &record.Summary); err != nil {
		return storage.GameRecord{}, fmt.Errorf("unmarshal summary: %w", err)
	}
	if err := json.Unmarshal(bundleJSON, &record.Bundle); err != nil {
		return storage.GameRecord{}, fmt.Errorf("unmarshal bundle: %w", err)
	}
	return record, nil
}
