package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/storage"
)

// AppendEvent inserts an event and returns its assigned height. Appending
// an event id that was already committed is idempotent success: the
// existing height is returned instead of an error or a second row.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.EventID) == "" {
		return 0, fmt.Errorf("event id is required")
	}
	if !evt.Type.IsValid() {
		return 0, fmt.Errorf("event type is required")
	}

	result, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO events (event_id, event_type, timestamp, payload_json) VALUES (?, ?, ?, ?)",
		evt.EventID, string(evt.Type), toMillis(evt.Timestamp), evt.PayloadJSON,
	)
	if err != nil {
		if IsConstraint(err) {
			existing, lookupErr := s.GetEventByID(ctx, evt.EventID)
			if lookupErr == nil {
				return existing.Height, nil
			}
		}
		return 0, fmt.Errorf("append event: %w", err)
	}
	height, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read assigned height: %w", err)
	}
	return uint64(height), nil
}

// GetEventByID retrieves an event by its caller-supplied id.
func (s *Store) GetEventByID(ctx context.Context, eventID string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(eventID) == "" {
		return event.Event{}, fmt.Errorf("event id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT height, event_id, event_type, timestamp, payload_json FROM events WHERE event_id = ?",
		eventID,
	)
	evt, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, storage.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("get event by id: %w", err)
	}
	return evt, nil
}

// ListEvents returns up to limit events with height greater than
// afterHeight, ordered by height ascending.
func (s *Store) ListEvents(ctx context.Context, afterHeight uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT height, event_id, event_type, timestamp, payload_json FROM events WHERE height > ? ORDER BY height ASC LIMIT ?",
		int64(afterHeight), int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// LatestHeight returns the height of the newest committed event, or 0 for
// an empty log.
func (s *Store) LatestHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var height int64
	row := s.sqlDB.QueryRow("SELECT COALESCE(MAX(height), 0) FROM events")
	if err := row.Scan(&height); err != nil {
		return 0, fmt.Errorf("latest height: %w", err)
	}
	return uint64(height), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var (
		height    int64
		eventID   string
		eventType string
		timestamp int64
		payload   []byte
	)
	if err := row.Scan(&height, &eventID, &eventType, &timestamp, &payload); err != nil {
		return event.Event{}, err
	}
	return event.Event{
		EventID:     eventID,
		Height:      uint64(height),
		Type:        event.Type(eventType),
		Timestamp:   fromMillis(timestamp),
		PayloadJSON: payload,
	}, nil
}
