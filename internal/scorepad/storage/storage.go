// Package storage defines the persistence contracts and records shared by
// the event log engine and the archive manager.
package storage

import (
	"errors"
	"time"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("not found")

// CurrentState is the cached derived state at a known height. It is a
// last-writer-wins cache: any tab may overwrite it because it is always a
// pure function of a log prefix.
type CurrentState struct {
	Height    uint64
	StateJSON []byte
}

// Snapshot is a cached (height, state) pair bounding replay cost. It is
// never authoritative; replay from genesis must produce identical results.
type Snapshot struct {
	Height    uint64
	StateJSON []byte
	CreatedAt time.Time
}

// Bundle is a portable, replayable export of (a segment of) the log.
type Bundle struct {
	LatestSeq uint64        `json:"latestSeq"`
	Events    []event.Event `json:"events"`
}

// GameSummary is the archive roll-up derived by replaying a bundle.
type GameSummary struct {
	Players  map[string]string `json:"players"`
	Scores   map[string]int    `json:"scores"`
	WinnerID string            `json:"winnerId,omitempty"`
	// SoloJSON holds the single-player sub-state snapshot, when present.
	SoloJSON []byte `json:"solo,omitempty"`
}

// GameRecord is one archived game. Immutable once written except for
// rollback or permanent deletion.
type GameRecord struct {
	ID         string
	Title      string
	CreatedAt  time.Time
	FinishedAt time.Time
	LastSeq    uint64
	Summary    GameSummary
	Bundle     Bundle
}
