// Package roster holds roster and player types shared by the reducer and
// the event catalog.
package roster

import "strings"

// Mode binds a roster to the scorecard or single-player game flow.
type Mode string

const (
	// ModeScorecard is the multi-player scorecard mode.
	ModeScorecard Mode = "scorecard"
	// ModeSolo is the single-player trick-play mode.
	ModeSolo Mode = "solo"
)

// PlayerType distinguishes humans from bots.
type PlayerType string

const (
	// PlayerTypeHuman marks a human player.
	PlayerTypeHuman PlayerType = "human"
	// PlayerTypeBot marks a bot player.
	PlayerTypeBot PlayerType = "bot"
)

// Roster is a named, ordered collection of players bound to one mode.
type Roster struct {
	Name            string                `json:"name"`
	PlayersByID     map[string]string     `json:"playersById"`
	PlayerTypesByID map[string]PlayerType `json:"playerTypesById"`
	DisplayOrder    []string              `json:"displayOrder"`
	Mode            Mode                  `json:"type"`
	CreatedAt       int64                 `json:"createdAt"`
	ArchivedAt      int64                 `json:"archivedAt,omitempty"`
}

// NormalizeMode maps free-form mode strings onto the closed set.
func NormalizeMode(value string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeScorecard:
		return ModeScorecard, true
	case ModeSolo:
		return ModeSolo, true
	}
	return "", false
}

// NormalizePlayerType maps free-form player type strings onto the closed set.
func NormalizePlayerType(value string) (PlayerType, bool) {
	switch PlayerType(strings.ToLower(strings.TrimSpace(value))) {
	case PlayerTypeHuman:
		return PlayerTypeHuman, true
	case PlayerTypeBot:
		return PlayerTypeBot, true
	}
	return "", false
}
