package event

import (
	"encoding/json"
	"strings"
	"time"
)

// Type identifies the type of a scorepad event.
type Type string

// Roster and player events.
const (
	// TypeRosterCreated records the creation of a roster.
	TypeRosterCreated Type = "roster.created"
	// TypeRosterRenamed records a roster rename.
	TypeRosterRenamed Type = "roster.renamed"
	// TypeRosterArchived records archiving a roster.
	TypeRosterArchived Type = "roster.archived"
	// TypeRosterRestored records restoring an archived roster.
	TypeRosterRestored Type = "roster.restored"
	// TypeRosterDeleted records permanent deletion of a roster.
	TypeRosterDeleted Type = "roster.deleted"
	// TypeRosterActivated records activating a roster for its mode.
	TypeRosterActivated Type = "roster.activated"
	// TypePlayerAdded records adding a player to the active roster.
	TypePlayerAdded Type = "player.added"
	// TypePlayerRenamed records a player rename.
	TypePlayerRenamed Type = "player.renamed"
	// TypePlayerRemoved records removing a player from the active roster.
	TypePlayerRemoved Type = "player.removed"
	// TypePlayersReordered records a display-order change.
	TypePlayersReordered Type = "player.reordered"
	// TypePlayerRetyped records switching a player between human and bot.
	TypePlayerRetyped Type = "player.retyped"
)

// Round scoring events.
const (
	// TypeBidSet records a player's bid for a round.
	TypeBidSet Type = "round.bid_set"
	// TypeMadeSet records whether a player made their bid.
	TypeMadeSet Type = "round.made_set"
	// TypePlayerDropped records a player sitting out a round range.
	TypePlayerDropped Type = "round.player_dropped"
	// TypePlayerResumed records a player rejoining a round range.
	TypePlayerResumed Type = "round.player_resumed"
	// TypeRoundFinalized records scoring a round.
	TypeRoundFinalized Type = "round.finalized"
)

// Single-player trick-play events.
const (
	// TypeSoloDealt records a deal: trump, hands, and play order.
	TypeSoloDealt Type = "solo.dealt"
	// TypeSoloCardPlayed records one card played into the current trick.
	TypeSoloCardPlayed Type = "solo.card_played"
	// TypeSoloTrickRevealed records revealing the completed trick.
	TypeSoloTrickRevealed Type = "solo.trick_revealed"
	// TypeSoloTrickCleared records clearing the trick to its winner.
	TypeSoloTrickCleared Type = "solo.trick_cleared"
	// TypeSoloTrumpBrokenSet records the trump-broken flag changing.
	TypeSoloTrumpBrokenSet Type = "solo.trump_broken_set"
	// TypeSoloLeaderSet records overriding the nominal trick leader.
	TypeSoloLeaderSet Type = "solo.leader_set"
	// TypeSoloSummaryEntered records entering the round summary phase.
	TypeSoloSummaryEntered Type = "solo.summary_entered"
	// TypeSoloSeedSet records the session seed.
	TypeSoloSeedSet Type = "solo.seed_set"
	// TypeSoloTalliesSet records the per-player tallies for a round.
	TypeSoloTalliesSet Type = "solo.tallies_set"
)

// Event represents an immutable event in the append-only log.
type Event struct {
	// EventID is the globally unique, caller-supplied identity used for dedupe.
	EventID string
	// Height is the monotonic sequence assigned by storage on append.
	// It is the ordering truth of the log; Timestamp is informational only.
	Height uint64
	// Type identifies the kind of event.
	Type Type
	// Timestamp is when the event was built by the caller.
	Timestamp time.Time
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "roster", "round").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

type wireEvent struct {
	EventID string          `json:"eventId"`
	Height  uint64          `json:"height,omitempty"`
	Type    Type            `json:"type"`
	TS      int64           `json:"ts"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON renders the portable wire shape used by bundles and the CLI.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{
		EventID: e.EventID,
		Height:  e.Height,
		Type:    e.Type,
		TS:      e.Timestamp.UTC().UnixMilli(),
		Payload: json.RawMessage(e.PayloadJSON),
	})
}

// UnmarshalJSON parses the portable wire shape.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	e.EventID = wire.EventID
	e.Height = wire.Height
	e.Type = wire.Type
	e.Timestamp = time.UnixMilli(wire.TS).UTC()
	e.PayloadJSON = []byte(wire.Payload)
	return nil
}
