// Package solo holds the single-player trick-play sub-state and card types.
package solo

import "strings"

// Suit is one of the four French suits.
type Suit string

const (
	SuitClubs    Suit = "clubs"
	SuitDiamonds Suit = "diamonds"
	SuitHearts   Suit = "hearts"
	SuitSpades   Suit = "spades"
)

// Card is a suit plus a rank from 2 (two) to 14 (ace).
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// Equal reports whether two cards are the same card.
func (c Card) Equal(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

// IsValid reports whether the card is a member of a standard deck.
func (c Card) IsValid() bool {
	switch c.Suit {
	case SuitClubs, SuitDiamonds, SuitHearts, SuitSpades:
	default:
		return false
	}
	return c.Rank >= 2 && c.Rank <= 14
}

// NormalizeSuit maps free-form suit strings onto the closed set.
func NormalizeSuit(value string) (Suit, bool) {
	switch Suit(strings.ToLower(strings.TrimSpace(value))) {
	case SuitClubs:
		return SuitClubs, true
	case SuitDiamonds:
		return SuitDiamonds, true
	case SuitHearts:
		return SuitHearts, true
	case SuitSpades:
		return SuitSpades, true
	}
	return "", false
}

// Play records one player's card within a trick.
type Play struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

// Phase tracks where the single-player flow currently is.
type Phase string

const (
	// PhaseHand means cards are being played into tricks.
	PhaseHand Phase = "hand"
	// PhaseReveal means a completed trick is face up awaiting clear.
	PhaseReveal Phase = "reveal"
	// PhaseSummary means the round is over and tallies are shown.
	PhaseSummary Phase = "summary"
)

// Trick is a completed trick kept for display after the clear.
type Trick struct {
	Plays    []Play `json:"plays"`
	WinnerID string `json:"winnerId"`
}

// State is the single-player sub-state folded into the app state.
//
// Invariants: len(TrickPlays) <= len(Order); at most one play per player per
// trick; a played card must come from that player's hand.
type State struct {
	Round       int                    `json:"round"`
	DealerID    string                 `json:"dealerId,omitempty"`
	Order       []string               `json:"order,omitempty"`
	TrumpSuit   Suit                   `json:"trumpSuit,omitempty"`
	TrumpCard   *Card                  `json:"trumpCard,omitempty"`
	Hands       map[string][]Card      `json:"hands,omitempty"`
	TrickPlays  []Play                 `json:"trickPlays,omitempty"`
	TrickCounts map[string]int         `json:"trickCounts,omitempty"`
	TrumpBroken bool                   `json:"trumpBroken,omitempty"`
	LeaderID    string                 `json:"leaderId,omitempty"`
	Phase       Phase                  `json:"phase,omitempty"`
	LastTrick   *Trick                 `json:"lastTrick,omitempty"`
	Seed        string                 `json:"seed,omitempty"`
	Tallies     map[int]map[string]int `json:"tallies,omitempty"`
}

// HasPlayed reports whether the player already played into the current trick.
func (s *State) HasPlayed(playerID string) bool {
	if s == nil {
		return false
	}
	for _, play := range s.TrickPlays {
		if play.PlayerID == playerID {
			return true
		}
	}
	return false
}

// HandContains reports whether the player currently holds the card.
func (s *State) HandContains(playerID string, card Card) bool {
	if s == nil {
		return false
	}
	for _, held := range s.Hands[playerID] {
		if held.Equal(card) {
			return true
		}
	}
	return false
}

// Clone deep-copies the sub-state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	cloned := *s
	cloned.Order = append([]string(nil), s.Order...)
	cloned.TrickPlays = append([]Play(nil), s.TrickPlays...)
	if s.TrumpCard != nil {
		card := *s.TrumpCard
		cloned.TrumpCard = &card
	}
	if s.Hands != nil {
		cloned.Hands = make(map[string][]Card, len(s.Hands))
		for playerID, hand := range s.Hands {
			cloned.Hands[playerID] = append([]Card(nil), hand...)
		}
	}
	if s.TrickCounts != nil {
		cloned.TrickCounts = make(map[string]int, len(s.TrickCounts))
		for playerID, count := range s.TrickCounts {
			cloned.TrickCounts[playerID] = count
		}
	}
	if s.LastTrick != nil {
		trick := Trick{
			Plays:    append([]Play(nil), s.LastTrick.Plays...),
			WinnerID: s.LastTrick.WinnerID,
		}
		cloned.LastTrick = &trick
	}
	if s.Tallies != nil {
		cloned.Tallies = make(map[int]map[string]int, len(s.Tallies))
		for roundNumber, tally := range s.Tallies {
			copied := make(map[string]int, len(tally))
			for playerID, value := range tally {
				copied[playerID] = value
			}
			cloned.Tallies[roundNumber] = copied
		}
	}
	return &cloned
}
