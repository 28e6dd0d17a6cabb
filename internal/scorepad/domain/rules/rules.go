// Package rules implements turn order and move legality for the embedded
// trick-taking game. Every function is pure; callers decide what to do with
// a rejected move.
package rules

import "github.com/louisbranch/scorepad/internal/scorepad/domain/solo"

// Reason explains why a proposed play was rejected.
type Reason string

const (
	// ReasonNotYourTurn means the player is not the computed next-to-act.
	ReasonNotYourTurn Reason = "not-your-turn"
	// ReasonCardNotInHand means the card is not in the player's hand.
	ReasonCardNotInHand Reason = "card-not-in-hand"
	// ReasonCannotLeadTrump means trump cannot be led before it is broken.
	ReasonCannotLeadTrump Reason = "cannot-lead-trump"
	// ReasonMustFollowSuit means the player holds the suit led and must play it.
	ReasonMustFollowSuit Reason = "must-follow-suit"
)

// TricksForRound returns how many tricks round n plays: 10 in round 1,
// descending to 1 in round 10, 0 beyond.
func TricksForRound(n int) int {
	tricks := 11 - n
	if tricks < 0 {
		return 0
	}
	if tricks > 10 {
		return 10
	}
	return tricks
}

// TrickLeader returns the effective leader of the active trick: the author
// of the first play if any plays exist, else the stored nominal leader.
func TrickLeader(plays []solo.Play, nominalLeader string) string {
	if len(plays) > 0 {
		return plays[0].PlayerID
	}
	return nominalLeader
}

// rotate returns order shifted to start at leader. An unknown leader
// leaves the order unchanged.
func rotate(order []string, leader string) []string {
	for i, playerID := range order {
		if playerID == leader {
			rotated := make([]string, 0, len(order))
			rotated = append(rotated, order[i:]...)
			rotated = append(rotated, order[:i]...)
			return rotated
		}
	}
	return order
}

// NextToAct returns the player expected to play next in the current trick,
// or false when the trick is already full.
func NextToAct(order []string, plays []solo.Play, nominalLeader string) (string, bool) {
	if len(order) == 0 || len(plays) >= len(order) {
		return "", false
	}
	rotated := rotate(order, TrickLeader(plays, nominalLeader))
	return rotated[len(plays)], true
}

// CanPlayCard reports whether playerID may legally play card given the
// current sub-state. When the play is illegal the reason names the first
// violated rule.
func CanPlayCard(state *solo.State, playerID string, card solo.Card) (bool, Reason) {
	if state == nil {
		return false, ReasonNotYourTurn
	}
	next, ok := NextToAct(state.Order, state.TrickPlays, state.LeaderID)
	if !ok || next != playerID {
		return false, ReasonNotYourTurn
	}
	if !state.HandContains(playerID, card) {
		return false, ReasonCardNotInHand
	}
	if len(state.TrickPlays) == 0 {
		if card.Suit == state.TrumpSuit && !state.TrumpBroken && hasNonTrump(state.Hands[playerID], state.TrumpSuit) {
			return false, ReasonCannotLeadTrump
		}
		return true, ""
	}
	ledSuit := state.TrickPlays[0].Card.Suit
	if card.Suit != ledSuit && holdsSuit(state.Hands[playerID], ledSuit) {
		return false, ReasonMustFollowSuit
	}
	return true, ""
}

// TrickComplete reports whether every seat has played into the trick.
func TrickComplete(plays []solo.Play, order []string) bool {
	return len(order) > 0 && len(plays) == len(order)
}

// RoundComplete reports whether all of round n's tricks have been won.
func RoundComplete(trickCounts map[string]int, n int) bool {
	total := 0
	for _, count := range trickCounts {
		total += count
	}
	return total >= TricksForRound(n)
}

// TrickWinner returns the player who won the trick: the highest trump if
// any trump was played, otherwise the highest card of the suit led.
func TrickWinner(plays []solo.Play, trump solo.Suit) string {
	if len(plays) == 0 {
		return ""
	}
	winning := plays[0]
	for _, play := range plays[1:] {
		if beats(play.Card, winning.Card, trump) {
			winning = play
		}
	}
	return winning.PlayerID
}

// beats reports whether challenger beats incumbent given the trump suit and
// the suit the incumbent chain started with.
func beats(challenger, incumbent solo.Card, trump solo.Suit) bool {
	if challenger.Suit == incumbent.Suit {
		return challenger.Rank > incumbent.Rank
	}
	return challenger.Suit == trump
}

func holdsSuit(hand []solo.Card, suit solo.Suit) bool {
	for _, card := range hand {
		if card.Suit == suit {
			return true
		}
	}
	return false
}

func hasNonTrump(hand []solo.Card, trump solo.Suit) bool {
	for _, card := range hand {
		if card.Suit != trump {
			return true
		}
	}
	return false
}
