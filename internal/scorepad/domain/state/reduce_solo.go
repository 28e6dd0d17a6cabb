package state

import (
	"strings"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/rules"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/solo"
)

// applySolo handles solo.* trick-play events. All mutations are checked
// against the rules engine first; an event proposing an illegal move
// reduces to the unchanged state instead of corrupting it.
func applySolo(s *AppState, evt event.Event) bool {
	switch evt.Type {
	case event.TypeSoloDealt:
		var payload solo.DealtPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applySoloDealt(s, payload)
	case event.TypeSoloCardPlayed:
		var payload solo.CardPlayedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applySoloCardPlayed(s, payload)
	case event.TypeSoloTrickRevealed:
		applySoloTrickRevealed(s)
	case event.TypeSoloTrickCleared:
		applySoloTrickCleared(s)
	case event.TypeSoloTrumpBrokenSet:
		var payload solo.TrumpBrokenSetPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		if s.Solo != nil {
			s.Solo.TrumpBroken = payload.Broken
		}
	case event.TypeSoloLeaderSet:
		var payload solo.LeaderSetPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applySoloLeaderSet(s, payload.PlayerID)
	case event.TypeSoloSummaryEntered:
		if s.Solo != nil {
			s.Solo.Phase = solo.PhaseSummary
		}
	case event.TypeSoloSeedSet:
		var payload solo.SeedSetPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		if s.Solo == nil {
			s.Solo = &solo.State{}
		}
		s.Solo.Seed = strings.TrimSpace(payload.Seed)
	case event.TypeSoloTalliesSet:
		var payload solo.TalliesSetPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applySoloTalliesSet(s, payload)
	default:
		return false
	}
	return true
}

func applySoloDealt(s *AppState, payload solo.DealtPayload) {
	if payload.Round <= 0 || len(payload.Order) == 0 {
		return
	}
	trumpSuit, ok := solo.NormalizeSuit(payload.TrumpSuit)
	if !ok {
		return
	}
	hands := make(map[string][]solo.Card, len(payload.Hands))
	for playerID, hand := range payload.Hands {
		hands[playerID] = append([]solo.Card(nil), hand...)
	}
	next := &solo.State{
		Round:       payload.Round,
		DealerID:    payload.DealerID,
		Order:       append([]string(nil), payload.Order...),
		TrumpSuit:   trumpSuit,
		Hands:       hands,
		TrickCounts: map[string]int{},
		LeaderID:    afterDealer(payload.Order, payload.DealerID),
		Phase:       solo.PhaseHand,
	}
	if payload.TrumpCard != nil {
		card := *payload.TrumpCard
		next.TrumpCard = &card
	}
	for _, playerID := range payload.Order {
		next.TrickCounts[playerID] = 0
	}
	// Session seed and tallies survive across deals.
	if s.Solo != nil {
		next.Seed = s.Solo.Seed
		next.Tallies = s.Solo.Tallies
	}
	s.Solo = next
}

// afterDealer returns the player to the dealer's left, who leads the first
// trick of the round.
func afterDealer(order []string, dealerID string) string {
	if len(order) == 0 {
		return ""
	}
	for i, playerID := range order {
		if playerID == dealerID {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

func applySoloCardPlayed(s *AppState, payload solo.CardPlayedPayload) {
	sub := s.Solo
	if sub == nil || sub.Phase != solo.PhaseHand {
		return
	}
	if ok, _ := rules.CanPlayCard(sub, payload.PlayerID, payload.Card); !ok {
		return
	}
	sub.TrickPlays = append(sub.TrickPlays, solo.Play{PlayerID: payload.PlayerID, Card: payload.Card})
	sub.Hands[payload.PlayerID] = removeCard(sub.Hands[payload.PlayerID], payload.Card)
	if payload.Card.Suit == sub.TrumpSuit {
		sub.TrumpBroken = true
	}
	if rules.TrickComplete(sub.TrickPlays, sub.Order) {
		sub.Phase = solo.PhaseReveal
	}
}

func applySoloTrickRevealed(s *AppState) {
	sub := s.Solo
	if sub == nil || !rules.TrickComplete(sub.TrickPlays, sub.Order) {
		return
	}
	sub.Phase = solo.PhaseReveal
	sub.LastTrick = &solo.Trick{
		Plays:    append([]solo.Play(nil), sub.TrickPlays...),
		WinnerID: rules.TrickWinner(sub.TrickPlays, sub.TrumpSuit),
	}
}

func applySoloTrickCleared(s *AppState) {
	sub := s.Solo
	if sub == nil || !rules.TrickComplete(sub.TrickPlays, sub.Order) {
		return
	}
	winnerID := rules.TrickWinner(sub.TrickPlays, sub.TrumpSuit)
	sub.LastTrick = &solo.Trick{
		Plays:    append([]solo.Play(nil), sub.TrickPlays...),
		WinnerID: winnerID,
	}
	if sub.TrickCounts == nil {
		sub.TrickCounts = map[string]int{}
	}
	sub.TrickCounts[winnerID]++
	sub.LeaderID = winnerID
	sub.TrickPlays = nil
	if rules.RoundComplete(sub.TrickCounts, sub.Round) {
		sub.Phase = solo.PhaseSummary
	} else {
		sub.Phase = solo.PhaseHand
	}
}

func applySoloLeaderSet(s *AppState, playerID string) {
	sub := s.Solo
	if sub == nil || len(sub.TrickPlays) > 0 {
		return
	}
	for _, candidate := range sub.Order {
		if candidate == playerID {
			sub.LeaderID = playerID
			return
		}
	}
}

func applySoloTalliesSet(s *AppState, payload solo.TalliesSetPayload) {
	if s.Solo == nil || payload.Round <= 0 {
		return
	}
	if s.Solo.Tallies == nil {
		s.Solo.Tallies = map[int]map[string]int{}
	}
	tally := make(map[string]int, len(payload.Tallies))
	for playerID, value := range payload.Tallies {
		tally[playerID] = value
	}
	s.Solo.Tallies[payload.Round] = tally
}

func removeCard(hand []solo.Card, card solo.Card) []solo.Card {
	for i, held := range hand {
		if held.Equal(card) {
			return append(hand[:i:i], hand[i+1:]...)
		}
	}
	return hand
}
