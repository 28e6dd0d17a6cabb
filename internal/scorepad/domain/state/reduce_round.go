package state

import (
	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/round"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/rules"
)

// applyRound handles round.* scoring events. It returns false when the
// event belongs to another sub-reducer.
func applyRound(s *AppState, evt event.Event) bool {
	switch evt.Type {
	case event.TypeBidSet:
		var payload round.BidSetPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyBidSet(s, payload)
	case event.TypeMadeSet:
		var payload round.MadeSetPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyMadeSet(s, payload)
	case event.TypePlayerDropped:
		var payload round.PlayerDroppedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyPresenceRange(s, payload.PlayerID, payload.FromRound, payload.ToRound, false)
	case event.TypePlayerResumed:
		var payload round.PlayerResumedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyPresenceRange(s, payload.PlayerID, payload.FromRound, payload.ToRound, true)
	case event.TypeRoundFinalized:
		var payload round.FinalizedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyRoundFinalized(s, payload.Round)
	default:
		return false
	}
	return true
}

func applyBidSet(s *AppState, payload round.BidSetPayload) {
	data, ok := s.Rounds[payload.Round]
	if !ok || data == nil {
		return
	}
	if data.State != round.StateBidding && data.State != round.StateComplete {
		return
	}
	if _, exists := s.Players[payload.PlayerID]; !exists {
		return
	}
	bid := payload.Bid
	if bid < 0 {
		bid = 0
	}
	if maxBid := rules.TricksForRound(payload.Round); bid > maxBid {
		bid = maxBid
	}
	if data.Bids == nil {
		data.Bids = map[string]int{}
	}
	data.Bids[payload.PlayerID] = bid
}

func applyMadeSet(s *AppState, payload round.MadeSetPayload) {
	data, ok := s.Rounds[payload.Round]
	if !ok || data == nil || data.State == round.StateScored || data.State == round.StateLocked {
		return
	}
	if _, exists := s.Players[payload.PlayerID]; !exists {
		return
	}
	if data.Made == nil {
		data.Made = map[string]*bool{}
	}
	if payload.Made == nil {
		delete(data.Made, payload.PlayerID)
	} else {
		value := *payload.Made
		data.Made[payload.PlayerID] = &value
	}
	if allResultsIn(data) {
		data.State = round.StateComplete
	} else {
		data.State = round.StateBidding
	}
}

// allResultsIn reports whether every present player has a recorded result.
func allResultsIn(data *round.Data) bool {
	if len(data.Present) == 0 {
		return false
	}
	for playerID, present := range data.Present {
		if !present {
			continue
		}
		if made, ok := data.Made[playerID]; !ok || made == nil {
			return false
		}
	}
	return true
}

func applyPresenceRange(s *AppState, playerID string, from, to int, present bool) {
	if _, exists := s.Players[playerID]; !exists {
		return
	}
	if to < from {
		return
	}
	for number := from; number <= to; number++ {
		data, ok := s.Rounds[number]
		if !ok || data == nil || data.State == round.StateScored {
			continue
		}
		if data.Present == nil {
			data.Present = map[string]bool{}
		}
		if present {
			data.Present[playerID] = true
		} else {
			delete(data.Present, playerID)
		}
	}
}

// applyRoundFinalized sums score deltas for present players, marks the
// round scored, and unlocks the next round. Finalizing an already scored
// round is a no-op.
func applyRoundFinalized(s *AppState, number int) {
	data, ok := s.Rounds[number]
	if !ok || data == nil {
		return
	}
	if data.State == round.StateScored {
		return
	}
	if data.State == round.StateLocked {
		return
	}
	for playerID, present := range data.Present {
		if !present {
			continue
		}
		if _, exists := s.Players[playerID]; !exists {
			continue
		}
		s.Scores[playerID] += round.Delta(data.Bids[playerID], data.Made[playerID])
	}
	data.State = round.StateScored
	if next, ok := s.Rounds[number+1]; ok && next != nil && next.State == round.StateLocked {
		next.State = round.StateBidding
	}
}
