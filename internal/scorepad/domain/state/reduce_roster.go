package state

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/roster"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/round"
)

// applyRoster handles roster.* and player.* events. It returns false when
// the event belongs to another sub-reducer.
func applyRoster(s *AppState, evt event.Event) bool {
	switch evt.Type {
	case event.TypeRosterCreated:
		var payload roster.CreatedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyRosterCreated(s, evt, payload)
	case event.TypeRosterRenamed:
		var payload roster.RenamedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		if entry, ok := s.Rosters[payload.RosterID]; ok && strings.TrimSpace(payload.Name) != "" {
			entry.Name = strings.TrimSpace(payload.Name)
		}
	case event.TypeRosterArchived:
		var payload roster.ArchivedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		if entry, ok := s.Rosters[payload.RosterID]; ok && entry.ArchivedAt == 0 {
			entry.ArchivedAt = evt.Timestamp.UnixMilli()
			clearActivePointer(s, payload.RosterID)
		}
	case event.TypeRosterRestored:
		var payload roster.RestoredPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		if entry, ok := s.Rosters[payload.RosterID]; ok {
			entry.ArchivedAt = 0
		}
	case event.TypeRosterDeleted:
		var payload roster.DeletedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		if _, ok := s.Rosters[payload.RosterID]; ok {
			clearActivePointer(s, payload.RosterID)
			delete(s.Rosters, payload.RosterID)
		}
	case event.TypeRosterActivated:
		var payload roster.ActivatedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyRosterActivated(s, payload.RosterID)
	case event.TypePlayerAdded:
		var payload roster.PlayerAddedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyPlayerAdded(s, evt, payload)
	case event.TypePlayerRenamed:
		var payload roster.PlayerRenamedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyPlayerRenamed(s, payload)
	case event.TypePlayerRemoved:
		var payload roster.PlayerRemovedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyPlayerRemoved(s, payload.PlayerID)
	case event.TypePlayersReordered:
		var payload roster.PlayersReorderedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyPlayersReordered(s, payload.DisplayOrder)
	case event.TypePlayerRetyped:
		var payload roster.PlayerRetypedPayload
		if event.DecodeStrict(evt.PayloadJSON, &payload) != nil {
			return true
		}
		applyPlayerRetyped(s, payload)
	default:
		return false
	}
	return true
}

func applyRosterCreated(s *AppState, evt event.Event, payload roster.CreatedPayload) {
	rosterID := strings.TrimSpace(payload.RosterID)
	if rosterID == "" {
		return
	}
	if _, exists := s.Rosters[rosterID]; exists {
		return
	}
	mode, ok := roster.NormalizeMode(payload.Mode)
	if !ok {
		mode = roster.ModeScorecard
	}
	entry := &roster.Roster{
		Name:            strings.TrimSpace(payload.Name),
		PlayersByID:     map[string]string{},
		PlayerTypesByID: map[string]roster.PlayerType{},
		Mode:            mode,
		CreatedAt:       evt.Timestamp.UnixMilli(),
	}
	for playerID, name := range payload.PlayersByID {
		entry.PlayersByID[playerID] = name
		playerType := roster.PlayerTypeHuman
		if normalized, ok := roster.NormalizePlayerType(payload.PlayerTypesByID[playerID]); ok {
			playerType = normalized
		}
		entry.PlayerTypesByID[playerID] = playerType
	}
	if len(payload.DisplayOrder) > 0 {
		entry.DisplayOrder = append([]string(nil), payload.DisplayOrder...)
	} else {
		for playerID := range entry.PlayersByID {
			entry.DisplayOrder = append(entry.DisplayOrder, playerID)
		}
	}
	if s.Rosters == nil {
		s.Rosters = map[string]*roster.Roster{}
	}
	s.Rosters[rosterID] = entry
	if s.ActiveRosters[mode] == "" {
		applyRosterActivated(s, rosterID)
	}
}

func applyRosterActivated(s *AppState, rosterID string) {
	entry, ok := s.Rosters[rosterID]
	if !ok || entry.ArchivedAt != 0 {
		return
	}
	if s.ActiveRosters == nil {
		s.ActiveRosters = map[roster.Mode]string{}
	}
	s.ActiveRosters[entry.Mode] = rosterID
	for playerID, name := range entry.PlayersByID {
		if _, exists := s.Players[playerID]; !exists {
			s.Players[playerID] = name
			s.PlayerDetails = ensureDetails(s.PlayerDetails)
			s.PlayerDetails[playerID] = PlayerDetail{
				Type:      entry.PlayerTypesByID[playerID],
				CreatedAt: entry.CreatedAt,
			}
			s.Scores[playerID] = 0
			s.DisplayOrder = append(s.DisplayOrder, playerID)
		}
	}
	if entry.Mode == roster.ModeScorecard && len(s.Rounds) == 0 {
		seedRounds(s)
	}
}

// seedRounds initializes the scorecard rounds: round 1 opens for bidding,
// the rest stay locked until the previous round is scored.
func seedRounds(s *AppState) {
	s.Rounds = make(map[int]*round.Data, PlayableRounds)
	for number := 1; number <= PlayableRounds; number++ {
		data := &round.Data{
			State:   round.StateLocked,
			Bids:    map[string]int{},
			Made:    map[string]*bool{},
			Present: map[string]bool{},
		}
		if number == 1 {
			data.State = round.StateBidding
		}
		for playerID := range s.Players {
			data.Present[playerID] = true
		}
		s.Rounds[number] = data
	}
}

func applyPlayerAdded(s *AppState, evt event.Event, payload roster.PlayerAddedPayload) {
	playerID := strings.TrimSpace(payload.PlayerID)
	name := strings.TrimSpace(payload.Name)
	if playerID == "" || name == "" {
		return
	}
	if _, exists := s.Players[playerID]; exists {
		return
	}
	activeID := s.ActiveRosters[roster.ModeScorecard]
	if activeID == "" {
		activeID = defaultRosterID(evt)
		applyRosterCreated(s, evt, roster.CreatedPayload{
			RosterID: activeID,
			Name:     "Scorecard",
			Mode:     string(roster.ModeScorecard),
		})
	}
	playerType := roster.PlayerTypeHuman
	if normalized, ok := roster.NormalizePlayerType(payload.PlayerType); ok {
		playerType = normalized
	}
	s.Players[playerID] = name
	s.PlayerDetails = ensureDetails(s.PlayerDetails)
	s.PlayerDetails[playerID] = PlayerDetail{Type: playerType, CreatedAt: evt.Timestamp.UnixMilli()}
	s.Scores[playerID] = 0
	s.DisplayOrder = append(s.DisplayOrder, playerID)
	if entry, ok := s.Rosters[activeID]; ok {
		entry.PlayersByID[playerID] = name
		entry.PlayerTypesByID[playerID] = playerType
		entry.DisplayOrder = append(entry.DisplayOrder, playerID)
	}
	markPresentFrom(s, playerID, presenceStart(s))
}

// presenceStart returns the first round a newly added player participates
// in: the earliest round still bidding, else the round after the highest
// scored round. Players are never retroactively present in scored rounds.
func presenceStart(s *AppState) int {
	earliestBidding := 0
	highestScored := 0
	for number, data := range s.Rounds {
		if data == nil {
			continue
		}
		if data.State == round.StateBidding && (earliestBidding == 0 || number < earliestBidding) {
			earliestBidding = number
		}
		if data.State == round.StateScored && number > highestScored {
			highestScored = number
		}
	}
	if earliestBidding > 0 {
		return earliestBidding
	}
	return highestScored + 1
}

func markPresentFrom(s *AppState, playerID string, start int) {
	for number, data := range s.Rounds {
		if data == nil || number < start || data.State == round.StateScored {
			continue
		}
		if data.Present == nil {
			data.Present = map[string]bool{}
		}
		data.Present[playerID] = true
	}
}

func applyPlayerRenamed(s *AppState, payload roster.PlayerRenamedPayload) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return
	}
	if _, exists := s.Players[payload.PlayerID]; !exists {
		return
	}
	s.Players[payload.PlayerID] = name
	for _, entry := range s.Rosters {
		if _, ok := entry.PlayersByID[payload.PlayerID]; ok {
			entry.PlayersByID[payload.PlayerID] = name
		}
	}
}

func applyPlayerRemoved(s *AppState, playerID string) {
	if _, exists := s.Players[playerID]; !exists {
		return
	}
	delete(s.Players, playerID)
	delete(s.PlayerDetails, playerID)
	delete(s.Scores, playerID)
	s.DisplayOrder = removeID(s.DisplayOrder, playerID)
	for _, entry := range s.Rosters {
		delete(entry.PlayersByID, playerID)
		delete(entry.PlayerTypesByID, playerID)
		entry.DisplayOrder = removeID(entry.DisplayOrder, playerID)
	}
	for _, data := range s.Rounds {
		if data == nil || data.State == round.StateScored {
			continue
		}
		delete(data.Present, playerID)
	}
}

func applyPlayersReordered(s *AppState, order []string) {
	filtered := make([]string, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, playerID := range order {
		if _, exists := s.Players[playerID]; exists && !seen[playerID] {
			filtered = append(filtered, playerID)
			seen[playerID] = true
		}
	}
	// Players missing from the requested order keep their previous
	// relative position at the end.
	for _, playerID := range s.DisplayOrder {
		if !seen[playerID] {
			filtered = append(filtered, playerID)
			seen[playerID] = true
		}
	}
	s.DisplayOrder = filtered
	if activeID := s.ActiveRosters[roster.ModeScorecard]; activeID != "" {
		if entry, ok := s.Rosters[activeID]; ok {
			entry.DisplayOrder = append([]string(nil), filtered...)
		}
	}
}

func applyPlayerRetyped(s *AppState, payload roster.PlayerRetypedPayload) {
	playerType, ok := roster.NormalizePlayerType(payload.PlayerType)
	if !ok {
		return
	}
	detail, exists := s.PlayerDetails[payload.PlayerID]
	if !exists {
		return
	}
	detail.Type = playerType
	s.PlayerDetails[payload.PlayerID] = detail
	for _, entry := range s.Rosters {
		if _, ok := entry.PlayerTypesByID[payload.PlayerID]; ok {
			entry.PlayerTypesByID[payload.PlayerID] = playerType
		}
	}
}

func clearActivePointer(s *AppState, rosterID string) {
	for mode, activeID := range s.ActiveRosters {
		if activeID == rosterID {
			delete(s.ActiveRosters, mode)
		}
	}
}

func ensureDetails(details map[string]PlayerDetail) map[string]PlayerDetail {
	if details == nil {
		return map[string]PlayerDetail{}
	}
	return details
}

func removeID(order []string, playerID string) []string {
	filtered := order[:0]
	for _, candidate := range order {
		if candidate != playerID {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

// defaultRosterID derives a deterministic roster id from the triggering
// event so every replica auto-creates the same default roster.
func defaultRosterID(evt event.Event) string {
	hasher := fnv.New64a()
	fmt.Fprintf(hasher, "%s|%d", evt.EventID, evt.Timestamp.UnixMilli())
	return fmt.Sprintf("roster-%016x", hasher.Sum64())
}
