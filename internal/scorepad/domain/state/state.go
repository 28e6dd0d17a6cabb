// Package state defines the derived application state and the pure reducer
// that folds events into it.
package state

import (
	"fmt"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/roster"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/round"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/solo"
)

// PlayableRounds is how many rounds a scorecard game runs; round 1 plays
// ten tricks, round 10 plays one.
const PlayableRounds = 10

// PlayerDetail carries per-player metadata beyond the display name.
type PlayerDetail struct {
	Type       roster.PlayerType `json:"type"`
	Archived   bool              `json:"archived,omitempty"`
	CreatedAt  int64             `json:"createdAt,omitempty"`
	ArchivedAt int64             `json:"archivedAt,omitempty"`
}

// AppState is the full derived game state. It is always reproducible as
// Reduce folded over a prefix of the event log; it carries no hidden
// randomness, so two engines that applied the same prefix are identical.
type AppState struct {
	Players       map[string]string         `json:"players"`
	PlayerDetails map[string]PlayerDetail   `json:"playerDetails,omitempty"`
	Scores        map[string]int            `json:"scores"`
	Rounds        map[int]*round.Data       `json:"rounds,omitempty"`
	Rosters       map[string]*roster.Roster `json:"rosters,omitempty"`
	// ActiveRosters points at the active roster per mode.
	ActiveRosters map[roster.Mode]string `json:"activeRosters,omitempty"`
	DisplayOrder  []string               `json:"displayOrder,omitempty"`
	Solo          *solo.State            `json:"sp,omitempty"`
}

// Genesis returns the empty state every log starts from.
func Genesis() AppState {
	return AppState{
		Players: map[string]string{},
		Scores:  map[string]int{},
	}
}

// Clone deep-copies the state so reducers never alias a caller's maps.
func (s AppState) Clone() AppState {
	cloned := s
	cloned.Players = make(map[string]string, len(s.Players))
	for playerID, name := range s.Players {
		cloned.Players[playerID] = name
	}
	cloned.Scores = make(map[string]int, len(s.Scores))
	for playerID, score := range s.Scores {
		cloned.Scores[playerID] = score
	}
	if s.PlayerDetails != nil {
		cloned.PlayerDetails = make(map[string]PlayerDetail, len(s.PlayerDetails))
		for playerID, detail := range s.PlayerDetails {
			cloned.PlayerDetails[playerID] = detail
		}
	}
	if s.Rounds != nil {
		cloned.Rounds = make(map[int]*round.Data, len(s.Rounds))
		for number, data := range s.Rounds {
			cloned.Rounds[number] = cloneRound(data)
		}
	}
	if s.Rosters != nil {
		cloned.Rosters = make(map[string]*roster.Roster, len(s.Rosters))
		for rosterID, entry := range s.Rosters {
			cloned.Rosters[rosterID] = cloneRoster(entry)
		}
	}
	if s.ActiveRosters != nil {
		cloned.ActiveRosters = make(map[roster.Mode]string, len(s.ActiveRosters))
		for mode, rosterID := range s.ActiveRosters {
			cloned.ActiveRosters[mode] = rosterID
		}
	}
	cloned.DisplayOrder = append([]string(nil), s.DisplayOrder...)
	cloned.Solo = s.Solo.Clone()
	return cloned
}

func cloneRound(data *round.Data) *round.Data {
	if data == nil {
		return nil
	}
	cloned := round.Data{State: data.State}
	if data.Bids != nil {
		cloned.Bids = make(map[string]int, len(data.Bids))
		for playerID, bid := range data.Bids {
			cloned.Bids[playerID] = bid
		}
	}
	if data.Made != nil {
		cloned.Made = make(map[string]*bool, len(data.Made))
		for playerID, made := range data.Made {
			if made == nil {
				cloned.Made[playerID] = nil
				continue
			}
			value := *made
			cloned.Made[playerID] = &value
		}
	}
	if data.Present != nil {
		cloned.Present = make(map[string]bool, len(data.Present))
		for playerID, present := range data.Present {
			cloned.Present[playerID] = present
		}
	}
	return &cloned
}

func cloneRoster(entry *roster.Roster) *roster.Roster {
	if entry == nil {
		return nil
	}
	cloned := *entry
	if entry.PlayersByID != nil {
		cloned.PlayersByID = make(map[string]string, len(entry.PlayersByID))
		for playerID, name := range entry.PlayersByID {
			cloned.PlayersByID[playerID] = name
		}
	}
	if entry.PlayerTypesByID != nil {
		cloned.PlayerTypesByID = make(map[string]roster.PlayerType, len(entry.PlayerTypesByID))
		for playerID, playerType := range entry.PlayerTypesByID {
			cloned.PlayerTypesByID[playerID] = playerType
		}
	}
	cloned.DisplayOrder = append([]string(nil), entry.DisplayOrder...)
	return &cloned
}

// Validate performs the structural checks used when trusting a cached
// current-state row during rehydrate.
func (s *AppState) Validate() error {
	if s == nil {
		return fmt.Errorf("state is required")
	}
	if s.Players == nil {
		return fmt.Errorf("players map is required")
	}
	if s.Scores == nil {
		return fmt.Errorf("scores map is required")
	}
	for playerID := range s.Scores {
		if _, ok := s.Players[playerID]; !ok {
			return fmt.Errorf("score for unknown player %q", playerID)
		}
	}
	for number, data := range s.Rounds {
		if data == nil {
			return fmt.Errorf("round %d is nil", number)
		}
		switch data.State {
		case round.StateLocked, round.StateBidding, round.StateComplete, round.StateScored:
		default:
			return fmt.Errorf("round %d has unknown state %q", number, data.State)
		}
	}
	return nil
}
