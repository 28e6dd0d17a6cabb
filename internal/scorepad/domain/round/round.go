// Package round holds round scoring types shared by the reducer and the
// event catalog.
package round

// State tracks the lifecycle of one round. Transitions are strictly
// forward: locked -> bidding -> complete -> scored.
type State string

const (
	// StateLocked means the round is not yet open for bids.
	StateLocked State = "locked"
	// StateBidding means bids may be entered.
	StateBidding State = "bidding"
	// StateComplete means every present player has a made/missed result.
	StateComplete State = "complete"
	// StateScored means the round has been finalized into cumulative scores.
	StateScored State = "scored"
)

// Data captures one round's bids, results, and presence.
type Data struct {
	State State `json:"state"`
	// Bids maps player id to declared trick target.
	Bids map[string]int `json:"bids"`
	// Made maps player id to whether the bid was hit exactly; nil means
	// not yet recorded.
	Made map[string]*bool `json:"made"`
	// Present marks which players participate in this round.
	Present map[string]bool `json:"present,omitempty"`
}

// Delta returns the score contribution for one player's round outcome:
// unrecorded is 0, an exact bid scores 5+bid, a miss costs 5+bid.
func Delta(bid int, made *bool) int {
	if made == nil {
		return 0
	}
	if *made {
		return 5 + bid
	}
	return -(5 + bid)
}
