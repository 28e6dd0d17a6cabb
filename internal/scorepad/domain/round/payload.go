package round

// BidSetPayload captures the payload for round.bid_set events.
type BidSetPayload struct {
	Round    int    `json:"round"`
	PlayerID string `json:"player_id"`
	Bid      int    `json:"bid"`
}

// MadeSetPayload captures the payload for round.made_set events.
type MadeSetPayload struct {
	Round    int    `json:"round"`
	PlayerID string `json:"player_id"`
	// Made is tri-state: true, false, or null to clear the result.
	Made *bool `json:"made"`
}

// PlayerDroppedPayload captures the payload for round.player_dropped events.
type PlayerDroppedPayload struct {
	PlayerID  string `json:"player_id"`
	FromRound int    `json:"from_round"`
	ToRound   int    `json:"to_round"`
}

// PlayerResumedPayload captures the payload for round.player_resumed events.
type PlayerResumedPayload struct {
	PlayerID  string `json:"player_id"`
	FromRound int    `json:"from_round"`
	ToRound   int    `json:"to_round"`
}

// FinalizedPayload captures the payload for round.finalized events.
type FinalizedPayload struct {
	Round int `json:"round"`
}
