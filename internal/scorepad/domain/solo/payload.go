package solo

// DealtPayload captures the payload for solo.dealt events.
type DealtPayload struct {
	Round     int               `json:"round"`
	DealerID  string            `json:"dealer_id"`
	Order     []string          `json:"order"`
	TrumpSuit string            `json:"trump_suit"`
	TrumpCard *Card             `json:"trump_card,omitempty"`
	Hands     map[string][]Card `json:"hands"`
}

// CardPlayedPayload captures the payload for solo.card_played events.
type CardPlayedPayload struct {
	PlayerID string `json:"player_id"`
	Card     Card   `json:"card"`
}

// TrickRevealedPayload captures the payload for solo.trick_revealed events.
type TrickRevealedPayload struct{}

// TrickClearedPayload captures the payload for solo.trick_cleared events.
type TrickClearedPayload struct{}

// TrumpBrokenSetPayload captures the payload for solo.trump_broken_set events.
type TrumpBrokenSetPayload struct {
	Broken bool `json:"broken"`
}

// LeaderSetPayload captures the payload for solo.leader_set events.
type LeaderSetPayload struct {
	PlayerID string `json:"player_id"`
}

// SummaryEnteredPayload captures the payload for solo.summary_entered events.
type SummaryEnteredPayload struct{}

// SeedSetPayload captures the payload for solo.seed_set events.
type SeedSetPayload struct {
	Seed string `json:"seed"`
}

// TalliesSetPayload captures the payload for solo.tallies_set events.
type TalliesSetPayload struct {
	Round   int            `json:"round"`
	Tallies map[string]int `json:"tallies"`
}
