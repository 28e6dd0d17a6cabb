package roster

// CreatedPayload captures the payload for roster.created events.
type CreatedPayload struct {
	RosterID string `json:"roster_id"`
	Name     string `json:"name"`
	Mode     string `json:"mode"`
	// PlayersByID optionally seeds the roster with players, used when an
	// archived game reseeds the live log with the ending roster.
	PlayersByID     map[string]string `json:"players_by_id,omitempty"`
	PlayerTypesByID map[string]string `json:"player_types_by_id,omitempty"`
	DisplayOrder    []string          `json:"display_order,omitempty"`
}

// RenamedPayload captures the payload for roster.renamed events.
type RenamedPayload struct {
	RosterID string `json:"roster_id"`
	Name     string `json:"name"`
}

// ArchivedPayload captures the payload for roster.archived events.
type ArchivedPayload struct {
	RosterID string `json:"roster_id"`
}

// RestoredPayload captures the payload for roster.restored events.
type RestoredPayload struct {
	RosterID string `json:"roster_id"`
}

// DeletedPayload captures the payload for roster.deleted events.
type DeletedPayload struct {
	RosterID string `json:"roster_id"`
}

// ActivatedPayload captures the payload for roster.activated events.
type ActivatedPayload struct {
	RosterID string `json:"roster_id"`
}

// PlayerAddedPayload captures the payload for player.added events.
type PlayerAddedPayload struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	PlayerType string `json:"player_type,omitempty"`
}

// PlayerRenamedPayload captures the payload for player.renamed events.
type PlayerRenamedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// PlayerRemovedPayload captures the payload for player.removed events.
type PlayerRemovedPayload struct {
	PlayerID string `json:"player_id"`
}

// PlayersReorderedPayload captures the payload for player.reordered events.
type PlayersReorderedPayload struct {
	DisplayOrder []string `json:"display_order"`
}

// PlayerRetypedPayload captures the payload for player.retyped events.
type PlayerRetypedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerType string `json:"player_type"`
}
