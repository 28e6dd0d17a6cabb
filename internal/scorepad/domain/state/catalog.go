package state

import (
	"fmt"
	"strings"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/roster"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/round"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/solo"
)

// DefaultRegistry builds the closed event catalog the append boundary
// validates against. Payload schemas are strict: unknown fields are
// rejected so catalog drift surfaces at the write site, not during replay.
func DefaultRegistry() *event.Registry {
	registry := event.NewRegistry()

	registry.Register(event.TypeRosterCreated, func(payload []byte) error {
		var decoded roster.CreatedPayload
		if err := event.DecodeStrict(payload, &decoded); err != nil {
			return err
		}
		if strings.TrimSpace(decoded.RosterID) == "" {
			return fmt.Errorf("roster_id is required")
		}
		if _, ok := roster.NormalizeMode(decoded.Mode); decoded.Mode != "" && !ok {
			return fmt.Errorf("unknown roster mode %q", decoded.Mode)
		}
		return nil
	})
	registry.Register(event.TypeRosterRenamed, requireRosterID(func(p *roster.RenamedPayload) string { return p.RosterID }))
	registry.Register(event.TypeRosterArchived, requireRosterID(func(p *roster.ArchivedPayload) string { return p.RosterID }))
	registry.Register(event.TypeRosterRestored, requireRosterID(func(p *roster.RestoredPayload) string { return p.RosterID }))
	registry.Register(event.TypeRosterDeleted, requireRosterID(func(p *roster.DeletedPayload) string { return p.RosterID }))
	registry.Register(event.TypeRosterActivated, requireRosterID(func(p *roster.ActivatedPayload) string { return p.RosterID }))

	registry.Register(event.TypePlayerAdded, func(payload []byte) error {
		var decoded roster.PlayerAddedPayload
		if err := event.DecodeStrict(payload, &decoded); err != nil {
			return err
		}
		if strings.TrimSpace(decoded.PlayerID) == "" {
			return fmt.Errorf("player_id is required")
		}
		if strings.TrimSpace(decoded.Name) == "" {
			return fmt.Errorf("name is required")
		}
		return nil
	})
	registry.Register(event.TypePlayerRenamed, event.StrictValidator(func() any { return &roster.PlayerRenamedPayload{} }))
	registry.Register(event.TypePlayerRemoved, event.StrictValidator(func() any { return &roster.PlayerRemovedPayload{} }))
	registry.Register(event.TypePlayersReordered, event.StrictValidator(func() any { return &roster.PlayersReorderedPayload{} }))
	registry.Register(event.TypePlayerRetyped, event.StrictValidator(func() any { return &roster.PlayerRetypedPayload{} }))

	registry.Register(event.TypeBidSet, func(payload []byte) error {
		var decoded round.BidSetPayload
		if err := event.DecodeStrict(payload, &decoded); err != nil {
			return err
		}
		if decoded.Round <= 0 {
			return fmt.Errorf("round must be greater than zero")
		}
		if strings.TrimSpace(decoded.PlayerID) == "" {
			return fmt.Errorf("player_id is required")
		}
		return nil
	})
	registry.Register(event.TypeMadeSet, event.StrictValidator(func() any { return &round.MadeSetPayload{} }))
	registry.Register(event.TypePlayerDropped, event.StrictValidator(func() any { return &round.PlayerDroppedPayload{} }))
	registry.Register(event.TypePlayerResumed, event.StrictValidator(func() any { return &round.PlayerResumedPayload{} }))
	registry.Register(event.TypeRoundFinalized, func(payload []byte) error {
		var decoded round.FinalizedPayload
		if err := event.DecodeStrict(payload, &decoded); err != nil {
			return err
		}
		if decoded.Round <= 0 {
			return fmt.Errorf("round must be greater than zero")
		}
		return nil
	})

	registry.Register(event.TypeSoloDealt, func(payload []byte) error {
		var decoded solo.DealtPayload
		if err := event.DecodeStrict(payload, &decoded); err != nil {
			return err
		}
		if decoded.Round <= 0 {
			return fmt.Errorf("round must be greater than zero")
		}
		if len(decoded.Order) == 0 {
			return fmt.Errorf("order is required")
		}
		if _, ok := solo.NormalizeSuit(decoded.TrumpSuit); !ok {
			return fmt.Errorf("unknown trump suit %q", decoded.TrumpSuit)
		}
		for playerID, hand := range decoded.Hands {
			for _, card := range hand {
				if !card.IsValid() {
					return fmt.Errorf("invalid card %v in hand of %s", card, playerID)
				}
			}
		}
		return nil
	})
	registry.Register(event.TypeSoloCardPlayed, func(payload []byte) error {
		var decoded solo.CardPlayedPayload
		if err := event.DecodeStrict(payload, &decoded); err != nil {
			return err
		}
		if strings.TrimSpace(decoded.PlayerID) == "" {
			return fmt.Errorf("player_id is required")
		}
		if !decoded.Card.IsValid() {
			return fmt.Errorf("invalid card %v", decoded.Card)
		}
		return nil
	})
	registry.Register(event.TypeSoloTrickRevealed, event.StrictValidator(func() any { return &solo.TrickRevealedPayload{} }))
	registry.Register(event.TypeSoloTrickCleared, event.StrictValidator(func() any { return &solo.TrickClearedPayload{} }))
	registry.Register(event.TypeSoloTrumpBrokenSet, event.StrictValidator(func() any { return &solo.TrumpBrokenSetPayload{} }))
	registry.Register(event.TypeSoloLeaderSet, event.StrictValidator(func() any { return &solo.LeaderSetPayload{} }))
	registry.Register(event.TypeSoloSummaryEntered, event.StrictValidator(func() any { return &solo.SummaryEnteredPayload{} }))
	registry.Register(event.TypeSoloSeedSet, event.StrictValidator(func() any { return &solo.SeedSetPayload{} }))
	registry.Register(event.TypeSoloTalliesSet, event.StrictValidator(func() any { return &solo.TalliesSetPayload{} }))

	return registry
}

func requireRosterID[T any](get func(*T) string) event.Validator {
	return func(payload []byte) error {
		var decoded T
		if err := event.DecodeStrict(payload, &decoded); err != nil {
			return err
		}
		if strings.TrimSpace(get(&decoded)) == "" {
			return fmt.Errorf("roster_id is required")
		}
		return nil
	}
}
