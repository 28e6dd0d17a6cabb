// Package archive moves finished games between the live event log and the
// games collection: archive-and-reset, restore, list, and delete.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/scorepad/internal/platform/id"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/roster"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/solo"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/state"
	"github.com/louisbranch/scorepad/internal/scorepad/notify"
	"github.com/louisbranch/scorepad/internal/scorepad/storage"
)

var (
	// ErrResetFailed indicates the archive record was written but the live
	// log could not be reset; the record was rolled back and the log is
	// unchanged.
	ErrResetFailed = errors.New("log reset failed")
	// ErrRollbackFailed indicates the archive record was written, the log
	// reset failed, and the record could not be removed either. The stray
	// record needs manual deletion.
	ErrRollbackFailed = errors.New("archive rollback failed")
)

// Store is the slice of the durable store the manager depends on.
type Store interface {
	ExportBundle(ctx context.Context) (storage.Bundle, error)
	ReplaceEvents(ctx context.Context, bundle storage.Bundle) error
	ResetLog(ctx context.Context, seeds []event.Event) ([]event.Event, error)
	PutCurrentState(ctx context.Context, current storage.CurrentState) error
	PutGame(ctx context.Context, record storage.GameRecord) error
	GetGame(ctx context.Context, gameID string) (storage.GameRecord, error)
	ListGames(ctx context.Context) ([]storage.GameRecord, error)
	DeleteGame(ctx context.Context, gameID string) error
}

// Manager coordinates archive and restore against one store.
type Manager struct {
	store    Store
	notifier notify.ChangeNotifier
	now      func() time.Time
	newID    func() (string, error)
}

// NewManager creates a manager. The notifier may be nil when no peers
// need to hear about log replacements.
func NewManager(store Store, notifier notify.ChangeNotifier) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Manager{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		newID:    id.NewID,
	}, nil
}

// ArchiveCurrentGameAndReset snapshots the live log into a new game
// record, then resets the log to a seed that carries the rosters forward.
// The record is written before the log is touched, so a crash between the
// two steps loses no data: the worst case is a duplicate archive, never a
// lost game. Returns the stored record, or a zero record when the log was
// empty and only a reset happened.
func (m *Manager) ArchiveCurrentGameAndReset(ctx context.Context, title string) (storage.GameRecord, error) {
	if m == nil {
		return storage.GameRecord{}, fmt.Errorf("archive manager is not configured")
	}

	bundle, err := m.store.ExportBundle(ctx)
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("export log: %w", err)
	}

	// An empty log has nothing worth archiving; just reset the caches.
	if len(bundle.Events) == 0 {
		if err := m.reseed(ctx, state.Genesis()); err != nil {
			return storage.GameRecord{}, err
		}
		return storage.GameRecord{}, nil
	}

	final := state.ReduceAll(state.Genesis(), bundle.Events)
	now := m.now().UTC()

	gameID, err := m.newID()
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("game id: %w", err)
	}
	summary, err := summarize(final)
	if err != nil {
		return storage.GameRecord{}, err
	}
	record := storage.GameRecord{
		ID:         gameID,
		Title:      gameTitle(title, now),
		CreatedAt:  now,
		FinishedAt: now,
		LastSeq:    bundle.LatestSeq,
		Summary:    summary,
		Bundle:     bundle,
	}
	if err := m.store.PutGame(ctx, record); err != nil {
		return storage.GameRecord{}, fmt.Errorf("write archive record: %w", err)
	}

	// Rolling the record back is only safe while the live log still holds
	// the game; reseed returns an error solely for failures before or
	// during the reset itself.
	if err := m.reseed(ctx, final); err != nil {
		if deleteErr := m.store.DeleteGame(ctx, gameID); deleteErr != nil {
			return storage.GameRecord{}, errors.Join(ErrRollbackFailed, err, deleteErr)
		}
		return storage.GameRecord{}, errors.Join(ErrResetFailed, err)
	}
	return record, nil
}

// reseed resets the live log to the carry-over seed events derived from
// the ending state, recomputes the current-state cache, and notifies
// peers. The announced height is below any live height, which peers read
// as "the log changed underneath you, rehydrate". An error means the log
// was NOT replaced; once ResetLog commits, the remaining steps rebuild
// caches that any rehydrate recomputes from the seeds, so their failures
// are logged rather than returned.
func (m *Manager) reseed(ctx context.Context, final state.AppState) error {
	seeds, err := m.seedEvents(final)
	if err != nil {
		return err
	}
	stored, err := m.store.ResetLog(ctx, seeds)
	if err != nil {
		return fmt.Errorf("reset log: %w", err)
	}

	// ResetLog cleared the old cache row along with the log, so a failed
	// rewrite here leaves rehydrates replaying the seeds from genesis.
	fresh := state.ReduceAll(state.Genesis(), stored)
	height := uint64(0)
	if len(stored) > 0 {
		height = stored[len(stored)-1].Height
	}
	if stateJSON, err := json.Marshal(fresh); err != nil {
		log.Printf("marshal state after reset: %v", err)
	} else if err := m.store.PutCurrentState(ctx, storage.CurrentState{Height: height, StateJSON: stateJSON}); err != nil {
		log.Printf("cache state after reset: %v", err)
	}

	if err := m.notifier.Notify(ctx, height); err != nil {
		log.Printf("notify peers after reset: %v", err)
	}
	return nil
}

// seedEvents builds the fresh log's opening events: one roster.created per
// surviving roster carrying its players, reactivation of the rosters that
// were active, and a fresh single-player seed.
func (m *Manager) seedEvents(final state.AppState) ([]event.Event, error) {
	now := m.now().UTC()
	var seeds []event.Event

	appendSeed := func(t event.Type, payload any) error {
		eventID, err := m.newID()
		if err != nil {
			return fmt.Errorf("seed event id: %w", err)
		}
		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("seed payload: %w", err)
		}
		seeds = append(seeds, event.Event{
			EventID:     eventID,
			Type:        t,
			Timestamp:   now,
			PayloadJSON: payloadJSON,
		})
		return nil
	}

	rosterIDs := make([]string, 0, len(final.Rosters))
	for rosterID := range final.Rosters {
		rosterIDs = append(rosterIDs, rosterID)
	}
	sort.Strings(rosterIDs)
	for _, rosterID := range rosterIDs {
		entry := final.Rosters[rosterID]
		if entry == nil || entry.ArchivedAt != 0 {
			continue
		}
		types := make(map[string]string, len(entry.PlayerTypesByID))
		for playerID, playerType := range entry.PlayerTypesByID {
			types[playerID] = string(playerType)
		}
		err := appendSeed(event.TypeRosterCreated, roster.CreatedPayload{
			RosterID:        rosterID,
			Name:            entry.Name,
			Mode:            string(entry.Mode),
			PlayersByID:     entry.PlayersByID,
			PlayerTypesByID: types,
			DisplayOrder:    entry.DisplayOrder,
		})
		if err != nil {
			return nil, err
		}
	}

	modes := make([]roster.Mode, 0, len(final.ActiveRosters))
	for mode := range final.ActiveRosters {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(a, b int) bool { return modes[a] < modes[b] })
	for _, mode := range modes {
		rosterID := final.ActiveRosters[mode]
		entry := final.Rosters[rosterID]
		if entry == nil || entry.ArchivedAt != 0 {
			continue
		}
		if err := appendSeed(event.TypeRosterActivated, roster.ActivatedPayload{RosterID: rosterID}); err != nil {
			return nil, err
		}
	}

	seed, err := m.newID()
	if err != nil {
		return nil, fmt.Errorf("session seed: %w", err)
	}
	if err := appendSeed(event.TypeSoloSeedSet, solo.SeedSetPayload{Seed: seed}); err != nil {
		return nil, err
	}
	return seeds, nil
}

// RestoreGame swaps the live log for an archived game's bundle, preserving
// the bundle's original heights, and notifies peers to rehydrate. The
// archived record itself stays in place.
func (m *Manager) RestoreGame(ctx context.Context, gameID string) error {
	if m == nil {
		return fmt.Errorf("archive manager is not configured")
	}
	record, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := m.store.ReplaceEvents(ctx, record.Bundle); err != nil {
		return fmt.Errorf("replace log: %w", err)
	}

	restored := state.ReduceAll(state.Genesis(), record.Bundle.Events)
	stateJSON, err := json.Marshal(restored)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := m.store.PutCurrentState(ctx, storage.CurrentState{Height: record.Bundle.LatestSeq, StateJSON: stateJSON}); err != nil {
		return fmt.Errorf("cache state: %w", err)
	}

	if err := m.notifier.Notify(ctx, record.Bundle.LatestSeq); err != nil {
		log.Printf("notify peers after restore: %v", err)
	}
	return nil
}

// ListGames returns archived games newest first.
func (m *Manager) ListGames(ctx context.Context) ([]storage.GameRecord, error) {
	if m == nil {
		return nil, fmt.Errorf("archive manager is not configured")
	}
	return m.store.ListGames(ctx)
}

// GetGame returns one archived game.
func (m *Manager) GetGame(ctx context.Context, gameID string) (storage.GameRecord, error) {
	if m == nil {
		return storage.GameRecord{}, fmt.Errorf("archive manager is not configured")
	}
	return m.store.GetGame(ctx, gameID)
}

// DeleteGame permanently removes an archived game.
func (m *Manager) DeleteGame(ctx context.Context, gameID string) error {
	if m == nil {
		return fmt.Errorf("archive manager is not configured")
	}
	return m.store.DeleteGame(ctx, gameID)
}

// summarize rolls the ending state up into the archive list's record.
func summarize(final state.AppState) (storage.GameSummary, error) {
	summary := storage.GameSummary{
		Players: final.Players,
		Scores:  final.Scores,
	}
	bestScore := 0
	for playerID, score := range final.Scores {
		if summary.WinnerID == "" || score > bestScore ||
			(score == bestScore && playerID < summary.WinnerID) {
			summary.WinnerID = playerID
			bestScore = score
		}
	}
	if final.Solo != nil {
		soloJSON, err := json.Marshal(final.Solo)
		if err != nil {
			return storage.GameSummary{}, fmt.Errorf("marshal solo state: %w", err)
		}
		summary.SoloJSON = soloJSON
	}
	return summary, nil
}

func gameTitle(title string, finishedAt time.Time) string {
	title = strings.TrimSpace(title)
	if title != "" {
		return title
	}
	return "Game " + finishedAt.Format("2006-01-02 15:04")
}
