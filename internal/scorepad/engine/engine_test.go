package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/roster"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/state"
	"github.com/louisbranch/scorepad/internal/scorepad/notify"
	"github.com/louisbranch/scorepad/internal/scorepad/storage"
	"github.com/louisbranch/scorepad/internal/scorepad/storage/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "scorepad.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestEngine(t *testing.T, store Store, notifier notify.ChangeNotifier, opts ...Option) *Instance {
	t.Helper()
	instance, err := New(store, state.DefaultRegistry(), notifier, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(instance.Close)
	return instance
}

func playerAdded(seq int) event.Event {
	payload, _ := json.Marshal(roster.PlayerAddedPayload{
		PlayerID: fmt.Sprintf("p%02d", seq),
		Name:     fmt.Sprintf("Player %02d", seq),
	})
	return event.Event{
		EventID:     fmt.Sprintf("evt-%03d", seq),
		Type:        event.TypePlayerAdded,
		PayloadJSON: payload,
	}
}

func TestAppendAppliesAndPersists(t *testing.T) {
	store := openTestStore(t)
	instance := newTestEngine(t, store, nil)
	ctx := context.Background()

	height, err := instance.Append(ctx, playerAdded(1))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if height != 1 {
		t.Fatalf("expected height 1, got %d", height)
	}
	if instance.GetHeight() != 1 {
		t.Fatalf("expected engine height 1, got %d", instance.GetHeight())
	}
	if instance.GetState().Players["p01"] == "" {
		t.Fatal("expected appended player in derived state")
	}

	current, err := store.GetCurrentState(ctx)
	if err != nil {
		t.Fatalf("current state: %v", err)
	}
	if current.Height != 1 {
		t.Fatalf("expected persisted height 1, got %d", current.Height)
	}
}

func TestAppendRejectsInvalidEvents(t *testing.T) {
	instance := newTestEngine(t, openTestStore(t), nil)
	ctx := context.Background()

	if _, err := instance.Append(ctx, event.Event{Type: event.TypePlayerAdded}); !errors.Is(err, event.ErrEventIDRequired) {
		t.Fatalf("expected ErrEventIDRequired, got %v", err)
	}
	if _, err := instance.Append(ctx, event.Event{EventID: "e1", Type: "mystery.event"}); !errors.Is(err, event.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := instance.Append(ctx, event.Event{
		EventID:     "e1",
		Type:        event.TypePlayerAdded,
		PayloadJSON: []byte(`{"player_id":"p1","name":"Ada","extra":1}`),
	}); !errors.Is(err, event.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestAppendDuplicateEventIDIsIdempotent(t *testing.T) {
	instance := newTestEngine(t, openTestStore(t), nil)
	ctx := context.Background()

	first, err := instance.Append(ctx, playerAdded(1))
	if err != nil {
		t.Fatalf("first append: %v", err)
	}
	second, err := instance.Append(ctx, playerAdded(1))
	if err != nil {
		t.Fatalf("duplicate append: %v", err)
	}
	if first != second {
		t.Fatalf("duplicate resolved to height %d, want %d", second, first)
	}
	if instance.GetHeight() != first {
		t.Fatalf("duplicate advanced the log to %d", instance.GetHeight())
	}
	if len(instance.GetState().Players) != 1 {
		t.Fatalf("duplicate was applied twice: %+v", instance.GetState().Players)
	}
}

func TestSnapshotsAndStateAtHeight(t *testing.T) {
	store := openTestStore(t)
	instance := newTestEngine(t, store, nil, WithSnapshotEvery(5))
	ctx := context.Background()

	events := make([]event.Event, 0, 12)
	for seq := 1; seq <= 12; seq++ {
		evt := playerAdded(seq)
		events = append(events, evt)
		if _, err := instance.Append(ctx, evt); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}

	snap, err := store.LatestSnapshotAt(ctx, 0)
	if err != nil {
		t.Fatalf("expected snapshots written, got %v", err)
	}
	if snap.Height != 10 {
		t.Fatalf("expected newest snapshot at 10, got %d", snap.Height)
	}

	// Historical reads match a from-genesis replay of the same prefix.
	at7, err := instance.StateAtHeight(ctx, 7)
	if err != nil {
		t.Fatalf("state at 7: %v", err)
	}
	replayed := state.ReduceAll(state.Genesis(), storedPrefix(t, store, 7))
	at7JSON, _ := json.Marshal(at7)
	replayedJSON, _ := json.Marshal(replayed)
	if string(at7JSON) != string(replayedJSON) {
		t.Fatalf("snapshot-based read diverged from replay:\n%s\n%s", at7JSON, replayedJSON)
	}
	if len(at7.Players) != 7 {
		t.Fatalf("expected 7 players at height 7, got %d", len(at7.Players))
	}

	// The live mirror is untouched by historical reads.
	if instance.GetHeight() != 12 {
		t.Fatalf("historical read moved the live height to %d", instance.GetHeight())
	}
}

func storedPrefix(t *testing.T, store Store, upTo uint64) []event.Event {
	t.Helper()
	events, err := store.ListEvents(context.Background(), 0, int(upTo))
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	return events
}

func TestRehydrateColdStart(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	writer := newTestEngine(t, store, nil)
	for seq := 1; seq <= 4; seq++ {
		if _, err := writer.Append(ctx, playerAdded(seq)); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}

	reader := newTestEngine(t, store, nil)
	if err := reader.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if reader.GetHeight() != 4 {
		t.Fatalf("expected rehydrated height 4, got %d", reader.GetHeight())
	}
	if len(reader.GetState().Players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(reader.GetState().Players))
	}
}

func TestRehydrateFallsBackOnCorruptCache(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	writer := newTestEngine(t, store, nil)
	for seq := 1; seq <= 3; seq++ {
		if _, err := writer.Append(ctx, playerAdded(seq)); err != nil {
			t.Fatalf("append %d: %v", seq, err)
		}
	}

	// Structurally invalid cache: missing required maps.
	err := store.PutCurrentState(ctx, storage.CurrentState{Height: 3, StateJSON: []byte(`{"displayOrder":["x"]}`)})
	if err != nil {
		t.Fatalf("corrupt cache: %v", err)
	}

	reader := newTestEngine(t, store, nil)
	if err := reader.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if reader.GetHeight() != 3 {
		t.Fatalf("expected height 3 after fallback, got %d", reader.GetHeight())
	}
	if len(reader.GetState().Players) != 3 {
		t.Fatalf("expected full replay past corrupt cache, got %+v", reader.GetState().Players)
	}
}

func TestReplaySkipsMalformedEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// A foreign event type can land in the log from a newer or older build;
	// replay must warn and move on rather than fail.
	if _, err := store.AppendEvent(ctx, playerAdded(1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.AppendEvent(ctx, event.Event{EventID: "odd", Type: "mystery.event"}); err != nil {
		t.Fatalf("append foreign event: %v", err)
	}
	if _, err := store.AppendEvent(ctx, playerAdded(3)); err != nil {
		t.Fatalf("append: %v", err)
	}

	instance := newTestEngine(t, store, nil)
	if err := instance.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if instance.GetHeight() != 3 {
		t.Fatalf("expected height 3, got %d", instance.GetHeight())
	}
	if len(instance.GetState().Players) != 2 {
		t.Fatalf("expected the two well-formed events applied, got %+v", instance.GetState().Players)
	}
}

func TestPeersCatchUpThroughBroadcastHub(t *testing.T) {
	store := openTestStore(t)
	hub := notify.NewBroadcastHub()
	ctx := context.Background()

	channelA := hub.Channel()
	channelB := hub.Channel()
	t.Cleanup(channelA.Close)
	t.Cleanup(channelB.Close)

	instanceA := newTestEngine(t, store, channelA)
	instanceB := newTestEngine(t, store, channelB)
	if err := instanceB.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate B: %v", err)
	}

	if _, err := instanceA.Append(ctx, playerAdded(1)); err != nil {
		t.Fatalf("append: %v", err)
	}

	if instanceB.GetHeight() != 1 {
		t.Fatalf("expected peer to catch up to height 1, got %d", instanceB.GetHeight())
	}
	if instanceB.GetState().Players["p01"] == "" {
		t.Fatal("expected peer state to include the new player")
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	instance := newTestEngine(t, openTestStore(t), nil)
	ctx := context.Background()

	var heights []uint64
	unsubscribe := instance.Subscribe(func(height uint64) {
		heights = append(heights, height)
	})

	if _, err := instance.Append(ctx, playerAdded(1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(heights) != 1 || heights[0] != 1 {
		t.Fatalf("expected one notification at height 1, got %v", heights)
	}

	unsubscribe()
	if _, err := instance.Append(ctx, playerAdded(2)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(heights) != 1 {
		t.Fatalf("unsubscribed callback still fired: %v", heights)
	}
}

func TestStateAtHeightZeroIsGenesis(t *testing.T) {
	instance := newTestEngine(t, openTestStore(t), nil)
	at0, err := instance.StateAtHeight(context.Background(), 0)
	if err != nil {
		t.Fatalf("state at 0: %v", err)
	}
	if len(at0.Players) != 0 || len(at0.Rounds) != 0 {
		t.Fatalf("expected genesis at height 0, got %+v", at0)
	}
}
