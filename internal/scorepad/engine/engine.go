// Package engine owns the live event log: append, rehydrate, catch-up,
// and subscriber notification. It is the only component that writes the
// events, current-state, and snapshot collections during live play.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
	"github.com/louisbranch/scorepad/internal/scorepad/domain/state"
	"github.com/louisbranch/scorepad/internal/scorepad/notify"
	"github.com/louisbranch/scorepad/internal/scorepad/storage"
)

// DefaultSnapshotEvery is how many committed events separate snapshots.
const DefaultSnapshotEvery = 20

const replayPageSize = 200

// Store is the slice of the durable store the engine depends on.
type Store interface {
	AppendEvent(ctx context.Context, evt event.Event) (uint64, error)
	ListEvents(ctx context.Context, afterHeight uint64, limit int) ([]event.Event, error)
	GetCurrentState(ctx context.Context) (storage.CurrentState, error)
	PutCurrentState(ctx context.Context, current storage.CurrentState) error
	PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error
	LatestSnapshotAt(ctx context.Context, maxHeight uint64) (storage.Snapshot, error)
}

// Option configures an Instance.
type Option func(*Instance)

// WithSnapshotEvery overrides the snapshot cadence.
func WithSnapshotEvery(every int) Option {
	return func(i *Instance) {
		if every > 0 {
			i.snapshotEvery = every
		}
	}
}

// Instance is one tab's handle on the shared event log. It keeps an
// in-memory mirror of the derived state at its last-known height; the
// durable store remains the ordering truth.
type Instance struct {
	store    Store
	registry *event.Registry
	notifier notify.ChangeNotifier

	queue taskQueue

	mu     sync.Mutex
	height uint64
	state  state.AppState
	subs   map[int]func(uint64)
	nextID int

	snapshotEvery int
	// lastSnapshotHeight dedupes snapshot writes per instance; it is
	// owned by the instance, not shared process-wide.
	lastSnapshotHeight uint64

	unsubscribeNotify func()
}

// New creates an engine instance over the store. The notifier may be nil
// for single-instance use.
func New(store Store, registry *event.Registry, notifier notify.ChangeNotifier, opts ...Option) (*Instance, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("event registry is required")
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	instance := &Instance{
		store:         store,
		registry:      registry,
		notifier:      notifier,
		state:         state.Genesis(),
		subs:          make(map[int]func(uint64)),
		snapshotEvery: DefaultSnapshotEvery,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(instance)
		}
	}
	instance.unsubscribeNotify = notifier.OnNotify(instance.onPeerNotify)
	return instance, nil
}

// Close detaches the instance from its notifier.
func (i *Instance) Close() {
	if i == nil {
		return
	}
	if i.unsubscribeNotify != nil {
		i.unsubscribeNotify()
	}
}

// Append validates the event, writes it durably, catches up to the log's
// true end, and notifies subscribers and peers with the new height.
// Re-appending a previously committed event id resolves to the original
// height without double-applying.
func (i *Instance) Append(ctx context.Context, evt event.Event) (uint64, error) {
	if i == nil {
		return 0, fmt.Errorf("engine is not configured")
	}
	validated, err := i.registry.ValidateForAppend(evt)
	if err != nil {
		return 0, err
	}

	height, err := i.store.AppendEvent(ctx, validated)
	if err != nil {
		return 0, err
	}

	// Catch up past our last-known height rather than applying only this
	// event: peers may have committed events between our last catch-up
	// and this append.
	if err := i.queue.Do(ctx, func() error { return i.catchUp(ctx) }); err != nil {
		return 0, err
	}

	i.notifyAll(ctx, i.GetHeight())
	return height, nil
}

// Rehydrate rebuilds the in-memory mirror on cold start: the cached
// current row if structurally valid, else the newest snapshot, else
// genesis — then replays the tail to the log's true end.
func (i *Instance) Rehydrate(ctx context.Context) error {
	if i == nil {
		return fmt.Errorf("engine is not configured")
	}
	err := i.queue.Do(ctx, func() error {
		base, baseHeight := i.loadBase(ctx)
		i.mu.Lock()
		i.state = base
		i.height = baseHeight
		i.mu.Unlock()
		return i.catchUp(ctx)
	})
	if err != nil {
		return err
	}
	i.notifyAll(ctx, i.GetHeight())
	return nil
}

// loadBase picks the replay starting point for a rehydrate.
func (i *Instance) loadBase(ctx context.Context) (state.AppState, uint64) {
	current, err := i.store.GetCurrentState(ctx)
	if err == nil {
		var cached state.AppState
		if jsonErr := json.Unmarshal(current.StateJSON, &cached); jsonErr == nil {
			if validateErr := cached.Validate(); validateErr == nil {
				return cached, current.Height
			}
			log.Printf("rehydrate: cached state at height %d is invalid, falling back", current.Height)
		} else {
			log.Printf("rehydrate: cached state at height %d is unreadable, falling back", current.Height)
		}
		if snapshot, snapErr := i.store.LatestSnapshotAt(ctx, current.Height); snapErr == nil {
			var restored state.AppState
			if jsonErr := json.Unmarshal(snapshot.StateJSON, &restored); jsonErr == nil && restored.Validate() == nil {
				return restored, snapshot.Height
			}
			log.Printf("rehydrate: snapshot at height %d is unreadable, replaying from genesis", snapshot.Height)
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("rehydrate: load cached state: %v", err)
	}
	return state.Genesis(), 0
}

// catchUp replays every event above the last-known height and persists
// the resulting current state. Callers must hold the task queue.
func (i *Instance) catchUp(ctx context.Context) error {
	i.mu.Lock()
	current := i.state
	height := i.height
	i.mu.Unlock()

	for {
		page, err := i.store.ListEvents(ctx, height, replayPageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
		for _, evt := range page {
			current = i.applyForReplay(current, evt)
			height = evt.Height
			if i.snapshotDue(height) {
				if err := i.writeSnapshot(ctx, height, current); err != nil {
					return err
				}
			}
		}
	}

	stateJSON, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := i.store.PutCurrentState(ctx, storage.CurrentState{Height: height, StateJSON: stateJSON}); err != nil {
		return err
	}

	i.mu.Lock()
	i.state = current
	i.height = height
	i.mu.Unlock()
	return nil
}

// applyForReplay folds one stored event, skipping malformed entries with
// a warning so old or partial data cannot abort a whole replay.
func (i *Instance) applyForReplay(current state.AppState, evt event.Event) state.AppState {
	if !evt.Type.IsValid() || evt.EventID == "" {
		log.Printf("replay: skipping malformed event at height %d", evt.Height)
		return current
	}
	if !i.registry.Known(evt.Type) {
		log.Printf("replay: skipping unknown event type %q at height %d", evt.Type, evt.Height)
		return current
	}
	return state.Reduce(current, evt)
}

func (i *Instance) snapshotDue(height uint64) bool {
	return height > 0 && height%uint64(i.snapshotEvery) == 0 && height != i.lastSnapshotHeight
}

func (i *Instance) writeSnapshot(ctx context.Context, height uint64, current state.AppState) error {
	stateJSON, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := i.store.PutSnapshot(ctx, storage.Snapshot{Height: height, StateJSON: stateJSON}); err != nil {
		return err
	}
	i.lastSnapshotHeight = height
	return nil
}

// StateAtHeight reconstructs the derived state at an arbitrary historical
// height without touching the live mirror: nearest snapshot at or below
// the target, plus tail replay. Snapshots are purely an optimization; the
// result is identical to a full replay from genesis.
func (i *Instance) StateAtHeight(ctx context.Context, target uint64) (state.AppState, error) {
	if i == nil {
		return state.AppState{}, fmt.Errorf("engine is not configured")
	}
	current := state.Genesis()
	height := uint64(0)
	if target == 0 {
		return current, nil
	}

	if snapshot, err := i.store.LatestSnapshotAt(ctx, target); err == nil {
		var restored state.AppState
		if json.Unmarshal(snapshot.StateJSON, &restored) == nil && restored.Validate() == nil {
			current = restored
			height = snapshot.Height
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return state.AppState{}, err
	}

	for height < target {
		page, err := i.store.ListEvents(ctx, height, replayPageSize)
		if err != nil {
			return state.AppState{}, err
		}
		if len(page) == 0 {
			break
		}
		for _, evt := range page {
			if evt.Height > target {
				return current, nil
			}
			current = i.applyForReplay(current, evt)
			height = evt.Height
		}
	}
	return current, nil
}

// GetState returns a copy of the current derived state.
func (i *Instance) GetState() state.AppState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state.Clone()
}

// GetHeight returns the engine's last-known height.
func (i *Instance) GetHeight() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.height
}

// Subscribe registers a callback invoked with each new height. The
// returned function unsubscribes.
func (i *Instance) Subscribe(fn func(height uint64)) func() {
	i.mu.Lock()
	defer i.mu.Unlock()
	id := i.nextID
	i.nextID++
	i.subs[id] = fn
	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		delete(i.subs, id)
	}
}

// notifyAll tells local subscribers and cross-tab peers that a new height
// exists. The height is a hint only; peers replay their own tail.
func (i *Instance) notifyAll(ctx context.Context, height uint64) {
	i.mu.Lock()
	subs := make([]func(uint64), 0, len(i.subs))
	for _, fn := range i.subs {
		subs = append(subs, fn)
	}
	i.mu.Unlock()

	for _, fn := range subs {
		fn(height)
	}
	if err := i.notifier.Notify(ctx, height); err != nil {
		log.Printf("notify peers: %v", err)
	}
}

// onPeerNotify reacts to a peer's height hint. A hint below our known
// height means the log was reset or restored underneath us, which calls
// for a full rehydrate instead of a tail catch-up.
func (i *Instance) onPeerNotify(hint uint64) {
	ctx := context.Background()
	if hint < i.GetHeight() {
		if err := i.Rehydrate(ctx); err != nil {
			log.Printf("peer sync rehydrate: %v", err)
		}
		return
	}
	err := i.queue.Do(ctx, func() error { return i.catchUp(ctx) })
	if err != nil {
		log.Printf("peer sync catch-up: %v", err)
		return
	}
	i.mu.Lock()
	subs := make([]func(uint64), 0, len(i.subs))
	for _, fn := range i.subs {
		subs = append(subs, fn)
	}
	height := i.height
	i.mu.Unlock()
	for _, fn := range subs {
		fn(height)
	}
}
