package state

import (
	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
)

// Reduce folds one event into the prior state and returns the next state.
//
// Reduce is pure and total: the input state is never mutated, unknown event
// types are no-ops, and illegal game moves reduce to the unchanged state
// rather than an error. Three sub-reducers are tried in order; the first
// one that handles the event wins.
func Reduce(prior AppState, evt event.Event) AppState {
	next := prior.Clone()
	if applyRoster(&next, evt) {
		return next
	}
	if applyRound(&next, evt) {
		return next
	}
	if applySolo(&next, evt) {
		return next
	}
	return prior
}

// ReduceAll folds a sequence of events from the given state.
func ReduceAll(prior AppState, events []event.Event) AppState {
	current := prior
	for _, evt := range events {
		current = Reduce(current, evt)
	}
	return current
}
