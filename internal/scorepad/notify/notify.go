// Package notify carries "a new height exists" hints between engine
// instances sharing one durable store. Transports never ship payloads:
// recipients re-derive correctness by replaying their own event tail.
package notify

import "context"

// ChangeNotifier is the abstract cross-tab transport. Notify is
// fire-and-forget; OnNotify registers a callback and returns its
// unsubscribe function.
type ChangeNotifier interface {
	Notify(ctx context.Context, height uint64) error
	OnNotify(fn func(height uint64)) (unsubscribe func())
}

// Noop discards notifications; useful for tests and single-instance runs.
type Noop struct{}

// Notify implements ChangeNotifier.
func (Noop) Notify(ctx context.Context, height uint64) error { return nil }

// OnNotify implements ChangeNotifier.
func (Noop) OnNotify(fn func(height uint64)) func() { return func() {} }
