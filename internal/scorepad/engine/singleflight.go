package engine

import (
	"context"
	"sync"
)

// taskQueue serializes catch-up work within one engine instance. A task
// enqueued while another runs is chained after it rather than run
// concurrently, so the same event tail can never be applied twice. Once a
// task starts it runs to completion; cancellation is only honored while
// waiting in the queue.
type taskQueue struct {
	mu   sync.Mutex
	tail chan struct{}
}

// Do runs fn after every previously enqueued task has finished.
func (q *taskQueue) Do(ctx context.Context, fn func() error) error {
	q.mu.Lock()
	prev := q.tail
	done := make(chan struct{})
	q.tail = done
	q.mu.Unlock()
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fn()
}
