package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestTaskQueueRunsTasksInOrder(t *testing.T) {
	var queue taskQueue
	var mu sync.Mutex
	var order []int

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = queue.Do(context.Background(), func() error {
			close(started)
			<-release
			mu.Lock()
			order = append(order, 1)
			mu.Unlock()
			return nil
		})
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = queue.Do(context.Background(), func() error {
			mu.Lock()
			order = append(order, 2)
			mu.Unlock()
			return nil
		})
	}()

	close(release)
	wg.Wait()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected tasks in order [1 2], got %v", order)
	}
}

func TestTaskQueueHonorsContextWhileQueued(t *testing.T) {
	var queue taskQueue

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = queue.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := queue.Do(ctx, func() error {
		t.Error("cancelled task must not run")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(release)

	// The chain stays usable after a cancelled waiter.
	done := make(chan struct{})
	go func() {
		_ = queue.Do(context.Background(), func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue deadlocked after cancelled waiter")
	}
}

func TestTaskQueuePropagatesErrors(t *testing.T) {
	var queue taskQueue
	wantErr := errors.New("boom")
	if err := queue.Do(context.Background(), func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected task error, got %v", err)
	}
}
