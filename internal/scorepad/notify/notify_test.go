package notify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBroadcastExcludesSender(t *testing.T) {
	hub := NewBroadcastHub()
	sender := hub.Channel()
	receiver := hub.Channel()
	defer sender.Close()
	defer receiver.Close()

	var senderHeard, receiverHeard []uint64
	sender.OnNotify(func(height uint64) { senderHeard = append(senderHeard, height) })
	receiver.OnNotify(func(height uint64) { receiverHeard = append(receiverHeard, height) })

	if err := sender.Notify(context.Background(), 5); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(senderHeard) != 0 {
		t.Fatalf("sender heard its own notification: %v", senderHeard)
	}
	if len(receiverHeard) != 1 || receiverHeard[0] != 5 {
		t.Fatalf("expected receiver to hear height 5, got %v", receiverHeard)
	}
}

func TestBroadcastUnsubscribe(t *testing.T) {
	hub := NewBroadcastHub()
	sender := hub.Channel()
	receiver := hub.Channel()
	defer sender.Close()
	defer receiver.Close()

	var heard []uint64
	unsubscribe := receiver.OnNotify(func(height uint64) { heard = append(heard, height) })
	unsubscribe()

	if err := sender.Notify(context.Background(), 3); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(heard) != 0 {
		t.Fatalf("unsubscribed callback fired: %v", heard)
	}
}

func TestBroadcastClosedChannelIsSilent(t *testing.T) {
	hub := NewBroadcastHub()
	sender := hub.Channel()
	receiver := hub.Channel()

	var heard []uint64
	receiver.OnNotify(func(height uint64) { heard = append(heard, height) })
	receiver.Close()

	if err := sender.Notify(context.Background(), 9); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(heard) != 0 {
		t.Fatalf("closed channel heard a notification: %v", heard)
	}
	sender.Close()
}

func TestFileSignalDeliversAcrossWatchers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorepad.db.signal")

	writer, err := NewFileSignal(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer writer.Close()
	reader, err := NewFileSignal(path)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer reader.Close()

	heard := make(chan uint64, 1)
	reader.OnNotify(func(height uint64) {
		select {
		case heard <- height:
		default:
		}
	})

	if err := writer.Notify(context.Background(), 42); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case height := <-heard:
		if height != 42 {
			t.Fatalf("expected height 42, got %d", height)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the file signal")
	}
}

func TestFileSignalIgnoresOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorepad.db.signal")

	signal, err := NewFileSignal(path)
	if err != nil {
		t.Fatalf("new signal: %v", err)
	}
	defer signal.Close()

	heard := make(chan uint64, 1)
	signal.OnNotify(func(height uint64) { heard <- height })

	if err := signal.Notify(context.Background(), 7); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case height := <-heard:
		t.Fatalf("heard own write at height %d", height)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileSignalIgnoresMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorepad.db.signal")

	signal, err := NewFileSignal(path)
	if err != nil {
		t.Fatalf("new signal: %v", err)
	}
	defer signal.Close()

	heard := make(chan uint64, 1)
	signal.OnNotify(func(height uint64) { heard <- height })

	if err := os.WriteFile(path, []byte("not-a-height"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	select {
	case height := <-heard:
		t.Fatalf("malformed signal delivered height %d", height)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewFileSignalRequiresPath(t *testing.T) {
	if _, err := NewFileSignal("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNoopNotifier(t *testing.T) {
	var notifier ChangeNotifier = Noop{}
	if err := notifier.Notify(context.Background(), 1); err != nil {
		t.Fatalf("noop notify: %v", err)
	}
	unsubscribe := notifier.OnNotify(func(uint64) { t.Fatal("noop must not deliver") })
	unsubscribe()
}
