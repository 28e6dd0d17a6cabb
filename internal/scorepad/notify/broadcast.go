package notify

import (
	"context"
	"sync"
)

// BroadcastHub is the primary transport: an in-process fan-out connecting
// every engine instance in the same process. Like a same-origin broadcast
// channel, a sender never hears its own notification.
type BroadcastHub struct {
	mu       sync.Mutex
	nextID   int
	channels map[int]*BroadcastChannel
}

// NewBroadcastHub creates an empty hub.
func NewBroadcastHub() *BroadcastHub {
	return &BroadcastHub{channels: make(map[int]*BroadcastChannel)}
}

// Channel joins the hub and returns this participant's notifier.
func (h *BroadcastHub) Channel() *BroadcastChannel {
	h.mu.Lock()
	defer h.mu.Unlock()
	channel := &BroadcastChannel{hub: h, id: h.nextID}
	h.channels[h.nextID] = channel
	h.nextID++
	return channel
}

func (h *BroadcastHub) broadcast(senderID int, height uint64) {
	h.mu.Lock()
	receivers := make([]*BroadcastChannel, 0, len(h.channels))
	for id, channel := range h.channels {
		if id != senderID {
			receivers = append(receivers, channel)
		}
	}
	h.mu.Unlock()

	for _, receiver := range receivers {
		receiver.deliver(height)
	}
}

func (h *BroadcastHub) leave(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels, id)
}

// BroadcastChannel is one participant's handle on the hub.
type BroadcastChannel struct {
	hub    *BroadcastHub
	id     int
	mu     sync.Mutex
	nextID int
	subs   map[int]func(uint64)
}

// Notify implements ChangeNotifier by fanning the height out to every
// other channel on the hub.
func (c *BroadcastChannel) Notify(ctx context.Context, height uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.hub.broadcast(c.id, height)
	return nil
}

// OnNotify implements ChangeNotifier.
func (c *BroadcastChannel) OnNotify(fn func(height uint64)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subs == nil {
		c.subs = make(map[int]func(uint64))
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close leaves the hub.
func (c *BroadcastChannel) Close() {
	c.hub.leave(c.id)
}

func (c *BroadcastChannel) deliver(height uint64) {
	c.mu.Lock()
	subs := make([]func(uint64), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(height)
	}
}
