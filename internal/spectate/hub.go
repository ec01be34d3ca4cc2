// Package spectate fans the host's world frames out to remote viewers.
// The host loop publishes; SSH sessions and WebSocket observers subscribe.
// Viewers only ever see copies of frames.
package spectate

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vovakirdan/scriptarena/internal/world"
)

// Hub tracks subscribers and the most recent frame.
// Thread-safe for concurrent access.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[ViewerID]*Subscriber
	last        world.Frame
	hasLast     bool
	nextID      atomic.Uint64
	bufferSize  int
}

// NewHub creates a hub whose subscribers buffer up to bufferSize frames.
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subscribers: make(map[ViewerID]*Subscriber),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new viewer. The latest frame, if any, is queued
// immediately so a new viewer does not start on a blank screen.
func (h *Hub) Subscribe(prefix string) *Subscriber {
	id := ViewerID(fmt.Sprintf("%s%d", prefix, h.nextID.Add(1)))
	sub := newSubscriber(id, h.bufferSize)

	h.mu.Lock()
	h.subscribers[id] = sub
	last, hasLast := h.last, h.hasLast
	h.mu.Unlock()

	if hasLast {
		sub.send(last)
	}
	return sub
}

// Unsubscribe removes a viewer and closes it.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub.ID())
	h.mu.Unlock()
	sub.Close()
}

// Publish delivers f to every subscriber without blocking the caller.
func (h *Hub) Publish(f world.Frame) {
	h.mu.Lock()
	h.last, h.hasLast = f, true
	subs := make([]*Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.send(f)
	}
}

// Latest returns the most recently published frame.
func (h *Hub) Latest() (world.Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.hasLast
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[ViewerID]*Subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}
