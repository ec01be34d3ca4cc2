package spectate

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/scriptarena/internal/world"
)

// ViewerID identifies a connected spectator.
type ViewerID string

// Subscriber receives world frames published by the host loop.
type Subscriber struct {
	id       ViewerID
	frames   chan world.Frame
	done     chan struct{}
	doneOnce sync.Once
}

// newSubscriber creates a subscriber. bufferSize controls how many frames
// can be queued before the oldest is dropped.
func newSubscriber(id ViewerID, bufferSize int) *Subscriber {
	if bufferSize < 1 {
		bufferSize = 4
	}
	return &Subscriber{
		id:     id,
		frames: make(chan world.Frame, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the viewer identifier.
func (s *Subscriber) ID() ViewerID {
	return s.id
}

// send delivers a frame without blocking. A slow viewer loses its oldest
// queued frame, never the newest.
func (s *Subscriber) send(f world.Frame) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.frames <- f:
	default:
		select {
		case <-s.frames:
		default:
		}
		select {
		case s.frames <- f:
		default:
		}
	}
}

// Frames returns the channel frames arrive on.
func (s *Subscriber) Frames() <-chan world.Frame {
	return s.frames
}

// Done returns a channel closed when the subscriber is closed.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Close marks the subscriber as done.
// Safe to call multiple times.
func (s *Subscriber) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *Subscriber) String() string {
	return fmt.Sprintf("viewer %s", s.id)
}
