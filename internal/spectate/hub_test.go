package spectate

import (
	"testing"

	"github.com/vovakirdan/scriptarena/internal/world"
)

func TestHubPublishReachesSubscribers(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe("S")
	b := h.Subscribe("S")
	if a.ID() == b.ID() {
		t.Fatalf("Subscribe() returned duplicate id %s", a.ID())
	}

	h.Publish(world.Frame{Tick: 7})

	for _, s := range []*Subscriber{a, b} {
		select {
		case f := <-s.Frames():
			if f.Tick != 7 {
				t.Errorf("%s got tick %d, expected 7", s, f.Tick)
			}
		default:
			t.Errorf("%s received nothing", s)
		}
	}
}

func TestHubNewSubscriberGetsLatest(t *testing.T) {
	h := NewHub(4)
	h.Publish(world.Frame{Tick: 1})
	h.Publish(world.Frame{Tick: 2})

	s := h.Subscribe("W")
	select {
	case f := <-s.Frames():
		if f.Tick != 2 {
			t.Errorf("first frame tick = %d, expected 2", f.Tick)
		}
	default:
		t.Error("new subscriber received no frame")
	}
}

func TestSubscriberDropsOldest(t *testing.T) {
	h := NewHub(2)
	s := h.Subscribe("S")
	for tick := uint64(1); tick <= 5; tick++ {
		h.Publish(world.Frame{Tick: tick})
	}

	var got []uint64
	for len(s.Frames()) > 0 {
		got = append(got, (<-s.Frames()).Tick)
	}
	if len(got) != 2 || got[len(got)-1] != 5 {
		t.Errorf("queued ticks = %v, expected the last two ending in 5", got)
	}
}

func TestHubUnsubscribeAndClose(t *testing.T) {
	h := NewHub(1)
	a := h.Subscribe("S")
	b := h.Subscribe("S")
	if h.Count() != 2 {
		t.Fatalf("Count() = %d, expected 2", h.Count())
	}

	h.Unsubscribe(a)
	if h.Count() != 1 {
		t.Errorf("Count() = %d after Unsubscribe, expected 1", h.Count())
	}
	select {
	case <-a.Done():
	default:
		t.Error("unsubscribed viewer not closed")
	}

	h.Close()
	if h.Count() != 0 {
		t.Errorf("Count() = %d after Close, expected 0", h.Count())
	}
	select {
	case <-b.Done():
	default:
		t.Error("viewer not closed by hub Close")
	}

	// Publishing to a closed hub is harmless.
	h.Publish(world.Frame{Tick: 9})
	if f, ok := h.Latest(); !ok || f.Tick != 9 {
		t.Errorf("Latest() = %d, %v, expected 9, true", f.Tick, ok)
	}
}
