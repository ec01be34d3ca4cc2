package main

import (
	"context"
	"time"

	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/registry"
	"github.com/vovakirdan/scriptarena/internal/world"
)

// minTickInterval bounds wall-clock pacing; time.NewTicker rejects zero.
const minTickInterval = time.Millisecond

// hostLoop drives a game without a terminal.
type hostLoop struct {
	game  registry.Game
	dt    float64
	ticks int // 0 runs until the context ends
	// realtime paces ticks on the wall clock instead of running flat out.
	realtime bool
	publish  func(world.Frame)
}

// run resets the game and steps it until ticks are exhausted or ctx ends.
// It returns the number of ticks stepped.
func (h hostLoop) run(ctx context.Context, cfg core.RuntimeConfig) int {
	h.game.Reset(cfg)
	if h.dt <= 0 {
		h.dt = cfg.FixedDelta()
	}

	var ticker *time.Ticker
	if h.realtime {
		ticker = time.NewTicker(tickInterval(h.dt))
		defer ticker.Stop()
	}

	in := core.NewInputFrame()
	n := 0
	for h.ticks == 0 || n < h.ticks {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return n
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return n
		}

		in.Clear()
		in.Delta = h.dt
		h.game.Step(in)
		n++

		if h.publish != nil {
			if fs, ok := h.game.(registry.FrameSource); ok {
				h.publish(fs.Frame())
			}
		}
	}
	return n
}

// tickInterval converts seconds per tick into a ticker period of at least
// minTickInterval.
func tickInterval(dt float64) time.Duration {
	d := time.Duration(dt * float64(time.Second))
	if d < minTickInterval {
		return minTickInterval
	}
	return d
}
