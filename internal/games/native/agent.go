package native

import (
	"math"

	"github.com/vovakirdan/scriptarena/internal/config"
	"github.com/vovakirdan/scriptarena/internal/core"
)

// AgentState is the orbiter's behaviour state.
type AgentState int

const (
	Circling AgentState = iota
	Approaching
	Interacting
	Returning
)

func (s AgentState) String() string {
	switch s {
	case Circling:
		return "circling"
	case Approaching:
		return "approaching"
	case Interacting:
		return "interacting"
	case Returning:
		return "returning"
	default:
		return "unknown"
	}
}

const (
	reachDistance  = 10.0 // approach ends this close to the player
	rejoinDistance = 5.0  // return ends this close to the orbit point
	catchUpFactor  = 1.2  // returning moves faster than approaching
)

// Orbiter circles the player, periodically dives in to touch it, then
// rejoins the orbit.
type Orbiter struct {
	State         AgentState
	Angle         float64
	Pos           core.Vec2
	circleTimer   float64
	interactTimer float64
	cfg           config.AgentConfig
}

// NewOrbiter creates an orbiter at angle 0 of an orbit around the origin.
func NewOrbiter(cfg config.AgentConfig) *Orbiter {
	return &Orbiter{
		State: Circling,
		Pos:   core.V(cfg.OrbitRadius, 0),
		cfg:   cfg,
	}
}

func (o *Orbiter) orbitPoint(player core.Vec2) core.Vec2 {
	return core.V(
		player.X+o.cfg.OrbitRadius*math.Cos(o.Angle),
		player.Y+o.cfg.OrbitRadius*math.Sin(o.Angle),
	)
}

func (o *Orbiter) advanceAngle(dt float64) {
	o.Angle += o.cfg.OrbitSpeed * dt
	if o.Angle > 2*math.Pi {
		o.Angle -= 2 * math.Pi
	}
}

// moveToward steps toward target at speed without overshooting it.
func (o *Orbiter) moveToward(target core.Vec2, speed, dt float64) {
	to := target.Sub(o.Pos)
	dist := to.Len()
	stepLen := speed * dt
	if dist <= stepLen {
		o.Pos = target
		return
	}
	o.Pos = o.Pos.Add(to.Scale(stepLen / dist))
}

// Update advances the state machine by dt seconds.
func (o *Orbiter) Update(player core.Vec2, dt float64) {
	switch o.State {
	case Circling:
		o.advanceAngle(dt)
		o.Pos = o.orbitPoint(player)
		o.circleTimer += dt
		if o.circleTimer >= o.cfg.CircleDuration.Seconds() {
			o.circleTimer = 0
			o.State = Approaching
		}

	case Approaching:
		if player.Sub(o.Pos).Len() < reachDistance {
			o.State = Interacting
			o.interactTimer = 0
			return
		}
		o.moveToward(player, o.cfg.MoveSpeed, dt)

	case Interacting:
		o.Pos = player
		o.interactTimer += dt
		if o.interactTimer >= o.cfg.InteractDuration.Seconds() {
			o.State = Returning
		}

	case Returning:
		target := o.orbitPoint(player)
		if target.Sub(o.Pos).Len() < rejoinDistance {
			o.Pos = target
			o.State = Circling
			return
		}
		// the target keeps moving so the agent catches up along an arc
		o.advanceAngle(dt)
		o.moveToward(o.orbitPoint(player), o.cfg.MoveSpeed*catchUpFactor, dt)
	}
}
