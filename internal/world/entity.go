// Package world is the host's authoritative entity store. It owns entity
// lifetime, components, the camera and the host simulation step. Scripts never
// see its handles; the scripting bridge maps its own identifiers onto them.
package world

import "github.com/vovakirdan/scriptarena/internal/core"

// Entity is a generational handle. A slot that is freed and reused gets a new
// version, so an old handle never resolves to the new occupant.
type Entity struct {
	ID      uint32
	Version uint32
}

// Nil is the zero handle; it never refers to a live entity.
var Nil Entity

// IsNil reports whether e is the zero handle.
func (e Entity) IsNil() bool {
	return e.Version == 0
}

// Marker is a set of tag components.
type Marker uint8

const (
	MarkPlayer Marker = 1 << iota
	MarkCameraTarget
	MarkWorldElement
	MarkAgent // native orbiter; scripts cannot request it
)

// String returns a short name for a single marker.
func (m Marker) String() string {
	switch m {
	case MarkPlayer:
		return "player"
	case MarkCameraTarget:
		return "camera_target"
	case MarkWorldElement:
		return "world_element"
	case MarkAgent:
		return "agent"
	default:
		return "markers"
	}
}

// SpriteSpec describes a sprite entity to create.
type SpriteSpec struct {
	W, H    float64
	Color   core.RGB
	X, Y, Z float64
}

// Transform is an entity's position; Z orders drawing.
type Transform struct {
	X, Y, Z float64
}

// Sprite is an entity's visual rectangle, centred on its transform.
type Sprite struct {
	W, H  float64
	Color core.RGB
}

// Health is a current/max pair.
type Health struct {
	Current float64
	Max     float64
}

// Stamina drains while a player moves and recharges while it stands still.
type Stamina struct {
	Current  float64
	Max      float64
	Drain    float64 // per second while moving
	Recharge float64 // per second while still
}

// Ratio returns Current/Max, or 1 when Max is zero.
func (s Stamina) Ratio() float64 {
	if s.Max <= 0 {
		return 1
	}
	return core.ClampF(s.Current/s.Max, 0, 1)
}

// Defaults applied when a component is attached without explicit values.
const (
	DefaultMoveSpeed = 200.0
	DefaultHealthMax = 100.0
)

// DefaultStamina returns the stamina attached to newly marked players.
func DefaultStamina() Stamina {
	return Stamina{Current: 100, Max: 100, Drain: 20, Recharge: 30}
}

// record is the component storage of one slot.
type record struct {
	version uint32
	alive   bool
	pending bool // reserved by Spawn, not yet flushed

	transform Transform
	sprite    Sprite
	markers   Marker

	hasVelocity bool
	velocity    core.Vec2
	moveSpeed   float64 // 0 = none

	health  *Health
	stamina *Stamina
}
