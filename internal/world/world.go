package world

import (
	"sort"

	"github.com/vovakirdan/scriptarena/internal/core"
)

// World stores entities in versioned slots with a free-ID stack.
// It is owned by the host simulation goroutine and is not safe for
// concurrent use.
type World struct {
	records []record
	freeIDs []uint32
	queued  []queuedSpawn
	camera  core.Vec2
	tick    uint64
	live    int
}

type queuedSpawn struct {
	entity Entity
	spec   SpriteSpec
}

// New creates a world with room for capacity entities before growing.
func New(capacity int) *World {
	if capacity < 0 {
		capacity = 0
	}
	return &World{
		records: make([]record, 0, capacity),
	}
}

// Spawn reserves a handle for a new sprite entity. Creation is deferred:
// the entity becomes alive at the next Flush, and until then component
// writes to the handle are rejected.
func (w *World) Spawn(spec SpriteSpec) Entity {
	e := w.reserve()
	w.queued = append(w.queued, queuedSpawn{entity: e, spec: spec})
	return e
}

// SpawnNow creates an entity immediately. Used by native game code that owns
// the whole tick and has no foreign producer to defer.
func (w *World) SpawnNow(spec SpriteSpec) Entity {
	e := w.reserve()
	w.realize(e, spec)
	return e
}

func (w *World) reserve() Entity {
	var id uint32
	if n := len(w.freeIDs); n > 0 {
		id = w.freeIDs[n-1]
		w.freeIDs = w.freeIDs[:n-1]
	} else {
		id = uint32(len(w.records))
		w.records = append(w.records, record{})
	}
	r := &w.records[id]
	r.version++
	if r.version == 0 {
		r.version = 1
	}
	r.pending = true
	return Entity{ID: id, Version: r.version}
}

func (w *World) realize(e Entity, spec SpriteSpec) {
	r := &w.records[e.ID]
	*r = record{
		version:   r.version,
		alive:     true,
		transform: Transform{X: spec.X, Y: spec.Y, Z: spec.Z},
		sprite:    Sprite{W: spec.W, H: spec.H, Color: spec.Color},
	}
	w.live++
}

// Flush realizes every queued spawn in reservation order and returns how
// many entities became alive.
func (w *World) Flush() int {
	n := 0
	for _, q := range w.queued {
		r := &w.records[q.entity.ID]
		if !r.pending || r.version != q.entity.Version {
			continue
		}
		w.realize(q.entity, q.spec)
		n++
	}
	w.queued = w.queued[:0]
	return n
}

// Pending returns the number of reserved entities awaiting Flush.
func (w *World) Pending() int {
	return len(w.queued)
}

// Alive reports whether e refers to a realized entity.
func (w *World) Alive(e Entity) bool {
	return w.get(e) != nil
}

func (w *World) get(e Entity) *record {
	if e.IsNil() || int(e.ID) >= len(w.records) {
		return nil
	}
	r := &w.records[e.ID]
	if !r.alive || r.version != e.Version {
		return nil
	}
	return r
}

// Despawn removes a live entity and frees its slot for reuse.
func (w *World) Despawn(e Entity) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	*r = record{version: r.version}
	w.freeIDs = append(w.freeIDs, e.ID)
	w.live--
	return true
}

// Clear despawns everything, drops queued spawns and resets the camera and
// tick counter. Versions survive so stale handles stay invalid.
func (w *World) Clear() {
	for i := range w.records {
		r := &w.records[i]
		switch {
		case r.alive:
			w.Despawn(Entity{ID: uint32(i), Version: r.version})
		case r.pending:
			*r = record{version: r.version}
			w.freeIDs = append(w.freeIDs, uint32(i))
		}
	}
	w.queued = w.queued[:0]
	w.camera = core.Vec2{}
	w.tick = 0
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.live
}

// Tick returns the number of simulation steps since the last Clear.
func (w *World) Tick() uint64 {
	return w.tick
}

// Position returns the entity's position.
func (w *World) Position(e Entity) (core.Vec2, bool) {
	r := w.get(e)
	if r == nil {
		return core.Vec2{}, false
	}
	return core.V(r.transform.X, r.transform.Y), true
}

// SetPosition moves the entity, keeping its Z.
func (w *World) SetPosition(e Entity, x, y float64) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	r.transform.X, r.transform.Y = x, y
	return true
}

// Velocity returns the entity's velocity if it has one.
func (w *World) Velocity(e Entity) (core.Vec2, bool) {
	r := w.get(e)
	if r == nil || !r.hasVelocity {
		return core.Vec2{}, false
	}
	return r.velocity, true
}

// SetVelocity attaches or overwrites the velocity component.
func (w *World) SetVelocity(e Entity, vx, vy float64) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	r.hasVelocity = true
	r.velocity = core.V(vx, vy)
	return true
}

// MoveSpeed returns the entity's move speed, or 0 when it has none.
func (w *World) MoveSpeed(e Entity) float64 {
	if r := w.get(e); r != nil {
		return r.moveSpeed
	}
	return 0
}

// SetMoveSpeed attaches or overwrites the move speed component.
func (w *World) SetMoveSpeed(e Entity, speed float64) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	r.moveSpeed = speed
	return true
}

// Health returns the entity's health if it has one.
func (w *World) Health(e Entity) (Health, bool) {
	r := w.get(e)
	if r == nil || r.health == nil {
		return Health{}, false
	}
	return *r.health, true
}

// SetHealth sets current health, clamped to [0, Max]. An entity without a
// health component gets one with Max = max(value, DefaultHealthMax).
func (w *World) SetHealth(e Entity, current float64) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	if r.health == nil {
		r.health = &Health{Max: DefaultHealthMax}
		if current > r.health.Max {
			r.health.Max = current
		}
	}
	r.health.Current = core.ClampF(current, 0, r.health.Max)
	return true
}

// Stamina returns the entity's stamina if it has one.
func (w *World) Stamina(e Entity) (Stamina, bool) {
	r := w.get(e)
	if r == nil || r.stamina == nil {
		return Stamina{}, false
	}
	return *r.stamina, true
}

// SetStamina attaches or overwrites the stamina component.
func (w *World) SetStamina(e Entity, s Stamina) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	r.stamina = &s
	return true
}

// Sprite returns the entity's sprite.
func (w *World) Sprite(e Entity) (Sprite, bool) {
	r := w.get(e)
	if r == nil {
		return Sprite{}, false
	}
	return r.sprite, true
}

// SetSpriteSize resizes the entity's sprite.
func (w *World) SetSpriteSize(e Entity, width, height float64) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	r.sprite.W, r.sprite.H = width, height
	return true
}

// AddMarker tags the entity. Adding a marker twice has no further effect.
func (w *World) AddMarker(e Entity, m Marker) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	r.markers |= m
	return true
}

// HasMarker reports whether the entity carries every bit of m.
func (w *World) HasMarker(e Entity, m Marker) bool {
	r := w.get(e)
	return r != nil && r.markers&m == m
}

// Query returns the live entities carrying m, in slot order.
func (w *World) Query(m Marker) []Entity {
	var out []Entity
	for i := range w.records {
		r := &w.records[i]
		if r.alive && r.markers&m == m {
			out = append(out, Entity{ID: uint32(i), Version: r.version})
		}
	}
	return out
}

// First returns the first live entity carrying m.
func (w *World) First(m Marker) (Entity, bool) {
	for i := range w.records {
		r := &w.records[i]
		if r.alive && r.markers&m == m {
			return Entity{ID: uint32(i), Version: r.version}, true
		}
	}
	return Nil, false
}

// Camera returns the camera position.
func (w *World) Camera() core.Vec2 {
	return w.camera
}

// SetCamera moves the camera.
func (w *World) SetCamera(x, y float64) {
	w.camera = core.V(x, y)
}

// Simulate runs the host's own step: velocity is integrated into position,
// and players drain stamina while moving and recharge while still.
func (w *World) Simulate(dt float64) {
	w.tick++
	if dt <= 0 {
		return
	}
	for i := range w.records {
		r := &w.records[i]
		if !r.alive {
			continue
		}
		moving := false
		if r.hasVelocity {
			r.transform.X += r.velocity.X * dt
			r.transform.Y += r.velocity.Y * dt
			moving = !r.velocity.IsZero(0.001)
		}
		if r.stamina != nil && r.markers&MarkPlayer != 0 {
			s := r.stamina
			if moving {
				s.Current = core.ClampF(s.Current-s.Drain*dt, 0, s.Max)
			} else {
				s.Current = core.ClampF(s.Current+s.Recharge*dt, 0, s.Max)
			}
		}
	}
}

// SpriteView is one drawable entity in a Frame.
type SpriteView struct {
	Entity  Entity
	X, Y, Z float64
	W, H    float64
	Color   core.RGB
	Markers Marker
	Health  *Health
}

// Frame is an immutable render snapshot of the world.
type Frame struct {
	Tick    uint64
	Camera  core.Vec2
	Sprites []SpriteView // sorted by Z, then slot
}

// Frame captures the current state for rendering.
func (w *World) Frame() Frame {
	f := Frame{
		Tick:    w.tick,
		Camera:  w.camera,
		Sprites: make([]SpriteView, 0, w.live),
	}
	for i := range w.records {
		r := &w.records[i]
		if !r.alive {
			continue
		}
		v := SpriteView{
			Entity:  Entity{ID: uint32(i), Version: r.version},
			X:       r.transform.X,
			Y:       r.transform.Y,
			Z:       r.transform.Z,
			W:       r.sprite.W,
			H:       r.sprite.H,
			Color:   r.sprite.Color,
			Markers: r.markers,
		}
		if r.health != nil {
			h := *r.health
			v.Health = &h
		}
		f.Sprites = append(f.Sprites, v)
	}
	sort.SliceStable(f.Sprites, func(i, j int) bool {
		return f.Sprites[i].Z < f.Sprites[j].Z
	})
	return f
}

// Mark attaches marker m together with the components the marker implies:
// players get a velocity, a move speed and stamina unless already present.
func (w *World) Mark(e Entity, m Marker) bool {
	r := w.get(e)
	if r == nil {
		return false
	}
	r.markers |= m
	if m&MarkPlayer != 0 {
		r.hasVelocity = true
		if r.moveSpeed == 0 {
			r.moveSpeed = DefaultMoveSpeed
		}
		if r.stamina == nil {
			s := DefaultStamina()
			r.stamina = &s
		}
	}
	return true
}
