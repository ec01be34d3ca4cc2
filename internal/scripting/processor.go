package scripting

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/world"
)

// Host is the authoritative entity store the processor applies commands to.
// Writers return false when the handle is not alive. *world.World satisfies
// it.
type Host interface {
	Spawn(spec world.SpriteSpec) world.Entity
	Alive(e world.Entity) bool
	Mark(e world.Entity, m world.Marker) bool
	SetPosition(e world.Entity, x, y float64) bool
	SetVelocity(e world.Entity, vx, vy float64) bool
	SetHealth(e world.Entity, current float64) bool
	SetSpriteSize(e world.Entity, width, height float64) bool
	SetCamera(x, y float64)
	Flush() int

	Position(e world.Entity) (core.Vec2, bool)
	Health(e world.Entity) (world.Health, bool)
	Stamina(e world.Entity) (world.Stamina, bool)
	Camera() core.Vec2
}

// PlayerSlot holds the id returned by spawn_player until the processor
// realizes it.
type PlayerSlot struct {
	id      ScriptID
	waiting bool
	bound   bool
	entity  world.Entity
}

// Await makes the slot wait for id. Any previous binding is dropped.
func (s *PlayerSlot) Await(id ScriptID) {
	*s = PlayerSlot{id: id, waiting: true}
}

// ID returns the script id the slot is waiting on or bound to.
func (s *PlayerSlot) ID() ScriptID {
	return s.id
}

// Bound reports whether the slot has a realized entity.
func (s *PlayerSlot) Bound() bool {
	return s.bound
}

// Entity returns the bound handle.
func (s *PlayerSlot) Entity() (world.Entity, bool) {
	return s.entity, s.bound
}

// Reset empties the slot.
func (s *PlayerSlot) Reset() {
	*s = PlayerSlot{}
}

func (s *PlayerSlot) bind(id ScriptID, e world.Entity) bool {
	if !s.waiting || s.id != id {
		return false
	}
	s.waiting = false
	s.bound = true
	s.entity = e
	return true
}

// Stats counts what one Process call applied and dropped.
type Stats struct {
	Spawned int
	Marked  int
	Updated int
	Dropped int
	Camera  bool
}

// Processor drains the bridge once per tick and applies the buffered
// commands to the host.
type Processor struct {
	bridge *Bridge
	host   Host
	slot   *PlayerSlot
	logger *log.Logger
}

// NewProcessor creates a processor. slot may be nil when no player binding
// is needed.
func NewProcessor(b *Bridge, host Host, slot *PlayerSlot, logger *log.Logger) *Processor {
	if slot == nil {
		slot = &PlayerSlot{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{bridge: b, host: host, slot: slot, logger: logger}
}

// Slot returns the player slot the processor binds.
func (p *Processor) Slot() *PlayerSlot {
	return p.slot
}

// resolve returns the handle for id if it is mapped and alive in the host.
// A spawn realized earlier in the same Process call is mapped but not yet
// alive.
func (p *Processor) resolve(id ScriptID) (world.Entity, bool) {
	e, ok := p.bridge.Resolve(id)
	if !ok || !p.host.Alive(e) {
		return world.Nil, false
	}
	return e, true
}

var markerOrder = []world.Marker{world.MarkPlayer, world.MarkCameraTarget, world.MarkWorldElement}

// Process applies every pending command in order: spawns, markers,
// position, velocity, health and size updates, then the camera overwrite.
// Commands for ids that do not resolve to a live entity are dropped, not
// requeued. Spawned entities become live when the host flushes at the end.
func (p *Processor) Process() Stats {
	var st Stats

	if p.logger.GetLevel() <= log.DebugLevel {
		if c := p.bridge.Pending(); c != (PendingCounts{}) {
			p.logger.Debug("processing commands",
				"spawns", c.Spawns, "positions", c.Positions, "velocities", c.Velocities,
				"sizes", c.Sizes, "health", c.Health, "markers", c.Markers,
				"last_id", p.bridge.LastID())
		}
	}

	for _, ps := range p.bridge.TakeSpawns() {
		e := p.host.Spawn(ps.Spec())
		if !p.bridge.Register(ps.ID, e) {
			p.logger.Warn("script id already mapped", "id", ps.ID)
		}
		if p.slot.bind(ps.ID, e) {
			p.logger.Debug("player slot bound", "id", ps.ID)
		}
		st.Spawned++
	}

	for _, m := range markerOrder {
		for _, id := range p.bridge.TakeMarkers(m) {
			e, ok := p.resolve(id)
			if !ok {
				p.logger.Debug("dropped marker for unresolved id", "id", id, "marker", m)
				st.Dropped++
				continue
			}
			p.host.Mark(e, m)
			st.Marked++
		}
	}

	p.applyPairs("position", p.bridge.TakePositions(), p.host.SetPosition, &st)
	p.applyPairs("velocity", p.bridge.TakeVelocities(), p.host.SetVelocity, &st)

	for _, u := range p.bridge.TakeHealth() {
		e, ok := p.resolve(u.ID)
		if !ok {
			p.logger.Debug("dropped health update for unresolved id", "id", u.ID)
			st.Dropped++
			continue
		}
		if p.host.SetHealth(e, u.Value) {
			st.Updated++
		}
	}

	p.applyPairs("size", p.bridge.TakeSpriteSizes(), p.host.SetSpriteSize, &st)

	if pos, ok := p.bridge.TakeCamera(); ok {
		p.host.SetCamera(pos.X, pos.Y)
		st.Camera = true
	}

	p.host.Flush()
	return st
}

// applyPairs applies queued updates in order so the last write for an id
// wins.
func (p *Processor) applyPairs(kind string, updates []PairUpdate, set func(world.Entity, float64, float64) bool, st *Stats) {
	for _, u := range updates {
		e, ok := p.resolve(u.ID)
		if !ok {
			p.logger.Debug("dropped "+kind+" update for unresolved id", "id", u.ID)
			st.Dropped++
			continue
		}
		if set(e, u.A, u.B) {
			st.Updated++
		}
	}
}

// ReadBack mirrors host positions, health, stamina and the camera into the
// bridge for every realized id, so scripts read host-authoritative values
// on the next tick.
func (p *Processor) ReadBack() {
	for _, m := range p.bridge.Mappings() {
		if pos, ok := p.host.Position(m.Entity); ok {
			p.bridge.StorePosition(m.ID, pos.X, pos.Y)
		}
		if h, ok := p.host.Health(m.Entity); ok {
			p.bridge.StoreHealth(m.ID, h)
		}
		if s, ok := p.host.Stamina(m.Entity); ok {
			p.bridge.StoreStamina(m.ID, s)
		}
	}
	cam := p.host.Camera()
	p.bridge.StoreCamera(cam.X, cam.Y)
}
