package scripting

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/world"
)

// ScriptID identifies an entity from the script's point of view. IDs start
// at 1 and are never reused for the lifetime of a Bridge.
type ScriptID uint32

// PendingSpawn is a sprite requested by a script and not yet realized.
type PendingSpawn struct {
	ID            ScriptID
	Width, Height float64
	Color         core.RGB
	X, Y, Z       float64
}

// Spec converts the request into the host's sprite description.
func (p PendingSpawn) Spec() world.SpriteSpec {
	return world.SpriteSpec{W: p.Width, H: p.Height, Color: p.Color, X: p.X, Y: p.Y, Z: p.Z}
}

// PairUpdate carries a two-component update (position, velocity, size).
type PairUpdate struct {
	ID   ScriptID
	A, B float64
}

// ValueUpdate carries a scalar update (health).
type ValueUpdate struct {
	ID    ScriptID
	Value float64
}

// Mapping is one ScriptID to host handle entry.
type Mapping struct {
	ID     ScriptID
	Entity world.Entity
}

// queue is an ordered buffer guarded by its own lock. take swaps the
// contents out in one critical section, so a producer either lands before
// the take or in the next batch, never in between.
type queue[T any] struct {
	mu    sync.Mutex
	items []T
}

func (q *queue[T]) push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

func (q *queue[T]) take() []T {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// readMap is a host-written, script-read snapshot keyed by ScriptID.
type readMap[V any] struct {
	mu sync.RWMutex
	m  map[ScriptID]V
}

func (r *readMap[V]) store(id ScriptID, v V) {
	r.mu.Lock()
	if r.m == nil {
		r.m = make(map[ScriptID]V)
	}
	r.m[id] = v
	r.mu.Unlock()
}

func (r *readMap[V]) load(id ScriptID) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[id]
	return v, ok
}

// Bridge is the shared state between script-initiated calls and the host
// tick. Each collection has its own lock and no lock is held across an
// interpreter call.
type Bridge struct {
	lastID atomic.Uint32

	spawns     queue[PendingSpawn]
	positions  queue[PairUpdate]
	velocities queue[PairUpdate]
	sizes      queue[PairUpdate]
	health     queue[ValueUpdate]

	markPlayer       queue[ScriptID]
	markCameraTarget queue[ScriptID]
	markWorldElement queue[ScriptID]

	cameraMu  sync.Mutex
	cameraSet *core.Vec2

	entitiesMu sync.RWMutex
	entities   map[ScriptID]world.Entity

	deltaMu sync.RWMutex
	delta   float64

	keysMu sync.RWMutex
	keys   map[string]struct{}

	readPositions readMap[core.Vec2]
	readHealth    readMap[world.Health]
	readStamina   readMap[world.Stamina]

	readCameraMu sync.RWMutex
	readCamera   core.Vec2
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{
		entities: make(map[ScriptID]world.Entity),
		keys:     make(map[string]struct{}),
	}
}

// RequestSpawn assigns the next ScriptID and queues a sprite spawn for it.
func (b *Bridge) RequestSpawn(width, height float64, color core.RGB, x, y, z float64) ScriptID {
	id := ScriptID(b.lastID.Add(1))
	b.spawns.push(PendingSpawn{ID: id, Width: width, Height: height, Color: color, X: x, Y: y, Z: z})
	return id
}

// LastID returns the most recently issued ScriptID, or 0 if none.
func (b *Bridge) LastID() ScriptID {
	return ScriptID(b.lastID.Load())
}

// RequestPosition queues a position write.
func (b *Bridge) RequestPosition(id ScriptID, x, y float64) {
	b.positions.push(PairUpdate{ID: id, A: x, B: y})
}

// RequestVelocity queues a velocity write.
func (b *Bridge) RequestVelocity(id ScriptID, vx, vy float64) {
	b.velocities.push(PairUpdate{ID: id, A: vx, B: vy})
}

// RequestSpriteSize queues a sprite resize.
func (b *Bridge) RequestSpriteSize(id ScriptID, w, h float64) {
	b.sizes.push(PairUpdate{ID: id, A: w, B: h})
}

// RequestHealth queues a current-health write.
func (b *Bridge) RequestHealth(id ScriptID, value float64) {
	b.health.push(ValueUpdate{ID: id, Value: value})
}

// RequestMarker queues a marker assignment. Unknown markers are ignored.
func (b *Bridge) RequestMarker(id ScriptID, m world.Marker) {
	if q := b.markerQueue(m); q != nil {
		q.push(id)
	}
}

func (b *Bridge) markerQueue(m world.Marker) *queue[ScriptID] {
	switch m {
	case world.MarkPlayer:
		return &b.markPlayer
	case world.MarkCameraTarget:
		return &b.markCameraTarget
	case world.MarkWorldElement:
		return &b.markWorldElement
	}
	return nil
}

// RequestCamera overwrites the pending camera position; the last write in a
// tick wins.
func (b *Bridge) RequestCamera(x, y float64) {
	b.cameraMu.Lock()
	p := core.V(x, y)
	b.cameraSet = &p
	b.cameraMu.Unlock()
}

// TakeSpawns drains the pending spawns.
func (b *Bridge) TakeSpawns() []PendingSpawn { return b.spawns.take() }

// TakePositions drains the queued position writes.
func (b *Bridge) TakePositions() []PairUpdate { return b.positions.take() }

// TakeVelocities drains the queued velocity writes.
func (b *Bridge) TakeVelocities() []PairUpdate { return b.velocities.take() }

// TakeSpriteSizes drains the queued sprite resizes.
func (b *Bridge) TakeSpriteSizes() []PairUpdate { return b.sizes.take() }

// TakeHealth drains the queued health writes.
func (b *Bridge) TakeHealth() []ValueUpdate { return b.health.take() }

// TakeMarkers drains the queue for marker m.
func (b *Bridge) TakeMarkers(m world.Marker) []ScriptID {
	if q := b.markerQueue(m); q != nil {
		return q.take()
	}
	return nil
}

// TakeCamera returns and clears the pending camera overwrite.
func (b *Bridge) TakeCamera() (core.Vec2, bool) {
	b.cameraMu.Lock()
	defer b.cameraMu.Unlock()
	if b.cameraSet == nil {
		return core.Vec2{}, false
	}
	p := *b.cameraSet
	b.cameraSet = nil
	return p, true
}

// PendingCounts reports queue lengths, for diagnostics.
type PendingCounts struct {
	Spawns, Positions, Velocities, Sizes, Health, Markers int
}

// Pending returns the current queue lengths without draining them.
func (b *Bridge) Pending() PendingCounts {
	return PendingCounts{
		Spawns:     b.spawns.len(),
		Positions:  b.positions.len(),
		Velocities: b.velocities.len(),
		Sizes:      b.sizes.len(),
		Health:     b.health.len(),
		Markers:    b.markPlayer.len() + b.markCameraTarget.len() + b.markWorldElement.len(),
	}
}

// Register maps a ScriptID to a host handle. The map is append-only: an ID
// that is already mapped keeps its first handle and Register returns false.
func (b *Bridge) Register(id ScriptID, e world.Entity) bool {
	b.entitiesMu.Lock()
	defer b.entitiesMu.Unlock()
	if _, exists := b.entities[id]; exists {
		return false
	}
	b.entities[id] = e
	return true
}

// Resolve returns the host handle for id, if the spawn has been realized.
func (b *Bridge) Resolve(id ScriptID) (world.Entity, bool) {
	b.entitiesMu.RLock()
	defer b.entitiesMu.RUnlock()
	e, ok := b.entities[id]
	return e, ok
}

// Mappings returns every registered entry ordered by ScriptID.
func (b *Bridge) Mappings() []Mapping {
	b.entitiesMu.RLock()
	out := make([]Mapping, 0, len(b.entities))
	for id, e := range b.entities {
		out = append(out, Mapping{ID: id, Entity: e})
	}
	b.entitiesMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetDelta stores the frame delta scripts read with get_delta_time.
func (b *Bridge) SetDelta(dt float64) {
	b.deltaMu.Lock()
	b.delta = dt
	b.deltaMu.Unlock()
}

// Delta returns the stored frame delta.
func (b *Bridge) Delta() float64 {
	b.deltaMu.RLock()
	defer b.deltaMu.RUnlock()
	return b.delta
}

// ClearKeys releases every key. Call it before repopulating the set each
// tick so key-down state never leaks across frames.
func (b *Bridge) ClearKeys() {
	b.keysMu.Lock()
	b.keys = make(map[string]struct{})
	b.keysMu.Unlock()
}

// SetKeyPressed marks a key as held or released. Names are case-insensitive.
func (b *Bridge) SetKeyPressed(name string, pressed bool) {
	key := strings.ToUpper(name)
	b.keysMu.Lock()
	if pressed {
		b.keys[key] = struct{}{}
	} else {
		delete(b.keys, key)
	}
	b.keysMu.Unlock()
}

// KeyPressed reports whether the named key is held this tick.
func (b *Bridge) KeyPressed(name string) bool {
	b.keysMu.RLock()
	defer b.keysMu.RUnlock()
	_, ok := b.keys[strings.ToUpper(name)]
	return ok
}

// StorePosition records the host-observed position of id.
func (b *Bridge) StorePosition(id ScriptID, x, y float64) {
	b.readPositions.store(id, core.V(x, y))
}

// Position returns the last observed position of id, or the origin.
func (b *Bridge) Position(id ScriptID) core.Vec2 {
	p, _ := b.readPositions.load(id)
	return p
}

// StoreHealth records the host-observed health of id.
func (b *Bridge) StoreHealth(id ScriptID, h world.Health) {
	b.readHealth.store(id, h)
}

// Health returns the last observed health of id, or zeros.
func (b *Bridge) Health(id ScriptID) world.Health {
	h, _ := b.readHealth.load(id)
	return h
}

// StoreStamina records the host-observed stamina of id.
func (b *Bridge) StoreStamina(id ScriptID, s world.Stamina) {
	b.readStamina.store(id, s)
}

// Stamina returns the last observed stamina of id, or zeros.
func (b *Bridge) Stamina(id ScriptID) world.Stamina {
	s, _ := b.readStamina.load(id)
	return s
}

// StoreCamera records the host-observed camera position.
func (b *Bridge) StoreCamera(x, y float64) {
	b.readCameraMu.Lock()
	b.readCamera = core.V(x, y)
	b.readCameraMu.Unlock()
}

// Camera returns the last observed camera position.
func (b *Bridge) Camera() core.Vec2 {
	b.readCameraMu.RLock()
	defer b.readCameraMu.RUnlock()
	return b.readCamera
}
