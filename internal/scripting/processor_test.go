package scripting

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/world"
)

func newTestProcessor() (*Processor, *Bridge, *world.World) {
	b := NewBridge()
	w := world.New(16)
	return NewProcessor(b, w, &PlayerSlot{}, log.New(io.Discard)), b, w
}

func TestProcessorRealizesEverySpawn(t *testing.T) {
	p, b, w := newTestProcessor()
	const n = 5
	ids := make([]ScriptID, n)
	for i := range ids {
		ids[i] = b.RequestSpawn(1, 1, core.ColorMarker, float64(i), 0, 0)
	}

	st := p.Process()
	if st.Spawned != n {
		t.Errorf("Process().Spawned = %d, expected %d", st.Spawned, n)
	}
	if got := w.Len(); got != n {
		t.Errorf("world.Len() = %d, expected %d", got, n)
	}

	mappings := b.Mappings()
	if len(mappings) != n {
		t.Fatalf("Mappings() = %d entries, expected %d", len(mappings), n)
	}
	for i, m := range mappings {
		if m.ID != ids[i] {
			t.Errorf("mapping %d id = %d, expected %d", i, m.ID, ids[i])
		}
		pos, ok := w.Position(m.Entity)
		if !ok || pos.X != float64(i) {
			t.Errorf("entity for id %d at %v, expected x=%d", m.ID, pos, i)
		}
	}
}

func TestProcessorLogsPendingAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	b := NewBridge()
	p := NewProcessor(b, world.New(4), &PlayerSlot{}, logger)

	id := b.RequestSpawn(1, 1, core.ColorMarker, 0, 0, 0)
	p.Process()

	out := buf.String()
	if !strings.Contains(out, "processing commands") || !strings.Contains(out, "spawns=1") {
		t.Errorf("debug log missing pending counts: %q", out)
	}
	if !strings.Contains(out, "last_id="+strconv.Itoa(int(id))) {
		t.Errorf("debug log missing last id %d: %q", id, out)
	}

	buf.Reset()
	p.Process()
	if strings.Contains(buf.String(), "processing commands") {
		t.Error("empty queues should not be logged")
	}
}

func TestProcessorSameTickMarkIsDropped(t *testing.T) {
	p, b, w := newTestProcessor()

	id := b.RequestSpawn(10, 10, core.NewRGB(1, 0, 0), 0, 0, 0)
	if id != 1 {
		t.Fatalf("RequestSpawn() = %d, expected 1", id)
	}
	b.RequestMarker(id, world.MarkPlayer)

	st := p.Process()
	if st.Dropped != 1 || st.Marked != 0 {
		t.Errorf("first Process() = %+v, expected one drop and no marks", st)
	}
	e, ok := b.Resolve(id)
	if !ok || !w.Alive(e) {
		t.Fatal("entity 1 not realized after first Process()")
	}
	if w.HasMarker(e, world.MarkPlayer) {
		t.Error("entity 1 marked player in the tick it was spawned")
	}

	b.RequestMarker(id, world.MarkPlayer)
	st = p.Process()
	if st.Marked != 1 {
		t.Errorf("second Process().Marked = %d, expected 1", st.Marked)
	}
	if !w.HasMarker(e, world.MarkPlayer) {
		t.Error("entity 1 not marked player on the next tick")
	}

	b.RequestMarker(id, world.MarkPlayer)
	p.Process()
	if got := len(w.Query(world.MarkPlayer)); got != 1 {
		t.Errorf("players after re-mark = %d, expected 1", got)
	}
}

func TestProcessorSameTickUpdatesAreDropped(t *testing.T) {
	p, b, w := newTestProcessor()
	id := b.RequestSpawn(1, 1, core.ColorMarker, 2, 2, 0)
	b.RequestPosition(id, 50, 50)
	b.RequestHealth(id, 10)

	st := p.Process()
	if st.Dropped != 2 {
		t.Errorf("Process().Dropped = %d, expected 2", st.Dropped)
	}
	e, _ := b.Resolve(id)
	if pos, _ := w.Position(e); pos != core.V(2, 2) {
		t.Errorf("position = %v, expected spawn position (2,2)", pos)
	}
}

func TestProcessorLastWriteWins(t *testing.T) {
	p, b, w := newTestProcessor()
	id := b.RequestSpawn(1, 1, core.ColorMarker, 0, 0, 0)
	p.Process()
	e, _ := b.Resolve(id)

	b.RequestPosition(id, 1, 1)
	b.RequestPosition(id, 2, 2)
	b.RequestPosition(id, 3, -3)
	b.RequestVelocity(id, 5, 0)
	b.RequestVelocity(id, 0, 5)
	b.RequestHealth(id, 80)
	b.RequestHealth(id, 40)
	b.RequestSpriteSize(id, 4, 4)
	b.RequestSpriteSize(id, 8, 2)
	p.Process()

	if pos, _ := w.Position(e); pos != core.V(3, -3) {
		t.Errorf("Position() = %v, expected (3,-3)", pos)
	}
	if vel, _ := w.Velocity(e); vel != core.V(0, 5) {
		t.Errorf("Velocity() = %v, expected (0,5)", vel)
	}
	if h, _ := w.Health(e); h.Current != 40 {
		t.Errorf("Health().Current = %v, expected 40", h.Current)
	}
	if s, _ := w.Sprite(e); s.W != 8 || s.H != 2 {
		t.Errorf("Sprite() = %vx%v, expected 8x2", s.W, s.H)
	}
}

func TestProcessorUnknownIDsIgnored(t *testing.T) {
	p, b, w := newTestProcessor()
	b.RequestPosition(99, 1, 1)
	b.RequestMarker(99, world.MarkWorldElement)

	st := p.Process()
	if st.Dropped != 2 {
		t.Errorf("Process().Dropped = %d, expected 2", st.Dropped)
	}
	if w.Len() != 0 {
		t.Errorf("world.Len() = %d, expected 0", w.Len())
	}
}

func TestProcessorCameraOverwrite(t *testing.T) {
	p, b, w := newTestProcessor()
	p.Process()
	if got := w.Camera(); got != (core.Vec2{}) {
		t.Errorf("Camera() = %v before any request, expected origin", got)
	}

	b.RequestCamera(1, 2)
	b.RequestCamera(3, 4)
	if st := p.Process(); !st.Camera {
		t.Error("Process().Camera = false, expected true")
	}
	if got := w.Camera(); got != core.V(3, 4) {
		t.Errorf("Camera() = %v, expected (3,4)", got)
	}
}

func TestProcessorBindsPlayerSlot(t *testing.T) {
	p, b, _ := newTestProcessor()
	b.RequestSpawn(1, 1, core.ColorGround, 0, 0, 0)
	id := b.RequestSpawn(1, 1, core.ColorPlayer, 0, 0, 0)
	p.Slot().Await(id)

	if p.Slot().Bound() {
		t.Fatal("slot bound before processing")
	}
	p.Process()
	if !p.Slot().Bound() {
		t.Fatal("slot not bound after processing")
	}
	got, _ := p.Slot().Entity()
	want, _ := b.Resolve(id)
	if got != want {
		t.Errorf("slot entity = %v, expected %v", got, want)
	}
}

func TestProcessorReadBack(t *testing.T) {
	p, b, w := newTestProcessor()
	id := b.RequestSpawn(1, 1, core.ColorPlayer, 4, 5, 0)
	p.Process()
	b.RequestMarker(id, world.MarkPlayer)
	b.RequestHealth(id, 60)
	p.Process()
	w.SetCamera(9, 8)

	p.ReadBack()

	if got := b.Position(id); got != core.V(4, 5) {
		t.Errorf("Position(%d) = %v, expected (4,5)", id, got)
	}
	if got := b.Health(id); got.Current != 60 || got.Max != world.DefaultHealthMax {
		t.Errorf("Health(%d) = %+v, expected 60/%v", id, got, world.DefaultHealthMax)
	}
	if got := b.Stamina(id); got != world.DefaultStamina() {
		t.Errorf("Stamina(%d) = %+v, expected defaults", id, got)
	}
	if got := b.Camera(); got != core.V(9, 8) {
		t.Errorf("Camera() = %v, expected (9,8)", got)
	}
}
