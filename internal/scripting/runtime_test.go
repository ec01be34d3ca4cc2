package scripting

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptarena/internal/core"
)

func newTestRuntime(t *testing.T) (*Runtime, *Bridge) {
	t.Helper()
	b := NewBridge()
	rt, err := NewRuntime(b, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewRuntime() failed: %v", err)
	}
	t.Cleanup(rt.Close)
	return rt, b
}

func TestNewRuntimeRequiresBridge(t *testing.T) {
	if _, err := NewRuntime(nil, nil); err == nil {
		t.Error("NewRuntime(nil) succeeded, expected error")
	}
}

func TestRuntimeRegistersHostFunctions(t *testing.T) {
	rt, _ := newTestRuntime(t)
	for _, name := range HostFunctions {
		if !rt.HasFunction(name) {
			t.Errorf("HasFunction(%q) = false, expected true", name)
		}
	}
}

func TestRuntimeReloadSameContentIsUnchanged(t *testing.T) {
	rt, b := newTestRuntime(t)
	const a = `function ping() set_camera_position(1, 2) end`

	outcome, err := rt.Reload("player", a)
	if err != nil || outcome != OutcomeLoaded {
		t.Fatalf("Reload(A) = %v, %v, expected loaded", outcome, err)
	}
	outcome, err = rt.Reload("player", a)
	if err != nil || outcome != OutcomeUnchanged {
		t.Errorf("Reload(A) again = %v, %v, expected unchanged", outcome, err)
	}

	if err := rt.Call("ping"); err != nil {
		t.Fatalf("Call(ping) failed: %v", err)
	}
	if got, ok := b.TakeCamera(); !ok || got != core.V(1, 2) {
		t.Errorf("camera after ping = %v, %v, expected (1,2), true", got, ok)
	}
}

func TestRuntimeReloadNewContentAddsFunction(t *testing.T) {
	rt, _ := newTestRuntime(t)
	if _, err := rt.Reload("player", `function a() end`); err != nil {
		t.Fatalf("Reload(A) failed: %v", err)
	}
	if rt.HasFunction("b") {
		t.Fatal("b defined before reload")
	}

	outcome, err := rt.Reload("player", `function a() end
function b() end`)
	if err != nil || outcome != OutcomeReloaded {
		t.Fatalf("Reload(B) = %v, %v, expected reloaded", outcome, err)
	}
	if err := rt.Call("b"); err != nil {
		t.Errorf("Call(b) failed: %v", err)
	}
}

func TestRuntimeFailedLoadKeepsPreviousState(t *testing.T) {
	tests := []struct {
		name   string
		source string
		phase  LoadPhase
	}{
		{"syntax", `function value( return 2 end`, PhaseSyntax},
		{"runtime", `function value() return 2 end
error("boom")`, PhaseRuntime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, _ := newTestRuntime(t)
			const good = `counter = 1
function value() return counter end`
			if err := rt.Load("player", good); err != nil {
				t.Fatalf("Load(good) failed: %v", err)
			}

			outcome, err := rt.Reload("player", tt.source)
			if outcome != OutcomeFailed {
				t.Errorf("Reload() outcome = %v, expected failed", outcome)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Reload() error = %v, expected *LoadError", err)
			}
			if le.Phase != tt.phase {
				t.Errorf("LoadError.Phase = %v, expected %v", le.Phase, tt.phase)
			}

			id, err := rt.CallSpawn("value")
			if err != nil {
				t.Fatalf("CallSpawn(value) failed: %v", err)
			}
			if id != 1 {
				t.Errorf("value() = %d, expected previous definition's 1", id)
			}
			rec, _ := rt.Tracker().Get("player")
			if rec.Source != good {
				t.Error("tracker record changed after failed load")
			}
		})
	}
}

func TestRuntimeStagedGlobalsVisibleDuringLoad(t *testing.T) {
	rt, _ := newTestRuntime(t)
	src := `base = 20
local function twice(n) return n * 2 end
answer = twice(base) + 2
function get() return answer end`
	if err := rt.Load("world", src); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	id, err := rt.CallSpawn("get")
	if err != nil {
		t.Fatalf("CallSpawn(get) failed: %v", err)
	}
	if id != 42 {
		t.Errorf("get() = %d, expected 42", id)
	}
}

func TestRuntimeGlobalWritesAfterLoadPersist(t *testing.T) {
	rt, _ := newTestRuntime(t)
	src := `ticks = 0
function step() ticks = ticks + 1 end
function count() return ticks end`
	if err := rt.Load("player", src); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := rt.Call("step"); err != nil {
			t.Fatalf("Call(step) failed: %v", err)
		}
	}
	got, err := rt.CallSpawn("count")
	if err != nil {
		t.Fatalf("CallSpawn(count) failed: %v", err)
	}
	if got != 3 {
		t.Errorf("count() = %d, expected 3", got)
	}
}

func TestRuntimeCallErrors(t *testing.T) {
	rt, _ := newTestRuntime(t)
	src := `not_a_function = 5
function returns_text() return "x" end
function explode() error("kaboom") end
function negative() return -1 end
function bad_id() set_position("abc", 1, 2) end`
	if err := rt.Load("errs", src); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if err := rt.Call("missing"); !errors.Is(err, ErrFunctionNotFound) {
		t.Errorf("Call(missing) = %v, expected ErrFunctionNotFound", err)
	}
	if err := rt.Call("not_a_function"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(not_a_function) = %v, expected ErrNotFunction", err)
	}
	if _, err := rt.CallSpawn("returns_text"); !errors.Is(err, ErrReturnType) {
		t.Errorf("CallSpawn(returns_text) = %v, expected ErrReturnType", err)
	}
	if _, err := rt.CallSpawn("negative"); !errors.Is(err, ErrReturnType) {
		t.Errorf("CallSpawn(negative) = %v, expected ErrReturnType", err)
	}

	var ce *CallError
	if err := rt.Call("explode"); !errors.As(err, &ce) || ce.Func != "explode" {
		t.Errorf("Call(explode) = %v, expected *CallError for explode", err)
	}
	if err := rt.Call("bad_id"); !errors.As(err, &ce) {
		t.Errorf("Call(bad_id) = %v, expected *CallError", err)
	}
}

func TestRuntimeCallUpdatePassesArguments(t *testing.T) {
	rt, b := newTestRuntime(t)
	src := `function update_player(id, dt) set_position(id, dt * 10, id) end`
	if err := rt.Load("player", src); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := rt.CallUpdate("update_player", 7, 0.5); err != nil {
		t.Fatalf("CallUpdate() failed: %v", err)
	}
	got := b.TakePositions()
	if len(got) != 1 {
		t.Fatalf("TakePositions() = %d entries, expected 1", len(got))
	}
	want := PairUpdate{ID: 7, A: 5, B: 7}
	if got[0] != want {
		t.Errorf("position update = %+v, expected %+v", got[0], want)
	}
}

func TestRuntimeHostReadsAndSpawn(t *testing.T) {
	rt, b := newTestRuntime(t)
	b.SetDelta(0.25)
	b.SetKeyPressed("W", true)
	b.StorePosition(1, 3, 4)

	src := `function spawn_player()
  local id = spawn_sprite(10, 10, 1, 0, 0, 0, 0, 0)
  if is_key_pressed("w") then
    local x, y = get_position(1)
    set_velocity(id, x + get_delta_time(), y)
  end
  return id
end`
	if err := rt.Load("player", src); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	id, err := rt.CallSpawn("spawn_player")
	if err != nil {
		t.Fatalf("CallSpawn() failed: %v", err)
	}
	if id != 1 {
		t.Errorf("spawn_player() = %d, expected 1", id)
	}
	spawns := b.TakeSpawns()
	if len(spawns) != 1 || spawns[0].Color != core.NewRGB(1, 0, 0) {
		t.Errorf("TakeSpawns() = %+v, expected one red sprite", spawns)
	}
	vel := b.TakeVelocities()
	if len(vel) != 1 || vel[0] != (PairUpdate{ID: 1, A: 3.25, B: 4}) {
		t.Errorf("TakeVelocities() = %+v, expected [{1 3.25 4}]", vel)
	}
}

func TestRuntimeLoadFileMissing(t *testing.T) {
	rt, _ := newTestRuntime(t)
	err := rt.LoadFile("ghost", filepath.Join(t.TempDir(), "ghost.lua"))
	var le *LoadError
	if !errors.As(err, &le) || le.Phase != PhaseRead {
		t.Errorf("LoadFile() = %v, expected read-phase LoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() = %v, expected to wrap os.ErrNotExist", err)
	}
}

func TestRuntimeClosed(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.Close()
	if err := rt.Load("x", `y = 1`); !errors.Is(err, ErrClosed) {
		t.Errorf("Load() after Close = %v, expected ErrClosed", err)
	}
	if err := rt.Call("log"); !errors.Is(err, ErrClosed) {
		t.Errorf("Call() after Close = %v, expected ErrClosed", err)
	}
}

func TestRuntimeLogUsesLuaPrefix(t *testing.T) {
	var buf bytes.Buffer
	rt, err := NewRuntime(NewBridge(), log.New(&buf))
	if err != nil {
		t.Fatalf("NewRuntime() failed: %v", err)
	}
	defer rt.Close()

	if err := rt.Load("hello", `log("hello from lua")`); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "lua") || !strings.Contains(out, "hello from lua") {
		t.Errorf("log output = %q, expected lua prefix and message", out)
	}
}
