// Package scripted implements the arena game driven by hot-reloadable Lua
// scripts. The host owns the world, rendering and input; scripts reach it
// only through the scripting bridge.
package scripted

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptarena/internal/config"
	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/registry"
	"github.com/vovakirdan/scriptarena/internal/scripting"
	"github.com/vovakirdan/scriptarena/internal/world"
)

// Script entry points the host invokes.
const (
	FnSpawnWorld   = "spawn_world"
	FnSpawnPlayer  = "spawn_player"
	FnUpdatePlayer = "update_player"
	FnUpdateCamera = "update_camera"
)

// EntryPoints lists the entry points in the order the host calls them.
func EntryPoints() []string {
	return []string{FnSpawnWorld, FnSpawnPlayer, FnUpdatePlayer, FnUpdateCamera}
}

// Game runs the per-tick host sequence: input snapshot, script updates,
// host simulation, read-back, command processing and reload check.
type Game struct {
	env   registry.Env
	cfg   core.RuntimeConfig
	view  world.View
	world *world.World

	bridge    *scripting.Bridge
	rt        *scripting.Runtime
	processor *scripting.Processor
	reloader  *scripting.Reloader
	watcher   *scripting.Watcher
	slot      scripting.PlayerSlot

	embedded bool            // scripts came from the binary, not disk
	reported map[string]bool // per-tick failures already logged
	reloads  int
	failures int
	status   string
	state    core.GameState
}

// New creates a scripted game with default configuration.
func New() *Game {
	return &Game{
		env: registry.Env{
			Arena:  config.DefaultArenaConfig(),
			Logger: log.Default(),
		},
		view:     world.DefaultView(),
		world:    world.New(256),
		reported: make(map[string]bool),
	}
}

func init() {
	registry.Register("scripted", func() registry.Game {
		return New()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return "scripted"
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Scripted Arena"
}

// Configure implements registry.Configurable.
func (g *Game) Configure(env registry.Env) {
	if env.Logger == nil {
		env.Logger = log.Default()
	}
	g.env = env
	g.view = world.View{
		UnitsPerCol: env.Arena.View.UnitsPerColumn,
		UnitsPerRow: env.Arena.View.UnitsPerRow,
	}
}

func (g *Game) logger() *log.Logger {
	return g.env.Logger
}

// Reset builds a fresh world and interpreter, loads the scripts and runs
// the spawn entry points. A scripting failure leaves an empty world; it is
// never fatal.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.cfg = cfg
	g.shutdownRuntime()

	g.world.Clear()
	g.bridge = scripting.NewBridge()
	g.slot.Reset()
	g.reported = make(map[string]bool)
	g.status = ""

	rt, err := scripting.NewRuntime(g.bridge, g.logger())
	if err != nil {
		g.logger().Error("scripting unavailable", "error", err)
		g.status = "scripting unavailable"
		g.updateState()
		return
	}
	g.rt = rt
	g.processor = scripting.NewProcessor(g.bridge, g.world, &g.slot, g.logger())

	g.startWatcher()
	g.reloader = scripting.NewReloader(rt, g.eventSource(), g.env.Arena.Scripts.Extension, g.logger())
	if g.env.Journal != nil {
		g.reloader.SetJournal(g.env.Journal)
	}

	g.loadScripts()
	g.spawn()
	g.processor.Process()
	g.updateState()
}

// eventSource returns the watcher as an EventSource, or nil when there is
// none. A nil *Watcher must not end up inside the interface.
func (g *Game) eventSource() scripting.EventSource {
	if g.watcher == nil {
		return nil
	}
	return g.watcher
}

// startWatcher starts the directory watcher once; it survives resets.
func (g *Game) startWatcher() {
	sc := g.env.Arena.Scripts
	if g.watcher != nil || !sc.HotReload {
		return
	}
	if info, err := os.Stat(sc.Dir); err != nil || !info.IsDir() {
		return
	}
	w, err := scripting.NewWatcher(sc.Dir, sc.Debounce, sc.EventBuffer, g.logger())
	if err != nil {
		g.logger().Warn("hot reload unavailable", "dir", sc.Dir, "error", err)
		return
	}
	g.watcher = w
}

// loadScripts loads the configured scripts from disk, or the embedded
// starter scripts when the directory does not exist.
func (g *Game) loadScripts() {
	sc := g.env.Arena.Scripts
	if info, err := os.Stat(sc.Dir); err == nil && info.IsDir() {
		g.embedded = false
		for _, res := range g.reloader.LoadInitial(sc.Dir, sc.Names) {
			g.noteResult(res)
		}
		return
	}

	g.embedded = true
	g.logger().Warn("script directory not found, using built-in scripts", "dir", sc.Dir)
	for _, name := range sc.Names {
		src, ok := StarterSource(name)
		if !ok {
			continue
		}
		outcome, err := g.rt.Reload(name, src)
		g.noteResult(scripting.ReloadResult{Name: name, Outcome: outcome, Err: err})
	}
}

// spawn runs spawn_world and spawn_player. The player id waits in the slot
// until the processor realizes it.
func (g *Game) spawn() {
	if err := g.rt.Call(FnSpawnWorld); err != nil {
		g.reportOnce(FnSpawnWorld, err)
	}
	id, err := g.rt.CallSpawn(FnSpawnPlayer)
	if err != nil {
		g.reportOnce(FnSpawnPlayer, err)
		return
	}
	g.slot.Await(id)
}

// Step advances the arena by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	dt := in.Delta
	if dt <= 0 {
		dt = g.cfg.FixedDelta()
	}

	if g.rt != nil {
		g.bridge.SetDelta(dt)
		g.bridge.ClearKeys()
		for _, name := range in.Names() {
			g.bridge.SetKeyPressed(name, true)
		}
		if g.slot.Bound() {
			id := g.slot.ID()
			g.callUpdate(FnUpdatePlayer, id, dt)
			g.callUpdate(FnUpdateCamera, id, dt)
		}
	}

	g.world.Simulate(dt)

	if g.rt != nil {
		g.processor.ReadBack()
		g.processor.Process()
		for _, res := range g.reloader.Check() {
			g.noteResult(res)
		}
	}

	g.updateState()
	return core.StepResult{State: g.state}
}

func (g *Game) callUpdate(fn string, id scripting.ScriptID, dt float64) {
	if err := g.rt.CallUpdate(fn, id, dt); err != nil {
		g.reportOnce(fn, err)
	}
}

// reportOnce logs a per-tick failure the first time its message is seen.
// A missing entry point is a warning; anything else is an error.
func (g *Game) reportOnce(fn string, err error) {
	key := fn + ": " + err.Error()
	if g.reported[key] {
		return
	}
	g.reported[key] = true

	if errors.Is(err, scripting.ErrFunctionNotFound) {
		g.logger().Warn("script entry point missing", "function", fn)
		return
	}
	g.logger().Error("script call failed", "function", fn, "error", err)
	g.status = fmt.Sprintf("%s failed", fn)
}

func (g *Game) noteResult(res scripting.ReloadResult) {
	switch res.Outcome {
	case scripting.OutcomeFailed:
		g.failures++
		g.status = fmt.Sprintf("%s: load failed", res.Name)
	case scripting.OutcomeReloaded:
		g.reloads++
		g.status = fmt.Sprintf("reloaded %s", res.Name)
		// new code gets a fresh chance to report its own failures
		g.reported = make(map[string]bool)
	case scripting.OutcomeLoaded:
		g.reported = make(map[string]bool)
	}
}

func (g *Game) updateState() {
	g.state = core.GameState{
		Tick:     g.world.Tick(),
		Entities: g.world.Len(),
		Scripted: g.rt != nil,
		Status:   g.status,
	}
}

// Render draws the world and a one-line HUD.
func (g *Game) Render(dst *core.Screen) {
	world.Render(g.world.Frame(), dst, g.view)

	hud := fmt.Sprintf(" SCRIPTED  tick %d  entities %d", g.state.Tick, g.state.Entities)
	if e, ok := g.slot.Entity(); ok {
		if s, ok := g.world.Stamina(e); ok {
			hud += fmt.Sprintf("  stamina %3.0f%%", s.Ratio()*100)
		}
	}
	if g.embedded {
		hud += "  (built-in scripts)"
	}
	dst.DrawText(0, 0, hud, core.ColorHUD)

	if g.status != "" {
		dst.DrawText(0, dst.Height()-1, " "+g.status, core.ColorWarn)
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.state
}

// Frame implements registry.FrameSource.
func (g *Game) Frame() world.Frame {
	return g.world.Frame()
}

// Stats reports how many reloads succeeded and failed since the game was
// created.
func (g *Game) Stats() (reloads, failures int) {
	return g.reloads, g.failures
}

func (g *Game) shutdownRuntime() {
	if g.rt != nil {
		g.rt.Close()
		g.rt = nil
	}
	g.processor = nil
	g.reloader = nil
}

// Close releases the interpreter and the watcher.
func (g *Game) Close() error {
	g.shutdownRuntime()
	if g.watcher != nil {
		err := g.watcher.Close()
		g.watcher = nil
		return err
	}
	return nil
}

var (
	_ registry.Configurable = (*Game)(nil)
	_ registry.FrameSource  = (*Game)(nil)
	_ registry.Closer       = (*Game)(nil)
)
