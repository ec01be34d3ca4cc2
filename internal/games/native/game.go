// Package native implements the arena without a script runtime: the same
// world the starter scripts build, with movement, stamina, an orbiting
// agent and camera follow written in Go.
package native

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptarena/internal/config"
	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/registry"
	"github.com/vovakirdan/scriptarena/internal/world"
)

const (
	gridRange   = 5
	gridSpacing = 200.0
)

// Game is the native arena.
type Game struct {
	env    registry.Env
	cfg    core.RuntimeConfig
	view   world.View
	world  *world.World
	player world.Entity
	agent  world.Entity
	orbit  *Orbiter
	state  core.GameState
}

// New creates a native arena with default configuration.
func New() *Game {
	return &Game{
		env: registry.Env{
			Arena:  config.DefaultArenaConfig(),
			Logger: log.Default(),
		},
		view:  world.DefaultView(),
		world: world.New(256),
	}
}

func init() {
	registry.Register("native", func() registry.Game {
		return New()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return "native"
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Native Arena"
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

// Reset rebuilds the world: ground, grid markers, player and agent.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.cfg = cfg
	g.world.Clear()

	ground := g.world.SpawnNow(world.SpriteSpec{W: 2000, H: 2000, Color: core.ColorGround, Z: -1})
	g.world.Mark(ground, world.MarkWorldElement)

	for x := -gridRange; x <= gridRange; x++ {
		for y := -gridRange; y <= gridRange; y++ {
			if x == 0 && y == 0 {
				continue
			}
			e := g.world.SpawnNow(world.SpriteSpec{
				W: 20, H: 20, Color: core.ColorMarker,
				X: float64(x) * gridSpacing, Y: float64(y) * gridSpacing, Z: -0.5,
			})
			g.world.Mark(e, world.MarkWorldElement)
		}
	}

	pc := g.env.Arena.Player
	g.player = g.world.SpawnNow(world.SpriteSpec{W: 50, H: 50, Color: core.ColorPlayer})
	g.world.Mark(g.player, world.MarkPlayer)
	g.world.Mark(g.player, world.MarkCameraTarget)
	g.world.SetMoveSpeed(g.player, pc.MoveSpeed)
	g.world.SetStamina(g.player, world.Stamina{
		Current:  pc.StaminaMax,
		Max:      pc.StaminaMax,
		Drain:    pc.StaminaDrain,
		Recharge: pc.StaminaRecharge,
	})

	g.orbit = NewOrbiter(g.env.Arena.Agent)
	g.agent = g.world.SpawnNow(world.SpriteSpec{
		W: 30, H: 30, Color: core.ColorAgent,
		X: g.orbit.Pos.X, Y: g.orbit.Pos.Y, Z: 0.1,
	})
	g.world.Mark(g.agent, world.MarkAgent)

	g.env.Logger.Debug("native world spawned", "entities", g.world.Len())
	g.updateState()
}

// direction maps held keys to a unit vector; diagonals are normalised.
func direction(in core.InputFrame) core.Vec2 {
	var d core.Vec2
	if in.Pressed("W") || in.Pressed("UP") {
		d.Y++
	}
	if in.Pressed("S") || in.Pressed("DOWN") {
		d.Y--
	}
	if in.Pressed("A") || in.Pressed("LEFT") {
		d.X--
	}
	if in.Pressed("D") || in.Pressed("RIGHT") {
		d.X++
	}
	return d.Normalize()
}

// Step advances the arena by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	dt := in.Delta
	if dt <= 0 {
		dt = g.cfg.FixedDelta()
	}

	// Stamina scales speed: full stamina is full speed, empty is the
	// configured minimum fraction.
	minFrac := g.env.Arena.Player.MinSpeedFraction
	scale := 1.0
	if s, ok := g.world.Stamina(g.player); ok {
		scale = minFrac + (1-minFrac)*s.Ratio()
	}
	vel := direction(in).Scale(g.world.MoveSpeed(g.player) * scale)
	g.world.SetVelocity(g.player, vel.X, vel.Y)

	g.world.Simulate(dt)

	playerPos, _ := g.world.Position(g.player)
	g.orbit.Update(playerPos, dt)
	g.world.SetPosition(g.agent, g.orbit.Pos.X, g.orbit.Pos.Y)

	g.followCamera(dt)
	g.updateState()
	return core.StepResult{State: g.state}
}

// followCamera lerps the camera toward the camera target.
func (g *Game) followCamera(dt float64) {
	target, ok := g.world.First(world.MarkCameraTarget)
	if !ok {
		return
	}
	pos, _ := g.world.Position(target)
	cam := g.world.Camera()
	t := core.ClampF(g.env.Arena.Camera.FollowSpeed*dt, 0, 1)
	g.world.SetCamera(core.Lerp(cam.X, pos.X, t), core.Lerp(cam.Y, pos.Y, t))
}

func (g *Game) updateState() {
	g.state = core.GameState{
		Tick:     g.world.Tick(),
		Entities: g.world.Len(),
		Status:   "agent " + g.orbit.State.String(),
	}
}

// Render draws the world and a one-line HUD.
func (g *Game) Render(dst *core.Screen) {
	world.Render(g.world.Frame(), dst, g.view)

	hud := fmt.Sprintf(" NATIVE  tick %d  entities %d", g.state.Tick, g.state.Entities)
	if s, ok := g.world.Stamina(g.player); ok {
		hud += fmt.Sprintf("  stamina %3.0f%%", s.Ratio()*100)
	}
	dst.DrawText(0, 0, hud, core.ColorHUD)
	dst.DrawText(0, dst.Height()-1, " "+g.state.Status, core.ColorHUD)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.state
}

// Frame implements registry.FrameSource.
func (g *Game) Frame() world.Frame {
	return g.world.Frame()
}

var (
	_ registry.Configurable = (*Game)(nil)
	_ registry.FrameSource  = (*Game)(nil)
)
