package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/registry"
	"github.com/vovakirdan/scriptarena/internal/world"
)

// maxDelta caps the frame delta after a stall so the world never jumps.
const maxDelta = 0.1

// Options tune a play session.
type Options struct {
	// HoldWindow is how long a key counts as held after its last press.
	HoldWindow time.Duration
	// Publish, when set, receives the world frame after every tick.
	Publish func(world.Frame)
}

// Model is the Bubble Tea model for playing one game locally.
type Model struct {
	game     registry.Game
	screen   *core.Screen
	config   core.RuntimeConfig
	opts     Options
	keys     KeyMap
	help     help.Model
	tracker  *KeyTracker
	input    core.InputFrame
	styles   styleCache
	last     time.Time
	state    core.GameState
	quitting bool
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return Model{
		game:    game,
		screen:  core.NewScreen(cfg.ScreenW, playHeight(cfg.ScreenH)),
		config:  cfg,
		opts:    opts,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		tracker: NewKeyTracker(opts.HoldWindow),
		input:   core.NewInputFrame(),
		styles:  styleCache{},
	}
}

// playHeight leaves the last row for the help footer.
func playHeight(h int) int {
	if h > 1 {
		return h - 1
	}
	return h
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg, time.Now())

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, playHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg, now time.Time) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m.config.Seed = now.UnixNano()
		m.game.Reset(m.config)
		m.tracker.Reset()
		m.last = time.Time{}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	m.tracker.Press(KeyName(msg), now)
	return m, nil
}

// handleTick advances the game by the real time since the last tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	delta := m.config.FixedDelta()
	if !m.last.IsZero() {
		delta = core.ClampF(now.Sub(m.last).Seconds(), 0, maxDelta)
	}
	m.last = now

	m.input.Clear()
	m.tracker.Apply(&m.input, now)
	m.input.Delta = delta

	result := m.game.Step(m.input)
	m.state = result.State

	if m.opts.Publish != nil {
		if fs, ok := m.game.(registry.FrameSource); ok {
			m.opts.Publish(fs.Frame())
		}
	}

	return m, tickCmd(m.config.TickRate)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	m.game.Render(m.screen)
	return renderScreen(m.screen, m.styles) + "\n" + m.help.View(m.keys)
}

// Run starts the Bubble Tea program with the given game.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
