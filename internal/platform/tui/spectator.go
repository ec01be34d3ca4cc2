package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/scriptarena/internal/core"
	"github.com/vovakirdan/scriptarena/internal/spectate"
	"github.com/vovakirdan/scriptarena/internal/world"
)

// FrameMsg carries a frame received from the hub.
type FrameMsg world.Frame

// hubClosedMsg is sent when the subscriber is closed by the hub.
type hubClosedMsg struct{}

// SpectatorModel renders frames published by a running game. It is
// read-only: viewers cannot send input to the host.
type SpectatorModel struct {
	sub      *spectate.Subscriber
	hub      *spectate.Hub
	screen   *core.Screen
	view     world.View
	keys     KeyMap
	help     help.Model
	styles   styleCache
	frame    world.Frame
	hasFrame bool
	title    string
	quitting bool
}

// NewSpectatorModel subscribes to hub and renders its frames at w×h.
func NewSpectatorModel(hub *spectate.Hub, view world.View, title string, w, h int) SpectatorModel {
	keys := DefaultKeyMap()
	keys.Move.SetEnabled(false)
	keys.Action.SetEnabled(false)
	keys.Restart.SetEnabled(false)
	return SpectatorModel{
		sub:    hub.Subscribe("S"),
		hub:    hub,
		screen: core.NewScreen(w, playHeight(h)),
		view:   view,
		keys:   keys,
		help:   help.New(),
		styles: styleCache{},
		title:  title,
	}
}

// waitFrame blocks until the next frame or the subscriber closes.
func waitFrame(sub *spectate.Subscriber) tea.Cmd {
	return func() tea.Msg {
		select {
		case f := <-sub.Frames():
			return FrameMsg(f)
		case <-sub.Done():
			return hubClosedMsg{}
		}
	}
}

// Init starts waiting for frames.
func (m SpectatorModel) Init() tea.Cmd {
	return waitFrame(m.sub)
}

// Update handles messages.
func (m SpectatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, playHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case FrameMsg:
		m.frame = world.Frame(msg)
		m.hasFrame = true
		return m, waitFrame(m.sub)

	case hubClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SpectatorModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.hub.Unsubscribe(m.sub)
	return m, tea.Quit
}

// View renders the latest frame.
func (m SpectatorModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	if m.hasFrame {
		world.Render(m.frame, m.screen, m.view)
		m.screen.DrawText(0, 0, fmt.Sprintf(" WATCHING %s  tick %d  sprites %d ",
			m.title, m.frame.Tick, len(m.frame.Sprites)), core.ColorHUD)
	} else {
		m.screen.DrawText(0, 0, " waiting for the host... ", core.ColorWarn)
	}
	return renderScreen(m.screen, m.styles) + "\n" + m.help.View(m.keys)
}

// Close releases the model's subscription.
func (m SpectatorModel) Close() {
	m.hub.Unsubscribe(m.sub)
}
