package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/scriptarena/internal/core"
)

// KeyMap holds the bindings shown in the help footer.
type KeyMap struct {
	Move    key.Binding
	Action  key.Binding
	Restart key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Restart, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Action},
		{k.Restart, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the arena bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Move: key.NewBinding(
			key.WithKeys("w", "a", "s", "d", "up", "down", "left", "right"),
			key.WithHelp("wasd/arrows", "move"),
		),
		Action: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "action"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyName converts a Bubble Tea key message to the name scripts query:
// letters and named keys upper-cased, space as "SPACE".
// Returns "" for keys with no script-visible name.
func KeyName(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeySpace:
		return "SPACE"
	case tea.KeyUp:
		return "UP"
	case tea.KeyDown:
		return "DOWN"
	case tea.KeyLeft:
		return "LEFT"
	case tea.KeyRight:
		return "RIGHT"
	case tea.KeyEnter:
		return "ENTER"
	case tea.KeyEsc:
		return "ESCAPE"
	case tea.KeyTab:
		return "TAB"
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return ""
		}
		if msg.Runes[0] == ' ' {
			return "SPACE"
		}
		return strings.ToUpper(string(msg.Runes))
	}
	return ""
}

// KeyTracker turns key press events into held keys. Terminals report
// presses and auto-repeats but never releases, so a key counts as held
// until Window has passed since its last press.
type KeyTracker struct {
	Window time.Duration
	seen   map[string]time.Time
}

// NewKeyTracker creates a tracker with the given hold window.
func NewKeyTracker(window time.Duration) *KeyTracker {
	if window <= 0 {
		window = 150 * time.Millisecond
	}
	return &KeyTracker{
		Window: window,
		seen:   make(map[string]time.Time),
	}
}

// Press records that name was pressed at now.
func (t *KeyTracker) Press(name string, now time.Time) {
	if name == "" {
		return
	}
	t.seen[strings.ToUpper(name)] = now
}

// Apply presses every key still held at now into frame and forgets
// the expired ones.
func (t *KeyTracker) Apply(frame *core.InputFrame, now time.Time) {
	for name, at := range t.seen {
		if now.Sub(at) > t.Window {
			delete(t.seen, name)
			continue
		}
		frame.Press(name)
	}
}

// Reset forgets every key.
func (t *KeyTracker) Reset() {
	for name := range t.seen {
		delete(t.seen, name)
	}
}
