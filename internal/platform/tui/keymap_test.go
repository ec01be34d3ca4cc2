package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/scriptarena/internal/core"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want string
	}{
		{"letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}}, "W"},
		{"upper letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}}, "D"},
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, "UP"},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, "SPACE"},
		{"rune space", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}, "SPACE"},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")}, ""},
		{"ctrl", tea.KeyMsg{Type: tea.KeyCtrlA}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyName(tt.msg); got != tt.want {
				t.Errorf("KeyName() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestKeyTrackerHoldWindow(t *testing.T) {
	tr := NewKeyTracker(100 * time.Millisecond)
	start := time.Unix(0, 0)
	tr.Press("w", start)

	frame := core.NewInputFrame()
	tr.Apply(&frame, start.Add(50*time.Millisecond))
	if !frame.Pressed("W") {
		t.Error("W should be held inside the window")
	}

	// Auto-repeat renews the hold.
	tr.Press("w", start.Add(90*time.Millisecond))
	frame.Clear()
	tr.Apply(&frame, start.Add(180*time.Millisecond))
	if !frame.Pressed("W") {
		t.Error("W should be held after a repeat")
	}

	frame.Clear()
	tr.Apply(&frame, start.Add(400*time.Millisecond))
	if frame.Pressed("W") {
		t.Error("W should be released after the window")
	}
	if len(tr.seen) != 0 {
		t.Errorf("expired keys not forgotten: %v", tr.seen)
	}
}

func TestKeyTrackerIgnoresUnnamed(t *testing.T) {
	tr := NewKeyTracker(0)
	if tr.Window != 150*time.Millisecond {
		t.Errorf("default window = %v", tr.Window)
	}
	tr.Press("", time.Now())
	if len(tr.seen) != 0 {
		t.Error("empty key name recorded")
	}
}

func TestKeyTrackerReset(t *testing.T) {
	tr := NewKeyTracker(time.Second)
	now := time.Now()
	tr.Press("a", now)
	tr.Press("UP", now)
	tr.Reset()

	frame := core.NewInputFrame()
	tr.Apply(&frame, now)
	if len(frame.Names()) != 0 {
		t.Errorf("keys after Reset = %v", frame.Names())
	}
}
