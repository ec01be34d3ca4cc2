package core

import (
	"sort"
	"strings"
)

// InputFrame is the per-tick input snapshot handed to a game: the set of
// currently pressed key names (uppercase) and the frame delta in seconds.
type InputFrame struct {
	Keys  map[string]bool
	Delta float64
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Keys: make(map[string]bool),
	}
}

// Press marks a key as held for this frame. Names are case-insensitive.
func (f *InputFrame) Press(name string) {
	if f.Keys == nil {
		f.Keys = make(map[string]bool)
	}
	f.Keys[strings.ToUpper(name)] = true
}

// Pressed reports whether the named key is held this frame.
func (f InputFrame) Pressed(name string) bool {
	if f.Keys == nil {
		return false
	}
	return f.Keys[strings.ToUpper(name)]
}

// Names returns the pressed key names in sorted order.
func (f InputFrame) Names() []string {
	names := make([]string, 0, len(f.Keys))
	for k, down := range f.Keys {
		if down {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Clear releases every key and zeroes the delta.
func (f *InputFrame) Clear() {
	for k := range f.Keys {
		delete(f.Keys, k)
	}
	f.Delta = 0
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Keys {
		clone.Keys[k] = v
	}
	clone.Delta = f.Delta
	return clone
}
