package observer

import (
	"github.com/vovakirdan/scriptarena/internal/world"
)

// ProtocolVersion is sent in every message so clients can reject
// streams they do not understand.
const ProtocolVersion = 1

// SpriteMsg is one drawable entity on the wire.
type SpriteMsg struct {
	ID      uint32      `json:"id"`
	Gen     uint32      `json:"gen"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Z       float64     `json:"z"`
	W       float64     `json:"w"`
	H       float64     `json:"h"`
	Color   string      `json:"color"`
	Markers []string    `json:"markers,omitempty"`
	Health  *[2]float64 `json:"health,omitempty"` // current, max
}

// FrameMsg is one world snapshot on the wire.
type FrameMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion int         `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	Camera          [2]float64  `json:"camera"`
	Sprites         []SpriteMsg `json:"sprites"`
}

// BootstrapResponse describes the stream before a client connects.
type BootstrapResponse struct {
	ProtocolVersion int    `json:"protocol_version"`
	GameID          string `json:"game_id"`
	Viewers         int    `json:"viewers"`
	Tick            uint64 `json:"tick"`
}

var markerOrder = []world.Marker{
	world.MarkPlayer,
	world.MarkCameraTarget,
	world.MarkWorldElement,
	world.MarkAgent,
}

// EncodeFrame converts a world frame to its wire form.
func EncodeFrame(f world.Frame) FrameMsg {
	msg := FrameMsg{
		Type:            "FRAME",
		ProtocolVersion: ProtocolVersion,
		Tick:            f.Tick,
		Camera:          [2]float64{f.Camera.X, f.Camera.Y},
		Sprites:         make([]SpriteMsg, 0, len(f.Sprites)),
	}
	for _, s := range f.Sprites {
		sm := SpriteMsg{
			ID:    s.Entity.ID,
			Gen:   s.Entity.Version,
			X:     s.X,
			Y:     s.Y,
			Z:     s.Z,
			W:     s.W,
			H:     s.H,
			Color: s.Color.Hex(),
		}
		for _, m := range markerOrder {
			if s.Markers&m != 0 {
				sm.Markers = append(sm.Markers, m.String())
			}
		}
		if s.Health != nil {
			sm.Health = &[2]float64{s.Health.Current, s.Health.Max}
		}
		msg.Sprites = append(msg.Sprites, sm)
	}
	return msg
}
