package core

import (
	"fmt"
	"math"
)

// RGB is a colour with normalized channels in [0, 1], the form scripts use.
type RGB struct {
	R, G, B float64
}

// Predefined colours used by the native world and the HUD.
var (
	ColorDefault = RGB{-1, -1, -1} // terminal default foreground
	ColorGround  = RGB{0.176, 0.353, 0.153}
	ColorMarker  = RGB{0.333, 0.333, 0.333}
	ColorPlayer  = RGB{0.204, 0.596, 0.859}
	ColorAgent   = RGB{0.906, 0.298, 0.235}
	ColorHUD     = RGB{0.9, 0.9, 0.9}
	ColorWarn    = RGB{0.95, 0.77, 0.06}
)

// NewRGB builds a colour, clamping each channel to [0, 1].
func NewRGB(r, g, b float64) RGB {
	return RGB{R: clamp01(r), G: clamp01(g), B: clamp01(b)}
}

// IsDefault reports whether c means "use the terminal default colour".
func (c RGB) IsDefault() bool {
	return c == ColorDefault
}

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	if c.IsDefault() {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return ClampF(v, 0, 1)
}
