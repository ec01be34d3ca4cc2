package world

import (
	"math"

	"github.com/vovakirdan/scriptarena/internal/core"
)

// View maps world units onto terminal cells. Terminal cells are roughly
// twice as tall as they are wide, so rows usually cover more units.
type View struct {
	UnitsPerCol float64
	UnitsPerRow float64
}

// DefaultView fits a 1280x720 area of world units onto an 80x24 terminal.
func DefaultView() View {
	return View{UnitsPerCol: 16, UnitsPerRow: 32}
}

func (v View) normalized() View {
	if v.UnitsPerCol <= 0 {
		v.UnitsPerCol = DefaultView().UnitsPerCol
	}
	if v.UnitsPerRow <= 0 {
		v.UnitsPerRow = DefaultView().UnitsPerRow
	}
	return v
}

// Project converts a world point to a screen cell, camera centred.
// World Y grows upward; screen rows grow downward.
func (v View) Project(p, camera core.Vec2, screenW, screenH int) (int, int) {
	v = v.normalized()
	col := float64(screenW)/2 + (p.X-camera.X)/v.UnitsPerCol
	row := float64(screenH)/2 - (p.Y-camera.Y)/v.UnitsPerRow
	return int(math.Floor(col)), int(math.Floor(row))
}

// Render rasterises f into dst. Sprites are drawn back to front; every
// sprite covers at least one cell.
func Render(f Frame, dst *core.Screen, view View) {
	view = view.normalized()
	for _, s := range f.Sprites {
		x0, y0 := view.Project(core.V(s.X-s.W/2, s.Y+s.H/2), f.Camera, dst.Width(), dst.Height())
		w := int(math.Round(s.W / view.UnitsPerCol))
		h := int(math.Round(s.H / view.UnitsPerRow))
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		fill := '█'
		if s.Markers&MarkWorldElement != 0 {
			fill = '░'
		}
		dst.FillRect(core.NewRect(x0, y0, w, h), fill, s.Color)
	}
}
