package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/scriptarena/internal/core"
)

// styleCache memoizes one lipgloss style per colour. Not safe for
// concurrent use; each model owns its own.
type styleCache map[core.RGB]lipgloss.Style

func (c styleCache) style(rgb core.RGB) lipgloss.Style {
	if s, ok := c[rgb]; ok {
		return s
	}
	s := lipgloss.NewStyle()
	if !rgb.IsDefault() {
		s = s.Foreground(lipgloss.Color(rgb.Hex()))
	}
	c[rgb] = s
	return s
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	return renderScreen(s, styleCache{})
}

func renderScreen(s *core.Screen, styles styleCache) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(styles.style(startColor).Render(run.String()))
		}
	}
	return sb.String()
}
