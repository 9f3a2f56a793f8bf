package render

import (
	"freedomclock/internal/domain"
)

// Screen couples a Renderer with a concrete Display into the panel surface
// the cycle controller drives.
type Screen struct {
	renderer *Renderer
	display  Display
}

// NewScreen wires a renderer to a display.
func NewScreen(r *Renderer, d Display) *Screen {
	return &Screen{renderer: r, display: d}
}

// PowerOn raises the panel power rail.
func (s *Screen) PowerOn() error {
	return s.display.PowerOn()
}

// Show composes and commits one full frame.
func (s *Screen) Show(f domain.Frame) error {
	return s.renderer.Show(s.display, f)
}

// PowerOff drops the rail before suspend so it cannot drain the battery.
func (s *Screen) PowerOff() error {
	return s.display.PowerOff()
}
