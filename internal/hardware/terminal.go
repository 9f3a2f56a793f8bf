package hardware

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"freedomclock/internal/services/render"
)

// TerminalDisplay renders the frame to stdout with half-block characters,
// two panel rows per text row. It lets the layout be checked on a laptop
// with no panel attached.
type TerminalDisplay struct {
	frame *image.RGBA
	style lipgloss.Style
}

var _ render.Display = (*TerminalDisplay)(nil)

// NewTerminalDisplay creates the preview surface.
func NewTerminalDisplay() *TerminalDisplay {
	return &TerminalDisplay{
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
	}
}

func (t *TerminalDisplay) PowerOn() error { return nil }

func (t *TerminalDisplay) Clear() error {
	t.frame = nil
	return nil
}

// Draw keeps the composed frame for Update.
func (t *TerminalDisplay) Draw(img image.Image) error {
	b := img.Bounds()
	frame := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			frame.Set(x, y, img.At(x, y))
		}
	}
	t.frame = frame
	return nil
}

// Update prints the stored frame.
func (t *TerminalDisplay) Update() error {
	if t.frame == nil {
		return nil
	}

	var sb strings.Builder
	b := t.frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := inked(t.frame, x, y)
			bottom := y+1 < b.Max.Y && inked(t.frame, x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		if y+2 < b.Max.Y {
			sb.WriteRune('\n')
		}
	}

	fmt.Println(t.style.Render(sb.String()))
	return nil
}

func (t *TerminalDisplay) PowerOff() error { return nil }

func inked(img *image.RGBA, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return (299*r+587*g+114*b)/1000 < 0x8000
}
