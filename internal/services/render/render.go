// Package render composes the display frame: the freedom-time figures, the
// price and the device telemetry, laid out for a small bistable panel.
// Composition is pure image work; pushing pixels to hardware goes through
// the Display capability.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"freedomclock/internal/domain"
)

// Display is the panel capability: power, clear, draw, commit. The panel is
// write-only; nothing is ever read back.
type Display interface {
	PowerOn() error
	Clear() error
	Draw(img image.Image) error
	Update() error
	PowerOff() error
}

// Panel geometry of the 2.13" class modules the device ships with.
const (
	Width  = 250
	Height = 122
)

const (
	titleText = "FREEDOM TIME"

	titleSize  = 14
	bigSize    = 34
	footerSize = 13

	titleBaseline  = 18
	bigBaseline    = 62
	footerLine1    = 84
	footerLine2    = 101
	footerLine3    = 118
	footerInset    = 6
)

// Renderer owns the parsed font faces and composes frames.
type Renderer struct {
	title  font.Face
	big    font.Face
	footer font.Face
}

// NewRenderer parses the embedded Go fonts into the three faces the layout
// uses.
func NewRenderer() (*Renderer, error) {
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse bold font")
	}
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse regular font")
	}

	title, err := opentype.NewFace(bold, &opentype.FaceOptions{Size: titleSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, errors.Wrap(err, "title face")
	}
	big, err := opentype.NewFace(bold, &opentype.FaceOptions{Size: bigSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, errors.Wrap(err, "figures face")
	}
	footer, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: footerSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, errors.Wrap(err, "footer face")
	}

	return &Renderer{title: title, big: big, footer: footer}, nil
}

// Compose draws the frame onto a fresh white framebuffer. The layout is
// fixed: title, the three duration figures, then price, battery and
// timestamp lines. Wealth and balance are never part of the frame.
func (r *Renderer) Compose(f domain.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	r.drawCentered(img, titleText, r.title, titleBaseline)
	r.drawCentered(img, FormatDuration(f.Longevity), r.big, bigBaseline)
	r.drawLeft(img, FormatPrice(f.PriceUSD), r.footer, footerInset, footerLine1)
	r.drawLeft(img, FormatBattery(f.Battery), r.footer, footerInset, footerLine2)
	r.drawLeft(img, FormatTimestamp(f.Timestamp), r.footer, footerInset, footerLine3)

	return img
}

// Show pushes a composed frame through a full panel refresh.
func (r *Renderer) Show(d Display, f domain.Frame) error {
	if err := d.Clear(); err != nil {
		return errors.Wrap(err, "clear display")
	}
	if err := d.Draw(r.Compose(f)); err != nil {
		return errors.Wrap(err, "draw frame")
	}
	return errors.Wrap(d.Update(), "update display")
}

func (r *Renderer) drawCentered(img *image.RGBA, text string, face font.Face, baseline int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	w := d.MeasureString(text).Round()
	d.Dot = fixed.P((Width-w)/2, baseline)
	d.DrawString(text)
}

func (r *Renderer) drawLeft(img *image.RGBA, text string, face font.Face, x, baseline int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// FormatDuration renders the three figures with their unit suffixes.
func FormatDuration(l domain.Longevity) string {
	return fmt.Sprintf("%dY %dM %dW", l.Years, l.Months, l.Weeks)
}

// FormatPrice truncates the price to whole dollars.
func FormatPrice(usd float64) string {
	return fmt.Sprintf("BTC $%d", int64(usd))
}

// FormatBattery shows the percentage, or the placeholder when the
// measurement path produced nothing usable.
func FormatBattery(b domain.BatteryReading) string {
	if !b.Valid {
		return "BAT " + domain.PlaceholderText
	}
	return fmt.Sprintf("BAT %d%%", b.Percent)
}

// FormatTimestamp passes the formatted time through, defaulting to the
// placeholder when time sync failed.
func FormatTimestamp(ts string) string {
	if ts == "" {
		ts = domain.PlaceholderText
	}
	return "SYNC " + ts
}
