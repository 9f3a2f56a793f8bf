// Package hardware provides the concrete capability implementations: the
// e-paper panel and battery ADC over periph.io SPI/GPIO, the connectivity
// probe, the host wake timer, the synced clock, and a terminal preview
// panel for development without the device.
package hardware

import (
	"image"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"freedomclock/internal/services/render"
)

// SSD1680 command set subset used by the driver.
const (
	epdCmdDriverOutput  = 0x01
	epdCmdDeepSleep     = 0x10
	epdCmdDataEntry     = 0x11
	epdCmdSWReset       = 0x12
	epdCmdMasterActive  = 0x20
	epdCmdUpdateControl = 0x22
	epdCmdWriteRAM      = 0x24
	epdCmdBorder        = 0x3C
	epdCmdRAMXRange     = 0x44
	epdCmdRAMYRange     = 0x45
	epdCmdRAMXCount     = 0x4E
	epdCmdRAMYCount     = 0x4F
)

const epdBusyTimeout = 5 * time.Second

// EPDConfig names the SPI port and control pins of the panel.
type EPDConfig struct {
	SPIPort string
	DCPin   string
	RstPin  string
	BusyPin string
}

// EPD drives an SSD1680-class bistable panel. It implements render.Display.
type EPD struct {
	port spi.PortCloser
	conn spi.Conn
	dc   gpio.PinIO
	rst  gpio.PinIO
	busy gpio.PinIO
	buf  []byte
}

var _ render.Display = (*EPD)(nil)

const epdRowBytes = (render.Width + 7) / 8

// NewEPD opens the SPI port and claims the control pins.
func NewEPD(cfg EPDConfig) (*EPD, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "init periph host")
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, errors.Wrapf(err, "open spi port %q", cfg.SPIPort)
	}
	conn, err := port.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, errors.Wrap(err, "connect spi")
	}

	dc := gpioreg.ByName(cfg.DCPin)
	rst := gpioreg.ByName(cfg.RstPin)
	busy := gpioreg.ByName(cfg.BusyPin)
	if dc == nil || rst == nil || busy == nil {
		port.Close()
		return nil, errors.Errorf("display pins not found: dc=%q rst=%q busy=%q", cfg.DCPin, cfg.RstPin, cfg.BusyPin)
	}
	if err := busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "configure busy pin")
	}

	return &EPD{
		port: port,
		conn: conn,
		dc:   dc,
		rst:  rst,
		busy: busy,
		buf:  make([]byte, epdRowBytes*render.Height),
	}, nil
}

// PowerOn resets the controller and runs the init sequence.
func (e *EPD) PowerOn() error {
	if err := e.reset(); err != nil {
		return err
	}
	if err := e.command(epdCmdSWReset); err != nil {
		return err
	}
	if err := e.waitIdle(); err != nil {
		return err
	}

	steps := []struct {
		cmd  byte
		data []byte
	}{
		{epdCmdDriverOutput, []byte{byte((render.Height - 1) & 0xFF), byte((render.Height - 1) >> 8), 0x00}},
		{epdCmdDataEntry, []byte{0x03}},
		{epdCmdRAMXRange, []byte{0x00, epdRowBytes - 1}},
		{epdCmdRAMYRange, []byte{0x00, 0x00, byte((render.Height - 1) & 0xFF), byte((render.Height - 1) >> 8)}},
		{epdCmdBorder, []byte{0x05}},
	}
	for _, s := range steps {
		if err := e.command(s.cmd, s.data...); err != nil {
			return err
		}
	}
	return nil
}

// Clear fills the framebuffer with white.
func (e *EPD) Clear() error {
	for i := range e.buf {
		e.buf[i] = 0xFF
	}
	return nil
}

// Draw thresholds the image into the 1-bit framebuffer. Anything darker
// than mid grey becomes ink.
func (e *EPD) Draw(img image.Image) error {
	b := img.Bounds()
	for y := 0; y < render.Height && y < b.Dy(); y++ {
		for x := 0; x < render.Width && x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lum := (299*r + 587*g + 114*bl) / 1000
			idx := y*epdRowBytes + x/8
			mask := byte(0x80 >> (x % 8))
			if lum < 0x8000 {
				e.buf[idx] &^= mask
			} else {
				e.buf[idx] |= mask
			}
		}
	}
	return nil
}

// Update writes the framebuffer to controller RAM and triggers a full
// refresh, blocking until the panel settles.
func (e *EPD) Update() error {
	if err := e.command(epdCmdRAMXCount, 0x00); err != nil {
		return err
	}
	if err := e.command(epdCmdRAMYCount, 0x00, 0x00); err != nil {
		return err
	}
	if err := e.command(epdCmdWriteRAM, e.buf...); err != nil {
		return err
	}
	if err := e.command(epdCmdUpdateControl, 0xF7); err != nil {
		return err
	}
	if err := e.command(epdCmdMasterActive); err != nil {
		return err
	}
	return e.waitIdle()
}

// PowerOff puts the controller into deep sleep; only a hardware reset wakes
// it again.
func (e *EPD) PowerOff() error {
	return e.command(epdCmdDeepSleep, 0x01)
}

// Close releases the SPI port.
func (e *EPD) Close() error {
	return e.port.Close()
}

func (e *EPD) reset() error {
	if err := e.rst.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "reset low")
	}
	time.Sleep(10 * time.Millisecond)
	if err := e.rst.Out(gpio.High); err != nil {
		return errors.Wrap(err, "reset high")
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

func (e *EPD) command(cmd byte, data ...byte) error {
	if err := e.dc.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "dc low")
	}
	if err := e.conn.Tx([]byte{cmd}, nil); err != nil {
		return errors.Wrapf(err, "command 0x%02X", cmd)
	}
	if len(data) == 0 {
		return nil
	}
	if err := e.dc.Out(gpio.High); err != nil {
		return errors.Wrap(err, "dc high")
	}
	return errors.Wrapf(e.conn.Tx(data, nil), "data for 0x%02X", cmd)
}

func (e *EPD) waitIdle() error {
	deadline := time.Now().Add(epdBusyTimeout)
	for e.busy.Read() == gpio.High {
		if time.Now().After(deadline) {
			return errors.New("panel busy timeout")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}
