package hardware

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"freedomclock/internal/services/battery"
)

// MCP3008 is a 10-bit SPI ADC behind a gated voltage divider; the gate pin
// powers the divider only while a sample is taken. It implements
// battery.AnalogPath.
type MCP3008 struct {
	port    spi.PortCloser
	conn    spi.Conn
	gate    gpio.PinIO
	channel int
}

var _ battery.AnalogPath = (*MCP3008)(nil)

// MCP3008Max is the full-scale raw value of the converter.
const MCP3008Max = 1023

// NewMCP3008 opens the converter on the given SPI port and claims the
// divider gate pin.
func NewMCP3008(spiPort, gatePin string, channel int) (*MCP3008, error) {
	if channel < 0 || channel > 7 {
		return nil, errors.Errorf("adc channel %d out of range", channel)
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "init periph host")
	}

	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, errors.Wrapf(err, "open spi port %q", spiPort)
	}
	conn, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, errors.Wrap(err, "connect spi")
	}

	gate := gpioreg.ByName(gatePin)
	if gate == nil {
		port.Close()
		return nil, errors.Errorf("gate pin %q not found", gatePin)
	}

	return &MCP3008{port: port, conn: conn, gate: gate, channel: channel}, nil
}

// Enable powers the divider.
func (m *MCP3008) Enable() error {
	return errors.Wrap(m.gate.Out(gpio.High), "enable divider gate")
}

// Sample reads one single-ended conversion.
func (m *MCP3008) Sample() (uint16, error) {
	tx := []byte{0x01, byte(0x80 | m.channel<<4), 0x00}
	rx := make([]byte, 3)
	if err := m.conn.Tx(tx, rx); err != nil {
		return 0, errors.Wrap(err, "adc transfer")
	}
	return uint16(rx[1]&0x03)<<8 | uint16(rx[2]), nil
}

// Disable cuts the divider so it cannot drain the pack during suspend.
func (m *MCP3008) Disable() error {
	return errors.Wrap(m.gate.Out(gpio.Low), "disable divider gate")
}

// Close releases the SPI port.
func (m *MCP3008) Close() error {
	return m.port.Close()
}

// NullAnalogPath is the no-hardware stand-in: every sample fails, which the
// estimator turns into an invalid reading and the display into "--".
type NullAnalogPath struct{}

func (NullAnalogPath) Enable() error { return nil }

func (NullAnalogPath) Sample() (uint16, error) {
	return 0, errors.New("no analog path on this host")
}

func (NullAnalogPath) Disable() error { return nil }
