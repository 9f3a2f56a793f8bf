// Package battery estimates the charge level from a single gated analog
// sample of the pack voltage.
package battery

import (
	"math"
	"time"

	"go.uber.org/zap"

	"freedomclock/internal/domain"
)

// AnalogPath is the gated measurement capability: a control line enables the
// voltage divider, one raw sample is taken, and the line is disabled again so
// the divider does not drain the battery during suspend.
type AnalogPath interface {
	Enable() error
	Sample() (uint16, error)
	Disable() error
}

// Default conversion constants for a 12-bit ADC behind a 1:2 divider.
const (
	DefaultADCMax       = 4095
	DefaultRefVolts     = 3.3
	DefaultDividerScale = 2.0
	DefaultSettle       = 10 * time.Millisecond
)

// anchor is one point of the piecewise-linear voltage→percent curve.
type anchor struct {
	volts   float64
	percent float64
}

// Discharge curve for a single LiPo cell, ascending by voltage. Below the
// first anchor the pack is treated as empty, above the last as full.
var anchors = []anchor{
	{3.20, 0},
	{3.30, 2},
	{3.60, 25},
	{3.75, 50},
	{3.85, 70},
	{3.95, 90},
	{4.05, 97},
	{4.15, 100},
}

// Config tunes the raw-sample→voltage conversion.
type Config struct {
	ADCMax       uint16
	RefVolts     float64
	DividerScale float64
	Settle       time.Duration
}

// Estimator reads the pack voltage through an AnalogPath and maps it to a
// percentage over the anchor curve.
type Estimator struct {
	path   AnalogPath
	cfg    Config
	logger *zap.Logger
}

// NewEstimator creates an Estimator. Zero config fields fall back to the
// defaults above.
func NewEstimator(path AnalogPath, cfg Config, logger *zap.Logger) *Estimator {
	if cfg.ADCMax == 0 {
		cfg.ADCMax = DefaultADCMax
	}
	if cfg.RefVolts == 0 {
		cfg.RefVolts = DefaultRefVolts
	}
	if cfg.DividerScale == 0 {
		cfg.DividerScale = DefaultDividerScale
	}
	if cfg.Settle == 0 {
		cfg.Settle = DefaultSettle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{path: path, cfg: cfg, logger: logger}
}

// Read takes one gated sample and converts it to a BatteryReading. Any
// failure along the measurement path yields an invalid reading; the cycle
// renders a placeholder instead of a number and carries on.
func (e *Estimator) Read() domain.BatteryReading {
	if err := e.path.Enable(); err != nil {
		e.logger.Warn("battery measurement path enable failed", zap.Error(err))
		return domain.BatteryReading{}
	}
	defer func() {
		if err := e.path.Disable(); err != nil {
			e.logger.Warn("battery measurement path disable failed", zap.Error(err))
		}
	}()

	time.Sleep(e.cfg.Settle)

	raw, err := e.path.Sample()
	if err != nil {
		e.logger.Warn("battery sample failed", zap.Error(err))
		return domain.BatteryReading{}
	}

	v := float64(raw) / float64(e.cfg.ADCMax) * e.cfg.RefVolts * e.cfg.DividerScale
	if v <= 0 {
		return domain.BatteryReading{}
	}

	return domain.BatteryReading{
		Voltage: v,
		Percent: PercentFromVoltage(v),
		Valid:   true,
	}
}

// PercentFromVoltage interpolates linearly between the anchor points and
// clamps outside the curve. The result is always within [0,100] and is
// non-decreasing in v.
func PercentFromVoltage(v float64) int {
	if v <= anchors[0].volts {
		return int(anchors[0].percent)
	}
	last := anchors[len(anchors)-1]
	if v >= last.volts {
		return int(last.percent)
	}

	for i := 1; i < len(anchors); i++ {
		lo, hi := anchors[i-1], anchors[i]
		if v > hi.volts {
			continue
		}
		t := (v - lo.volts) / (hi.volts - lo.volts)
		p := int(math.Round(lo.percent + t*(hi.percent-lo.percent)))
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		return p
	}

	return int(last.percent)
}
