package domain

// BatteryReading is one fresh battery measurement. Percent is a monotonic
// non-decreasing function of Voltage over the estimator's anchor curve.
type BatteryReading struct {
	Voltage float64
	Percent int
	// Valid is false when the sample path produced no usable voltage;
	// the display then shows a placeholder instead of a percentage.
	Valid bool
}
