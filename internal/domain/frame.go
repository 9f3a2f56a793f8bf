package domain

// Frame is the composed visual payload for one display refresh. Wealth and
// balance never appear here: only the derived duration, the price, and
// device telemetry are shown.
type Frame struct {
	Longevity Longevity
	// PriceUSD is the sanitized price; the renderer truncates it to an
	// integer figure.
	PriceUSD float64
	Battery  BatteryReading
	// Timestamp is the already formatted local time, or PlaceholderText
	// when time sync failed.
	Timestamp string
}
