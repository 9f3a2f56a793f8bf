// Package domain defines the core data structures carried through a wake cycle.
package domain

// ValueTextLimit caps the stored textual payloads. Broker payloads longer
// than this are truncated before they reach the cache.
const ValueTextLimit = 15

// PlaceholderText is the sentinel shown before any value was ever fetched.
const PlaceholderText = "--"

// RetainedState is the only memory that survives a suspend/wake cycle:
// the last good price and balance payloads plus the last battery reading.
// It is owned by the cycle controller; a field is overwritten only after a
// successful fetch of the corresponding value.
type RetainedState struct {
	LastPriceText      string  `json:"last_price_text"`
	LastBalanceText    string  `json:"last_balance_text"`
	LastBatteryVoltage float64 `json:"last_battery_voltage"`
	LastBatteryPercent int     `json:"last_battery_percent"`
}

// NewRetainedState returns the first-power-on sentinel state.
func NewRetainedState() RetainedState {
	return RetainedState{
		LastPriceText:      PlaceholderText,
		LastBalanceText:    PlaceholderText,
		LastBatteryVoltage: 0,
		LastBatteryPercent: -1,
	}
}

// TruncateValueText clips a broker payload to the cache capacity.
func TruncateValueText(s string) string {
	if len(s) > ValueTextLimit {
		return s[:ValueTextLimit]
	}
	return s
}
