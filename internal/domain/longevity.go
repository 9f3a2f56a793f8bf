package domain

// Longevity is the simulated duration a cash balance lasts against an
// inflation-compounded expense, in the device's approximate calendar
// (365-day years, 30-day months, 7-day weeks).
type Longevity struct {
	Years  int
	Months int
	Weeks  int
}

// IsZero reports whether no duration remains at all.
func (l Longevity) IsZero() bool {
	return l.Years == 0 && l.Months == 0 && l.Weeks == 0
}
