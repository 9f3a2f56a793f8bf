package domain

// FetchResult is the transient outcome of one acquisition pass. It is
// produced fresh every wake cycle and consumed immediately; only the
// payload texts of received values are copied into RetainedState.
type FetchResult struct {
	PriceText       string
	BalanceText     string
	PriceReceived   bool
	BalanceReceived bool
	// Offline marks a cycle that never reached the broker. Rendering then
	// runs entirely from retained values.
	Offline bool
}

// Complete reports whether both values arrived this cycle.
func (f FetchResult) Complete() bool {
	return f.PriceReceived && f.BalanceReceived
}
