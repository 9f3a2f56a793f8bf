package hardware

import (
	"time"
)

// syncedAfter is the plausibility floor: a clock reading before this year
// means the system never got time sync and the timestamp is meaningless.
const syncedAfter = 2020

// SyncedClock reports local time only once the system clock looks synced.
// On the device the network stack sets the clock via NTP right after
// connecting; early in boot the reading can still be at the epoch.
type SyncedClock struct{}

// LocalTime waits up to timeout for a plausible clock, polling briefly, and
// reports false when sync never happened.
func (SyncedClock) LocalTime(timeout time.Duration) (time.Time, bool) {
	deadline := time.Now().Add(timeout)
	for {
		now := time.Now()
		if now.Year() >= syncedAfter {
			return now, true
		}
		if now.After(deadline) {
			return time.Time{}, false
		}
		time.Sleep(100 * time.Millisecond)
	}
}
