package hardware

import (
	"time"

	"go.uber.org/zap"
)

// HostSleeper implements the wake-timer capability on a regular OS: the
// process simply sleeps for the armed interval. Deployments that want true
// suspend run the binary single-shot from an rtcwake or systemd timer
// instead, which gives the same cycle semantics.
type HostSleeper struct {
	logger *zap.Logger
	armed  time.Duration
}

// NewHostSleeper creates a sleeper.
func NewHostSleeper(logger *zap.Logger) *HostSleeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostSleeper{logger: logger}
}

// ScheduleWake arms the next wake interval.
func (s *HostSleeper) ScheduleWake(d time.Duration) {
	s.armed = d
}

// Suspend blocks until the armed interval elapses.
func (s *HostSleeper) Suspend() {
	if s.armed <= 0 {
		return
	}
	s.logger.Info("suspending until next wake", zap.Duration("interval", s.armed))
	time.Sleep(s.armed)
}
