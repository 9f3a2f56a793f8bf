// Package cycle sequences one wake of the device: power the panel, measure
// the battery, acquire values, simulate, render, persist, and arm the next
// wake. Every wake is a fresh, bounded, terminating run; RetainedState is
// the only memory carried across.
package cycle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"freedomclock/internal/domain"
	"freedomclock/internal/services/sanitize"
	"freedomclock/internal/services/simulate"
)

// Panel is the composed display surface (renderer plus hardware).
type Panel interface {
	PowerOn() error
	Show(f domain.Frame) error
	PowerOff() error
}

// BatteryReader takes one gated battery measurement.
type BatteryReader interface {
	Read() domain.BatteryReading
}

// Acquirer runs one bounded acquisition pass.
type Acquirer interface {
	Fetch(ctx context.Context) domain.FetchResult
}

// Store persists RetainedState across suspend.
type Store interface {
	Load() (domain.RetainedState, error)
	Save(state domain.RetainedState) error
}

// Clock reports synced local time, or false when sync never happened.
type Clock interface {
	LocalTime(timeout time.Duration) (time.Time, bool)
}

// Sleeper arms the wake timer and suspends. Suspend does not return until
// the next wake.
type Sleeper interface {
	ScheduleWake(d time.Duration)
	Suspend()
}

const timestampLayout = "2006-01-02 15:04"

// Config holds the cycle tunables.
type Config struct {
	MonthlyExpense  float64
	AnnualInflation float64
	SleepInterval   time.Duration
	ClockTimeout    time.Duration
}

// Controller owns RetainedState and drives the per-wake sequence.
type Controller struct {
	panel    Panel
	battery  BatteryReader
	acquirer Acquirer
	store    Store
	clock    Clock
	sleeper  Sleeper
	cfg      Config
	logger   *zap.Logger

	retained domain.RetainedState
	loaded   bool
}

// NewController wires the capabilities together.
func NewController(panel Panel, battery BatteryReader, acquirer Acquirer, store Store,
	clock Clock, sleeper Sleeper, cfg Config, logger *zap.Logger) *Controller {
	if cfg.ClockTimeout == 0 {
		cfg.ClockTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		panel:    panel,
		battery:  battery,
		acquirer: acquirer,
		store:    store,
		clock:    clock,
		sleeper:  sleeper,
		cfg:      cfg,
		logger:   logger,
	}
}

// RunCycle executes one complete wake. No failure inside it is fatal: the
// frame always renders, drawn from retained values and placeholders when
// fresh data is missing. The composed frame is returned for inspection; the
// error reports a failed panel refresh and nothing else.
func (c *Controller) RunCycle(ctx context.Context) (domain.Frame, error) {
	start := time.Now()

	if !c.loaded {
		state, err := c.store.Load()
		if err != nil {
			c.logger.Warn("retained state unreadable, starting from sentinels", zap.Error(err))
		}
		c.retained = state
		c.loaded = true
	}

	if err := c.panel.PowerOn(); err != nil {
		c.logger.Warn("panel power on failed", zap.Error(err))
	}
	// The rail must never stay up into suspend.
	defer func() {
		if err := c.panel.PowerOff(); err != nil {
			c.logger.Warn("panel power off failed", zap.Error(err))
		}
	}()

	reading := c.battery.Read()

	res := c.acquirer.Fetch(ctx)

	priceText := c.retained.LastPriceText
	if res.PriceReceived {
		priceText = res.PriceText
	}
	balanceText := c.retained.LastBalanceText
	if res.BalanceReceived {
		balanceText = res.BalanceText
	}

	price := sanitize.ParseNonNegativeFloat(priceText)
	balanceBTC := sanitize.ParseNonNegativeFloat(balanceText)
	wealth := price * balanceBTC

	longevity := simulate.FreedomTime(wealth, c.cfg.MonthlyExpense, c.cfg.AnnualInflation)

	timestamp := ""
	if now, ok := c.clock.LocalTime(c.cfg.ClockTimeout); ok {
		timestamp = now.Format(timestampLayout)
	}

	frame := domain.Frame{
		Longevity: longevity,
		PriceUSD:  price,
		Battery:   reading,
		Timestamp: timestamp,
	}

	showErr := c.panel.Show(frame)
	if showErr != nil {
		c.logger.Warn("panel refresh failed", zap.Error(showErr))
	}

	c.persistIfUpdated(res, reading)

	c.logger.Info("wake cycle complete",
		zap.Int("years", longevity.Years),
		zap.Int("months", longevity.Months),
		zap.Int("weeks", longevity.Weeks),
		zap.Bool("price_received", res.PriceReceived),
		zap.Bool("balance_received", res.BalanceReceived),
		zap.Bool("offline", res.Offline),
		zap.Duration("took", time.Since(start)))

	return frame, showErr
}

// persistIfUpdated overwrites retained fields only for the values that
// actually arrived this cycle; a failed or partial fetch never corrupts
// previously good retained data. The battery reading piggybacks on the same
// write. Nothing is written at all when no value was received.
func (c *Controller) persistIfUpdated(res domain.FetchResult, reading domain.BatteryReading) {
	if !res.PriceReceived && !res.BalanceReceived {
		return
	}

	if res.PriceReceived {
		c.retained.LastPriceText = domain.TruncateValueText(res.PriceText)
	}
	if res.BalanceReceived {
		c.retained.LastBalanceText = domain.TruncateValueText(res.BalanceText)
	}
	if reading.Valid {
		c.retained.LastBatteryVoltage = reading.Voltage
		c.retained.LastBatteryPercent = reading.Percent
	}

	if err := c.store.Save(c.retained); err != nil {
		c.logger.Warn("retained state save failed", zap.Error(err))
	}
}

// Retained exposes the current snapshot for the wiring layer and tests.
func (c *Controller) Retained() domain.RetainedState {
	return c.retained
}

// Run loops wake cycles until the context ends, suspending between them.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if _, err := c.RunCycle(ctx); err != nil {
			c.logger.Warn("cycle finished with render error", zap.Error(err))
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		c.sleeper.ScheduleWake(c.cfg.SleepInterval)
		c.sleeper.Suspend()

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
