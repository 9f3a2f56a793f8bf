package cycle

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"freedomclock/internal/domain"
)

type fakePanel struct {
	calls   []string
	frames  []domain.Frame
	showErr error
}

func (p *fakePanel) PowerOn() error { p.calls = append(p.calls, "poweron"); return nil }

func (p *fakePanel) Show(f domain.Frame) error {
	p.calls = append(p.calls, "show")
	p.frames = append(p.frames, f)
	return p.showErr
}

func (p *fakePanel) PowerOff() error { p.calls = append(p.calls, "poweroff"); return nil }

type fakeBattery struct {
	reading domain.BatteryReading
}

func (b fakeBattery) Read() domain.BatteryReading { return b.reading }

type fakeAcquirer struct {
	res domain.FetchResult
}

func (a fakeAcquirer) Fetch(ctx context.Context) domain.FetchResult { return a.res }

type memStore struct {
	state   domain.RetainedState
	hasFile bool
	loadErr error
	saves   int
}

func (s *memStore) Load() (domain.RetainedState, error) {
	if !s.hasFile {
		return domain.NewRetainedState(), s.loadErr
	}
	return s.state, s.loadErr
}

func (s *memStore) Save(state domain.RetainedState) error {
	s.state = state
	s.hasFile = true
	s.saves++
	return nil
}

type fakeClock struct {
	now    time.Time
	synced bool
}

func (c fakeClock) LocalTime(timeout time.Duration) (time.Time, bool) { return c.now, c.synced }

type fakeSleeper struct {
	scheduled []time.Duration
	suspends  int
	cancel    context.CancelFunc
}

func (s *fakeSleeper) ScheduleWake(d time.Duration) { s.scheduled = append(s.scheduled, d) }

func (s *fakeSleeper) Suspend() {
	s.suspends++
	if s.cancel != nil {
		s.cancel()
	}
}

func goodBattery() domain.BatteryReading {
	return domain.BatteryReading{Voltage: 3.93, Percent: 87, Valid: true}
}

func newController(panel *fakePanel, acq fakeAcquirer, store *memStore, sleeper *fakeSleeper) *Controller {
	return NewController(panel, fakeBattery{reading: goodBattery()}, acq, store,
		fakeClock{now: time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC), synced: true},
		sleeper,
		Config{MonthlyExpense: 10000, AnnualInflation: 0, SleepInterval: time.Hour},
		nil)
}

func TestRunCycle_FullFetch(t *testing.T) {
	panel := &fakePanel{}
	store := &memStore{}
	acq := fakeAcquirer{res: domain.FetchResult{
		PriceText:       "100000",
		BalanceText:     "0.1",
		PriceReceived:   true,
		BalanceReceived: true,
	}}

	c := newController(panel, acq, store, &fakeSleeper{})
	frame, err := c.RunCycle(context.Background())
	require.NoError(t, err)

	// Wealth 100000*0.1 = 10000 against 10000/month: one month.
	require.Equal(t, domain.Longevity{Years: 0, Months: 1, Weeks: 0}, frame.Longevity)
	require.Equal(t, 100000.0, frame.PriceUSD)
	require.Equal(t, 87, frame.Battery.Percent)
	require.Equal(t, "2025-01-02 15:04", frame.Timestamp)

	// Retained state picked up both values plus the battery reading.
	require.Equal(t, 1, store.saves)
	require.Equal(t, "100000", store.state.LastPriceText)
	require.Equal(t, "0.1", store.state.LastBalanceText)
	require.Equal(t, 87, store.state.LastBatteryPercent)

	// The rail sequence wraps the refresh.
	require.Equal(t, []string{"poweron", "show", "poweroff"}, panel.calls)
}

func TestRunCycle_TotalSilenceFirstBoot(t *testing.T) {
	panel := &fakePanel{}
	store := &memStore{}
	acq := fakeAcquirer{res: domain.FetchResult{}}

	c := newController(panel, acq, store, &fakeSleeper{})
	frame, err := c.RunCycle(context.Background())
	require.NoError(t, err)

	// Sentinels sanitize to zero; everything is zero, nothing persisted.
	require.True(t, frame.Longevity.IsZero())
	require.Equal(t, 0.0, frame.PriceUSD)
	require.Zero(t, store.saves)
	require.Equal(t, domain.NewRetainedState(), c.Retained())

	// A complete frame still went out.
	require.Len(t, panel.frames, 1)
}

func TestRunCycle_PartialFetchUpdatesOnlyThatField(t *testing.T) {
	panel := &fakePanel{}
	store := &memStore{
		hasFile: true,
		state: domain.RetainedState{
			LastPriceText:      "50000",
			LastBalanceText:    "0.4",
			LastBatteryVoltage: 3.8,
			LastBatteryPercent: 60,
		},
	}
	acq := fakeAcquirer{res: domain.FetchResult{
		BalanceText:     "0.5",
		BalanceReceived: true,
	}}

	c := newController(panel, acq, store, &fakeSleeper{})
	frame, err := c.RunCycle(context.Background())
	require.NoError(t, err)

	// Price falls back to retained, balance is fresh: 50000 * 0.5 = 25000,
	// which covers 75 daily expenses.
	require.Equal(t, 50000.0, frame.PriceUSD)
	require.Equal(t, domain.Longevity{Years: 0, Months: 2, Weeks: 2}, frame.Longevity)

	require.Equal(t, 1, store.saves)
	require.Equal(t, "50000", store.state.LastPriceText, "price field must stay untouched")
	require.Equal(t, "0.5", store.state.LastBalanceText)
}

func TestRunCycle_OfflineRunsFromRetained(t *testing.T) {
	panel := &fakePanel{}
	store := &memStore{
		hasFile: true,
		state: domain.RetainedState{
			LastPriceText:   "100000",
			LastBalanceText: "0.1",
		},
	}
	acq := fakeAcquirer{res: domain.FetchResult{Offline: true}}

	c := newController(panel, acq, store, &fakeSleeper{})
	frame, err := c.RunCycle(context.Background())
	require.NoError(t, err)

	require.Equal(t, domain.Longevity{Years: 0, Months: 1, Weeks: 0}, frame.Longevity)
	require.Zero(t, store.saves, "offline cycle must not write retained state")
}

func TestRunCycle_CorruptStoreFallsBackToSentinels(t *testing.T) {
	panel := &fakePanel{}
	store := &memStore{loadErr: errors.New("bad json")}
	acq := fakeAcquirer{res: domain.FetchResult{}}

	c := newController(panel, acq, store, &fakeSleeper{})
	frame, err := c.RunCycle(context.Background())
	require.NoError(t, err)
	require.True(t, frame.Longevity.IsZero())
}

func TestRunCycle_UnsyncedClockGivesPlaceholderTimestamp(t *testing.T) {
	panel := &fakePanel{}
	store := &memStore{}
	c := NewController(panel, fakeBattery{}, fakeAcquirer{}, store,
		fakeClock{synced: false}, &fakeSleeper{},
		Config{MonthlyExpense: 1000}, nil)

	frame, err := c.RunCycle(context.Background())
	require.NoError(t, err)
	require.Empty(t, frame.Timestamp)
	require.False(t, frame.Battery.Valid)
}

func TestRunCycle_RenderFailureStillPersists(t *testing.T) {
	panel := &fakePanel{showErr: errors.New("spi write failed")}
	store := &memStore{}
	acq := fakeAcquirer{res: domain.FetchResult{PriceText: "1", PriceReceived: true}}

	c := newController(panel, acq, store, &fakeSleeper{})
	_, err := c.RunCycle(context.Background())
	require.Error(t, err)

	require.Equal(t, 1, store.saves, "a failed refresh must not block persistence")
	// Power off still happened.
	require.Equal(t, "poweroff", panel.calls[len(panel.calls)-1])
}

func TestRunCycle_InvalidBatteryKeepsRetainedTelemetry(t *testing.T) {
	panel := &fakePanel{}
	store := &memStore{
		hasFile: true,
		state: domain.RetainedState{
			LastPriceText:      "1",
			LastBalanceText:    "1",
			LastBatteryVoltage: 3.7,
			LastBatteryPercent: 42,
		},
	}
	acq := fakeAcquirer{res: domain.FetchResult{PriceText: "2", PriceReceived: true}}

	c := NewController(panel, fakeBattery{}, acq, store, fakeClock{}, &fakeSleeper{},
		Config{MonthlyExpense: 1000}, nil)

	_, err := c.RunCycle(context.Background())
	require.NoError(t, err)

	require.Equal(t, 42, store.state.LastBatteryPercent, "invalid reading must not clobber telemetry")
	require.InDelta(t, 3.7, store.state.LastBatteryVoltage, 1e-9)
}

func TestRun_SchedulesWakeAndSuspends(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sleeper := &fakeSleeper{cancel: cancel}
	panel := &fakePanel{}
	store := &memStore{}

	c := newController(panel, fakeAcquirer{}, store, sleeper)
	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, []time.Duration{time.Hour}, sleeper.scheduled)
	require.Equal(t, 1, sleeper.suspends)
	require.Len(t, panel.frames, 1)
}
