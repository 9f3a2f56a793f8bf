package simulate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"freedomclock/internal/domain"
)

func TestFreedomTime_ZeroGuards(t *testing.T) {
	zero := domain.Longevity{}

	require.Equal(t, zero, FreedomTime(0, 2500, 0.05))
	require.Equal(t, zero, FreedomTime(-100, 2500, 0.05))
	require.Equal(t, zero, FreedomTime(10000, 0, 0.05))
	require.Equal(t, zero, FreedomTime(10000, -1, 0.05))
	require.Equal(t, zero, FreedomTime(0, 0, 0))
}

func TestFreedomTime_OneMonthOfWealth(t *testing.T) {
	// Daily expense is 10000/30; the wealth covers exactly 30 of those days.
	got := FreedomTime(10000, 10000, 0)
	require.Equal(t, domain.Longevity{Years: 0, Months: 1, Weeks: 0}, got)
	require.Equal(t, 30, DepletionDays(10000, 10000, 0))
}

func TestDepletionDays_KnownPoints(t *testing.T) {
	cases := []struct {
		name      string
		wealth    float64
		monthly   float64
		inflation float64
		days      int
		want      domain.Longevity
	}{
		{"thirty months flat", 30000, 1000, 0, 900, domain.Longevity{Years: 2, Months: 5, Weeks: 2}},
		{"inflation shortens runway", 100000, 1000, 0.05, 2522, domain.Longevity{Years: 6, Months: 11, Weeks: 0}},
		{"high inflation", 500000, 2000, 0.08, 4497, domain.Longevity{Years: 12, Months: 3, Weeks: 3}},
		{"less than two weeks", 1000, 3000, 0.02, 9, domain.Longevity{Years: 0, Months: 0, Weeks: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.days, DepletionDays(tc.wealth, tc.monthly, tc.inflation))
			require.Equal(t, tc.want, FreedomTime(tc.wealth, tc.monthly, tc.inflation))
		})
	}
}

func TestFreedomTime_TwoHundredYearCap(t *testing.T) {
	got := FreedomTime(1e12, 0.01, 0)
	require.Equal(t, domain.Longevity{Years: 200, Months: 0, Weeks: 0}, got)
	require.Equal(t, 365*200, DepletionDays(1e12, 0.01, 0))
}

func TestFreedomTime_NegativeInflationClamped(t *testing.T) {
	// Negative inflation is treated as zero, never as a growing balance.
	require.Equal(t, FreedomTime(30000, 1000, 0), FreedomTime(30000, 1000, -0.5))
}

func TestFreedomTime_Deterministic(t *testing.T) {
	first := FreedomTime(123456.78, 2345.67, 0.043)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, FreedomTime(123456.78, 2345.67, 0.043))
	}
}
