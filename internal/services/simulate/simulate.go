// Package simulate implements the freedom-time depletion model: how long a
// cash balance survives a daily expense that compounds with inflation.
package simulate

import (
	"math"

	"freedomclock/internal/domain"
)

// maxDays caps the simulation at 200 years so extreme inputs still terminate.
const maxDays = 365 * 200

const (
	daysPerYear  = 365
	daysPerMonth = 30
	daysPerWeek  = 7
)

// DepletionDays runs the day-by-day simulation and returns the number of
// full days the wealth covers. Each simulated day the current daily expense
// is subtracted from the remaining wealth, then the expense grows by the
// daily inflation multiplier (1+annual)^(1/365). The loop stops once the
// remaining wealth no longer covers a day, or at the 200-year cap.
//
// The function is pure and deterministic: identical inputs always produce
// the same day count, bit for bit.
func DepletionDays(wealth, monthlyExpense, annualInflation float64) int {
	if wealth <= 0 || monthlyExpense <= 0 {
		return 0
	}
	if annualInflation < 0 {
		annualInflation = 0
	}

	dailyMul := math.Pow(1+annualInflation, 1.0/daysPerYear)
	expense := monthlyExpense / daysPerMonth
	remaining := wealth

	days := 0
	for days < maxDays {
		if remaining < expense {
			break
		}
		remaining -= expense
		expense *= dailyMul
		days++
	}
	return days
}

// FreedomTime converts the depletion day count into the device's approximate
// calendar: 365-day years, 30-day months, 7-day weeks, remainders truncated.
// The approximation is intentional; there is no leap-year handling.
func FreedomTime(wealth, monthlyExpense, annualInflation float64) domain.Longevity {
	days := DepletionDays(wealth, monthlyExpense, annualInflation)

	years := days / daysPerYear
	rem := days % daysPerYear

	return domain.Longevity{
		Years:  years,
		Months: rem / daysPerMonth,
		Weeks:  rem % daysPerMonth / daysPerWeek,
	}
}
