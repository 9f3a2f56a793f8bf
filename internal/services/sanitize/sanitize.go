// Package sanitize converts raw broker payloads into bounded numeric values.
package sanitize

import (
	"math"
	"strconv"
	"strings"
)

// ParseNonNegativeFloat parses the longest valid decimal prefix of text and
// clamps the result to zero or above. Empty, malformed or negative input
// yields 0.0. The function is total: garbage from the network can never
// propagate an error into the simulator.
func ParseNonNegativeFloat(text string) float64 {
	s := strings.TrimSpace(text)

	end := numericPrefixLen(s)
	if end == 0 {
		return 0
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	return v
}

// numericPrefixLen returns the length of the longest prefix of s that forms
// a valid decimal number, or 0 if s does not start with one.
func numericPrefixLen(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	end := i

	// An exponent only counts if at least one digit follows it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			expDigits++
		}
		if expDigits > 0 {
			end = j
		}
	}

	return end
}
