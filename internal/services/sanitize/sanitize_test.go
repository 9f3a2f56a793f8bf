package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNonNegativeFloat(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"empty", "", 0},
		{"garbage", "abc", 0},
		{"negative clamped", "-5", 0},
		{"plain decimal", "42.5", 42.5},
		{"integer", "117345", 117345},
		{"leading whitespace", "  64000.25", 64000.25},
		{"numeric prefix", "42.5 USD", 42.5},
		{"trailing junk", "99abc", 99},
		{"lone dot", ".", 0},
		{"lone sign", "+", 0},
		{"dot prefix", ".5", 0.5},
		{"trailing dot", "42.", 42},
		{"exponent", "1.2e3", 1200},
		{"dangling exponent", "42e", 42},
		{"dangling exponent sign", "42e+", 42},
		{"negative zero", "-0", 0},
		{"negative decimal clamped", "-123.45", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ParseNonNegativeFloat(tc.in))
		})
	}
}

func TestParseNonNegativeFloat_NeverNegative(t *testing.T) {
	inputs := []string{"-1e308", "-0.0001", "-inf", "nan", "-", "--5"}
	for _, in := range inputs {
		require.GreaterOrEqual(t, ParseNonNegativeFloat(in), 0.0, "input %q", in)
	}
}
