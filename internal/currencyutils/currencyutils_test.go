package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amountStr string
		expected  string
		hasError  bool
	}{
		{"Simple decimal", "123.45", "123.45", false},
		{"Negative decimal", "-123.45", "-123.45", false},
		{"Integer", "100", "100", false},
		{"Thousands separator", "1,234.56", "1234.56", false},
		{"Dollar sign", "$1,234.56", "1234.56", false},
		{"Minus before dollar", "-$4.50", "-4.5", false},
		{"Parentheses", "(12.00)", "-12", false},
		{"CAD suffix", "12.00 CAD", "12", false},
		{"Spaces", "  123.45  ", "123.45", false},
		{"One decimal", "4.5", "4.5", false},
		{"Empty", "", "", true},
		{"Malformed decimal", "123.45.67", "", true},
		{"Three decimals", "1.234", "", true},
		{"Scientific", "1e5", "", true},
		{"Non-numeric", "abc", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseAmount(tc.amountStr)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(result),
				"expected %s but got %s", tc.expected, result)
		})
	}
}

func TestIsAmount(t *testing.T) {
	assert.True(t, IsAmount("1,234.56"))
	assert.True(t, IsAmount("$12.00"))
	assert.True(t, IsAmount("-4.5"))
	assert.False(t, IsAmount("12,34"))
	assert.False(t, IsAmount("JAN"))
	assert.False(t, IsAmount("4.567"))
}

func TestFormatAndNormalize(t *testing.T) {
	assert.Equal(t, "-4.50", FormatAmount(decimal.RequireFromString("-4.5")))
	assert.Equal(t, "1234.56", NormalizeAmount("$1,234.56"))
	assert.Equal(t, "12.00", NormalizeAmount("12"))
	assert.Equal(t, "n/a", NormalizeAmount(" n/a "))
}
