// Package currencyutils parses and formats the dollar amounts printed on CIBC
// statements and read back from mirror sheets.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountRe = regexp.MustCompile(`^-?\$?-?\d{1,3}(,\d{3})*(\.\d{1,2})?$|^-?\$?-?\d+(\.\d{1,2})?$`)

// StandardizeAmount strips the currency symbol, the CAD code, thousands
// separators and surrounding space. Parentheses become a leading minus.
func StandardizeAmount(amountStr string) string {
	s := strings.TrimSpace(amountStr)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "CAD"), "CAD"))
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if negative && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}

// IsAmount reports whether text is a statement-style amount such as
// "1,234.56", "$12.00" or "-4.5".
func IsAmount(text string) bool {
	return amountRe.MatchString(strings.TrimSpace(text))
}

// ParseAmount parses a statement-style amount. Unlike decimal.NewFromString
// it rejects scientific notation and misplaced separators.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(amountStr)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	std := StandardizeAmount(trimmed)
	if !amountRe.MatchString(std) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", amountStr)
	}
	amount, err := decimal.NewFromString(std)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// FormatAmount renders an amount with exactly two decimals and no separators.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// NormalizeAmount reformats a textual amount with two decimals. Text that
// does not parse is returned trimmed.
func NormalizeAmount(amountStr string) string {
	d, err := ParseAmount(amountStr)
	if err != nil {
		return strings.TrimSpace(amountStr)
	}
	return FormatAmount(d)
}
