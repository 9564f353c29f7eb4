package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount in minor units (cents) as a string like "$75.00".
func FormatMoney(cents int64) string {
	amount := decimal.New(cents, -2)
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// ParseCents parses an integer amount in minor units, as emitted by theme data attributes.
// Returns fallback when the value is empty or not an integer.
func ParseCents(raw string, fallback int64) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fallback
	}
	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Themes occasionally emit "7500.0"
		d, derr := decimal.NewFromString(s)
		if derr != nil {
			return fallback
		}
		return d.IntPart()
	}
	return value
}
