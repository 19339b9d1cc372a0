// Package core holds the ledger records the analytics engine consumes.
//
// This file contains amount parsing for user-supplied decimal strings.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a currency amount rounded
// half-up to two places.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// A leading minus is only accepted when allowNegative is set, as for
// adjustments. Zero is always rejected.
//
// Examples:
//
//	ParseAmount("12.34", false)  -> 12.34, nil
//	ParseAmount("12,345", false) -> 12.35, nil (rounds up)
//	ParseAmount("-5", true)      -> -5, nil
func ParseAmount(s string, allowNegative bool) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "-") && !allowNegative {
		return 0, ErrInvalidAmount
	}
	// decimal accepts exponents; plain numbers only
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	d = d.Round(2)
	if d.IsZero() {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	return f, nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
