// Package format renders prices, revenues and unit counts for display.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	return withSymbol(decimal.NewFromFloat(amount), 2)
}

// WholeCurrency returns a dollar amount rounded half away from zero to whole
// dollars (e.g., "$1,235").
func WholeCurrency(amount float64) string {
	return withSymbol(decimal.NewFromFloat(amount), 0)
}

// Units abbreviates large unit counts: 1500 -> "1.5K", 2300000 -> "2.3M".
// Values below one thousand are rounded to whole units.
func Units(value float64) string {
	d := decimal.NewFromFloat(value)
	switch {
	case d.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(1) + "M"
	case d.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(1) + "K"
	default:
		return d.StringFixed(0)
	}
}

func withSymbol(d decimal.Decimal, places int32) string {
	d = d.Round(places)
	if d.IsNegative() {
		return "-$" + group(d.Abs().StringFixed(places))
	}
	return "$" + group(d.StringFixed(places))
}

// group inserts thousands separators into a non-negative fixed-point string.
func group(fixed string) string {
	intPart, decPart, hasDec := strings.Cut(fixed, ".")
	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}
	if !hasDec {
		return intPart
	}
	return intPart + "." + decPart
}
