// Package numfmt provides the numeric guards and en-US display formatting
// shared by the pricing engine and the proposal templates.
package numfmt

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// printer renders grouped numbers for the single supported locale.
var printer = message.NewPrinter(language.AmericanEnglish)

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}

// OrDefault returns v when it is finite, otherwise fallback.
func OrDefault(v, fallback float64) float64 {
	if Finite(v) {
		return v
	}
	return fallback
}

// Number formats v with thousands separators and a fixed number of decimals.
// Non-finite values render as zero.
func Number(v float64, decimals int) string {
	v = OrDefault(v, 0)
	if decimals < 0 {
		decimals = 0
	}
	return printer.Sprint(number.Decimal(roundHalfAway(v, decimals), number.Scale(decimals)))
}

// Currency formats v as US dollars, e.g. "$1,234" or "-$0.005".
func Currency(v float64, decimals int) string {
	v = OrDefault(v, 0)
	if v < 0 {
		return "-$" + Number(-v, decimals)
	}
	return "$" + Number(v, decimals)
}

// Percent formats a ratio as a percentage without grouping, e.g. 0.3 -> "30%".
func Percent(ratio float64, decimals int) string {
	ratio = OrDefault(ratio, 0)
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, roundHalfAway(ratio*100, decimals))
}

// roundHalfAway rounds v to decimals places with ties away from zero. Both
// x/text and %f round ties to even, so exact halves are settled here first.
func roundHalfAway(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	r := math.Round(v*p) / p
	if !Finite(r) {
		return v
	}
	return r
}
