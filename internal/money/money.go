// Package money renders integer peso amounts for display. CLP is
// zero-decimal: there are no fractional units to carry or round.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("es-CL"))

// Format renders an amount as a Chilean peso string, e.g. 1234567 becomes
// "$1.234.567". Negative amounts keep the sign ahead of the symbol.
func Format(amount int64) string {
	if amount < 0 {
		return "-" + Format(-amount)
	}
	return printer.Sprintf("$%v", number.Decimal(amount))
}
