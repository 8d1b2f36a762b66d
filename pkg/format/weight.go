// Package format renders numbers for display.
package format

import (
	"strconv"

	"github.com/iwvelando/feed-blend/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Weight returns a weight with thousands separators, two decimals and the
// unit (e.g., "1,234.50 kg"). An empty unit is omitted.
func Weight(amount float64, unit string) string {
	s := Number(amount)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// Number returns a value with thousands separators and two decimals.
func Number(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// Percent returns a percentage with up to two decimals (e.g., "35.5%").
func Percent(value float64) string {
	return strconv.FormatFloat(mathutil.Round(value), 'f', -1, 64) + "%"
}

// Share returns value as a percentage of total with two decimals
// (e.g., "40.00%"). A zero total gives "0.00%".
func Share(value, total float64) string {
	return printer.Sprintf("%.2f%%", mathutil.CalculatePercentage(value, total))
}
