package pricing

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount with two decimals and a fixed three-letter
// currency suffix, e.g. "1,425.00 AED". Presentation only; computed values
// stay unformatted.
func FormatMoney(amount float64, currency string) string {
	return moneyPrinter.Sprintf("%.2f %s", amount, strings.ToUpper(strings.TrimSpace(currency)))
}
