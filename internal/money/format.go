package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// currencySymbols covers the currencies the platform issues invoices in.
// Anything else takes the code-prefixed fallback.
var currencySymbols = map[string]string{
	"AUD": "A$",
	"CAD": "C$",
	"CNY": "¥",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"JPY": "¥",
	"USD": "$",
}

var displayPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount for display. It never fails: a non-finite
// amount is coerced to zero and an unknown currency falls back to
// "<CODE> <amount>" with two decimals, so downstream display logic can
// call it unconditionally.
func FormatMoney(amount float64, currencyCode string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if symbol, ok := currencySymbols[code]; ok {
		scale := int(Exponent(code))
		return symbol + displayPrinter.Sprintf("%v", number.Decimal(amount, number.Scale(scale)))
	}

	if code == "" {
		code = "XXX"
	}
	return fmt.Sprintf("%s %s", code, decimal.NewFromFloat(amount).StringFixed(2))
}

// Format renders a Money value for display.
func Format(m Money) string {
	return FormatMoney(m.Decimal().InexactFloat64(), m.Currency())
}
