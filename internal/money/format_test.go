package money

import (
	"math"
	"strings"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     string
	}{
		{"dollars with grouping", 1234.5, "USD", "$1,234.50"},
		{"dollars small", 55, "USD", "$55.00"},
		{"euros", 99.99, "EUR", "€99.99"},
		{"pounds", 0.5, "GBP", "£0.50"},
		{"yen has no decimals", 1234, "JPY", "¥1,234"},
		{"lowercase code", 10, "usd", "$10.00"},
		{"unknown code falls back", 12.3, "SEK", "SEK 12.30"},
		{"empty code", 5, "", "XXX 5.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMoney(tt.amount, tt.currency)
			if got != tt.want {
				t.Errorf("FormatMoney(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestFormatMoney_NonFinite(t *testing.T) {
	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got := FormatMoney(amount, "USD")
		if !strings.Contains(got, "0.00") {
			t.Errorf("FormatMoney(%v, USD) = %q, want zero amount", amount, got)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(New(123450, "USD")); got != "$1,234.50" {
		t.Errorf("Format() = %q, want %q", got, "$1,234.50")
	}
	if got := Format(New(1234, "JPY")); got != "¥1,234" {
		t.Errorf("Format() = %q, want %q", got, "¥1,234")
	}
}
