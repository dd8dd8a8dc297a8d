// Package money implements fixed-point monetary arithmetic in integer
// minor units. Every amount the engine computes flows through this type;
// decimal values appear only at the input/output boundary.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrCurrencyMismatch indicates arithmetic across two different currencies
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrUnknownRoundingRule indicates an unrecognized rounding rule value
	ErrUnknownRoundingRule = errors.New("unknown rounding rule")
)

// RoundingRule is the policy for converting a fractional minor-unit amount
// to an integer minor-unit amount.
type RoundingRule string

const (
	RoundUp      RoundingRule = "UP"      // ceiling to the nearest minor unit
	RoundDown    RoundingRule = "DOWN"    // floor to the nearest minor unit
	RoundNearest RoundingRule = "NEAREST" // round half up
)

// ParseRoundingRule parses a rounding rule from its wire representation.
func ParseRoundingRule(s string) (RoundingRule, error) {
	switch RoundingRule(strings.ToUpper(strings.TrimSpace(s))) {
	case RoundUp:
		return RoundUp, nil
	case RoundDown:
		return RoundDown, nil
	case RoundNearest:
		return RoundNearest, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRoundingRule, s)
	}
}

// String returns the string representation of the rule.
func (r RoundingRule) String() string {
	return string(r)
}

// minorUnitDigits maps ISO 4217 codes to their minor-unit exponent.
// Currencies not listed use the common 2-digit convention.
var minorUnitDigits = map[string]int32{
	"BHD": 3,
	"IQD": 3,
	"JOD": 3,
	"JPY": 0,
	"KRW": 0,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
	"VND": 0,
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(currency string) int32 {
	if digits, ok := minorUnitDigits[strings.ToUpper(currency)]; ok {
		return digits
	}
	return 2
}

// Money is an exact monetary amount: integer minor units plus a currency
// code. The zero value is zero units of the empty currency.
type Money struct {
	units    int64
	currency string
}

// New creates a Money from integer minor units.
func New(units int64, currency string) Money {
	return Money{units: units, currency: strings.ToUpper(currency)}
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return New(0, currency)
}

// FromDecimal converts a decimal major-unit amount to Money, rounding the
// fractional minor units according to the rule.
func FromDecimal(d decimal.Decimal, currency string, rule RoundingRule) Money {
	scaled := d.Shift(Exponent(currency))

	var rounded decimal.Decimal
	switch rule {
	case RoundUp:
		rounded = scaled.Ceil()
	case RoundDown:
		rounded = scaled.Floor()
	default:
		// Half away from zero, which is half up for the non-negative
		// amounts this engine produces.
		rounded = scaled.Round(0)
	}

	return New(rounded.IntPart(), currency)
}

// Units returns the amount in integer minor units.
func (m Money) Units() int64 {
	return m.units
}

// Currency returns the ISO currency code.
func (m Money) Currency() string {
	return m.currency
}

// Decimal returns the exact major-unit decimal representation.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.units, -Exponent(m.currency))
}

// Add returns m + o. Both amounts must share a currency.
func (m Money) Add(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, o.currency)
	}
	return Money{units: m.units + o.units, currency: m.currency}, nil
}

// MulInt returns m scaled by an integer factor. Exact, no rounding.
func (m Money) MulInt(n int64) Money {
	return Money{units: m.units * n, currency: m.currency}
}

// ScalePercent returns m × (p/100), rounded per the rule.
func (m Money) ScalePercent(p decimal.Decimal, rule RoundingRule) Money {
	scaled := m.Decimal().Mul(p).Div(decimal.NewFromInt(100))
	return FromDecimal(scaled, m.currency, rule)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.units < 0
}

// Equal reports whether two amounts are identical in units and currency.
func (m Money) Equal(o Money) bool {
	return m.units == o.units && m.currency == o.currency
}

// StringFixed renders the amount with the currency's full minor-unit
// precision, e.g. "55.00" for USD or "55" for JPY.
func (m Money) StringFixed() string {
	return m.Decimal().StringFixed(Exponent(m.currency))
}

// String implements fmt.Stringer.
func (m Money) String() string {
	return m.StringFixed() + " " + m.currency
}

type moneyJSON struct {
	Units    int64  `json:"units"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// MarshalJSON encodes the amount as minor units plus a display string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Units:    m.units,
		Currency: m.currency,
		Amount:   m.StringFixed(),
	})
}

// UnmarshalJSON decodes an amount from its minor-unit representation.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = New(raw.Units, raw.Currency)
	return nil
}
