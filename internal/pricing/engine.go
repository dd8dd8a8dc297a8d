// Package pricing computes the perturbed unit price for one line item in
// one variant. All intermediate arithmetic is decimal; the result is
// rounded to integer minor units exactly once, at the end.
package pricing

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeMargin indicates a negative margin value in the request
	ErrNegativeMargin = errors.New("margin value must be non-negative")

	// ErrNegativePrice indicates the fully adjusted price fell below zero.
	// The engine refuses to clamp: a negative price means the margin and
	// discount configuration is inconsistent.
	ErrNegativePrice = errors.New("adjusted price is negative")
)

var hundred = decimal.NewFromInt(100)

// Spec holds the pricing parameters shared by every item of a batch.
type Spec struct {
	MarginType       models.MarginType
	MarginValue      decimal.Decimal
	FluctuationRange decimal.Decimal // percent, >= 0
	DiscountPercent  *decimal.Decimal
	FixedMarkup      *decimal.Decimal
	RoundingRule     money.RoundingRule
	Currency         string
}

// Engine prices items. It is stateless; randomness comes exclusively from
// the *rand.Rand the caller injects, so a seeded batch is reproducible.
type Engine struct{}

// NewEngine creates a pricing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Price applies margin, fluctuation, discount/markup and rounding to one
// base unit price, in that order. It consumes exactly one draw from rng
// per call when the fluctuation range is positive, so draws stay
// independent across (item, variant) pairs.
func (e *Engine) Price(baseUnitPrice decimal.Decimal, spec Spec, rng *rand.Rand) (money.Money, error) {
	if spec.MarginValue.IsNegative() {
		return money.Money{}, ErrNegativeMargin
	}

	var priced decimal.Decimal
	switch spec.MarginType {
	case models.MarginPercentage:
		priced = baseUnitPrice.Mul(decimal.NewFromInt(1).Add(spec.MarginValue.Div(hundred)))
	case models.MarginFixed:
		priced = baseUnitPrice.Add(spec.MarginValue)
	default:
		return money.Money{}, fmt.Errorf("unknown margin type: %q", spec.MarginType)
	}

	if spec.FluctuationRange.IsPositive() {
		// One uniform draw in [-1, 1], scaled to the configured range.
		u := rng.Float64()*2 - 1
		offset := spec.FluctuationRange.Mul(decimal.NewFromFloat(u)).Div(hundred)
		priced = priced.Mul(decimal.NewFromInt(1).Add(offset))
	}

	if spec.DiscountPercent != nil {
		priced = priced.Sub(priced.Mul(spec.DiscountPercent.Div(hundred)))
	}
	if spec.FixedMarkup != nil {
		priced = priced.Add(*spec.FixedMarkup)
	}

	if priced.IsNegative() {
		return money.Money{}, fmt.Errorf("%w: %s", ErrNegativePrice, priced.String())
	}

	return money.FromDecimal(priced, spec.Currency, spec.RoundingRule), nil
}
