// Package assembler builds a complete variant invoice record from priced
// items plus assigned branding. Numbering and totals are pure functions
// of their inputs, which keeps parallel variant generation trivially
// safe: no counter, no lock.
package assembler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/money"
	"github.com/shopspring/decimal"
)

// PricedItem is one line item with its variant-specific unit price
// already computed and rounded.
type PricedItem struct {
	Description string
	Quantity    int64
	UnitPrice   money.Money
}

// SuffixWidth returns the zero-pad width for invoice number suffixes, so
// numbers within a batch of any permitted size sort lexicographically.
func SuffixWidth(numberOfVariants int) int {
	width := len(strconv.Itoa(numberOfVariants))
	if width < 3 {
		width = 3
	}
	return width
}

// DeriveInvoiceNumber derives a per-variant invoice number from the batch
// numbering base and the variant index. Distinct indices yield distinct
// numbers, so concurrent variants never collide.
func DeriveInvoiceNumber(base string, variantIndex, width int) string {
	return fmt.Sprintf("%s-%0*d", base, width, variantIndex+1)
}

// Input carries everything needed to assemble one variant.
type Input struct {
	VariantIndex   int
	NumberWidth    int
	Items          []PricedItem
	CompanyProfile *models.CompanyProfile
	BuyerProfile   *models.BuyerProfile
	LogoPath       string
	Meta           models.InvoiceMeta
	RoundingRule   money.RoundingRule
	Date           time.Time
}

// Assemble builds the variant invoice record. Totals follow the per-item
// rounding rule: subtotal is the sum of already-rounded line totals, tax
// is rounded once on the subtotal, and total is their exact sum.
func Assemble(in Input) (*models.GeneratedInvoice, error) {
	currency := in.Meta.Currency

	items := make([]models.GeneratedItem, 0, len(in.Items))
	subtotal := money.Zero(currency)
	for _, item := range in.Items {
		lineTotal := item.UnitPrice.MulInt(item.Quantity)

		sum, err := subtotal.Add(lineTotal)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", item.Description, err)
		}
		subtotal = sum

		items = append(items, models.GeneratedItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		})
	}

	tax := money.Zero(currency)
	if !in.Meta.TaxPercent.Equal(decimal.Zero) {
		tax = subtotal.ScalePercent(in.Meta.TaxPercent, in.RoundingRule)
	}

	total, err := subtotal.Add(tax)
	if err != nil {
		return nil, err
	}

	return &models.GeneratedInvoice{
		VariantIndex:   in.VariantIndex,
		InvoiceNumber:  DeriveInvoiceNumber(in.Meta.InvoiceNumber, in.VariantIndex, in.NumberWidth),
		Date:           in.Date,
		Items:          items,
		Subtotal:       subtotal,
		Tax:            tax,
		Total:          total,
		Currency:       currency,
		CompanyProfile: in.CompanyProfile,
		BuyerProfile:   in.BuyerProfile,
		LogoPath:       in.LogoPath,
		Footer:         in.Meta.Footer,
		Terms:          in.Meta.Terms,
	}, nil
}
