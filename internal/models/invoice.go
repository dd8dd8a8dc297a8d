package models

import (
	"time"

	"github.com/garyjia/invoice-variants/internal/money"
	"github.com/shopspring/decimal"
)

// CompanyProfile carries the issuing company's identity and branding.
type CompanyProfile struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Email    string `json:"email,omitempty"`
	TaxID    string `json:"tax_id,omitempty"`
	Currency string `json:"currency,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

// BuyerProfile carries the counterpart identity a variant is billed to.
type BuyerProfile struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Email    string `json:"email,omitempty"`
	Currency string `json:"currency,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

// BaseInvoiceItem is one immutable line of the base invoice.
type BaseInvoiceItem struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// NormalizedInvoice is the ordered template every variant derives from.
// Produced upstream by the invoice-parsing layer.
type NormalizedInvoice struct {
	Items []BaseInvoiceItem `json:"items"`
}

// InvoiceMeta holds batch-level commercial parameters shared by all
// variants.
type InvoiceMeta struct {
	TaxPercent    decimal.Decimal `json:"tax_percent"`
	Currency      string          `json:"currency"`
	InvoiceNumber string          `json:"invoice_number"` // numbering base
	Footer        string          `json:"footer,omitempty"`
	Terms         string          `json:"terms,omitempty"`
	Date          time.Time       `json:"date,omitempty"`
}

// GeneratedItem is a base item with its variant-specific perturbed price.
type GeneratedItem struct {
	Description string      `json:"description"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
	LineTotal   money.Money `json:"line_total"`
}

// GeneratedInvoice is one variant's complete output record.
// Invariant: Total == Subtotal + Tax, exactly, in minor units.
type GeneratedInvoice struct {
	VariantIndex   int             `json:"variant_index"`
	InvoiceNumber  string          `json:"invoice_number"`
	Date           time.Time       `json:"date"`
	Items          []GeneratedItem `json:"items"`
	Subtotal       money.Money     `json:"subtotal"`
	Tax            money.Money     `json:"tax"`
	Total          money.Money     `json:"total"`
	Currency       string          `json:"currency"`
	CompanyProfile *CompanyProfile `json:"company_profile,omitempty"`
	BuyerProfile   *BuyerProfile   `json:"buyer_profile,omitempty"`
	LogoPath       string          `json:"logo_path,omitempty"`
	Footer         string          `json:"footer,omitempty"`
	Terms          string          `json:"terms,omitempty"`
	DocumentPath   string          `json:"document_path,omitempty"`
}
