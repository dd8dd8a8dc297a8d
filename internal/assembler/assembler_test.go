package assembler

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/money"
)

func TestSuffixWidth(t *testing.T) {
	tests := []struct {
		variants int
		want     int
	}{
		{1, 3},
		{9, 3},
		{100, 3},
		{999, 3},
		{1000, 4},
		{25000, 5},
	}

	for _, tt := range tests {
		if got := SuffixWidth(tt.variants); got != tt.want {
			t.Errorf("SuffixWidth(%d) = %d, want %d", tt.variants, got, tt.want)
		}
	}
}

func TestDeriveInvoiceNumber(t *testing.T) {
	tests := []struct {
		base  string
		index int
		width int
		want  string
	}{
		{"INV-2024", 0, 3, "INV-2024-001"},
		{"INV-2024", 1, 3, "INV-2024-002"},
		{"INV-2024", 99, 3, "INV-2024-100"},
		{"INV-2024", 999, 4, "INV-2024-1000"},
		{"Q3", 4, 3, "Q3-005"},
	}

	for _, tt := range tests {
		got := DeriveInvoiceNumber(tt.base, tt.index, tt.width)
		if got != tt.want {
			t.Errorf("DeriveInvoiceNumber(%q, %d, %d) = %q, want %q",
				tt.base, tt.index, tt.width, got, tt.want)
		}
	}
}

func TestDeriveInvoiceNumber_DistinctAcrossBatch(t *testing.T) {
	seen := make(map[string]bool)
	width := SuffixWidth(50)
	for i := 0; i < 50; i++ {
		number := DeriveInvoiceNumber("INV-X", i, width)
		if seen[number] {
			t.Fatalf("duplicate invoice number %q at index %d", number, i)
		}
		seen[number] = true
	}
}

func testInput(items []PricedItem, taxPercent string, currency string) Input {
	return Input{
		VariantIndex: 0,
		NumberWidth:  3,
		Items:        items,
		Meta: models.InvoiceMeta{
			TaxPercent:    decimal.RequireFromString(taxPercent),
			Currency:      currency,
			InvoiceNumber: "INV-TEST",
		},
		RoundingRule: money.RoundNearest,
		Date:         time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAssemble_Totals(t *testing.T) {
	tests := []struct {
		name         string
		items        []PricedItem
		taxPercent   string
		currency     string
		wantSubtotal int64
		wantTax      int64
		wantTotal    int64
	}{
		{
			name: "single item no tax",
			items: []PricedItem{
				{Description: "Widget", Quantity: 10, UnitPrice: money.New(550, "USD")},
			},
			taxPercent:   "0",
			currency:     "USD",
			wantSubtotal: 5500,
			wantTax:      0,
			wantTotal:    5500,
		},
		{
			name: "two items with tax",
			items: []PricedItem{
				{Description: "Widget", Quantity: 2, UnitPrice: money.New(1050, "USD")},
				{Description: "Gadget", Quantity: 3, UnitPrice: money.New(999, "USD")},
			},
			taxPercent: "10",
			currency:   "USD",
			// 2100 + 2997 = 5097; 10% = 509.7 rounds to 510
			wantSubtotal: 5097,
			wantTax:      510,
			wantTotal:    5607,
		},
		{
			name: "zero exponent currency",
			items: []PricedItem{
				{Description: "Service", Quantity: 4, UnitPrice: money.New(1200, "JPY")},
			},
			taxPercent:   "8",
			currency:     "JPY",
			wantSubtotal: 4800,
			wantTax:      384,
			wantTotal:    5184,
		},
		{
			name: "three digit currency",
			items: []PricedItem{
				{Description: "Consulting", Quantity: 1, UnitPrice: money.New(12345, "KWD")},
			},
			taxPercent: "5",
			currency:   "KWD",
			// 12345 × 5% = 617.25 rounds to 617
			wantSubtotal: 12345,
			wantTax:      617,
			wantTotal:    12962,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := Assemble(testInput(tt.items, tt.taxPercent, tt.currency))
			if err != nil {
				t.Fatalf("Assemble() unexpected error: %v", err)
			}
			if inv.Subtotal.Units() != tt.wantSubtotal {
				t.Errorf("subtotal = %d, want %d", inv.Subtotal.Units(), tt.wantSubtotal)
			}
			if inv.Tax.Units() != tt.wantTax {
				t.Errorf("tax = %d, want %d", inv.Tax.Units(), tt.wantTax)
			}
			if inv.Total.Units() != tt.wantTotal {
				t.Errorf("total = %d, want %d", inv.Total.Units(), tt.wantTotal)
			}
			// Exact identity, not approximate
			if inv.Total.Units() != inv.Subtotal.Units()+inv.Tax.Units() {
				t.Errorf("total %d != subtotal %d + tax %d",
					inv.Total.Units(), inv.Subtotal.Units(), inv.Tax.Units())
			}
		})
	}
}

func TestAssemble_LineTotals(t *testing.T) {
	inv, err := Assemble(testInput([]PricedItem{
		{Description: "Widget", Quantity: 3, UnitPrice: money.New(333, "USD")},
	}, "0", "USD"))
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}

	if len(inv.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(inv.Items))
	}
	if inv.Items[0].LineTotal.Units() != 999 {
		t.Errorf("line total = %d, want 999", inv.Items[0].LineTotal.Units())
	}
	if inv.Items[0].UnitPrice.Units() != 333 {
		t.Errorf("unit price = %d, want 333", inv.Items[0].UnitPrice.Units())
	}
}

func TestAssemble_CarriesMetadata(t *testing.T) {
	in := testInput([]PricedItem{
		{Description: "Widget", Quantity: 1, UnitPrice: money.New(100, "USD")},
	}, "0", "USD")
	in.VariantIndex = 4
	in.Meta.Footer = "Thank you for your business"
	in.Meta.Terms = "Net 30"
	in.BuyerProfile = &models.BuyerProfile{Name: "Globex Inc"}
	in.LogoPath = "logos/b.png"

	inv, err := Assemble(in)
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}

	if inv.InvoiceNumber != "INV-TEST-005" {
		t.Errorf("invoice number = %q, want INV-TEST-005", inv.InvoiceNumber)
	}
	if inv.VariantIndex != 4 {
		t.Errorf("variant index = %d, want 4", inv.VariantIndex)
	}
	if inv.Footer != "Thank you for your business" || inv.Terms != "Net 30" {
		t.Errorf("footer/terms not carried: %q / %q", inv.Footer, inv.Terms)
	}
	if inv.BuyerProfile == nil || inv.BuyerProfile.Name != "Globex Inc" {
		t.Errorf("buyer profile not carried: %+v", inv.BuyerProfile)
	}
	if inv.LogoPath != "logos/b.png" {
		t.Errorf("logo path = %q, want logos/b.png", inv.LogoPath)
	}
}
