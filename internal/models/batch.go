package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/invoice-variants/internal/money"
	"github.com/shopspring/decimal"
)

// MarginType selects how the uniform pricing uplift is applied.
type MarginType string

const (
	MarginPercentage MarginType = "PERCENTAGE" // base × (1 + value/100)
	MarginFixed      MarginType = "FIXED"      // base + value per unit
)

// ParseMarginType parses a margin type from its wire representation.
func ParseMarginType(s string) (MarginType, error) {
	switch MarginType(strings.ToUpper(strings.TrimSpace(s))) {
	case MarginPercentage:
		return MarginPercentage, nil
	case MarginFixed:
		return MarginFixed, nil
	default:
		return "", fmt.Errorf("unknown margin type: %q", s)
	}
}

// FailurePolicy decides how the batch reacts to a single variant's render
// failure.
type FailurePolicy string

const (
	// PolicyAbortAll fails the whole batch on the first render failure.
	PolicyAbortAll FailurePolicy = "ABORT_ALL"
	// PolicySkipAndContinue drops failed variants and merges the rest.
	PolicySkipAndContinue FailurePolicy = "SKIP_AND_CONTINUE"
)

// ParseFailurePolicy parses a failure policy from its wire representation.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToUpper(strings.TrimSpace(s))) {
	case PolicyAbortAll:
		return PolicyAbortAll, nil
	case PolicySkipAndContinue:
		return PolicySkipAndContinue, nil
	default:
		return "", fmt.Errorf("unknown failure policy: %q", s)
	}
}

// GenerateVariantsPayload is the batch generation request.
type GenerateVariantsPayload struct {
	NumberOfVariants int                `json:"number_of_variants"`
	MarginType       MarginType         `json:"margin_type"`
	MarginValue      decimal.Decimal    `json:"margin_value"`
	FluctuationRange decimal.Decimal    `json:"fluctuation_range"`
	DiscountPercent  *decimal.Decimal   `json:"discount_percent,omitempty"`
	FixedMarkup      *decimal.Decimal   `json:"fixed_markup,omitempty"`
	RoundingRule     money.RoundingRule `json:"rounding_rule"`
	FailurePolicy    FailurePolicy      `json:"failure_policy,omitempty"`
	Seed             *int64             `json:"seed,omitempty"`
	InvoiceMeta      InvoiceMeta        `json:"invoice_meta"`
	CompanyProfile   *CompanyProfile    `json:"company_profile,omitempty"`
	BuyerProfiles    []BuyerProfile     `json:"buyer_profiles,omitempty"`
	Logos            []string           `json:"logos,omitempty"`
	BaseInvoice      NormalizedInvoice  `json:"base_invoice"`
}

// Failure stage labels for VariantFailure.Stage.
const (
	StageGenerate = "GENERATE"
	StageRender   = "RENDER"
	StageMerge    = "MERGE"
)

// VariantFailure records one variant's failure inside a batch.
// VariantIndex is -1 for batch-level failures (merge).
type VariantFailure struct {
	VariantIndex int    `json:"variant_index"`
	Stage        string `json:"stage"`
	Message      string `json:"message"`
}

// BatchResult is the outcome of one generation job.
type BatchResult struct {
	BatchID            string              `json:"batch_id,omitempty"`
	State              string              `json:"state"`
	Seed               int64               `json:"seed"`
	Invoices           []*GeneratedInvoice `json:"invoices"`
	MergedDocumentPath string              `json:"merged_document_path,omitempty"`
	Failures           []VariantFailure    `json:"failures,omitempty"`
}

// BatchRecord is the persisted operational record of a generation job.
type BatchRecord struct {
	ID                 string     `json:"id"`
	State              string     `json:"state"`
	NumberOfVariants   int        `json:"number_of_variants"`
	Succeeded          int        `json:"succeeded"`
	Failed             int        `json:"failed"`
	Seed               int64      `json:"seed"`
	MergedDocumentPath string     `json:"merged_document_path,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}
