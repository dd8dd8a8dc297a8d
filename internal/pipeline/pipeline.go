// Package pipeline orchestrates one batch generation job: validate the
// request, fan variant generation out across a bounded worker pool,
// render each variant, and merge the rendered set into one bundle.
package pipeline

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/garyjia/invoice-variants/internal/assembler"
	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/money"
	"github.com/garyjia/invoice-variants/internal/pricing"
	"github.com/garyjia/invoice-variants/internal/profile"
	"github.com/garyjia/invoice-variants/internal/render"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds the engine limits and defaults.
type Config struct {
	MaxVariants    int
	MaxFluctuation float64 // percent
	Workers        int
	DefaultPolicy  models.FailurePolicy
}

// Options carries per-job parameters that are not part of the payload.
type Options struct {
	BatchID   string
	OutputDir string
}

// Pipeline runs batch generation jobs. Each Generate call is a
// self-contained job; the pipeline holds no cross-job state.
type Pipeline struct {
	cfg      Config
	pricer   *pricing.Engine
	renderer render.Renderer
	merger   render.Merger
	logger   *zap.Logger
}

// New creates a pipeline.
func New(cfg Config, renderer render.Renderer, merger render.Merger, logger *zap.Logger) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DefaultPolicy == "" {
		cfg.DefaultPolicy = models.PolicySkipAndContinue
	}
	return &Pipeline{
		cfg:      cfg,
		pricer:   pricing.NewEngine(),
		renderer: renderer,
		merger:   merger,
		logger:   logger,
	}
}

// Generate runs one batch job. Validation and computation errors are
// fatal and return a nil result; render failures are folded into the
// request's failure policy; a merge failure reports a partially
// completed batch with the successful subset intact.
func (p *Pipeline) Generate(ctx context.Context, payload *models.GenerateVariantsPayload, opts Options) (*models.BatchResult, error) {
	machine := newLifecycle()

	if err := p.validate(payload); err != nil {
		_ = machine.Fire(TriggerFail)
		return nil, err
	}

	policy := payload.FailurePolicy
	if policy == "" {
		policy = p.cfg.DefaultPolicy
	}
	seed := p.resolveSeed(payload)
	n := payload.NumberOfVariants

	p.logger.Info("Starting batch generation",
		zap.String("batch_id", opts.BatchID),
		zap.Int("variants", n),
		zap.Int64("seed", seed),
		zap.String("policy", string(policy)))

	_ = machine.Fire(TriggerStartGeneration)

	invoices, skipped, compErr := p.generateAll(ctx, payload, seed)
	if compErr != nil {
		_ = machine.Fire(TriggerFail)
		p.logger.Error("Batch aborted on computation error",
			zap.String("batch_id", opts.BatchID), zap.Error(compErr))
		return nil, compErr
	}

	result := &models.BatchResult{
		BatchID: opts.BatchID,
		Seed:    seed,
	}
	for _, idx := range skipped {
		result.Failures = append(result.Failures, models.VariantFailure{
			VariantIndex: idx,
			Stage:        models.StageGenerate,
			Message:      "cancelled before dispatch",
		})
	}

	_ = machine.Fire(TriggerStartRendering)

	rendered := p.renderAll(ctx, invoices, opts.OutputDir, result)

	if len(result.Failures) > 0 && policy == models.PolicyAbortAll {
		_ = machine.Fire(TriggerFail)
		result.State = machine.State().String()
		first := result.Failures[0]
		return result, &RenderError{
			Variant: first.VariantIndex,
			Err:     fmt.Errorf("%s (policy %s)", first.Message, policy),
		}
	}

	if len(rendered) == 0 {
		_ = machine.Fire(TriggerFail)
		result.State = machine.State().String()
		return result, &RenderError{Variant: -1, Err: fmt.Errorf("no variant rendered successfully")}
	}

	result.Invoices = rendered
	paths := make([]string, 0, len(rendered))
	for _, inv := range rendered {
		paths = append(paths, inv.DocumentPath)
	}

	// Join barrier is behind us: every render has finished before the
	// merge starts.
	_ = machine.Fire(TriggerStartMerge)

	mergedPath, err := p.merger.Merge(ctx, paths, opts.OutputDir)
	if err != nil {
		// Per-variant artifacts stay; the batch is partially successful.
		_ = machine.Fire(TriggerCompletePartial)
		result.State = machine.State().String()
		mergeErr := &MergeError{Err: err}
		result.Failures = append(result.Failures, models.VariantFailure{
			VariantIndex: -1,
			Stage:        models.StageMerge,
			Message:      mergeErr.Error(),
		})
		p.logger.Warn("Merge failed, reporting partial batch",
			zap.String("batch_id", opts.BatchID), zap.Error(err))
		return result, nil
	}
	result.MergedDocumentPath = mergedPath

	if len(result.Failures) > 0 {
		_ = machine.Fire(TriggerCompletePartial)
	} else {
		_ = machine.Fire(TriggerComplete)
	}
	result.State = machine.State().String()

	p.logger.Info("Batch generation finished",
		zap.String("batch_id", opts.BatchID),
		zap.String("state", result.State),
		zap.Int("succeeded", len(result.Invoices)),
		zap.Int("failed", len(result.Failures)))

	return result, nil
}

// validate checks the payload before any work is performed.
func (p *Pipeline) validate(payload *models.GenerateVariantsPayload) error {
	if payload == nil {
		return &ValidationError{Field: "payload", Reason: "missing"}
	}
	if payload.NumberOfVariants < 1 {
		return &ValidationError{Field: "number_of_variants", Reason: "must be at least 1"}
	}
	if p.cfg.MaxVariants > 0 && payload.NumberOfVariants > p.cfg.MaxVariants {
		return &ValidationError{
			Field:  "number_of_variants",
			Reason: fmt.Sprintf("exceeds maximum of %d", p.cfg.MaxVariants),
		}
	}
	if _, err := models.ParseMarginType(string(payload.MarginType)); err != nil {
		return &ValidationError{Field: "margin_type", Reason: err.Error()}
	}
	if payload.MarginValue.IsNegative() {
		return &ValidationError{Field: "margin_value", Reason: "must be non-negative"}
	}
	if _, err := money.ParseRoundingRule(string(payload.RoundingRule)); err != nil {
		return &ValidationError{Field: "rounding_rule", Reason: err.Error()}
	}
	if payload.FailurePolicy != "" {
		if _, err := models.ParseFailurePolicy(string(payload.FailurePolicy)); err != nil {
			return &ValidationError{Field: "failure_policy", Reason: err.Error()}
		}
	}
	if payload.FluctuationRange.IsNegative() {
		return &ValidationError{Field: "fluctuation_range", Reason: "must be non-negative"}
	}
	if p.cfg.MaxFluctuation > 0 &&
		payload.FluctuationRange.GreaterThan(decimal.NewFromFloat(p.cfg.MaxFluctuation)) {
		return &ValidationError{
			Field:  "fluctuation_range",
			Reason: fmt.Sprintf("exceeds maximum of %v%%", p.cfg.MaxFluctuation),
		}
	}
	if payload.DiscountPercent != nil && payload.DiscountPercent.IsNegative() {
		return &ValidationError{Field: "discount_percent", Reason: "must be non-negative"}
	}
	if payload.InvoiceMeta.TaxPercent.IsNegative() {
		return &ValidationError{Field: "invoice_meta.tax_percent", Reason: "must be non-negative"}
	}
	if payload.InvoiceMeta.Currency == "" {
		return &ValidationError{Field: "invoice_meta.currency", Reason: "required"}
	}
	if len(payload.BaseInvoice.Items) == 0 {
		return &ValidationError{Field: "base_invoice.items", Reason: "must not be empty"}
	}
	for i, item := range payload.BaseInvoice.Items {
		if item.Quantity < 1 {
			return &ValidationError{
				Field:  fmt.Sprintf("base_invoice.items[%d].quantity", i),
				Reason: "must be at least 1",
			}
		}
		if item.UnitPrice.IsNegative() {
			return &ValidationError{
				Field:  fmt.Sprintf("base_invoice.items[%d].unit_price", i),
				Reason: "must be non-negative",
			}
		}
	}
	return nil
}

// resolveSeed returns the caller's seed, or draws one so the batch can
// still be replayed from the recorded value.
func (p *Pipeline) resolveSeed(payload *models.GenerateVariantsPayload) int64 {
	if payload.Seed != nil {
		return *payload.Seed
	}
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
}

// generateAll prices and assembles every variant across the worker pool.
// Each worker writes only its own slot, so no locking is needed beyond
// the first-error capture. Returns the assembled variants, the indices
// never dispatched due to cancellation, and the first computation error
// if any.
func (p *Pipeline) generateAll(ctx context.Context, payload *models.GenerateVariantsPayload, seed int64) ([]*models.GeneratedInvoice, []int, error) {
	n := payload.NumberOfVariants
	spec := pricing.Spec{
		MarginType:       payload.MarginType,
		MarginValue:      payload.MarginValue,
		FluctuationRange: payload.FluctuationRange,
		DiscountPercent:  payload.DiscountPercent,
		FixedMarkup:      payload.FixedMarkup,
		RoundingRule:     payload.RoundingRule,
		Currency:         payload.InvoiceMeta.Currency,
	}
	meta := payload.InvoiceMeta
	if meta.InvoiceNumber == "" {
		meta.InvoiceNumber = "INV-" + time.Now().UTC().Format("20060102")
	}
	date := meta.Date
	if date.IsZero() {
		date = time.Now().UTC().Truncate(time.Second)
	}
	width := assembler.SuffixWidth(n)

	invoices := make([]*models.GeneratedInvoice, n)
	var mu sync.Mutex
	var firstErr *ComputationError

	skipped := p.runParallel(ctx, n, func(i int) {
		// Per-variant generator derived from the batch seed keeps draws
		// independent across variants and the batch reproducible.
		rng := rand.New(rand.NewSource(seed + int64(i)))

		priced := make([]assembler.PricedItem, 0, len(payload.BaseInvoice.Items))
		for j, item := range payload.BaseInvoice.Items {
			unitPrice, err := p.pricer.Price(item.UnitPrice, spec, rng)
			if err != nil {
				mu.Lock()
				if firstErr == nil || i < firstErr.Variant {
					firstErr = &ComputationError{Variant: i, Item: j, Err: err}
				}
				mu.Unlock()
				return
			}
			priced = append(priced, assembler.PricedItem{
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   unitPrice,
			})
		}

		assignment := profile.Assign(i, payload.BuyerProfiles, payload.Logos)

		inv, err := assembler.Assemble(assembler.Input{
			VariantIndex:   i,
			NumberWidth:    width,
			Items:          priced,
			CompanyProfile: payload.CompanyProfile,
			BuyerProfile:   assignment.BuyerProfile,
			LogoPath:       assignment.LogoPath,
			Meta:           meta,
			RoundingRule:   payload.RoundingRule,
			Date:           date,
		})
		if err != nil {
			mu.Lock()
			if firstErr == nil || i < firstErr.Variant {
				firstErr = &ComputationError{Variant: i, Item: -1, Err: err}
			}
			mu.Unlock()
			return
		}
		invoices[i] = inv
	})

	if firstErr != nil {
		return nil, skipped, firstErr
	}
	return invoices, skipped, nil
}

// renderAll renders every assembled variant across the worker pool and
// returns the successful subset in variant order, recording failures on
// the result.
func (p *Pipeline) renderAll(ctx context.Context, invoices []*models.GeneratedInvoice, dir string, result *models.BatchResult) []*models.GeneratedInvoice {
	var mu sync.Mutex

	skipped := p.runParallel(ctx, len(invoices), func(i int) {
		inv := invoices[i]
		if inv == nil {
			return
		}
		path, err := p.renderer.Render(ctx, inv, dir)
		if err != nil {
			renderErr := &RenderError{Variant: i, Err: err}
			p.logger.Warn("Variant render failed",
				zap.Int("variant", i),
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err))
			mu.Lock()
			result.Failures = append(result.Failures, models.VariantFailure{
				VariantIndex: i,
				Stage:        models.StageRender,
				Message:      renderErr.Error(),
			})
			mu.Unlock()
			return
		}
		inv.DocumentPath = path
	})

	mu.Lock()
	for _, idx := range skipped {
		if invoices[idx] == nil {
			continue
		}
		result.Failures = append(result.Failures, models.VariantFailure{
			VariantIndex: idx,
			Stage:        models.StageRender,
			Message:      "cancelled before dispatch",
		})
	}
	sort.Slice(result.Failures, func(a, b int) bool {
		return result.Failures[a].VariantIndex < result.Failures[b].VariantIndex
	})
	mu.Unlock()

	rendered := make([]*models.GeneratedInvoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv != nil && inv.DocumentPath != "" {
			rendered = append(rendered, inv)
		}
	}
	return rendered
}

// runParallel executes fn for each index in [0, n) across a bounded
// worker pool, then joins. Once ctx is cancelled no further index is
// dispatched; in-flight calls run to completion. Returns the indices
// that were never dispatched.
func (p *Pipeline) runParallel(ctx context.Context, n int, fn func(i int)) []int {
	workers := p.cfg.Workers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	var skipped []int
dispatch:
	for i := 0; i < n; i++ {
		// Checked separately first: a ready worker must not win the race
		// against an already-cancelled context.
		select {
		case <-ctx.Done():
			for ; i < n; i++ {
				skipped = append(skipped, i)
			}
			break dispatch
		default:
		}
		select {
		case <-ctx.Done():
			for ; i < n; i++ {
				skipped = append(skipped, i)
			}
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return skipped
}
