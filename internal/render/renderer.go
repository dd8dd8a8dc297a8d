// Package render defines the document rendering and merging contracts the
// pipeline drives, plus the default Excel-backed implementations.
package render

import (
	"context"

	"github.com/garyjia/invoice-variants/internal/models"
)

// Renderer turns one variant invoice into a document file inside dir.
// The engine guarantees the invoice carries items, totals, profiles,
// number and date; layout is the renderer's business.
type Renderer interface {
	Render(ctx context.Context, invoice *models.GeneratedInvoice, dir string) (string, error)
}

// Merger combines independently rendered documents into one bundle,
// preserving the order of paths.
type Merger interface {
	Merge(ctx context.Context, orderedPaths []string, dir string) (string, error)
}
