package render

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/garyjia/invoice-variants/internal/models"
	"github.com/garyjia/invoice-variants/internal/money"
	"github.com/garyjia/invoice-variants/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetInvoice = "Invoice"

// ExcelRenderer writes one workbook per variant invoice.
type ExcelRenderer struct {
	logger *zap.Logger
}

// NewExcelRenderer creates an Excel renderer.
func NewExcelRenderer(logger *zap.Logger) *ExcelRenderer {
	return &ExcelRenderer{logger: logger}
}

// Render writes the invoice workbook into dir and returns its path.
func (r *ExcelRenderer) Render(ctx context.Context, inv *models.GeneratedInvoice, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetInvoice); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	r.setCell(f, "A1", "INVOICE")
	r.setCell(f, "A2", inv.InvoiceNumber)
	r.setCell(f, "B2", inv.Date.Format("2006-01-02"))

	row := 4
	if inv.CompanyProfile != nil {
		r.setCell(f, fmt.Sprintf("A%d", row), "From:")
		r.setCell(f, fmt.Sprintf("B%d", row), inv.CompanyProfile.Name)
		r.setCell(f, fmt.Sprintf("B%d", row+1), inv.CompanyProfile.Address)
		r.setCell(f, fmt.Sprintf("B%d", row+2), inv.CompanyProfile.Contact)
		row += 3
	}
	if inv.LogoPath != "" {
		r.setCell(f, fmt.Sprintf("A%d", row), "Logo:")
		r.setCell(f, fmt.Sprintf("B%d", row), inv.LogoPath)
		row++
	}
	if inv.BuyerProfile != nil {
		r.setCell(f, fmt.Sprintf("A%d", row), "Bill To:")
		r.setCell(f, fmt.Sprintf("B%d", row), inv.BuyerProfile.Name)
		r.setCell(f, fmt.Sprintf("B%d", row+1), inv.BuyerProfile.Address)
		r.setCell(f, fmt.Sprintf("B%d", row+2), inv.BuyerProfile.Contact)
		row += 3
	}

	row++
	r.setCell(f, fmt.Sprintf("A%d", row), "Description")
	r.setCell(f, fmt.Sprintf("B%d", row), "Quantity")
	r.setCell(f, fmt.Sprintf("C%d", row), "Unit Price")
	r.setCell(f, fmt.Sprintf("D%d", row), "Amount")
	row++

	for _, item := range inv.Items {
		r.setCell(f, fmt.Sprintf("A%d", row), item.Description)
		r.setCell(f, fmt.Sprintf("B%d", row), fmt.Sprintf("%d", item.Quantity))
		r.setCell(f, fmt.Sprintf("C%d", row), item.UnitPrice.StringFixed())
		r.setCell(f, fmt.Sprintf("D%d", row), item.LineTotal.StringFixed())
		row++
	}

	row++
	r.setCell(f, fmt.Sprintf("C%d", row), "Subtotal")
	r.setCell(f, fmt.Sprintf("D%d", row), money.Format(inv.Subtotal))
	row++
	r.setCell(f, fmt.Sprintf("C%d", row), "Tax")
	r.setCell(f, fmt.Sprintf("D%d", row), money.Format(inv.Tax))
	row++
	r.setCell(f, fmt.Sprintf("C%d", row), "Total")
	r.setCell(f, fmt.Sprintf("D%d", row), money.Format(inv.Total))

	if inv.Footer != "" {
		row += 2
		r.setCell(f, fmt.Sprintf("A%d", row), inv.Footer)
	}
	if inv.Terms != "" {
		row += 2
		r.setCell(f, fmt.Sprintf("A%d", row), inv.Terms)
	}

	outputPath := filepath.Join(dir, storage.SanitizeName(inv.InvoiceNumber)+".xlsx")
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save invoice workbook: %w", err)
	}

	r.logger.Debug("Rendered variant invoice",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("output_path", outputPath))

	return outputPath, nil
}

// setCell sets a cell value, logging instead of failing on a bad ref.
func (r *ExcelRenderer) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(sheetInvoice, cell, value); err != nil {
		r.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
