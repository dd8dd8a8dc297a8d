package render

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// BundleFileName is the name of the merged workbook inside a batch
// folder.
const BundleFileName = "bundle.xlsx"

// ExcelMerger combines rendered variant workbooks into one bundle
// workbook, one sheet per variant, preserving input order.
type ExcelMerger struct {
	logger *zap.Logger
}

// NewExcelMerger creates an Excel merger.
func NewExcelMerger(logger *zap.Logger) *ExcelMerger {
	return &ExcelMerger{logger: logger}
}

// Merge reads each workbook in order and copies its first sheet into the
// bundle. The sheet order in the bundle is exactly the input order.
func (m *ExcelMerger) Merge(ctx context.Context, orderedPaths []string, dir string) (string, error) {
	if len(orderedPaths) == 0 {
		return "", fmt.Errorf("nothing to merge")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bundle := excelize.NewFile()
	defer bundle.Close()

	for idx, path := range orderedPaths {
		if err := m.copyInto(bundle, idx, path); err != nil {
			return "", err
		}
	}

	outputPath := filepath.Join(dir, BundleFileName)
	if err := bundle.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save bundle: %w", err)
	}

	m.logger.Info("Merged rendered documents",
		zap.Int("documents", len(orderedPaths)),
		zap.String("output_path", outputPath))

	return outputPath, nil
}

// copyInto copies the first sheet of the workbook at path into the
// bundle as sheet number idx+1.
func (m *ExcelMerger) copyInto(bundle *excelize.File, idx int, path string) error {
	src, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	sheets := src.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("%s has no sheets", path)
	}

	rows, err := src.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	sheetName := bundleSheetName(idx, path)
	if idx == 0 {
		if err := bundle.SetSheetName("Sheet1", sheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	} else {
		if _, err := bundle.NewSheet(sheetName); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}
	}

	for r, row := range rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cells[c] = v
		}
		if err := bundle.SetSheetRow(sheetName, fmt.Sprintf("A%d", r+1), &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	return nil
}

// bundleSheetName builds an ordered, unique sheet name within Excel's
// 31-character sheet name limit.
func bundleSheetName(idx int, path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := fmt.Sprintf("%02d_%s", idx+1, base)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
