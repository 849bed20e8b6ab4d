// pkg/source/xlsx.go
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/sheet-cleaner/pkg/model"
)

// XLSXSource reads every sheet of an Excel workbook
type XLSXSource struct {
	path string
}

// NewXLSXSource creates a source for an .xlsx or .xlsm workbook
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// Name returns the file name
func (s *XLSXSource) Name() string {
	return filepath.Base(s.path)
}

// Sheets reads every worksheet in workbook order. The first row of each is the header;
// cells are read as displayed.
func (s *XLSXSource) Sheets(ctx context.Context) ([]*model.Sheet, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Name(), err)
	}
	defer f.Close()

	var sheets []*model.Sheet
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s.Name(), &SheetError{Sheet: name, Err: err})
		}

		sheet := &model.Sheet{Name: name}
		if len(rows) > 0 {
			sheet.Rows = rows[1:]
			sheet.Columns = headerNames(rows[0], maxWidth(sheet.Rows))
		}
		sheets = append(sheets, sheet)
	}

	return sheets, nil
}

// WriteCleaned saves <name>_cleaned.xlsx with fixes applied. Untouched cells,
// styles and other sheets are kept as they are.
func (s *XLSXSource) WriteCleaned(ctx context.Context, outputDir string, fixes []model.CellFix) (string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", s.Name(), err)
	}
	defer f.Close()

	for _, fix := range fixes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		// Data row 1 sits under the header in spreadsheet row 2
		cell, err := excelize.CoordinatesToCellName(fix.Column+1, fix.Row+1)
		if err != nil {
			return "", fmt.Errorf("invalid fix position in %s: %w", s.Name(), err)
		}
		if err := f.SetCellStr(fix.Sheet, cell, fix.Value); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", cell, &SheetError{Sheet: fix.Sheet, Err: err})
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(outputDir, CleanedFileName(s.path))
	if err := f.SaveAs(outPath); err != nil {
		return "", fmt.Errorf("failed to save cleaned workbook: %w", err)
	}
	return outPath, nil
}
