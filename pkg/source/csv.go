// pkg/source/csv.go
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/David-Botos/sheet-cleaner/pkg/model"
)

const utf8BOM = "\ufeff"

// CSVSource reads a comma separated file as a single sheet
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for a CSV file
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Name returns the file name
func (s *CSVSource) Name() string {
	return filepath.Base(s.path)
}

// Sheets reads the file as one sheet named Sheet1. The first record is the header.
func (s *CSVSource) Sheets(ctx context.Context) ([]*model.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, _, err := s.readAll()
	if err != nil {
		return nil, err
	}

	sheet := &model.Sheet{Name: CSVSheetName}
	if len(records) == 0 {
		return []*model.Sheet{sheet}, nil
	}

	sheet.Rows = records[1:]
	sheet.Columns = headerNames(records[0], maxWidth(sheet.Rows))
	return []*model.Sheet{sheet}, nil
}

// WriteCleaned writes <name>_cleaned.csv with fixes applied
func (s *CSVSource) WriteCleaned(ctx context.Context, outputDir string, fixes []model.CellFix) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	records, bom, err := s.readAll()
	if err != nil {
		return "", err
	}

	for _, fix := range fixes {
		// Row 0 is the header
		if fix.Row <= 0 || fix.Row >= len(records) || fix.Column < 0 {
			return "", fmt.Errorf("fix outside of %s: row %d column %d", s.Name(), fix.Row, fix.Column)
		}
		row := records[fix.Row]
		for len(row) <= fix.Column {
			row = append(row, "")
		}
		row[fix.Column] = fix.Value
		records[fix.Row] = row
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(outputDir, CleanedFileName(s.path))
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create cleaned file: %w", err)
	}
	defer f.Close()

	if bom {
		if _, err := f.WriteString(utf8BOM); err != nil {
			return "", fmt.Errorf("failed to write cleaned file: %w", err)
		}
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("failed to write cleaned file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close cleaned file: %w", err)
	}
	return outPath, nil
}

// readAll returns every record and whether the file started with a byte order mark
func (s *CSVSource) readAll() ([][]string, bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s: %w", s.Name(), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", s.Name(), err)
	}

	bom := false
	if len(records) > 0 && len(records[0]) > 0 && strings.HasPrefix(records[0][0], utf8BOM) {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
		bom = true
	}
	return records, bom, nil
}
