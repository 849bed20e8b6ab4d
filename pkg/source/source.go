// pkg/source/source.go
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/sheet-cleaner/pkg/model"
)

// ErrUnsupportedFile is returned by Open for extensions it cannot read
var ErrUnsupportedFile = errors.New("unsupported file type")

// SheetError reports a failure scoped to one sheet of a source
type SheetError struct {
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %s: %v", e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// CSVSheetName is the sheet name reported for CSV files
const CSVSheetName = "Sheet1"

// cleanedSuffix is appended to the base name of cleaned copies
const cleanedSuffix = "_cleaned"

// Source is a file or table that yields sheets of cells
type Source interface {
	// Name identifies the source in reports
	Name() string

	// Sheets reads every sheet of the source
	Sheets(ctx context.Context) ([]*model.Sheet, error)
}

// Fixer is implemented by sources that can write a cleaned copy of themselves
type Fixer interface {
	// WriteCleaned writes a copy of the source with fixes applied into outputDir
	// and returns the path written
	WriteCleaned(ctx context.Context, outputDir string, fixes []model.CellFix) (string, error)
}

// Open returns the source for a file path based on its extension
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVSource(path), nil
	case ".xlsx", ".xlsm":
		return NewXLSXSource(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}
}

// IsSupported reports whether Open can read the file. Office lock files ("~$name.xlsx")
// and cleaned copies are never supported.
func IsSupported(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || IsCleanedFile(base) {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// CleanedFileName returns "<name>_cleaned<ext>" for a source path
func CleanedFileName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + cleanedSuffix + ext
}

// IsCleanedFile reports whether the name was produced by CleanedFileName
func IsCleanedFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), cleanedSuffix)
}

// headerNames replaces blank headers with the column letter
func headerNames(header []string, width int) []string {
	if width < len(header) {
		width = len(header)
	}
	columns := make([]string, width)
	for i := range columns {
		if i < len(header) {
			columns[i] = strings.TrimSpace(header[i])
		}
		if columns[i] == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				name = fmt.Sprintf("Column%d", i+1)
			}
			columns[i] = name
		}
	}
	return columns
}

// maxWidth returns the length of the longest row
func maxWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
