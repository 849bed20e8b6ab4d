// pkg/report/xlsx.go
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/sheet-cleaner/pkg/cleaner"
	"github.com/David-Botos/sheet-cleaner/pkg/scan"
)

// Sheet names of the report workbook
const (
	DetailsSheet = "Details"
	SummarySheet = "Summary"
	ErrorsSheet  = "Errors"
)

// SuggestionHeader titles the LLM suggestion column
const SuggestionHeader = "AI Cleaned Value"

// DetailsHeader returns the header row of the details sheet
func DetailsHeader(identifierToken string, withSuggestions bool) []string {
	if identifierToken == "" {
		identifierToken = cleaner.DefaultIdentifierToken
	}
	header := []string{
		"File Name",
		"Sheet Name",
		identifierToken,
		"Row",
		"Column",
		"Original Value",
		"Cleaned Value",
		"Special Characters",
		"Non-Latin Characters",
	}
	if withSuggestions {
		header = append(header, SuggestionHeader)
	}
	return header
}

// WriteXLSX writes the scan report workbook to path
func WriteXLSX(path string, result *scan.Result, identifierToken string) error {
	if result == nil {
		return errors.New("scan result cannot be nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DetailsSheet); err != nil {
		return fmt.Errorf("failed to name details sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeDetails(f, result, identifierToken, headerStyle); err != nil {
		return err
	}
	if err := writeSummary(f, result, headerStyle); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		if err := writeErrors(f, result, headerStyle); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func writeDetails(f *excelize.File, result *scan.Result, identifierToken string, headerStyle int) error {
	withSuggestions := result.HasSuggestions()
	header := DetailsHeader(identifierToken, withSuggestions)
	if err := writeHeader(f, DetailsSheet, header, headerStyle); err != nil {
		return err
	}

	for i, rec := range result.Records {
		row := []interface{}{
			rec.FileName,
			rec.SheetName,
			rec.Identifier,
			rec.Row,
			rec.Column,
			rec.OriginalValue,
			rec.CleanedValue,
			rec.SpecialString(),
			rec.NonLatinString(),
		}
		if withSuggestions {
			row = append(row, rec.Suggestion)
		}
		if err := setRow(f, DetailsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(DetailsSheet, "A", "B", 20); err != nil {
		return fmt.Errorf("failed to size details columns: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(DetailsSheet, "F", lastCol, 30); err != nil {
		return fmt.Errorf("failed to size details columns: %w", err)
	}
	return f.SetPanes(DetailsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, result *scan.Result, headerStyle int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeHeader(f, SummarySheet, []string{"Metric", "Value"}, headerStyle); err != nil {
		return err
	}

	s := result.Summary
	rows := [][]interface{}{
		{"Total Cells", s.TotalCells},
		{"Flagged", s.Flagged},
		{"Fixed", s.Fixed},
		{"Files", s.Files},
		{"Failed Files", s.FailedFiles},
		{"Sheets", s.Sheets},
		{"Run ID", result.RunID},
	}
	if !result.StartTime.IsZero() {
		rows = append(rows, []interface{}{"Started", result.StartTime.Format("2006-01-02 15:04:05")})
	}

	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "B", 40)
}

func writeErrors(f *excelize.File, result *scan.Result, headerStyle int) error {
	if _, err := f.NewSheet(ErrorsSheet); err != nil {
		return fmt.Errorf("failed to create errors sheet: %w", err)
	}
	header := []string{"Category", "Source", "Sheet", "Row", "Column", "Message"}
	if err := writeHeader(f, ErrorsSheet, header, headerStyle); err != nil {
		return err
	}

	for i, e := range result.Errors {
		var row interface{}
		if e.Row > 0 {
			row = e.Row
		}
		values := []interface{}{e.Category.String(), e.Source, e.Sheet, row, e.Column, e.Message}
		if err := setRow(f, ErrorsSheet, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(ErrorsSheet, "F", "F", 60)
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}

	lastCell, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCell, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid %s row %d: %w", sheet, row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
