package report

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/sheet-cleaner/pkg/model"
	"github.com/David-Botos/sheet-cleaner/pkg/scan"
)

func testResult() *scan.Result {
	return &scan.Result{
		RunID: "run-42",
		Records: []model.CellRecord{
			{
				FileName:      "staff.xlsx",
				SheetName:     "Staff",
				Identifier:    "1001",
				Row:           1,
				Column:        "Note",
				OriginalValue: "Café #5!",
				CleanedValue:  "Café 5",
				SpecialChars:  []rune{'!', '#'},
				NonLatinChars: []rune{'é'},
				Modified:      true,
			},
			{
				FileName:      "staff.xlsx",
				SheetName:     "Staff",
				Identifier:    model.MissingIdentifier,
				Row:           2,
				Column:        "Name",
				OriginalValue: "Zoë",
				CleanedValue:  "Zoë",
				NonLatinChars: []rune{'ë'},
			},
		},
		Summary: model.ScanSummary{TotalCells: 12, Flagged: 2, Fixed: 0, Files: 1, Sheets: 1},
	}
}

func readRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "report.xlsx")

	require.NoError(t, WriteXLSX(path, testResult(), "STUDENT_ID"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{DetailsSheet, SummarySheet}, f.GetSheetList())
	require.NoError(t, f.Close())

	details := readRows(t, path, DetailsSheet)
	require.Len(t, details, 3)
	assert.Equal(t, DetailsHeader("STUDENT_ID", false), details[0])
	assert.Equal(t, []string{"staff.xlsx", "Staff", "1001", "1", "Note", "Café #5!", "Café 5", "!#", "é"}, details[1])
	assert.Equal(t, []string{"staff.xlsx", "Staff", "N/A", "2", "Name", "Zoë", "Zoë", "", "ë"}, details[2])

	summary := readRows(t, path, SummarySheet)
	assert.Equal(t, []string{"Metric", "Value"}, summary[0])
	assert.Equal(t, []string{"Total Cells", "12"}, summary[1])
	assert.Equal(t, []string{"Flagged", "2"}, summary[2])
	assert.Equal(t, []string{"Fixed", "0"}, summary[3])
	assert.Contains(t, summary, []string{"Run ID", "run-42"})
}

func TestWriteXLSX_Suggestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	result := testResult()
	result.Records[0].Suggestion = "Cafe 5"
	result.Records[1].Suggestion = "Error: rate limited"

	require.NoError(t, WriteXLSX(path, result, ""))

	details := readRows(t, path, DetailsSheet)
	assert.Equal(t, "EMPLID", details[0][2])
	assert.Equal(t, SuggestionHeader, details[0][9])
	assert.Equal(t, "Cafe 5", details[1][9])
	assert.Equal(t, "Error: rate limited", details[2][9])
}

func TestWriteXLSX_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	result := testResult()
	result.Errors = []scan.ErrorRecord{
		scan.NewErrorRecord(errors.New("no such file"), scan.ErrorCategoryFileLevel).WithSource("gone.csv"),
	}

	require.NoError(t, WriteXLSX(path, result, ""))

	rows := readRows(t, path, ErrorsSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"FileLevel", "gone.csv", "", "", "", "no such file"}, rows[1])
}

func TestWriteXLSX_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	require.NoError(t, WriteXLSX(path, &scan.Result{}, ""))

	details := readRows(t, path, DetailsSheet)
	require.Len(t, details, 1)

	assert.Error(t, WriteXLSX(path, nil, ""))
}
