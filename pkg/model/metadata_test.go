package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindIdentifierColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		token   string
		wantIdx int
		wantOK  bool
	}{
		{"exact match", []string{"Name", "EMPLID", "City"}, "EMPLID", 1, true},
		{"case insensitive substring", []string{"Name", "Emplid_Number"}, "EMPLID", 1, true},
		{"first match wins", []string{"emplid", "EMPLID2"}, "EMPLID", 0, true},
		{"no match", []string{"Name", "City"}, "EMPLID", 0, false},
		{"empty token", []string{"Name"}, "", 0, false},
		{"no columns", nil, "EMPLID", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := FindIdentifierColumn(tt.columns, tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIdx, idx)
		})
	}
}

func TestSheetIdentifier(t *testing.T) {
	sheet := &Sheet{
		Name:    "People",
		Columns: []string{"EMPLID", "Name"},
		Rows: [][]string{
			{"1001", "Valérie"},
			{"", "Bob"},
			{"1003"},
		},
	}

	idCol, found := FindIdentifierColumn(sheet.Columns, "emplid")
	assert.True(t, found)

	assert.Equal(t, "1001", sheet.Identifier(0, idCol, found))
	assert.Equal(t, MissingIdentifier, sheet.Identifier(1, idCol, found))
	assert.Equal(t, "1003", sheet.Identifier(2, idCol, found))
	assert.Equal(t, MissingIdentifier, sheet.Identifier(0, 0, false))

	// Short rows read as missing cells
	assert.Equal(t, "", sheet.Cell(2, 1))
	assert.Equal(t, "", sheet.Cell(5, 0))
}

func TestScanSummaryAdd(t *testing.T) {
	total := ScanSummary{TotalCells: 3, Flagged: 1}
	total.Add(ScanSummary{TotalCells: 2, Flagged: 2, Fixed: 1, Files: 1, Sheets: 2, FailedFiles: 1})

	assert.Equal(t, ScanSummary{TotalCells: 5, Flagged: 3, Fixed: 1, Files: 1, Sheets: 2, FailedFiles: 1}, total)
}
