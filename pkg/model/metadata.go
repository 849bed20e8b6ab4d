// pkg/model/metadata.go
package model

import "strings"

// Sheet is one table-like input: a header row and the data rows beneath it
type Sheet struct {
	Name    string     // Sheet or table name
	Columns []string   // Column headers
	Rows    [][]string // Data rows; "" marks a missing cell
}

// IsEmpty reports whether the sheet has no data rows
func (s *Sheet) IsEmpty() bool {
	return len(s.Rows) == 0
}

// Cell returns the value at a 0-based row and column, "" when out of range
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

// ColumnName returns the header for a 0-based column index
func (s *Sheet) ColumnName(col int) string {
	if col >= 0 && col < len(s.Columns) {
		return s.Columns[col]
	}
	return ""
}

// Identifier returns the identifier value for a 0-based data row.
// idCol is the index returned by FindIdentifierColumn; found=false yields MissingIdentifier.
func (s *Sheet) Identifier(row, idCol int, found bool) string {
	if !found {
		return MissingIdentifier
	}
	value := s.Cell(row, idCol)
	if value == "" {
		return MissingIdentifier
	}
	return value
}

// FindIdentifierColumn returns the index of the first column whose name
// contains token, compared case-insensitively
func FindIdentifierColumn(columns []string, token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	for i, name := range columns {
		if contains(name, token) {
			return i, true
		}
	}
	return 0, false
}

// Helper functions for case-insensitive string operations
func normalizeColumnName(name string) string {
	return strings.ToLower(name)
}

func contains(s, substr string) bool {
	return strings.Contains(
		normalizeColumnName(s),
		normalizeColumnName(substr),
	)
}
