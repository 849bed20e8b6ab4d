// pkg/model/cleaning.go
package model

// MissingIdentifier is reported when a sheet has no identifier column
// or the row leaves that column empty
const MissingIdentifier = "N/A"

// CellRecord represents a single flagged cell found during a scan
type CellRecord struct {
	FileName      string // Source file (or table) the cell came from
	SheetName     string // Sheet name ("Sheet1" for CSV files)
	Identifier    string // Identifier column value for the row, or MissingIdentifier
	Row           int    // 1-based data row, header excluded
	Column        string // Column header
	OriginalValue string // Cell text as read
	CleanedValue  string // Cell text after cleaning (equal to original when exempt)
	SpecialChars  []rune // Disallowed characters, sorted by code point
	NonLatinChars []rune // Characters outside Basic Latin, sorted by code point
	Modified      bool   // Whether cleaning changed the value
	Fixed         bool   // Whether the cleaned value was written to a cleaned copy
	Suggestion    string // LLM suggestion, empty when suggestions are disabled
}

// SpecialString returns the special characters as a single string for reporting
func (r CellRecord) SpecialString() string {
	return string(r.SpecialChars)
}

// NonLatinString returns the non-Latin characters as a single string for reporting
func (r CellRecord) NonLatinString() string {
	return string(r.NonLatinChars)
}

// CellFix is a cleaned value to be written back into a cleaned copy of a source
type CellFix struct {
	Sheet  string // Sheet name
	Row    int    // 1-based data row, header excluded
	Column int    // 0-based column index
	Value  string // Cleaned value
}

// ScanSummary aggregates counters for a scan
type ScanSummary struct {
	TotalCells  int // Non-empty cells examined
	Flagged     int // Cells recorded in the report
	Fixed       int // Cells whose cleaned value was written back
	Files       int // Sources processed
	Sheets      int // Sheets processed
	FailedFiles int // Sources that could not be read or written
}

// Add merges another summary into this one
func (s *ScanSummary) Add(other ScanSummary) {
	s.TotalCells += other.TotalCells
	s.Flagged += other.Flagged
	s.Fixed += other.Fixed
	s.Files += other.Files
	s.Sheets += other.Sheets
	s.FailedFiles += other.FailedFiles
}
