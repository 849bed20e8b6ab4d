// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"

	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/model"
)

// DefaultIdentifierToken is matched against column names to find the identifier column
const DefaultIdentifierToken = "EMPLID"

// SheetOptions controls whether cleaned values are written back
type SheetOptions struct {
	AutoFix bool // Persist cleaned values into a cleaned copy
	DryRun  bool // Report only, even when AutoFix is set
}

// WritesFixes reports whether cleaned values should be persisted
func (o SheetOptions) WritesFixes() bool {
	return o.AutoFix && !o.DryRun
}

// SheetResult holds everything produced while cleaning one sheet
type SheetResult struct {
	Records []model.CellRecord
	Fixes   []model.CellFix
	Summary model.ScanSummary
}

// DataCleaner walks sheets cell by cell and classifies every non-empty value
type DataCleaner struct {
	policy          *Policy
	identifierToken string
	logger          *zap.Logger
}

// NewDataCleaner creates a new DataCleaner for a compiled policy
func NewDataCleaner(policy *Policy, identifierToken string, logger *zap.Logger) (*DataCleaner, error) {
	if policy == nil {
		return nil, errors.New("cleaning policy cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if identifierToken == "" {
		identifierToken = DefaultIdentifierToken
	}

	return &DataCleaner{
		policy:          policy,
		identifierToken: identifierToken,
		logger:          logger,
	}, nil
}

// Policy returns the policy the cleaner evaluates against
func (c *DataCleaner) Policy() *Policy {
	return c.policy
}

// IdentifierToken returns the token used to locate the identifier column
func (c *DataCleaner) IdentifierToken() string {
	return c.identifierToken
}

// CleanSheet classifies every non-empty cell of a sheet, row by row then column by column.
// A record is produced for each cell containing special or non-Latin characters.
// Only those cells are fixed.
func (c *DataCleaner) CleanSheet(fileName string, sheet *model.Sheet, opts SheetOptions) SheetResult {
	result := SheetResult{Summary: model.ScanSummary{Sheets: 1}}
	if sheet == nil || sheet.IsEmpty() {
		return result
	}

	idCol, hasID := model.FindIdentifierColumn(sheet.Columns, c.identifierToken)
	writeFixes := opts.WritesFixes()

	for rowIdx, row := range sheet.Rows {
		for colIdx, value := range row {
			// Missing cells never reach the classifier
			if value == "" {
				continue
			}
			result.Summary.TotalCells++

			classification := ClassifyAndClean(value, c.policy)
			if !classification.Flagged() {
				continue
			}

			record := model.CellRecord{
				FileName:      fileName,
				SheetName:     sheet.Name,
				Identifier:    sheet.Identifier(rowIdx, idCol, hasID),
				Row:           rowIdx + 1,
				Column:        sheet.ColumnName(colIdx),
				OriginalValue: value,
				CleanedValue:  classification.Cleaned,
				SpecialChars:  classification.Special,
				NonLatinChars: classification.NonLatin,
				Modified:      classification.Modified,
			}
			result.Summary.Flagged++

			if classification.Modified && writeFixes {
				record.Fixed = true
				result.Summary.Fixed++
				result.Fixes = append(result.Fixes, model.CellFix{
					Sheet:  sheet.Name,
					Row:    rowIdx + 1,
					Column: colIdx,
					Value:  classification.Cleaned,
				})
			}

			result.Records = append(result.Records, record)
		}
	}

	c.logger.Debug("Cleaned sheet",
		zap.String("file", fileName),
		zap.String("sheet", sheet.Name),
		zap.Int("cells", result.Summary.TotalCells),
		zap.Int("flagged", result.Summary.Flagged),
		zap.Int("fixed", result.Summary.Fixed))

	return result
}
