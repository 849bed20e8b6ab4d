// pkg/report/audit.go
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/connector"
	"github.com/David-Botos/sheet-cleaner/pkg/model"
	"github.com/David-Botos/sheet-cleaner/pkg/scan"
)

// AuditTable is the table flagged cells are recorded in
const AuditTable = "sheet_cleaning_audit"

// auditBatchSize keeps each insert below the Postgres bind parameter limit
const auditBatchSize = 500

// auditRow is one flagged cell as stored in the audit table
type auditRow struct {
	RunID         string    `db:"run_id"`
	FileName      string    `db:"file_name"`
	SheetName     string    `db:"sheet_name"`
	Identifier    string    `db:"identifier"`
	RowNumber     int       `db:"row_number"`
	ColumnName    string    `db:"column_name"`
	OriginalValue string    `db:"original_value"`
	CleanedValue  string    `db:"cleaned_value"`
	SpecialChars  string    `db:"special_chars"`
	NonLatinChars string    `db:"non_latin_chars"`
	Modified      bool      `db:"modified"`
	Fixed         bool      `db:"fixed"`
	Suggestion    string    `db:"suggestion"`
	RecordedAt    time.Time `db:"recorded_at"`
}

func newAuditRow(runID string, rec model.CellRecord, now time.Time) auditRow {
	return auditRow{
		RunID:         runID,
		FileName:      rec.FileName,
		SheetName:     rec.SheetName,
		Identifier:    rec.Identifier,
		RowNumber:     rec.Row,
		ColumnName:    rec.Column,
		OriginalValue: rec.OriginalValue,
		CleanedValue:  rec.CleanedValue,
		SpecialChars:  rec.SpecialString(),
		NonLatinChars: rec.NonLatinString(),
		Modified:      rec.Modified,
		Fixed:         rec.Fixed,
		Suggestion:    rec.Suggestion,
		RecordedAt:    now,
	}
}

// AuditSink records flagged cells in a Postgres table
type AuditSink struct {
	db     *sqlx.DB
	schema string
	logger *zap.Logger
}

// NewAuditSink creates a sink writing to <schema>.sheet_cleaning_audit
func NewAuditSink(db *sqlx.DB, schema string, logger *zap.Logger) (*AuditSink, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := connector.ValidateIdentifier(schema); err != nil {
		return nil, fmt.Errorf("invalid audit schema: %w", err)
	}

	return &AuditSink{
		db:     db,
		schema: schema,
		logger: logger.Named("audit"),
	}, nil
}

// Table returns the qualified audit table name
func (s *AuditSink) Table() string {
	return s.schema + "." + AuditTable
}

// EnsureTable creates the audit table when it does not exist
func (s *AuditSink) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	sheet_name TEXT NOT NULL,
	identifier TEXT,
	row_number INTEGER NOT NULL,
	column_name TEXT NOT NULL,
	original_value TEXT,
	cleaned_value TEXT,
	special_chars TEXT,
	non_latin_chars TEXT,
	modified BOOLEAN NOT NULL DEFAULT FALSE,
	fixed BOOLEAN NOT NULL DEFAULT FALSE,
	suggestion TEXT,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.Table())

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}

func (s *AuditSink) insertQuery() string {
	return fmt.Sprintf(`INSERT INTO %s (run_id, file_name, sheet_name, identifier, row_number, column_name,
	original_value, cleaned_value, special_chars, non_latin_chars, modified, fixed, suggestion, recorded_at)
VALUES (:run_id, :file_name, :sheet_name, :identifier, :row_number, :column_name,
	:original_value, :cleaned_value, :special_chars, :non_latin_chars, :modified, :fixed, :suggestion, :recorded_at)`, s.Table())
}

// Write records every flagged cell of a scan in one transaction and returns
// the number of rows inserted
func (s *AuditSink) Write(ctx context.Context, result *scan.Result) (int, error) {
	if result == nil || len(result.Records) == 0 {
		return 0, nil
	}

	if err := s.EnsureTable(ctx); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	rows := make([]auditRow, len(result.Records))
	for i, rec := range result.Records {
		rows[i] = newAuditRow(result.RunID, rec, now)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer tx.Rollback()

	query := s.insertQuery()
	for start := 0; start < len(rows); start += auditBatchSize {
		end := start + auditBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return 0, fmt.Errorf("failed to insert audit rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit audit rows: %w", err)
	}

	s.logger.Info("Recorded audit rows",
		zap.String("table", s.Table()),
		zap.String("runID", result.RunID),
		zap.Int("rows", len(rows)))

	return len(rows), nil
}
