// pkg/source/sql.go
package source

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/David-Botos/sheet-cleaner/pkg/connector"
	"github.com/David-Botos/sheet-cleaner/pkg/converter"
	"github.com/David-Botos/sheet-cleaner/pkg/model"
)

// SQLSource reads one database table as a sheet. It is read-only.
type SQLSource struct {
	db        *sqlx.DB
	schema    string
	table     string
	limit     int
	converter *converter.ValueConverter
}

// NewSQLSource creates a source for schema.table. A limit of 0 reads every row.
func NewSQLSource(db *sqlx.DB, schema, table string, limit int, conv *converter.ValueConverter) (*SQLSource, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if conv == nil {
		return nil, fmt.Errorf("value converter cannot be nil")
	}
	if err := connector.ValidateIdentifier(schema); err != nil {
		return nil, err
	}
	if err := connector.ValidateIdentifier(table); err != nil {
		return nil, err
	}

	return &SQLSource{
		db:        db,
		schema:    schema,
		table:     table,
		limit:     limit,
		converter: conv,
	}, nil
}

// NewTableSources creates one source per "table" or "schema.table" name
func NewTableSources(conn connector.DatabaseConnector, tables []string, limit int, conv *converter.ValueConverter) ([]Source, error) {
	sources := make([]Source, 0, len(tables))
	for _, name := range tables {
		schema, table, err := connector.SplitTableName(name, conn.DefaultSchema())
		if err != nil {
			return nil, err
		}
		src, err := NewSQLSource(conn.DB(), schema, table, limit, conv)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// Name returns schema.table
func (s *SQLSource) Name() string {
	return s.schema + "." + s.table
}

// Query returns the statement used to read the table
func (s *SQLSource) Query() string {
	query := fmt.Sprintf("SELECT * FROM %s.%s", s.schema, s.table)
	if s.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", s.limit)
	}
	return query
}

// Sheets reads the table as a single sheet named after it. NULLs become missing cells.
func (s *SQLSource) Sheets(ctx context.Context) ([]*model.Sheet, error) {
	rows, err := s.db.QueryxContext(ctx, s.Query())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.Name(), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.Name(), err)
	}

	sheet := &model.Sheet{Name: s.table, Columns: columns}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", s.Name(), err)
		}

		row := make([]string, len(values))
		for i, v := range values {
			if text, ok := s.converter.CellText(v); ok {
				row[i] = text
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", s.Name(), err)
	}

	return []*model.Sheet{sheet}, nil
}
