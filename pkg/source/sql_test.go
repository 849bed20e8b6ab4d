package source

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/converter"
)

// tableDriver serves canned result sets keyed by query text
type tableDriver struct{}

type tableResult struct {
	columns []string
	rows    [][]driver.Value
}

var tableResults = map[string]tableResult{
	"SELECT * FROM hr.staff LIMIT 10": {
		columns: []string{"emplid", "name", "hired", "notes"},
		rows: [][]driver.Value{
			{int64(1001), "Valérie", time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), nil},
			{int64(1002), []byte("Café #5!"), nil, "NULL"},
		},
	},
	"SELECT * FROM public.empty": {
		columns: []string{"id"},
	},
}

func init() {
	sql.Register("sourcetest", tableDriver{})
}

func (tableDriver) Open(string) (driver.Conn, error) {
	return tableConn{}, nil
}

type tableConn struct{}

func (tableConn) Prepare(query string) (driver.Stmt, error) {
	return tableStmt{query: query}, nil
}

func (tableConn) Close() error {
	return nil
}

func (tableConn) Begin() (driver.Tx, error) {
	return nil, fmt.Errorf("transactions not supported")
}

type tableStmt struct{ query string }

func (s tableStmt) Close() error {
	return nil
}

func (s tableStmt) NumInput() int {
	return -1
}

func (s tableStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, fmt.Errorf("exec not supported")
}

func (s tableStmt) Query([]driver.Value) (driver.Rows, error) {
	result, ok := tableResults[s.query]
	if !ok {
		return nil, fmt.Errorf("relation for %q does not exist", s.query)
	}
	return &tableRows{result: result}, nil
}

type tableRows struct {
	result tableResult
	pos    int
}

func (r *tableRows) Columns() []string {
	return r.result.columns
}

func (r *tableRows) Close() error {
	return nil
}

func (r *tableRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.result.rows) {
		return io.EOF
	}
	copy(dest, r.result.rows[r.pos])
	r.pos++
	return nil
}

// tableConnector satisfies connector.DatabaseConnector over the canned driver
type tableConnector struct{ db *sqlx.DB }

func (c tableConnector) DB() *sqlx.DB {
	return c.db
}

func (c tableConnector) Driver() string {
	return "sourcetest"
}

func (c tableConnector) DefaultSchema() string {
	return "public"
}

func (c tableConnector) Validate(context.Context) error {
	return nil
}

func (c tableConnector) ListTables(context.Context, string) ([]string, error) {
	return nil, nil
}

func (c tableConnector) Close() error {
	return c.db.Close()
}

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sourcetest", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLSource_Sheets(t *testing.T) {
	src, err := NewSQLSource(openTestDB(t), "hr", "staff", 10, converter.NewValueConverter(zap.NewNop()))
	require.NoError(t, err)

	assert.Equal(t, "hr.staff", src.Name())
	assert.Equal(t, "SELECT * FROM hr.staff LIMIT 10", src.Query())

	sheets, err := src.Sheets(context.Background())
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	sheet := sheets[0]
	assert.Equal(t, "staff", sheet.Name)
	assert.Equal(t, []string{"emplid", "name", "hired", "notes"}, sheet.Columns)
	assert.Equal(t, [][]string{
		{"1001", "Valérie", "2020/01/15", ""},
		{"1002", "Café #5!", "", ""},
	}, sheet.Rows)
}

func TestSQLSource_QueryError(t *testing.T) {
	src, err := NewSQLSource(openTestDB(t), "hr", "missing", 0, converter.NewValueConverter(nil))
	require.NoError(t, err)

	_, err = src.Sheets(context.Background())
	assert.ErrorContains(t, err, "hr.missing")
}

func TestNewSQLSource_RejectsBadIdentifiers(t *testing.T) {
	db := openTestDB(t)
	conv := converter.NewValueConverter(nil)

	_, err := NewSQLSource(db, "hr", "staff; DROP TABLE staff", 0, conv)
	assert.Error(t, err)

	_, err = NewSQLSource(db, "", "staff", 0, conv)
	assert.Error(t, err)

	_, err = NewSQLSource(nil, "hr", "staff", 0, conv)
	assert.Error(t, err)
}

func TestNewTableSources(t *testing.T) {
	conn := tableConnector{db: openTestDB(t)}

	sources, err := NewTableSources(conn, []string{"empty", "hr.staff"}, 0, converter.NewValueConverter(nil))
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "public.empty", sources[0].Name())
	assert.Equal(t, "hr.staff", sources[1].Name())

	sheets, err := sources[0].Sheets(context.Background())
	require.NoError(t, err)
	assert.True(t, sheets[0].IsEmpty())

	_, err = NewTableSources(conn, []string{"bad name"}, 0, converter.NewValueConverter(nil))
	assert.Error(t, err)
}
