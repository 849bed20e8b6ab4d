package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/config"
)

func TestValidateIdentifier(t *testing.T) {
	for _, name := range []string{"employees", "_tmp", "HR_2024", "ACCT$1"} {
		assert.NoError(t, ValidateIdentifier(name), name)
	}
	for _, name := range []string{"", "1table", "emp loyees", "t;drop", `"quoted"`, "a.b"} {
		assert.Error(t, ValidateIdentifier(name), name)
	}
}

func TestSplitTableName(t *testing.T) {
	schema, table, err := SplitTableName("employees", "public")
	require.NoError(t, err)
	assert.Equal(t, "public", schema)
	assert.Equal(t, "employees", table)

	schema, table, err = SplitTableName("payroll.staff", "public")
	require.NoError(t, err)
	assert.Equal(t, "payroll", schema)
	assert.Equal(t, "staff", table)

	_, _, err = SplitTableName("payroll.staff.extra", "public")
	assert.Error(t, err)

	_, _, err = SplitTableName("staff; DROP TABLE x", "public")
	assert.Error(t, err)

	_, _, err = SplitTableName("staff", "")
	assert.Error(t, err)
}

func TestConnectorFactory_UnknownDriver(t *testing.T) {
	f := NewConnectorFactory(&config.Config{}, zap.NewNop())

	conn, err := f.Create(context.Background(), "mysql")
	assert.Error(t, err)
	assert.Nil(t, conn)

	_, err = f.CreateSourceConnector(context.Background())
	assert.Error(t, err)
}

func TestConnectorFactory_MissingConfig(t *testing.T) {
	f := NewConnectorFactory(&config.Config{}, zap.NewNop())

	conn, err := f.Create(context.Background(), config.DriverPostgres)
	assert.Error(t, err)
	assert.Nil(t, conn)

	conn, err = f.Create(context.Background(), config.DriverSnowflake)
	assert.Error(t, err)
	assert.Nil(t, conn)
}
