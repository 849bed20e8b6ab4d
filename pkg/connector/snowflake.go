// pkg/connector/snowflake.go
package connector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/config"
)

// SnowflakeDriver is the database/sql driver registered by gosnowflake
const SnowflakeDriver = "snowflake"

// SnowflakeConnector implements the DatabaseConnector interface for Snowflake
type SnowflakeConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*SnowflakeConnector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("snowflake configuration is required")
	}
	logger = logger.Named("snowflake-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := sf.DSN(cfg.DSNConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sqlx.Open(SnowflakeDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d", int(cfg.QueryTimeout.Seconds())))
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.Database, db)
	return &SnowflakeConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sqlx.DB {
	return c.db
}

// Driver returns the gosnowflake driver name
func (c *SnowflakeConnector) Driver() string {
	return SnowflakeDriver
}

// DefaultSchema returns the configured schema
func (c *SnowflakeConnector) DefaultSchema() string {
	return c.cfg.Schema
}

// Validate verifies the Snowflake connection and that it points at the configured database
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var session struct {
		Role      string `db:"ROLE"`
		Database  string `db:"DATABASE"`
		Warehouse string `db:"WAREHOUSE"`
	}
	err := c.db.GetContext(ctx, &session,
		`SELECT CURRENT_ROLE() AS "ROLE", CURRENT_DATABASE() AS "DATABASE", CURRENT_WAREHOUSE() AS "WAREHOUSE"`)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", session.Role),
		zap.String("database", session.Database),
		zap.String("warehouse", session.Warehouse))

	if !strings.EqualFold(session.Database, c.cfg.Database) {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			session.Database, c.cfg.Database)
	}

	return nil
}

// ListTables returns the base tables of a schema. Snowflake stores unquoted names upper case.
func (c *SnowflakeConnector) ListTables(ctx context.Context, schema string) ([]string, error) {
	return listTables(ctx, c.db, strings.ToUpper(schema))
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}
