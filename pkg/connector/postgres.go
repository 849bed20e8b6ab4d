// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/config"
)

// PostgresDriver is the database/sql driver registered by pgx
const PostgresDriver = "pgx"

// PostgresConnector implements the DatabaseConnector interface for PostgreSQL
type PostgresConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgreSQL configuration is required")
	}
	logger = logger.Named("postgres-connector")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open(PostgresDriver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Pooled connections do not share session settings, so this is best effort
	if cfg.StatementTimeout > 0 {
		_, err = db.ExecContext(ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()))
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.Database, db)
	return &PostgresConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sqlx.DB {
	return c.db
}

// Driver returns the pgx driver name
func (c *PostgresConnector) Driver() string {
	return PostgresDriver
}

// DefaultSchema returns the configured schema
func (c *PostgresConnector) DefaultSchema() string {
	return c.cfg.Schema
}

// Validate verifies the PostgreSQL connection and that the default schema exists
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	c.logger.Info("Connected to PostgreSQL", zap.String("version", version))

	var exists bool
	err := c.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)",
		c.cfg.Schema)
	if err != nil {
		return fmt.Errorf("failed to verify schema %s: %w", c.cfg.Schema, err)
	}
	if !exists {
		return fmt.Errorf("schema %s does not exist", c.cfg.Schema)
	}

	return nil
}

// ListTables returns the base tables of a schema
func (c *PostgresConnector) ListTables(ctx context.Context, schema string) ([]string, error) {
	return listTables(ctx, c.db, schema)
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}
