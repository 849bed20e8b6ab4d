// pkg/connector/connector.go
package connector

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DatabaseConnector defines the interface for database connectors
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sqlx.DB

	// Driver returns the driver name the connection was opened with
	Driver() string

	// DefaultSchema is used for table names given without a schema
	DefaultSchema() string

	// Validate verifies the connection and permissions
	Validate(ctx context.Context) error

	// ListTables returns the base tables of a schema
	ListTables(ctx context.Context, schema string) ([]string, error)

	// Close closes the connection and releases resources
	Close() error
}

// identifierPattern accepts unquoted SQL identifiers
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidateIdentifier rejects names that cannot be interpolated into SQL unquoted
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid SQL identifier %q", name)
	}
	return nil
}

// SplitTableName splits "schema.table" and validates both parts.
// A bare table name gets defaultSchema.
func SplitTableName(name, defaultSchema string) (string, string, error) {
	schema, table := defaultSchema, name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		schema, table = name[:i], name[i+1:]
	}
	if err := ValidateIdentifier(schema); err != nil {
		return "", "", err
	}
	if err := ValidateIdentifier(table); err != nil {
		return "", "", err
	}
	return schema, table, nil
}

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sqlx.DB) ConnStats {
	stats := db.Stats()
	return ConnStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sqlx.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConns),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if pingCtx.Err() != nil {
			return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
		}
		return err
	}
	return nil
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sqlx.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}

// listTables runs an information_schema query shared by both drivers
func listTables(ctx context.Context, db *sqlx.DB, schema string) ([]string, error) {
	var tables []string
	query := db.Rebind(`
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err := db.SelectContext(ctx, &tables, query, schema); err != nil {
		return nil, fmt.Errorf("failed to retrieve tables from schema %s: %w", schema, err)
	}
	return tables, nil
}
