// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/config"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Create opens a connector for a driver name (config.DriverPostgres or config.DriverSnowflake)
func (f *ConnectorFactory) Create(ctx context.Context, driver string) (DatabaseConnector, error) {
	switch driver {
	case config.DriverPostgres:
		conn, err := f.CreatePostgresConnector(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case config.DriverSnowflake:
		conn, err := f.CreateSnowflakeConnector(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// CreateSourceConnector opens the connector for the configured table source
func (f *ConnectorFactory) CreateSourceConnector(ctx context.Context) (DatabaseConnector, error) {
	if f.cfg.Source.Driver == "" {
		return nil, fmt.Errorf("no source driver configured")
	}
	return f.Create(ctx, f.cfg.Source.Driver)
}

// CreateSnowflakeConnector creates a new Snowflake connector
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	f.logger.Info("Creating Snowflake connector")

	connector, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}

	return connector, nil
}

// CreatePostgresConnector creates a new PostgreSQL connector
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	f.logger.Info("Creating PostgreSQL connector")

	connector, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}

	return connector, nil
}
