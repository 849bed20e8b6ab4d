// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Config represents the application configuration
type Config struct {
	// Cleaning policy file (JSON or YAML)
	PolicyPath string

	// Overrides the policy file's identifier token when set
	IdentifierToken string

	// Scan settings
	WorkerPoolSize int // 0 means runtime.NumCPU()
	RetryAttempts  int
	RetryDelay     time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// LLM suggestions for flagged cells
	LLM LLMConfig

	// Database connections, nil when not configured
	Postgres  *PostgresConfig
	Snowflake *SnowflakeConfig

	// Tables scanned by the db source
	Source SourceConfig

	// Write flagged cells to the audit table in Postgres
	AuditEnabled bool
}

// LLMConfig holds settings for the OpenAI-compatible suggestion endpoint
type LLMConfig struct {
	Enabled       bool
	BaseURL       string
	APIKey        string
	Model         string
	Timeout       time.Duration
	MaxInputChars int
	Temperature   float64
}

// LoadConfig loads configuration from environment variables. Variables from
// the given .env files (".env" when none are given) are applied first without
// overriding the environment; missing files are ignored. The result is not
// validated: apply overrides first, then call Validate.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		PolicyPath:      getEnv("SHEETCLEANER_CONFIG", "config.json"),
		IdentifierToken: getEnv("IDENTIFIER_TOKEN", ""),
		WorkerPoolSize:  getEnvAsInt("WORKER_POOL_SIZE", 0),
		RetryAttempts:   getEnvAsInt("RETRY_ATTEMPTS", 3),
		RetryDelay:      time.Duration(getEnvAsInt("RETRY_DELAY_MS", 1000)) * time.Millisecond,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", LogFormatJSON),
		LLM: LLMConfig{
			Enabled:       getEnvAsBool("LLM_ENABLED", false),
			BaseURL:       getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			APIKey:        getEnv("LLM_API_KEY", ""),
			Model:         getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
			Timeout:       time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxInputChars: getEnvAsInt("LLM_MAX_INPUT_CHARS", 1000),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.6),
		},
		Source:       LoadSourceConfig(),
		AuditEnabled: getEnvAsBool("AUDIT_ENABLED", false),
	}

	if postgresConfigured() {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
		}
		cfg.Postgres = pgConfig
	}

	if snowflakeConfigured() {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		cfg.Snowflake = snowConfig
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.WorkerPoolSize < 0 {
		return errors.New("worker pool size cannot be negative")
	}

	if c.RetryAttempts < 0 {
		return errors.New("retry attempts cannot be negative")
	}

	if c.RetryDelay < 0 {
		return errors.New("retry delay cannot be negative")
	}

	switch c.LogFormat {
	case LogFormatJSON, LogFormatConsole:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	if c.LLM.Enabled {
		if c.LLM.BaseURL == "" {
			return errors.New("LLM_BASE_URL is required when LLM suggestions are enabled")
		}
		if c.LLM.Model == "" {
			return errors.New("LLM_MODEL is required when LLM suggestions are enabled")
		}
		if c.LLM.Timeout <= 0 {
			return errors.New("LLM timeout must be positive")
		}
	}

	if c.AuditEnabled && c.Postgres == nil {
		return errors.New("audit table requires PostgreSQL configuration")
	}

	switch c.Source.Driver {
	case "":
	case DriverPostgres:
		if c.Postgres == nil {
			return errors.New("postgres source requires PostgreSQL configuration")
		}
	case DriverSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake source requires Snowflake configuration")
		}
	default:
		return fmt.Errorf("unknown source driver %q", c.Source.Driver)
	}

	if c.Source.Driver != "" && len(c.Source.Tables) == 0 {
		return errors.New("SOURCE_TABLES is required when a source driver is set")
	}

	return nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	var result []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.Trim(strings.TrimSpace(v), `"`); v != "" {
			result = append(result, v)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}
	return result
}
