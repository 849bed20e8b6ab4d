// pkg/converter/converter.go
package converter

import (
	"go.uber.org/zap"
)

// ValueConverter turns database values into the cell text handed to the cleaner
type ValueConverter struct {
	logger *zap.Logger
	// Configuration options
	config Config
}

// Config provides configuration options for value conversion
type Config struct {
	// Layout for time values that carry no time of day
	DateLayout string
	// Layout for every other time value
	TimestampLayout string
	// Strings treated as a missing cell
	NullMarkers []string
	// Treat strings made only of whitespace as missing
	BlankAsNull bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DateLayout:      "2006/01/02",
		TimestampLayout: "2006-01-02T15:04:05Z07:00",
		NullMarkers:     []string{"null", "NULL", "nil", "NIL"},
		BlankAsNull:     false,
	}
}

// NewValueConverter creates a new ValueConverter with default configuration
func NewValueConverter(logger *zap.Logger) *ValueConverter {
	return NewValueConverterWithConfig(logger, DefaultConfig())
}

// NewValueConverterWithConfig creates a ValueConverter with custom configuration
func NewValueConverterWithConfig(logger *zap.Logger, config Config) *ValueConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValueConverter{
		logger: logger,
		config: config,
	}
}
