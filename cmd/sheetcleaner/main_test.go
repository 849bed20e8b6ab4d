package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/sheet-cleaner/pkg/config"
)

// withFlags sets the global flag values for one test
func withFlags(t *testing.T, format, level string) {
	t.Helper()
	prevEnv, prevFormat, prevLevel := envFile, logFormat, logLevel
	envFile = filepath.Join(t.TempDir(), "missing.env")
	logFormat, logLevel = format, level
	t.Cleanup(func() {
		envFile, logFormat, logLevel = prevEnv, prevFormat, prevLevel
	})
}

func TestLoadConfig_FlagOverridesInvalidEnvironment(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	withFlags(t, config.LogFormatConsole, "")

	loaded, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, config.LogFormatConsole, loaded.LogFormat)
}

func TestLoadConfig_InvalidEnvironmentWithoutOverride(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	withFlags(t, "", "")

	_, err := loadConfig(rootCmd)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestBuildLogger(t *testing.T) {
	_, err := buildLogger(&config.Config{LogLevel: "loud", LogFormat: config.LogFormatJSON})
	assert.Error(t, err)

	logger, err := buildLogger(&config.Config{LogLevel: "debug", LogFormat: config.LogFormatConsole})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
