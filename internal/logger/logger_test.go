package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/image-feed/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := NewLogger(&config.LoggingConfig{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		DisableConsole: true,
	})
	require.NoError(t, err)

	logger.Info("feed page loaded", zap.Int("page", 1))
	logger.Debug("dropped below level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "feed page loaded")
	assert.Contains(t, string(data), `"page":1`)
	assert.NotContains(t, string(data), "dropped below level")
}

func TestNewLogger_InvalidSettings(t *testing.T) {
	_, err := NewLogger(&config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(&config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNewLogger_NoOutputsIsSilent(t *testing.T) {
	logger, err := NewLogger(&config.LoggingConfig{Level: "info", DisableConsole: true})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestSetLogger_NilFallsBackToNop(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, GetLogger())
	Info("does not panic")
}
