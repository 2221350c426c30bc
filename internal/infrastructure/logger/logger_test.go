package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, 64, cfg.MaxSizeMB)

	l, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for in, want := range tests {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := New(&Config{Level: "bogus"})
	assert.Error(t, err)
}

func TestNew_FileOutputIsRotated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "store-admin.log")
	cfg := &Config{Level: "info", Format: "json", Output: path, MaxSizeMB: 1}

	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("order advanced")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "lumberjack creates missing directories")
	assert.Contains(t, string(data), `"msg":"order advanced"`)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := &Config{Level: "warn", Format: "json", Output: path}

	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}
