package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "brandscope.db", cfg.Store.SQLitePath)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, int64(2048), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Anthropic.Temperature, 1e-9)
	assert.Equal(t, 10, cfg.Anthropic.RequestsPerMinute)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BRANDSCOPE_STORE_DRIVER", "postgres")
	t.Setenv("BRANDSCOPE_STORE_DATABASE_URL", "postgres://localhost/brandscope")
	t.Setenv("BRANDSCOPE_ANTHROPIC_KEY", "sk-test")
	t.Setenv("BRANDSCOPE_GATE_PASSPHRASE", "hunter2")
	t.Setenv("BRANDSCOPE_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/brandscope", cfg.Store.DatabaseURL)
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "hunter2", cfg.Gate.Passphrase)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level"}))
}
