package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MATCHER_SYMBOLS", "MATCHER_LOG_LEVEL", "MATCHER_LOG_PRETTY", "MATCHER_QUEUE_SIZE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"MATCHER_SYMBOLS=aapl, msft,,NVDA\nMATCHER_LOG_LEVEL=debug\nMATCHER_QUEUE_SIZE=16\n",
	), 0o644))

	// Environment wins over the file.
	t.Setenv("MATCHER_QUEUE_SIZE", "32")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, cfg.Symbols)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 32, cfg.QueueSize)
	assert.True(t, cfg.LogPretty)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad level":     {"MATCHER_LOG_LEVEL": "loud"},
		"bad pretty":    {"MATCHER_LOG_PRETTY": "sometimes"},
		"bad queue":     {"MATCHER_QUEUE_SIZE": "many"},
		"zero queue":    {"MATCHER_QUEUE_SIZE": "0"},
		"dup symbols":   {"MATCHER_SYMBOLS": "AAPL,aapl"},
		"blank symbols": {"MATCHER_SYMBOLS": " , "},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			t.Chdir(t.TempDir())
			_, err := Load("")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
