package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MOVES_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Config{
		Addr:             ":8080",
		DBPath:           "./data/moves.db",
		JWTSecret:        "test-secret",
		TokenTTL:         24 * time.Hour,
		SweepInterval:    time.Minute,
		SweepBatchLimit:  100,
		SweepConcurrency: 4,
		SweepOnList:      true,
		CORSOrigin:       "*",
		LogLevel:         "info",
		LogFormat:        "text",
	}, cfg)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MOVES_JWT_SECRET", "s")
	t.Setenv("MOVES_ADDR", "127.0.0.1:9000")
	t.Setenv("MOVES_SWEEP_INTERVAL", "0s")
	t.Setenv("MOVES_SWEEP_BATCH_LIMIT", "5")
	t.Setenv("MOVES_SWEEP_ON_LIST", "false")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Zero(t, cfg.SweepInterval)
	assert.Equal(t, 5, cfg.SweepBatchLimit)
	assert.False(t, cfg.SweepOnList)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("MOVES_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOVES_JWT_SECRET")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MOVES_JWT_SECRET", "s")
	t.Setenv("MOVES_SWEEP_CONCURRENCY", "0")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOVES_SWEEP_CONCURRENCY")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}
