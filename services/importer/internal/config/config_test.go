package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "DATA_DIR", "IMPORT_TIMEOUT", "LOG_LEVEL", "DRY_RUN"} {
		t.Setenv(k, kv[k])
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, nil)
	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/neumonia"})
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, 2*time.Minute, cfg.ImportTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DryRun)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":   "postgres://localhost/neumonia",
		"DATA_DIR":       "/data/outputs",
		"IMPORT_TIMEOUT": "45s",
		"LOG_LEVEL":      "debug",
		"DRY_RUN":        "TRUE",
	})
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/outputs", cfg.DataDir)
	assert.Equal(t, 45*time.Second, cfg.ImportTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DryRun)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	for _, v := range []string{"soon", "-1m", "0s"} {
		setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/neumonia", "IMPORT_TIMEOUT": v})
		_, err := Load()
		assert.Error(t, err, v)
	}
}
