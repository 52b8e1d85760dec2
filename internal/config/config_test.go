package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ADDR: \":9000\"\nSEED: 7\n"), 0o644))

	t.Setenv("NEWSIM_SEED", "99")
	t.Setenv("NEWSIM_LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr, "file value survives")
	assert.Equal(t, int64(99), cfg.Seed, "env wins over file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Default().DBPath, cfg.DBPath)
}

func TestLoadBadSeed(t *testing.T) {
	t.Setenv("NEWSIM_SEED", "not-a-number")
	_, err := Load("")
	assert.Error(t, err)
}
