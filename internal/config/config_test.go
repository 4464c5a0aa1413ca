package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	var c Config
	c.Normalize()
	assert.Equal(t, *DefaultConfig(), c)

	c = Config{Templates: "mine.yaml", HorizonDays: -3}
	c.Normalize()
	assert.Equal(t, "mine.yaml", c.Templates)
	assert.Equal(t, 30, c.HorizonDays)
}

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// The default file is persisted with restrictive permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// And loads back identically.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadExistingOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "templates: courses.yaml\nhorizon_days: 90\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "courses.yaml", cfg.Templates)
	assert.Equal(t, 90, cfg.HorizonDays)
	// Unset fields are normalized.
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "calendar.ics", cfg.Output)
}
