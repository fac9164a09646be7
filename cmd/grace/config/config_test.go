package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Config{UserID: "casey", Theme: "light", Voice: true}
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadEmptyUserIDFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, Save(Config{Theme: "dark"}))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "operator", loaded.UserID)
}

func TestLoadMalformedReturnsError(t *testing.T) {
	t.Chdir(t.TempDir())

	dir, err := ConfigDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644))

	cfg, err := Load()
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
