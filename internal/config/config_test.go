package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), ".grace", "grace.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.GetPollInterval())
	assert.Equal(t, 3, cfg.GetMaxNewPerKind())
	assert.True(t, cfg.Hub.AutoOpenWorkspaces)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grace.yaml")
	content := `backend:
  base_url: https://grace.example.com
  user_id: alice
  timeout: 5s
hub:
  poll_interval: 10s
  max_new_per_kind: 5
  auto_open_workspaces: false
logging:
  debug_mode: true
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://grace.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "alice", cfg.Backend.UserID)
	assert.Equal(t, 5*time.Second, cfg.GetBackendTimeout())
	assert.Equal(t, 10*time.Second, cfg.GetPollInterval())
	assert.Equal(t, 5, cfg.GetMaxNewPerKind())
	assert.False(t, cfg.Hub.AutoOpenWorkspaces)
	assert.True(t, cfg.Logging.DebugMode)
}

func TestLoadMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GRACE_BACKEND_URL", "https://env.example.com")
	t.Setenv("GRACE_USER_ID", "bob")
	t.Setenv("GRACE_POLL_INTERVAL", "7s")

	cfg, err := Load(filepath.Join(t.TempDir(), "grace.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "bob", cfg.Backend.UserID)
	assert.Equal(t, 7*time.Second, cfg.GetPollInterval())
}

func TestBadDurationsFallBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hub.PollInterval = "not-a-duration"
	cfg.Backend.Timeout = "-5s"

	assert.Equal(t, 3*time.Second, cfg.GetPollInterval())
	assert.Equal(t, 10*time.Second, cfg.GetBackendTimeout())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".grace", "grace.yaml")

	cfg := DefaultConfig()
	cfg.Backend.UserID = "carol"
	cfg.Hub.PollInterval = "2s"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "carol", loaded.Backend.UserID)
	assert.Equal(t, 2*time.Second, loaded.GetPollInterval())
}
