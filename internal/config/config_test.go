package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://claude.ai/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.CacheTTL)
	assert.Equal(t, time.Second, cfg.WatchInterval)
	assert.True(t, cfg.Notifications)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "state.json", filepath.Base(cfg.StatePath))
	assert.Equal(t, "plans.toml", filepath.Base(cfg.PlansPath))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
state_path = "/tmp/cwm-state.json"
watch_interval = "250ms"
debug = true

[api]
base_url = "https://example.test/api"
cache_ttl = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CWM_CONFIG", path)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cwm-state.json", cfg.StatePath)
	assert.Equal(t, "https://example.test/api", cfg.API.BaseURL)
	assert.True(t, cfg.Debug)

	// Sub-second polling and sub-30s caching are clamped to their floors.
	assert.Equal(t, time.Second, cfg.WatchInterval)
	assert.Equal(t, 30*time.Second, cfg.API.CacheTTL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CWM_API_TOKEN", "sk-test")
	t.Setenv("CWM_DEBUG", "true")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.API.Token)
	assert.True(t, cfg.Debug)
}
