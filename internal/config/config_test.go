package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/campusfinder/internal/route"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CAMPUSFINDER_SERVER", "CAMPUSFINDER_HOME", "CAMPUSFINDER_LOG_LEVEL", "CAMPUSFINDER_THEME"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.Server.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout())
	assert.Equal(t, route.Home, cfg.StartPath())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: https://lostfound.campus.edu/api
  timeout: 15s
logging:
  level: debug
ui:
  theme: neon
  start_page: search
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://lostfound.campus.edu/api", cfg.Server.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "neon", cfg.UI.Theme)
	assert.Equal(t, route.Search, cfg.StartPath())
	assert.Equal(t, "campusfinder.log", cfg.Logging.File, "unset keys keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("CAMPUSFINDER_SERVER", "http://10.0.0.5:8080/api")
	t.Setenv("CAMPUSFINDER_HOME", home)
	t.Setenv("CAMPUSFINDER_LOG_LEVEL", "warn")
	t.Setenv("CAMPUSFINDER_THEME", "mono")

	cfg, err := Load(filepath.Join(home, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080/api", cfg.Server.BaseURL)
	assert.Equal(t, home, cfg.Storage.Dir)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "mono", cfg.UI.Theme)
	assert.Equal(t, filepath.Join(home, "campusfinder.log"), cfg.LogPath())
	assert.Equal(t, filepath.Join(home, "config.yaml"), DefaultPath())
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Server.Timeout = "3s"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"base url scheme", func(c *Config) { c.Server.BaseURL = "localhost:8080" }},
		{"timeout", func(c *Config) { c.Server.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Server.Timeout = "-1s" }},
		{"storage dir", func(c *Config) { c.Storage.Dir = "" }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"start page", func(c *Config) { c.UI.StartPage = "/admin" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
