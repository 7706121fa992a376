package tripengine_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/tripengine"
	"github.com/eringen/tripengine/geocode"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tripengine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
name: "Slow Roads"
url: "https://trips.example.com"
build_workers: 8
geocoder:
  timeout: 3s
  disable_hint: true
log:
  format: json
`)

	cfg, err := tripengine.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Slow Roads", cfg.Name)
	assert.Equal(t, 8, cfg.BuildWorkers)
	assert.Equal(t, 3*time.Second, cfg.Geocoder.Timeout)
	assert.True(t, cfg.Geocoder.DisableHint)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.Equal(t, "data/posts", cfg.DataDir)
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr)
	assert.Equal(t, geocode.DefaultBaseURL, cfg.Geocoder.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "name: \"Slow Roads\"\n")
	t.Setenv("TRIPENGINE_NAME", "Fast Roads")
	t.Setenv("TRIPENGINE_GEOCODER_USER_AGENT", "test-agent/1.0")

	cfg, err := tripengine.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Fast Roads", cfg.Name)
	assert.Equal(t, "test-agent/1.0", cfg.Geocoder.UserAgent)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "log:\n  level: loud\n")

	_, err := tripengine.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "Level")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := tripengine.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSiteConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*tripengine.SiteConfig)
		wantErr bool
	}{
		{"defaults", func(*tripengine.SiteConfig) {}, false},
		{"bad url", func(c *tripengine.SiteConfig) { c.URL = "not a url" }, true},
		{"bad map style", func(c *tripengine.SiteConfig) { c.MapStyle = "tiles" }, true},
		{"no workers", func(c *tripengine.SiteConfig) { c.BuildWorkers = -1 }, true},
		{"bad log format", func(c *tripengine.SiteConfig) { c.Log.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tripengine.LoadConfig(writeConfig(t, "name: x\n"))
			require.NoError(t, err)
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		log, err := tripengine.NewLogger(tripengine.LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, format)
		require.NotNil(t, log)
	}
	_, err := tripengine.NewLogger(tripengine.LogConfig{Level: "loud", Format: "console"})
	assert.Error(t, err)
}
