package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, 10, cfg.Query.PageSize)
	require.Equal(t, 10*time.Second, cfg.Resource.Timeout())
}

func TestLoadFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courtside.yaml")
	body := "server:\n  port: 9090\nresource:\n  base_url: http://api.internal/v2\n  timeout_seconds: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "http://api.internal/v2", cfg.Resource.BaseURL)
	require.Equal(t, 3*time.Second, cfg.Resource.Timeout())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("COURTSIDE_QUERY__PAGE_SIZE", "25")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Query.PageSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad mode", func(c *Config) { c.Server.Mode = "verbose" }},
		{"empty base url", func(c *Config) { c.Resource.BaseURL = " " }},
		{"zero timeout", func(c *Config) { c.Resource.TimeoutSeconds = 0 }},
		{"empty screen dir", func(c *Config) { c.Screens.ConfigDir = "" }},
		{"zero page size", func(c *Config) { c.Query.PageSize = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
