package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Resource ResourceConfig `koanf:"resource"`
	Screens  ScreensConfig  `koanf:"screens"`
	Query    QueryConfig    `koanf:"query"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

// ResourceConfig points at the Resource API collaborator. The timeout is
// the only one in the system; the aggregation layer above never enforces
// its own.
type ResourceConfig struct {
	BaseURL        string `koanf:"base_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

func (c ResourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ScreensConfig struct {
	ConfigDir      string `koanf:"config_dir"`
	RequireScreens bool   `koanf:"require_screens"`
}

type QueryConfig struct {
	PageSize    int `koanf:"page_size"`
	RecentLimit int `koanf:"recent_limit"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Resource.BaseURL) == "" {
		return fmt.Errorf("resource.base_url is required")
	}
	if c.Resource.TimeoutSeconds <= 0 {
		return fmt.Errorf("resource.timeout_seconds must be > 0")
	}

	if strings.TrimSpace(c.Screens.ConfigDir) == "" {
		return fmt.Errorf("screens.config_dir is required")
	}

	if c.Query.PageSize <= 0 {
		return fmt.Errorf("query.page_size must be > 0")
	}
	if c.Query.RecentLimit <= 0 {
		return fmt.Errorf("query.recent_limit must be > 0")
	}
	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":              8080,
		"server.host":              "0.0.0.0",
		"server.mode":              "release",
		"resource.base_url":        "http://localhost:3000/api",
		"resource.timeout_seconds": 10,
		"screens.config_dir":       "./config/screens",
		"screens.require_screens":  true,
		"query.page_size":          10,
		"query.recent_limit":       5,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("COURTSIDE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "COURTSIDE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
