// Package config loads the vpnl configuration from a YAML file, with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/etnz/pnl"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the whole configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Quotes QuotesConfig `yaml:"quotes"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// StoreConfig selects the timeline database.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn"`    // file path for sqlite, connection string for postgres
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Listen    string  `yaml:"listen"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second
	Burst     int     `yaml:"burst"`
}

// QuotesConfig tells where to read current quotes for all stored positions.
// Paths may contain "{vault}".
type QuotesConfig struct {
	File           string `yaml:"file"` // JSON document
	pnl.QuotePaths `yaml:",inline"`
}

// Load reads the configuration at path, then a .env file if any, then the
// environment. A missing file at path is not an error: defaults are used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("negative rate limit %v", c.Server.RateLimit)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PNL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PNL_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PNL_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("PNL_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("PNL_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("PNL_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PNL_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = f
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.DSN == "" && cfg.Store.Driver == "sqlite" {
		cfg.Store.DSN = "vpnl.db"
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 20
	}
	if cfg.Server.Burst <= 0 {
		cfg.Server.Burst = 40
	}
}
