// Package config loads the YAML configuration of the artifactpg command.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers accepted in store.driver.
const (
	DriverMemory = "memory"
	DriverPgx    = "pgx"
	DriverSQL    = "sql"
)

// ValidDrivers lists the supported store drivers.
var ValidDrivers = []string{DriverMemory, DriverPgx, DriverSQL}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the artifactpg configuration file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP server and the UI mounted on it.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	BasePath        string `yaml:"base_path"`
	ReadOnly        bool   `yaml:"read_only"`
	PageSize        int    `yaml:"page_size"`
	RefreshInterval string `yaml:"refresh_interval"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StoreConfig selects where artifacts are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory, pgx, sql
	URL    string `yaml:"url"`

	// Retention deletes artifacts older than this; empty keeps everything.
	Retention string `yaml:"retention"`
}

// AnthropicConfig enables Ask. Without an API key the server only ingests
// and browses.
type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// AuthConfig configures session authentication. Users maps a username to a
// bcrypt hash.
type AuthConfig struct {
	Development  bool              `yaml:"development"`
	CookieName   string            `yaml:"cookie_name"`
	SessionTTL   string            `yaml:"session_ttl"`
	SecureCookie bool              `yaml:"secure_cookie"`
	Users        map[string]string `yaml:"users"`
}

// LoggingConfig configures the command logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	SeqURL string `yaml:"seq_url"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "",
			PageSize:        10,
			RefreshInterval: "5s",
			ShutdownTimeout: "10s",
		},
		Store: StoreConfig{
			Driver: DriverMemory,
		},
		Auth: AuthConfig{
			SessionTTL: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML configuration file over the defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the environment supply secrets and the database.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Store.URL = url
		if c.Store.Driver == "" || c.Store.Driver == DriverMemory {
			c.Store.Driver = DriverPgx
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Anthropic.APIKey = key
	}
	if url := os.Getenv("SEQ_URL"); url != "" {
		c.Logging.SeqURL = url
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.PageSize < 1 {
		return fmt.Errorf("%w: server.page_size must be positive", ErrInvalidConfig)
	}
	if !slices.Contains(ValidDrivers, c.Store.Driver) {
		return fmt.Errorf("%w: invalid store.driver %q (valid: %v)", ErrInvalidConfig, c.Store.Driver, ValidDrivers)
	}
	if c.Store.Driver != DriverMemory && c.Store.URL == "" {
		return fmt.Errorf("%w: store.url is required for the %s driver", ErrInvalidConfig, c.Store.Driver)
	}
	if !c.Auth.Development && len(c.Auth.Users) == 0 {
		return fmt.Errorf("%w: auth.users is required unless auth.development is set", ErrInvalidConfig)
	}
	for name, d := range map[string]string{
		"server.refresh_interval": c.Server.RefreshInterval,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"auth.session_ttl":        c.Auth.SessionTTL,
		"store.retention":         c.Store.Retention,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

// GetRefreshInterval returns server.refresh_interval, or 5s when unset.
func (c *Config) GetRefreshInterval() time.Duration {
	return parseDuration(c.Server.RefreshInterval, 5*time.Second)
}

// GetShutdownTimeout returns server.shutdown_timeout, or 10s when unset.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetSessionTTL returns auth.session_ttl, or 24h when unset.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Auth.SessionTTL, 24*time.Hour)
}

// GetRetention returns store.retention, or 0 (keep forever) when unset.
func (c *Config) GetRetention() time.Duration {
	return parseDuration(c.Store.Retention, 0)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
