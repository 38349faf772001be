package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifactpg.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("SEQ_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("SEQ_URL", "")

	path := writeConfig(t, `
server:
  addr: ":9090"
  read_only: true
  refresh_interval: 2s
store:
  driver: sql
  url: postgres://localhost/artifacts
  retention: 720h
anthropic:
  model: claude-test
auth:
  session_ttl: 1h
  users:
    admin: "$2a$10$hash"
logging:
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultConfig()
	want.Server.Addr = ":9090"
	want.Server.ReadOnly = true
	want.Server.RefreshInterval = "2s"
	want.Store = StoreConfig{Driver: DriverSQL, URL: "postgres://localhost/artifacts", Retention: "720h"}
	want.Anthropic.Model = "claude-test"
	want.Auth.SessionTTL = "1h"
	want.Auth.Users = map[string]string{"admin": "$2a$10$hash"}
	want.Logging.Format = "json"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if got := cfg.GetRefreshInterval(); got != 2*time.Second {
		t.Errorf("GetRefreshInterval() = %v", got)
	}
	if got := cfg.GetSessionTTL(); got != time.Hour {
		t.Errorf("GetSessionTTL() = %v", got)
	}
	if got := cfg.GetRetention(); got != 30*24*time.Hour {
		t.Errorf("GetRetention() = %v", got)
	}
	if got := DefaultConfig().GetRetention(); got != 0 {
		t.Errorf("default GetRetention() = %v, want 0", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("ANTHROPIC_API_KEY", "sk-env")
	t.Setenv("SEQ_URL", "http://seq:5341")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Driver != DriverPgx || cfg.Store.URL != "postgres://env/db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Anthropic.APIKey != "sk-env" {
		t.Errorf("api key = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Logging.SeqURL != "http://seq:5341" {
		t.Errorf("seq url = %q", cfg.Logging.SeqURL)
	}
}

func TestValidate(t *testing.T) {
	dev := func(mut func(*Config)) *Config {
		cfg := DefaultConfig()
		cfg.Auth.Development = true
		mut(cfg)
		return cfg
	}
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"development defaults", dev(func(*Config) {}), false},
		{"no users", DefaultConfig(), true},
		{"empty addr", dev(func(c *Config) { c.Server.Addr = "" }), true},
		{"zero page size", dev(func(c *Config) { c.Server.PageSize = 0 }), true},
		{"unknown driver", dev(func(c *Config) { c.Store.Driver = "mysql" }), true},
		{"pgx without url", dev(func(c *Config) { c.Store.Driver = DriverPgx }), true},
		{"bad duration", dev(func(c *Config) { c.Auth.SessionTTL = "forever" }), true},
		{"bad retention", dev(func(c *Config) { c.Store.Retention = "a while" }), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}
