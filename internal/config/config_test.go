package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
profile: alice
server:
  port: 9090
  host: "0.0.0.0"
  auth_token: secret
  allowed_origins:
    - http://localhost:5173
storage:
  driver: sqlite
  path: /tmp/a.db
  save_interval: 5s
log:
  level: debug
  encoding: json
mock:
  interval: 50ms
  seed: 42
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Profile != "alice" {
		t.Errorf("Profile = %q, want alice", cfg.Profile)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Server.AuthToken != "secret" {
		t.Errorf("Server.AuthToken = %q, want secret", cfg.Server.AuthToken)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.Path != "/tmp/a.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.SaveInterval != 5*time.Second {
		t.Errorf("Storage.SaveInterval = %v, want 5s", cfg.Storage.SaveInterval)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Encoding != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Mock.Interval != 50*time.Millisecond || cfg.Mock.Seed != 42 {
		t.Errorf("Mock = %+v", cfg.Mock)
	}
	// Unset keys keep their defaults.
	if cfg.Server.BroadcastThrottle != 100*time.Millisecond {
		t.Errorf("Server.BroadcastThrottle = %v, want default 100ms", cfg.Server.BroadcastThrottle)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := defaultConfig()
	if !reflect.DeepEqual(cfg.Server, want.Server) {
		t.Errorf("Server = %+v, want %+v", cfg.Server, want.Server)
	}
	if cfg.Storage != want.Storage {
		t.Errorf("Storage = %+v, want %+v", cfg.Storage, want.Storage)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("ACHIEVEMENTS_SERVER_PORT", "7000")
	t.Setenv("ACHIEVEMENTS_SERVER_AUTH_TOKEN", "from-env")
	t.Setenv("ACHIEVEMENTS_STORAGE_DRIVER", "sqlite")
	t.Setenv("ACHIEVEMENTS_LOG_LEVEL", "warn")
	t.Setenv("ACHIEVEMENTS_PROFILE", "bob")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from env", cfg.Server.Port)
	}
	if cfg.Server.AuthToken != "from-env" {
		t.Errorf("Server.AuthToken = %q", cfg.Server.AuthToken)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q", cfg.Storage.Driver)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Profile != "bob" {
		t.Errorf("Profile = %q", cfg.Profile)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("Load should fail on malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad driver", func(c *Config) { c.Storage.Driver = "redis" }, "storage.driver"},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = DriverSQLite; c.Storage.Path = "" }, "storage.path"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"empty profile", func(c *Config) { c.Profile = "" }, "profile"},
		{"zero mock interval", func(c *Config) { c.Mock.Interval = 0 }, "mock.interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}
