package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/tetris-web/achievements/internal/logging"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// ACHIEVEMENTS_SERVER_PORT or ACHIEVEMENTS_STORAGE_DRIVER.
const EnvPrefix = "ACHIEVEMENTS"

type Config struct {
	Profile string         `yaml:"profile"`
	Server  ServerConfig   `yaml:"server"`
	Storage StorageConfig  `yaml:"storage"`
	Log     logging.Config `yaml:"log"`
	Mock    MockConfig     `yaml:"mock"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	Host              string        `yaml:"host"`
	AuthToken         string        `yaml:"auth_token" split_words:"true"`
	AllowedOrigins    []string      `yaml:"allowed_origins" split_words:"true"`
	BroadcastThrottle time.Duration `yaml:"broadcast_throttle" split_words:"true"`
	MaxConns          int           `yaml:"max_conns" split_words:"true"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type StorageConfig struct {
	Driver       string        `yaml:"driver"` // json or sqlite
	Dir          string        `yaml:"dir"`    // json profiles; empty means the XDG state dir
	Path         string        `yaml:"path"`   // sqlite database file
	SaveInterval time.Duration `yaml:"save_interval" split_words:"true"`
}

type MockConfig struct {
	Interval time.Duration `yaml:"interval"`
	Seed     int64         `yaml:"seed"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

func defaultConfig() *Config {
	return &Config{
		Profile: "default",
		Server: ServerConfig{
			Port:              8080,
			Host:              "127.0.0.1",
			BroadcastThrottle: 100 * time.Millisecond,
			MaxConns:          1000,
		},
		Storage: StorageConfig{
			Driver:       DriverJSON,
			Path:         "achievements.db",
			SaveInterval: 30 * time.Second,
		},
		Log: logging.Config{
			Level:    "info",
			Encoding: "console",
		},
		Mock: MockConfig{
			Interval: 250 * time.Millisecond,
			Seed:     1,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads path over the defaults, then applies ACHIEVEMENTS_* environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Profile == "" {
		errs = append(errs, errors.New("profile must not be empty"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Storage.Driver {
	case DriverJSON:
	case DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q: want %s or %s", c.Storage.Driver, DriverJSON, DriverSQLite))
	}
	if c.Storage.SaveInterval < 0 {
		errs = append(errs, errors.New("storage.save_interval must not be negative"))
	}
	if c.Mock.Interval <= 0 {
		errs = append(errs, errors.New("mock.interval must be positive"))
	}
	return errors.Join(errs...)
}
