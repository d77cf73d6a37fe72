// Package config loads application configuration. Precedence, lowest to
// highest: built-in defaults, the optional YAML file named by CONFIG_PATH,
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/topbestgames/platform/pkg/logger"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host                   string `yaml:"host" env:"SERVER_HOST"`
	Port                   int    `yaml:"port" env:"SERVER_PORT"`
	ReadTimeoutSeconds     int    `yaml:"read_timeout_seconds" env:"SERVER_READ_TIMEOUT"`
	WriteTimeoutSeconds    int    `yaml:"write_timeout_seconds" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeout returns the read timeout as a duration.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown window as a duration.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	// Driver is "memory" or "postgres".
	Driver                 string `yaml:"driver" env:"DATABASE_DRIVER"`
	DSN                    string `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns           int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns           int    `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" env:"DATABASE_CONN_MAX_LIFETIME"`
}

// ConnMaxLifetime returns the connection lifetime as a duration.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// AuthConfig controls sessions and initial seeding.
type AuthConfig struct {
	SessionTTLMinutes int    `yaml:"session_ttl_minutes" env:"SESSION_TTL_MINUTES"`
	SeedAdminPassword string `yaml:"seed_admin_password" env:"SEED_ADMIN_PASSWORD"`
}

// SessionTTL returns the session lifetime as a duration.
func (c AuthConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Config is the application configuration.
type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Database DatabaseConfig       `yaml:"database"`
	Logging  logger.LoggingConfig `yaml:"logging"`
	Auth     AuthConfig           `yaml:"auth"`
}

// Load reads the optional YAML file named by CONFIG_PATH, overlays
// environment variables, fills defaults and validates the result.
func Load() (*Config, error) {
	return load(os.Getenv("CONFIG_PATH"))
}

// LoadFromFile is Load with an explicit file path.
func LoadFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeMinutes == 0 {
		c.Database.ConnMaxLifetimeMinutes = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Auth.SessionTTLMinutes == 0 {
		c.Auth.SessionTTLMinutes = 24 * 60
	}
	if c.Auth.SeedAdminPassword == "" {
		c.Auth.SeedAdminPassword = "admin123"
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("postgres driver requires a DSN (set DATABASE_URL)")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
