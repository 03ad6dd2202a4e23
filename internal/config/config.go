package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// EnvProduction is the APP_ENV value that ignores development overrides
const EnvProduction = "production"

// Config holds the application configuration
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"production"`

	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Links    LinkConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port      string `env:"PORT" envDefault:"8080"`
	ServerURL string `env:"SERVER_URL" envDefault:"http://localhost:8080"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	Path   string `env:"DB_PATH" envDefault:"jobs.db"`
	URL    string `env:"DATABASE_URL"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTL           time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"24h"`
	MaxEntryBytes int           `env:"CACHE_MAX_ENTRY_BYTES" envDefault:"1048576"`

	// Disabled only takes effect outside production
	Disabled bool `env:"CACHE_DISABLED"`
}

// LinkConfig holds QR link configuration
type LinkConfig struct {
	MaxAge time.Duration `env:"QR_MAX_AGE" envDefault:"60s"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
	Verbose bool   `env:"VERBOSE"`
}

// Load reads configuration from the process environment after loading any
// of the given .env files that exist. Variables already set win over files.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses configuration from environ instead of the process environment
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Server.ServerURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path cannot be empty")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Cache.TTL < 0 || c.Cache.TTL%time.Second != 0 {
		return fmt.Errorf("cache TTL must be a non-negative whole number of seconds, got: %v", c.Cache.TTL)
	}

	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep interval must be positive, got: %v", c.Cache.SweepInterval)
	}

	if c.Cache.MaxEntryBytes < 0 {
		return fmt.Errorf("cache max entry bytes cannot be negative, got: %d", c.Cache.MaxEntryBytes)
	}

	if c.Links.MaxAge < time.Second {
		return fmt.Errorf("QR max age must be at least one second, got: %v", c.Links.MaxAge)
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}

	return nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// CacheDisabled reports whether the development override is in effect
func (c *Config) CacheDisabled() bool {
	return c.Cache.Disabled && !c.IsProduction()
}

// LogLevel returns the configured level, raised to debug in verbose mode
func (c *Config) LogLevel() zerolog.Level {
	if c.Logging.Verbose {
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
