package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Rental   RentalConfig   `yaml:"rental"`
	Operator OperatorConfig `yaml:"operator"`
	Seed     SeedConfig     `yaml:"seed"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
	File   string `yaml:"file"`   // "-" means stderr
}

// StderrLog is the log file value that keeps log output on stderr.
const StderrLog = "-"

// ToStderr reports whether log output goes to stderr instead of a file.
func (l LogConfig) ToStderr() bool { return l.File == StderrLog }

// RentalConfig holds the business rules of the rental desk.
type RentalConfig struct {
	MinInsuredAge  int  `yaml:"min_insured_age"`
	MinCustomerAge int  `yaml:"min_customer_age"`
	ApplyWeekRate  bool `yaml:"apply_week_rate"`
}

// OperatorConfig protects the shell with a bcrypt password hash.
type OperatorConfig struct {
	PasswordHash string `yaml:"password_hash"`
}

// SeedConfig controls first-start seeding.
type SeedConfig struct {
	OnEmpty bool `yaml:"on_empty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{Seed: SeedConfig{OnEmpty: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; environment variables override both.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("TOOL2GO_DB"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.Log.File = val
	}
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "tool2go.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.File == "" {
		c.Log.File = "tool2go.log"
	}
	if c.Rental.MinInsuredAge == 0 {
		c.Rental.MinInsuredAge = 21
	}
	if c.Rental.MinCustomerAge == 0 {
		c.Rental.MinCustomerAge = 18
	}
}

// Validate fills unset values with defaults and checks the rest.
func (c *Config) Validate() error {
	c.applyDefaults()

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}
	if c.Rental.MinInsuredAge < 0 || c.Rental.MinCustomerAge < 0 {
		return fmt.Errorf("age limits must not be negative")
	}
	if c.Rental.MinInsuredAge < c.Rental.MinCustomerAge {
		return fmt.Errorf("min insured age %d is below min customer age %d",
			c.Rental.MinInsuredAge, c.Rental.MinCustomerAge)
	}
	return nil
}
