package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/TechXTT/litebridge/pkg/native"
)

// Environment variables that override values from the config file.
const (
	EnvDatabase   = "LITEBRIDGE_DATABASE"
	EnvReadOnly   = "LITEBRIDGE_READ_ONLY"
	EnvMigrations = "LITEBRIDGE_MIGRATIONS"
)

// DefaultFile is read by Load when no path is given.
const DefaultFile = "litebridge.yaml"

// Config holds the settings shared by the CLI and runtime helpers.
type Config struct {
	// Database is a file path, ":memory:" or a file: URI.
	Database   string `yaml:"database"`
	ReadOnly   bool   `yaml:"read_only"`
	Create     bool   `yaml:"create"`
	Migrations string `yaml:"migrations"`
	Verbose    bool   `yaml:"verbose"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Create:     true,
		Migrations: "migrations",
	}
}

// Load reads the YAML file at path, then applies .env and environment
// overrides. A missing file is not an error when path is the default.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvMigrations); v != "" {
		c.Migrations = v
	}
	if v := os.Getenv(EnvReadOnly); v != "" {
		ro, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReadOnly, err)
		}
		c.ReadOnly = ro
	}
	return nil
}

// Validate reports configuration that cannot be opened.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database is empty; set it in %s or %s", DefaultFile, EnvDatabase)
	}
	return nil
}

// DSN returns the database as a litebridge driver DSN carrying the open
// mode.
func (c *Config) DSN() string {
	return native.DataSourceName(c.Database, c.OpenFlags())
}

// OpenFlags maps the configuration onto native open flags. A mode= in a
// file: URI takes precedence over read_only and create.
func (c *Config) OpenFlags() native.OpenFlags {
	if c.Database == native.MemoryPath || strings.Contains(c.Database, "mode=") {
		_, flags := native.ParseDSN(c.Database)
		return flags
	}
	switch {
	case c.ReadOnly:
		return native.OpenReadOnly
	case c.Create:
		return native.CreateIfNecessary
	default:
		return native.OpenReadWrite
	}
}
