// Package config loads the server configuration from a YAML file, with
// environment variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	SecureCookies bool          `yaml:"secureCookies"`
	SessionTTL    time.Duration `yaml:"sessionTTL"`
	AuthRateLimit int           `yaml:"authRateLimit"`
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxConns        int32         `yaml:"maxConns"`
	MinConns        int32         `yaml:"minConns"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
}

// FilesConfig holds the blob storage settings.
type FilesConfig struct {
	Root string `yaml:"root"`
}

// RedisConfig holds the optional session cache settings. An empty Addr
// disables the cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"` //nolint:gosec // G117: config field
	JWTIssuer string `yaml:"jwtIssuer"`
}

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Files    FilesConfig    `yaml:"files"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
}

// Default returns a configuration suitable for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			SessionTTL:    24 * time.Hour,
			AuthRateLimit: 10,
		},
		Database: DatabaseConfig{
			URL:      "postgres://localhost:5432/homebase?sslmode=disable",
			MaxConns: 10,
			MinConns: 2,
		},
		Files: FilesConfig{
			Root: "./data/files",
		},
		Auth: AuthConfig{
			JWTIssuer: "homebase",
		},
	}
}

// Load reads the config file at path, layered over defaults, then
// applies environment overrides. An empty path skips the file and uses
// defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides secrets from the environment so they never have to
// live in the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("HOMEBASE_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("HOMEBASE_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("HOMEBASE_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("HOMEBASE_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret (or HOMEBASE_JWT_SECRET) is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Files.Root == "" {
		return fmt.Errorf("files.root is required")
	}
	return nil
}
