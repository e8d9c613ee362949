// Package config provides types, loading, and validation for the web server configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"bluegreen-web/internal/static"
)

// Defaults applied by Validate when a field is left empty.
const (
	DefaultPort        = "3000"
	DefaultPublicDir   = "public"
	DefaultEnvironment = "unknown"
	DefaultVersion     = "1.0.0"
	DefaultConfigPath  = "config.yaml"
)

// Config holds the complete server configuration loaded from YAML.
// It is built once before the listener starts and never mutated afterwards.
type Config struct {
	Server struct {
		Port        string `yaml:"port"`       // Listen port (default: "3000")
		PublicDir   string `yaml:"public_dir"` // Static asset root (default: "public")
		Environment string `yaml:"-"`          // Deployment label, read from ENVIRONMENT only
		Version     string `yaml:"version"`    // Application version reported by /api/info
	} `yaml:"server"`
}

// Validate checks the configuration for valid values.
// It also applies defaults for optional fields.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.PublicDir == "" {
		c.Server.PublicDir = DefaultPublicDir
	}
	if c.Server.Environment == "" {
		c.Server.Environment = DefaultEnvironment
	}
	if c.Server.Version == "" {
		c.Server.Version = DefaultVersion
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil {
		return fmt.Errorf("invalid server.port %q: must be numeric", c.Server.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", port)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables take precedence over YAML values; empty values are ignored.
// The environment label has no YAML key, so an unset ENVIRONMENT always reports the default.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("SERVER_PUBLIC_DIR"); v != "" {
		c.Server.PublicDir = v
	}
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// LoadConfig reads the configuration file, applies environment overrides and validates the result.
// When optional is true a missing file is not an error and built-in defaults are used instead.
func LoadConfig(path string, optional bool) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
		slog.Debug("No config file, using defaults", "path", path)
	default:
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	c.ApplyEnvOverrides()

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// RunValidate loads and validates the configuration without starting the server.
// It checks YAML parsing and that the public directory holds an index page.
func RunValidate(path string, optional bool) error {
	cfg, err := LoadConfig(path, optional)
	if err != nil {
		return err
	}

	info, err := os.Stat(cfg.Server.PublicDir)
	if err != nil {
		return fmt.Errorf("public_dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("public_dir: %s is not a directory", cfg.Server.PublicDir)
	}

	index := filepath.Join(cfg.Server.PublicDir, static.IndexFile)
	f, err := os.Open(index)
	if err != nil {
		return fmt.Errorf("public_dir: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("public_dir: close: %w", err)
	}
	return nil
}
