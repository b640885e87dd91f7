// Package config loads the YAML configuration of the xlinvoice CLI and server.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Templates Templates `yaml:"templates"`
	Server    Server    `yaml:"server"`
	Log       Log       `yaml:"log"`
}

// Templates selects where template bytes come from.
type Templates struct {
	// Dir holds <variant>.xlsx files. Used when Driver is empty.
	Dir string `yaml:"dir"`
	// Driver is "sqlite3" or "postgres" to read templates from a database.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
	// Cache keeps loaded templates in memory for the process lifetime.
	Cache bool `yaml:"cache"`
}

// Server configures the HTTP adapter.
type Server struct {
	Addr string `yaml:"addr"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Templates: Templates{
			Dir:   "./templates",
			Table: "templates",
			Cache: true,
		},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, rejecting unknown keys.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks option coherence.
func (c Config) Validate() error {
	switch c.Templates.Driver {
	case "":
		if c.Templates.Dir == "" {
			return errors.New("templates.dir is required when templates.driver is empty")
		}
	case "sqlite3", "postgres":
		if c.Templates.DSN == "" {
			return fmt.Errorf("templates.dsn is required for driver %q", c.Templates.Driver)
		}
	default:
		return fmt.Errorf("unsupported templates.driver %q (must be sqlite3 or postgres)", c.Templates.Driver)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// NewLogger builds a zap logger from the log section.
func (l Log) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
