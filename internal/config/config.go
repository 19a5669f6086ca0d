// Package config loads the editor's YAML configuration file.
package config

import (
	"fmt"
	"os"

	"vector-editor/internal/tools"

	"gopkg.in/yaml.v3"
)

// Database drivers understood by the store.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Database selects and addresses the cold store.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Debug  bool   `yaml:"debug"` // log SQL
}

// API configures the optional HTTP server over the cold store.
type API struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Config is the root of the configuration file.
type Config struct {
	Tools    tools.Config `yaml:"tools"`
	Database Database     `yaml:"database"`
	API      API          `yaml:"api"`

	// Initial map view.
	Center [2]float64 `yaml:"center"` // lng, lat
	Zoom   float64    `yaml:"zoom"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Tools: tools.DefaultConfig(),
		Database: Database{
			Driver: DriverSQLite,
			DSN:    "vector-editor.db",
		},
		API: API{
			Listen: "127.0.0.1:8089",
		},
		Zoom: 16,
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Tools = cfg.Tools.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database dsn is empty")
	}
	if c.API.Enabled && c.API.Listen == "" {
		return fmt.Errorf("config: api enabled without listen address")
	}
	if c.Zoom < 0 || c.Zoom > 22 {
		return fmt.Errorf("config: zoom %g out of range", c.Zoom)
	}
	if c.Tools.SnapTolerance < 0 {
		return fmt.Errorf("config: negative snap tolerance")
	}
	return nil
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
