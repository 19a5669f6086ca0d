// Package cli implements the vector-editor command line.
package cli

import (
	"fmt"
	"log"
	"os"

	"vector-editor/internal/config"
	"vector-editor/internal/store"

	"github.com/jessevdk/go-flags"
)

// GlobalOptions apply to every command.
type GlobalOptions struct {
	Config string `short:"c" long:"config" description:"YAML configuration file"`
	Driver string `long:"driver" description:"Database driver (sqlite, postgres, mysql)"`
	DSN    string `long:"dsn" description:"Database connection string"`
	Debug  bool   `long:"debug" description:"Log SQL statements"`
}

var globalOpts = GlobalOptions{}
var parser = flags.NewParser(&globalOpts, flags.HelpFlag|flags.PassDoubleDash)

// Run parses os.Args and executes the selected command.
func Run() error {
	_, err := parser.Parse()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		parser.WriteHelp(os.Stdout)
		return nil
	}
	return err
}

// LoadConfig reads the configuration file, if any, and applies the
// command line overrides.
func (g *GlobalOptions) LoadConfig() (config.Config, error) {
	cfg := config.Default()
	if g.Config != "" {
		var err error
		cfg, err = config.Load(g.Config)
		if err != nil {
			return config.Config{}, err
		}
		log.Printf("Config: loaded %s", g.Config)
	}
	if g.Driver != "" {
		cfg.Database.Driver = g.Driver
	}
	if g.DSN != "" {
		cfg.Database.DSN = g.DSN
	}
	if g.Debug {
		cfg.Database.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// OpenStore connects to the configured database.
func (g *GlobalOptions) OpenStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}
