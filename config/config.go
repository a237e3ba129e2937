// Package config loads server settings: a YAML tuning file for simulation
// parameters, overridden by environment variables for deployment settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"realmwalk/server/actions"
	"realmwalk/server/planner"
)

// Storage backends accepted in DB_TYPE
const (
	StorageJSON     = "json"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Config is the complete server configuration
type Config struct {
	ConfigPath  string `env:"REALMWALK_CONFIG"`
	Port        string `env:"PORT" envDefault:"8080"`
	DBType      string `env:"DB_TYPE" envDefault:"json"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost user=realmwalk password=realmwalk dbname=realmwalk sslmode=disable"`
	DBFile      string `env:"DB_FILE"`
	LayoutPath  string `env:"REALMWALK_LAYOUT"`
	TickLogDir  string `env:"REALMWALK_TICKLOG_DIR"`
	TickRateHz  int    `env:"REALMWALK_TICK_RATE_HZ"`

	Tuning Tuning
}

// Tuning holds the simulation parameters read from the tuning file
type Tuning struct {
	TickRateHz   int            `yaml:"tick_rate_hz"`
	DefaultSpeed float64        `yaml:"default_speed"`
	ViewRadius   int            `yaml:"view_radius"`
	Planner      PlannerTuning  `yaml:"planner"`
	Wanderer     WandererTuning `yaml:"wanderer"`
}

type PlannerTuning struct {
	ExpansionsPerStep int           `yaml:"expansions_per_step"`
	MaxExpansions     int           `yaml:"max_expansions"`
	Costs             planner.Costs `yaml:"costs"`
	Replans           int           `yaml:"replans"`
}

type WandererTuning struct {
	Frequency int `yaml:"frequency"`
	Distance  int `yaml:"distance"`
}

// DefaultTuning returns the values used when no tuning file is given
func DefaultTuning() Tuning {
	return Tuning{
		TickRateHz:   30,
		DefaultSpeed: 2,
		ViewRadius:   10,
		Planner: PlannerTuning{
			ExpansionsPerStep: planner.DefaultExpansionsPerStep,
			Costs:             planner.DefaultCosts,
			Replans:           actions.DefaultReplans,
		},
		Wanderer: WandererTuning{Frequency: 90, Distance: 4},
	}
}

// NavOptions converts the planner tuning into navigation options
func (t Tuning) NavOptions() actions.NavOptions {
	return actions.NavOptions{
		Planner: planner.Options{
			Costs:             t.Planner.Costs,
			ExpansionsPerStep: t.Planner.ExpansionsPerStep,
			MaxExpansions:     t.Planner.MaxExpansions,
		},
		Replans: t.Planner.Replans,
	}
}

// LoadTuning reads a tuning file on top of the defaults
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFromEnvironment reads the configuration from the given variables only
func LoadFromEnvironment(vars map[string]string) (Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Config, error) {
	cfg := Config{Tuning: DefaultTuning()}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ConfigPath != "" {
		t, err := LoadTuning(cfg.ConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("load tuning: %w", err)
		}
		cfg.Tuning = t
	}
	if cfg.TickRateHz > 0 {
		cfg.Tuning.TickRateHz = cfg.TickRateHz
	}
	if cfg.DBFile == "" {
		cfg.DBFile = defaultDBFile(cfg.DBType)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func defaultDBFile(dbType string) string {
	if dbType == StorageSQLite {
		return "realmwalk.db"
	}
	return "db.json"
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var errs []error
	switch c.DBType {
	case StorageJSON, StoragePostgres, StorageSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_TYPE %q", c.DBType))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	if err := c.Tuning.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate reports every invalid tuning value
func (t Tuning) Validate() error {
	var errs []error
	if t.TickRateHz <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate_hz must be positive, got %d", t.TickRateHz))
	}
	if t.DefaultSpeed <= 0 {
		errs = append(errs, fmt.Errorf("default_speed must be positive, got %v", t.DefaultSpeed))
	}
	if t.ViewRadius <= 0 {
		errs = append(errs, fmt.Errorf("view_radius must be positive, got %d", t.ViewRadius))
	}
	if t.Planner.ExpansionsPerStep <= 0 {
		errs = append(errs, fmt.Errorf("planner.expansions_per_step must be positive, got %d", t.Planner.ExpansionsPerStep))
	}
	if t.Planner.MaxExpansions < 0 {
		errs = append(errs, fmt.Errorf("planner.max_expansions must not be negative, got %d", t.Planner.MaxExpansions))
	}
	if t.Planner.Costs.Plain <= 0 || t.Planner.Costs.Ramp <= 0 {
		errs = append(errs, fmt.Errorf("planner.costs must be positive, got %+v", t.Planner.Costs))
	}
	if t.Planner.Replans < 0 {
		errs = append(errs, fmt.Errorf("planner.replans must not be negative, got %d", t.Planner.Replans))
	}
	if t.Wanderer.Frequency <= 0 || t.Wanderer.Distance <= 0 {
		errs = append(errs, fmt.Errorf("wanderer frequency and distance must be positive, got %+v", t.Wanderer))
	}
	return errors.Join(errs...)
}
