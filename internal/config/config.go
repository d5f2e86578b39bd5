// Package config provides Viper-based configuration loading for the
// cultivation simulation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SimulationConfig holds the clock, seed and save settings.
type SimulationConfig struct {
	// Seed initialises the shared random source; 0 draws an entropy seed.
	Seed int64 `mapstructure:"seed"`
	// TickInterval is the real time between simulated days.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// AutosaveEvery saves every N days; 0 disables autosave.
	AutosaveEvery int `mapstructure:"autosave_every"`
	// SaveSlot names the persisted snapshot.
	SaveSlot string `mapstructure:"save_slot"`
	// CharacterName names a newly created cultivator.
	CharacterName string `mapstructure:"character_name"`
	// Talent seeds a newly created cultivator; 0 rolls it.
	Talent int `mapstructure:"talent"`
	// EventChance overrides the ruleset's daily random-event probability.
	EventChance float64 `mapstructure:"event_chance"`
}

// ContentConfig locates the data files loaded at startup. Empty paths fall
// back to built-in defaults.
type ContentConfig struct {
	RulesetFile      string `mapstructure:"ruleset_file"`
	ItemDir          string `mapstructure:"item_dir"`
	ScriptDir        string `mapstructure:"script_dir"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// InventoryConfig holds backpack settings.
type InventoryConfig struct {
	Slots int `mapstructure:"slots"`
}

// StorageConfig selects the snapshot store.
type StorageConfig struct {
	// Driver is one of "none", "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Content    ContentConfig    `mapstructure:"content"`
	Inventory  InventoryConfig  `mapstructure:"inventory"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the postgres driver is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	errs = append(errs, validateSimulation(c.Simulation)...)
	errs = append(errs, validateContent(c.Content)...)
	if c.Inventory.Slots < 1 {
		errs = append(errs, fmt.Sprintf("inventory.slots must be >= 1, got %d", c.Inventory.Slots))
	}
	errs = append(errs, validateStorage(c.Storage)...)
	if c.Storage.Driver == DriverPostgres {
		errs = append(errs, validateDatabase(c.Database)...)
	}
	errs = append(errs, validateLogging(c.Logging)...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) []string {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.AutosaveEvery < 0 {
		errs = append(errs, fmt.Sprintf("simulation.autosave_every must be >= 0, got %d", s.AutosaveEvery))
	}
	if s.SaveSlot == "" {
		errs = append(errs, "simulation.save_slot must not be empty")
	}
	if s.CharacterName == "" {
		errs = append(errs, "simulation.character_name must not be empty")
	}
	if s.Talent < 0 || s.Talent > 100 {
		errs = append(errs, fmt.Sprintf("simulation.talent must be 0-100, got %d", s.Talent))
	}
	if s.EventChance < 0 || s.EventChance > 1 {
		errs = append(errs, fmt.Sprintf("simulation.event_chance must be 0-1, got %v", s.EventChance))
	}
	return errs
}

func validateContent(c ContentConfig) []string {
	if c.InstructionLimit < 0 {
		return []string{fmt.Sprintf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit)}
	}
	return nil
}

func validateStorage(s StorageConfig) []string {
	var errs []string
	switch s.Driver {
	case DriverNone, DriverPostgres:
	case DriverSQLite:
		if s.SQLitePath == "" {
			errs = append(errs, "storage.sqlite_path must not be empty for the sqlite driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver must be one of [none, sqlite, postgres], got %q", s.Driver))
	}
	return errs
}

func validateDatabase(d DatabaseConfig) []string {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return errs
}

func validateLogging(l LoggingConfig) []string {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return errs
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Precondition: path is empty or names a readable YAML file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newViper returns a Viper with defaults and CULTIVATE_ environment overrides.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CULTIVATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.tick_interval", "1s")
	v.SetDefault("simulation.autosave_every", 10)
	v.SetDefault("simulation.save_slot", "default")
	v.SetDefault("simulation.character_name", "Wanderer")
	v.SetDefault("simulation.talent", 0)
	v.SetDefault("simulation.event_chance", 0.1)

	v.SetDefault("content.ruleset_file", "")
	v.SetDefault("content.item_dir", "")
	v.SetDefault("content.script_dir", "")
	v.SetDefault("content.instruction_limit", 100000)

	v.SetDefault("inventory.slots", 20)

	v.SetDefault("storage.driver", DriverNone)
	v.SetDefault("storage.sqlite_path", "cultivation.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cultivation")
	v.SetDefault("database.password", "cultivation")
	v.SetDefault("database.name", "cultivation")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
