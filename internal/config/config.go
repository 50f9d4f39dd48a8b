// Package config provides Viper-based configuration loading for starsheet.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Revision names accepted by HephaistosConfig.Revision.
const (
	RevisionJSON  = "json"
	RevisionQuery = "query"
)

// HephaistosConfig holds character service settings.
type HephaistosConfig struct {
	// Endpoint is the GraphQL URL characters are fetched from.
	Endpoint string `mapstructure:"endpoint"`
	// Revision selects the query shape: "json" for the serialized document,
	// "query" for the inline legacy field set.
	Revision string `mapstructure:"revision"`
	// Timeout bounds each request.
	Timeout time.Duration `mapstructure:"timeout"`
	// CharacterIDs are imported when the command line names none.
	CharacterIDs []string `mapstructure:"character_ids"`
	// Concurrency is the number of characters imported at once.
	Concurrency int `mapstructure:"concurrency"`
}

// NotesConfig holds Markdown note settings.
type NotesConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Folder  string `mapstructure:"folder"`
	// InitiativeTracker adds the level, hp, ac and modifier keys read by initiative trackers.
	InitiativeTracker bool `mapstructure:"initiative_tracker"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
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

// CacheConfig holds Redis document cache settings.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	// TTL is how long a fetched document is reused; zero keeps it until evicted.
	TTL time.Duration `mapstructure:"ttl"`
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
	Hephaistos HephaistosConfig `mapstructure:"hephaistos"`
	Notes      NotesConfig      `mapstructure:"notes"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Validate checks all configuration invariants. Disabled sections are not checked.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateHephaistos(c.Hephaistos); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Notes.Enabled && strings.TrimSpace(c.Notes.Folder) == "" {
		errs = append(errs, "notes.folder must not be empty")
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Cache.Enabled {
		if err := validateCache(c.Cache); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHephaistos(h HephaistosConfig) error {
	var errs []string
	if u, err := url.Parse(h.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("hephaistos.endpoint must be an absolute URL, got %q", h.Endpoint))
	}
	if h.Revision != RevisionJSON && h.Revision != RevisionQuery {
		errs = append(errs, fmt.Sprintf("hephaistos.revision must be one of [json, query], got %q", h.Revision))
	}
	if h.Timeout <= 0 {
		errs = append(errs, "hephaistos.timeout must be positive")
	}
	if h.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("hephaistos.concurrency must be >= 1, got %d", h.Concurrency))
	}
	for _, id := range h.CharacterIDs {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, "hephaistos.character_ids must not contain empty ids")
			break
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
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
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateCache(c CacheConfig) error {
	var errs []string
	if c.Addr == "" {
		errs = append(errs, "cache.addr must not be empty")
	}
	if c.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and STARSHEET_ environment
// overrides applied and no config file set.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("STARSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("hephaistos.endpoint", "https://hephaistos.online/query")
	v.SetDefault("hephaistos.revision", RevisionJSON)
	v.SetDefault("hephaistos.timeout", "30s")
	v.SetDefault("hephaistos.character_ids", []string{})
	v.SetDefault("hephaistos.concurrency", 4)

	v.SetDefault("notes.enabled", true)
	v.SetDefault("notes.folder", "Characters")
	v.SetDefault("notes.initiative_tracker", false)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "starsheet")
	v.SetDefault("database.password", "starsheet")
	v.SetDefault("database.name", "starsheet")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
