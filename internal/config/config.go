// Package config provides Viper-based configuration loading for the rngsim game.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend names.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// MaxHistoryLimit is the most roll batches the game keeps in history.
const MaxHistoryLimit = 20

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

// RedisConfig holds Redis connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPConfig holds the read-only status listener settings.
type HTTPConfig struct {
	// Addr is the "host:port" to listen on; empty disables the listener.
	Addr string `mapstructure:"addr"`
	// AllowedOrigins lists CORS origins permitted to read the status API.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Enabled reports whether the status listener should run.
func (h HTTPConfig) Enabled() bool {
	return h.Addr != ""
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout", or a file path. The console game writes
	// to stdout, so logs default to stderr.
	Output string `mapstructure:"output"`
}

// GameConfig holds gameplay tuning that is not part of the saved game.
type GameConfig struct {
	// HistoryLimit caps the number of roll batches kept in history.
	HistoryLimit int `mapstructure:"history_limit"`
	// BurstSpacing separates consecutive rounds of a speed burst.
	BurstSpacing time.Duration `mapstructure:"burst_spacing"`
	// ClockInterval is how often the status line's play time refreshes.
	ClockInterval time.Duration `mapstructure:"clock_interval"`
	// Color enables ANSI color in console output.
	Color bool `mapstructure:"color"`
}

// StorageConfig selects where the game snapshot is kept.
type StorageConfig struct {
	// Backend is one of "memory", "file", "postgres", "redis".
	Backend string `mapstructure:"backend"`
	// Path is the snapshot file for the file backend.
	Path string `mapstructure:"path"`
	// Slot names the save for the postgres and redis backends.
	Slot string `mapstructure:"slot"`
	// SaveTimeout bounds a single load or save.
	SaveTimeout time.Duration `mapstructure:"save_timeout"`
}

// Config is the top-level application configuration.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants. Database and Redis settings
// are only checked when their backend is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Storage.Backend == BackendRedis && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr must not be empty for the redis backend")
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.HistoryLimit < 1 || g.HistoryLimit > MaxHistoryLimit {
		errs = append(errs, fmt.Sprintf("game.history_limit must be 1-%d, got %d", MaxHistoryLimit, g.HistoryLimit))
	}
	if g.BurstSpacing <= 0 {
		errs = append(errs, "game.burst_spacing must be positive")
	}
	if g.ClockInterval <= 0 {
		errs = append(errs, "game.clock_interval must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	switch s.Backend {
	case BackendMemory:
	case BackendFile:
		if s.Path == "" {
			errs = append(errs, "storage.path must not be empty for the file backend")
		}
	case BackendPostgres, BackendRedis:
		if s.Slot == "" {
			errs = append(errs, fmt.Sprintf("storage.slot must not be empty for the %s backend", s.Backend))
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.backend must be one of [memory, file, postgres, redis], got %q", s.Backend))
	}
	if s.SaveTimeout <= 0 {
		errs = append(errs, "storage.save_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
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

func newViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with RNGSIM_ prefix
	v.SetEnvPrefix("RNGSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.history_limit", 20)
	v.SetDefault("game.burst_spacing", "50ms")
	v.SetDefault("game.clock_interval", "1s")
	v.SetDefault("game.color", true)

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", "data/rngsim.json")
	v.SetDefault("storage.slot", "default")
	v.SetDefault("storage.save_timeout", "2s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "rngsim")
	v.SetDefault("database.password", "rngsim")
	v.SetDefault("database.name", "rngsim")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("http.addr", "")
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}
