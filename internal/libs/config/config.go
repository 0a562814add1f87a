// Package config provides application configuration from defaults, environment and an optional file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sink kinds
const (
	SinkFile     = "file"
	SinkPostgres = "postgres"
	SinkBolt     = "bolt"
)

// Config holds application configuration
type Config struct {
	LogLevel     string `mapstructure:"log_level"`
	LogPretty    bool   `mapstructure:"log_pretty"`
	APIHost      string `mapstructure:"api_host"`
	APIPort      string `mapstructure:"api_port"`
	DatabaseURL  string `mapstructure:"database_url"`
	Sink         string `mapstructure:"sink"`
	BoltPath     string `mapstructure:"bolt_path"`
	Workers      int    `mapstructure:"workers"`
	BatchSize    int    `mapstructure:"batch_size"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
	MaxRuns      int    `mapstructure:"max_runs"`
}

// Load reads and validates configuration
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read reads configuration without validating it, so callers can apply
// overrides first. Environment variables use the LISTMATCH_ prefix
// (LISTMATCH_LOG_LEVEL, LISTMATCH_WORKERS, ...); a listmatch.yaml in the
// working directory or ./config is read when present.
func Read() (*Config, error) {
	v := viper.New()

	v.SetConfigName("listmatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LISTMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("api_host", "0.0.0.0")
	v.SetDefault("api_port", "8080")
	v.SetDefault("database_url", "")
	v.SetDefault("sink", SinkFile)
	v.SetDefault("bolt_path", "listmatch.db")
	v.SetDefault("workers", 1)
	v.SetDefault("batch_size", 100)
	v.SetDefault("max_body_bytes", 64<<20)
	v.SetDefault("max_runs", 1000)
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Sink {
	case SinkFile, SinkBolt:
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when sink is %q", SinkPostgres)
		}
	default:
		return fmt.Errorf("sink must be one of file, postgres, bolt, got: %s", c.Sink)
	}

	if c.Sink == SinkBolt && c.BoltPath == "" {
		return fmt.Errorf("bolt_path is required when sink is %q", SinkBolt)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got: %d", c.Workers)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	if c.MaxRuns < 0 {
		return fmt.Errorf("max_runs must not be negative, got: %d", c.MaxRuns)
	}
	return nil
}
