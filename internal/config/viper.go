// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/devjuank/FinanceService/internal/heuristics"
	"github.com/devjuank/FinanceService/internal/neutralizer"
)

// EnvPrefix prefixes every environment override, e.g. FINLEDGER_LOG_LEVEL.
const EnvPrefix = "FINLEDGER"

// SourceConfig declares one (source, account) pair and where its statements live.
type SourceConfig struct {
	Name      string `mapstructure:"name" yaml:"name"`
	Kind      string `mapstructure:"kind" yaml:"kind"`
	Account   string `mapstructure:"account" yaml:"account"`
	Directory string `mapstructure:"directory" yaml:"directory"`
	Extension string `mapstructure:"extension" yaml:"extension"`
	Currency  string `mapstructure:"currency" yaml:"currency"`
	// StatementYear is the fallback year for card statements without a
	// closing date header.
	StatementYear int `mapstructure:"statement_year" yaml:"statement_year"`

	heuristics.Keywords `mapstructure:",squash" yaml:",inline"`
}

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Rules struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"rules" yaml:"rules"`

	Output struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
		JSON      bool   `mapstructure:"json" yaml:"json"`
		CSV       bool   `mapstructure:"csv" yaml:"csv"`
		PerSource bool   `mapstructure:"per_source" yaml:"per_source"`

		SQLite struct {
			Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
			Path    string `mapstructure:"path" yaml:"path"`
		} `mapstructure:"sqlite" yaml:"sqlite"`

		GCS struct {
			Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
			Bucket  string `mapstructure:"bucket" yaml:"bucket"`
			Prefix  string `mapstructure:"prefix" yaml:"prefix"`
		} `mapstructure:"gcs" yaml:"gcs"`
	} `mapstructure:"output" yaml:"output"`

	Neutralizer struct {
		Tolerance  float64 `mapstructure:"tolerance" yaml:"tolerance"`
		DaysBefore int     `mapstructure:"days_before" yaml:"days_before"`
		DaysAfter  int     `mapstructure:"days_after" yaml:"days_after"`
	} `mapstructure:"neutralizer" yaml:"neutralizer"`

	Sources []SourceConfig `mapstructure:"sources" yaml:"sources"`
}

// InitializeConfig loads defaults, then the config file (configPath when
// set, otherwise config.yaml from the standard locations), then FINLEDGER_*
// environment variables.
func InitializeConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.finledger")
		v.AddConfigPath(".finledger")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Sources) == 0 {
		config.Sources = DefaultSources()
	}
	applySourceDefaults(config.Sources)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("rules.file", "")

	v.SetDefault("output.directory", "output")
	v.SetDefault("output.json", true)
	v.SetDefault("output.csv", false)
	v.SetDefault("output.per_source", true)
	v.SetDefault("output.sqlite.enabled", false)
	v.SetDefault("output.sqlite.path", "ledger.db")
	v.SetDefault("output.gcs.enabled", false)
	v.SetDefault("output.gcs.bucket", "")
	v.SetDefault("output.gcs.prefix", "ledgers")

	defaults := neutralizer.DefaultOptions()
	tolerance, _ := defaults.Tolerance.Float64()
	v.SetDefault("neutralizer.tolerance", tolerance)
	v.SetDefault("neutralizer.days_before", defaults.DaysBefore)
	v.SetDefault("neutralizer.days_after", defaults.DaysAfter)
}

// applySourceDefaults fills the account, extension and keyword lists a
// source leaves empty from its kind.
func applySourceDefaults(sources []SourceConfig) {
	for i := range sources {
		s := &sources[i]
		s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
		if s.Account == "" {
			s.Account = "default"
		}
		if s.Extension == "" {
			s.Extension = defaultExtension(s.Kind)
		}
		if s.Currency == "" {
			s.Currency = defaultCurrency(s.Kind)
		}
		if s.Keywords.IsZero() {
			s.Keywords = heuristics.DefaultKeywords(s.Kind)
		}
	}
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Output.GCS.Enabled && config.Output.GCS.Bucket == "" {
		return errors.New("output.gcs.bucket is required when output.gcs.enabled is true")
	}
	if config.Output.SQLite.Enabled && config.Output.SQLite.Path == "" {
		return errors.New("output.sqlite.path is required when output.sqlite.enabled is true")
	}

	if config.Neutralizer.Tolerance < 0 || config.Neutralizer.Tolerance >= 1 {
		return fmt.Errorf("neutralizer.tolerance must be between 0 and 1, got: %f", config.Neutralizer.Tolerance)
	}
	if config.Neutralizer.DaysBefore < 0 || config.Neutralizer.DaysAfter < 0 {
		return errors.New("neutralizer date window must not be negative")
	}

	seen := make(map[string]bool, len(config.Sources))
	for i, s := range config.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if !heuristics.IsKnownKind(s.Kind) {
			return fmt.Errorf("sources[%d]: unknown kind %q (supported: %s)", i, s.Kind, strings.Join(heuristics.Kinds(), ", "))
		}
		key := s.Name + "/" + s.Account
		if seen[key] {
			return fmt.Errorf("sources[%d]: duplicate source/account %s", i, key)
		}
		seen[key] = true
	}
	return nil
}

// NeutralizerOptions converts the neutralizer section.
func (c *Config) NeutralizerOptions() neutralizer.Options {
	return neutralizer.Options{
		Tolerance:  decimal.NewFromFloat(c.Neutralizer.Tolerance),
		DaysBefore: c.Neutralizer.DaysBefore,
		DaysAfter:  c.Neutralizer.DaysAfter,
	}
}
