// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package config provides centralized configuration management for chartcat.
// It supports deterministic precedence (flags > env > profile > defaults)
// using Viper, and fail-fast validation to prevent silent misconfiguration.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/elastic/chartcat/internal/histogram"
	"github.com/elastic/chartcat/internal/index"
	"github.com/elastic/chartcat/internal/logger"
)

// Config holds all application configuration.
type Config struct {
	ES    ESConfig    `mapstructure:"es"`
	Chart ChartConfig `mapstructure:"chart"`
	Log   LogConfig   `mapstructure:"log"`

	// Profile is the name of the profile that supplied values, if any.
	Profile string `mapstructure:"-"`
}

// ESConfig holds Elasticsearch connection settings.
type ESConfig struct {
	URL         string        `mapstructure:"url"`          // Elasticsearch URL
	Index       string        `mapstructure:"index"`        // Index pattern
	Timeout     time.Duration `mapstructure:"timeout"`      // Query timeout
	PingTimeout time.Duration `mapstructure:"ping_timeout"` // Ping timeout
	APIKey      string        `mapstructure:"api_key"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
}

// ChartConfig holds the charting defaults.
type ChartConfig struct {
	TimeField string `mapstructure:"time_field"` // Field holding the span or log timestamp
	Interval  string `mapstructure:"interval"`   // Bucket width, e.g. "5m" or "auto"
	Lookback  string `mapstructure:"lookback"`   // Date math start, e.g. "now-1h"
	Width     int    `mapstructure:"width"`      // Chart width in columns, 0 = terminal width
	Height    int    `mapstructure:"height"`     // Plot rows
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Default configuration values.
const (
	DefaultESURL       = "http://localhost:9200"
	DefaultIndex       = index.Traces
	DefaultTimeout     = 30 * time.Second
	DefaultPingTimeout = 5 * time.Second
	DefaultTimeField   = "endTime"
	DefaultInterval    = "5m"
	DefaultLookback    = "now-15m"
	DefaultHeight      = 10
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "console"

	MinWidth  = 20
	MaxWidth  = 1000
	MinHeight = 3
	MaxHeight = 200
)

// ContextKey is used to store config in context.
type ContextKey struct{}

// FromContext retrieves Config from context.
func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(ContextKey{}).(Config)
	return cfg, ok
}

// WithContext stores Config in context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ContextKey{}, cfg)
}

// Load builds a Config using Viper with precedence: flags > env > profile > defaults.
// It binds flags from the command (and its parents) and fails fast on invalid values.
// The active profile is picked by the --profile flag or the current-profile
// entry of the profile file.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHARTCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	profileName, err := applyProfile(v, profileFlag(cmd))
	if err != nil {
		return Config{}, err
	}

	if err := bindFlagsRecursive(v, cmd); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Profile = profileName

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers default values with Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("es.url", DefaultESURL)
	v.SetDefault("es.index", DefaultIndex)
	v.SetDefault("es.timeout", DefaultTimeout)
	v.SetDefault("es.ping_timeout", DefaultPingTimeout)
	v.SetDefault("es.api_key", "")
	v.SetDefault("es.username", "")
	v.SetDefault("es.password", "")

	v.SetDefault("chart.time_field", DefaultTimeField)
	v.SetDefault("chart.interval", DefaultInterval)
	v.SetDefault("chart.lookback", DefaultLookback)
	v.SetDefault("chart.width", 0)
	v.SetDefault("chart.height", DefaultHeight)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

// applyProfile layers the active profile over the defaults. Profile values
// are registered as defaults so env and flags still win.
func applyProfile(v *viper.Viper, flagValue string) (string, error) {
	profiles, err := LoadProfiles()
	if err != nil {
		return "", err
	}
	name, p, err := profiles.ActiveProfile(flagValue)
	if err != nil || p == nil {
		return "", err
	}
	resolved, err := p.Resolve()
	if err != nil {
		return "", fmt.Errorf("profile %q: %w", name, err)
	}

	for _, f := range resolved.fields() {
		if *f.value != "" {
			v.SetDefault(f.key, *f.value)
		}
	}
	return name, nil
}

func profileFlag(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			if f := fs.Lookup("profile"); f != nil && f.Value.String() != "" {
				return f.Value.String()
			}
		}
	}
	return ""
}

// bindFlagsRecursive binds flags from cmd and all parents so Viper sees them.
func bindFlagsRecursive(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	if err := bindFlagSet(v, cmd.Flags()); err != nil {
		return err
	}
	if err := bindFlagSet(v, cmd.PersistentFlags()); err != nil {
		return err
	}
	return bindFlagsRecursive(v, cmd.Parent())
}

// bindFlagSet binds flags to Viper keys using explicit mappings to nested keys.
// Flags without a mapping are not configuration and are left alone.
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	flagToKey := map[string]string{
		"es-url":       "es.url",
		"index":        "es.index",
		"timeout":      "es.timeout",
		"ping-timeout": "es.ping_timeout",
		"time-field":   "chart.time_field",
		"interval":     "chart.interval",
		"lookback":     "chart.lookback",
		"width":        "chart.width",
		"height":       "chart.height",
		"log-level":    "log.level",
		"log-format":   "log.format",
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagToKey[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// Validate enforces correctness and fails fast on invalid configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ES.URL) == "" {
		return fmt.Errorf("es.url is required")
	}
	if strings.TrimSpace(c.ES.Index) == "" {
		return fmt.Errorf("es.index is required")
	}
	if c.ES.Timeout <= 0 {
		return fmt.Errorf("es.timeout must be > 0")
	}
	if c.ES.PingTimeout <= 0 {
		return fmt.Errorf("es.ping_timeout must be > 0")
	}
	if strings.TrimSpace(c.Chart.TimeField) == "" {
		return fmt.Errorf("chart.time_field is required")
	}
	if _, ok := histogram.ParseInterval(c.Chart.Interval); !ok {
		return fmt.Errorf("chart.interval %q is not a valid interval", c.Chart.Interval)
	}
	if c.Chart.Width != 0 && (c.Chart.Width < MinWidth || c.Chart.Width > MaxWidth) {
		return fmt.Errorf("chart.width must be 0 or between %d and %d", MinWidth, MaxWidth)
	}
	if c.Chart.Height < MinHeight || c.Chart.Height > MaxHeight {
		return fmt.Errorf("chart.height must be between %d and %d", MinHeight, MaxHeight)
	}
	if _, err := logger.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Addresses returns the Elasticsearch URL list. A comma separated es.url
// names several nodes.
func (c ESConfig) Addresses() []string {
	var out []string
	for _, a := range strings.Split(c.URL, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
