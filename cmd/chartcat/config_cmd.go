// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/elastic/chartcat/internal/config"
)

// profileFlagUsage is the help text of the set-profile flag for each
// profile key. Flag names are the keys with "." and "_" turned into "-".
var profileFlagUsage = map[string]string{
	"es.url":           "Elasticsearch URL, comma separated for several nodes",
	"es.index":         "Index or data stream pattern",
	"es.api_key":       "Elasticsearch API key (supports ${ENV_VAR} syntax)",
	"es.username":      "Elasticsearch username",
	"es.password":      "Elasticsearch password (supports ${ENV_VAR} syntax)",
	"chart.time_field": "Default time field",
	"chart.interval":   "Default bucket interval",
	"chart.lookback":   "Default lookback, e.g. now-1h",
}

var flagNameReplacer = strings.NewReplacer(".", "-", "_", "-")

var setProfileUse bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage chartcat configuration and profiles",
	Long: `Manage chartcat configuration profiles.

Profiles hold an Elasticsearch connection plus chart defaults, and can be
switched between easily (similar to kubectl contexts).

Configuration is stored in ~/.config/chartcat/config.yaml`,
	// Profile management must work even when the active profile is broken.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration (credentials masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(); err != nil {
			return err
		}
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		return printEffectiveConfig(cmd.OutOrStdout(), cfg)
	},
}

var useProfileCmd = &cobra.Command{
	Use:   "use-profile <name>",
	Short: "Set the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		err := editProfiles(func(cfg *config.ProfileConfig) error {
			if _, err := cfg.GetProfile(name); err != nil {
				return err
			}
			cfg.CurrentProfile = name
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %q\n", name)
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:   "set-profile <name>",
	Short: "Create or update a profile",
	Long: `Create or update a named profile with connection settings and chart defaults.

Examples:
  # Create a local development profile
  chartcat config set-profile local --es-url http://localhost:9200

  # Create a staging profile with API key (using env var reference)
  chartcat config set-profile staging \
    --es-url https://staging.es.example.com:9243 \
    --es-api-key '${STAGING_ES_API_KEY}' \
    --es-index 'otel-v1-apm-span-*'

  # Data Prepper spans bucketed per minute, made current
  chartcat config set-profile prepper --chart-time-field endTime --chart-interval 1m --use

  # Clear a stored credential
  chartcat config set-profile staging --es-api-key ''

Credentials can be stored as:
  - Environment variable references: ${MY_SECRET} (recommended)
  - Plain text values (warning will be shown)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		var profile config.Profile
		err := editProfiles(func(cfg *config.ProfileConfig) error {
			profile, _ = cfg.GetProfile(name)
			if err := applyProfileFlags(cmd.Flags(), &profile); err != nil {
				return err
			}
			if err := profile.Validate(); err != nil {
				return fmt.Errorf("profile %q: %w", name, err)
			}
			cfg.SetProfile(name, profile)
			if setProfileUse {
				cfg.CurrentProfile = name
			}
			return nil
		})
		if err != nil {
			return err
		}

		if profile.HasPlainTextCredentials() {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n", config.PlainTextCredentialWarning())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved\n", name)
		return nil
	},
}

// registerProfileFlags adds one flag per profile key to fs.
func registerProfileFlags(fs *pflag.FlagSet) {
	for _, key := range config.ProfileKeys() {
		fs.String(flagNameReplacer.Replace(key), "", profileFlagUsage[key])
	}
}

// applyProfileFlags copies every set-profile flag given on the command
// line into p. Passing an empty value clears the setting.
func applyProfileFlags(fs *pflag.FlagSet, p *config.Profile) error {
	for _, key := range config.ProfileKeys() {
		f := fs.Lookup(flagNameReplacer.Replace(key))
		if f == nil || !f.Changed {
			continue
		}
		if err := p.Set(key, f.Value.String()); err != nil {
			return err
		}
	}
	return nil
}

// editProfiles loads the profile file, applies edit and saves the result.
// Nothing is written when edit fails.
func editProfiles(edit func(*config.ProfileConfig) error) error {
	cfg, err := config.LoadProfiles()
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if err := edit(cfg); err != nil {
		return err
	}
	if err := config.SaveProfiles(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

var getProfilesCmd = &cobra.Command{
	Use:     "get-profiles",
	Aliases: []string{"list-profiles", "profiles"},
	Short:   "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		out := cmd.OutOrStdout()
		names := cfg.ListProfiles()
		if len(names) == 0 {
			fmt.Fprintln(out, "No profiles configured.")
			fmt.Fprintln(out, "Create one with: chartcat config set-profile <name> --es-url <url>")
			return nil
		}

		fmt.Fprintln(out, "PROFILES:")
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentProfile {
				marker = "* "
			}
			profile, _ := cfg.GetProfile(name)
			fmt.Fprintf(out, "%s%-20s  %s\n", marker, name, formatProfileSummary(profile))
		}

		if cfg.CurrentProfile != "" {
			fmt.Fprintf(out, "\n* = current profile\n")
		}

		return nil
	},
}

var currentProfileCmd = &cobra.Command{
	Use:   "current-profile",
	Short: "Show the profile in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
		name, _, err := cfg.ActiveProfile("")
		if err != nil {
			return fmt.Errorf("%s: %w", config.ProfileEnvVar, err)
		}

		out := cmd.OutOrStdout()
		switch {
		case name == "":
			fmt.Fprintln(out, "No profile selected (using defaults)")
		case name != cfg.CurrentProfile:
			fmt.Fprintf(out, "%s (from %s)\n", name, config.ProfileEnvVar)
		default:
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete-profile <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := editProfiles(func(cfg *config.ProfileConfig) error { return cfg.DeleteProfile(name) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q deleted\n", name)
		return nil
	},
}

var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the profile file (credentials masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(cfg.Profiles) == 0 && cfg.CurrentProfile == "" {
			fmt.Fprintln(out, "No configuration found.")
			fmt.Fprintln(out, "Create a profile with: chartcat config set-profile <name> --es-url <url>")
			return nil
		}

		fmt.Fprintln(out, cfg.String())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// printEffectiveConfig writes cfg as key = value lines with secrets masked.
func printEffectiveConfig(w io.Writer, cfg config.Config) error {
	profile := cfg.Profile
	if profile == "" {
		profile = "(none)"
	}
	rows := [][2]string{
		{"profile", profile},
		{"es.url", cfg.ES.URL},
		{"es.index", cfg.ES.Index},
		{"es.timeout", cfg.ES.Timeout.String()},
		{"es.ping_timeout", cfg.ES.PingTimeout.String()},
		{"es.api_key", mask(cfg.ES.APIKey)},
		{"es.username", cfg.ES.Username},
		{"es.password", mask(cfg.ES.Password)},
		{"chart.time_field", cfg.Chart.TimeField},
		{"chart.interval", cfg.Chart.Interval},
		{"chart.lookback", cfg.Chart.Lookback},
		{"chart.width", fmt.Sprint(cfg.Chart.Width)},
		{"chart.height", fmt.Sprint(cfg.Chart.Height)},
		{"log.level", cfg.Log.Level},
		{"log.format", cfg.Log.Format},
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%-17s = %s\n", r[0], r[1])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}

// formatProfileSummary returns a brief summary of a profile's settings.
func formatProfileSummary(p config.Profile) string {
	var parts []string
	if p.Elasticsearch.URL != "" {
		parts = append(parts, fmt.Sprintf("es=%s", p.Elasticsearch.URL))
	}
	if p.Elasticsearch.Index != "" {
		parts = append(parts, fmt.Sprintf("index=%s", p.Elasticsearch.Index))
	}
	if p.Chart.Interval != "" {
		parts = append(parts, fmt.Sprintf("interval=%s", p.Chart.Interval))
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, ", ")
}

func init() {
	registerProfileFlags(setProfileCmd.Flags())
	setProfileCmd.Flags().BoolVar(&setProfileUse, "use", false, "Also make this the current profile")

	// Add subcommands
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(useProfileCmd)
	configCmd.AddCommand(setProfileCmd)
	configCmd.AddCommand(getProfilesCmd)
	configCmd.AddCommand(currentProfileCmd)
	configCmd.AddCommand(deleteProfileCmd)
	configCmd.AddCommand(viewConfigCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}
