// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elastic/chartcat/internal/histogram"
)

// ProfileConfig is the profile file, stored at ~/.config/chartcat/config.yaml.
type ProfileConfig struct {
	CurrentProfile string             `yaml:"current-profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile is a named Elasticsearch connection plus the chart defaults for
// one deployment. Every value may be a ${ENV_VAR} reference.
type Profile struct {
	Elasticsearch ESProfile    `yaml:"elasticsearch,omitempty"`
	Chart         ChartProfile `yaml:"chart,omitempty"`
}

// ESProfile holds Elasticsearch connection settings for a profile.
type ESProfile struct {
	URL      string `yaml:"url,omitempty"`
	Index    string `yaml:"index,omitempty"`
	APIKey   string `yaml:"api-key,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// ChartProfile overrides chart defaults for a profile. Empty values keep
// the built-in defaults.
type ChartProfile struct {
	TimeField string `yaml:"time-field,omitempty"`
	Interval  string `yaml:"interval,omitempty"`
	Lookback  string `yaml:"lookback,omitempty"`
}

const (
	ConfigDirName  = "chartcat"
	ConfigFileName = "config.yaml"

	// ProfileEnvVar selects a profile when --profile is not given.
	ProfileEnvVar = "CHARTCAT_PROFILE"

	maskedValue = "****"
)

// profileField addresses one string setting of a Profile by the config
// key it overrides.
type profileField struct {
	key    string
	value  *string
	secret bool
}

func (p *Profile) fields() []profileField {
	return []profileField{
		{"es.url", &p.Elasticsearch.URL, false},
		{"es.index", &p.Elasticsearch.Index, false},
		{"es.api_key", &p.Elasticsearch.APIKey, true},
		{"es.username", &p.Elasticsearch.Username, true},
		{"es.password", &p.Elasticsearch.Password, true},
		{"chart.time_field", &p.Chart.TimeField, false},
		{"chart.interval", &p.Chart.Interval, false},
		{"chart.lookback", &p.Chart.Lookback, false},
	}
}

// ProfileKeys lists the config keys a profile can override.
func ProfileKeys() []string {
	var p Profile
	fields := p.fields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// Set assigns the setting for a key returned by ProfileKeys. An empty
// value clears the setting.
func (p *Profile) Set(key, value string) error {
	for _, f := range p.fields() {
		if f.key == key {
			*f.value = value
			return nil
		}
	}
	return fmt.Errorf("unknown profile key %q", key)
}

// GetConfigDir returns $XDG_CONFIG_HOME/chartcat, or ~/.config/chartcat.
func GetConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, ConfigDirName), nil
}

// GetConfigPath returns the full path to the profile file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadProfiles reads the profile file. A missing file is an empty config.
func LoadProfiles() (*ProfileConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &ProfileConfig{Profiles: map[string]Profile{}}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	}
	warnIfReadable(path)

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return cfg, nil
}

// SaveProfiles writes cfg with mode 0600. The file is replaced atomically
// so a failed write never leaves a truncated config behind.
func SaveProfiles(cfg *ProfileConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ConfigFileName+".*")
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// GetProfile returns the named profile.
func (c *ProfileConfig) GetProfile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// SetProfile creates or replaces a named profile.
func (c *ProfileConfig) SetProfile(name string, profile Profile) {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.Profiles[name] = profile
}

// DeleteProfile removes a named profile and clears it as current profile.
func (c *ProfileConfig) DeleteProfile(name string) error {
	if _, err := c.GetProfile(name); err != nil {
		return err
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return nil
}

// ListProfiles returns the profile names in sorted order.
func (c *ProfileConfig) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActiveProfile picks the profile named by flag, else by $CHARTCAT_PROFILE,
// else the current profile of the file. An explicitly named profile must
// exist; a dangling current-profile entry is ignored. It returns a nil
// profile when none is active.
func (c *ProfileConfig) ActiveProfile(flag string) (string, *Profile, error) {
	name, explicit := flag, flag != ""
	if name == "" {
		name = os.Getenv(ProfileEnvVar)
		explicit = name != ""
	}
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return "", nil, nil
	}
	p, err := c.GetProfile(name)
	if err != nil {
		if explicit {
			return "", nil, err
		}
		return "", nil, nil
	}
	return name, &p, nil
}

var envVarPattern = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// IsEnvRef reports whether s is a ${VAR_NAME} reference.
func IsEnvRef(s string) bool {
	return envVarPattern.MatchString(s)
}

// Resolve returns a copy of the profile with every ${ENV_VAR} reference
// replaced by the variable's value. An unset variable is an error.
func (p Profile) Resolve() (Profile, error) {
	resolved := p
	for _, f := range resolved.fields() {
		m := envVarPattern.FindStringSubmatch(*f.value)
		if m == nil {
			continue
		}
		val, ok := os.LookupEnv(m[1])
		if !ok {
			return Profile{}, fmt.Errorf("%s: undefined environment variable %s", f.key, m[1])
		}
		*f.value = val
	}
	return resolved, nil
}

// Validate checks the values that can be checked without resolving
// environment references.
func (p Profile) Validate() error {
	if u := p.Elasticsearch.URL; u != "" && !IsEnvRef(u) {
		for _, addr := range strings.Split(u, ",") {
			parsed, err := url.Parse(strings.TrimSpace(addr))
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return fmt.Errorf("url %q is not an absolute URL", addr)
			}
		}
	}
	if iv := p.Chart.Interval; iv != "" && !IsEnvRef(iv) {
		if _, ok := histogram.ParseInterval(iv); !ok {
			return fmt.Errorf("interval %q is not a valid interval", iv)
		}
	}
	return nil
}

// HasCredentials reports whether any credential is set.
func (p Profile) HasCredentials() bool {
	for _, f := range p.fields() {
		if f.secret && *f.value != "" {
			return true
		}
	}
	return false
}

// HasPlainTextCredentials reports whether a credential is stored as a
// literal instead of an environment reference.
func (p Profile) HasPlainTextCredentials() bool {
	for _, f := range p.fields() {
		if f.secret && *f.value != "" && !IsEnvRef(*f.value) {
			return true
		}
	}
	return false
}

// MaskCredentials returns a copy with literal credentials replaced by
// "****". Environment references are safe to show and are kept.
func (p Profile) MaskCredentials() Profile {
	masked := p
	for _, f := range masked.fields() {
		if f.secret && *f.value != "" && !IsEnvRef(*f.value) {
			*f.value = maskedValue
		}
	}
	return masked
}

// MaskAllCredentials returns a copy of the config with all profile credentials masked.
func (c ProfileConfig) MaskAllCredentials() ProfileConfig {
	masked := ProfileConfig{
		CurrentProfile: c.CurrentProfile,
		Profiles:       make(map[string]Profile, len(c.Profiles)),
	}
	for name, profile := range c.Profiles {
		masked.Profiles[name] = profile.MaskCredentials()
	}
	return masked
}

// String returns the config as YAML with credentials masked.
func (c ProfileConfig) String() string {
	data, err := yaml.Marshal(c.MaskAllCredentials())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return strings.TrimSpace(string(data))
}

// warnIfReadable warns on stderr when group or others can read path.
func warnIfReadable(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		fmt.Fprintf(os.Stderr, "Warning: %s has permissions %04o, should be 0600 for security\n", path, mode)
	}
}

// PlainTextCredentialWarning is shown after storing literal credentials.
func PlainTextCredentialWarning() string {
	return "Warning: Storing credentials in plain text. Consider using environment\n" +
		"variable references (e.g., api-key: ${MY_API_KEY}) for better security."
}
