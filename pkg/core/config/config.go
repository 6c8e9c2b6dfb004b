// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     config
// Description: TOML configuration with defaults and environment lookup
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	skerr "github.com/msto63/skriptc/pkg/core/error"
)

// EnvConfigPath names the environment variable that points at a config file
const EnvConfigPath = "SKRIPTC_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Build    BuildConfig    `toml:"build"`
	Backends BackendsConfig `toml:"backends"`
	History  HistoryConfig  `toml:"history"`
	Watch    WatchConfig    `toml:"watch"`

	// Source is the file the configuration was read from, empty for defaults
	Source string `toml:"-"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// BuildConfig holds settings for a single build run
type BuildConfig struct {
	Backend          string   `toml:"backend"`
	Compiler         string   `toml:"compiler"`
	Timeout          Duration `toml:"timeout"`
	KeepIntermediate bool     `toml:"keep_intermediate"`
}

// BackendsConfig points at additional backend definitions
type BackendsConfig struct {
	Dir string `toml:"dir"`
}

// HistoryConfig holds build history store settings. History is off unless
// a config file enables it.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// WatchConfig holds settings for the watch command
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file on top of the defaults
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); err != nil {
		return nil, skerr.Wrap(err, "config file not found").
			WithCode(skerr.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, skerr.Wrap(err, "failed to parse config").
			WithCode(skerr.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}
	cfg.Source = path

	// an explicit zero timeout means no limit
	noTimeout := md.IsDefined("build", "timeout") && cfg.Build.Timeout.Duration == 0
	cfg.applyDefaults()
	if noTimeout {
		cfg.Build.Timeout.Duration = 0
	}
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by SKRIPTC_CONFIG, else the first file
// found in the default locations, else the defaults
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// DefaultPaths lists the config locations searched by LoadFromEnv
func DefaultPaths() []string {
	paths := []string{"./skriptc.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "skriptc", "config.toml"))
	}
	return paths
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "console"
	}

	if c.Build.Backend == "" {
		c.Build.Backend = "c"
	}
	if c.Build.Timeout.Duration == 0 {
		c.Build.Timeout.Duration = 60 * time.Second
	}

	if c.History.Path == "" {
		c.History.Path = "./.skriptc/history.db"
	}

	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 200 * time.Millisecond
	}
}

// expandEnvVars expands environment variables in path-like values
func (c *Config) expandEnvVars() {
	c.Build.Compiler = os.ExpandEnv(c.Build.Compiler)
	c.Backends.Dir = os.ExpandEnv(c.Backends.Dir)
	c.History.Path = os.ExpandEnv(c.History.Path)
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if c.Build.Timeout.Duration < 0 {
		return skerr.New("build.timeout must be positive").
			WithCode(skerr.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("timeout", c.Build.Timeout.String())
	}
	if c.Watch.Debounce.Duration < 0 {
		return skerr.New("watch.debounce must be positive").
			WithCode(skerr.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("debounce", c.Watch.Debounce.String())
	}
	return nil
}
