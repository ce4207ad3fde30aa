// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Fotoline.
//
// Configuration is loaded from a single file specified by either the
// FOTOLINE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file discovery; commands fall
// back to [Default] when neither is given, so a config file is only
// needed to point at a non-default server or relocate local state.
//
// The file supports development and production override sections that
// apply when Environment matches. Variable expansion (${HOME},
// ${VAR:-default}) is performed on path fields after loading; no other
// environment variables override config values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment identifies the deployment type.
type Environment string

const (
	// Development is for local development against a local server.
	Development Environment = "development"
	// Production is for talking to a real deployment.
	Production Environment = "production"
)

// Config is the master configuration for the Fotoline client.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// API configures the connection to the photo-sharing server.
	API APIConfig `yaml:"api"`

	// Paths configures local state locations.
	Paths PathsConfig `yaml:"paths"`

	// Development and Production are per-environment overrides applied
	// after the base config is loaded.
	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// APIConfig configures the connection to the server.
type APIConfig struct {
	// BaseURL is the root of the photo-sharing API
	// (e.g., "http://localhost:8000"). Relative image paths resolve
	// against this URL.
	BaseURL string `yaml:"base_url"`

	// RequestTimeout bounds every API request. Zero means the default
	// of 30 seconds.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// PathsConfig configures local state locations.
type PathsConfig struct {
	// SessionDir is where the signed-in session's credential keys are
	// stored, one file per key.
	SessionDir string `yaml:"session_dir"`

	// MediaCache is the directory for the content-addressed image cache.
	MediaCache string `yaml:"media_cache"`

	// ThemeFile is an optional JSONC file overriding the viewer's
	// built-in color theme. Empty means built-in theme only.
	ThemeFile string `yaml:"theme_file"`
}

// Overrides contains the fields that may be overridden per environment.
type Overrides struct {
	API   *APIConfig   `yaml:"api,omitempty"`
	Paths *PathsConfig `yaml:"paths,omitempty"`
}

// DefaultRequestTimeout is applied when the config file does not set one.
const DefaultRequestTimeout = 30 * time.Second

// Default returns the default configuration: a local development server
// and state under ~/.cache/fotoline.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "fotoline")

	return &Config{
		Environment: Development,
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			RequestTimeout: DefaultRequestTimeout,
		},
		Paths: PathsConfig{
			SessionDir: filepath.Join(defaultRoot, "session"),
			MediaCache: filepath.Join(defaultRoot, "media"),
		},
	}
}

// Load loads configuration from the path in FOTOLINE_CONFIG. Fails if the
// variable is unset — callers that can run without a file should check the
// variable themselves and use [Default].
func Load() (*Config, error) {
	configPath := os.Getenv("FOTOLINE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("FOTOLINE_CONFIG environment variable not set; " +
			"set it to the path of your fotoline.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The file is the
// single source of truth: environment variables do not override values, and
// the only expansion performed is ${VAR} substitution in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = DefaultRequestTimeout
	}

	return cfg, nil
}

// applyEnvironmentOverrides merges the section matching Environment into
// the base values. Empty override fields leave the base value in place.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.API != nil {
		if overrides.API.BaseURL != "" {
			c.API.BaseURL = overrides.API.BaseURL
		}
		if overrides.API.RequestTimeout > 0 {
			c.API.RequestTimeout = overrides.API.RequestTimeout
		}
	}

	if overrides.Paths != nil {
		if overrides.Paths.SessionDir != "" {
			c.Paths.SessionDir = overrides.Paths.SessionDir
		}
		if overrides.Paths.MediaCache != "" {
			c.Paths.MediaCache = overrides.Paths.MediaCache
		}
		if overrides.Paths.ThemeFile != "" {
			c.Paths.ThemeFile = overrides.Paths.ThemeFile
		}
	}
}

// variablePattern matches ${VAR} and ${VAR:-default}.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandVariables substitutes ${VAR} patterns in path fields. Unset
// variables without a default expand to the empty string, matching shell
// behavior.
func (c *Config) expandVariables() {
	c.Paths.SessionDir = expand(c.Paths.SessionDir)
	c.Paths.MediaCache = expand(c.Paths.MediaCache)
	c.Paths.ThemeFile = expand(c.Paths.ThemeFile)
}

func expand(value string) string {
	return variablePattern.ReplaceAllStringFunc(value, func(match string) string {
		groups := variablePattern.FindStringSubmatch(match)
		if env, ok := os.LookupEnv(groups[1]); ok {
			return env
		}
		return groups[3]
	})
}
