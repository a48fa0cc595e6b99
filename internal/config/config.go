// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages chatin configuration: the backend base URL,
// the identity provider endpoint, UI timings, and logging. Settings are
// read from ~/.chatin/config.toml with environment overrides applied
// last, and fall back to defaults when no file exists.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatin-tui/internal/util"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the root configuration for the chatin client.
type Config struct {
	Version string `toml:"version"`

	Backend BackendConfig `toml:"backend"`
	Auth    AuthConfig    `toml:"auth"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// BackendConfig holds the inference backend connection settings.
type BackendConfig struct {
	// BaseURL is the root of the ChatinAja backend.
	BaseURL string `toml:"base_url"`

	// TimeoutSecs bounds each request; 0 means the default.
	TimeoutSecs int `toml:"timeout_secs"`
}

// AuthConfig holds the identity provider settings.
type AuthConfig struct {
	// ProviderURL is the Identity Toolkit endpoint root.
	ProviderURL string `toml:"provider_url"`

	// APIKey is the provider web API key.
	APIKey string `toml:"api_key"`

	// CacheToken controls whether the session token is cached on disk
	// so restarts resume the previous sign-in.
	CacheToken bool `toml:"cache_token"`
}

// UIConfig holds presentation timings. Tests shrink these; the defaults
// match the original client's feel.
type UIConfig struct {
	// ComposingDelayMs is the perceived-latency pause before the
	// loading placeholder appears.
	ComposingDelayMs int `toml:"composing_delay_ms"`

	// RevealIntervalMs is the typewriter tick, one rune per tick.
	RevealIntervalMs int `toml:"reveal_interval_ms"`

	// HistoryRefreshDelayMs is how long after a successful send the
	// history re-read is scheduled, giving the backend time to persist
	// the turn.
	HistoryRefreshDelayMs int `toml:"history_refresh_delay_ms"`

	// NarrowWidth is the terminal width at or below which the sidebar
	// auto-closes on session switches.
	NarrowWidth int `toml:"narrow_width"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, error
	File  string `toml:"file"`  // empty means <config dir>/chatin.log
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Backend: BackendConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 60,
		},
		Auth: AuthConfig{
			ProviderURL: "https://identitytoolkit.googleapis.com",
			APIKey:      "",
			CacheToken:  true,
		},
		UI: UIConfig{
			ComposingDelayMs:      500,
			RevealIntervalMs:      5,
			HistoryRefreshDelayMs: 1500,
			NarrowWidth:           80,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ComposingDelay returns the composing pause as a duration.
func (c *Config) ComposingDelay() time.Duration {
	return time.Duration(c.UI.ComposingDelayMs) * time.Millisecond
}

// RevealInterval returns the typewriter tick as a duration.
func (c *Config) RevealInterval() time.Duration {
	return time.Duration(c.UI.RevealIntervalMs) * time.Millisecond
}

// HistoryRefreshDelay returns the post-send refresh delay as a duration.
func (c *Config) HistoryRefreshDelay() time.Duration {
	return time.Duration(c.UI.HistoryRefreshDelayMs) * time.Millisecond
}

// BackendTimeout returns the per-request timeout as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the chatin configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatin"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chatin.log"), nil
}

// TokenCachePath returns where the auth session token is cached.
func TokenCachePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file if present, applies environment overrides,
// and validates. A missing file is not an error; defaults are used.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFile(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes a TOML config file over the given config.
func LoadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies CHATIN_* environment variables on top of
// whatever was loaded. Environment wins over file, file wins over
// defaults.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATIN_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("CHATIN_AUTH_URL"); v != "" {
		c.Auth.ProviderURL = v
	}
	if v := os.Getenv("CHATIN_API_KEY"); v != "" {
		c.Auth.APIKey = v
	}
	if v := os.Getenv("CHATIN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration for values that would misbehave at
// runtime rather than failing loudly here.
func (c *Config) Validate() error {
	if err := validateURL(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if err := validateURL(c.Auth.ProviderURL); err != nil {
		return fmt.Errorf("auth.provider_url: %w", err)
	}
	if c.Backend.TimeoutSecs < 0 {
		return fmt.Errorf("backend.timeout_secs must not be negative")
	}
	if c.UI.ComposingDelayMs < 0 || c.UI.RevealIntervalMs < 0 || c.UI.HistoryRefreshDelayMs < 0 {
		return fmt.Errorf("ui timings must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, or error, got %q", c.Log.Level)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// Save writes the config to its TOML path atomically with owner-only
// permissions (the file may hold the provider API key).
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to the given path.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	buf.WriteString("# chatin configuration\n")
	buf.WriteString("# Generated on " + time.Now().Format("2006-01-02 15:04:05") + "\n\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// Redacted returns a copy safe for logging, with the API key masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.Auth.APIKey != "" {
		out.Auth.APIKey = "[REDACTED, length=" + fmt.Sprint(len(c.Auth.APIKey)) + "]"
	}
	return out
}

// NormalizeBaseURL strips a trailing slash so joins stay predictable.
func NormalizeBaseURL(raw string) string {
	return strings.TrimSuffix(raw, "/")
}
