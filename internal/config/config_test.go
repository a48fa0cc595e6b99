// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("default backend URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.ComposingDelay() != 500*time.Millisecond {
		t.Errorf("composing delay = %v", cfg.ComposingDelay())
	}
	if cfg.RevealInterval() != 5*time.Millisecond {
		t.Errorf("reveal interval = %v", cfg.RevealInterval())
	}
	if cfg.HistoryRefreshDelay() != 1500*time.Millisecond {
		t.Errorf("history refresh delay = %v", cfg.HistoryRefreshDelay())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0.0"

[backend]
base_url = "https://api.chatin.example"
timeout_secs = 30

[ui]
composing_delay_ms = 300
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Backend.BaseURL != "https://api.chatin.example" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("timeout = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.UI.ComposingDelayMs != 300 {
		t.Errorf("composing delay = %d", cfg.UI.ComposingDelayMs)
	}
	// Untouched sections keep defaults.
	if cfg.UI.RevealIntervalMs != 5 {
		t.Errorf("reveal interval lost its default: %d", cfg.UI.RevealIntervalMs)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CHATIN_BACKEND_URL", "http://10.0.0.5:8000")
	t.Setenv("CHATIN_API_KEY", "key-from-env")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("env override missed base URL: %q", cfg.Backend.BaseURL)
	}
	if cfg.Auth.APIKey != "key-from-env" {
		t.Errorf("env override missed API key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"valid defaults", func(c *Config) {}, true},
		{"bad scheme", func(c *Config) { c.Backend.BaseURL = "ftp://x" }, false},
		{"missing host", func(c *Config) { c.Backend.BaseURL = "http://" }, false},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSecs = -1 }, false},
		{"negative timing", func(c *Config) { c.UI.RevealIntervalMs = -5 }, false},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tc.wantOK && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestSaveTo_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "https://api.chatin.example"
	cfg.Auth.APIKey = "secret"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config perms = %o, want 0600", info.Mode().Perm())
	}

	loaded := Default()
	if err := LoadFile(loaded, path); err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if loaded.Backend.BaseURL != cfg.Backend.BaseURL || loaded.Auth.APIKey != "secret" {
		t.Error("roundtrip lost values")
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Auth.APIKey = "super-secret-key"
	red := cfg.Redacted()
	if strings.Contains(red.Auth.APIKey, "super-secret") {
		t.Error("Redacted() leaked the API key")
	}
	if cfg.Auth.APIKey != "super-secret-key" {
		t.Error("Redacted() mutated the original")
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	if got := NormalizeBaseURL("http://localhost:8000/"); got != "http://localhost:8000" {
		t.Errorf("NormalizeBaseURL() = %q", got)
	}
}
