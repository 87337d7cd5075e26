// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// DEFAULTS TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL == "" {
		t.Error("default server URL should not be empty")
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want 30", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Server.BaseURL == "" {
		t.Error("BaseURL not filled")
	}
	if cfg.Server.RequestsPerSecond == 0 {
		t.Error("RequestsPerSecond not filled")
	}
	if cfg.UI.Theme == "" {
		t.Error("Theme not filled")
	}
}

func TestSetDefaults_TrimsTrailingSlash(t *testing.T) {
	cfg := &Config{Server: ServerConfig{BaseURL: "https://chat.example.com/"}}
	cfg.SetDefaults()

	if cfg.Server.BaseURL != "https://chat.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty url", func(c *Config) { c.Server.BaseURL = "" }, "server.base_url"},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://x" }, "server.base_url"},
		{"negative timeout", func(c *Config) { c.Server.TimeoutSecs = -1 }, "server.timeout_secs"},
		{"huge timeout", func(c *Config) { c.Server.TimeoutSecs = 9999 }, "server.timeout_secs"},
		{"negative rate", func(c *Config) { c.Server.RequestsPerSecond = -1 }, "server.requests_per_second"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// =============================================================================
// ENV OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_SERVER_URL", "https://override.example.com")
	t.Setenv("PARLEY_TIMEOUT_SECS", "45")
	t.Setenv("PARLEY_THEME", "light")
	t.Setenv("PARLEY_NO_MARKDOWN", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "https://override.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 45 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.UI.Markdown {
		t.Error("Markdown should be disabled")
	}
}

func TestApplyEnvOverrides_IgnoresBadTimeout(t *testing.T) {
	t.Setenv("PARLEY_TIMEOUT_SECS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want default 30", cfg.Server.TimeoutSecs)
	}
}

// =============================================================================
// FILE ROUNDTRIP TESTS
// =============================================================================

func TestLoadFromPath_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "2.0.0"

[server]
base_url = "https://chat.example.com"
timeout_secs = 10

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Server.BaseURL != "https://chat.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.TimeoutSecs != 10 {
		t.Errorf("TimeoutSecs = %d", cfg.Server.TimeoutSecs)
	}
	// unset fields still get defaults
	if cfg.Server.Burst != 10 {
		t.Errorf("Burst = %d, want default", cfg.Server.Burst)
	}
}

func TestLoadFromPath_InvalidRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[ui]
theme = "neon"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected validation failure for bad theme")
	}
}

func TestSaveJSON_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	cfg := Default()
	cfg.UI.Theme = "light"
	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("Theme = %q after roundtrip", loaded.UI.Theme)
	}
}

// =============================================================================
// SESSION PATH TESTS
// =============================================================================

func TestSessionDBPath(t *testing.T) {
	cfg := Default()
	cfg.Session.DBPath = "/tmp/custom.db"
	path, err := cfg.SessionDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/custom.db" {
		t.Errorf("path = %q", path)
	}

	cfg.Session.DBPath = ""
	path, err = cfg.SessionDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "session.db" {
		t.Errorf("default path = %q", path)
	}
}
