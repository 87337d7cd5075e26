// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for parley.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation. A file watcher can reload
// the global configuration when the file changes on disk.
//
// Configuration file locations (in order of precedence):
//   - ~/.parley/config.toml
//   - ~/.parley/config.json
//   - Built-in defaults
//
// # Key Types
//
//   - Config: the complete parley configuration
//   - ServerConfig: remote chat service connection settings
//   - UIConfig: terminal UI appearance settings
//   - Watcher: fsnotify-based live reload of the global config
//
// # Usage
//
//	cfg := config.Global()
//	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: cfg.Server.BaseURL})
package config
