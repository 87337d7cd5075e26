// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the parley command line surface: argument
// parsing, the non-TUI subcommands (login, register, logout, status,
// config, version) and an interactive chat REPL for terminals where the
// full-screen UI is not wanted.
package cli
