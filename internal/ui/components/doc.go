// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides shared UI components for the parley TUI.
//
// # Key Types
//
//   - Toast / ToastStack: non-blocking corner notifications that auto-dismiss
//   - StatusBar: the bottom bar showing identity, connection, and shortcuts
package components
