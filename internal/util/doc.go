// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the parley application.
//
// This package contains common helper functions used throughout the
// application for string manipulation, type conversion, and file operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation (CJK safe)
//   - Squash: whitespace collapsing for one-line previews
//
// Type Conversion:
//   - IntToString, ParseInt: numeric conversions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
package util
