// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the parley CLI.
//
// Interactive prompts and colored output depend on whether we are talking
// to a terminal or a pipe, and on NO_COLOR.
package cli

import (
	"os"
	"sync"

	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// WIDTH AND COLOR
// =============================================================================

const defaultTermWidth = 80

var (
	termWidthOnce sync.Once
	termWidth     int
)

// TerminalWidth returns the stdout width, or 80 when it cannot be measured.
// The value is cached for the life of the process.
func TerminalWidth() int {
	termWidthOnce.Do(func() {
		termWidth = defaultTermWidth
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			termWidth = w
		}
	})
	return termWidth
}

// ColorEnabled reports whether output should be colored. Honors NO_COLOR.
func ColorEnabled() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return IsStdoutTTY()
}
