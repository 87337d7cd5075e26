// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom bar: who is signed in, whether an operation is
// in flight, and the active shortcuts.
type StatusBar struct {
	UserLabel string
	Busy      bool
	BusyLabel string
	Shortcuts []Shortcut
}

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// View renders the bar at the given width.
func (b *StatusBar) View(theme *styles.Theme, width int) string {
	var left string
	if b.UserLabel != "" {
		left = theme.StatusOnline.Render("● ") + b.UserLabel
	} else {
		left = theme.ShortcutDesc.Render("signed out")
	}

	if b.Busy {
		label := b.BusyLabel
		if label == "" {
			label = "working"
		}
		left += "  " + theme.StatusBusy.Render(label+"…")
	}

	var hints []string
	for _, s := range b.Shortcuts {
		hints = append(hints, theme.ShortcutKey.Render(s.Key)+theme.ShortcutDesc.Render(" "+s.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
		right = util.TruncateWidth(right, width-lipgloss.Width(left)-3)
	}

	return theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
