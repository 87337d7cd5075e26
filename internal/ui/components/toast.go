// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Non-blocking toasts inspired by lazygit's popup system. Unlike modal error
// dialogs, toasts appear in a corner and auto-dismiss, so the user keeps
// typing while a failed send or edit is reported.
package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast (cyan)
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast (rose)
	ToastKindError
	// ToastKindWarning is a warning toast (amber)
	ToastKindWarning
	// ToastKindSuccess is a success toast (emerald)
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts,
// longer so the failure reason can be read.
const ErrorToastDuration = 8 * time.Second

// Toast is a single notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastKindError,
		CreatedAt: time.Now(),
		Duration:  ErrorToastDuration,
	}
}

// NewStatusToast creates an informational toast.
func NewStatusToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastKindStatus,
		CreatedAt: time.Now(),
		Duration:  DefaultToastDuration,
	}
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{
		ID:        nextToastID(),
		Message:   message,
		Kind:      ToastKindSuccess,
		CreatedAt: time.Now(),
		Duration:  DefaultToastDuration,
	}
}

// IsExpired reports whether the toast should be dismissed.
func (t *Toast) IsExpired() bool {
	return time.Since(t.CreatedAt) >= t.Duration
}

var (
	toastIDMu   sync.Mutex
	toastIDLast int
)

func nextToastID() int {
	toastIDMu.Lock()
	defer toastIDMu.Unlock()
	toastIDLast++
	return toastIDLast
}

// =============================================================================
// TOAST STACK
// =============================================================================

// maxVisibleToasts caps how many toasts stack before the oldest is dropped.
const maxVisibleToasts = 3

// ToastExpiredMsg asks the UI to sweep expired toasts.
type ToastExpiredMsg struct{}

// ToastStack holds the active toasts, newest last.
type ToastStack struct {
	toasts []Toast
}

// Push adds a toast, dropping the oldest past the cap.
func (s *ToastStack) Push(t Toast) {
	s.toasts = append(s.toasts, t)
	if len(s.toasts) > maxVisibleToasts {
		s.toasts = s.toasts[len(s.toasts)-maxVisibleToasts:]
	}
}

// Sweep removes expired toasts and reports whether any remain.
func (s *ToastStack) Sweep() bool {
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if !t.IsExpired() {
			kept = append(kept, t)
		}
	}
	s.toasts = kept
	return len(s.toasts) > 0
}

// Dismiss drops the oldest toast.
func (s *ToastStack) Dismiss() {
	if len(s.toasts) > 0 {
		s.toasts = s.toasts[1:]
	}
}

// Clear drops every toast.
func (s *ToastStack) Clear() {
	s.toasts = nil
}

// Len returns the number of active toasts.
func (s *ToastStack) Len() int {
	return len(s.toasts)
}

// TickCmd schedules the next expiry sweep while toasts are visible.
func (s *ToastStack) TickCmd() tea.Cmd {
	if len(s.toasts) == 0 {
		return nil
	}
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return ToastExpiredMsg{}
	})
}

// View renders the stack for the given theme and width.
func (s *ToastStack) View(theme *styles.Theme, width int) string {
	if len(s.toasts) == 0 {
		return ""
	}

	var rendered []string
	for _, t := range s.toasts {
		rendered = append(rendered, renderToast(theme, t, width))
	}
	return strings.Join(rendered, "\n")
}

func renderToast(theme *styles.Theme, t Toast, width int) string {
	var accent lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case ToastKindError:
		accent, icon = styles.Rose, "✗"
	case ToastKindWarning:
		accent, icon = styles.Amber, "!"
	case ToastKindSuccess:
		accent, icon = styles.Emerald, "✓"
	default:
		accent, icon = styles.Cyan, "·"
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Foreground(styles.TextPrimary).
		Padding(0, 1)

	maxWidth := width - 4
	if maxWidth > 60 {
		maxWidth = 60
	}
	if maxWidth > 0 {
		box = box.MaxWidth(maxWidth)
	}

	label := lipgloss.NewStyle().Foreground(accent).Bold(true).Render(icon)
	return box.Render(label + " " + t.Message)
}
