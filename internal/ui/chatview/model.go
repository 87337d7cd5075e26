// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatview provides the conversation screen of the parley TUI.
//
// The screen is a viewport over the transcript, a one-line composer, and a
// status bar. Operations run through the conversation manager as commands;
// the view re-reads the manager's state when each command completes, so the
// transcript always shows the optimistic state the manager holds.
package chatview

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// historyDoneMsg reports a completed history fetch.
type historyDoneMsg struct{ err error }

// sendDoneMsg reports a completed send.
type sendDoneMsg struct{ err error }

// editDoneMsg reports a completed edit.
type editDoneMsg struct{ err error }

// clearDoneMsg reports a completed clear.
type clearDoneMsg struct{ err error }

// SessionExpiredMsg tells the parent the service rejected our token.
type SessionExpiredMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// editState tracks an in-progress message edit.
type editState struct {
	active bool
	index  int
}

// Model is the conversation screen.
type Model struct {
	theme   *styles.Theme
	manager *chat.Manager
	keys    keyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	toasts   components.ToastStack
	markdown *glamour.TermRenderer

	userLabel  string
	renderMD   bool
	showTimes  bool
	edit       editState
	showDrawer bool
	width      int
	height     int
	ready      bool
	atBottom   bool
	quitting   bool
}

// Options configures the chat screen.
type Options struct {
	UserLabel      string
	Markdown       bool
	ShowTimestamps bool
}

// New creates the conversation screen over an existing manager.
func New(theme *styles.Theme, manager *chat.Manager, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Type a message…"
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		theme:     theme,
		manager:   manager,
		keys:      defaultKeyMap(),
		input:     input,
		spinner:   sp,
		userLabel: opts.UserLabel,
		renderMD:  opts.Markdown,
		showTimes: opts.ShowTimestamps,
		atBottom:  true,
	}
}

// Init implements tea.Model: kick off the history fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		m.fetchHistoryCmd(),
	)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) fetchHistoryCmd() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return historyDoneMsg{err: mgr.FetchHistory(context.Background())}
	}
}

func (m *Model) sendCmd(text string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return sendDoneMsg{err: mgr.SendMessage(context.Background(), text)}
	}
}

func (m *Model) editCmd(index int, content string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return editDoneMsg{err: mgr.EditMessage(context.Background(), index, content)}
	}
}

func (m *Model) clearCmd() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return clearDoneMsg{err: mgr.ClearChat(context.Background())}
	}
}

// initMarkdown builds the glamour renderer for the current width. Rendering
// falls back to plain text when the renderer cannot be built.
func (m *Model) initMarkdown() {
	if !m.renderMD {
		return
	}
	wrap := m.width - 12
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.markdown = nil
		return
	}
	m.markdown = renderer
}
