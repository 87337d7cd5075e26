// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatview

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/ui/components"
)

// LogoutRequestedMsg tells the parent the user asked to sign out.
type LogoutRequestedMsg struct{}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.initMarkdown()
		m.refreshTranscript()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.manager.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			if m.manager.Sending() {
				m.refreshTranscript()
			}
		}

	case refreshMsg:
		m.refreshTranscript()
		return m, nil

	case components.ToastExpiredMsg:
		if m.toasts.Sweep() {
			cmds = append(cmds, m.toasts.TickCmd())
		}

	case historyDoneMsg:
		m.refreshTranscript()
		if msg.err != nil {
			return m.reportFailure("could not load history", msg.err)
		}

	case sendDoneMsg:
		m.refreshTranscript()
		if msg.err != nil {
			return m.reportFailure("message not sent", msg.err)
		}

	case editDoneMsg:
		m.refreshTranscript()
		if msg.err != nil {
			return m.reportFailure("edit rejected", msg.err)
		}

	case clearDoneMsg:
		m.refreshTranscript()
		if msg.err != nil {
			return m.reportFailure("could not clear chat", msg.err)
		}
	}

	// keep the composer and viewport live for non-key messages
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey routes a key press.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Logout):
		return m, func() tea.Msg { return LogoutRequestedMsg{} }

	case key.Matches(msg, m.keys.Cancel):
		switch {
		case m.edit.active:
			m.cancelEdit()
		case m.showDrawer:
			m.showDrawer = false
		}
		return m, nil

	case key.Matches(msg, m.keys.History):
		m.showDrawer = !m.showDrawer
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.fetchHistoryCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.NewChat):
		m.manager.NewChat()
		m.cancelEdit()
		m.refreshTranscript()
		m.toasts.Push(components.NewStatusToast("started a new chat"))
		return m, m.toasts.TickCmd()

	case key.Matches(msg, m.keys.Clear):
		m.cancelEdit()
		return m, tea.Batch(m.clearCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.Edit):
		m.beginEdit()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.submitInput()

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		m.atBottom = m.viewport.AtBottom()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDn):
		m.viewport.HalfViewDown()
		m.atBottom = m.viewport.AtBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput sends the composer content, as a new message or as an edit.
func (m Model) submitInput() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	// the manager ignores calls while busy; skip clearing the composer so
	// the user's text is not lost to a silent no-op
	if m.manager.Busy() {
		return m, nil
	}

	m.input.Reset()

	if m.edit.active {
		index := m.edit.index
		m.cancelEdit()
		return m, tea.Batch(m.editCmd(index, text), m.spinner.Tick)
	}

	// optimistic append happens inside the manager; refresh right away so
	// the message shows before the reply arrives
	cmd := m.sendCmd(text)
	return m, tea.Batch(cmd, m.spinner.Tick, func() tea.Msg { return refreshMsg{} })
}

// refreshMsg forces a transcript redraw mid-operation.
type refreshMsg struct{}

// beginEdit enters edit mode on the user's most recent message.
func (m *Model) beginEdit() {
	msgs := m.manager.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			m.edit = editState{active: true, index: i}
			m.input.SetValue(msgs[i].Content)
			m.input.CursorEnd()
			m.refreshTranscript()
			return
		}
	}
	m.toasts.Push(components.NewStatusToast("nothing to edit yet"))
}

func (m *Model) cancelEdit() {
	if m.edit.active {
		m.edit = editState{}
		m.input.Reset()
		m.refreshTranscript()
	}
}

// reportFailure pushes an error toast; a dead token bubbles up to the parent.
func (m Model) reportFailure(prefix string, err error) (Model, tea.Cmd) {
	if api.IsUnauthorized(err) {
		return m, func() tea.Msg { return SessionExpiredMsg{} }
	}
	m.toasts.Push(components.NewErrorToast(prefix + ": " + failureText(err)))
	return m, m.toasts.TickCmd()
}

// failureText keeps server-provided reasons and flattens everything else.
func failureText(err error) string {
	var clientErr *api.ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Message
	}
	return err.Error()
}
