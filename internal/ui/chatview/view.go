// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatview

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	headerHeight    = 1
	inputHeight     = 3
	statusBarHeight = 1
)

// layout sizes the viewport and composer for the current window.
func (m *Model) layout() {
	vpHeight := m.height - headerHeight - inputHeight - statusBarHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}

	m.input.Width = m.width - 6
	m.theme.SetSize(m.width, m.height)
}

// refreshTranscript rebuilds the viewport content from the manager's state.
func (m *Model) refreshTranscript() {
	if m.width == 0 {
		return
	}

	msgs := m.manager.Messages()
	if len(msgs) == 0 {
		m.viewport.SetContent(m.emptyTranscript())
		return
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg, i))
		b.WriteString("\n")
	}

	if m.manager.Sending() {
		b.WriteString("\n")
		b.WriteString(m.theme.ThinkingText.Render(m.spinner.View() + " thinking…"))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	if m.atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) emptyTranscript() string {
	hint := m.theme.FormHint.Render("No messages yet. Say hello.")
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, hint)
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// renderMessage draws one bubble, right-aligned for the user and left-aligned
// for the assistant.
func (m *Model) renderMessage(msg *model.Message, index int) string {
	bubbleWidth := m.width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = m.width - 4
	}

	var meta string
	if m.showTimes && !msg.Timestamp.IsZero() {
		meta = msg.Timestamp.Format("15:04")
	}

	switch msg.Role {
	case model.RoleUser:
		label := msg.Role.DisplayName()
		if m.userLabel != "" {
			label = m.userLabel
		}
		header := label
		if meta != "" {
			header += " · " + meta
		}
		if m.edit.active && m.edit.index == index {
			header += " " + m.theme.EditMarker.Render("editing")
		}

		bubble := m.theme.UserBubble.MaxWidth(bubbleWidth).Render(msg.Content)
		block := m.theme.MessageMeta.Render(header) + "\n" + bubble
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)

	default:
		header := msg.Role.DisplayName()
		if meta != "" {
			header += " · " + meta
		}

		content := msg.Content
		if m.markdown != nil {
			if rendered, err := m.markdown.Render(msg.Content); err == nil {
				content = strings.TrimRight(rendered, "\n")
			}
		}

		bubble := m.theme.AssistantBubble.MaxWidth(bubbleWidth).Render(content)
		return m.theme.MessageMeta.Render(header) + "\n" + bubble
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  loading…"
	}

	header := m.renderHeader()
	composer := m.renderComposer()
	statusBar := m.renderStatusBar()

	body := m.viewport.View()
	if m.showDrawer {
		body = m.renderDrawer()
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		composer,
		statusBar,
	)

	if m.toasts.Len() > 0 {
		return view + "\n" + m.toasts.View(m.theme, m.width)
	}
	return view
}

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("parley")
	subtitle := ""
	if id := m.manager.ChatID(); id != "" {
		subtitle = m.theme.HeaderSubtitle.Render("  chat " + id)
	} else {
		subtitle = m.theme.HeaderSubtitle.Render("  new chat")
	}
	return m.theme.Header.Width(m.width).Render(title + subtitle)
}

// renderDrawer shows the conversation summary in place of the transcript.
func (m *Model) renderDrawer() string {
	conv := m.manager.Snapshot()

	var b strings.Builder
	b.WriteString(m.theme.FormTitle.Render(conv.Title()) + "\n\n")

	threadLabel := conv.ChatID
	if threadLabel == "" {
		threadLabel = "(not saved yet)"
	}
	b.WriteString(m.theme.MessageMeta.Render(util.PadRight("thread", 10)+threadLabel) + "\n")
	b.WriteString(m.theme.MessageMeta.Render(util.PadRight("messages", 10)+util.IntToString(conv.Len())) + "\n")
	if at := conv.UpdatedAt(); !at.IsZero() {
		b.WriteString(m.theme.MessageMeta.Render(util.PadRight("updated", 10)+at.Format("Jan 2 15:04")) + "\n")
	}
	b.WriteString("\n")

	for _, msg := range conv.Messages {
		line := m.theme.ShortcutKey.Render(msg.Role.DisplayName()) + " " + msg.Preview(60)
		b.WriteString(line + "\n")
	}

	panel := m.theme.FormBox.Width(m.width - 4).Render(b.String())
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Top, panel)
}

func (m *Model) renderComposer() string {
	prompt := m.theme.InputPrompt.Render("> ")
	if m.edit.active {
		prompt = m.theme.EditMarker.Render("edit> ")
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(prompt + m.input.View())
}

func (m *Model) renderStatusBar() string {
	busyLabel := ""
	switch {
	case m.manager.Loading():
		busyLabel = "loading"
	case m.manager.Sending():
		busyLabel = "sending"
	}

	bar := components.StatusBar{
		UserLabel: m.userLabel,
		Busy:      busyLabel != "",
		BusyLabel: busyLabel,
		Shortcuts: []components.Shortcut{
			{Key: "enter", Desc: "send"},
			{Key: "^e", Desc: "edit"},
			{Key: "^h", Desc: "history"},
			{Key: "^n", Desc: "new"},
			{Key: "^x", Desc: "clear"},
			{Key: "^o", Desc: "logout"},
			{Key: "^c", Desc: "quit"},
		},
	}
	return bar.View(m.theme, m.width)
}
