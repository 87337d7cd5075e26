// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in and registration form.
//
// The form collects credentials and emits SubmitMsg; the parent model runs
// the actual authentication and reports back with Fail or succeed by
// switching views.
package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SubmitMsg is emitted when the user submits the form.
type SubmitMsg struct {
	Register bool
	Name     string
	Email    string
	Password string
}

// =============================================================================
// MODEL
// =============================================================================

const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldSubmit
	fieldToggle
)

// Model is the login/register form.
type Model struct {
	theme *styles.Theme

	registering bool
	inputs      []textinput.Model
	focus       int
	submitting  bool
	errMsg      string

	width  int
	height int
}

// New creates the form in login mode.
func New(theme *styles.Theme) Model {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return Model{
		theme:  theme,
		inputs: []textinput.Model{name, email, password},
		focus:  fieldEmail,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Fail shows a failure message and unlocks the form.
func (m *Model) Fail(msg string) {
	m.errMsg = msg
	m.submitting = false
}

// SetSize records the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.setFocus(m.nextField(1))
			return m, nil
		case "shift+tab", "up":
			m.setFocus(m.nextField(-1))
			return m, nil
		case "enter":
			switch m.focus {
			case fieldToggle:
				m.toggleMode()
				return m, nil
			case fieldSubmit:
				return m.submit()
			default:
				// enter in a field advances; enter on the last field submits
				if m.focus == fieldPassword {
					return m.submit()
				}
				m.setFocus(m.nextField(1))
				return m, nil
			}
		}
	}

	// route everything else to the focused input
	if m.focus >= fieldName && m.focus <= fieldPassword {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// nextField steps focus over the visible fields in either direction.
func (m *Model) nextField(dir int) int {
	fields := []int{fieldEmail, fieldPassword, fieldSubmit, fieldToggle}
	if m.registering {
		fields = []int{fieldName, fieldEmail, fieldPassword, fieldSubmit, fieldToggle}
	}

	current := 0
	for i, f := range fields {
		if f == m.focus {
			current = i
			break
		}
	}
	next := (current + dir + len(fields)) % len(fields)
	return fields[next]
}

func (m *Model) setFocus(field int) {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) toggleMode() {
	m.registering = !m.registering
	m.errMsg = ""
	if m.registering {
		m.setFocus(fieldName)
	} else {
		m.setFocus(fieldEmail)
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	if m.registering && name == "" {
		m.errMsg = "name is required"
		m.setFocus(fieldName)
		return m, nil
	}
	if email == "" {
		m.errMsg = "email is required"
		m.setFocus(fieldEmail)
		return m, nil
	}
	if password == "" {
		m.errMsg = "password is required"
		m.setFocus(fieldPassword)
		return m, nil
	}

	m.errMsg = ""
	m.submitting = true
	submit := SubmitMsg{
		Register: m.registering,
		Name:     name,
		Email:    email,
		Password: password,
	}
	return m, func() tea.Msg { return submit }
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := "Sign in to parley"
	if m.registering {
		title = "Create your parley account"
	}
	b.WriteString(m.theme.FormTitle.Render(title))
	b.WriteString("\n\n")

	if m.registering {
		b.WriteString(m.renderField("Name", fieldName))
	}
	b.WriteString(m.renderField("Email", fieldEmail))
	b.WriteString(m.renderField("Password", fieldPassword))
	b.WriteString("\n")

	submitLabel := "Sign in"
	toggleLabel := "Need an account? Register"
	if m.registering {
		submitLabel = "Register"
		toggleLabel = "Have an account? Sign in"
	}
	if m.submitting {
		submitLabel = "Working…"
	}

	if m.focus == fieldSubmit {
		b.WriteString(m.theme.ButtonActive.Render(submitLabel))
	} else {
		b.WriteString(m.theme.ButtonInactive.Render(submitLabel))
	}
	b.WriteString("  ")
	if m.focus == fieldToggle {
		b.WriteString(m.theme.ButtonActive.Render(toggleLabel))
	} else {
		b.WriteString(m.theme.FormHint.Render(toggleLabel))
	}

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.ErrorTitle.Render("✗ " + m.errMsg))
	}

	box := m.theme.FormBox.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (m Model) renderField(label string, field int) string {
	style := m.theme.FormBlurred
	if m.focus == field {
		style = m.theme.FormFocused
	}
	return style.Render(label) + "\n" + m.inputs[field].View() + "\n"
}

// Submitting reports whether a submit is outstanding.
func (m Model) Submitting() bool {
	return m.submitting
}

// Registering reports whether the form is in registration mode.
func (m Model) Registering() bool {
	return m.registering
}
