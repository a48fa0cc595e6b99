// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package authview provides the login and registration forms.
package authview

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatin-tui/internal/auth"
	"github.com/jeranaias/chatin-tui/internal/model"
	"github.com/jeranaias/chatin-tui/internal/ui/styles"
)

// Mode selects which form is shown.
type Mode int

const (
	// ModeLogin is the email/password sign-in form.
	ModeLogin Mode = iota
	// ModeRegister is the account creation form.
	ModeRegister
)

// Field indices in form order.
const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldCount
)

// =============================================================================
// MESSAGES
// =============================================================================

// AuthSuccessMsg reports a completed sign-in or registration.
type AuthSuccessMsg struct {
	Identity *model.Identity
}

// AuthErrorMsg reports a failed auth attempt.
type AuthErrorMsg struct {
	Err error
}

// SwitchModeMsg asks the app to show the other form.
type SwitchModeMsg struct {
	Mode Mode
}

// =============================================================================
// FORM MODEL
// =============================================================================

// Model is the Bubble Tea model for the auth forms.
type Model struct {
	mode    Mode
	session *auth.Session

	inputs [fieldCount]textinput.Model
	focus  int

	// fieldErrs holds inline validation messages, keyed by field.
	fieldErrs [fieldCount]string

	submitting bool
}

// New creates a form in the given mode.
func New(mode Mode, session *auth.Session) Model {
	m := Model{mode: mode, session: session}

	name := textinput.New()
	name.Placeholder = "Nama"
	name.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "Kata sandi"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	confirm := textinput.New()
	confirm.Placeholder = "Ulangi kata sandi"
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'
	confirm.CharLimit = 128

	m.inputs = [fieldCount]textinput.Model{name, email, password, confirm}
	m.focus = m.firstField()
	m.inputs[m.focus].Focus()
	return m
}

// firstField returns the first visible field for the mode.
func (m Model) firstField() int {
	if m.mode == ModeRegister {
		return fieldName
	}
	return fieldEmail
}

// visible reports whether a field belongs to the current mode.
func (m Model) visible(field int) bool {
	switch field {
	case fieldName, fieldConfirm:
		return m.mode == ModeRegister
	default:
		return true
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.moveFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil
		case "enter":
			return m.submit()
		case "ctrl+r":
			if m.mode == ModeLogin {
				return m, func() tea.Msg { return SwitchModeMsg{Mode: ModeRegister} }
			}
			return m, func() tea.Msg { return SwitchModeMsg{Mode: ModeLogin} }
		}

	case AuthErrorMsg:
		m.submitting = false
		return m, nil

	case AuthSuccessMsg:
		m.submitting = false
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// moveFocus shifts focus to the next visible field, wrapping.
func (m *Model) moveFocus(dir int) {
	m.inputs[m.focus].Blur()
	for {
		m.focus = (m.focus + dir + fieldCount) % fieldCount
		if m.visible(m.focus) {
			break
		}
	}
	m.inputs[m.focus].Focus()
}

// submit validates and, when clean, runs the auth call as a command.
func (m Model) submit() (Model, tea.Cmd) {
	if !m.Validate() {
		return m, nil
	}

	m.submitting = true
	session := m.session
	mode := m.mode
	name := strings.TrimSpace(m.inputs[fieldName].Value())
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	return m, func() tea.Msg {
		var (
			id  *model.Identity
			err error
		)
		if mode == ModeRegister {
			id, err = session.SignUp(context.Background(), email, password, name)
		} else {
			id, err = session.SignIn(context.Background(), email, password)
		}
		if err != nil {
			return AuthErrorMsg{Err: err}
		}
		return AuthSuccessMsg{Identity: id}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate fills fieldErrs and reports whether the form is clean.
func (m *Model) Validate() bool {
	m.fieldErrs = [fieldCount]string{}
	ok := true

	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	if m.mode == ModeRegister && strings.TrimSpace(m.inputs[fieldName].Value()) == "" {
		m.fieldErrs[fieldName] = "Nama wajib diisi"
		ok = false
	}
	if email == "" {
		m.fieldErrs[fieldEmail] = "Email wajib diisi"
		ok = false
	} else if !strings.Contains(email, "@") {
		m.fieldErrs[fieldEmail] = "Email tidak valid"
		ok = false
	}
	if password == "" {
		m.fieldErrs[fieldPassword] = "Kata sandi wajib diisi"
		ok = false
	} else if len(password) < 6 {
		m.fieldErrs[fieldPassword] = "Kata sandi minimal 6 karakter"
		ok = false
	}
	if m.mode == ModeRegister && m.inputs[fieldConfirm].Value() != password {
		m.fieldErrs[fieldConfirm] = "Kata sandi tidak sama"
		ok = false
	}
	return ok
}

// FieldError returns the inline error for a field, empty when clean.
func (m Model) FieldError(field int) string {
	return m.fieldErrs[field]
}

// Submitting reports whether an auth call is in flight.
func (m Model) Submitting() bool {
	return m.submitting
}

// Mode returns the form mode.
func (m Model) Mode() Mode {
	return m.mode
}

// SetValue sets a field's text; tests use this.
func (m *Model) SetValue(field int, value string) {
	m.inputs[field].SetValue(value)
}

// =============================================================================
// VIEW
// =============================================================================

var fieldLabels = [fieldCount]string{"Nama", "Email", "Kata Sandi", "Ulangi Kata Sandi"}

// View implements tea.Model.
func (m Model) View(theme *styles.Theme) string {
	var b strings.Builder

	title := "Masuk ke ChatinAja"
	hint := "enter kirim · tab pindah · ctrl+r daftar akun baru"
	if m.mode == ModeRegister {
		title = "Daftar Akun ChatinAja"
		hint = "enter kirim · tab pindah · ctrl+r kembali ke masuk"
	}
	b.WriteString(theme.FormTitle.Render(title))
	b.WriteString("\n\n")

	for field := 0; field < fieldCount; field++ {
		if !m.visible(field) {
			continue
		}
		b.WriteString(theme.FormLabel.Render(fieldLabels[field]))
		b.WriteString("\n")
		b.WriteString(m.inputs[field].View())
		b.WriteString("\n")
		if msg := m.fieldErrs[field]; msg != "" {
			b.WriteString(theme.FormFieldError.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.submitting {
		b.WriteString(theme.FormHint.Render("Memproses..."))
	} else {
		b.WriteString(theme.FormHint.Render(hint))
	}

	box := theme.FormBox.Render(b.String())
	if theme.Width > 0 && theme.Height > 0 {
		return lipgloss.Place(theme.Width, theme.Height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
