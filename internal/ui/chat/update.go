// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatin-tui/internal/conversation"
	"github.com/jeranaias/chatin-tui/internal/ui/components"
)

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, textinput.Blink)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateChangedMsg:
		m.refreshContent()
		m.sidebar.SetGroups(m.ctrl.History())
		return m, nil

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

// resize lays the view out for a new terminal size.
func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	contentWidth := msg.Width
	if m.sidebar.Open {
		contentWidth -= components.SidebarWidth
	}

	// Header, input box, and status bar take four rows.
	vpHeight := msg.Height - 4
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = contentWidth - 4

	// Narrow terminals cannot fit the sidebar next to the transcript.
	if m.narrow() {
		m.sidebar.Open = false
	}

	m.refreshContent()
	return m
}

// handleKey routes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.sidebar.Open {
		switch msg.String() {
		case "up", "k":
			m.sidebar.CursorUp()
			return m, nil
		case "down", "j":
			m.sidebar.CursorDown()
			return m, nil
		case "enter":
			return m.continueSelected()
		case "esc", "ctrl+b":
			m.sidebar.Open = false
			return m.resize(tea.WindowSizeMsg{Width: m.width, Height: m.height}), nil
		}
	}

	switch msg.String() {
	case "enter":
		return m.send()

	case "ctrl+n":
		m.ctrl.StartNewChat()
		if m.narrow() {
			m.sidebar.Open = false
		}
		m.input.SetValue("")
		return m, nil

	case "ctrl+b":
		m.sidebar.Toggle()
		var cmd tea.Cmd
		if m.sidebar.Open {
			m.ctrl.RefreshHistory()
		}
		return m.resize(tea.WindowSizeMsg{Width: m.width, Height: m.height}), cmd

	case "ctrl+q":
		return m, func() tea.Msg { return SignOutRequestMsg{} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send submits the input box.
func (m Model) send() (Model, tea.Cmd) {
	err := m.ctrl.SendMessage(m.input.Value())
	switch {
	case err == nil:
		m.input.SetValue("")
		m.refreshContent()
		m.viewport.GotoBottom()
		return m, nil
	case errors.Is(err, conversation.ErrEmptyMessage):
		return m, nil
	case errors.Is(err, conversation.ErrBusy):
		return m, showToast(components.NewInfoToast("Tunggu jawaban sebelumnya selesai."))
	default:
		return m, showToast(components.NewErrorToast(err.Error()))
	}
}

// continueSelected opens the session under the sidebar cursor.
func (m Model) continueSelected() (Model, tea.Cmd) {
	entry := m.sidebar.Selected()
	if entry == nil {
		return m, nil
	}

	err := m.ctrl.ContinueChat(entry.ID)
	switch {
	case err == nil:
		if m.narrow() {
			m.sidebar.Open = false
			return m.resize(tea.WindowSizeMsg{Width: m.width, Height: m.height}), nil
		}
		return m, nil
	case errors.Is(err, conversation.ErrBusy):
		return m, showToast(components.NewInfoToast("Tunggu jawaban sebelumnya selesai."))
	default:
		return m, showToast(components.NewErrorToast("Gagal membuka riwayat chat."))
	}
}
