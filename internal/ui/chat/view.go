// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatin-tui/internal/conversation"
	"github.com/jeranaias/chatin-tui/internal/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "memuat..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.inputView(),
		m.statusView(),
	)

	if m.sidebar.Open {
		side := m.sidebar.View(m.theme, m.viewport.Height+2)
		return lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	}
	return main
}

// refreshContent rebuilds the viewport from the controller snapshot.
func (m *Model) refreshContent() {
	if !m.ready {
		return
	}

	wasAtBottom := m.viewport.AtBottom()

	var b strings.Builder
	for _, msg := range m.ctrl.Messages() {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())

	// Follow the conversation unless the user scrolled back.
	if wasAtBottom {
		m.viewport.GotoBottom()
	}
}

// renderMessage formats one transcript message.
func (m *Model) renderMessage(msg model.Message) string {
	if msg.IsPending {
		return m.theme.Pending.Render(m.spin.View() + " ChatinAja sedang mengetik...")
	}

	label := m.theme.BotLabel.Render(msg.Role.DisplayName())
	if msg.Role == model.RoleUser {
		label = m.theme.UserLabel.Render(msg.Role.DisplayName())
	}
	header := label
	if msg.Timestamp != "" {
		header += " " + m.theme.Timestamp.Render(msg.Timestamp)
	}

	content := m.ctrl.VisibleContent(msg)
	if msg.Role == model.RoleUser {
		return header + "\n" + m.theme.UserBubble.Render(content)
	}

	// Finished bot answers render as markdown; a message mid-reveal
	// stays plain so partial markup never flashes.
	if content == msg.Content && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}
	return header + "\n" + m.theme.BotBubble.Render(content)
}

// inputView renders the prompt box.
func (m Model) inputView() string {
	prompt := m.theme.InputPrompt.Render("> ")
	return m.theme.InputContainer.Width(m.viewport.Width - 2).Render(prompt + m.input.View())
}

// statusView renders the hint bar.
func (m Model) statusView() string {
	var state string
	switch m.ctrl.Phase() {
	case conversation.PhaseComposing:
		state = m.spin.View() + " menunggu jawaban"
	case conversation.PhaseLoading:
		state = m.spin.View() + " memuat riwayat"
	default:
		state = "siap"
	}

	hints := "enter kirim · ctrl+n chat baru · ctrl+b riwayat · ctrl+q keluar"
	bar := fmt.Sprintf("%s  ·  %s", state, hints)
	return m.theme.StatusBar.Width(m.viewport.Width).Render(bar)
}
