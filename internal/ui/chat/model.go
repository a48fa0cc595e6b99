// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view component for the TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/chatin-tui/internal/conversation"
	"github.com/jeranaias/chatin-tui/internal/ui/components"
	"github.com/jeranaias/chatin-tui/internal/ui/styles"
)

// Model is the Bubble Tea model for the conversation view.
type Model struct {
	ctrl  *conversation.Controller
	theme *styles.Theme

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	sidebar  *components.Sidebar

	// renderer formats finished bot answers as markdown. Messages
	// still revealing render plain; glamour runs once per message.
	renderer *glamour.TermRenderer

	// Dimensions
	width  int
	height int

	// narrowWidth is the threshold below which the sidebar auto-closes
	// on session switches.
	narrowWidth int

	ready bool
}

// New creates the conversation view.
func New(ctrl *conversation.Controller, theme *styles.Theme, narrowWidth int) Model {
	input := textinput.New()
	input.Placeholder = "Tanyakan sesuatu..."
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		ctrl:        ctrl,
		theme:       theme,
		input:       input,
		spin:        spin,
		sidebar:     components.NewSidebar(),
		renderer:    renderer,
		narrowWidth: narrowWidth,
	}
}

// SidebarOpen reports whether the history sidebar is showing.
func (m Model) SidebarOpen() bool {
	return m.sidebar.Open
}

// narrow reports whether the terminal is too narrow to keep the
// sidebar open across session switches.
func (m Model) narrow() bool {
	return m.width > 0 && m.width < m.narrowWidth
}
