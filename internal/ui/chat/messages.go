// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatin-tui/internal/ui/components"
)

// StateChangedMsg is pumped into the program whenever the controller's
// observable state changes; the view re-reads its snapshot.
type StateChangedMsg struct{}

// ShowToastMsg asks the app shell to display a toast.
type ShowToastMsg struct {
	Toast components.Toast
}

// SignOutRequestMsg asks the app shell to end the session.
type SignOutRequestMsg struct{}

func showToast(t components.Toast) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Toast: t} }
}
