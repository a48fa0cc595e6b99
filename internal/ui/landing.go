// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// landingView renders the welcome screen shown before a chat starts.
func (a App) landingView() string {
	brand := a.theme.FormTitle.Render("ChatinAja")
	tagline := a.theme.FormLabel.Render("Tanya apa saja, ChatinAja yang jawab.")

	var status string
	if a.pendingStart && a.session.Loading() {
		status = a.spin.View() + " " + a.theme.FormHint.Render("memuat sesi...")
	} else {
		status = a.theme.FormHint.Render("enter · mulai chat    ctrl+l · masuk    ctrl+c · keluar")
	}

	box := a.theme.FormBox.Render(lipgloss.JoinVertical(
		lipgloss.Center,
		brand,
		"",
		tagline,
		"",
		status,
	))

	if a.width > 0 && a.height > 2 {
		// The header takes the top rows.
		return lipgloss.Place(a.width, a.height-2, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
