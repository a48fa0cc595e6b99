// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	Timestamp  lipgloss.Style
	Pending    lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar            lipgloss.Style
	SidebarTitle       lipgloss.Style
	SidebarBucket      lipgloss.Style
	SidebarEntry       lipgloss.Style
	SidebarEntrySelect lipgloss.Style
	SidebarEmpty       lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastError   lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style

	// ==========================================================================
	// AUTH FORM STYLES
	// ==========================================================================

	FormBox        lipgloss.Style
	FormTitle      lipgloss.Style
	FormLabel      lipgloss.Style
	FormFieldError lipgloss.Style
	FormButton     lipgloss.Style
	FormButtonSel  lipgloss.Style
	FormHint       lipgloss.Style

	// ==========================================================================
	// MISC
	// ==========================================================================

	Spinner   lipgloss.Style
	StatusBar lipgloss.Style
}

// NewTheme creates the default theme sized for the given terminal.
func NewTheme(width, height int) *Theme {
	t := &Theme{Width: width, Height: height}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.HeaderBrand = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.HeaderUser = lipgloss.NewStyle().Foreground(TextSecondary)

	t.UserBubble = lipgloss.NewStyle().
		Background(EmeraldDeep).
		Foreground(TextInverse).
		Padding(0, 1)
	t.BotBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)
	t.UserLabel = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	t.BotLabel = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Pending = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.Sidebar = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.SidebarBucket = lipgloss.NewStyle().Foreground(TextMuted).Bold(true)
	t.SidebarEntry = lipgloss.NewStyle().Foreground(TextSecondary)
	t.SidebarEntrySelect = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Emerald).
		Bold(true)
	t.SidebarEmpty = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.InputPlaceholder = lipgloss.NewStyle().Foreground(TextMuted)

	t.ToastError = lipgloss.NewStyle().
		Background(Rose).
		Foreground(TextInverse).
		Padding(0, 1).
		Bold(true)
	t.ToastInfo = lipgloss.NewStyle().
		Background(Sky).
		Foreground(TextInverse).
		Padding(0, 1)
	t.ToastSuccess = lipgloss.NewStyle().
		Background(Emerald).
		Foreground(TextInverse).
		Padding(0, 1)

	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Emerald).
		Padding(1, 2)
	t.FormTitle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.FormLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FormFieldError = lipgloss.NewStyle().Foreground(Rose)
	t.FormButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)
	t.FormButtonSel = lipgloss.NewStyle().
		Background(Emerald).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 2)
	t.FormHint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.Spinner = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextMuted).
		Padding(0, 1)

	return t
}

// Resize updates the stored terminal dimensions.
func (t *Theme) Resize(width, height int) {
	t.Width = width
	t.Height = height
}
