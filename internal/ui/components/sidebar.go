// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/chatin-tui/internal/model"
	"github.com/jeranaias/chatin-tui/internal/ui/styles"
	"github.com/jeranaias/chatin-tui/internal/util"
)

// SidebarWidth is the rendered width of the history sidebar.
const SidebarWidth = 28

// Sidebar renders the saved-session list grouped by recency and tracks
// the keyboard cursor over the flattened entry list.
type Sidebar struct {
	Open   bool
	cursor int
	groups []model.BucketGroup
}

// NewSidebar creates a closed sidebar.
func NewSidebar() *Sidebar {
	return &Sidebar{}
}

// SetGroups replaces the rendered history and clamps the cursor.
func (s *Sidebar) SetGroups(groups []model.BucketGroup) {
	s.groups = groups
	if s.cursor >= s.entryCount() {
		s.cursor = s.entryCount() - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Toggle flips the sidebar open state.
func (s *Sidebar) Toggle() {
	s.Open = !s.Open
}

// CursorUp moves the selection up one entry.
func (s *Sidebar) CursorUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// CursorDown moves the selection down one entry.
func (s *Sidebar) CursorDown() {
	if s.cursor < s.entryCount()-1 {
		s.cursor++
	}
}

// Selected returns the entry under the cursor, or nil when the list is
// empty.
func (s *Sidebar) Selected() *model.HistoryEntry {
	i := 0
	for _, g := range s.groups {
		for _, e := range g.Entries {
			if i == s.cursor {
				entry := e
				return &entry
			}
			i++
		}
	}
	return nil
}

func (s *Sidebar) entryCount() int {
	n := 0
	for _, g := range s.groups {
		n += len(g.Entries)
	}
	return n
}

// View renders the sidebar at the given height.
func (s *Sidebar) View(theme *styles.Theme, height int) string {
	if !s.Open {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.SidebarTitle.Render("Riwayat Chat"))
	b.WriteString("\n\n")

	if len(s.groups) == 0 {
		b.WriteString(theme.SidebarEmpty.Render("Belum ada riwayat"))
	}

	i := 0
	for _, g := range s.groups {
		b.WriteString(theme.SidebarBucket.Render(g.Label))
		b.WriteString("\n")
		for _, e := range g.Entries {
			title := truncateTitle(e.Title, SidebarWidth-4)
			if i == s.cursor {
				// Pad so the highlight covers the full row.
				b.WriteString(theme.SidebarEntrySelect.Render("> " + util.PadRight(title, SidebarWidth-4)))
			} else {
				b.WriteString(theme.SidebarEntry.Render("  " + title))
			}
			b.WriteString("\n")
			i++
		}
		b.WriteString("\n")
	}

	return theme.Sidebar.
		Width(SidebarWidth).
		Height(height).
		Render(b.String())
}

// truncateTitle fits a session title into the sidebar column, ellipsis
// aware of wide runes.
func truncateTitle(title string, width int) string {
	if runewidth.StringWidth(title) <= width {
		return title
	}
	return runewidth.Truncate(title, width, "…")
}
