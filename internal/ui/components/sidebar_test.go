// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatin-tui/internal/model"
)

func sampleGroups() []model.BucketGroup {
	return []model.BucketGroup{
		{
			Bucket: model.BucketToday,
			Label:  "Hari Ini",
			Entries: []model.HistoryEntry{
				{ID: "a", Title: "gizi anak", Bucket: model.BucketToday},
			},
		},
		{
			Bucket: model.BucketOlder,
			Label:  "Lebih Lama",
			Entries: []model.HistoryEntry{
				{ID: "b", Title: "imunisasi dasar", Bucket: model.BucketOlder},
				{ID: "c", Title: "stunting", Bucket: model.BucketOlder},
			},
		},
	}
}

func TestSidebar_CursorAndSelection(t *testing.T) {
	s := NewSidebar()
	assert.Nil(t, s.Selected())

	s.SetGroups(sampleGroups())

	require.NotNil(t, s.Selected())
	assert.Equal(t, "a", s.Selected().ID)

	// The cursor walks the flattened list across bucket boundaries.
	s.CursorDown()
	assert.Equal(t, "b", s.Selected().ID)
	s.CursorDown()
	assert.Equal(t, "c", s.Selected().ID)
	s.CursorDown()
	assert.Equal(t, "c", s.Selected().ID, "cursor clamps at the end")

	s.CursorUp()
	s.CursorUp()
	s.CursorUp()
	assert.Equal(t, "a", s.Selected().ID, "cursor clamps at the start")
}

func TestSidebar_SetGroupsClampsCursor(t *testing.T) {
	s := NewSidebar()
	s.SetGroups(sampleGroups())
	s.CursorDown()
	s.CursorDown()

	// History shrinks underneath the cursor.
	s.SetGroups(sampleGroups()[:1])
	require.NotNil(t, s.Selected())
	assert.Equal(t, "a", s.Selected().ID)

	s.SetGroups(nil)
	assert.Nil(t, s.Selected())
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "pendek", truncateTitle("pendek", 10))
	got := truncateTitle("judul yang sangat panjang sekali", 10)
	assert.LessOrEqual(t, len([]rune(got)), 11)
	assert.Contains(t, got, "…")
}
