// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// HISTORY BUCKETS
// =============================================================================

// Bucket is a recency category used to group history entries for display.
type Bucket string

const (
	BucketToday     Bucket = "today"
	BucketYesterday Bucket = "yesterday"
	BucketLast7Days Bucket = "last7days"
	BucketOlder     Bucket = "older"
)

// BucketOrder is the fixed display order of buckets, newest first.
var BucketOrder = []Bucket{BucketToday, BucketYesterday, BucketLast7Days, BucketOlder}

// Label returns the sidebar heading for a bucket.
func (b Bucket) Label() string {
	switch b {
	case BucketToday:
		return "Hari Ini"
	case BucketYesterday:
		return "Kemarin"
	case BucketLast7Days:
		return "7 Hari Terakhir"
	case BucketOlder:
		return "Lebih Lama"
	default:
		return string(b)
	}
}

// HistoryEntry is one past conversation as listed in the sidebar. A
// single tagged shape: every entry has an id and a title, MessageCount
// is zero when the backend omits it.
type HistoryEntry struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count,omitempty"`
	Bucket       Bucket `json:"-"`
}

// HistoryBuckets maps each recency bucket to its ordered entries. The
// whole value is replaced atomically on every successful fetch; buckets
// are never merged or updated independently.
type HistoryBuckets struct {
	Today     []HistoryEntry `json:"today"`
	Yesterday []HistoryEntry `json:"yesterday"`
	Last7Days []HistoryEntry `json:"last7days"`
	Older     []HistoryEntry `json:"older"`
}

// Entries returns the entries of one bucket.
func (h HistoryBuckets) Entries(b Bucket) []HistoryEntry {
	switch b {
	case BucketToday:
		return h.Today
	case BucketYesterday:
		return h.Yesterday
	case BucketLast7Days:
		return h.Last7Days
	case BucketOlder:
		return h.Older
	default:
		return nil
	}
}

// Total returns the number of entries across all buckets.
func (h HistoryBuckets) Total() int {
	return len(h.Today) + len(h.Yesterday) + len(h.Last7Days) + len(h.Older)
}

// IsEmpty reports whether no bucket holds any entry.
func (h HistoryBuckets) IsEmpty() bool {
	return h.Total() == 0
}

// Clone returns a deep copy, so callers can hand out snapshots without
// sharing the underlying slices.
func (h HistoryBuckets) Clone() HistoryBuckets {
	return HistoryBuckets{
		Today:     cloneEntries(h.Today),
		Yesterday: cloneEntries(h.Yesterday),
		Last7Days: cloneEntries(h.Last7Days),
		Older:     cloneEntries(h.Older),
	}
}

func cloneEntries(in []HistoryEntry) []HistoryEntry {
	if in == nil {
		return nil
	}
	out := make([]HistoryEntry, len(in))
	copy(out, in)
	return out
}

// =============================================================================
// DISPLAY GROUPING
// =============================================================================

// BucketGroup is a labeled, non-empty run of history entries in display
// order. The UI renders these directly; an empty history yields zero
// groups, which is the "no history yet" state.
type BucketGroup struct {
	Bucket  Bucket
	Label   string
	Entries []HistoryEntry
}

// Groups returns the non-empty buckets in display order, with entries
// tagged with their bucket.
func (h HistoryBuckets) Groups() []BucketGroup {
	var groups []BucketGroup
	for _, b := range BucketOrder {
		entries := h.Entries(b)
		if len(entries) == 0 {
			continue
		}
		tagged := make([]HistoryEntry, len(entries))
		for i, e := range entries {
			e.Bucket = b
			tagged[i] = e
		}
		groups = append(groups, BucketGroup{Bucket: b, Label: b.Label(), Entries: tagged})
	}
	return groups
}
