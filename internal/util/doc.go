// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the chatin client:
// atomic file writes for locally cached state and rune-safe string
// handling for sidebar and transcript rendering.
package util
