// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the chatin
// client: messages and sessions, the bucketed chat history, and the
// identity snapshot owned by the auth session.
package model
