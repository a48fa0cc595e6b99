// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jeranaias/chatin-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Kamu"
	case RoleBot:
		return "ChatinAja"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the visible transcript.
//
// Timestamp is display-formatted ("15:04"); the transcript is a
// presentation log, the backend keeps the canonical record. A pending
// message is the bot placeholder shown between the composing delay and
// the backend response; it has empty content until resolved.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	IsPending bool   `json:"is_pending,omitempty"`
}

// NewMessage creates a message with a generated ID and the given clock time.
func NewMessage(role Role, content string, at time.Time) Message {
	return Message{
		ID:        generateMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: ClockTime(at),
	}
}

// NewPendingMessage creates the empty bot placeholder shown while a
// backend call is in flight.
func NewPendingMessage(at time.Time) Message {
	m := NewMessage(RoleBot, "", at)
	m.IsPending = true
	return m
}

// Preview returns a one-line truncated preview of the message content.
func (m Message) Preview(maxLen int) string {
	return util.Truncate(util.SingleLine(m.Content), maxLen)
}

// IsEmpty reports whether the message has no content.
func (m Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// ClockTime formats a time the way the transcript displays it.
func ClockTime(t time.Time) string {
	return t.Format("15:04")
}

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
