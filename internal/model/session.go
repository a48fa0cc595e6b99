// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is one logical conversation. ID is empty until the backend
// acknowledges a turn for a signed-in user and mints a chat id; a
// session without an ID is unsaved. Exactly one session is active at a
// time, and switching sessions replaces the message slice wholesale.
//
// Generation increments on every session switch. In-flight requests
// carry the generation they were issued under; a completion whose
// generation no longer matches the active session is stale and must be
// discarded.
type Session struct {
	ID         string
	Messages   []Message
	Generation uint64
}

// Append adds a message to the transcript.
func (s *Session) Append(m Message) {
	s.Messages = append(s.Messages, m)
}

// Replace swaps in a whole new transcript and bumps the generation.
func (s *Session) Replace(id string, messages []Message) {
	s.ID = id
	s.Messages = messages
	s.Generation++
}

// RemovePending drops the pending bot placeholder, if present.
// Returns true when a placeholder was removed.
func (s *Session) RemovePending() bool {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsPending {
			s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// Last returns the most recent message and true, or a zero Message and
// false when the transcript is empty.
func (s *Session) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Len returns the number of messages in the transcript.
func (s *Session) Len() int {
	return len(s.Messages)
}

// IsSaved reports whether the backend has assigned this session an id.
func (s *Session) IsSaved() bool {
	return s.ID != ""
}
