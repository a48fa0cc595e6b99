// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the chatin TUI.
//
// This file implements non-blocking toasts. Only the newest toast is
// kept: a fresh notification replaces whatever is showing, so the
// corner never stacks stale messages.
package components

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/chatin-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindInfo is an informational toast
	ToastKindInfo ToastKind = iota
	// ToastKindError is an error toast
	ToastKindError
	// ToastKindSuccess is a success toast
	ToastKindSuccess
)

// ErrorToastDuration is the auto-dismiss duration for error toasts
// (longer to read).
const ErrorToastDuration = 5 * time.Second

// DefaultToastDuration is the auto-dismiss duration for everything else.
const DefaultToastDuration = 3 * time.Second

// Toast is one notification.
type Toast struct {
	ID       string
	Message  string
	Kind     ToastKind
	Duration time.Duration
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{ID: uuid.NewString(), Message: message, Kind: ToastKindError, Duration: ErrorToastDuration}
}

// NewInfoToast creates an informational toast.
func NewInfoToast(message string) Toast {
	return Toast{ID: uuid.NewString(), Message: message, Kind: ToastKindInfo, Duration: DefaultToastDuration}
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{ID: uuid.NewString(), Message: message, Kind: ToastKindSuccess, Duration: DefaultToastDuration}
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastExpiredMsg asks the manager to drop a toast whose timer ran out.
type ToastExpiredMsg struct {
	ID string
}

// ToastManager holds the single live toast.
type ToastManager struct {
	mu      sync.Mutex
	current *Toast
}

// NewToastManager creates an empty manager.
func NewToastManager() *ToastManager {
	return &ToastManager{}
}

// Show replaces the current toast and returns the expiry command for
// the Bubble Tea loop.
func (m *ToastManager) Show(t Toast) tea.Cmd {
	m.mu.Lock()
	m.current = &t
	m.mu.Unlock()

	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire drops the toast if it is still the one the timer was armed
// for. Expiry of a superseded toast is a no-op.
func (m *ToastManager) Expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.ID == id {
		m.current = nil
	}
}

// Dismiss drops the toast unconditionally.
func (m *ToastManager) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// Current returns the live toast, or nil.
func (m *ToastManager) Current() *Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	t := *m.current
	return &t
}

// View renders the toast, empty when nothing is showing.
func (m *ToastManager) View(theme *styles.Theme) string {
	t := m.Current()
	if t == nil {
		return ""
	}
	switch t.Kind {
	case ToastKindError:
		return theme.ToastError.Render(t.Message)
	case ToastKindSuccess:
		return theme.ToastSuccess.Render(t.Message)
	default:
		return theme.ToastInfo.Render(t.Message)
	}
}
