// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides cancellable delayed execution keyed by named
// slots. The conversation controller leans on this for its composing
// pause, typewriter ticks, and post-send history refresh; scheduling
// into an occupied slot replaces the pending task so at most one task
// per slot is ever live.
package tasks

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SCHEDULER INTERFACE
// =============================================================================

// Handle identifies a scheduled task and allows targeted cancellation.
type Handle struct {
	Slot string
	ID   string
}

// Scheduler runs functions after a delay. Implementations must guarantee
// that Cancel and Schedule on the same slot never let a superseded task
// fire afterwards.
type Scheduler interface {
	// Schedule arranges for fn to run after d. Any task already pending
	// in the same slot is cancelled first.
	Schedule(slot string, d time.Duration, fn func()) Handle

	// Cancel drops the pending task in the slot, if any. Returns true
	// when something was cancelled.
	Cancel(slot string) bool

	// Stop cancels every pending task. The scheduler is still usable
	// afterwards.
	Stop()
}

// =============================================================================
// TIMER SCHEDULER
// =============================================================================

type timerEntry struct {
	id    string
	timer *time.Timer
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu      sync.Mutex
	pending map[string]*timerEntry
}

// NewTimerScheduler creates a ready-to-use TimerScheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{pending: make(map[string]*timerEntry)}
}

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(slot string, d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.pending[slot]; ok {
		prev.timer.Stop()
	}

	id := uuid.NewString()
	entry := &timerEntry{id: id}
	entry.timer = time.AfterFunc(d, func() {
		// A fired task must only run if it is still the slot's current
		// occupant; AfterFunc may race a Schedule that replaced it.
		s.mu.Lock()
		cur, ok := s.pending[slot]
		if !ok || cur.id != id {
			s.mu.Unlock()
			return
		}
		delete(s.pending, slot)
		s.mu.Unlock()

		fn()
	})
	s.pending[slot] = entry

	return Handle{Slot: slot, ID: id}
}

// Cancel implements Scheduler.
func (s *TimerScheduler) Cancel(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[slot]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(s.pending, slot)
	return true
}

// Stop implements Scheduler.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for slot, entry := range s.pending {
		entry.timer.Stop()
		delete(s.pending, slot)
	}
}

// =============================================================================
// MANUAL SCHEDULER
// =============================================================================

type manualEntry struct {
	id  string
	due time.Duration
	fn  func()
}

// ManualScheduler is a deterministic Scheduler for tests. Time only
// moves when Advance is called; due tasks run synchronously on the
// calling goroutine in due-time order.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending map[string]*manualEntry
}

// NewManualScheduler creates a ManualScheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[string]*manualEntry)}
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(slot string, d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.pending[slot] = &manualEntry{id: id, due: s.now + d, fn: fn}
	return Handle{Slot: slot, ID: id}
}

// Cancel implements Scheduler.
func (s *ManualScheduler) Cancel(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[slot]; !ok {
		return false
	}
	delete(s.pending, slot)
	return true
}

// Stop implements Scheduler.
func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]*manualEntry)
}

// Pending reports whether the slot holds a task.
func (s *ManualScheduler) Pending(slot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[slot]
	return ok
}

// Advance moves the clock forward and runs every task that becomes due,
// in due-time order. The clock sits at each task's due time while it
// runs, so reschedules issued by a task chain from its logical fire
// time and a self-rescheduling task progresses one tick per interval
// as it would under real timers. The clock lands on the window end.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	deadline := s.now + d
	s.mu.Unlock()

	for {
		fn, due, ok := s.popDue(deadline)
		if !ok {
			break
		}
		s.mu.Lock()
		s.now = due
		s.mu.Unlock()
		fn()
	}

	s.mu.Lock()
	if s.now < deadline {
		s.now = deadline
	}
	s.mu.Unlock()
}

// popDue removes and returns the earliest task due at or before the
// deadline, along with its due time.
func (s *ManualScheduler) popDue(deadline time.Duration) (func(), time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		bestSlot string
		best     *manualEntry
	)
	for slot, entry := range s.pending {
		if entry.due > deadline {
			continue
		}
		if best == nil || entry.due < best.due {
			bestSlot, best = slot, entry
		}
	}
	if best == nil {
		return nil, 0, false
	}
	delete(s.pending, bestSlot)
	return best.fn, best.due, true
}
