// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history caches the signed-in user's saved sessions, grouped
// by recency. The cache is replaced wholesale on every successful
// fetch and never merged, so it is only ever a consistent snapshot of
// one backend response. Fetch failures keep the previous snapshot.
package history

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/jeranaias/chatin-tui/internal/backend"
	"github.com/jeranaias/chatin-tui/internal/model"
	"github.com/jeranaias/chatin-tui/internal/observability"
)

// ErrNotSignedIn indicates a fetch was requested without a user.
var ErrNotSignedIn = errors.New("not signed in")

// ErrThrottled indicates an opportunistic refresh was dropped by the
// rate limiter.
var ErrThrottled = errors.New("history refresh throttled")

// Fetcher is the slice of the backend client the store needs.
type Fetcher interface {
	History(ctx context.Context, userID string) (*backend.HistoryResponse, error)
}

// Store holds the history snapshot for the current user.
type Store struct {
	mu      sync.Mutex
	fetcher Fetcher
	log     observability.Logger

	userID  string
	gen     uint64
	buckets model.HistoryBuckets

	// limiter drops opportunistic refreshes that arrive too fast;
	// explicit fetches bypass it.
	limiter *rate.Limiter

	onChange func()
}

// NewStore creates an empty Store over the given fetcher.
func NewStore(fetcher Fetcher, log observability.Logger) *Store {
	if log == nil {
		log = observability.Nop()
	}
	return &Store{
		fetcher: fetcher,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(1), 2), // 1 refresh/s, burst 2
	}
}

// OnChange registers the single callback invoked after every snapshot
// replacement or clear. It runs outside the store lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// Buckets returns a copy of the current snapshot.
func (s *Store) Buckets() model.HistoryBuckets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buckets.Clone()
}

// Groups returns the non-empty display groups of the current snapshot.
func (s *Store) Groups() []model.BucketGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buckets.Clone().Groups()
}

// UserID returns the user the snapshot belongs to.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// =============================================================================
// MUTATION
// =============================================================================

// SetUser switches the store to a new user and drops the old snapshot.
// In-flight fetches for the previous user are discarded when they
// complete.
func (s *Store) SetUser(userID string) {
	s.mu.Lock()
	if s.userID == userID {
		s.mu.Unlock()
		return
	}
	s.userID = userID
	s.gen++
	s.buckets = model.HistoryBuckets{}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Clear drops the snapshot and the user binding; sign-out path.
func (s *Store) Clear() {
	s.SetUser("")
}

// Fetch reads the user's history from the backend and atomically
// replaces the snapshot. The snapshot is only committed if the store
// still belongs to the same user as when the fetch started; failures
// leave the previous snapshot untouched.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	userID := s.userID
	gen := s.gen
	s.mu.Unlock()

	if userID == "" {
		return ErrNotSignedIn
	}

	resp, err := s.fetcher.History(ctx, userID)
	if err != nil {
		s.log.Error("history fetch failed", "user_id", userID, "error", err)
		return err
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.log.Debug("history fetch discarded", "user_id", userID)
		return nil
	}
	s.buckets = bucketsFromResponse(resp)
	fn := s.onChange
	total := s.buckets.Total()
	s.mu.Unlock()

	s.log.Debug("history replaced", "user_id", userID, "sessions", total)
	if fn != nil {
		fn()
	}
	return nil
}

// TryFetch is Fetch behind the rate limiter; opportunistic callers
// (view switches, window focus) use it so bursts collapse into at most
// one backend read per second.
func (s *Store) TryFetch(ctx context.Context) error {
	if !s.limiter.Allow() {
		return ErrThrottled
	}
	return s.Fetch(ctx)
}

// =============================================================================
// CONVERSION
// =============================================================================

func bucketsFromResponse(resp *backend.HistoryResponse) model.HistoryBuckets {
	return model.HistoryBuckets{
		Today:     entriesFrom(resp.Today, model.BucketToday),
		Yesterday: entriesFrom(resp.Yesterday, model.BucketYesterday),
		Last7Days: entriesFrom(resp.Last7Days, model.BucketLast7Days),
		Older:     entriesFrom(resp.Older, model.BucketOlder),
	}
}

func entriesFrom(in []backend.HistoryEntry, bucket model.Bucket) []model.HistoryEntry {
	out := make([]model.HistoryEntry, 0, len(in))
	for _, e := range in {
		out = append(out, model.HistoryEntry{
			ID:           e.ChatID,
			Title:        e.Title,
			MessageCount: e.MessageCount,
			Bucket:       bucket,
		})
	}
	return out
}
