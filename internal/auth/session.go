// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jeranaias/chatin-tui/internal/model"
	"github.com/jeranaias/chatin-tui/internal/observability"
	"github.com/jeranaias/chatin-tui/internal/util"
)

// Session is the single authority on the signed-in user. It starts in
// the loading state until the cached token (if any) has been resolved,
// then settles on an identity or nil for guest. Observers registered
// with Subscribe are notified on every transition, including the
// initial resolution.
type Session struct {
	mu        sync.Mutex
	provider  Provider
	log       observability.Logger
	cachePath string

	identity *model.Identity
	token    string
	loading  bool

	observers []func(*model.Identity)
}

// cachedSession is the on-disk token cache format.
type cachedSession struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// NewSession creates a Session over the given provider. cachePath may
// be empty to disable the on-disk token cache.
func NewSession(provider Provider, cachePath string, log observability.Logger) *Session {
	if log == nil {
		log = observability.Nop()
	}
	return &Session{
		provider:  provider,
		log:       log,
		cachePath: cachePath,
		loading:   true,
	}
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// Current returns the signed-in identity, or nil for a guest.
func (s *Session) Current() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Loading reports whether the initial token resolution is still in
// flight. UI surfaces that depend on auth show a spinner rather than
// redirecting while this is true.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Token returns the current session token, empty for a guest.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Subscribe registers an observer called on every auth transition with
// the new identity (nil on sign-out). Callbacks run outside the
// session lock.
func (s *Session) Subscribe(fn func(*model.Identity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start resolves the cached token and settles the initial auth state.
// It always leaves the session out of the loading state and always
// notifies observers, even when the result is guest.
func (s *Session) Start(ctx context.Context) {
	token, ok := s.readCache()
	if !ok {
		s.settle(nil, "")
		return
	}

	identity, err := s.provider.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			s.log.Info("cached session expired")
			s.clearCache()
		} else {
			s.log.Error("cached session resolution failed", "error", err)
		}
		s.settle(nil, "")
		return
	}

	s.log.Info("session restored", "uid", identity.UID)
	s.settle(identity, token)
}

// SignIn authenticates with email and password and transitions to the
// signed-in state.
func (s *Session) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	creds, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.adopt(creds)
	return s.Current(), nil
}

// SignUp registers a new account and transitions to the signed-in
// state.
func (s *Session) SignUp(ctx context.Context, email, password, displayName string) (*model.Identity, error) {
	creds, err := s.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	s.adopt(creds)
	return s.Current(), nil
}

// SignOut drops the session. Provider-side failures are logged but do
// not keep the local state signed in.
func (s *Session) SignOut(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token != "" {
		if err := s.provider.SignOut(ctx, token); err != nil {
			s.log.Error("provider sign-out failed", "error", err)
		}
	}
	s.clearCache()
	s.settle(nil, "")
}

// =============================================================================
// INTERNAL
// =============================================================================

func (s *Session) adopt(creds *Credentials) {
	s.writeCache(creds)
	id := creds.Identity
	s.settle(&id, creds.Token)
}

// settle commits a new auth state and notifies observers outside the
// lock.
func (s *Session) settle(identity *model.Identity, token string) {
	s.mu.Lock()
	s.identity = identity
	s.token = token
	s.loading = false
	observers := make([]func(*model.Identity), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(identity)
	}
}

func (s *Session) readCache() (string, bool) {
	if s.cachePath == "" {
		return "", false
	}
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		return "", false
	}
	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil || cached.Token == "" {
		return "", false
	}
	return cached.Token, true
}

func (s *Session) writeCache(creds *Credentials) {
	if s.cachePath == "" {
		return
	}
	data, err := json.Marshal(cachedSession{
		Token:        creds.Token,
		RefreshToken: creds.RefreshToken,
	})
	if err != nil {
		s.log.Error("failed to encode session cache", "error", err)
		return
	}
	if err := util.AtomicWriteFile(s.cachePath, data, 0600); err != nil {
		s.log.Error("failed to write session cache", "error", err)
	}
}

func (s *Session) clearCache() {
	if s.cachePath == "" {
		return
	}
	if err := os.Remove(s.cachePath); err != nil && !os.IsNotExist(err) {
		s.log.Error("failed to remove session cache", "error", err)
	}
}

// UserID returns the signed-in user's id, or an error for guests.
// Callers that must not issue user-scoped requests as guests use this
// instead of Current.
func (s *Session) UserID() (string, error) {
	id := s.Current()
	if id == nil {
		return "", fmt.Errorf("not signed in")
	}
	return id.UID, nil
}
