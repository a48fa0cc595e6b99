// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages user identity for the chatin client. A Provider
// talks to the identity service; the Session wraps one provider and is
// the single mutable authority on who is signed in, observed by the
// conversation controller and the history store.
package auth

import (
	"context"
	"errors"

	"github.com/jeranaias/chatin-tui/internal/model"
)

// Error variables for common authentication failures.
var (
	// ErrInvalidCredentials indicates a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailInUse indicates registration with an existing email.
	ErrEmailInUse = errors.New("email already in use")

	// ErrWeakPassword indicates the provider rejected the password.
	ErrWeakPassword = errors.New("password too weak")

	// ErrTokenExpired indicates a cached token that no longer resolves.
	ErrTokenExpired = errors.New("session token expired")

	// ErrProviderUnavailable indicates the identity service could not
	// be reached.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// Credentials is the result of a successful provider exchange.
type Credentials struct {
	Identity model.Identity

	// Token is the ID token proving the session; cached on disk so
	// restarts resume the sign-in.
	Token string

	// RefreshToken renews the session when the ID token expires.
	RefreshToken string
}

// Provider is the identity service abstraction. The production
// implementation speaks the Identity Toolkit REST API; tests use
// MemoryProvider.
type Provider interface {
	// SignIn exchanges email and password for credentials.
	SignIn(ctx context.Context, email, password string) (*Credentials, error)

	// SignUp registers a new account and signs it in.
	SignUp(ctx context.Context, email, password, displayName string) (*Credentials, error)

	// Resolve validates a token and returns the identity behind it,
	// or ErrTokenExpired when it no longer proves a session.
	Resolve(ctx context.Context, token string) (*model.Identity, error)

	// SignOut invalidates the token server-side where supported.
	SignOut(ctx context.Context, token string) error
}
