// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/jeranaias/chatin-tui/internal/model"
)

// MemoryProvider is an in-process Provider for tests and offline
// development. Accounts live only as long as the process.
type MemoryProvider struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount // keyed by email
	tokens   map[string]string         // token -> email
	nextUID  int
}

type memoryAccount struct {
	uid         string
	password    string
	displayName string
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]*memoryAccount),
		tokens:   make(map[string]string),
	}
}

// SignIn implements Provider.
func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok || acct.password != password {
		return nil, ErrInvalidCredentials
	}
	return p.issueLocked(email, acct), nil
}

// SignUp implements Provider.
func (p *MemoryProvider) SignUp(ctx context.Context, email, password, displayName string) (*Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return nil, ErrEmailInUse
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	p.nextUID++
	acct := &memoryAccount{
		uid:         fmt.Sprintf("uid_%d", p.nextUID),
		password:    password,
		displayName: displayName,
	}
	p.accounts[email] = acct
	return p.issueLocked(email, acct), nil
}

// Resolve implements Provider.
func (p *MemoryProvider) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.tokens[token]
	if !ok {
		return nil, ErrTokenExpired
	}
	acct := p.accounts[email]
	return &model.Identity{
		UID:         acct.uid,
		Email:       email,
		DisplayName: acct.displayName,
	}, nil
}

// SignOut implements Provider.
func (p *MemoryProvider) SignOut(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, token)
	return nil
}

// ExpireToken invalidates a token without a sign-out; tests use this to
// simulate expiry between restarts.
func (p *MemoryProvider) ExpireToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, token)
}

func (p *MemoryProvider) issueLocked(email string, acct *memoryAccount) *Credentials {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	token := "tok_" + hex.EncodeToString(buf)
	p.tokens[token] = email

	return &Credentials{
		Identity: model.Identity{
			UID:         acct.uid,
			Email:       email,
			DisplayName: acct.displayName,
		},
		Token: token,
	}
}
