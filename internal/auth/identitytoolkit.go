// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/chatin-tui/internal/model"
	"github.com/jeranaias/chatin-tui/internal/observability"
)

const (
	// identityTimeout bounds each identity provider request.
	identityTimeout = 30 * time.Second

	// maxIdentityResponse limits identity response bodies.
	maxIdentityResponse = 1 * 1024 * 1024 // 1MB
)

// IdentityToolkitProvider implements Provider against the Google
// Identity Toolkit REST API (the service behind Firebase Auth).
type IdentityToolkitProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        observability.Logger
}

// NewIdentityToolkitProvider creates a provider for the given endpoint
// root and web API key.
func NewIdentityToolkitProvider(baseURL, apiKey string, log observability.Logger) *IdentityToolkitProvider {
	if log == nil {
		log = observability.Nop()
	}
	return &IdentityToolkitProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: identityTimeout},
		log:        log,
	}
}

// WithHTTPClient swaps the underlying HTTP client; tests use this.
func (p *IdentityToolkitProvider) WithHTTPClient(hc *http.Client) *IdentityToolkitProvider {
	p.httpClient = hc
	return p
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signUpRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	DisplayName       string `json:"displayName,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type authReply struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupReply struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
	} `json:"users"`
}

type identityErrorReply struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// PROVIDER OPERATIONS
// =============================================================================

// SignIn implements Provider.
func (p *IdentityToolkitProvider) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	var reply authReply
	err := p.post(ctx, "accounts:signInWithPassword", signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &reply)
	if err != nil {
		return nil, err
	}
	return credentialsFromReply(reply), nil
}

// SignUp implements Provider.
func (p *IdentityToolkitProvider) SignUp(ctx context.Context, email, password, displayName string) (*Credentials, error) {
	var reply authReply
	err := p.post(ctx, "accounts:signUp", signUpRequest{
		Email:             email,
		Password:          password,
		DisplayName:       displayName,
		ReturnSecureToken: true,
	}, &reply)
	if err != nil {
		return nil, err
	}
	creds := credentialsFromReply(reply)
	if creds.Identity.DisplayName == "" {
		creds.Identity.DisplayName = displayName
	}
	return creds, nil
}

// Resolve implements Provider.
func (p *IdentityToolkitProvider) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	var reply lookupReply
	if err := p.post(ctx, "accounts:lookup", lookupRequest{IDToken: token}, &reply); err != nil {
		return nil, err
	}
	if len(reply.Users) == 0 {
		return nil, ErrTokenExpired
	}
	u := reply.Users[0]
	return &model.Identity{
		UID:         u.LocalID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.PhotoURL,
	}, nil
}

// SignOut implements Provider. The Identity Toolkit API has no token
// revocation endpoint for ID tokens; dropping the token client-side is
// the whole operation.
func (p *IdentityToolkitProvider) SignOut(ctx context.Context, token string) error {
	return nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (p *IdentityToolkitProvider) post(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/%s?key=%s", p.baseURL, method, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Error("identity request failed", "method", method, "error", err)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxIdentityResponse))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return mapIdentityError(respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// mapIdentityError converts the provider's error codes to sentinel
// errors the UI can present.
func mapIdentityError(body []byte) error {
	var reply identityErrorReply
	if err := json.Unmarshal(body, &reply); err != nil || reply.Error.Message == "" {
		return fmt.Errorf("%w: %s", ErrProviderUnavailable, string(body))
	}

	code := reply.Error.Message
	switch {
	case strings.HasPrefix(code, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(code, "INVALID_PASSWORD"),
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidCredentials
	case strings.HasPrefix(code, "EMAIL_EXISTS"):
		return ErrEmailInUse
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return ErrWeakPassword
	case strings.HasPrefix(code, "INVALID_ID_TOKEN"),
		strings.HasPrefix(code, "TOKEN_EXPIRED"),
		strings.HasPrefix(code, "USER_NOT_FOUND"):
		return ErrTokenExpired
	default:
		return fmt.Errorf("identity provider error: %s", code)
	}
}

func credentialsFromReply(r authReply) *Credentials {
	return &Credentials{
		Identity: model.Identity{
			UID:         r.LocalID,
			Email:       r.Email,
			DisplayName: r.DisplayName,
		},
		Token:        r.IDToken,
		RefreshToken: r.RefreshToken,
	}
}
