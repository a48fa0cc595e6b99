// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolkitServer(t *testing.T, handler http.HandlerFunc) *IdentityToolkitProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewIdentityToolkitProvider(srv.URL, "test-key", nil)
}

func TestIdentityToolkit_SignIn(t *testing.T) {
	p := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req signInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.ReturnSecureToken)

		json.NewEncoder(w).Encode(authReply{
			LocalID:      "uid_1",
			Email:        req.Email,
			DisplayName:  "Budi",
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
		})
	})

	creds, err := p.SignIn(context.Background(), "budi@chat.in", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "uid_1", creds.Identity.UID)
	assert.Equal(t, "id-token", creds.Token)
	assert.Equal(t, "refresh-token", creds.RefreshToken)
}

func TestIdentityToolkit_Resolve(t *testing.T) {
	p := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:lookup", r.URL.Path)
		fmt.Fprint(w, `{"users":[{"localId":"uid_1","email":"budi@chat.in","displayName":"Budi"}]}`)
	})

	id, err := p.Resolve(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "uid_1", id.UID)
	assert.Equal(t, "Budi", id.DisplayName)
}

func TestIdentityToolkit_ResolveNoUsers(t *testing.T) {
	p := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"users":[]}`)
	})

	_, err := p.Resolve(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIdentityToolkit_ErrorMapping(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"EMAIL_NOT_FOUND", ErrInvalidCredentials},
		{"INVALID_PASSWORD", ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
		{"EMAIL_EXISTS", ErrEmailInUse},
		{"WEAK_PASSWORD : Password should be at least 6 characters", ErrWeakPassword},
		{"TOKEN_EXPIRED", ErrTokenExpired},
		{"INVALID_ID_TOKEN", ErrTokenExpired},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			p := newToolkitServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, `{"error":{"code":400,"message":%q}}`, tc.code)
			})

			_, err := p.SignIn(context.Background(), "x@y.z", "pw")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestIdentityToolkit_Unreachable(t *testing.T) {
	p := NewIdentityToolkitProvider("http://127.0.0.1:1", "k", nil)
	_, err := p.SignIn(context.Background(), "x@y.z", "pw")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
