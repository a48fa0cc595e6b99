// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// IDENTITY TYPE
// =============================================================================

// Identity is an immutable snapshot of the signed-in user, produced by
// the identity provider on each auth transition. A nil *Identity means
// guest mode: chatting is allowed, history is not.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Label returns the best available display name: the profile name, the
// local part of the email, or "User".
func (id *Identity) Label() string {
	if id == nil {
		return ""
	}
	if id.DisplayName != "" {
		return id.DisplayName
	}
	if id.Email != "" {
		if at := strings.IndexByte(id.Email, '@'); at > 0 {
			return id.Email[:at]
		}
		return id.Email
	}
	return "User"
}
