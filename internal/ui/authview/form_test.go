// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/chatin-tui/internal/auth"
)

func TestValidate_LoginEmptyFields(t *testing.T) {
	m := New(ModeLogin, auth.NewSession(auth.NewMemoryProvider(), "", nil))

	assert.False(t, m.Validate())
	assert.Equal(t, "Email wajib diisi", m.FieldError(fieldEmail))
	assert.Equal(t, "Kata sandi wajib diisi", m.FieldError(fieldPassword))
	assert.Empty(t, m.FieldError(fieldName), "login has no name field")
}

func TestValidate_ShortPassword(t *testing.T) {
	m := New(ModeLogin, auth.NewSession(auth.NewMemoryProvider(), "", nil))
	m.SetValue(fieldEmail, "budi@chat.in")
	m.SetValue(fieldPassword, "12345")

	assert.False(t, m.Validate())
	assert.Equal(t, "Kata sandi minimal 6 karakter", m.FieldError(fieldPassword))
}

func TestValidate_InvalidEmail(t *testing.T) {
	m := New(ModeLogin, auth.NewSession(auth.NewMemoryProvider(), "", nil))
	m.SetValue(fieldEmail, "bukan-email")
	m.SetValue(fieldPassword, "rahasia123")

	assert.False(t, m.Validate())
	assert.Equal(t, "Email tidak valid", m.FieldError(fieldEmail))
}

func TestValidate_RegisterMismatch(t *testing.T) {
	m := New(ModeRegister, auth.NewSession(auth.NewMemoryProvider(), "", nil))
	m.SetValue(fieldName, "Budi")
	m.SetValue(fieldEmail, "budi@chat.in")
	m.SetValue(fieldPassword, "rahasia123")
	m.SetValue(fieldConfirm, "rahasia124")

	assert.False(t, m.Validate())
	assert.Equal(t, "Kata sandi tidak sama", m.FieldError(fieldConfirm))
}

func TestValidate_RegisterRequiresName(t *testing.T) {
	m := New(ModeRegister, auth.NewSession(auth.NewMemoryProvider(), "", nil))
	m.SetValue(fieldEmail, "budi@chat.in")
	m.SetValue(fieldPassword, "rahasia123")
	m.SetValue(fieldConfirm, "rahasia123")

	assert.False(t, m.Validate())
	assert.Equal(t, "Nama wajib diisi", m.FieldError(fieldName))
}

func TestValidate_CleanForms(t *testing.T) {
	login := New(ModeLogin, auth.NewSession(auth.NewMemoryProvider(), "", nil))
	login.SetValue(fieldEmail, "budi@chat.in")
	login.SetValue(fieldPassword, "rahasia123")
	assert.True(t, login.Validate())

	reg := New(ModeRegister, auth.NewSession(auth.NewMemoryProvider(), "", nil))
	reg.SetValue(fieldName, "Budi")
	reg.SetValue(fieldEmail, "budi@chat.in")
	reg.SetValue(fieldPassword, "rahasia123")
	reg.SetValue(fieldConfirm, "rahasia123")
	assert.True(t, reg.Validate())
}
