// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package observability

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromZap_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.Debug("history skipped", "reason", "guest")
	log.Info("chat adopted", "chat_id", "abc123")
	log.Error("fetch failed", "status", 500)

	if logs.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", logs.Len())
	}

	entry := logs.All()[1]
	if entry.Message != "chat adopted" {
		t.Errorf("message = %q", entry.Message)
	}
	fields := entry.ContextMap()
	if fields["chat_id"] != "abc123" {
		t.Errorf("chat_id field = %v", fields["chat_id"])
	}
}

func TestFromZap_With(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("user_id", "u1")

	log.Info("refresh scheduled")

	if got := logs.All()[0].ContextMap()["user_id"]; got != "u1" {
		t.Errorf("user_id field = %v", got)
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, _, err := New(t.TempDir()+"/chatin.log", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
