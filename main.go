// chatin TUI - A terminal client for the ChatinAja question answering service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/jeranaias/chatin-tui/internal/auth"
	"github.com/jeranaias/chatin-tui/internal/backend"
	"github.com/jeranaias/chatin-tui/internal/config"
	"github.com/jeranaias/chatin-tui/internal/conversation"
	"github.com/jeranaias/chatin-tui/internal/history"
	"github.com/jeranaias/chatin-tui/internal/observability"
	"github.com/jeranaias/chatin-tui/internal/tasks"
	"github.com/jeranaias/chatin-tui/internal/ui"
	"github.com/jeranaias/chatin-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatin: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env in the working directory seeds CHATIN_* overrides; its
	// absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	log, flush, err := observability.New(logPath, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer flush()
	log.Info("starting chatin", "version", Version, "commit", GitCommit, "backend", cfg.Backend.BaseURL)

	client := backend.New(cfg.Backend.BaseURL, log.With("component", "backend")).
		WithTimeout(cfg.BackendTimeout())

	provider := auth.NewIdentityToolkitProvider(cfg.Auth.ProviderURL, cfg.Auth.APIKey, log.With("component", "auth"))

	cachePath := ""
	if cfg.Auth.CacheToken {
		cachePath, err = config.TokenCachePath()
		if err != nil {
			return err
		}
	}
	session := auth.NewSession(provider, cachePath, log.With("component", "session"))

	store := history.NewStore(client, log.With("component", "history"))

	sched := tasks.NewTimerScheduler()
	defer sched.Stop()

	ctrl := conversation.NewController(client, session, store, sched, conversation.Timings{
		ComposingDelay:      cfg.ComposingDelay(),
		RevealInterval:      cfg.RevealInterval(),
		HistoryRefreshDelay: cfg.HistoryRefreshDelay(),
	}, log.With("component", "conversation"))

	session.Subscribe(ctrl.HandleAuthChange)

	app := ui.NewApp(session, ctrl, cfg.UI.NarrowWidth, log.With("component", "ui"))
	p := tea.NewProgram(app, tea.WithAltScreen())

	// The controller's observers run off the Bubble Tea loop; Send
	// pumps their changes back in as messages.
	ctrl.WithNotify(func() { p.Send(chat.StateChangedMsg{}) })
	store.OnChange(func() { p.Send(chat.StateChangedMsg{}) })

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}
