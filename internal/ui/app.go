// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui assembles the application shell: view routing between the
// landing screen, the auth forms, and the conversation, plus the header
// and toast display.
package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatin-tui/internal/auth"
	"github.com/jeranaias/chatin-tui/internal/conversation"
	"github.com/jeranaias/chatin-tui/internal/observability"
	"github.com/jeranaias/chatin-tui/internal/ui/authview"
	"github.com/jeranaias/chatin-tui/internal/ui/chat"
	"github.com/jeranaias/chatin-tui/internal/ui/components"
	"github.com/jeranaias/chatin-tui/internal/ui/styles"
)

// View identifies the active screen.
type View int

const (
	// ViewLanding is the welcome screen shown before a chat starts.
	ViewLanding View = iota
	// ViewChat is the conversation screen, reached through the guard.
	ViewChat
	// ViewLogin is the sign-in form.
	ViewLogin
	// ViewRegister is the account creation form.
	ViewRegister
)

// sessionReadyMsg reports that the cached-token resolution finished.
type sessionReadyMsg struct{}

// signedOutMsg reports a completed sign-out.
type signedOutMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	theme   *styles.Theme
	session *auth.Session
	ctrl    *conversation.Controller
	log     observability.Logger

	chat     chat.Model
	login    authview.Model
	register authview.Model
	toasts   *components.ToastManager
	spin     spinner.Model

	view View

	// pendingStart remembers a start-chat intent issued while the
	// cached session was still resolving.
	pendingStart bool

	width  int
	height int
}

// NewApp wires the shell together.
func NewApp(session *auth.Session, ctrl *conversation.Controller, narrowWidth int, log observability.Logger) App {
	if log == nil {
		log = observability.Nop()
	}
	theme := styles.NewTheme(0, 0)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	return App{
		theme:    theme,
		session:  session,
		ctrl:     ctrl,
		log:      log,
		chat:     chat.New(ctrl, theme, narrowWidth),
		login:    authview.New(authview.ModeLogin, session),
		register: authview.New(authview.ModeRegister, session),
		toasts:   components.NewToastManager(),
		spin:     spin,
		view:     ViewLanding,
	}
}

// Init implements tea.Model. The cached session resolves in the
// background so the first frame is never blocked on the network.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.spin.Tick,
		func() tea.Msg {
			a.session.Start(context.Background())
			return sessionReadyMsg{}
		},
		func() tea.Msg {
			a.ctrl.Start()
			return chat.StateChangedMsg{}
		},
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.theme.Resize(msg.Width, msg.Height)
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.ctrl.Shutdown()
			return a, tea.Quit
		case "enter":
			if a.view == ViewLanding {
				var cmd tea.Cmd
				a, cmd = a.startChat()
				return a, cmd
			}
		case "ctrl+l":
			if a.view == ViewLanding {
				a.view = ViewLogin
				a.login = authview.New(authview.ModeLogin, a.session)
				return a, a.login.Init()
			}
		case "esc":
			if a.view == ViewLogin || a.view == ViewRegister {
				a.view = ViewLanding
				return a, a.spin.Tick
			}
		}

	case sessionReadyMsg:
		if a.pendingStart {
			a.pendingStart = false
			var cmd tea.Cmd
			a, cmd = a.startChat()
			return a, cmd
		}
		return a, nil

	case chat.StateChangedMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd

	case chat.ShowToastMsg:
		return a, a.toasts.Show(msg.Toast)

	case components.ToastExpiredMsg:
		a.toasts.Expire(msg.ID)
		return a, nil

	case chat.SignOutRequestMsg:
		if a.session.Current() == nil {
			return a, a.toasts.Show(components.NewInfoToast("Kamu belum masuk."))
		}
		session := a.session
		return a, func() tea.Msg {
			session.SignOut(context.Background())
			return signedOutMsg{}
		}

	case signedOutMsg:
		a.view = ViewLanding
		return a, tea.Batch(
			a.toasts.Show(components.NewInfoToast("Berhasil keluar.")),
			a.spin.Tick,
		)

	case authview.SwitchModeMsg:
		if msg.Mode == authview.ModeRegister {
			a.view = ViewRegister
			a.register = authview.New(authview.ModeRegister, a.session)
			return a, a.register.Init()
		}
		a.view = ViewLogin
		a.login = authview.New(authview.ModeLogin, a.session)
		return a, a.login.Init()

	case authview.AuthSuccessMsg:
		a.view = ViewChat
		return a, tea.Batch(
			a.toasts.Show(components.NewSuccessToast("Hai, "+msg.Identity.Label()+"!")),
			a.chat.Init(),
		)

	case authview.AuthErrorMsg:
		cmd := a.toasts.Show(components.NewErrorToast(authErrorText(msg.Err)))
		var formCmd tea.Cmd
		if a.view == ViewRegister {
			a.register, formCmd = a.register.Update(msg)
		} else {
			a.login, formCmd = a.login.Update(msg)
		}
		return a, tea.Batch(cmd, formCmd)
	}

	// Everything else goes to the active view.
	var cmd tea.Cmd
	switch a.view {
	case ViewLogin:
		a.login, cmd = a.login.Update(msg)
	case ViewRegister:
		a.register, cmd = a.register.Update(msg)
	case ViewChat:
		a.chat, cmd = a.chat.Update(msg)
	default:
		a.spin, cmd = a.spin.Update(msg)
	}
	return a, cmd
}

// startChat applies the chat guard: wait out the initial session
// resolution, send guests to the login form with a single notification,
// let signed-in users through.
func (a App) startChat() (App, tea.Cmd) {
	if a.session.Loading() {
		a.pendingStart = true
		return a, a.spin.Tick
	}

	if a.session.Current() == nil {
		// One notification per redirect; never doubled when the
		// login form is already showing.
		if a.view == ViewLogin {
			return a, nil
		}
		a.view = ViewLogin
		a.login = authview.New(authview.ModeLogin, a.session)
		return a, tea.Batch(
			a.login.Init(),
			a.toasts.Show(components.NewInfoToast("Masuk untuk mulai chat.")),
		)
	}

	a.view = ViewChat
	return a, a.chat.Init()
}

// View implements tea.Model.
func (a App) View() string {
	var body string
	switch a.view {
	case ViewLogin:
		body = a.login.View(a.theme)
	case ViewRegister:
		body = a.register.View(a.theme)
	case ViewChat:
		body = a.chat.View()
	default:
		body = a.landingView()
	}

	out := lipgloss.JoinVertical(lipgloss.Left, a.headerView(), body)
	if toast := a.toasts.View(a.theme); toast != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, toast)
	}
	return out
}

// headerView renders the brand bar with the auth state.
func (a App) headerView() string {
	brand := a.theme.HeaderBrand.Render("ChatinAja")

	var who string
	switch {
	case a.session.Loading():
		who = a.theme.HeaderUser.Render("memuat sesi...")
	case a.session.Current() != nil:
		who = a.theme.HeaderUser.Render(a.session.Current().Label())
	default:
		who = a.theme.HeaderUser.Render("tamu")
	}

	gap := a.width - lipgloss.Width(brand) - lipgloss.Width(who) - 2
	if gap < 1 {
		gap = 1
	}
	return a.theme.Header.Width(a.width).Render(
		brand + lipgloss.NewStyle().Width(gap).Render("") + who,
	)
}

// authErrorText maps auth failures to the message the user sees.
func authErrorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Email atau kata sandi salah."
	case errors.Is(err, auth.ErrEmailInUse):
		return "Email sudah terdaftar."
	case errors.Is(err, auth.ErrWeakPassword):
		return "Kata sandi terlalu lemah."
	case errors.Is(err, auth.ErrProviderUnavailable):
		return "Tidak dapat terhubung ke server. Coba lagi nanti."
	default:
		return "Terjadi kesalahan. Silakan coba lagi."
	}
}
