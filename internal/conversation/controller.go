// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation drives the question-answer loop: optimistic
// sends, the composing pause, answer resolution, the typewriter
// reveal, and switching between saved sessions.
//
// Every asynchronous completion carries the transcript generation it
// was issued under and is discarded when the transcript has since been
// replaced, so an answer can never land in a session the user already
// left.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jeranaias/chatin-tui/internal/backend"
	"github.com/jeranaias/chatin-tui/internal/history"
	"github.com/jeranaias/chatin-tui/internal/model"
	"github.com/jeranaias/chatin-tui/internal/observability"
	"github.com/jeranaias/chatin-tui/internal/tasks"
)

// Bot-authored texts shown without a backend round trip.
const (
	// GreetingInitial opens the very first session after launch.
	GreetingInitial = "Hai! Ada yang bisa aku bantu?"

	// GreetingNewChat opens every session started from the new chat
	// action.
	GreetingNewChat = "Hai! Ada yang bisa ChatinAja bantu?"

	// ApologyText replaces the answer when the backend call fails.
	ApologyText = "Maaf, terjadi kesalahan saat menghubungi server. Silakan coba lagi nanti."
)

// Scheduler slot names. One pending task per slot; scheduling into an
// occupied slot supersedes it.
const (
	slotCompose        = "compose"
	slotReveal         = "reveal"
	slotHistoryRefresh = "history-refresh"
)

// Error variables for rejected operations.
var (
	// ErrEmptyMessage indicates a send with nothing but whitespace.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy indicates a send or switch while a turn is in flight.
	ErrBusy = errors.New("another request is in flight")

	// ErrNotSignedIn indicates a saved-session operation as a guest.
	ErrNotSignedIn = errors.New("not signed in")
)

// Phase is the controller's request lifecycle state.
type Phase int

const (
	// PhaseIdle accepts sends and session switches.
	PhaseIdle Phase = iota

	// PhaseComposing is the window between a send and its answer.
	PhaseComposing

	// PhaseLoading is a saved-session transcript load in flight.
	PhaseLoading
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseComposing:
		return "composing"
	case PhaseLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Timings are the controller's delays, injected from config.
type Timings struct {
	// ComposingDelay is the pause before the loading placeholder
	// appears and the backend call starts.
	ComposingDelay time.Duration

	// RevealInterval is the typewriter tick, one rune per tick.
	RevealInterval time.Duration

	// HistoryRefreshDelay is how long after a resolved send the
	// history re-read runs, covering the backend's write latency.
	HistoryRefreshDelay time.Duration
}

// Asker is the slice of the backend client the controller needs.
type Asker interface {
	Ask(ctx context.Context, req backend.AskRequest) (*backend.AskResponse, error)
	Messages(ctx context.Context, chatID, userID string) ([]backend.TranscriptMessage, error)
}

// AuthState is the read side of the auth session.
type AuthState interface {
	Current() *model.Identity
}

// revealState tracks the typewriter over one bot message. Display
// only; the transcript always holds the full content.
type revealState struct {
	msgID   string
	visible int
	total   int
}

// Controller owns the active transcript and the request lifecycle.
type Controller struct {
	mu      sync.Mutex
	client  Asker
	auth    AuthState
	history *history.Store
	sched   tasks.Scheduler
	timings Timings
	log     observability.Logger

	session model.Session
	phase   Phase
	reveal  revealState
	lastUID string

	now      func() time.Time
	spawn    func(func())
	notifyFn func()
}

// NewController creates a controller with the initial greeting already
// in the transcript.
func NewController(client Asker, auth AuthState, hist *history.Store, sched tasks.Scheduler, timings Timings, log observability.Logger) *Controller {
	if log == nil {
		log = observability.Nop()
	}
	c := &Controller{
		client:   client,
		auth:     auth,
		history:  hist,
		sched:    sched,
		timings:  timings,
		log:      log,
		now:      time.Now,
		spawn:    func(fn func()) { go fn() },
		notifyFn: func() {},
	}
	c.session.Append(model.NewMessage(model.RoleBot, GreetingInitial, c.now()))
	return c
}

// WithClock overrides the wall clock; tests use this.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// WithSpawn overrides how background work runs; tests run it inline.
func (c *Controller) WithSpawn(spawn func(func())) *Controller {
	c.spawn = spawn
	return c
}

// WithNotify sets the callback invoked after every observable state
// change. The TUI points this at its program's Send.
func (c *Controller) WithNotify(fn func()) *Controller {
	c.notifyFn = fn
	return c
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, c.session.Len())
	copy(out, c.session.Messages)
	return out
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// ChatID returns the backend session id, empty until the backend has
// persisted a turn for a signed-in user.
func (c *Controller) ChatID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

// History returns the current saved-session groups for the sidebar.
func (c *Controller) History() []model.BucketGroup {
	return c.history.Groups()
}

// Revealing reports whether a typewriter reveal is in progress.
func (c *Controller) Revealing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reveal.msgID != "" && c.reveal.visible < c.reveal.total
}

// VisibleContent returns the message content as it should render right
// now: a rune prefix for the message under reveal, full content for
// everything else.
func (c *Controller) VisibleContent(m model.Message) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.ID != c.reveal.msgID || c.reveal.visible >= c.reveal.total {
		return m.Content
	}
	runes := []rune(m.Content)
	if c.reveal.visible > len(runes) {
		return m.Content
	}
	return string(runes[:c.reveal.visible])
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start reveals the initial greeting. Called once the UI is ready to
// render ticks.
func (c *Controller) Start() {
	c.mu.Lock()
	greeting, ok := c.session.Last()
	c.mu.Unlock()
	if ok {
		c.beginReveal(greeting)
	}
}

// Shutdown cancels all pending work.
func (c *Controller) Shutdown() {
	c.sched.Stop()
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage submits a question. The user message lands in the
// transcript immediately; the placeholder, backend call, answer, and
// history refresh follow asynchronously. Returns ErrEmptyMessage for
// whitespace-only input and ErrBusy while a previous turn or a
// transcript load is still in flight.
func (c *Controller) SendMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = PhaseComposing
	c.session.Append(model.NewMessage(model.RoleUser, text, c.now()))
	gen := c.session.Generation
	chatID := c.session.ID
	c.mu.Unlock()

	var userID string
	if id := c.auth.Current(); id != nil {
		userID = id.UID
	}

	c.notifyFn()
	c.log.Debug("send accepted", "chars", len(text), "chat_id", chatID)

	c.sched.Schedule(slotCompose, c.timings.ComposingDelay, func() {
		c.beginAsk(gen, text, userID, chatID)
	})
	return nil
}

// beginAsk appends the loading placeholder and starts the backend
// call. Runs when the composing pause elapses.
func (c *Controller) beginAsk(gen uint64, text, userID, chatID string) {
	c.mu.Lock()
	if c.session.Generation != gen {
		c.mu.Unlock()
		return
	}
	c.session.Append(model.NewPendingMessage(c.now()))
	c.mu.Unlock()
	c.notifyFn()

	c.spawn(func() {
		resp, err := c.client.Ask(context.Background(), backend.AskRequest{
			UserMessage:    text,
			UserID:         userID,
			ChatID:         chatID,
			FormatResponse: true,
		})
		c.resolveAsk(gen, userID, resp, err)
	})
}

// resolveAsk lands the answer or the apology. A completion whose
// generation no longer matches is dropped without touching anything.
// userID is the identity the request was issued under.
func (c *Controller) resolveAsk(gen uint64, userID string, resp *backend.AskResponse, err error) {
	c.mu.Lock()
	if c.session.Generation != gen {
		c.mu.Unlock()
		c.log.Debug("stale answer discarded")
		return
	}

	c.session.RemovePending()

	var bot model.Message
	if err != nil {
		c.log.Error("ask failed", "error", err)
		bot = model.NewMessage(model.RoleBot, ApologyText, c.now())
	} else {
		bot = model.NewMessage(model.RoleBot, resp.Response, c.now())
		// First persisted turn of a signed-in session names the chat;
		// a guest turn never adopts one.
		if userID != "" && resp.ChatID != "" && c.session.ID == "" {
			c.session.ID = resp.ChatID
			c.log.Info("chat adopted", "chat_id", resp.ChatID)
		}
	}
	c.session.Append(bot)
	c.phase = PhaseIdle
	signedIn := c.lastUID != ""
	c.mu.Unlock()

	c.log.Debug("answer landed", "preview", bot.Preview(40))

	c.notifyFn()
	c.beginReveal(bot)

	// The backend persists the turn after answering, so the history
	// re-read waits rather than racing it.
	if err == nil && signedIn {
		c.sched.Schedule(slotHistoryRefresh, c.timings.HistoryRefreshDelay, func() {
			c.spawn(func() {
				if err := c.history.Fetch(context.Background()); err != nil {
					c.log.Debug("post-send history refresh failed", "error", err)
				}
			})
		})
	}
}

// =============================================================================
// SESSION SWITCHING
// =============================================================================

// StartNewChat abandons the current session and opens a fresh one with
// the new chat greeting. Any in-flight send or reveal is cancelled and
// its completion discarded.
func (c *Controller) StartNewChat() {
	c.sched.Cancel(slotCompose)
	c.sched.Cancel(slotReveal)

	c.mu.Lock()
	greeting := model.NewMessage(model.RoleBot, GreetingNewChat, c.now())
	c.session.Replace("", []model.Message{greeting})
	c.phase = PhaseIdle
	c.reveal = revealState{}
	c.mu.Unlock()

	c.notifyFn()
	c.beginReveal(greeting)
}

// ContinueChat loads a saved session's transcript and replaces the
// current one wholesale. Guests cannot have saved sessions; a load
// during an in-flight turn is rejected rather than queued.
func (c *Controller) ContinueChat(chatID string) error {
	id := c.auth.Current()
	if id == nil {
		return ErrNotSignedIn
	}

	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = PhaseLoading
	gen := c.session.Generation
	c.mu.Unlock()
	c.notifyFn()

	userID := id.UID
	c.spawn(func() {
		msgs, err := c.client.Messages(context.Background(), chatID, userID)
		c.resolveContinue(gen, chatID, msgs, err)
	})
	return nil
}

// resolveContinue lands a transcript load.
func (c *Controller) resolveContinue(gen uint64, chatID string, msgs []backend.TranscriptMessage, err error) {
	c.mu.Lock()
	if c.session.Generation != gen {
		c.mu.Unlock()
		c.log.Debug("stale transcript discarded", "chat_id", chatID)
		return
	}

	if err != nil {
		// The current transcript stays; the sidebar entry still works
		// on the next attempt.
		c.log.Error("transcript load failed", "chat_id", chatID, "error", err)
		c.phase = PhaseIdle
		c.mu.Unlock()
		c.notifyFn()
		return
	}

	c.session.Replace(chatID, transcriptToMessages(msgs))
	c.phase = PhaseIdle
	c.reveal = revealState{}
	c.mu.Unlock()

	c.sched.Cancel(slotReveal)
	c.log.Info("chat continued", "chat_id", chatID, "messages", len(msgs))
	c.notifyFn()
}

// transcriptToMessages maps stored transcript roles onto display
// roles. Anything the backend does not mark as the user renders as the
// bot.
func transcriptToMessages(in []backend.TranscriptMessage) []model.Message {
	out := make([]model.Message, 0, len(in))
	for _, tm := range in {
		role := model.RoleBot
		if tm.Role == "user" {
			role = model.RoleUser
		}
		m := model.NewMessage(role, tm.Content, time.Time{})
		m.Timestamp = displayTimestamp(tm.Timestamp)
		out = append(out, m)
	}
	return out
}

// displayTimestamp renders a stored timestamp as wall clock time,
// falling back to the raw value when it does not parse.
func displayTimestamp(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.ClockTime(t.Local())
		}
	}
	return raw
}

// =============================================================================
// HISTORY
// =============================================================================

// RefreshHistory requests an opportunistic history refresh; bursts are
// collapsed by the store's rate limiter.
func (c *Controller) RefreshHistory() {
	c.spawn(func() {
		if err := c.history.TryFetch(context.Background()); err != nil && !errors.Is(err, history.ErrThrottled) {
			c.log.Debug("history refresh failed", "error", err)
		}
	})
}

// =============================================================================
// AUTH TRANSITIONS
// =============================================================================

// HandleAuthChange is the auth session observer. Sign-in binds the
// history store to the user and fetches; sign-out clears history and
// resets to a fresh session so the next guest sees nothing of the
// previous user.
func (c *Controller) HandleAuthChange(id *model.Identity) {
	c.mu.Lock()
	prev := c.lastUID
	uid := ""
	if id != nil {
		uid = id.UID
	}
	c.lastUID = uid
	c.mu.Unlock()

	if uid != "" {
		c.log.Info("signed in", "uid", uid)
		c.history.SetUser(uid)
		c.spawn(func() {
			if err := c.history.Fetch(context.Background()); err != nil {
				c.log.Debug("initial history fetch failed", "error", err)
			}
		})
		c.notifyFn()
		return
	}

	c.history.Clear()
	if prev != "" {
		c.log.Info("signed out")
		c.StartNewChat()
	}
	c.notifyFn()
}

// =============================================================================
// TYPEWRITER REVEAL
// =============================================================================

// beginReveal starts the typewriter over a bot message. A reveal
// already ticking is superseded; its message renders fully from then
// on.
func (c *Controller) beginReveal(m model.Message) {
	total := utf8.RuneCountInString(m.Content)
	if m.Role != model.RoleBot || total == 0 {
		return
	}

	c.mu.Lock()
	c.reveal = revealState{msgID: m.ID, visible: 0, total: total}
	c.mu.Unlock()

	c.sched.Schedule(slotReveal, c.timings.RevealInterval, func() {
		c.revealTick(m.ID)
	})
}

// revealTick advances the reveal one rune and reschedules until the
// message is fully visible.
func (c *Controller) revealTick(msgID string) {
	c.mu.Lock()
	if c.reveal.msgID != msgID {
		c.mu.Unlock()
		return
	}
	c.reveal.visible++
	done := c.reveal.visible >= c.reveal.total
	if done {
		c.reveal = revealState{}
	}
	c.mu.Unlock()

	c.notifyFn()
	if !done {
		c.sched.Schedule(slotReveal, c.timings.RevealInterval, func() {
			c.revealTick(msgID)
		})
	}
}
