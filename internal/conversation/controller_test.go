// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatin-tui/internal/backend"
	"github.com/jeranaias/chatin-tui/internal/history"
	"github.com/jeranaias/chatin-tui/internal/model"
	"github.com/jeranaias/chatin-tui/internal/tasks"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

type fakeBackend struct {
	askResp  *backend.AskResponse
	askErr   error
	askCalls []backend.AskRequest
	onAsk    func()

	msgs    []backend.TranscriptMessage
	msgsErr error
}

func (f *fakeBackend) Ask(ctx context.Context, req backend.AskRequest) (*backend.AskResponse, error) {
	f.askCalls = append(f.askCalls, req)
	if f.onAsk != nil {
		f.onAsk()
	}
	if f.askErr != nil {
		return nil, f.askErr
	}
	return f.askResp, nil
}

func (f *fakeBackend) Messages(ctx context.Context, chatID, userID string) ([]backend.TranscriptMessage, error) {
	if f.msgsErr != nil {
		return nil, f.msgsErr
	}
	return f.msgs, nil
}

type fakeAuth struct {
	id *model.Identity
}

func (f *fakeAuth) Current() *model.Identity { return f.id }

type histFetcher struct {
	calls int
}

func (h *histFetcher) History(ctx context.Context, userID string) (*backend.HistoryResponse, error) {
	h.calls++
	return &backend.HistoryResponse{}, nil
}

type fixture struct {
	ctrl    *Controller
	be      *fakeBackend
	auth    *fakeAuth
	hist    *histFetcher
	sched   *tasks.ManualScheduler
	notifys int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		be:    &fakeBackend{askResp: &backend.AskResponse{Response: "Stunting adalah kondisi gagal tumbuh."}},
		auth:  &fakeAuth{},
		hist:  &histFetcher{},
		sched: tasks.NewManualScheduler(),
	}
	store := history.NewStore(fx.hist, nil)
	timings := Timings{
		ComposingDelay:      500 * time.Millisecond,
		RevealInterval:      5 * time.Millisecond,
		HistoryRefreshDelay: 1500 * time.Millisecond,
	}
	fx.ctrl = NewController(fx.be, fx.auth, store, fx.sched, timings, nil).
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 9, 41, 0, 0, time.UTC) }).
		WithSpawn(func(fn func()) { fn() }).
		WithNotify(func() { fx.notifys++ })
	return fx
}

func (fx *fixture) signIn(uid string) {
	fx.auth.id = &model.Identity{UID: uid, Email: uid + "@chat.in"}
	fx.ctrl.HandleAuthChange(fx.auth.id)
}

func lastMessage(t *testing.T, c *Controller) model.Message {
	t.Helper()
	msgs := c.Messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestController_InitialGreeting(t *testing.T) {
	fx := newFixture(t)
	msgs := fx.ctrl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, GreetingInitial, msgs[0].Content)
	assert.Equal(t, model.RoleBot, msgs[0].Role)
	assert.Equal(t, PhaseIdle, fx.ctrl.Phase())
}

func TestController_SendHappyPath(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.ctrl.SendMessage("  Apa itu stunting?  "))

	// The user message lands immediately, trimmed; the placeholder
	// waits for the composing pause.
	msgs := fx.ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Apa itu stunting?", msgs[1].Content)
	assert.Equal(t, "09:41", msgs[1].Timestamp)
	assert.Equal(t, PhaseComposing, fx.ctrl.Phase())
	assert.Empty(t, fx.be.askCalls)

	fx.sched.Advance(499 * time.Millisecond)
	assert.Empty(t, fx.be.askCalls, "backend call must wait out the composing pause")

	fx.sched.Advance(time.Millisecond)

	require.Len(t, fx.be.askCalls, 1)
	assert.Equal(t, "Apa itu stunting?", fx.be.askCalls[0].UserMessage)
	assert.True(t, fx.be.askCalls[0].FormatResponse)
	assert.Empty(t, fx.be.askCalls[0].UserID, "guest sends carry no user id")

	last := lastMessage(t, fx.ctrl)
	assert.Equal(t, model.RoleBot, last.Role)
	assert.Equal(t, "Stunting adalah kondisi gagal tumbuh.", last.Content)
	assert.False(t, last.IsPending)
	assert.Equal(t, PhaseIdle, fx.ctrl.Phase())

	// No pending placeholder survives resolution.
	for _, m := range fx.ctrl.Messages() {
		assert.False(t, m.IsPending)
	}
}

func TestController_SendRejectsEmpty(t *testing.T) {
	fx := newFixture(t)
	assert.ErrorIs(t, fx.ctrl.SendMessage("   "), ErrEmptyMessage)
	assert.Len(t, fx.ctrl.Messages(), 1)
}

func TestController_SendRejectsWhileBusy(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.ctrl.SendMessage("pertama"))
	assert.ErrorIs(t, fx.ctrl.SendMessage("kedua"), ErrBusy)

	fx.sched.Advance(time.Second)
	assert.Len(t, fx.be.askCalls, 1)

	// Resolved turn frees the controller again.
	require.NoError(t, fx.ctrl.SendMessage("kedua"))
}

func TestController_PlaceholderAppearsAfterPause(t *testing.T) {
	fx := newFixture(t)
	// Hold resolution open by failing sync inspection: capture state
	// inside the backend call, before resolveAsk runs.
	var sawPending bool
	fx.be.onAsk = func() {
		for _, m := range fx.ctrl.Messages() {
			if m.IsPending {
				sawPending = true
			}
		}
	}

	require.NoError(t, fx.ctrl.SendMessage("halo"))
	fx.sched.Advance(500 * time.Millisecond)

	assert.True(t, sawPending, "placeholder must be visible while the call is in flight")
}

func TestController_SendFailureShowsApology(t *testing.T) {
	fx := newFixture(t)
	fx.be.askErr = errors.New("connection refused")

	require.NoError(t, fx.ctrl.SendMessage("halo"))
	fx.sched.Advance(500 * time.Millisecond)

	last := lastMessage(t, fx.ctrl)
	assert.Equal(t, ApologyText, last.Content)
	assert.Equal(t, model.RoleBot, last.Role)
	assert.Equal(t, PhaseIdle, fx.ctrl.Phase(), "failure must return to idle")

	// Failed sends schedule no history refresh.
	fx.sched.Advance(time.Hour)
	assert.Zero(t, fx.hist.calls)
}

// =============================================================================
// GENERATION GUARD TESTS
// =============================================================================

func TestController_NewChatBeforePauseCancelsSend(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.ctrl.SendMessage("halo"))

	fx.ctrl.StartNewChat()
	fx.sched.Advance(time.Hour)

	assert.Empty(t, fx.be.askCalls, "cancelled compose slot must never reach the backend")
	msgs := fx.ctrl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, GreetingNewChat, msgs[0].Content)
	assert.Equal(t, PhaseIdle, fx.ctrl.Phase())
}

func TestController_NewChatDuringFlightDiscardsAnswer(t *testing.T) {
	fx := newFixture(t)
	// The user abandons the session while the request is on the wire.
	fx.be.onAsk = func() { fx.ctrl.StartNewChat() }

	require.NoError(t, fx.ctrl.SendMessage("halo"))
	fx.sched.Advance(500 * time.Millisecond)

	require.Len(t, fx.be.askCalls, 1)
	msgs := fx.ctrl.Messages()
	require.Len(t, msgs, 1, "stale answer must not land in the new session")
	assert.Equal(t, GreetingNewChat, msgs[0].Content)
	for _, m := range msgs {
		assert.False(t, m.IsPending)
	}
}

func TestController_SignOutDuringFlightDiscardsAnswer(t *testing.T) {
	fx := newFixture(t)
	fx.signIn("u1")
	fx.be.onAsk = func() {
		fx.auth.id = nil
		fx.ctrl.HandleAuthChange(nil)
	}

	require.NoError(t, fx.ctrl.SendMessage("halo"))
	fx.sched.Advance(500 * time.Millisecond)

	msgs := fx.ctrl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, GreetingNewChat, msgs[0].Content)
	assert.Empty(t, fx.ctrl.ChatID())
}

// =============================================================================
// CHAT ID ADOPTION TESTS
// =============================================================================

func TestController_AdoptsChatIDFromFirstAnswer(t *testing.T) {
	fx := newFixture(t)
	fx.signIn("u1")
	fx.be.askResp = &backend.AskResponse{Response: "jawaban", ChatID: "chat_9"}
	initialFetches := fx.hist.calls

	require.NoError(t, fx.ctrl.SendMessage("halo"))
	fx.sched.Advance(500 * time.Millisecond)

	assert.Equal(t, "chat_9", fx.ctrl.ChatID())
	assert.Equal(t, "u1", fx.be.askCalls[0].UserID)

	// History re-reads only after the persistence grace period.
	assert.Equal(t, initialFetches, fx.hist.calls)
	fx.sched.Advance(1500 * time.Millisecond)
	assert.Equal(t, initialFetches+1, fx.hist.calls)
}

func TestController_GuestNeverAdoptsChatID(t *testing.T) {
	fx := newFixture(t)
	fx.be.askResp = &backend.AskResponse{Response: "jawaban", ChatID: "chat_9"}

	require.NoError(t, fx.ctrl.SendMessage("halo"))
	fx.sched.Advance(2 * time.Second)

	// Whatever the backend sends, an anonymous turn stays unsaved.
	assert.Empty(t, fx.ctrl.ChatID())
	assert.Empty(t, fx.be.askCalls[0].UserID)
}

func TestController_KeepsExistingChatID(t *testing.T) {
	fx := newFixture(t)
	fx.signIn("u1")
	fx.be.askResp = &backend.AskResponse{Response: "a", ChatID: "chat_1"}

	require.NoError(t, fx.ctrl.SendMessage("pertama"))
	fx.sched.Advance(2 * time.Second)
	require.Equal(t, "chat_1", fx.ctrl.ChatID())

	fx.be.askResp = &backend.AskResponse{Response: "b", ChatID: "chat_1"}
	require.NoError(t, fx.ctrl.SendMessage("kedua"))
	fx.sched.Advance(2 * time.Second)

	assert.Equal(t, "chat_1", fx.ctrl.ChatID())
	assert.Equal(t, "chat_1", fx.be.askCalls[1].ChatID, "follow-up must continue the same chat")
}

// =============================================================================
// CONTINUE CHAT TESTS
// =============================================================================

func TestController_ContinueChatRequiresSignIn(t *testing.T) {
	fx := newFixture(t)
	assert.ErrorIs(t, fx.ctrl.ContinueChat("chat_1"), ErrNotSignedIn)
}

func TestController_ContinueChatReplacesTranscript(t *testing.T) {
	fx := newFixture(t)
	fx.signIn("u1")
	fx.be.msgs = []backend.TranscriptMessage{
		{Role: "user", Content: "Apa itu stunting?", Timestamp: "2025-06-01T09:41:00Z"},
		{Role: "assistant", Content: "Stunting adalah...", Timestamp: "2025-06-01T09:41:05Z"},
	}

	require.NoError(t, fx.ctrl.ContinueChat("chat_7"))

	msgs := fx.ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleBot, msgs[1].Role)
	assert.Equal(t, "chat_7", fx.ctrl.ChatID())
	assert.Equal(t, PhaseIdle, fx.ctrl.Phase())
	assert.False(t, fx.ctrl.Revealing(), "loaded transcripts render fully at once")
}

func TestController_ContinueChatRejectedWhileComposing(t *testing.T) {
	fx := newFixture(t)
	fx.signIn("u1")

	require.NoError(t, fx.ctrl.SendMessage("halo"))
	assert.ErrorIs(t, fx.ctrl.ContinueChat("chat_7"), ErrBusy)
}

func TestController_ContinueChatFailureKeepsTranscript(t *testing.T) {
	fx := newFixture(t)
	fx.signIn("u1")
	fx.be.msgsErr = errors.New("backend down")

	before := fx.ctrl.Messages()
	require.NoError(t, fx.ctrl.ContinueChat("chat_7"))

	assert.Equal(t, before, fx.ctrl.Messages(), "failed load must keep the current transcript")
	assert.Equal(t, PhaseIdle, fx.ctrl.Phase())
	assert.Empty(t, fx.ctrl.ChatID())
}

// =============================================================================
// TYPEWRITER REVEAL TESTS
// =============================================================================

func TestController_RevealAdvancesRuneByRune(t *testing.T) {
	fx := newFixture(t)
	fx.be.askResp = &backend.AskResponse{Response: "halo dunia"}

	require.NoError(t, fx.ctrl.SendMessage("hai"))
	fx.sched.Advance(500 * time.Millisecond)

	bot := lastMessage(t, fx.ctrl)
	require.True(t, fx.ctrl.Revealing())
	assert.Equal(t, "", fx.ctrl.VisibleContent(bot))

	fx.sched.Advance(5 * time.Millisecond)
	assert.Equal(t, "h", fx.ctrl.VisibleContent(bot))

	fx.sched.Advance(15 * time.Millisecond)
	assert.Equal(t, "halo", fx.ctrl.VisibleContent(bot))

	fx.sched.Advance(time.Second)
	assert.Equal(t, "halo dunia", fx.ctrl.VisibleContent(bot))
	assert.False(t, fx.ctrl.Revealing())
}

func TestController_RevealIsDisplayOnly(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.ctrl.SendMessage("hai"))
	fx.sched.Advance(500 * time.Millisecond)

	// Mid-reveal the transcript already holds the full content.
	fx.sched.Advance(5 * time.Millisecond)
	bot := lastMessage(t, fx.ctrl)
	assert.Equal(t, "Stunting adalah kondisi gagal tumbuh.", bot.Content)
}

func TestController_NewAnswerSupersedesReveal(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.ctrl.SendMessage("pertama"))
	fx.sched.Advance(500 * time.Millisecond)
	first := lastMessage(t, fx.ctrl)

	// A second turn starts while the first is still revealing.
	fx.be.askResp = &backend.AskResponse{Response: "jawaban kedua"}
	require.NoError(t, fx.ctrl.SendMessage("kedua"))
	fx.sched.Advance(500 * time.Millisecond)

	// The superseded message renders fully, the new one reveals.
	assert.Equal(t, first.Content, fx.ctrl.VisibleContent(first))
	second := lastMessage(t, fx.ctrl)
	assert.NotEqual(t, second.Content, fx.ctrl.VisibleContent(second))
}

func TestController_StartRevealsInitialGreeting(t *testing.T) {
	fx := newFixture(t)
	fx.ctrl.Start()

	greeting := fx.ctrl.Messages()[0]
	require.True(t, fx.ctrl.Revealing())
	fx.sched.Advance(4 * 5 * time.Millisecond)
	assert.Equal(t, "Hai!", fx.ctrl.VisibleContent(greeting))
}

// =============================================================================
// AUTH TRANSITION TESTS
// =============================================================================

func TestController_SignInFetchesHistory(t *testing.T) {
	fx := newFixture(t)
	fx.signIn("u1")
	assert.Equal(t, 1, fx.hist.calls)
}

func TestController_SignOutResetsSession(t *testing.T) {
	fx := newFixture(t)
	fx.signIn("u1")
	fx.be.askResp = &backend.AskResponse{Response: "a", ChatID: "chat_1"}
	require.NoError(t, fx.ctrl.SendMessage("halo"))
	fx.sched.Advance(2 * time.Second)
	require.Equal(t, "chat_1", fx.ctrl.ChatID())

	fx.auth.id = nil
	fx.ctrl.HandleAuthChange(nil)

	assert.Empty(t, fx.ctrl.ChatID())
	msgs := fx.ctrl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, GreetingNewChat, msgs[0].Content)
}

func TestController_InitialGuestResolutionKeepsGreeting(t *testing.T) {
	fx := newFixture(t)
	// Startup settles on guest; the launch greeting must survive.
	fx.ctrl.HandleAuthChange(nil)

	msgs := fx.ctrl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, GreetingInitial, msgs[0].Content)
}
