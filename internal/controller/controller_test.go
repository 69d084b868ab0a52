// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/provider"
	"github.com/jeranaias/gen2-tui/internal/storage"
)

// fakeProvider is a scriptable ChatProvider for controller tests.
type fakeProvider struct {
	mu         sync.Mutex
	reply      *provider.Reply
	err        error
	configured bool
	requests   []provider.Request

	// block, when non-nil, holds Complete until closed.
	block chan struct{}
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		reply:      &provider.Reply{Text: "fake reply"},
		configured: true,
	}
}

func (f *fakeProvider) IsConfigured() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configured
}

func (f *fakeProvider) Complete(ctx context.Context, req provider.Request) (*provider.Reply, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block := f.block
	reply, err := f.reply, f.err
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (f *fakeProvider) lastRequest() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestController(t *testing.T) (*Controller, *storage.SessionStore, *fakeProvider) {
	t.Helper()
	store := storage.NewSessionStore(storage.NewMemoryKV())
	p := newFakeProvider()
	return New(store, p), store, p
}

// =============================================================================
// SEND LIFECYCLE
// =============================================================================

func TestSendMessage_FirstSendMintsSession(t *testing.T) {
	c, store, _ := newTestController(t)

	require.Empty(t, c.SessionID(), "fresh chat should have no session id")

	result, err := c.SendMessage(context.Background(), "Hello there")
	require.NoError(t, err)
	assert.False(t, result.Failed)

	assert.NotEmpty(t, c.SessionID(), "first send should mint a session id")
	assert.Equal(t, "Hello there", c.Title())
	assert.Equal(t, StateIdle, c.State())

	tr := c.Transcript()
	require.Len(t, tr, 2, "one cycle appends exactly two turns")
	assert.Equal(t, model.RoleUser, tr[0].Role)
	assert.Equal(t, model.RoleModel, tr[1].Role)
	assert.Equal(t, "fake reply", tr[1].Content)

	// Both turns are on disk.
	stored, err := store.Load(c.SessionID())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSendMessage_TitleFromLongMessage(t *testing.T) {
	c, _, _ := newTestController(t)

	long := strings.Repeat("x", 40)
	_, err := c.SendMessage(context.Background(), long)
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("x", 30)+"...", c.Title())
}

func TestSendMessage_TitleFixedAfterFirstSend(t *testing.T) {
	c, _, _ := newTestController(t)

	_, err := c.SendMessage(context.Background(), "original title")
	require.NoError(t, err)
	id := c.SessionID()

	_, err = c.SendMessage(context.Background(), "a later message")
	require.NoError(t, err)

	assert.Equal(t, id, c.SessionID(), "session id stable across sends")
	assert.Equal(t, "original title", c.Title(), "title derives from first message only")
	assert.Len(t, c.Transcript(), 4)
}

func TestSendMessage_EmptyRefused(t *testing.T) {
	c, _, _ := newTestController(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.SendMessage(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Empty(t, c.SessionID(), "refused sends must not mint a session")
	assert.Empty(t, c.Transcript())
}

func TestSendMessage_NotConfigured(t *testing.T) {
	c, _, p := newTestController(t)
	p.configured = false

	_, err := c.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, provider.ErrNotConfigured)
	assert.Empty(t, c.Transcript(), "refused sends leave the transcript untouched")
}

func TestSendMessage_BusyRefused(t *testing.T) {
	c, _, p := newTestController(t)
	p.block = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.SendMessage(context.Background(), "slow one")
	}()

	// Wait until the first send is in flight.
	for c.State() != StateSending {
		time.Sleep(time.Millisecond)
	}

	_, err := c.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(p.block)
	<-done
	assert.Equal(t, StateIdle, c.State())
}

func TestSendMessage_SearchFlagForwarded(t *testing.T) {
	c, _, p := newTestController(t)

	c.SendMessage(context.Background(), "no search")
	assert.False(t, p.lastRequest().EnableSearch)

	assert.True(t, c.ToggleSearch())
	c.SendMessage(context.Background(), "with search")
	assert.True(t, p.lastRequest().EnableSearch)

	// History excludes the new turn.
	req := p.lastRequest()
	assert.Equal(t, "with search", req.Text)
	assert.Len(t, req.History, 2)
}

// =============================================================================
// FAILURE FALLBACK
// =============================================================================

func TestSendMessage_FailureShowsFallbackWithoutPersisting(t *testing.T) {
	c, store, p := newTestController(t)
	p.err = errors.New("provider exploded")

	result, err := c.SendMessage(context.Background(), "doomed message")
	require.NoError(t, err, "a failed provider call still completes the cycle")
	assert.True(t, result.Failed)
	assert.ErrorContains(t, result.Err, "provider exploded")
	assert.Equal(t, FallbackMessage, result.Reply.Content)

	// The fallback is visible in memory...
	tr := c.Transcript()
	require.Len(t, tr, 2)
	assert.Equal(t, FallbackMessage, tr[1].Content)

	// ...but the stored transcript keeps its pre-failure length.
	stored, err := store.Load(c.SessionID())
	require.NoError(t, err)
	require.Len(t, stored, 1, "fallback must not be persisted")
	assert.Equal(t, "doomed message", stored[0].Content)

	assert.Equal(t, StateIdle, c.State(), "failure returns the controller to idle")
}

func TestSendMessage_RecoversAfterFailure(t *testing.T) {
	c, store, p := newTestController(t)

	p.err = errors.New("transient")
	c.SendMessage(context.Background(), "first try")

	p.mu.Lock()
	p.err = nil
	p.mu.Unlock()

	result, err := c.SendMessage(context.Background(), "second try")
	require.NoError(t, err)
	assert.False(t, result.Failed)

	// Disk: user turn from the failure, then the successful pair. The
	// displayed fallback never made it to storage.
	stored, _ := store.Load(c.SessionID())
	var contents []string
	for _, msg := range stored {
		contents = append(contents, msg.Content)
	}
	assert.NotContains(t, contents, FallbackMessage)
	assert.Equal(t, []string{"first try", "second try", "fake reply"}, contents)

	// Memory still shows the full history including the fallback.
	tr := c.Transcript()
	require.Len(t, tr, 4)
	assert.Equal(t, FallbackMessage, tr[1].Content)
}

// =============================================================================
// CONVERSATION SWITCHING
// =============================================================================

func TestNewChat_ResetsState(t *testing.T) {
	c, store, _ := newTestController(t)

	c.SendMessage(context.Background(), "a chat")
	id := c.SessionID()

	c.NewChat()

	assert.Empty(t, c.SessionID())
	assert.Empty(t, c.Title())
	assert.Empty(t, c.Transcript())

	// The old session survives on disk.
	stored, err := store.Load(id)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestLoadSession_RoundTrip(t *testing.T) {
	c, _, _ := newTestController(t)

	c.SendMessage(context.Background(), "remember me")
	id := c.SessionID()
	c.NewChat()

	require.NoError(t, c.LoadSession(id))
	assert.Equal(t, id, c.SessionID())
	assert.Equal(t, "remember me", c.Title())
	assert.Len(t, c.Transcript(), 2)

	// Loading twice is idempotent.
	require.NoError(t, c.LoadSession(id))
	assert.Len(t, c.Transcript(), 2)
}

func TestLoadSession_NotFound(t *testing.T) {
	c, _, _ := newTestController(t)
	err := c.LoadSession("no-such-id")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestDeleteSession_ActiveResets(t *testing.T) {
	c, _, _ := newTestController(t)

	c.SendMessage(context.Background(), "doomed chat")
	id := c.SessionID()

	require.NoError(t, c.DeleteSession(id))
	assert.Empty(t, c.SessionID(), "deleting the active session resets the chat")
	assert.Empty(t, c.Transcript())
	assert.Empty(t, c.Sessions())
}

func TestDeleteSession_OtherKeepsActive(t *testing.T) {
	c, _, _ := newTestController(t)

	c.SendMessage(context.Background(), "first chat")
	first := c.SessionID()
	c.NewChat()
	c.SendMessage(context.Background(), "second chat")
	second := c.SessionID()

	require.NoError(t, c.DeleteSession(first))
	assert.Equal(t, second, c.SessionID(), "deleting another session leaves the active one alone")
	assert.Len(t, c.Transcript(), 2)
}

func TestClearAllSessions(t *testing.T) {
	c, _, _ := newTestController(t)

	c.SendMessage(context.Background(), "one")
	c.NewChat()
	c.SendMessage(context.Background(), "two")

	require.NoError(t, c.ClearAllSessions())
	assert.Empty(t, c.Sessions())
	assert.Empty(t, c.SessionID())
	assert.Empty(t, c.Transcript())
}

func TestNewChat_DropsInFlightReply(t *testing.T) {
	c, _, p := newTestController(t)
	p.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := c.SendMessage(context.Background(), "abandoned")
		done <- err
	}()
	for c.State() != StateSending {
		time.Sleep(time.Millisecond)
	}

	c.NewChat()
	close(p.block)

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.Transcript(), "a stale reply must not land in the new chat")
	assert.Equal(t, StateIdle, c.State())
}
