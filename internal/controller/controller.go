// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller implements the conversation state machine that sits
// between the UI surfaces and the provider/storage layers.
//
// All UI frontends (the TUI, the REPL, the one-shot command) drive the same
// Controller. It owns the active transcript, the send lifecycle, and the
// persistence rules; the frontends only render its state.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/provider"
	"github.com/jeranaias/gen2-tui/internal/storage"
)

// =============================================================================
// STATES AND ERRORS
// =============================================================================

// State is the controller's send lifecycle state.
type State int

const (
	// StateIdle means no request is in flight; sends are accepted.
	StateIdle State = iota

	// StateSending means a request is in flight; further sends are refused.
	StateSending
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// FallbackMessage is shown in place of a reply when a request fails. It is
// displayed but never persisted, so a failed exchange leaves the stored
// transcript at its pre-failure length.
const FallbackMessage = "Maaf, terjadi kesalahan saat memproses pesan Anda. Silakan coba lagi."

var (
	// ErrBusy indicates a send was attempted while one is in flight.
	ErrBusy = errors.New("a message is already being sent")

	// ErrEmptyMessage indicates the message was empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns one active conversation. Methods are safe for concurrent
// use; the TUI calls SendMessage from a goroutine while the update loop
// reads state.
type Controller struct {
	mu sync.Mutex

	store    *storage.SessionStore
	provider provider.ChatProvider

	state      State
	sessionID  string // empty until the first send mints one
	title      string
	transcript model.Transcript

	searchEnabled bool

	// generation counts conversation switches. A reply whose generation no
	// longer matches belongs to an abandoned conversation and is dropped.
	generation uint64

	// cancelMgr cancels the in-flight request when the conversation is
	// switched or the user aborts.
	cancelMgr *cancelManager

	// lastSaveError records the most recent persistence failure. Saves are
	// best-effort: a failed write never blocks the conversation.
	lastSaveError error

	// now is replaceable for tests.
	now func() time.Time
}

// New creates a controller over the given store and provider.
func New(store *storage.SessionStore, p provider.ChatProvider) *Controller {
	return &Controller{
		store:     store,
		provider:  p,
		state:     StateIdle,
		cancelMgr: newCancelManager(),
		now:       time.Now,
	}
}

// =============================================================================
// READ ACCESSORS
// =============================================================================

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the active session id, or "" for an unsaved chat.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Title returns the active session title, or "" for an unsaved chat.
func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// Transcript returns a copy of the active transcript.
func (c *Controller) Transcript() model.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Clone()
}

// SearchEnabled reports whether web search grounding is on.
func (c *Controller) SearchEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchEnabled
}

// SetSearchEnabled turns web search grounding on or off for future sends.
func (c *Controller) SetSearchEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchEnabled = on
}

// ToggleSearch flips the web search grounding flag and returns the new value.
func (c *Controller) ToggleSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchEnabled = !c.searchEnabled
	return c.searchEnabled
}

// LastSaveError returns the most recent persistence failure, or nil.
func (c *Controller) LastSaveError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaveError
}

// Sessions returns all stored session summaries, most recent first.
func (c *Controller) Sessions() []model.SessionSummary {
	return c.store.List()
}

// SearchSessions filters stored summaries by title, case-insensitively.
func (c *Controller) SearchSessions(query string) []model.SessionSummary {
	return c.store.Search(query)
}

// =============================================================================
// SEND
// =============================================================================

// SendResult describes the outcome of one completed send cycle.
type SendResult struct {
	// UserMessage is the appended user turn.
	UserMessage model.Message

	// Reply is the appended reply turn: the model's answer, or the
	// fallback message when Failed is true.
	Reply model.Message

	// Failed is true when the provider call failed and the fallback
	// message stands in for a real reply.
	Failed bool

	// Err is the underlying provider error when Failed is true.
	Err error
}

// SendMessage runs one full send cycle: append the user turn, persist,
// call the provider, append the reply (or the fallback on failure), and
// persist again. It blocks until the cycle completes and returns the
// outcome.
//
// The first send of a fresh chat mints the session id and derives the
// title from the message text. The title never changes afterwards.
//
// Refused outright (no state change) when the text is empty, a send is
// already in flight, or the provider is not configured.
func (c *Controller) SendMessage(ctx context.Context, text string) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if !c.provider.IsConfigured() {
		c.mu.Unlock()
		return nil, provider.ErrNotConfigured
	}

	// Optimistic user turn: appended and persisted before the provider
	// call so the exchange survives a crash mid-request.
	userMsg := model.NewUserMessage(text)
	history := c.transcript.Clone()
	c.transcript = append(c.transcript, userMsg)

	if c.sessionID == "" {
		c.sessionID = model.NewSessionID(c.now())
		c.title = model.DeriveTitle(text)
	}
	c.persistLocked()

	c.state = StateSending
	generation := c.generation
	searchEnabled := c.searchEnabled

	reqCtx, cancel := context.WithCancel(ctx)
	c.cancelMgr.setCancelFunc(cancel)
	c.mu.Unlock()

	reply, err := c.provider.Complete(reqCtx, provider.Request{
		History:      history,
		Text:         text,
		EnableSearch: searchEnabled,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelMgr.clear()

	if generation != c.generation {
		// The conversation was switched while the request was in flight.
		// The reply belongs to the old conversation; drop it.
		return nil, context.Canceled
	}
	c.state = StateIdle

	if err != nil {
		// Display the fallback but never persist it: the turn is marked
		// transient, so persistLocked skips it on this save and on every
		// later save of the same transcript.
		fallback := model.NewTransientModelMessage(FallbackMessage)
		c.transcript = append(c.transcript, fallback)
		return &SendResult{
			UserMessage: userMsg,
			Reply:       fallback,
			Failed:      true,
			Err:         err,
		}, nil
	}

	replyMsg := model.NewGroundedModelMessage(reply.Text, reply.Grounding)
	c.transcript = append(c.transcript, replyMsg)
	c.persistLocked()

	return &SendResult{
		UserMessage: userMsg,
		Reply:       replyMsg,
	}, nil
}

// CancelSend aborts the in-flight request, if any. The send cycle then
// finishes through its failure path.
func (c *Controller) CancelSend() {
	c.cancelMgr.cancel()
}

// persistLocked writes the active session to the store. Callers hold c.mu.
// Failures are recorded, not returned: persistence is best-effort and the
// conversation continues in memory.
func (c *Controller) persistLocked() {
	if c.sessionID == "" {
		return
	}
	c.lastSaveError = c.store.Save(c.sessionID, c.title, c.transcript.Persistable())
}

// =============================================================================
// CONVERSATION SWITCHING
// =============================================================================

// NewChat abandons the active conversation and starts a fresh unsaved one.
// Any in-flight request is cancelled and its reply dropped.
func (c *Controller) NewChat() {
	c.cancelMgr.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// LoadSession replaces the active conversation with a stored one. Loading
// is read-only and idempotent: loading the same id twice yields the same
// transcript with no persistence side effects.
func (c *Controller) LoadSession(id string) error {
	transcript, err := c.store.Load(id)
	if err != nil {
		return err
	}
	summary, ok := c.store.Get(id)
	if !ok {
		return storage.ErrSessionNotFound
	}

	c.cancelMgr.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = StateIdle
	c.sessionID = id
	c.title = summary.Title
	c.transcript = transcript
	return nil
}

// DeleteSession removes a stored session. Deleting the active session also
// resets the controller to a fresh unsaved chat.
func (c *Controller) DeleteSession(id string) error {
	if err := c.store.Delete(id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID == id {
		c.cancelMgr.cancel()
		c.resetLocked()
	}
	return nil
}

// ClearAllSessions removes every stored session and resets the controller
// to a fresh unsaved chat.
func (c *Controller) ClearAllSessions() error {
	if err := c.store.ClearAll(); err != nil {
		return err
	}

	c.cancelMgr.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return nil
}

// resetLocked clears the active conversation. Callers hold c.mu.
func (c *Controller) resetLocked() {
	c.generation++
	c.state = StateIdle
	c.sessionID = ""
	c.title = ""
	c.transcript = nil
}
