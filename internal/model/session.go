// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"
)

// TitleMaxRunes is the maximum title length derived from the first user
// message. Longer messages are truncated and suffixed with "...".
const TitleMaxRunes = 30

// =============================================================================
// SESSION SUMMARY
// =============================================================================

// SessionSummary is one entry in the sidebar history list. The summary list
// is the index; transcripts are the payload, looked up by ID on demand.
type SessionSummary struct {
	// ID is assigned at first send in a conversation and never reassigned.
	ID string `json:"id"`

	// Title is derived from the first user message and fixed once set.
	Title string `json:"title"`

	// CreatedAt is the session creation time.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time of the last persisted turn.
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayDate returns the summary date formatted for the sidebar.
// Same-day sessions show "Today", previous-day sessions "Yesterday",
// everything else the local date.
func (s SessionSummary) DisplayDate() string {
	return FormatDisplayDate(s.UpdatedAt, time.Now())
}

// FormatDisplayDate formats t relative to now for sidebar display.
func FormatDisplayDate(t, now time.Time) string {
	y1, m1, d1 := t.Local().Date()
	y2, m2, d2 := now.Local().Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	yesterday := now.AddDate(0, 0, -1)
	y3, m3, d3 := yesterday.Local().Date()
	if y1 == y3 && m1 == m3 && d1 == d3 {
		return "Yesterday"
	}
	return t.Local().Format("Jan 2, 2006")
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the full ordered list of messages for one session.
// Order is the chronological send/receive order; there is no reordering.
type Transcript []Message

// Clone returns a copy of the transcript safe to hand to other goroutines.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// Persistable returns the transcript without transient turns. Saves go
// through this filter, so a locally injected turn (the error fallback)
// never reaches the store no matter how many saves follow it.
func (t Transcript) Persistable() Transcript {
	transient := 0
	for _, msg := range t {
		if msg.Transient {
			transient++
		}
	}
	if transient == 0 {
		return t
	}
	out := make(Transcript, 0, len(t)-transient)
	for _, msg := range t {
		if !msg.Transient {
			out = append(out, msg)
		}
	}
	return out
}

// FirstUserMessage returns the first user turn, or a zero Message if none.
func (t Transcript) FirstUserMessage() (Message, bool) {
	for _, msg := range t {
		if msg.Role == RoleUser {
			return msg, true
		}
	}
	return Message{}, false
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle computes a session title from the first user message.
// Titles keep the text as-is up to TitleMaxRunes runes; longer text is
// truncated to exactly TitleMaxRunes runes plus "...". Newlines collapse
// to spaces so the sidebar stays a single line.
func DeriveTitle(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= TitleMaxRunes {
		return text
	}
	return string(runes[:TitleMaxRunes]) + "..."
}

// NewSessionID mints a time-based session identifier. IDs are opaque to
// callers; the timestamp component only guarantees uniqueness per client.
func NewSessionID(now time.Time) string {
	return "sess_" + now.Format("20060102_150405.000000000")
}
