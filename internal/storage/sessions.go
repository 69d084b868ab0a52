// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides session persistence for the gen2 chat client.
package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/util"
)

// =============================================================================
// KEY LAYOUT AND ENVELOPES
// =============================================================================

const (
	// historyKey holds the serialized summary list.
	historyKey = "chat_history"

	// sessionKeyPrefix + id holds one serialized transcript blob.
	sessionKeyPrefix = "chat_session_"

	// storeVersion is the blob envelope version. Unknown versions read as
	// missing rather than failing hard, so older builds never crash on
	// newer data.
	storeVersion = 1
)

// historyEnvelope is the persisted form of the summary list.
type historyEnvelope struct {
	Version  int                    `json:"version"`
	Sessions []model.SessionSummary `json:"sessions"`
}

// transcriptEnvelope is the persisted form of one transcript.
type transcriptEnvelope struct {
	Version  int              `json:"version"`
	Messages model.Transcript `json:"messages"`
}

// ErrSessionNotFound is returned when a session id has no stored transcript.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &StoreError{Message: "session not found"}

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore is the durable mapping from session id to (summary,
// transcript). The summary list lives under a single fixed key; each
// transcript lives under its own prefixed key and is loaded on demand.
type SessionStore struct {
	kv KV

	// summaries is the in-memory summary list, loaded once at construction.
	// Most-recently-updated sessions come first.
	summaries []model.SessionSummary

}

// NewSessionStore creates a store over kv and loads the summary list.
// Missing or corrupt history data is treated as an empty list; startup
// never fails because of bad stored state.
func NewSessionStore(kv KV) *SessionStore {
	s := &SessionStore{kv: kv}
	s.summaries = s.loadHistory()
	return s
}

// loadHistory reads and decodes the summary list, failing soft.
func (s *SessionStore) loadHistory() []model.SessionSummary {
	data, err := s.kv.Get(historyKey)
	if err != nil {
		return []model.SessionSummary{}
	}

	var env historyEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Version != storeVersion {
		return []model.SessionSummary{}
	}
	if env.Sessions == nil {
		return []model.SessionSummary{}
	}
	return env.Sessions
}

// persistHistory writes the summary list back to the medium.
func (s *SessionStore) persistHistory() error {
	data, err := json.Marshal(historyEnvelope{
		Version:  storeVersion,
		Sessions: s.summaries,
	})
	if err != nil {
		return err
	}
	return s.kv.Put(historyKey, data)
}

// =============================================================================
// LIST AND SEARCH
// =============================================================================

// List returns all known session summaries, most recently updated first.
func (s *SessionStore) List() []model.SessionSummary {
	out := make([]model.SessionSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// Search returns summaries whose title contains query, case-insensitively.
// A pure filter over the in-memory list; no persistence side effect.
// An empty query returns the full list.
func (s *SessionStore) Search(query string) []model.SessionSummary {
	if query == "" {
		return s.List()
	}

	var results []model.SessionSummary
	for _, sum := range s.summaries {
		if util.ContainsFold(sum.Title, query) {
			results = append(results, sum)
		}
	}
	return results
}

// =============================================================================
// LOAD
// =============================================================================

// Load fetches the persisted transcript for a session id. A missing or
// unreadable blob returns ErrSessionNotFound; callers treat that as a
// normal outcome and leave the transcript empty.
func (s *SessionStore) Load(id string) (model.Transcript, error) {
	data, err := s.kv.Get(sessionKeyPrefix + id)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var env transcriptEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Version != storeVersion {
		// Corrupt or foreign blob: indistinguishable from absent.
		return nil, ErrSessionNotFound
	}
	return env.Messages, nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save upserts a session. A new id gains a summary at the front of the
// list; an existing id keeps its title and creation date and moves to the
// front (the list is consistently most-recently-updated-first). The
// transcript blob is overwritten either way.
func (s *SessionStore) Save(id, title string, messages model.Transcript) error {
	data, err := json.Marshal(transcriptEnvelope{
		Version:  storeVersion,
		Messages: messages,
	})
	if err != nil {
		return err
	}
	if err := s.kv.Put(sessionKeyPrefix+id, data); err != nil {
		return err
	}

	now := time.Now()
	idx := s.indexOf(id)
	if idx < 0 {
		summary := model.SessionSummary{
			ID:        id,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.summaries = append([]model.SessionSummary{summary}, s.summaries...)
	} else {
		summary := s.summaries[idx]
		summary.UpdatedAt = now
		s.summaries = append(s.summaries[:idx], s.summaries[idx+1:]...)
		s.summaries = append([]model.SessionSummary{summary}, s.summaries...)
	}

	return s.persistHistory()
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a session's transcript blob and its summary entry.
// Deleting an unknown id returns ErrSessionNotFound.
func (s *SessionStore) Delete(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	if err := s.kv.Delete(sessionKeyPrefix + id); err != nil {
		return err
	}
	s.summaries = append(s.summaries[:idx], s.summaries[idx+1:]...)
	return s.persistHistory()
}

// ClearAll removes every transcript blob referenced by the summary list,
// then clears the list itself.
func (s *SessionStore) ClearAll() error {
	for _, sum := range s.summaries {
		if err := s.kv.Delete(sessionKeyPrefix + sum.ID); err != nil {
			return err
		}
	}
	s.summaries = []model.SessionSummary{}
	return s.persistHistory()
}

// =============================================================================
// HELPERS
// =============================================================================

// Get returns the summary for id, if present.
func (s *SessionStore) Get(id string) (model.SessionSummary, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.SessionSummary{}, false
	}
	return s.summaries[idx], true
}

// Len returns the number of known sessions.
func (s *SessionStore) Len() int {
	return len(s.summaries)
}

func (s *SessionStore) indexOf(id string) int {
	for i, sum := range s.summaries {
		if sum.ID == id {
			return i
		}
	}
	return -1
}
