// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Gen2"
	default:
		return string(r)
	}
}

// =============================================================================
// GROUNDING METADATA
// =============================================================================

// GroundingChunk is a single web citation attached to a grounded reply.
type GroundingChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// GroundingInfo holds the citations for a model reply that used web search.
// It is nil on messages where no search was performed.
type GroundingInfo struct {
	Chunks []GroundingChunk `json:"chunks"`
}

// IsEmpty returns true if there are no usable citations.
func (g *GroundingInfo) IsEmpty() bool {
	return g == nil || len(g.Chunks) == 0
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single conversational turn.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content may contain markdown syntax; rendering happens at display time.
	Content string `json:"content"`

	// Grounding is set only on model turns that used web search.
	Grounding *GroundingInfo `json:"grounding,omitempty"`

	// Transient marks a turn that is displayed but never written to the
	// store, such as the local error fallback. Excluded from JSON so a
	// transient turn can not survive a save/load round trip either way.
	Transient bool `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewModelMessage creates a new model message.
func NewModelMessage(content string) Message {
	return NewMessage(RoleModel, content)
}

// NewTransientModelMessage creates a model message that stays local: it
// is shown in the conversation but skipped by persistence.
func NewTransientModelMessage(content string) Message {
	msg := NewMessage(RoleModel, content)
	msg.Transient = true
	return msg
}

// NewGroundedModelMessage creates a model message carrying citations.
func NewGroundedModelMessage(content string, grounding *GroundingInfo) Message {
	msg := NewMessage(RoleModel, content)
	if !grounding.IsEmpty() {
		msg.Grounding = grounding
	}
	return msg
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return len(m.Content) == 0
}
