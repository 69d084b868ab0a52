// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello")
	}
	if msg.ID == "" {
		t.Error("Expected non-empty ID")
	}
	if msg.Grounding != nil {
		t.Error("User messages should not carry grounding")
	}
}

func TestNewGroundedModelMessage(t *testing.T) {
	grounding := &GroundingInfo{
		Chunks: []GroundingChunk{{URI: "https://example.com", Title: "Example"}},
	}
	msg := NewGroundedModelMessage("answer", grounding)

	if msg.Role != RoleModel {
		t.Errorf("Role = %q, want %q", msg.Role, RoleModel)
	}
	if msg.Grounding == nil || len(msg.Grounding.Chunks) != 1 {
		t.Error("Expected one grounding chunk")
	}

	// Empty grounding collapses to nil.
	msg = NewGroundedModelMessage("answer", &GroundingInfo{})
	if msg.Grounding != nil {
		t.Error("Empty grounding should not be attached")
	}
	msg = NewGroundedModelMessage("answer", nil)
	if msg.Grounding != nil {
		t.Error("Nil grounding should not be attached")
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		content string
		maxLen  int
		want    string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hi", 2, "hi"},
		{"hello", 3, "hel"},
		{"", 5, ""},
	}

	for _, tc := range tests {
		msg := Message{Content: tc.content}
		got := msg.Preview(tc.maxLen)
		if got != tc.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tc.content, tc.maxLen, got, tc.want)
		}
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", RoleUser.DisplayName())
	}
	if RoleModel.DisplayName() != "Gen2" {
		t.Errorf("RoleModel.DisplayName() = %q", RoleModel.DisplayName())
	}
}

// =============================================================================
// TITLE DERIVATION TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	// Short text passes through unchanged.
	if got := DeriveTitle("Hello"); got != "Hello" {
		t.Errorf("DeriveTitle(short) = %q, want %q", got, "Hello")
	}

	// Exactly 30 runes passes through unchanged.
	exact := strings.Repeat("a", 30)
	if got := DeriveTitle(exact); got != exact {
		t.Errorf("DeriveTitle(30 runes) = %q, want unchanged", got)
	}

	// 40 runes truncates to the first 30 plus "...".
	long := strings.Repeat("b", 40)
	got := DeriveTitle(long)
	want := strings.Repeat("b", 30) + "..."
	if got != want {
		t.Errorf("DeriveTitle(40 runes) = %q, want %q", got, want)
	}

	// Rune-based truncation, not byte-based.
	unicode := strings.Repeat("日", 40)
	got = DeriveTitle(unicode)
	if got != strings.Repeat("日", 30)+"..." {
		t.Errorf("DeriveTitle(unicode) = %q", got)
	}

	// Newlines collapse to spaces.
	if got := DeriveTitle("line one\nline two"); got != "line one line two" {
		t.Errorf("DeriveTitle(multiline) = %q", got)
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_Clone(t *testing.T) {
	orig := Transcript{NewUserMessage("a"), NewModelMessage("b")}
	clone := orig.Clone()

	if len(clone) != len(orig) {
		t.Fatalf("Clone length = %d, want %d", len(clone), len(orig))
	}

	clone[0].Content = "mutated"
	if orig[0].Content != "a" {
		t.Error("Mutating the clone should not affect the original")
	}

	var empty Transcript
	if empty.Clone() != nil {
		t.Error("Cloning a nil transcript should return nil")
	}
}

func TestTranscript_Persistable(t *testing.T) {
	tr := Transcript{
		NewUserMessage("question"),
		NewTransientModelMessage("local-only apology"),
		NewUserMessage("retry"),
		NewModelMessage("answer"),
	}

	got := tr.Persistable()
	if len(got) != 3 {
		t.Fatalf("Persistable length = %d, want 3", len(got))
	}
	for _, msg := range got {
		if msg.Transient {
			t.Errorf("Persistable kept transient turn %q", msg.Content)
		}
	}
	if len(tr) != 4 {
		t.Error("Persistable must not mutate the receiver")
	}

	clean := Transcript{NewUserMessage("a"), NewModelMessage("b")}
	if len(clean.Persistable()) != 2 {
		t.Error("A transcript without transient turns passes through whole")
	}
}

func TestTranscript_FirstUserMessage(t *testing.T) {
	tr := Transcript{NewModelMessage("greeting"), NewUserMessage("question")}
	first, ok := tr.FirstUserMessage()
	if !ok {
		t.Fatal("Expected a user message")
	}
	if first.Content != "question" {
		t.Errorf("FirstUserMessage = %q, want %q", first.Content, "question")
	}

	_, ok = Transcript{NewModelMessage("only")}.FirstUserMessage()
	if ok {
		t.Error("Expected no user message")
	}
}

// =============================================================================
// SESSION SUMMARY TESTS
// =============================================================================

func TestFormatDisplayDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	if got := FormatDisplayDate(now.Add(-time.Hour), now); got != "Today" {
		t.Errorf("same day = %q, want Today", got)
	}
	if got := FormatDisplayDate(now.AddDate(0, 0, -1), now); got != "Yesterday" {
		t.Errorf("previous day = %q, want Yesterday", got)
	}
	if got := FormatDisplayDate(now.AddDate(0, 0, -7), now); got != "Jun 8, 2025" {
		t.Errorf("older date = %q, want Jun 8, 2025", got)
	}
}

func TestNewSessionID(t *testing.T) {
	a := NewSessionID(time.Date(2025, 6, 15, 12, 0, 0, 1, time.UTC))
	b := NewSessionID(time.Date(2025, 6, 15, 12, 0, 0, 2, time.UTC))

	if !strings.HasPrefix(a, "sess_") {
		t.Errorf("ID should start with 'sess_', got %q", a)
	}
	if a == b {
		t.Error("IDs minted at different instants should differ")
	}
}
