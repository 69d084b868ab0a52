// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/jeranaias/gen2-tui/internal/model"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiProvider_NotConfigured(t *testing.T) {
	p := NewGeminiProvider("", "")

	if p.IsConfigured() {
		t.Error("Empty key should not be configured")
	}

	_, err := p.Complete(context.Background(), Request{Text: "hi"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestGeminiProvider_Defaults(t *testing.T) {
	p := NewGeminiProvider("key", "")
	if p.Model() != DefaultModel {
		t.Errorf("Model = %q, want %q", p.Model(), DefaultModel)
	}

	p = NewGeminiProvider("key", "gemini-2.5-pro")
	if p.Model() != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want configured name", p.Model())
	}
	if !p.IsConfigured() {
		t.Error("Provider with key should be configured")
	}
}

func TestBuildContents(t *testing.T) {
	history := model.Transcript{
		model.NewUserMessage("first question"),
		model.NewModelMessage("first answer"),
	}

	contents := buildContents(history, "second question")
	if len(contents) != 3 {
		t.Fatalf("len = %d, want 3", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Errorf("History roles = %q, %q", contents[0].Role, contents[1].Role)
	}
	if contents[2].Role != "user" {
		t.Errorf("New turn role = %q, want user", contents[2].Role)
	}
	if contents[2].Parts[0].Text != "second question" {
		t.Errorf("New turn text = %q", contents[2].Parts[0].Text)
	}
}

func TestParseReply(t *testing.T) {
	reply, err := parseReply(textResponse("  the answer  "))
	if err != nil {
		t.Fatalf("parseReply failed: %v", err)
	}
	if reply.Text != "the answer" {
		t.Errorf("Text = %q, want trimmed answer", reply.Text)
	}
	if reply.Grounding != nil {
		t.Error("Ungrounded reply should have nil grounding")
	}

	if _, err := parseReply(textResponse("   ")); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("Blank reply should be ErrEmptyReply, got %v", err)
	}
	if _, err := parseReply(&genai.GenerateContentResponse{}); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("No candidates should be ErrEmptyReply, got %v", err)
	}
}

func TestExtractGrounding(t *testing.T) {
	resp := textResponse("grounded answer")
	resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{URI: "https://example.com/a", Title: "A"}},
			{Web: &genai.GroundingChunkWeb{URI: ""}}, // skipped
			{Web: nil},                               // skipped
			{Web: &genai.GroundingChunkWeb{URI: "https://example.com/b", Title: "B"}},
		},
	}

	info := extractGrounding(resp)
	if info == nil {
		t.Fatal("Expected grounding info")
	}
	if len(info.Chunks) != 2 {
		t.Fatalf("Chunks = %d, want 2", len(info.Chunks))
	}
	if info.Chunks[0].URI != "https://example.com/a" || info.Chunks[1].Title != "B" {
		t.Error("Chunk fields not carried through")
	}

	// Metadata with only unusable chunks collapses to nil.
	resp.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{{Web: nil}},
	}
	if extractGrounding(resp) != nil {
		t.Error("All-unusable chunks should yield nil grounding")
	}
}

func TestIsRetryable(t *testing.T) {
	if isRetryable(context.Canceled) {
		t.Error("Cancellation is not retryable")
	}
	if isRetryable(context.DeadlineExceeded) {
		t.Error("Deadline is not retryable")
	}
	if !isRetryable(genai.APIError{Code: 429}) {
		t.Error("429 should be retryable")
	}
	if !isRetryable(genai.APIError{Code: 503}) {
		t.Error("503 should be retryable")
	}
	if isRetryable(genai.APIError{Code: 400}) {
		t.Error("400 should not be retryable")
	}
	if isRetryable(genai.APIError{Code: 401}) {
		t.Error("401 should not be retryable")
	}
	if !isRetryable(errors.New("connection reset")) {
		t.Error("Plain network errors should be retryable")
	}
}

func TestClassifyError(t *testing.T) {
	err := classifyError(genai.APIError{Code: 429, Message: "quota exceeded"})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("429 should map to ErrRateLimited, got %v", err)
	}

	// The wrapping survives another layer, which is how the retry loop
	// reports an exhausted 429.
	wrapped := classifyError(genai.APIError{Code: 429})
	outer := errors.Join(errors.New("max retries exceeded"), wrapped)
	if !errors.Is(outer, ErrRateLimited) {
		t.Error("ErrRateLimited should survive wrapping")
	}

	if errors.Is(classifyError(genai.APIError{Code: 500}), ErrRateLimited) {
		t.Error("500 is not a rate limit")
	}
	plain := errors.New("connection reset")
	if classifyError(plain) != plain {
		t.Error("Non-API errors pass through unchanged")
	}
}

func TestCalculateBackoff(t *testing.T) {
	if got := calculateBackoff(1); got != time.Second {
		t.Errorf("attempt 1 = %v, want 1s", got)
	}
	if got := calculateBackoff(2); got != 2*time.Second {
		t.Errorf("attempt 2 = %v, want 2s", got)
	}
	if got := calculateBackoff(10); got != retryMaxDelay {
		t.Errorf("large attempt = %v, want cap %v", got, retryMaxDelay)
	}
}
