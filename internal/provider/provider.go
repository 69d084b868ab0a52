// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider implements chat completion against the Gemini API.
//
// The rest of the application talks to the ChatProvider interface; the
// concrete GeminiProvider lives in gemini.go. Tests substitute a fake.
package provider

import (
	"context"
	"errors"

	"github.com/jeranaias/gen2-tui/internal/model"
)

// Error variables for common provider errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("Gemini API key not configured")

	// ErrEmptyReply indicates the model returned no usable text.
	ErrEmptyReply = errors.New("empty reply from model")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")
)

// Reply is one completed model turn.
type Reply struct {
	// Text is the model's answer, markdown formatted.
	Text string

	// Grounding carries web citations when search grounding was used.
	// Nil when the reply was not grounded.
	Grounding *model.GroundingInfo
}

// Request is one completion request: the prior conversation plus the new
// user text, and whether to ground the answer with web search.
type Request struct {
	// History is the conversation so far, excluding Text.
	History model.Transcript

	// Text is the new user message.
	Text string

	// EnableSearch attaches the web search tool to the request.
	EnableSearch bool
}

// ChatProvider produces chat completions.
type ChatProvider interface {
	// Complete sends the full conversation and returns the model's reply.
	// Blocks until the reply arrives, the context is cancelled, or the
	// request fails.
	Complete(ctx context.Context, req Request) (*Reply, error)

	// IsConfigured reports whether the provider has credentials to send
	// requests. Complete fails with ErrNotConfigured otherwise.
	IsConfigured() bool
}
