// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/jeranaias/gen2-tui/internal/model"
)

// Configuration constants for the Gemini API.
const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-3-flash-preview"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the number of attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// requestsPerMinute caps the local send rate. The free tier rejects
	// bursts well below this; the limiter keeps retry storms from making
	// a quota problem worse.
	requestsPerMinute = 30
)

// systemInstruction is the persona sent with every completion.
const systemInstruction = "You are Gen2, an advanced AI chatbot created by M Fariz Alfauzi. " +
	"Fariz is a 17-year-old student and CEO from SMK Nurul Islam Affandiyah in Cianjur, West Java, " +
	"born on August 8, 2008. You are helpful, expert, and provide accurate, relevant responses. " +
	"You excel at coding and technical tasks, mimicking the high quality of DeepSeek's interactions " +
	"but with your own unique identity as Gen2."

// GeminiProvider is a ChatProvider backed by the Gemini API.
type GeminiProvider struct {
	apiKey     string
	modelName  string
	maxRetries int
	timeout    time.Duration
	limiter    *rate.Limiter

	// newClient is swapped by tests to avoid real network setup.
	newClient func(ctx context.Context) (*genai.Client, error)
}

// NewGeminiProvider creates a provider with the given API key and model.
// An empty key still yields a working value; Complete then fails with
// ErrNotConfigured so the UI can show its configuration banner.
func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	p := &GeminiProvider{
		apiKey:     strings.TrimSpace(apiKey),
		modelName:  modelName,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), 1),
	}
	p.newClient = func(ctx context.Context) (*genai.Client, error) {
		return genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
	}
	return p
}

// WithTimeout sets the per-request timeout.
func (p *GeminiProvider) WithTimeout(timeout time.Duration) *GeminiProvider {
	p.timeout = timeout
	return p
}

// WithMaxRetries sets the maximum number of retry attempts.
func (p *GeminiProvider) WithMaxRetries(maxRetries int) *GeminiProvider {
	p.maxRetries = maxRetries
	return p
}

// Model returns the configured model name.
func (p *GeminiProvider) Model() string {
	return p.modelName
}

// IsConfigured returns true if an API key is set.
func (p *GeminiProvider) IsConfigured() bool {
	return p.apiKey != ""
}

// Complete sends the conversation to Gemini and returns the reply.
//
// Transient failures are retried with exponential backoff. The local rate
// limiter runs before each attempt so retries also count against the cap.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (*Reply, error) {
	if !p.IsConfigured() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	client, err := p.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	contents := buildContents(req.History, req.Text)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}
	if req.EnableSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := client.Models.GenerateContent(ctx, p.modelName, contents, config)
		if err != nil {
			if !isRetryable(err) {
				return nil, classifyError(err)
			}
			lastErr = err
			continue
		}

		return parseReply(resp)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", classifyError(lastErr))
}

// buildContents converts the transcript plus the new user text into the
// wire format. Roles map directly: the model package already uses the
// Gemini role names.
func buildContents(history model.Transcript, text string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		contents = append(contents, &genai.Content{
			Role:  string(msg.Role),
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  string(model.RoleUser),
		Parts: []*genai.Part{{Text: text}},
	})
	return contents
}

// parseReply extracts the reply text and any grounding citations.
func parseReply(resp *genai.GenerateContentResponse) (*Reply, error) {
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyReply
	}

	return &Reply{
		Text:      text,
		Grounding: extractGrounding(resp),
	}, nil
}

// extractGrounding collects web citations from the first candidate's
// grounding metadata. Returns nil when the reply was not grounded.
func extractGrounding(resp *genai.GenerateContentResponse) *model.GroundingInfo {
	if len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil || len(meta.GroundingChunks) == 0 {
		return nil
	}

	info := &model.GroundingInfo{}
	for _, chunk := range meta.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		info.Chunks = append(info.Chunks, model.GroundingChunk{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	if len(info.Chunks) == 0 {
		return nil
	}
	return info
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		// 429 and 5xx are transient; everything else is the caller's problem.
		return apiErr.Code == 429 || (apiErr.Code >= 500 && apiErr.Code < 600)
	}

	// Network-level failures are worth one more try.
	return true
}

// classifyError maps raw API failures onto the package sentinels so
// callers can branch with errors.Is. Quota rejections surface as
// ErrRateLimited; everything else passes through unchanged.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}

// calculateBackoff returns the delay to wait before the next retry.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
