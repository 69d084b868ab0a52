// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/gen2-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports sessions to JSON format for machine consumption.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// jsonDocument is the top-level structure of a JSON export.
type jsonDocument struct {
	Generator  string               `json:"generator"`
	ExportedAt time.Time            `json:"exported_at"`
	Session    model.SessionSummary `json:"session"`
	Messages   []jsonMessage        `json:"messages"`
}

// jsonMessage is one exported message.
type jsonMessage struct {
	ID        string                `json:"id"`
	Role      string                `json:"role"`
	Timestamp *time.Time            `json:"timestamp,omitempty"`
	Content   string                `json:"content"`
	Grounding *model.GroundingInfo  `json:"grounding,omitempty"`
}

// Export converts a session to indented JSON.
func (e *JSONExporter) Export(sess *Session) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if len(sess.Messages) == 0 {
		return nil, fmt.Errorf("session has no messages")
	}

	doc := jsonDocument{
		Generator:  "gen2",
		ExportedAt: time.Now(),
		Session:    sess.Summary,
		Messages:   make([]jsonMessage, 0, len(sess.Messages)),
	}

	for _, msg := range sess.Messages {
		out := jsonMessage{
			ID:        msg.ID,
			Role:      msg.Role.String(),
			Content:   msg.Content,
			Grounding: msg.Grounding,
		}
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			ts := msg.Timestamp
			out.Timestamp = &ts
		}
		doc.Messages = append(doc.Messages, out)
	}

	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
