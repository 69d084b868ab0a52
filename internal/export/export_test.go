// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/gen2-tui/internal/model"
)

func sampleSession() *Session {
	return &Session{
		Summary: model.SessionSummary{
			ID:        "sess_1",
			Title:     "Belajar Go",
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC),
		},
		Messages: model.Transcript{
			model.NewUserMessage("Apa itu goroutine?"),
			model.NewGroundedModelMessage("Goroutine adalah lightweight thread.", &model.GroundingInfo{
				Chunks: []model.GroundingChunk{{URI: "https://go.dev/tour", Title: "Tour of Go"}},
			}),
		},
	}
}

func TestMarkdownExporter(t *testing.T) {
	content, err := NewMarkdownExporter(nil).Export(sampleSession())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	text := string(content)

	for _, want := range []string{
		"title: Belajar Go",
		"# Belajar Go",
		"### [You]",
		"### [Gen2]",
		"Apa itu goroutine?",
		"**Sources**:",
		"https://go.dev/tour",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Markdown export missing %q", want)
		}
	}
}

func TestMarkdownExporter_EmptySession(t *testing.T) {
	if _, err := NewMarkdownExporter(nil).Export(&Session{}); err == nil {
		t.Error("Exporting an empty session should fail")
	}
	if _, err := NewMarkdownExporter(nil).Export(nil); err == nil {
		t.Error("Exporting a nil session should fail")
	}
}

func TestJSONExporter(t *testing.T) {
	content, err := NewJSONExporter(nil).Export(sampleSession())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		t.Fatalf("Export produced invalid JSON: %v", err)
	}
	if doc.Generator != "gen2" {
		t.Errorf("Generator = %q", doc.Generator)
	}
	if doc.Session.Title != "Belajar Go" {
		t.Errorf("Title = %q", doc.Session.Title)
	}
	if len(doc.Messages) != 2 {
		t.Fatalf("Messages = %d, want 2", len(doc.Messages))
	}
	if doc.Messages[1].Grounding == nil || len(doc.Messages[1].Grounding.Chunks) != 1 {
		t.Error("Grounding should survive the round trip")
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := &Options{OutputDir: dir, IncludeMetadata: true, IncludeTimestamps: true}

	path, err := ExportMarkdown(sampleSession(), opts)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("Expected .md path, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Exported file missing: %v", err)
	}

	path, err = ExportJSON(sampleSession(), opts)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("Expected .json path, got %q", path)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"has spaces", "has_spaces"},
		{"slash/colon:star*", "slash-colon-star-"},
		{"", "chat"},
		{"line\nbreak", "line_break"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.input); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
