// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns model replies into terminal output: markdown
// formatting via glamour and a citation footer for grounded replies.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/ui/styles"
	"github.com/jeranaias/gen2-tui/internal/util"
)

// DefaultWordWrap is the wrap width used when none is given.
const DefaultWordWrap = 80

// maxSourceTitleWidth bounds citation titles in the footer.
const maxSourceTitleWidth = 50

// Markdown renders markdown content for terminal display.
// USABILITY: Renders markdown responses with syntax highlighting and formatting.
type Markdown struct {
	renderer *glamour.TermRenderer
	wrap     int
}

// NewMarkdown creates a renderer wrapping at the given width. A width of 0
// uses DefaultWordWrap. If glamour initialization fails the renderer still
// works, passing content through unformatted.
func NewMarkdown(wrap int) *Markdown {
	if wrap <= 0 {
		wrap = DefaultWordWrap
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		r = nil
	}
	return &Markdown{renderer: r, wrap: wrap}
}

// Render renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func (m *Markdown) Render(content string) string {
	if m.renderer == nil {
		return content
	}

	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// RenderMessage renders a reply and, when grounded, appends the citation
// footer.
func (m *Markdown) RenderMessage(msg model.Message) string {
	out := m.Render(msg.Content)
	if footer := SourcesFooter(msg.Grounding); footer != "" {
		out = strings.TrimRight(out, "\n") + "\n\n" + footer + "\n"
	}
	return out
}

// SourcesFooter formats grounding citations as a numbered source list.
// Returns "" when there is nothing to cite.
func SourcesFooter(info *model.GroundingInfo) string {
	if info.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("Sumber:\n")
	for i, chunk := range info.Chunks {
		title := chunk.Title
		if title == "" {
			title = chunk.URI
		}
		title = util.TruncateWidth(title, maxSourceTitleWidth)
		fmt.Fprintf(&b, "  [%d] %s\n      %s\n", i+1, title, styles.RenderLink(chunk.URI))
	}
	return strings.TrimRight(b.String(), "\n")
}
