// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gen2-tui/internal/ui/styles"
	"github.com/jeranaias/gen2-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the single-line bar under the input area.
type StatusBar struct {
	title         string
	searchEnabled bool
	sending       bool
	notice        string

	width int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// SetTitle sets the active session title (empty for a fresh chat).
func (s *StatusBar) SetTitle(title string) {
	s.title = title
}

// SetSearchEnabled toggles the web-search indicator.
func (s *StatusBar) SetSearchEnabled(enabled bool) {
	s.searchEnabled = enabled
}

// SetSending toggles the in-flight indicator.
func (s *StatusBar) SetSending(sending bool) {
	s.sending = sending
}

// SetNotice sets a transient notice (save errors, export results).
func (s *StatusBar) SetNotice(notice string) {
	s.notice = notice
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// View renders the status bar.
func (s StatusBar) View() string {
	width := s.width
	if width == 0 {
		width = 80
	}

	var left []string

	title := s.title
	if title == "" {
		title = "New chat"
	}
	titleStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary).Bold(true)
	left = append(left, titleStyle.Render(util.TruncateWidth(title, width/2)))

	if s.searchEnabled {
		// Inverse badge so the grounding state stands out from the hints.
		searchStyle := lipgloss.NewStyle().
			Foreground(styles.TextInverse).
			Background(styles.Emerald).
			Bold(true).
			Padding(0, 1)
		left = append(left, searchStyle.Render("search: on"))
	} else {
		searchStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		left = append(left, searchStyle.Render("[search: off]"))
	}

	if s.sending {
		sendStyle := lipgloss.NewStyle().Foreground(styles.Amber)
		left = append(left, sendStyle.Render("sending..."))
	}

	if s.notice != "" {
		noticeStyle := lipgloss.NewStyle().Foreground(styles.Rose)
		left = append(left, noticeStyle.Render(util.TruncateWidth(s.notice, width/3)))
	}

	leftText := strings.Join(left, "  ")

	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	rightText := hintStyle.Render("C-n new  C-s search  C-b history  ? help")

	gap := width - lipgloss.Width(leftText) - lipgloss.Width(rightText)
	if gap < 1 {
		return lipgloss.NewStyle().Width(width).Render(leftText)
	}

	bar := leftText + strings.Repeat(" ", gap) + rightText
	return lipgloss.NewStyle().Width(width).Render(bar)
}
