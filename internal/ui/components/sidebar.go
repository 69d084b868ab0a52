// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the gen2 TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/ui/styles"
	"github.com/jeranaias/gen2-tui/internal/util"
)

// =============================================================================
// SIDEBAR MODEL
// =============================================================================

// Sidebar renders the session history list with an optional filter.
type Sidebar struct {
	sessions []model.SessionSummary
	filtered []model.SessionSummary

	// Filter state
	filter    string
	filtering bool

	// Selection
	cursor int

	// Active session highlight
	activeID string

	// Dimensions
	width  int
	height int

	// Focus state
	focused bool
}

// NewSidebar creates an empty sidebar.
func NewSidebar() Sidebar {
	return Sidebar{width: 28}
}

// SetSessions replaces the session list (newest first) and re-applies
// the current filter.
func (s *Sidebar) SetSessions(sessions []model.SessionSummary) {
	s.sessions = sessions
	s.applyFilter()
	if s.cursor >= len(s.filtered) {
		s.cursor = len(s.filtered) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// SetActiveID marks the session highlighted as currently open.
func (s *Sidebar) SetActiveID(id string) {
	s.activeID = id
}

// SetSize updates the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetFocused sets keyboard focus on the sidebar.
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// Focused reports whether the sidebar has keyboard focus.
func (s *Sidebar) Focused() bool {
	return s.focused
}

// Len returns the number of visible (filtered) sessions.
func (s *Sidebar) Len() int {
	return len(s.filtered)
}

// =============================================================================
// FILTERING
// =============================================================================

// SetFilter sets the title filter and resets the cursor.
func (s *Sidebar) SetFilter(query string) {
	s.filter = query
	s.applyFilter()
	s.cursor = 0
}

// Filter returns the current filter query.
func (s *Sidebar) Filter() string {
	return s.filter
}

// StartFiltering puts the sidebar into filter-entry mode.
func (s *Sidebar) StartFiltering() {
	s.filtering = true
}

// StopFiltering leaves filter-entry mode, keeping the filter applied.
func (s *Sidebar) StopFiltering() {
	s.filtering = false
}

// ClearFilter removes the filter and leaves filter-entry mode.
func (s *Sidebar) ClearFilter() {
	s.filter = ""
	s.filtering = false
	s.applyFilter()
	s.cursor = 0
}

// Filtering reports whether the sidebar is in filter-entry mode.
func (s *Sidebar) Filtering() bool {
	return s.filtering
}

// AppendFilterRune appends typed text to the filter query.
func (s *Sidebar) AppendFilterRune(text string) {
	s.SetFilter(s.filter + text)
	s.filtering = true
}

// BackspaceFilter removes the last rune from the filter query.
func (s *Sidebar) BackspaceFilter() {
	if s.filter == "" {
		return
	}
	runes := []rune(s.filter)
	s.SetFilter(string(runes[:len(runes)-1]))
	s.filtering = true
}

func (s *Sidebar) applyFilter() {
	if s.filter == "" {
		s.filtered = s.sessions
		return
	}
	filtered := make([]model.SessionSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		// Same folding as the store's Search, so both surfaces agree on
		// which Unicode titles match.
		if util.ContainsFold(sess.Title, s.filter) {
			filtered = append(filtered, sess)
		}
	}
	s.filtered = filtered
}

// =============================================================================
// NAVIGATION
// =============================================================================

// CursorUp moves the selection up.
func (s *Sidebar) CursorUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// CursorDown moves the selection down.
func (s *Sidebar) CursorDown() {
	if s.cursor < len(s.filtered)-1 {
		s.cursor++
	}
}

// Selected returns the summary under the cursor, or nil when the list
// is empty.
func (s *Sidebar) Selected() *model.SessionSummary {
	if s.cursor < 0 || s.cursor >= len(s.filtered) {
		return nil
	}
	sess := s.filtered[s.cursor]
	return &sess
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the sidebar.
func (s *Sidebar) View() string {
	width := s.width
	if width < 16 {
		width = 16
	}
	innerWidth := width - 2 // border overhead

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("History"))
	b.WriteString("\n")

	// Filter line
	if s.filtering || s.filter != "" {
		filterStyle := lipgloss.NewStyle().Foreground(styles.Cyan)
		prompt := "/" + s.filter
		if s.filtering {
			prompt += "_"
		}
		b.WriteString(filterStyle.Render(util.TruncateWidth(prompt, innerWidth)))
		b.WriteString("\n")
	}

	if len(s.filtered) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)
		if s.filter != "" {
			b.WriteString(emptyStyle.Render("No matches"))
		} else {
			b.WriteString(emptyStyle.Render("No sessions yet"))
		}
	} else {
		maxRows := s.height - 4
		if maxRows < 1 {
			maxRows = 1
		}
		start := 0
		if s.cursor >= maxRows {
			start = s.cursor - maxRows + 1
		}
		end := start + maxRows
		if end > len(s.filtered) {
			end = len(s.filtered)
		}

		for i := start; i < end; i++ {
			b.WriteString(s.renderRow(i, innerWidth))
			if i < end-1 {
				b.WriteString("\n")
			}
		}

		if end < len(s.filtered) {
			moreStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
			b.WriteString("\n")
			b.WriteString(moreStyle.Render(fmt.Sprintf("+%d more", len(s.filtered)-end)))
		}
	}

	borderColor := styles.Overlay
	if s.focused {
		borderColor = styles.FocusRing
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(innerWidth).
		Height(s.height - 2).
		Render(b.String())

	return box
}

func (s *Sidebar) renderRow(i, width int) string {
	sess := s.filtered[i]
	title := sess.Title
	if title == "" {
		title = sess.ID
	}

	marker := "  "
	if sess.ID == s.activeID {
		marker = "* "
	}
	line := util.TruncateWidth(marker+title, width)
	line = util.PadRight(line, width)

	if i == s.cursor {
		style := lipgloss.NewStyle().
			Foreground(styles.TextPrimary).
			Bold(true)
		if s.focused {
			style = style.Background(styles.SelectionBg)
		}
		return style.Render(line)
	}

	rowStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	if sess.ID == s.activeID {
		rowStyle = lipgloss.NewStyle().Foreground(styles.Blue)
	}
	return rowStyle.Render(line)
}
