// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/ui/components"
	"github.com/jeranaias/gen2-tui/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat layout.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	if !m.cfg.IsConfigured() {
		sections = append(sections, components.MissingKeyBanner(m.width))
	} else if m.cfg.Storage.Ephemeral {
		sections = append(sections, components.EphemeralBanner(m.width))
	}

	content := m.renderContent()
	if m.showSidebar && m.width-sidebarWidth >= minChatWidth {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), content)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderInput())
	sections = append(sections, m.statusBar.View())

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return view
}

// renderContent renders the transcript viewport or the welcome screen.
func (m Model) renderContent() string {
	if len(m.ctrl.Transcript()) == 0 && !m.sending {
		return m.welcome.View()
	}
	return m.viewport.View()
}

// renderInput renders the text input box.
func (m Model) renderInput() string {
	borderColor := styles.Overlay
	if m.input.Focused() {
		borderColor = styles.FocusRing
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(m.viewport.Width - 2).
		Render(m.input.View())
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// renderTranscript renders every message in the active conversation.
func (m Model) renderTranscript() string {
	transcript := m.ctrl.Transcript()
	if len(transcript) == 0 {
		return ""
	}

	parts := make([]string, 0, len(transcript)*2)
	for _, msg := range transcript {
		parts = append(parts, m.renderMessage(msg))
	}
	if m.sending {
		parts = append(parts, m.renderThinking())
	}
	return strings.Join(parts, "\n")
}

// renderTranscriptWithPending renders the transcript plus an optimistic
// user turn that the controller has not confirmed yet.
func (m Model) renderTranscriptWithPending(text string) string {
	base := m.renderTranscript()
	pending := m.renderMessage(model.NewUserMessage(text))
	if base == "" {
		return pending + "\n" + m.renderThinking()
	}
	return base + "\n" + pending + "\n" + m.renderThinking()
}

// renderMessage renders one message with its role label.
func (m Model) renderMessage(msg model.Message) string {
	var label string
	switch msg.Role {
	case model.RoleUser:
		labelStyle := lipgloss.NewStyle().
			Foreground(styles.UserLabel).
			Bold(true)
		label = labelStyle.Render("You")
		bodyStyle := lipgloss.NewStyle().
			Foreground(styles.TextPrimary).
			Background(styles.UserBubbleBg).
			Padding(0, 1).
			MarginLeft(2)
		return label + "\n" + bodyStyle.Render(msg.Content) + "\n"

	default:
		labelStyle := lipgloss.NewStyle().
			Foreground(styles.ModelLabel).
			Bold(true)
		label = labelStyle.Render("Gen2")
		return label + "\n" + m.markdown.RenderMessage(msg)
	}
}

// renderThinking renders the in-flight indicator line.
func (m Model) renderThinking() string {
	style := lipgloss.NewStyle().Foreground(styles.TextMuted)
	return m.spinner.View() + style.Render(" Gen2 sedang berpikir...")
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

// renderHelpOverlay renders the full-screen keyboard help.
func (m Model) renderHelpOverlay() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true).
		Width(10)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	rows := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send message"},
		{"Esc", "Cancel in-flight request"},
		{"C-n", "New chat"},
		{"C-s", "Toggle web search grounding"},
		{"C-b", "Toggle history sidebar"},
		{"C-d", "Delete selected session (sidebar)"},
		{"C-e", "Export conversation to markdown"},
		{"/", "Filter history (sidebar)"},
		{"PgUp/PgDn", "Scroll transcript"},
		{"?", "Toggle this help"},
		{"C-c", "Quit"},
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, titleStyle.Render("Keyboard Shortcuts"), "")
	for _, r := range rows {
		lines = append(lines, keyStyle.Render(r.key)+descStyle.Render(r.desc))
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Blue).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}
