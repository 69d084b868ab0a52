// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gen2-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

// Welcome renders the empty conversation state.
type Welcome struct {
	modelName string

	width  int
	height int
}

// NewWelcome creates a new welcome screen.
func NewWelcome() Welcome {
	return Welcome{
		modelName: "gemini-3-flash-preview",
	}
}

// SetModelName sets the model name shown beneath the greeting.
func (w *Welcome) SetModelName(name string) {
	w.modelName = name
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// View renders the welcome screen centered in the available space.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	logoStyle := lipgloss.NewStyle().
		Foreground(styles.Blue).
		Bold(true)

	greetingStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	content := logoStyle.Render(w.renderLogo()) + "\n\n" +
		greetingStyle.Render("Ada yang bisa saya bantu?") + "\n\n" +
		hintStyle.Render(w.modelName)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (w Welcome) renderLogo() string {
	if w.width >= 50 {
		// ASCII only for maximum terminal compatibility.
		return `   ____            ____
  / ___| ___ _ __ |___ \
 | |  _ / _ \ '_ \  __) |
 | |_| |  __/ | | |/ __/
  \____|\___|_| |_|_____|`
	}
	return "Gen2"
}
