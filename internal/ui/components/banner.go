// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gen2-tui/internal/ui/styles"
)

// =============================================================================
// WARNING BANNERS
// =============================================================================

// MissingKeyBanner renders the warning shown when no API key is configured.
// The chat input stays usable so the user can read history, but sends are
// refused until a key is provided.
func MissingKeyBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true).
		Width(width).
		Align(lipgloss.Center)

	return style.Render(styles.StatusIndicators.Warning +
		" GEMINI_API_KEY is not set. Export it or add it to ~/.gen2/config.toml.")
}

// EphemeralBanner renders the notice shown when sessions are memory-only.
func EphemeralBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Width(width).
		Align(lipgloss.Center)

	return style.Render(styles.StatusIndicators.Info +
		" Ephemeral mode: sessions are not saved to disk.")
}
