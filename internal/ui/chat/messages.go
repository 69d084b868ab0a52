// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the gen2 TUI.
//
// This file defines the Bubble Tea message types and the commands that
// produce them. The controller call runs inside a tea.Cmd so the event
// loop stays responsive while a request is in flight.
package chat

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gen2-tui/internal/controller"
	"github.com/jeranaias/gen2-tui/internal/export"
	"github.com/jeranaias/gen2-tui/internal/model"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// sendResultMsg delivers the outcome of a completed send cycle.
type sendResultMsg struct {
	result *controller.SendResult
	err    error
}

// sessionLoadedMsg confirms a session load.
type sessionLoadedMsg struct {
	id  string
	err error
}

// sessionDeletedMsg confirms a session delete.
type sessionDeletedMsg struct {
	id  string
	err error
}

// sessionsClearedMsg confirms a clear-all.
type sessionsClearedMsg struct {
	err error
}

// exportDoneMsg reports the result of an export.
type exportDoneMsg struct {
	path string
	err  error
}

// noticeExpiredMsg clears a transient status notice.
type noticeExpiredMsg struct {
	seq int
}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd runs one blocking send cycle on the controller.
func sendCmd(ctrl *controller.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		result, err := ctrl.SendMessage(context.Background(), text)
		if errors.Is(err, context.Canceled) {
			// The conversation was switched mid-flight; nothing to show.
			return nil
		}
		return sendResultMsg{result: result, err: err}
	}
}

// loadSessionCmd loads a stored session into the controller.
func loadSessionCmd(ctrl *controller.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return sessionLoadedMsg{id: id, err: ctrl.LoadSession(id)}
	}
}

// deleteSessionCmd deletes a stored session.
func deleteSessionCmd(ctrl *controller.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return sessionDeletedMsg{id: id, err: ctrl.DeleteSession(id)}
	}
}

// clearSessionsCmd deletes every stored session.
func clearSessionsCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		return sessionsClearedMsg{err: ctrl.ClearAllSessions()}
	}
}

// exportCmd writes the active conversation to a markdown file.
func exportCmd(summary model.SessionSummary, transcript model.Transcript, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		path, err := export.ExportMarkdown(&export.Session{
			Summary:  summary,
			Messages: transcript,
		}, opts)
		return exportDoneMsg{path: path, err: err}
	}
}
