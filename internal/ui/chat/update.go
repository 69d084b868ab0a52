// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gen2-tui/internal/controller"
	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/provider"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.sending {
			// Keep the thinking line animated while a request is out.
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
		}
		return m, cmd

	case sendResultMsg:
		return m.handleSendResult(msg)

	case sessionLoadedMsg:
		m.sending = false
		if msg.err != nil {
			return m, m.setNotice("Load failed: " + msg.err.Error())
		}
		m.refreshSidebar()
		m.refreshViewport()
		m.statusBar.SetTitle(m.ctrl.Title())
		m.statusBar.SetSearchEnabled(m.ctrl.SearchEnabled())
		m.showSidebar = m.cfg.UI.ShowSidebar
		m.sidebar.SetFocused(false)
		m.input.Focus()
		return m, nil

	case sessionDeletedMsg:
		if msg.err != nil {
			return m, m.setNotice("Delete failed: " + msg.err.Error())
		}
		m.refreshSidebar()
		m.refreshViewport()
		return m, nil

	case sessionsClearedMsg:
		if msg.err != nil {
			return m, m.setNotice("Clear failed: " + msg.err.Error())
		}
		m.refreshSidebar()
		m.refreshViewport()
		return m, m.setNotice("History cleared")

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.setNotice("Export failed: " + msg.err.Error())
		}
		return m, m.setNotice("Exported to " + msg.path)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.statusBar.SetNotice("")
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// handleSendResult folds a completed send cycle back into the view.
func (m Model) handleSendResult(msg sendResultMsg) (tea.Model, tea.Cmd) {
	m.sending = false
	m.statusBar.SetSending(false)

	if msg.err != nil {
		switch {
		case errors.Is(msg.err, controller.ErrEmptyMessage):
			return m, nil
		case errors.Is(msg.err, controller.ErrBusy):
			return m, m.setNotice("A request is already in flight")
		case errors.Is(msg.err, provider.ErrNotConfigured):
			return m, m.setNotice("Set GEMINI_API_KEY to start chatting")
		default:
			return m, m.setNotice("Send failed: " + msg.err.Error())
		}
	}

	m.refreshSidebar()
	m.refreshViewport()
	m.statusBar.SetTitle(m.ctrl.Title())

	var cmds []tea.Cmd
	if msg.result != nil && msg.result.Failed {
		// The fallback already sits in the transcript; surface the cause.
		if errors.Is(msg.result.Err, provider.ErrRateLimited) {
			cmds = append(cmds, m.setNotice("Rate limited; wait a moment before retrying"))
		} else {
			cmds = append(cmds, m.setNotice("Request failed: "+msg.result.Err.Error()))
		}
	}
	if saveErr := m.ctrl.LastSaveError(); saveErr != nil {
		cmds = append(cmds, m.setNotice("Save failed: "+saveErr.Error()))
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works, even mid-request.
	if key.Matches(msg, m.keys.Quit) {
		m.ctrl.CancelSend()
		return m, tea.Quit
	}

	// Everything except the armed C-d disarms the clear confirmation.
	if m.confirmClear && msg.String() != "ctrl+d" {
		m.confirmClear = false
	}

	if m.sidebar.Focused() {
		return m.handleSidebarKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Cancel):
		if m.sending {
			m.ctrl.CancelSend()
			return m, nil
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		m.ctrl.NewChat()
		m.sending = false
		m.statusBar.SetSending(false)
		m.statusBar.SetTitle("")
		m.refreshSidebar()
		m.refreshViewport()
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		on := m.ctrl.ToggleSearch()
		m.statusBar.SetSearchEnabled(on)
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		m.showSidebar = !m.showSidebar
		m.sidebar.SetFocused(m.showSidebar)
		if m.showSidebar {
			m.refreshSidebar()
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Export):
		if len(m.ctrl.Transcript()) == 0 {
			return m, m.setNotice("Nothing to export")
		}
		summary := m.activeSummary()
		return m, exportCmd(summary, m.ctrl.Transcript(), m.exportOptions())

	case key.Matches(msg, m.keys.Help):
		// Only toggle help when the input is empty, so "?" stays typable.
		if strings.TrimSpace(m.input.Value()) == "" {
			m.showHelp = !m.showHelp
			return m, nil
		}
	}

	// Viewport scrolling works while typing.
	switch {
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSidebarKey routes keys while the history sidebar has focus.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sidebar.Filtering() {
		switch msg.Type {
		case tea.KeyEsc:
			m.sidebar.ClearFilter()
			return m, nil
		case tea.KeyEnter:
			m.sidebar.StopFiltering()
			return m, nil
		case tea.KeyBackspace:
			m.sidebar.BackspaceFilter()
			return m, nil
		case tea.KeyRunes, tea.KeySpace:
			m.sidebar.AppendFilterRune(msg.String())
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.CursorUp()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.sidebar.CursorDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if sel := m.sidebar.Selected(); sel != nil {
			return m, loadSessionCmd(m.ctrl, sel.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.confirmClear {
			m.confirmClear = false
			return m, clearSessionsCmd(m.ctrl)
		}
		if sel := m.sidebar.Selected(); sel != nil {
			return m, deleteSessionCmd(m.ctrl, sel.ID)
		}
		// C-d on an empty list arms clear-all.
		m.confirmClear = true
		return m, m.setNotice("Press C-d again to clear all history")

	case key.Matches(msg, m.keys.Sidebar), key.Matches(msg, m.keys.Cancel):
		m.showSidebar = false
		m.sidebar.SetFocused(false)
		m.sidebar.ClearFilter()
		m.input.Focus()
		m.resize()
		return m, nil
	}

	if msg.String() == "/" {
		m.sidebar.StartFiltering()
		return m, nil
	}
	if msg.String() == "C" {
		m.confirmClear = true
		return m, m.setNotice("Press C-d to clear all history")
	}

	return m, nil
}

// submit sends the typed message through the controller.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.sending {
		return m, m.setNotice("A request is already in flight")
	}
	if !m.cfg.IsConfigured() {
		return m, m.setNotice("Set GEMINI_API_KEY to start chatting")
	}

	m.input.Reset()
	m.sending = true
	m.statusBar.SetSending(true)

	// Echo the user turn immediately; the controller appends the same
	// turn before the provider call, so the next refresh agrees.
	m.viewport.SetContent(m.renderTranscriptWithPending(text))
	m.viewport.GotoBottom()

	return m, sendCmd(m.ctrl, text)
}

// updateComponents forwards unhandled messages to the focused components.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// activeSummary builds a summary for the active conversation. A chat
// that has not been persisted yet gets placeholder metadata.
func (m Model) activeSummary() model.SessionSummary {
	id := m.ctrl.SessionID()
	for _, sess := range m.ctrl.Sessions() {
		if sess.ID == id {
			return sess
		}
	}
	now := time.Now()
	return model.SessionSummary{
		ID:        id,
		Title:     m.ctrl.Title(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
