// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view for the gen2 TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gen2-tui/internal/config"
	"github.com/jeranaias/gen2-tui/internal/controller"
	"github.com/jeranaias/gen2-tui/internal/export"
	"github.com/jeranaias/gen2-tui/internal/render"
	"github.com/jeranaias/gen2-tui/internal/ui/components"
	"github.com/jeranaias/gen2-tui/internal/ui/styles"
)

// =============================================================================
// LAYOUT CONSTANTS
// =============================================================================

const (
	noticeDuration  = 4 * time.Second
	sidebarWidth    = 30
	inputHeight     = 3
	statusBarHeight = 1
	minChatWidth    = 40
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the root Bubble Tea model for the chat interface.
type Model struct {
	ctrl *controller.Controller
	cfg  *config.Config

	// Components
	input     textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model
	sidebar   components.Sidebar
	statusBar components.StatusBar
	welcome   components.Welcome

	// Rendering
	markdown *render.Markdown
	keys     KeyMap

	// Layout
	width  int
	height int

	// State
	showSidebar bool
	showHelp    bool
	sending     bool
	noticeSeq   int

	// confirmClear arms the clear-all shortcut; the next C-d clears,
	// anything else disarms.
	confirmClear bool
}

// New creates the chat model wired to a controller.
func New(ctrl *controller.Controller, cfg *config.Config) Model {
	input := textarea.New()
	input.Placeholder = "Kirim pesan..."
	input.CharLimit = 8000
	input.SetHeight(inputHeight - 1)
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	welcome := components.NewWelcome()
	welcome.SetModelName(cfg.Gemini.Model)

	m := Model{
		ctrl:        ctrl,
		cfg:         cfg,
		input:       input,
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		sidebar:     components.NewSidebar(),
		statusBar:   components.NewStatusBar(),
		welcome:     welcome,
		markdown:    render.NewMarkdown(cfg.UI.WordWrap),
		keys:        DefaultKeyMap(),
		showSidebar: cfg.UI.ShowSidebar,
	}
	if cfg.Gemini.SearchByDefault {
		m.ctrl.SetSearchEnabled(true)
	}
	m.statusBar.SetSearchEnabled(m.ctrl.SearchEnabled())
	m.statusBar.SetTitle(m.ctrl.Title())
	m.refreshSidebar()
	return m
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// refreshSidebar reloads the session list from the controller.
func (m *Model) refreshSidebar() {
	m.sidebar.SetSessions(m.ctrl.Sessions())
	m.sidebar.SetActiveID(m.ctrl.SessionID())
}

// refreshViewport re-renders the transcript into the viewport and keeps
// the latest exchange visible.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// exportOptions builds export options from the configuration.
func (m *Model) exportOptions() *export.Options {
	return &export.Options{
		OutputDir:         m.cfg.Export.OutputDir,
		IncludeMetadata:   true,
		IncludeTimestamps: m.cfg.Export.IncludeTimestamps,
	}
}

// setNotice shows a transient status-bar notice for a few seconds.
func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.statusBar.SetNotice(text)
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// resize recomputes component dimensions from the window size.
func (m *Model) resize() {
	chatWidth := m.width
	if m.showSidebar && m.width-sidebarWidth >= minChatWidth {
		chatWidth = m.width - sidebarWidth
	}

	contentHeight := m.height - inputHeight - statusBarHeight - 1
	if contentHeight < 3 {
		contentHeight = 3
	}

	m.viewport.Width = chatWidth
	m.viewport.Height = contentHeight
	m.input.SetWidth(chatWidth - 2)
	m.sidebar.SetSize(sidebarWidth, contentHeight)
	m.statusBar.SetWidth(m.width)
	m.welcome.SetSize(chatWidth, contentHeight)

	wrap := chatWidth - 4
	if wrap > m.cfg.UI.WordWrap {
		wrap = m.cfg.UI.WordWrap
	}
	if wrap >= 20 {
		m.markdown = render.NewMarkdown(wrap)
	}
	m.refreshViewport()
}
