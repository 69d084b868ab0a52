// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the gen2 CLI.
//
// USABILITY: Markdown rendering and input history for better CLI experience
//
// Command: chat
// Short:   Start an interactive line-based chat session
//
// Examples:
//   gen2 chat                 Start chatting
//   gen2 chat --search        Start with web search grounding on
//   gen2 chat --ephemeral     Do not persist sessions
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /new, /n            Start a new conversation
//   /list, /l           List stored sessions
//   /load N             Load session by list number or id
//   /delete N           Delete session by list number or id
//   /search QUERY       Search stored sessions by title
//   /web                Toggle web search grounding
//   /export             Export the conversation to markdown
//   /clear              Delete ALL stored sessions
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/gen2-tui/internal/config"
	"github.com/jeranaias/gen2-tui/internal/export"
	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/render"
	"github.com/jeranaias/gen2-tui/internal/ui/styles"
	"github.com/jeranaias/gen2-tui/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// inputReader provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation.
type inputReader struct {
	line        *liner.State
	historyFile string
}

func newInputReader() *inputReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	r := &inputReader{
		line:        line,
		historyFile: filepath.Join(configDir, "input_history"),
	}
	r.loadHistory()
	return r
}

func (r *inputReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

func (r *inputReader) readInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *inputReader) close() {
	if err := config.EnsureConfigDir(); err == nil {
		// 0600: input history can contain sensitive prompts.
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// chatState carries the REPL state between commands.
type chatState struct {
	env *Env

	// listed maps the most recent /list or /search output numbers to ids.
	listed []model.SessionSummary

	markdown *render.Markdown
	started  time.Time
}

// HandleChatCommand handles the "chat" command.
func HandleChatCommand(args *ArgParser) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	state := &chatState{
		env:      env,
		markdown: render.NewMarkdown(GetTerminalWidth() - 2),
		started:  time.Now(),
	}

	if !args.BoolFlag("quiet") {
		printWelcome(env)
	}

	reader := newInputReader()
	defer reader.close()

	for {
		input, err := reader.readInput(promptStyle.Render("gen2> "))
		if err != nil {
			// Ctrl+C, Ctrl+D, or a read error all end the session.
			fmt.Println()
			fmt.Println(infoStyle.Render("Sampai jumpa!"))
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := state.handleSlashCommand(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				fmt.Println(infoStyle.Render("Sampai jumpa!"))
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			fmt.Println(infoStyle.Render("Sampai jumpa!"))
			return nil
		}

		state.processMessage(input)
	}
}

// processMessage runs one send cycle and prints the reply.
func (s *chatState) processMessage(input string) {
	result, err := s.env.Ctrl.SendMessage(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		return
	}

	fmt.Println()
	if result.Failed {
		fmt.Fprintln(os.Stderr, styles.RenderError(result.Err.Error()))
		fmt.Println(result.Reply.Content)
	} else if IsStdoutTTY() && ColorsEnabled() {
		fmt.Println(s.markdown.RenderMessage(result.Reply))
	} else {
		fmt.Println(result.Reply.Content)
		if footer := render.SourcesFooter(result.Reply.Grounding); footer != "" {
			fmt.Println(footer)
		}
	}
	fmt.Println()

	if saveErr := s.env.Ctrl.LastSaveError(); saveErr != nil {
		fmt.Fprintln(os.Stderr, styles.RenderWarning("save failed: "+saveErr.Error()))
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (keepGoing, error) where keepGoing=false means exit.
func (s *chatState) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printChatHelp()
		return true, nil

	case "/new", "/n":
		s.env.Ctrl.NewChat()
		fmt.Println(commandStyle.Render("[New conversation]"))
		return true, nil

	case "/list", "/l":
		s.listed = s.env.Ctrl.Sessions()
		printSessionList(s.listed)
		return true, nil

	case "/search":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /search <query>")
		}
		s.listed = s.env.Ctrl.SearchSessions(strings.Join(args, " "))
		printSessionList(s.listed)
		return true, nil

	case "/load":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /load <number|id>")
		}
		id, err := s.resolveSessionRef(args[0])
		if err != nil {
			return true, err
		}
		if err := s.env.Ctrl.LoadSession(id); err != nil {
			return true, err
		}
		fmt.Printf("%s %s\n", commandStyle.Render("[Loaded]"), s.env.Ctrl.Title())
		printTranscript(s.env.Ctrl.Transcript())
		return true, nil

	case "/delete":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /delete <number|id>")
		}
		id, err := s.resolveSessionRef(args[0])
		if err != nil {
			return true, err
		}
		if err := s.env.Ctrl.DeleteSession(id); err != nil {
			return true, err
		}
		fmt.Println(commandStyle.Render("[Deleted]"))
		return true, nil

	case "/clear":
		if err := s.env.Ctrl.ClearAllSessions(); err != nil {
			return true, err
		}
		fmt.Println(styles.RenderSuccess("All sessions cleared"))
		return true, nil

	case "/web":
		if s.env.Ctrl.ToggleSearch() {
			fmt.Println(commandStyle.Render("[Web search: on]"))
		} else {
			fmt.Println(infoStyle.Render("[Web search: off]"))
		}
		return true, nil

	case "/export":
		return true, s.exportActive()

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printChatHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// resolveSessionRef turns a list number or raw id into a session id.
func (s *chatState) resolveSessionRef(ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		listed := s.listed
		if len(listed) == 0 {
			listed = s.env.Ctrl.Sessions()
		}
		if n < 1 || n > len(listed) {
			return "", fmt.Errorf("no session number %d (run /list first)", n)
		}
		return listed[n-1].ID, nil
	}
	return ref, nil
}

// exportActive writes the active conversation to a markdown file.
func (s *chatState) exportActive() error {
	transcript := s.env.Ctrl.Transcript()
	if len(transcript) == 0 {
		return fmt.Errorf("nothing to export")
	}

	now := time.Now()
	path, err := export.ExportMarkdown(&export.Session{
		Summary: model.SessionSummary{
			ID:        s.env.Ctrl.SessionID(),
			Title:     s.env.Ctrl.Title(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Messages: transcript,
	}, &export.Options{
		OutputDir:         s.env.Config.Export.OutputDir,
		IncludeMetadata:   true,
		IncludeTimestamps: s.env.Config.Export.IncludeTimestamps,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Exported]"), path)
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(env *Env) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("gen2 interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("-", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(env.Config.Gemini.Model))

	if env.Ctrl.SearchEnabled() {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Search:"),
			commandStyle.Render("web grounding on"))
	}
	if !env.Config.IsConfigured() {
		fmt.Println(styles.RenderWarning("GEMINI_API_KEY is not set; sends will be refused"))
	}
	if env.Config.Storage.Ephemeral {
		fmt.Println(styles.RenderInfo("Ephemeral mode: sessions are not saved"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Ada yang bisa saya bantu? Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(headerStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("-", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/new, /n", "Start a new conversation"},
		{"/list, /l", "List stored sessions"},
		{"/load N", "Load session by number or id"},
		{"/delete N", "Delete session by number or id"},
		{"/search QUERY", "Search sessions by title"},
		{"/web", "Toggle web search grounding"},
		{"/export", "Export conversation to markdown"},
		{"/clear", "Delete ALL stored sessions"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+D exits, arrow keys browse input history"))
	fmt.Println()
}

// printSessionList prints numbered session summaries.
func printSessionList(sessions []model.SessionSummary) {
	if len(sessions) == 0 {
		fmt.Println(infoStyle.Render("[No sessions]"))
		return
	}

	fmt.Println()
	for i, sess := range sessions {
		fmt.Printf("  %2d. %s %s\n",
			i+1,
			commandStyle.Render(util.TruncateWidth(sess.Title, 50)),
			infoStyle.Render(sess.UpdatedAt.Format("2006-01-02 15:04")))
	}
	fmt.Println()
}

// printTranscript prints a loaded conversation as a compact history.
func printTranscript(transcript model.Transcript) {
	for _, msg := range transcript {
		label := "Gen2"
		if msg.Role == model.RoleUser {
			label = "You"
		}
		content := strings.ReplaceAll(msg.Content, "\n", " ")
		fmt.Printf("  %s: %s\n",
			headerStyle.Render(label),
			util.TruncateRunes(content, 100))
	}
	fmt.Println()
}
