// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask
// Short:   Send a single message and print the reply
//
// Examples:
//   gen2 ask "apa itu goroutine?"
//   gen2 ask --search "berita AI terbaru"
//   gen2 ask --json "jelaskan context di Go"
//
// The exchange is stored as a regular session unless --ephemeral is set.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/render"
	"github.com/jeranaias/gen2-tui/internal/ui/styles"
)

// askJSONOutput is the machine-readable shape of an ask reply.
type askJSONOutput struct {
	SessionID string                `json:"session_id,omitempty"`
	Message   string                `json:"message"`
	Reply     string                `json:"reply"`
	Failed    bool                  `json:"failed,omitempty"`
	Error     string                `json:"error,omitempty"`
	Sources   []model.GroundingChunk `json:"sources,omitempty"`
}

// HandleAskCommand handles the "ask" command.
func HandleAskCommand(args *ArgParser) error {
	message := JoinPositionalArgs(args, 1)
	if message == "" {
		return fmt.Errorf("usage: gen2 ask <message>")
	}

	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.Ctrl.SendMessage(context.Background(), message)
	if err != nil {
		return err
	}

	if args.BoolFlag("json") {
		out := askJSONOutput{
			SessionID: env.Ctrl.SessionID(),
			Message:   message,
			Reply:     result.Reply.Content,
			Failed:    result.Failed,
		}
		if result.Failed {
			out.Error = result.Err.Error()
		}
		if !result.Reply.Grounding.IsEmpty() {
			out.Sources = result.Reply.Grounding.Chunks
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if result.Failed {
		fmt.Fprintln(os.Stderr, styles.RenderError(result.Err.Error()))
		fmt.Println(result.Reply.Content)
		return nil
	}

	// USABILITY: Render markdown on a color terminal, plain text when
	// piped or when NO_COLOR asks for undecorated output.
	if IsStdoutTTY() && ColorsEnabled() {
		md := render.NewMarkdown(GetTerminalWidth() - 2)
		fmt.Println(md.RenderMessage(result.Reply))
	} else {
		fmt.Println(result.Reply.Content)
		if footer := render.SourcesFooter(result.Reply.Grounding); footer != "" {
			fmt.Println(footer)
		}
	}

	return nil
}
