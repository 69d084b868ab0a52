// gen2 - A DeepSeek-style Gemini chat client for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gen2-tui/internal/cli"
	"github.com/jeranaias/gen2-tui/internal/config"
	"github.com/jeranaias/gen2-tui/internal/ui/chat"
)

// Version information (set at build time)
var Version = "0.1.0"

func init() {
	cli.Version = Version
}

func main() {
	args := cli.NewArgParser(os.Args[1:])

	var err error
	switch args.Subcommand() {
	case "", "tui":
		err = runTUI(args)
	case "ask":
		err = cli.HandleAskCommand(args)
	case "chat":
		err = cli.HandleChatCommand(args)
	case "sessions":
		err = cli.HandleSessionsCommand(args)
	case "version":
		cli.PrintVersion()
	case "help":
		cli.PrintUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", args.Subcommand())
		cli.PrintUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the application and runs the Bubble Tea program.
func runTUI(args *cli.ArgParser) error {
	if args.BoolFlag("version") {
		cli.PrintVersion()
		return nil
	}
	if args.BoolFlag("help") || args.BoolFlag("h") {
		cli.PrintUsage()
		return nil
	}

	env, err := cli.Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	// Reload the global config on file edits while the TUI runs.
	if watcher, err := config.NewWatcher(); err == nil {
		defer watcher.Close()
	}

	program := tea.NewProgram(
		chat.New(env.Ctrl, env.Config),
		tea.WithAltScreen(),
	)
	_, err = program.Run()
	return err
}
