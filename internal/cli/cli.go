// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface of gen2:
// one-shot questions, a line-based REPL, and session management.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/gen2-tui/internal/config"
	"github.com/jeranaias/gen2-tui/internal/controller"
	"github.com/jeranaias/gen2-tui/internal/provider"
	"github.com/jeranaias/gen2-tui/internal/storage"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// =============================================================================
// ENVIRONMENT SETUP
// =============================================================================

// Env bundles the wired application services for a CLI command.
type Env struct {
	Config *config.Config
	Store  *storage.SessionStore
	Ctrl   *controller.Controller

	kv storage.KV
}

// Close releases the underlying storage.
func (e *Env) Close() error {
	if e.kv != nil {
		return e.kv.Close()
	}
	return nil
}

// Setup loads configuration and wires storage, provider, and controller.
// An explicit --config path and --ephemeral flag take precedence over the
// file configuration.
func Setup(args *ArgParser) (*Env, error) {
	ConfigureColorOutput()

	var cfg *config.Config
	var err error

	if path := args.Flag("config"); path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)

	if args.BoolFlag("ephemeral") {
		cfg.Storage.Ephemeral = true
	}
	if m := args.Flag("model"); m != "" {
		cfg.Gemini.Model = m
	}

	var kv storage.KV
	if cfg.Storage.Ephemeral {
		kv = storage.NewMemoryKV()
	} else {
		dbPath, err := cfg.DatabasePath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		kv, err = storage.OpenSQLiteKV(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
	}

	store := storage.NewSessionStore(kv)
	ctrl := controller.New(store, provider.NewGeminiProvider(cfg.Gemini.APIKey, cfg.Gemini.Model))
	ctrl.SetSearchEnabled(cfg.Gemini.SearchByDefault || args.BoolFlag("search"))

	return &Env{
		Config: cfg,
		Store:  store,
		Ctrl:   ctrl,
		kv:     kv,
	}, nil
}

// =============================================================================
// HELP AND VERSION
// =============================================================================

// PrintVersion prints the version string.
func PrintVersion() {
	fmt.Printf("gen2 %s\n", Version)
}

// PrintUsage prints top-level usage.
func PrintUsage() {
	fmt.Print(`gen2 - Gemini chat in your terminal

Usage:
  gen2                         Start the TUI (default)
  gen2 ask <message>           One-shot question, answer to stdout
  gen2 chat                    Line-based interactive chat
  gen2 sessions <subcommand>   Manage stored sessions
  gen2 version                 Print version

Global flags:
  --config PATH    Use an alternate config file
  --model NAME     Override the Gemini model
  --search         Enable web search grounding
  --ephemeral      Keep sessions in memory only
  --json           Machine-readable output (ask, sessions)

Sessions subcommands:
  gen2 sessions list [--json]
  gen2 sessions search <query>
  gen2 sessions show <id>
  gen2 sessions delete <id>
  gen2 sessions clear --yes
  gen2 sessions export <id> [--format md|json] [--out DIR]

Environment:
  GEMINI_API_KEY   Gemini API key (required for sending)
  GEN2_MODEL       Model override
  GEN2_DATA_DIR    Session database directory
`)
}
