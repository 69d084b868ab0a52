// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
)

func TestArgParserSubcommand(t *testing.T) {
	args := NewArgParser([]string{"sessions", "list", "--json"})

	if args.Subcommand() != "sessions" {
		t.Errorf("Subcommand = %q", args.Subcommand())
	}
	if args.Positional(1) != "list" {
		t.Errorf("Positional(1) = %q", args.Positional(1))
	}
	if !args.BoolFlag("json") {
		t.Error("BoolFlag(json) should be true")
	}
}

func TestArgParserFlagFormats(t *testing.T) {
	args := NewArgParser([]string{"ask", "--model", "gemini-2.5-pro", "--limit=10", "--search", "halo", "dunia"})

	if args.Flag("model") != "gemini-2.5-pro" {
		t.Errorf("Flag(model) = %q", args.Flag("model"))
	}
	if args.Flag("limit") != "10" {
		t.Errorf("Flag(limit) = %q", args.Flag("limit"))
	}
	if !args.BoolFlag("search") {
		t.Error("BoolFlag(search) should be true")
	}

	// --search is bool-only, so "halo dunia" stays positional.
	if got := JoinPositionalArgs(args, 1); got != "halo dunia" {
		t.Errorf("JoinPositionalArgs = %q", got)
	}
}

func TestArgParserExplicitBool(t *testing.T) {
	args := NewArgParser([]string{"--json=false", "--ephemeral=true"})

	if args.BoolFlag("json") {
		t.Error("--json=false should parse as false")
	}
	if !args.BoolFlag("ephemeral") {
		t.Error("--ephemeral=true should parse as true")
	}
}

func TestArgParserDefaults(t *testing.T) {
	args := NewArgParser(nil)

	if args.Subcommand() != "" {
		t.Errorf("Subcommand = %q, want empty", args.Subcommand())
	}
	if args.Flag("missing") != "" {
		t.Error("Missing flag should be empty")
	}
	if args.FlagOrDefault("missing", "fallback") != "fallback" {
		t.Error("FlagOrDefault should fall back")
	}
	if args.Positional(5) != "" {
		t.Error("Out-of-range positional should be empty")
	}
	if args.PositionalCount() != 0 {
		t.Errorf("PositionalCount = %d", args.PositionalCount())
	}
}

func TestArgParserHasFlag(t *testing.T) {
	args := NewArgParser([]string{"--out", "/tmp", "--json"})

	if !args.HasFlag("out") || !args.HasFlag("json") {
		t.Error("HasFlag should find both flag kinds")
	}
	if args.HasFlag("missing") {
		t.Error("HasFlag should be false for missing flags")
	}
}
