// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Session management command handlers.
//
// Command: sessions
// Short:   List, search, show, delete, and export stored sessions
//
// Examples:
//   gen2 sessions list
//   gen2 sessions list --json
//   gen2 sessions search rendang
//   gen2 sessions show sess_20250601123000
//   gen2 sessions delete sess_20250601123000
//   gen2 sessions clear --yes
//   gen2 sessions export sess_20250601123000 --format json --out ./exports
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/gen2-tui/internal/export"
	"github.com/jeranaias/gen2-tui/internal/model"
	"github.com/jeranaias/gen2-tui/internal/render"
	"github.com/jeranaias/gen2-tui/internal/ui/styles"
	"github.com/jeranaias/gen2-tui/internal/util"
)

// HandleSessionsCommand dispatches the "sessions" subcommands.
func HandleSessionsCommand(args *ArgParser) error {
	env, err := Setup(args)
	if err != nil {
		return err
	}
	defer env.Close()

	switch args.Positional(1) {
	case "list", "":
		return sessionsList(env, args)
	case "search":
		return sessionsSearch(env, args)
	case "show":
		return sessionsShow(env, args)
	case "delete":
		return sessionsDelete(env, args)
	case "clear":
		return sessionsClear(env, args)
	case "export":
		return sessionsExport(env, args)
	default:
		return fmt.Errorf("unknown sessions subcommand %q (valid: list, search, show, delete, clear, export)", args.Positional(1))
	}
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func sessionsList(env *Env, args *ArgParser) error {
	return printSummaries(env.Store.List(), args.BoolFlag("json"))
}

func sessionsSearch(env *Env, args *ArgParser) error {
	query := JoinPositionalArgs(args, 2)
	if query == "" {
		return fmt.Errorf("usage: gen2 sessions search <query>")
	}
	return printSummaries(env.Store.Search(query), args.BoolFlag("json"))
}

func sessionsShow(env *Env, args *ArgParser) error {
	id := args.Positional(2)
	if id == "" {
		return fmt.Errorf("usage: gen2 sessions show <id>")
	}

	transcript, err := env.Store.Load(id)
	if err != nil {
		return err
	}

	if args.BoolFlag("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(transcript)
	}

	summary, _ := env.Store.Get(id)
	fmt.Println(headerStyle.Render(summary.Title))
	fmt.Println(infoStyle.Render(strings.Repeat("-", 30)))
	fmt.Println()

	md := render.NewMarkdown(GetTerminalWidth() - 2)
	for _, msg := range transcript {
		if msg.Role == model.RoleUser {
			fmt.Printf("%s %s\n\n", promptStyle.Render("You:"), msg.Content)
			continue
		}
		fmt.Printf("%s\n", headerStyle.Render("Gen2:"))
		if IsStdoutTTY() && ColorsEnabled() {
			fmt.Println(md.RenderMessage(msg))
		} else {
			fmt.Println(msg.Content)
			if footer := render.SourcesFooter(msg.Grounding); footer != "" {
				fmt.Println(footer)
			}
		}
		fmt.Println()
	}
	return nil
}

func sessionsDelete(env *Env, args *ArgParser) error {
	id := args.Positional(2)
	if id == "" {
		return fmt.Errorf("usage: gen2 sessions delete <id>")
	}
	if err := env.Store.Delete(id); err != nil {
		return err
	}
	fmt.Println(styles.RenderSuccess("Deleted " + id))
	return nil
}

func sessionsClear(env *Env, args *ArgParser) error {
	// Destructive: require an explicit --yes.
	if !args.BoolFlag("yes") && !args.BoolFlag("y") {
		return fmt.Errorf("this deletes ALL %d stored sessions; re-run with --yes to confirm", env.Store.Len())
	}
	if err := env.Store.ClearAll(); err != nil {
		return err
	}
	fmt.Println(styles.RenderSuccess("All sessions cleared"))
	return nil
}

func sessionsExport(env *Env, args *ArgParser) error {
	id := args.Positional(2)
	if id == "" {
		return fmt.Errorf("usage: gen2 sessions export <id> [--format md|json] [--out DIR]")
	}

	transcript, err := env.Store.Load(id)
	if err != nil {
		return err
	}
	summary, ok := env.Store.Get(id)
	if !ok {
		summary = model.SessionSummary{ID: id, Title: id}
	}

	session := &export.Session{Summary: summary, Messages: transcript}
	opts := &export.Options{
		OutputDir:         args.FlagOrDefault("out", env.Config.Export.OutputDir),
		IncludeMetadata:   true,
		IncludeTimestamps: env.Config.Export.IncludeTimestamps,
	}

	var path string
	switch format := args.FlagOrDefault("format", "md"); format {
	case "md", "markdown":
		path, err = export.ExportMarkdown(session, opts)
	case "json":
		path, err = export.ExportJSON(session, opts)
	default:
		return fmt.Errorf("unknown format %q (valid: md, json)", format)
	}
	if err != nil {
		return err
	}

	fmt.Println(styles.RenderSuccess("Exported " + path))
	return nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printSummaries(sessions []model.SessionSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println(infoStyle.Render("[No sessions]"))
		return nil
	}

	for _, sess := range sessions {
		fmt.Printf("%s  %s  %s\n",
			infoStyle.Render(sess.UpdatedAt.Format("2006-01-02 15:04")),
			commandStyle.Render(util.PadRight(util.TruncateWidth(sess.Title, 40), 40)),
			sess.ID)
	}
	return nil
}
