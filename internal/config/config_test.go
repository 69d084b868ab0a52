// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Gemini.Model == "" {
		t.Error("Default model should be set")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Default theme = %q, want dark", cfg.UI.Theme)
	}
	if cfg.UI.WordWrap != 80 {
		t.Errorf("Default word wrap = %d, want 80", cfg.UI.WordWrap)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEN2_MODEL", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
version = "1.0.0"

[gemini]
api_key = "test-key"
model = "gemini-2.5-pro"
search_by_default = true

[ui]
theme = "light"
word_wrap = 100
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", cfg.Gemini.Model)
	}
	if !cfg.Gemini.SearchByDefault {
		t.Error("SearchByDefault should be true")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.UI.WordWrap != 100 {
		t.Errorf("WordWrap = %d", cfg.UI.WordWrap)
	}

	// Missing sections fall back to defaults.
	if cfg.Export.OutputDir != "." {
		t.Errorf("Export.OutputDir = %q, want default", cfg.Export.OutputDir)
	}
}

func TestLoadFromPath_FixesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEN2_MODEL", "env-model")
	t.Setenv("GEN2_DATA_DIR", "/tmp/gen2-data")

	cfg := Default()
	cfg.Gemini.APIKey = "file-key"
	cfg.ApplyEnvOverrides()

	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("Env should override file key, got %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "env-model" {
		t.Errorf("Model = %q", cfg.Gemini.Model)
	}
	if cfg.Storage.DataDir != "/tmp/gen2-data" {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()

	cfg.UI.Theme = "neon"
	if err := cfg.Validate(); err == nil {
		t.Error("Invalid theme should fail validation")
	}

	cfg = Default()
	cfg.UI.WordWrap = 5
	if err := cfg.Validate(); err == nil {
		t.Error("Tiny word wrap should fail validation")
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Saved config permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if loaded.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q after round trip", loaded.Gemini.Model)
	}
	if !loaded.UI.CompactMode {
		t.Error("CompactMode lost in round trip")
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/var/lib/gen2"

	path, err := cfg.DatabasePath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/var/lib/gen2", "sessions.db") {
		t.Errorf("DatabasePath = %q", path)
	}
}
