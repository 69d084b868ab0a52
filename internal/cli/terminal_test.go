// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestDetectColorsEnabled(t *testing.T) {
	tests := []struct {
		name       string
		noColor    string
		forceColor string
		stdoutTTY  bool
		want       bool
	}{
		{"tty defaults to colors", "", "", true, true},
		{"piped output defaults to plain", "", "", false, false},
		{"NO_COLOR disables on a tty", "1", "", true, false},
		{"FORCE_COLOR enables when piped", "", "1", false, true},
		{"NO_COLOR wins over FORCE_COLOR", "1", "1", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("FORCE_COLOR", tt.forceColor)
			if got := detectColorsEnabled(tt.stdoutTTY); got != tt.want {
				t.Errorf("detectColorsEnabled(%v) = %v, want %v", tt.stdoutTTY, got, tt.want)
			}
		})
	}
}

func TestGetColorProfile_NoColor(t *testing.T) {
	// Force the detection through the NO_COLOR branch before the
	// package-level once latches a value.
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FORCE_COLOR", "")

	if got := GetColorProfile(); got != termenv.Ascii {
		t.Errorf("GetColorProfile() with NO_COLOR = %v, want termenv.Ascii", got)
	}
}
