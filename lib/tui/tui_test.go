// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLoadTheme(t *testing.T) {
	t.Run("empty path is the default", func(t *testing.T) {
		theme, err := LoadTheme("")
		if err != nil {
			t.Fatalf("LoadTheme: %v", err)
		}
		if theme != DefaultTheme {
			t.Fatal("empty path changed the theme")
		}
	})

	t.Run("missing file is the default", func(t *testing.T) {
		theme, err := LoadTheme(filepath.Join(t.TempDir(), "absent.jsonc"))
		if err != nil {
			t.Fatalf("LoadTheme: %v", err)
		}
		if theme != DefaultTheme {
			t.Fatal("missing file changed the theme")
		}
	})

	t.Run("overrides apply on top of defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "theme.jsonc")
		content := `{
			// brighter selection
			"selected_background": "24",
			"username": "99", // trailing comma below is fine
		}`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing theme: %v", err)
		}

		theme, err := LoadTheme(path)
		if err != nil {
			t.Fatalf("LoadTheme: %v", err)
		}
		if theme.SelectedBackground != lipgloss.Color("24") {
			t.Errorf("SelectedBackground = %q, want 24", theme.SelectedBackground)
		}
		if theme.Username != lipgloss.Color("99") {
			t.Errorf("Username = %q, want 99", theme.Username)
		}
		if theme.NormalText != DefaultTheme.NormalText {
			t.Error("untouched field lost its default")
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "theme.jsonc")
		if err := os.WriteFile(path, []byte(`{"username": [`), 0o644); err != nil {
			t.Fatalf("writing theme: %v", err)
		}
		if _, err := LoadTheme(path); err == nil {
			t.Fatal("malformed theme accepted")
		}
	})
}

func TestFuzzyMatch(t *testing.T) {
	slab := NewSlab()

	t.Run("empty pattern matches everything", func(t *testing.T) {
		if result := FuzzyMatch("anything", nil, slab); !result.Matched {
			t.Fatal("empty pattern did not match")
		}
	})

	t.Run("subsequence matches with positions", func(t *testing.T) {
		result := FuzzyMatch("golden gate sunset", []rune("ggs"), slab)
		if !result.Matched {
			t.Fatal("subsequence did not match")
		}
		if len(result.Positions) != 3 {
			t.Fatalf("got %d positions, want 3", len(result.Positions))
		}
		for i := 1; i < len(result.Positions); i++ {
			if result.Positions[i] <= result.Positions[i-1] {
				t.Fatalf("positions not ascending: %v", result.Positions)
			}
		}
	})

	t.Run("case-insensitive", func(t *testing.T) {
		if result := FuzzyMatch("Golden Gate", []rune("golden"), slab); !result.Matched {
			t.Fatal("case difference broke the match")
		}
	})

	t.Run("out-of-order pattern does not match", func(t *testing.T) {
		if result := FuzzyMatch("abc", []rune("ca"), slab); result.Matched {
			t.Fatal("out-of-order pattern matched")
		}
	})

	t.Run("tighter match scores higher", func(t *testing.T) {
		tight := FuzzyMatch("sunset", []rune("sun"), slab)
		loose := FuzzyMatch("s_u_x_x_n_x", []rune("sun"), slab)
		if !tight.Matched || !loose.Matched {
			t.Fatal("both should match")
		}
		if tight.Score <= loose.Score {
			t.Fatalf("tight score %d not above loose score %d", tight.Score, loose.Score)
		}
	})
}

func TestRenderScrollbar(t *testing.T) {
	theme := DefaultTheme

	t.Run("zero height renders nothing", func(t *testing.T) {
		if got := RenderScrollbar(theme, 0, 10, 5, 0, false); got != "" {
			t.Fatalf("got %q, want empty", got)
		}
	})

	t.Run("has one line per row", func(t *testing.T) {
		got := RenderScrollbar(theme, 8, 100, 10, 30, true)
		if lines := strings.Count(got, "\n") + 1; lines != 8 {
			t.Fatalf("got %d lines, want 8", lines)
		}
	})

	t.Run("full thumb when content fits", func(t *testing.T) {
		got := RenderScrollbar(theme, 4, 3, 10, 0, false)
		if strings.Contains(got, "│") {
			t.Fatal("track visible though content fits")
		}
	})
}
