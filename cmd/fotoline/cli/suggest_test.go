// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"feed", "", 4},
		{"feed", "feed", 0},
		{"fed", "feed", 1},
		{"folow", "follow", 1},
		{"liek", "like", 2},
		{"profile", "post", 6},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "feed"},
		{Name: "follow"},
		{Name: "profile"},
	}

	if got := suggestCommand("folow", commands); got != "follow" {
		t.Errorf("suggestCommand(folow) = %q", got)
	}
	if got := suggestCommand("zzzzzzzzzz", commands); got != "" {
		t.Errorf("suggestCommand(zzzzzzzzzz) = %q, want no suggestion", got)
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.String("caption", "", "")
	flagSet.BoolP("yes", "y", false, "")

	if got := suggestFlag([]string{"--captoin", "x"}, flagSet); got != "--caption" {
		t.Errorf("suggestFlag(--captoin) = %q", got)
	}
	if got := suggestFlag([]string{"--yess"}, flagSet); got != "--yes" {
		t.Errorf("suggestFlag(--yess) = %q", got)
	}
	// Defined flags produce no suggestion.
	if got := suggestFlag([]string{"--caption", "x"}, flagSet); got != "" {
		t.Errorf("suggestFlag(--caption) = %q, want none", got)
	}
}
