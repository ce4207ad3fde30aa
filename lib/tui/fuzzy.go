// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

func init() {
	algo.Init("default")
}

// FuzzyResult is the outcome of matching a pattern against one text.
type FuzzyResult struct {
	// Matched is true when every pattern rune was found in order.
	Matched bool
	// Score ranks matches; higher is better. Meaningful only when
	// Matched.
	Score int
	// Positions are the rune indices of the matched characters in the
	// text, for highlight rendering. Sorted ascending.
	Positions []int
}

// NewSlab allocates the scratch memory the matcher reuses across calls.
// One slab per matching loop; a slab must not be shared between
// goroutines.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch runs fzf's V2 fuzzy algorithm: case-insensitive, unicode-
// normalizing, forward matching with position capture. pattern is the
// query as runes; slab comes from NewSlab.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}

	matched := FuzzyResult{Matched: true, Score: result.Score}
	if positions != nil {
		matched.Positions = *positions
		// fzf reports positions in reverse order.
		for i, j := 0, len(matched.Positions)-1; i < j; i, j = i+1, j-1 {
			matched.Positions[i], matched.Positions[j] = matched.Positions[j], matched.Positions[i]
		}
	}
	return matched
}
