// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for Fotoline's terminal UI. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color `json:"normal_text"`
	FaintText  lipgloss.Color `json:"faint_text"`

	// Selected feed row.
	SelectedBackground lipgloss.Color `json:"selected_background"`
	SelectedForeground lipgloss.Color `json:"selected_foreground"`

	// UI chrome.
	HeaderForeground lipgloss.Color `json:"header_foreground"`
	BorderColor      lipgloss.Color `json:"border_color"`
	HelpText         lipgloss.Color `json:"help_text"`

	// Post rendering.
	Username  lipgloss.Color `json:"username"`
	Timestamp lipgloss.Color `json:"timestamp"`
	Caption   lipgloss.Color `json:"caption"`
	LikeCount lipgloss.Color `json:"like_count"`

	// Status bar severity colors.
	StatusInfo  lipgloss.Color `json:"status_info"`
	StatusWarn  lipgloss.Color `json:"status_warn"`
	StatusError lipgloss.Color `json:"status_error"`

	// Filter match highlighting.
	MatchBackground lipgloss.Color `json:"match_background"`

	// Form fields.
	InputPrompt lipgloss.Color `json:"input_prompt"`
	InputCursor lipgloss.Color `json:"input_cursor"`
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Username:  lipgloss.Color("75"),  // blue
	Timestamp: lipgloss.Color("245"), // gray
	Caption:   lipgloss.Color("252"),
	LikeCount: lipgloss.Color("211"), // pink

	StatusInfo:  lipgloss.Color("114"), // green
	StatusWarn:  lipgloss.Color("220"), // amber
	StatusError: lipgloss.Color("196"), // red

	MatchBackground: lipgloss.Color("58"), // dark amber tint

	InputPrompt: lipgloss.Color("75"),
	InputCursor: lipgloss.Color("255"),
}
