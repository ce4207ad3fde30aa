// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// LoadTheme returns DefaultTheme with any overrides from a JSONC theme
// file applied on top. The file holds a JSON object keyed by the
// Theme's json tags, extended with // line comments, /* block comments
// */, and trailing commas; fields not present keep their defaults.
//
// An empty path or a missing file yields DefaultTheme; a file that
// exists but does not parse is an error, silently ignoring a theme the
// user wrote is worse than failing.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme
	if path == "" {
		return theme, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return theme, nil
		}
		return theme, fmt.Errorf("tui: reading theme %s: %w", path, err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), &theme); err != nil {
		return DefaultTheme, fmt.Errorf("tui: parsing theme %s: %w", path, err)
	}
	return theme, nil
}
