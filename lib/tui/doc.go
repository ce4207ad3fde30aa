// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides shared terminal user interface building blocks
// for Fotoline's interactive viewer: the color theme (with optional
// user overrides from a JSONC file), fzf-style fuzzy matching for the
// feed filter, and a proportional scrollbar.
//
// The feed viewer imports this package for look and behavior; the
// package itself knows nothing about posts or profiles.
package tui
