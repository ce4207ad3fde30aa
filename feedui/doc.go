// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package feedui is the interactive terminal viewer for the photo
// feed. Built on bubbletea (Elm architecture): a Model holds all view
// state, Update routes messages, View renders.
//
// Layout: a tab bar (feed / profile), the post list with a fuzzy
// filter, a detail pane for the selected post, and a status bar that
// doubles as the slog sink while the program runs.
//
// Data access goes through the Source interface so the same model
// serves an anonymous client, an authenticated session, and test
// stubs. Loads are asynchronous: each fetch carries the generation
// counter current at launch, and completions from a superseded
// generation are discarded rather than applied, so a slow response
// never overwrites a newer view.
package feedui
