// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the feed viewer TUI.
type KeyMap struct {
	// Navigation within the focused pane.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Tab switching.
	TabFeed    key.Binding
	TabProfile key.Binding

	// Open the selected post's author profile.
	OpenAuthor key.Binding
	// Return from a viewed profile to the feed.
	Back key.Binding

	// Filter.
	FilterActivate key.Binding
	FilterClear    key.Binding

	// Mutations (hidden when the source has no Mutator).
	ToggleLike key.Binding
	Delete     key.Binding

	// Forms. SignIn opens the login/signup form when anonymous; Upload
	// opens the new-post form when a Publisher is available.
	SignIn key.Binding
	Upload key.Binding

	Refresh key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	TabFeed: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "feed"),
	),
	TabProfile: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "profile"),
	),
	OpenAuthor: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "author"),
	),
	Back: key.NewBinding(
		key.WithKeys("backspace"),
		key.WithHelp("BS", "back"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear filter"),
	),
	ToggleLike: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "like/unlike"),
	),
	Delete: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete post"),
	),
	SignIn: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sign in"),
	),
	Upload: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "new post"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
