// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/junegunn/fzf/src/util"

	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/tui"
	"github.com/fotoline-project/fotoline/profile"
)

// Tab identifies which view is active.
type Tab int

const (
	// TabFeed shows the global post feed.
	TabFeed Tab = iota
	// TabProfile shows a user profile with their posts.
	TabProfile
)

// FocusRegion identifies where keyboard input routes.
type FocusRegion int

const (
	// FocusList means navigation keys move the post list cursor.
	FocusList FocusRegion = iota
	// FocusFilter means keystrokes go to the filter input.
	FocusFilter
)

// screen identifies which full-screen surface is showing. Forms take
// over the whole window; the tabs live under screenBrowse.
type screen int

const (
	screenBrowse screen = iota
	screenAuth
	screenUpload
)

// requestTimeout bounds every fetch launched from the UI. A hung
// server must not leave a spinner forever.
const requestTimeout = 30 * time.Second

// feedLoadedMsg delivers a completed feed fetch. generation is the
// feed generation at launch time; stale completions are discarded.
type feedLoadedMsg struct {
	generation int
	posts      []feedapi.Post
	err        error
}

// profileLoadedMsg delivers a completed profile load.
type profileLoadedMsg struct {
	generation int
	subject    feedapi.ID
	view       *profile.View
	err        error
}

// actionDoneMsg delivers the result of a mutation (like, unlike,
// delete). A successful mutation triggers a refresh of the active tab.
type actionDoneMsg struct {
	action string
	postID feedapi.ID
	err    error
}

// Model is the top-level bubbletea model for the feed viewer.
type Model struct {
	source    Source
	mutator   Mutator   // nil when the source is read-only
	publisher Publisher // nil when posts cannot be created
	auth      Authenticator
	loader    *profile.Loader
	theme     tui.Theme
	keys      KeyMap
	logger    *slog.Logger

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	activeTab Tab

	// Feed state. posts is the full display-ordered feed; visible is
	// the filtered view of it. Each fetch replaces posts wholesale.
	posts        []feedapi.Post
	visible      []feedapi.Post
	cursor       int
	scrollOffset int
	feedErr      error
	feedLoading  bool
	// feedGeneration increments on every feed (re)load; completions
	// carrying an older generation are discarded.
	feedGeneration int

	// Filter state.
	filterInput      string
	filterActive     bool
	filterHighlights map[feedapi.ID][]int
	slab             *util.Slab

	// Profile state.
	profileSubject    feedapi.ID
	profileView       *profile.View
	profileErr        error
	profileLoading    bool
	profileGeneration int

	// Likes this client has toggled on, keyed by post ID. The feed
	// payload has no per-viewer like flag, so this tracks only what
	// happened in this session.
	liked map[feedapi.ID]bool

	focusRegion FocusRegion

	// Form state. activeScreen routes input and rendering to a form
	// when not screenBrowse.
	activeScreen screen
	authMode     authMode
	authForm     form
	uploadForm   form

	// Status bar log message, cleared by logRecordFadeMsg.
	statusMessage string
	statusLevel   slog.Level
}

// ModelConfig configures NewModel.
type ModelConfig struct {
	// Source provides feed data. Required.
	Source Source
	// Theme colors the UI. Zero value means tui.DefaultTheme.
	Theme *tui.Theme
	// Keys binds the keyboard. Zero value means DefaultKeyMap.
	Keys *KeyMap
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
	// Auth enables the in-TUI login/signup form. Optional; when nil,
	// signing in is only possible through the CLI.
	Auth Authenticator
}

// NewModel creates a Model over the given source. The initial feed
// load starts from Init.
func NewModel(config ModelConfig) (Model, error) {
	loader, err := profile.NewLoader(profileAPI{source: config.Source}, config.Logger)
	if err != nil {
		return Model{}, err
	}

	theme := tui.DefaultTheme
	if config.Theme != nil {
		theme = *config.Theme
	}
	keys := DefaultKeyMap
	if config.Keys != nil {
		keys = *config.Keys
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mutator, _ := config.Source.(Mutator)
	publisher, _ := config.Source.(Publisher)

	return Model{
		source:     config.Source,
		mutator:    mutator,
		publisher:  publisher,
		auth:       config.Auth,
		loader:     loader,
		theme:      theme,
		keys:       keys,
		logger:     logger,
		slab:       tui.NewSlab(),
		liked:      make(map[feedapi.ID]bool),
		authForm:   newAuthForm(authModeLogin),
		uploadForm: newUploadForm(),
	}, nil
}

// Init implements tea.Model: kick off the initial feed load.
func (model Model) Init() tea.Cmd {
	return model.startFeedLoad()
}

// startFeedLoad bumps the feed generation and returns the fetch
// command for it. Callers assign the returned model.
func (model *Model) startFeedLoad() tea.Cmd {
	model.feedGeneration++
	model.feedLoading = true
	generation := model.feedGeneration
	source := model.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		posts, err := source.GlobalFeed(ctx)
		return feedLoadedMsg{generation: generation, posts: posts, err: err}
	}
}

// startProfileLoad bumps the profile generation and returns the load
// command for the given subject.
func (model *Model) startProfileLoad(subject feedapi.ID) tea.Cmd {
	model.profileGeneration++
	model.profileLoading = true
	model.profileSubject = subject
	generation := model.profileGeneration
	loader := model.loader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		view, err := loader.Load(ctx, subject)
		return profileLoadedMsg{generation: generation, subject: subject, view: view, err: err}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.clampScroll()
		return model, nil

	case feedLoadedMsg:
		if message.generation != model.feedGeneration {
			// A newer load superseded this one while it was in flight.
			return model, nil
		}
		model.feedLoading = false
		if message.err != nil {
			// Keep showing the previous posts; the error is surfaced
			// in the status area until the next successful load.
			model.feedErr = message.err
			return model, nil
		}
		model.feedErr = nil
		model.posts = message.posts
		model.applyFilter()
		model.clampCursor()
		return model, nil

	case profileLoadedMsg:
		if message.generation != model.profileGeneration {
			return model, nil
		}
		model.profileLoading = false
		model.profileErr = message.err
		if message.err == nil {
			model.profileView = message.view
		}
		return model, nil

	case actionDoneMsg:
		if message.err != nil {
			model.logger.Warn(message.action+" failed", "post_id", message.postID, "error", message.err)
			return model, nil
		}
		// Reflect the change: reload whichever tab is showing.
		if model.activeTab == TabProfile && model.profileSubject != "" {
			return model, model.startProfileLoad(model.profileSubject)
		}
		return model, model.startFeedLoad()

	case authDoneMsg:
		model.authForm.submitting = false
		if message.err != nil {
			model.authForm.errorText = authFailureText(message.err)
			return model, nil
		}
		return model.adoptSession(message.session)

	case uploadDoneMsg:
		model.uploadForm.submitting = false
		if message.err != nil {
			model.uploadForm.errorText = message.err.Error()
			return model, nil
		}
		model.activeScreen = screenBrowse
		model.uploadForm.reset()
		model.statusMessage = "posted " + message.post.ID.String()
		model.statusLevel = slog.LevelInfo
		return model, model.startFeedLoad()

	case logRecordMsg:
		model.statusMessage = message.Summary
		model.statusLevel = message.Level
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{}
		})

	case logRecordFadeMsg:
		model.statusMessage = ""
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)
	}
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch model.activeScreen {
	case screenAuth:
		return model.handleAuthKey(message)
	case screenUpload:
		return model.handleUploadKey(message)
	}

	if model.focusRegion == FocusFilter {
		return model.handleFilterKey(message)
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)

	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)

	case key.Matches(message, model.keys.PageUp):
		model.moveCursor(-model.listHeight())

	case key.Matches(message, model.keys.PageDown):
		model.moveCursor(model.listHeight())

	case key.Matches(message, model.keys.Home):
		model.cursor = 0
		model.clampScroll()

	case key.Matches(message, model.keys.End):
		model.cursor = len(model.visible) - 1
		model.clampCursor()

	case key.Matches(message, model.keys.TabFeed):
		model.activeTab = TabFeed

	case key.Matches(message, model.keys.TabProfile):
		// Own profile: route id absent, session id fills in. With no
		// session either, there is no subject and the tab shows a hint.
		subject, ok := model.resolveOwnSubject()
		model.activeTab = TabProfile
		if ok && subject != model.profileSubject {
			return model, model.startProfileLoad(subject)
		}

	case key.Matches(message, model.keys.OpenAuthor):
		if post := model.selectedPost(); post != nil {
			model.activeTab = TabProfile
			return model, model.startProfileLoad(post.UserID)
		}

	case key.Matches(message, model.keys.Back):
		if model.activeTab == TabProfile {
			model.activeTab = TabFeed
		}

	case key.Matches(message, model.keys.FilterActivate):
		if model.activeTab == TabFeed {
			model.focusRegion = FocusFilter
			model.filterActive = true
			model.cursor = 0
			model.scrollOffset = 0
		}

	case key.Matches(message, model.keys.FilterClear):
		model.clearFilter()

	case key.Matches(message, model.keys.Refresh):
		if model.activeTab == TabProfile && model.profileSubject != "" {
			return model, model.startProfileLoad(model.profileSubject)
		}
		return model, model.startFeedLoad()

	case key.Matches(message, model.keys.ToggleLike):
		return model.toggleLike()

	case key.Matches(message, model.keys.Delete):
		return model.deleteSelected()

	case key.Matches(message, model.keys.SignIn):
		if model.auth != nil {
			if _, _, signedIn := model.source.Identity(); !signedIn {
				model.authForm = newAuthForm(model.authMode)
				model.activeScreen = screenAuth
			}
		}

	case key.Matches(message, model.keys.Upload):
		if model.publisher != nil {
			model.uploadForm.reset()
			model.activeScreen = screenUpload
		}
	}
	return model, nil
}

// handleAuthKey routes keystrokes while the login/signup form is up.
func (model Model) handleAuthKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.String() == "ctrl+c" {
		return model, tea.Quit
	}
	if message.String() == "ctrl+t" && !model.authForm.submitting {
		// Toggle login/signup, carrying the typed username across.
		username := model.authForm.value(fieldUsername)
		if model.authMode == authModeLogin {
			model.authMode = authModeSignup
		} else {
			model.authMode = authModeLogin
		}
		model.authForm = newAuthForm(model.authMode)
		model.authForm.fields[0].value = username
		return model, nil
	}

	switch model.authForm.handleKey(message) {
	case formCancel:
		model.activeScreen = screenBrowse
		model.authForm.reset()
		return model, nil

	case formSubmit:
		if problem := validateAuthForm(model.authMode, &model.authForm); problem != "" {
			model.authForm.errorText = problem
			return model, nil
		}
		model.authForm.submitting = true
		return model, startAuthSubmit(
			model.auth,
			model.authMode,
			model.authForm.value(fieldUsername),
			model.authForm.value(fieldEmail),
			model.authForm.value(fieldPassword),
		)
	}
	return model, nil
}

// handleUploadKey routes keystrokes while the new-post form is up.
func (model Model) handleUploadKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.String() == "ctrl+c" {
		return model, tea.Quit
	}

	switch model.uploadForm.handleKey(message) {
	case formCancel:
		model.activeScreen = screenBrowse
		model.uploadForm.reset()
		return model, nil

	case formSubmit:
		if problem := validateUploadForm(&model.uploadForm); problem != "" {
			model.uploadForm.errorText = problem
			return model, nil
		}
		model.uploadForm.submitting = true
		return model, startUploadSubmit(
			model.publisher,
			model.uploadForm.value(fieldImage),
			model.uploadForm.value(fieldCaption),
		)
	}
	return model, nil
}

// adoptSession switches the model onto a freshly authenticated session:
// the source, mutator, publisher, and profile loader are all rebuilt
// over it, and the feed reloads so like/delete affordances appear.
func (model Model) adoptSession(session *feedapi.Session) (tea.Model, tea.Cmd) {
	source := NewSessionSource(session)
	model.source = source
	model.mutator = source
	model.publisher = source

	if loader, err := profile.NewLoader(profileAPI{source: source}, model.logger); err == nil {
		model.loader = loader
	}

	model.activeScreen = screenBrowse
	model.authForm.reset()
	model.statusMessage = "signed in as " + session.Username()
	model.statusLevel = slog.LevelInfo
	return model, model.startFeedLoad()
}

// authFailureText compresses an auth error into a one-line form
// message. 401s get friendlier wording than raw error chains.
func authFailureText(err error) string {
	if feedapi.IsStatus(err, 401) {
		return "wrong username or password"
	}
	return err.Error()
}

// handleFilterKey routes keystrokes while the filter input has focus.
func (model Model) handleFilterKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEscape:
		model.clearFilter()
		return model, nil

	case tea.KeyEnter:
		// Keep the filter text, return focus to the list.
		model.focusRegion = FocusList
		model.filterActive = false
		return model, nil

	case tea.KeyBackspace:
		if len(model.filterInput) > 0 {
			runes := []rune(model.filterInput)
			model.filterInput = string(runes[:len(runes)-1])
			model.applyFilter()
			model.clampCursor()
		}
		return model, nil

	case tea.KeyRunes, tea.KeySpace:
		model.filterInput += string(message.Runes)
		if message.Type == tea.KeySpace {
			model.filterInput += " "
		}
		model.applyFilter()
		model.clampCursor()
		return model, nil
	}

	// Allow quitting from filter mode with ctrl+c only; plain q is text.
	if message.String() == "ctrl+c" {
		return model, tea.Quit
	}
	return model, nil
}

func (model *Model) clearFilter() {
	model.filterInput = ""
	model.filterActive = false
	model.focusRegion = FocusList
	model.applyFilter()
	model.clampCursor()
}

// applyFilter rebuilds the visible post list from the full feed and
// the current filter, fuzzy-matching against author name and caption.
func (model *Model) applyFilter() {
	if model.filterInput == "" {
		model.visible = model.posts
		model.filterHighlights = nil
		return
	}

	pattern := []rune(model.filterInput)
	model.visible = nil
	model.filterHighlights = make(map[feedapi.ID][]int)
	for _, post := range model.posts {
		text := post.AuthorName() + " " + post.Caption
		result := tui.FuzzyMatch(text, pattern, model.slab)
		if !result.Matched {
			continue
		}
		model.visible = append(model.visible, post)
		model.filterHighlights[post.ID] = result.Positions
	}
}

// selectedPost returns the post under the cursor, or nil.
func (model *Model) selectedPost() *feedapi.Post {
	if model.activeTab != TabFeed {
		return nil
	}
	if model.cursor < 0 || model.cursor >= len(model.visible) {
		return nil
	}
	return &model.visible[model.cursor]
}

// resolveOwnSubject resolves the profile subject for the profile tab
// when no explicit author was chosen: the signed-in user, if any.
func (model *Model) resolveOwnSubject() (feedapi.ID, bool) {
	userID, _, ok := model.source.Identity()
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func (model Model) toggleLike() (tea.Model, tea.Cmd) {
	post := model.selectedPost()
	if post == nil || model.mutator == nil {
		return model, nil
	}

	postID := post.ID
	mutator := model.mutator
	wasLiked := model.liked[postID]
	model.liked[postID] = !wasLiked

	return model, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		action := "like"
		if wasLiked {
			action = "unlike"
			err = mutator.Unlike(ctx, postID)
		} else {
			err = mutator.Like(ctx, postID)
		}
		return actionDoneMsg{action: action, postID: postID, err: err}
	}
}

func (model Model) deleteSelected() (tea.Model, tea.Cmd) {
	post := model.selectedPost()
	if post == nil || model.mutator == nil {
		return model, nil
	}

	// Only the signed-in author's posts are deletable; the server
	// rejects everything else, so skip the doomed round trip.
	userID, _, ok := model.source.Identity()
	if !ok || post.UserID != userID {
		return model, nil
	}

	postID := post.ID
	mutator := model.mutator
	return model, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return actionDoneMsg{action: "delete", postID: postID, err: mutator.DeletePost(ctx, postID)}
	}
}

// moveCursor moves the list cursor by delta and keeps it in view.
func (model *Model) moveCursor(delta int) {
	model.cursor += delta
	model.clampCursor()
}

func (model *Model) clampCursor() {
	if model.cursor >= len(model.visible) {
		model.cursor = len(model.visible) - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
	model.clampScroll()
}

func (model *Model) clampScroll() {
	visibleRows := model.listHeight()
	if visibleRows <= 0 {
		return
	}
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visibleRows {
		model.scrollOffset = model.cursor - visibleRows + 1
	}
	if model.scrollOffset < 0 {
		model.scrollOffset = 0
	}
}
