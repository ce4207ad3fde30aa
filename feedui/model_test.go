// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/secret"
	"github.com/fotoline-project/fotoline/lib/tui"
)

// stubSource is an in-memory Source with optional mutation recording.
type stubSource struct {
	posts    []feedapi.Post
	feedErr  error
	profiles map[feedapi.ID]*feedapi.UserProfile
	identity feedapi.ID
	username string

	likes   []feedapi.ID
	unlikes []feedapi.ID
	deletes []feedapi.ID
}

func (s *stubSource) GlobalFeed(ctx context.Context) ([]feedapi.Post, error) {
	return s.posts, s.feedErr
}

func (s *stubSource) UserPosts(ctx context.Context, userID feedapi.ID) ([]feedapi.Post, error) {
	var posts []feedapi.Post
	for _, post := range s.posts {
		if post.UserID == userID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *stubSource) Profile(ctx context.Context, userID feedapi.ID) (*feedapi.UserProfile, error) {
	if profile, ok := s.profiles[userID]; ok {
		return profile, nil
	}
	return nil, errors.New("no such user")
}

func (s *stubSource) ResolveImageURL(post *feedapi.Post) string {
	return feedapi.ResolveImageURL("http://localhost:8000", post)
}

func (s *stubSource) Identity() (feedapi.ID, string, bool) {
	return s.identity, s.username, s.identity != ""
}

func (s *stubSource) Like(ctx context.Context, postID feedapi.ID) error {
	s.likes = append(s.likes, postID)
	return nil
}

func (s *stubSource) Unlike(ctx context.Context, postID feedapi.ID) error {
	s.unlikes = append(s.unlikes, postID)
	return nil
}

func (s *stubSource) DeletePost(ctx context.Context, postID feedapi.ID) error {
	s.deletes = append(s.deletes, postID)
	return nil
}

func testPosts() []feedapi.Post {
	return []feedapi.Post{
		{ID: "3", UserID: "7", User: &feedapi.UserSummary{ID: "7", Username: "grace"},
			ImageURL: "images/c.jpg", ImageURLType: feedapi.ImageURLRelative,
			Caption: "harbor at dawn", Timestamp: "2026-08-28T10:00:00"},
		{ID: "2", UserID: "42", User: &feedapi.UserSummary{ID: "42", Username: "ada"},
			ImageURL: "images/b.jpg", ImageURLType: feedapi.ImageURLRelative,
			Caption: "mountain sunset", Timestamp: "2026-08-27T10:00:00"},
		{ID: "1", UserID: "42", User: &feedapi.UserSummary{ID: "42", Username: "ada"},
			ImageURL: "images/a.jpg", ImageURLType: feedapi.ImageURLRelative,
			Caption: "first post", Timestamp: "2026-08-26T10:00:00"},
	}
}

func newTestModel(t *testing.T, source Source) Model {
	t.Helper()
	model, err := NewModel(ModelConfig{Source: source})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	sized, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(Model)
}

// loadFeed drives the model through a complete feed load.
func loadFeed(t *testing.T, model Model) Model {
	t.Helper()
	command := model.Init()
	if command == nil {
		t.Fatal("Init returned no load command")
	}
	// Init operates on a copy; re-launch the load against our instance
	// so the generation counters line up.
	command = (&model).startFeedLoad()
	updated, _ := model.Update(command())
	return updated.(Model)
}

func keyPress(model Model, keys string) Model {
	var message tea.KeyMsg
	switch keys {
	case "enter":
		message = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		message = tea.KeyMsg{Type: tea.KeyEscape}
	case "backspace":
		message = tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		message = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	updated, _ := model.Update(message)
	return updated.(Model)
}

func TestFeedLoad(t *testing.T) {
	t.Run("load replaces posts wholesale", func(t *testing.T) {
		source := &stubSource{posts: testPosts()}
		model := newTestModel(t, source)
		model = loadFeed(t, model)

		if len(model.visible) != 3 {
			t.Fatalf("got %d visible posts, want 3", len(model.visible))
		}
		if model.visible[0].ID != "3" {
			t.Errorf("first post = %s, want newest", model.visible[0].ID)
		}

		// A second load with fewer posts replaces, never merges.
		source.posts = testPosts()[:1]
		model = loadFeed(t, model)
		if len(model.visible) != 1 {
			t.Fatalf("got %d visible posts after reload, want 1", len(model.visible))
		}
	})

	t.Run("stale completion is discarded", func(t *testing.T) {
		source := &stubSource{posts: testPosts()}
		model := newTestModel(t, source)

		first := (&model).startFeedLoad()
		firstResult := first().(feedLoadedMsg)

		// A refresh supersedes the first load before it lands.
		source.posts = testPosts()[:1]
		second := (&model).startFeedLoad()
		secondResult := second().(feedLoadedMsg)

		updated, _ := model.Update(firstResult)
		model = updated.(Model)
		if len(model.visible) != 0 {
			t.Fatal("stale completion was applied")
		}

		updated, _ = model.Update(secondResult)
		model = updated.(Model)
		if len(model.visible) != 1 {
			t.Fatalf("got %d posts, want the newer load's 1", len(model.visible))
		}
	})

	t.Run("load failure keeps previous posts and surfaces the error", func(t *testing.T) {
		source := &stubSource{posts: testPosts()}
		model := newTestModel(t, source)
		model = loadFeed(t, model)

		source.feedErr = errors.New("server down")
		model = loadFeed(t, model)

		if len(model.visible) != 3 {
			t.Fatal("failed load wiped the previous posts")
		}
		if model.feedErr == nil {
			t.Fatal("feed error not recorded")
		}
		if !strings.Contains(model.View(), "server down") {
			t.Error("feed error not visible in the rendered view")
		}
	})
}

func TestFilter(t *testing.T) {
	source := &stubSource{posts: testPosts()}
	model := newTestModel(t, source)
	model = loadFeed(t, model)

	model = keyPress(model, "/")
	if model.focusRegion != FocusFilter {
		t.Fatal("/ did not focus the filter")
	}

	model = keyPress(model, "sunset")
	if len(model.visible) != 1 || model.visible[0].ID != "2" {
		t.Fatalf("filter left %d posts visible, want just the sunset post", len(model.visible))
	}
	if _, ok := model.filterHighlights["2"]; !ok {
		t.Error("no highlight positions for the match")
	}

	// Enter keeps the filter, Esc clears it.
	model = keyPress(model, "enter")
	if model.focusRegion != FocusList || len(model.visible) != 1 {
		t.Fatal("enter should keep the filter and return focus to the list")
	}
	model = keyPress(model, "esc")
	if len(model.visible) != 3 {
		t.Fatal("esc did not clear the filter")
	}
}

func TestNavigation(t *testing.T) {
	source := &stubSource{posts: testPosts()}
	model := newTestModel(t, source)
	model = loadFeed(t, model)

	if model.cursor != 0 {
		t.Fatalf("initial cursor = %d", model.cursor)
	}
	model = keyPress(model, "j")
	model = keyPress(model, "j")
	if model.cursor != 2 {
		t.Fatalf("cursor = %d after two downs, want 2", model.cursor)
	}
	model = keyPress(model, "j")
	if model.cursor != 2 {
		t.Fatal("cursor moved past the last post")
	}
	model = keyPress(model, "g")
	if model.cursor != 0 {
		t.Fatal("g did not jump to the top")
	}
}

func TestOpenAuthorProfile(t *testing.T) {
	source := &stubSource{
		posts: testPosts(),
		profiles: map[feedapi.ID]*feedapi.UserProfile{
			"7": {ID: "7", Username: "grace", PostsCount: 1, FollowersCount: 2},
		},
	}
	model := newTestModel(t, source)
	model = loadFeed(t, model)

	// Cursor on the newest post (grace's); Enter opens her profile.
	updated, command := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)
	if model.activeTab != TabProfile {
		t.Fatal("enter did not switch to the profile tab")
	}
	if command == nil {
		t.Fatal("no profile load launched")
	}

	updated, _ = model.Update(command())
	model = updated.(Model)
	if model.profileView == nil || model.profileView.Profile == nil {
		t.Fatal("profile did not load")
	}
	if model.profileView.Profile.Username != "grace" {
		t.Errorf("loaded profile = %q, want grace", model.profileView.Profile.Username)
	}
	if !strings.Contains(model.View(), "@grace") {
		t.Error("profile view does not show the username")
	}

	// Backspace returns to the feed.
	model = keyPress(model, "backspace")
	if model.activeTab != TabFeed {
		t.Fatal("backspace did not return to the feed")
	}
}

func TestProfilePartialFailure(t *testing.T) {
	// grace has posts in the feed but no profile record, so the
	// profile half fails while the posts half loads.
	source := &stubSource{posts: testPosts()}
	model := newTestModel(t, source)
	model = loadFeed(t, model)

	updated, command := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)
	updated, _ = model.Update(command())
	model = updated.(Model)

	if model.profileView == nil {
		t.Fatal("partial failure produced no view at all")
	}
	if model.profileView.ProfileErr == nil {
		t.Fatal("profile half should have failed")
	}
	if len(model.profileView.Posts) != 1 {
		t.Fatalf("posts half carried %d posts, want 1", len(model.profileView.Posts))
	}
	rendered := model.View()
	if !strings.Contains(rendered, "profile details unavailable") {
		t.Error("profile failure not rendered")
	}
}

func TestToggleLike(t *testing.T) {
	source := &stubSource{posts: testPosts(), identity: "42", username: "ada"}
	model := newTestModel(t, source)
	if model.mutator == nil {
		t.Fatal("session-backed stub should expose a mutator")
	}
	model = loadFeed(t, model)

	updated, command := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	model = updated.(Model)
	if command == nil {
		t.Fatal("no like command launched")
	}
	result := command().(actionDoneMsg)
	if result.err != nil {
		t.Fatalf("like failed: %v", result.err)
	}
	if len(source.likes) != 1 || source.likes[0] != "3" {
		t.Fatalf("likes recorded: %v, want [3]", source.likes)
	}

	// Second press unlikes.
	updated, command = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
	model = updated.(Model)
	command()
	if len(source.unlikes) != 1 {
		t.Fatalf("unlikes recorded: %v, want one entry", source.unlikes)
	}
}

func TestDeleteOnlyOwnPosts(t *testing.T) {
	source := &stubSource{posts: testPosts(), identity: "42", username: "ada"}
	model := newTestModel(t, source)
	model = loadFeed(t, model)

	// Cursor on grace's post: delete is refused locally.
	_, command := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("D")})
	if command != nil {
		t.Fatal("delete launched for another user's post")
	}

	// Move to ada's post and delete.
	model = keyPress(model, "j")
	_, command = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("D")})
	if command == nil {
		t.Fatal("no delete command for own post")
	}
	command()
	if len(source.deletes) != 1 || source.deletes[0] != "2" {
		t.Fatalf("deletes recorded: %v, want [2]", source.deletes)
	}
}

func TestAnonymousSourceHasNoMutator(t *testing.T) {
	client, err := feedapi.NewClient(feedapi.ClientConfig{BaseURL: "http://localhost:8000"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	model, err := NewModel(ModelConfig{Source: NewClientSource(client)})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if model.mutator != nil {
		t.Fatal("anonymous source exposed a mutator")
	}
}

func TestStatusBarLogMessages(t *testing.T) {
	source := &stubSource{posts: testPosts()}
	model := newTestModel(t, source)
	model = loadFeed(t, model)

	updated, _ := model.Update(logRecordMsg{Summary: "upload failed (status=500)"})
	model = updated.(Model)
	if !strings.Contains(model.View(), "upload failed") {
		t.Fatal("log message not shown in the status bar")
	}

	updated, _ = model.Update(logRecordFadeMsg{})
	model = updated.(Model)
	if strings.Contains(model.View(), "upload failed") {
		t.Fatal("log message did not fade")
	}
}

// stubAuth signs anyone in whose password is "hunter2".
type stubAuth struct {
	client *feedapi.Client
}

func (a *stubAuth) session(username string) (*feedapi.Session, error) {
	return a.client.SessionFromToken("42", username, "bearer", "tok")
}

func (a *stubAuth) SignIn(ctx context.Context, username string, password *secret.Buffer) (*feedapi.Session, error) {
	if password.String() != "hunter2" {
		return nil, &feedapi.APIError{StatusCode: 401, Detail: "Invalid Credentials"}
	}
	return a.session(username)
}

func (a *stubAuth) SignUp(ctx context.Context, username, email string, password *secret.Buffer) (*feedapi.Session, error) {
	return a.session(username)
}

func typeText(model Model, text string) Model {
	for _, r := range text {
		updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		model = updated.(Model)
	}
	return model
}

func TestAuthForm(t *testing.T) {
	client, err := feedapi.NewClient(feedapi.ClientConfig{BaseURL: "http://localhost:8000"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	auth := &stubAuth{client: client}

	newAuthModel := func(t *testing.T) Model {
		t.Helper()
		model, err := NewModel(ModelConfig{Source: &stubSource{posts: testPosts()}, Auth: auth})
		if err != nil {
			t.Fatalf("NewModel: %v", err)
		}
		sized, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		return sized.(Model)
	}

	t.Run("successful sign-in swaps the source", func(t *testing.T) {
		model := newAuthModel(t)

		model = keyPress(model, "s")
		if model.activeScreen != screenAuth {
			t.Fatal("s did not open the auth form")
		}

		model = typeText(model, "ada")
		model = keyPress(model, "enter") // to password field
		model = typeText(model, "hunter2")

		updated, command := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model = updated.(Model)
		if command == nil {
			t.Fatal("submit launched no command")
		}
		if !model.authForm.submitting {
			t.Fatal("form not marked submitting")
		}

		updated, _ = model.Update(command())
		model = updated.(Model)
		if model.activeScreen != screenBrowse {
			t.Fatal("successful sign-in did not return to the feed")
		}
		if model.mutator == nil || model.publisher == nil {
			t.Fatal("session affordances missing after sign-in")
		}
		if _, username, ok := model.source.Identity(); !ok || username != "ada" {
			t.Fatalf("identity after sign-in = %q, %v", username, ok)
		}
	})

	t.Run("wrong password stays on the form", func(t *testing.T) {
		model := newAuthModel(t)
		model = keyPress(model, "s")
		model = typeText(model, "ada")
		model = keyPress(model, "enter")
		model = typeText(model, "wrong")

		updated, command := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model = updated.(Model)
		updated, _ = model.Update(command())
		model = updated.(Model)

		if model.activeScreen != screenAuth {
			t.Fatal("failed sign-in left the form")
		}
		if model.authForm.errorText != "wrong username or password" {
			t.Errorf("errorText = %q", model.authForm.errorText)
		}
	})

	t.Run("empty fields are rejected locally", func(t *testing.T) {
		model := newAuthModel(t)
		model = keyPress(model, "s")
		model = keyPress(model, "enter") // skip username
		updated, command := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model = updated.(Model)
		if command != nil {
			t.Fatal("empty form launched a submit")
		}
		if model.authForm.errorText == "" {
			t.Fatal("no validation message")
		}
	})

	t.Run("ctrl+t toggles signup and keeps the username", func(t *testing.T) {
		model := newAuthModel(t)
		model = keyPress(model, "s")
		model = typeText(model, "ada")

		updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
		model = updated.(Model)
		if model.authMode != authModeSignup {
			t.Fatal("ctrl+t did not switch to signup")
		}
		if model.authForm.value(fieldUsername) != "ada" {
			t.Error("username lost across the toggle")
		}
		if model.authForm.value(fieldEmail) != "" {
			t.Error("signup form should have an empty email field")
		}
	})

	t.Run("escape cancels", func(t *testing.T) {
		model := newAuthModel(t)
		model = keyPress(model, "s")
		model = keyPress(model, "esc")
		if model.activeScreen != screenBrowse {
			t.Fatal("esc did not close the form")
		}
	})
}

func TestUploadFormGating(t *testing.T) {
	// Anonymous source: no publisher, "u" does nothing.
	model := newTestModel(t, &stubSource{posts: testPosts()})
	model = keyPress(model, "u")
	if model.activeScreen != screenBrowse {
		t.Fatal("upload form opened without a publisher")
	}
}

func TestRenderCaption(t *testing.T) {
	theme := tui.DefaultTheme

	t.Run("empty caption renders nothing", func(t *testing.T) {
		if got := renderCaption("  ", theme, 40); got != "" {
			t.Fatalf("got %q, want empty", got)
		}
	})

	t.Run("soft breaks reflow", func(t *testing.T) {
		got := renderCaption("golden\ngate", theme, 40)
		if !strings.Contains(ansi.Strip(got), "golden gate") {
			t.Fatalf("soft break not reflowed: %q", got)
		}
	})

	t.Run("styles do not lose the text", func(t *testing.T) {
		got := ansi.Strip(renderCaption("a **bold** `code` [link](http://x.test) day", theme, 60))
		for _, want := range []string{"bold", "code", "link", "http://x.test", "day"} {
			if !strings.Contains(got, want) {
				t.Errorf("rendered caption lost %q: %q", want, got)
			}
		}
	})
}
