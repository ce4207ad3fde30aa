// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile decides whose profile a view shows and loads it.
//
// Resolution precedence: an explicit route id wins over the signed-in
// user's id, so a signed-in user visiting another user's page sees that
// user, and "my profile" is just the route with no id. With no route id
// and no session there is no subject.
//
// The Loader fetches the profile record and the post list as two
// independent requests: one failing does not blank the other, a page
// with counts but no grid (or the reverse) beats an empty page.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fotoline-project/fotoline/feedapi"
)

// Resolve returns the profile subject. routeID is the id from the
// navigation target ("" when absent); session is the live session (nil
// when anonymous). ok is false when neither yields a subject.
func Resolve(routeID feedapi.ID, session *feedapi.Session) (subject feedapi.ID, ok bool) {
	if routeID != "" {
		return routeID, true
	}
	if session != nil {
		return session.UserID(), true
	}
	return "", false
}

// API is the read surface the Loader needs. Both feedapi.Client and
// feedapi.Session satisfy it; tests supply stubs.
type API interface {
	Profile(ctx context.Context, userID feedapi.ID) (*feedapi.UserProfile, error)
	UserPosts(ctx context.Context, userID feedapi.ID) ([]feedapi.Post, error)
}

// View is the result of loading one subject. Each half carries its own
// error; a half that failed has its value zero and its error set.
type View struct {
	Subject feedapi.ID

	Profile    *feedapi.UserProfile
	ProfileErr error

	// Posts is display-ordered (newest first).
	Posts    []feedapi.Post
	PostsErr error
}

// Complete reports whether both halves loaded.
func (v *View) Complete() bool {
	return v.ProfileErr == nil && v.PostsErr == nil
}

// Failed reports whether neither half loaded.
func (v *View) Failed() bool {
	return v.ProfileErr != nil && v.PostsErr != nil
}

// Loader loads profile views.
type Loader struct {
	api    API
	logger *slog.Logger
}

// NewLoader creates a Loader over the given API surface.
func NewLoader(api API, logger *slog.Logger) (*Loader, error) {
	if api == nil {
		return nil, fmt.Errorf("profile: API is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{api: api, logger: logger}, nil
}

// Load fetches the subject's profile and posts concurrently. It returns
// an error only for an empty subject; request failures land in the
// View's per-half error fields so the caller renders what arrived.
func (l *Loader) Load(ctx context.Context, subject feedapi.ID) (*View, error) {
	if subject == "" {
		return nil, fmt.Errorf("profile: no subject to load")
	}

	view := &View{Subject: subject}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		view.Profile, view.ProfileErr = l.api.Profile(ctx, subject)
	}()
	go func() {
		defer wg.Done()
		view.Posts, view.PostsErr = l.api.UserPosts(ctx, subject)
	}()
	wg.Wait()

	if view.ProfileErr != nil {
		l.logger.Warn("profile fetch failed", "subject", subject, "error", view.ProfileErr)
	}
	if view.PostsErr != nil {
		l.logger.Warn("post list fetch failed", "subject", subject, "error", view.PostsErr)
	}
	return view, nil
}
