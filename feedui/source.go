// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import (
	"context"
	"io"

	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/secret"
	"github.com/fotoline-project/fotoline/profile"
)

// Source abstracts feed data access for the TUI. Implementations wrap
// an anonymous feedapi.Client or an authenticated feedapi.Session; the
// model code is identical regardless of backend, and tests supply
// stubs.
type Source interface {
	// GlobalFeed returns all posts, display-ordered.
	GlobalFeed(ctx context.Context) ([]feedapi.Post, error)

	// UserPosts returns one user's posts, display-ordered.
	UserPosts(ctx context.Context, userID feedapi.ID) ([]feedapi.Post, error)

	// Profile returns one user's profile.
	Profile(ctx context.Context, userID feedapi.ID) (*feedapi.UserProfile, error)

	// ResolveImageURL returns the fetchable URL for a post's image.
	ResolveImageURL(post *feedapi.Post) string

	// Identity returns the signed-in user, or ok false when anonymous.
	Identity() (userID feedapi.ID, username string, ok bool)
}

// Mutator is an optional interface a Source can provide when it is
// backed by an authenticated session. The model checks for it via type
// assertion; when absent, like/delete controls are hidden.
type Mutator interface {
	Like(ctx context.Context, postID feedapi.ID) error
	Unlike(ctx context.Context, postID feedapi.ID) error
	DeletePost(ctx context.Context, postID feedapi.ID) error
}

// Publisher is an optional interface a Source can provide when posts
// can be created through it. The model checks for it via type
// assertion; when absent, the upload form is unavailable.
type Publisher interface {
	UploadImage(ctx context.Context, fileName string, content io.Reader) (*feedapi.UploadResult, error)
	CreatePost(ctx context.Context, request feedapi.CreatePostRequest) (*feedapi.Post, error)
}

// Authenticator signs users in or up, yielding an authenticated
// session the model switches its Source to. Satisfied by
// sessionstore.Store, which also persists the session.
type Authenticator interface {
	SignIn(ctx context.Context, username string, password *secret.Buffer) (*feedapi.Session, error)
	SignUp(ctx context.Context, username, email string, password *secret.Buffer) (*feedapi.Session, error)
}

// ClientSource is the anonymous Source over a feedapi.Client.
type ClientSource struct {
	client *feedapi.Client
}

// NewClientSource wraps an unauthenticated client.
func NewClientSource(client *feedapi.Client) *ClientSource {
	return &ClientSource{client: client}
}

func (s *ClientSource) GlobalFeed(ctx context.Context) ([]feedapi.Post, error) {
	return s.client.GlobalFeed(ctx)
}

func (s *ClientSource) UserPosts(ctx context.Context, userID feedapi.ID) ([]feedapi.Post, error) {
	return s.client.UserPosts(ctx, userID)
}

func (s *ClientSource) Profile(ctx context.Context, userID feedapi.ID) (*feedapi.UserProfile, error) {
	return s.client.Profile(ctx, userID)
}

func (s *ClientSource) ResolveImageURL(post *feedapi.Post) string {
	return feedapi.ResolveImageURL(s.client.BaseURL(), post)
}

func (s *ClientSource) Identity() (feedapi.ID, string, bool) {
	return "", "", false
}

// SessionSource is the authenticated Source over a feedapi.Session.
// It also implements Mutator.
type SessionSource struct {
	session *feedapi.Session
}

// NewSessionSource wraps an authenticated session. The caller retains
// ownership of the session and closes it after the program exits.
func NewSessionSource(session *feedapi.Session) *SessionSource {
	return &SessionSource{session: session}
}

func (s *SessionSource) GlobalFeed(ctx context.Context) ([]feedapi.Post, error) {
	return s.session.GlobalFeed(ctx)
}

func (s *SessionSource) UserPosts(ctx context.Context, userID feedapi.ID) ([]feedapi.Post, error) {
	return s.session.UserPosts(ctx, userID)
}

func (s *SessionSource) Profile(ctx context.Context, userID feedapi.ID) (*feedapi.UserProfile, error) {
	return s.session.Profile(ctx, userID)
}

func (s *SessionSource) ResolveImageURL(post *feedapi.Post) string {
	return feedapi.ResolveImageURL(s.session.Client().BaseURL(), post)
}

func (s *SessionSource) Identity() (feedapi.ID, string, bool) {
	return s.session.UserID(), s.session.Username(), true
}

func (s *SessionSource) Like(ctx context.Context, postID feedapi.ID) error {
	return s.session.Like(ctx, postID)
}

func (s *SessionSource) Unlike(ctx context.Context, postID feedapi.ID) error {
	return s.session.Unlike(ctx, postID)
}

func (s *SessionSource) DeletePost(ctx context.Context, postID feedapi.ID) error {
	return s.session.DeletePost(ctx, postID)
}

func (s *SessionSource) UploadImage(ctx context.Context, fileName string, content io.Reader) (*feedapi.UploadResult, error) {
	return s.session.UploadImage(ctx, fileName, content)
}

func (s *SessionSource) CreatePost(ctx context.Context, request feedapi.CreatePostRequest) (*feedapi.Post, error) {
	return s.session.CreatePost(ctx, request)
}

// profileAPI adapts a Source to the profile.Loader's API surface.
type profileAPI struct {
	source Source
}

func (a profileAPI) Profile(ctx context.Context, userID feedapi.ID) (*feedapi.UserProfile, error) {
	return a.source.Profile(ctx, userID)
}

func (a profileAPI) UserPosts(ctx context.Context, userID feedapi.ID) ([]feedapi.Post, error) {
	return a.source.UserPosts(ctx, userID)
}

var _ profile.API = profileAPI{}
