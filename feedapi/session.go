// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/fotoline-project/fotoline/lib/netutil"
	"github.com/fotoline-project/fotoline/lib/secret"
)

// Session is an authenticated API client. Create via Client.Login or
// Client.SessionFromToken. The access token lives in mmap-backed memory
// outside the Go heap for the session's lifetime; call Close to release
// and zero it.
type Session struct {
	client      *Client
	accessToken *secret.Buffer
	tokenType   string
	userID      ID
	username    string
}

// UserID returns the signed-in user's server-assigned identifier.
func (s *Session) UserID() ID {
	return s.userID
}

// Username returns the signed-in user's handle.
func (s *Session) Username() string {
	return s.username
}

// TokenType returns the token scheme the server issued (typically "bearer").
func (s *Session) TokenType() string {
	return s.tokenType
}

// AccessToken returns the raw access token as a string for persistence.
// The returned string is an unprotected heap copy; persist it promptly
// and do not retain it.
func (s *Session) AccessToken() string {
	return s.accessToken.String()
}

// Client returns the underlying unauthenticated client.
func (s *Session) Client() *Client {
	return s.client
}

// Close releases the protected token buffer. The session must not be
// used afterward. Safe to call multiple times.
func (s *Session) Close() error {
	return s.accessToken.Close()
}

func (s *Session) auth() *authorization {
	return &authorization{tokenType: s.tokenType, token: s.accessToken}
}

// GlobalFeed fetches every post on the server with credentials attached.
// Ordering matches Client.GlobalFeed.
func (s *Session) GlobalFeed(ctx context.Context) ([]Post, error) {
	return s.client.fetchFeed(ctx, "global feed", "/post/all", s.auth())
}

// UserPosts fetches a single user's posts with credentials attached.
func (s *Session) UserPosts(ctx context.Context, userID ID) ([]Post, error) {
	return s.client.fetchFeed(ctx, "user posts", "/post/user/"+url.PathEscape(userID.String()), s.auth())
}

// Profile fetches a user's profile with credentials attached.
func (s *Session) Profile(ctx context.Context, userID ID) (*UserProfile, error) {
	return s.client.fetchProfile(ctx, userID, s.auth())
}

// OwnProfile fetches the signed-in user's profile.
func (s *Session) OwnProfile(ctx context.Context) (*UserProfile, error) {
	return s.client.fetchProfile(ctx, s.userID, s.auth())
}

// CreatePost publishes a post referencing an already-uploaded image
// (ImageURLRelative with the filename returned by UploadImage) or an
// external image (ImageURLAbsolute with a full URL).
func (s *Session) CreatePost(ctx context.Context, request CreatePostRequest) (*Post, error) {
	if request.ImageURL == "" {
		return nil, fmt.Errorf("feedapi: create post requires an image url")
	}
	if !request.ImageURLType.Valid() {
		return nil, fmt.Errorf("feedapi: create post: unknown image url type %q", request.ImageURLType)
	}
	request.CreatorID = s.userID

	body, err := s.client.doRequest(ctx, "create post", http.MethodPost, "/post", s.auth(), request, nil)
	if err != nil {
		return nil, err
	}

	var post Post
	if err := json.Unmarshal(body, &post); err != nil {
		return nil, &ParseError{Op: "create post", Err: err}
	}
	if err := post.Validate(); err != nil {
		return nil, &ParseError{Op: "create post", Err: err}
	}

	s.client.logger.Info("created post", "post_id", post.ID)
	return &post, nil
}

// UploadImage uploads image content, returning the server-side filename
// to reference in a subsequent CreatePost, plus a BLAKE3 checksum of the
// uploaded bytes for local cache addressing. fileName supplies the
// extension the server preserves; only the base name is sent.
func (s *Session) UploadImage(ctx context.Context, fileName string, content io.Reader) (*UploadResult, error) {
	if fileName == "" {
		return nil, fmt.Errorf("feedapi: upload requires a file name")
	}

	// Buffer the content so the checksum covers exactly the bytes sent.
	var buffered bytes.Buffer
	hasher := blake3.New()
	if _, err := io.Copy(io.MultiWriter(&buffered, hasher), content); err != nil {
		return nil, fmt.Errorf("feedapi: reading upload content: %w", err)
	}

	body, err := s.client.doRequestMultipart(ctx, "upload image", "/post/image", s.auth(), "image", filepath.Base(fileName), &buffered)
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ParseError{Op: "upload image", Err: err}
	}
	if result.Filename == "" {
		return nil, &ParseError{Op: "upload image", Err: fmt.Errorf("response missing filename")}
	}
	result.Checksum = fmt.Sprintf("%x", hasher.Sum(nil))

	s.client.logger.Info("uploaded image",
		"filename", result.Filename,
		"bytes", buffered.Len(),
	)
	return &result, nil
}

// DeletePost removes one of the signed-in user's posts. The server only
// honors deletion by the post's creator.
func (s *Session) DeletePost(ctx context.Context, postID ID) error {
	if postID == "" {
		return fmt.Errorf("feedapi: delete post requires a post id")
	}

	// The server routes deletion as a GET.
	_, err := s.client.doRequest(ctx, "delete post", http.MethodGet, "/post/delete/"+url.PathEscape(postID.String()), s.auth(), nil, nil)
	if err != nil {
		return err
	}

	s.client.logger.Info("deleted post", "post_id", postID)
	return nil
}

// Like records the signed-in user's like on a post. Liking an
// already-liked post is a conflict the server rejects; callers treat the
// resulting *APIError as advisory, not fatal.
func (s *Session) Like(ctx context.Context, postID ID) error {
	return s.likeRequest(ctx, "like", http.MethodPost, "/like", postID)
}

// Unlike removes the signed-in user's like from a post.
func (s *Session) Unlike(ctx context.Context, postID ID) error {
	return s.likeRequest(ctx, "unlike", http.MethodDelete, "/unlike", postID)
}

func (s *Session) likeRequest(ctx context.Context, op, method, suffix string, postID ID) error {
	if postID == "" {
		return fmt.Errorf("feedapi: %s requires a post id", op)
	}

	query := url.Values{}
	query.Set("user_id", s.userID.String())

	_, err := s.client.doRequest(ctx, op, method, "/post/"+url.PathEscape(postID.String())+suffix, s.auth(), nil, query)
	return err
}

// LikesCount fetches the number of likes on a post.
func (s *Session) LikesCount(ctx context.Context, postID ID) (int, error) {
	if postID == "" {
		return 0, fmt.Errorf("feedapi: likes count requires a post id")
	}

	body, err := s.client.doRequest(ctx, "likes count", http.MethodGet, "/post/"+url.PathEscape(postID.String())+"/likes/count", s.auth(), nil, nil)
	if err != nil {
		return 0, err
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, &ParseError{Op: "likes count", Err: err}
	}
	return result.Count, nil
}

// Likes fetches the users who liked a post.
func (s *Session) Likes(ctx context.Context, postID ID) ([]LikeEntry, error) {
	if postID == "" {
		return nil, fmt.Errorf("feedapi: likes requires a post id")
	}

	body, err := s.client.doRequest(ctx, "likes", http.MethodGet, "/post/"+url.PathEscape(postID.String())+"/likes", s.auth(), nil, nil)
	if err != nil {
		return nil, err
	}

	// The server wraps the list in a {"likes": [...]} envelope.
	var result struct {
		Likes []LikeEntry `json:"likes"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ParseError{Op: "likes", Err: err}
	}
	return result.Likes, nil
}

// Follow subscribes the signed-in user to another user's posts.
func (s *Session) Follow(ctx context.Context, userID ID) error {
	return s.followRequest(ctx, "follow", http.MethodPost, "/user/follow/", userID)
}

// Unfollow removes a subscription.
func (s *Session) Unfollow(ctx context.Context, userID ID) error {
	return s.followRequest(ctx, "unfollow", http.MethodDelete, "/user/unfollow/", userID)
}

func (s *Session) followRequest(ctx context.Context, op, method, prefix string, userID ID) error {
	if userID == "" {
		return fmt.Errorf("feedapi: %s requires a user id", op)
	}

	// Self-follow is the server's rule to enforce; it answers 400 and
	// that APIError is what callers should see.
	_, err := s.client.doRequest(ctx, op, method, prefix+url.PathEscape(userID.String()), s.auth(), nil, nil)
	return err
}

// FetchImage downloads a post's image through the session's HTTP client.
// resolvedURL must already be absolute (see ResolveImageURL). Larger
// response limit than the JSON surface.
func (s *Session) FetchImage(ctx context.Context, resolvedURL string) ([]byte, error) {
	return s.client.FetchImage(ctx, resolvedURL)
}

// FetchImage downloads an image anonymously. resolvedURL must already be
// absolute (see ResolveImageURL).
func (c *Client) FetchImage(ctx context.Context, resolvedURL string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, resolvedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("feedapi: creating image request: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &RequestError{Op: "fetch image", Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errorFromResponse(response.StatusCode, netutil.ErrorBody(response.Body))
	}

	imageBytes, err := netutil.ReadImage(response.Body)
	if err != nil {
		return nil, &RequestError{Op: "fetch image", Err: err}
	}
	return imageBytes, nil
}
