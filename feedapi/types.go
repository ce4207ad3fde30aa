// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a server-assigned identifier (user id, post id). The server emits
// them as JSON numbers but every client-side use is opaque — route segments,
// storage keys, equality checks — so they are carried as strings. The
// custom unmarshaller accepts either representation.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*id = ID(value)
		return nil
	}
	if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
		return fmt.Errorf("id is neither a string nor an integer: %s", trimmed)
	}
	*id = ID(trimmed)
	return nil
}

func (id ID) String() string { return string(id) }

// ImageURLType says how a post's image URL is to be interpreted.
type ImageURLType string

const (
	// ImageURLAbsolute means the URL is complete and used verbatim.
	ImageURLAbsolute ImageURLType = "absolute"
	// ImageURLRelative means the URL is a path resolved against the
	// server base URL (uploaded images are served from the same host).
	ImageURLRelative ImageURLType = "relative"
)

// Valid reports whether the value is one of the two defined types.
func (t ImageURLType) Valid() bool {
	return t == ImageURLAbsolute || t == ImageURLRelative
}

// Post is one photo post as returned by the feed endpoints. Immutable on
// the client; a refresh replaces the whole collection.
type Post struct {
	ID           ID           `json:"id"`
	ImageURL     string       `json:"image_url"`
	ImageURLType ImageURLType `json:"image_url_type"`
	Caption      string       `json:"caption"`
	Timestamp    string       `json:"timestamp"`
	UserID       ID           `json:"user_id"`
	User         *UserSummary `json:"user,omitempty"`
	LikeCount    int          `json:"like_count,omitempty"`
}

// Validate checks the invariants the rest of the client relies on. Called
// on every decoded post so that a shape mismatch surfaces as a ParseError
// at the request site instead of an undefined value downstream.
func (p *Post) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("post has no id")
	}
	if !p.ImageURLType.Valid() {
		return fmt.Errorf("post %s has unknown image_url_type %q", p.ID, p.ImageURLType)
	}
	return nil
}

// AuthorName returns the display name for the post's author, falling back
// to the author id when the server omitted the embedded user record.
func (p *Post) AuthorName() string {
	if p.User != nil && p.User.Username != "" {
		return p.User.Username
	}
	return p.UserID.String()
}

// UserSummary is the embedded author record on a post.
type UserSummary struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

// UserProfile is the payload of GET user/profile/{id}.
type UserProfile struct {
	ID             ID                   `json:"id"`
	Username       string               `json:"username"`
	Email          string               `json:"email"`
	Avatar         string               `json:"avatar,omitempty"`
	AvatarURLType  ImageURLType         `json:"avatar_url_type,omitempty"`
	FollowersCount int                  `json:"followers_count"`
	FollowingCount int                  `json:"following_count"`
	PostsCount     int                  `json:"posts_count"`
	Posts          []ProfilePostSummary `json:"posts"`
}

// Validate checks the invariants of a profile payload.
func (p *UserProfile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile has no id")
	}
	if p.Username == "" {
		return fmt.Errorf("profile %s has no username", p.ID)
	}
	return nil
}

// ProfilePostSummary is the lightweight post record embedded in a profile
// payload (no image, just enough for counts and captions).
type ProfilePostSummary struct {
	ID        ID     `json:"id"`
	Caption   string `json:"caption"`
	Timestamp string `json:"timestamp"`
}

// AuthResponse is returned by POST login.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      ID     `json:"user_id"`
	Username    string `json:"username"`
}

// validate checks that the server sent a complete session. A partial auth
// payload must never become a partial client session.
func (a *AuthResponse) validate() error {
	if a.AccessToken == "" {
		return fmt.Errorf("auth response has no access_token")
	}
	if a.TokenType == "" {
		return fmt.Errorf("auth response has no token_type")
	}
	if a.UserID == "" {
		return fmt.Errorf("auth response has no user_id")
	}
	if a.Username == "" {
		return fmt.Errorf("auth response has no username")
	}
	return nil
}

// CreatedUser is returned by POST user/ (registration). Registration does
// not return a session — callers that want one sign in afterwards.
type CreatedUser struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreatePostRequest is the body of POST post.
type CreatePostRequest struct {
	ImageURL     string       `json:"image_url"`
	ImageURLType ImageURLType `json:"image_url_type"`
	Caption      string       `json:"caption"`
	CreatorID    ID           `json:"creator_id"`
}

// UploadResult is returned by POST post/image. Filename is the
// server-relative path of the stored image, suitable as the ImageURL of a
// subsequent CreatePostRequest with ImageURLRelative.
type UploadResult struct {
	Filename string `json:"filename"`
	// Checksum is the client-computed BLAKE3 hex digest of the uploaded
	// bytes. Not part of the wire payload; recorded for logging and
	// media-cache seeding.
	Checksum string `json:"-"`
}

// LikeEntry identifies one user who liked a post.
type LikeEntry struct {
	UserID   ID     `json:"user_id"`
	Username string `json:"username"`
}

// timestampFormats are the layouts the server has been observed to emit:
// naive ISO 8601 datetimes (with and without fractional seconds) and full
// RFC 3339.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a server timestamp. Returns false when no known
// layout matches; callers decide how to order unparseable values.
func ParseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampFormats {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
