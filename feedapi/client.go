// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/fotoline-project/fotoline/lib/netutil"
	"github.com/fotoline-project/fotoline/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the root of the photo-sharing API (e.g., "http://localhost:8000").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is an unauthenticated API client. It serves the public read
// surface and mints authenticated Sessions via Login.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new unauthenticated client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("feedapi: BaseURL is required")
	}

	// Validate the URL structure but store the string form (trailing slash
	// stripped) and build request URLs by concatenation. Going through
	// url.URL.String() re-encodes path segments, which corrupts
	// server-issued relative image paths that are already encoded.
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("feedapi: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the configured server base URL (no trailing slash).
// Image URL resolution for relative posts concatenates against this.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's pool. Call after a network disruption so the next request
// opens a fresh TCP connection instead of reusing a poisoned one.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// GlobalFeed fetches every post on the server, display-ordered: newest
// first, stable for equal timestamps. The returned slice is a fresh
// collection each call — callers replace, never merge.
func (c *Client) GlobalFeed(ctx context.Context) ([]Post, error) {
	return c.fetchFeed(ctx, "global feed", "/post/all", nil)
}

// UserPosts fetches the posts of a single user, display-ordered like
// GlobalFeed. Anonymous access; Session.UserPosts attaches credentials.
func (c *Client) UserPosts(ctx context.Context, userID ID) ([]Post, error) {
	return c.fetchFeed(ctx, "user posts", "/post/user/"+url.PathEscape(userID.String()), nil)
}

// Profile fetches a user's profile metadata anonymously. The server
// serves public profiles without credentials; Session.Profile attaches
// them when available.
func (c *Client) Profile(ctx context.Context, userID ID) (*UserProfile, error) {
	return c.fetchProfile(ctx, userID, nil)
}

// Login authenticates with username and password, returning a Session.
// On any failure the caller's view of the world is unchanged — no partial
// session is ever produced. The password buffer is read but not closed;
// the caller retains ownership.
func (c *Client) Login(ctx context.Context, username string, password *secret.Buffer) (*Session, error) {
	if username == "" {
		return nil, fmt.Errorf("feedapi: username is required for login")
	}
	if password == nil {
		return nil, fmt.Errorf("feedapi: password is required for login")
	}

	// The server implements the OAuth2 password flow, so login is
	// form-encoded rather than JSON. The password escapes the protected
	// buffer only inside the encoded form body for the duration of the
	// request.
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password.String())

	body, err := c.doRequestForm(ctx, "login", "/login", form)
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return nil, &ParseError{Op: "login", Err: err}
	}
	if err := auth.validate(); err != nil {
		return nil, &ParseError{Op: "login", Err: err}
	}

	c.logger.Info("logged in",
		"user_id", auth.UserID,
		"username", auth.Username,
	)

	return c.sessionFromAuth(&auth)
}

// Register creates a new account. Registration does not return a session;
// callers that want one chain into Login with the same credentials
// (sessionstore.Store.SignUp does exactly that). The password buffer is
// read but not closed.
func (c *Client) Register(ctx context.Context, username, email string, password *secret.Buffer) (*CreatedUser, error) {
	if username == "" {
		return nil, fmt.Errorf("feedapi: username is required for registration")
	}
	if email == "" {
		return nil, fmt.Errorf("feedapi: email is required for registration")
	}
	if password == nil {
		return nil, fmt.Errorf("feedapi: password is required for registration")
	}

	// Password is converted to string at the JSON serialization boundary;
	// the heap copy is short-lived.
	request := map[string]string{
		"username": username,
		"email":    email,
		"password": password.String(),
	}
	body, err := c.doRequest(ctx, "register", http.MethodPost, "/user/", nil, request, nil)
	if err != nil {
		return nil, err
	}

	var created CreatedUser
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &ParseError{Op: "register", Err: err}
	}

	c.logger.Info("registered account", "username", created.Username)
	return &created, nil
}

// SessionFromToken creates a Session from previously stored credentials.
// The token is moved into mmap-backed memory. This does NOT validate the
// token — the first authenticated call fails if it has expired.
//
// The caller must call Close on the returned Session.
func (c *Client) SessionFromToken(userID ID, username, tokenType, accessToken string) (*Session, error) {
	tokenBuffer, err := secret.NewFromString(accessToken)
	if err != nil {
		return nil, fmt.Errorf("feedapi: protecting access token: %w", err)
	}
	return &Session{
		client:      c,
		accessToken: tokenBuffer,
		tokenType:   tokenType,
		userID:      userID,
		username:    username,
	}, nil
}

func (c *Client) sessionFromAuth(auth *AuthResponse) (*Session, error) {
	tokenBuffer, err := secret.NewFromString(auth.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("feedapi: protecting access token: %w", err)
	}
	return &Session{
		client:      c,
		accessToken: tokenBuffer,
		tokenType:   auth.TokenType,
		userID:      auth.UserID,
		username:    auth.Username,
	}, nil
}

// fetchFeed fetches and display-orders a post collection. auth may be nil.
func (c *Client) fetchFeed(ctx context.Context, op, path string, auth *authorization) ([]Post, error) {
	body, err := c.doRequest(ctx, op, http.MethodGet, path, auth, nil, nil)
	if err != nil {
		return nil, err
	}

	var posts []Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, &ParseError{Op: op, Err: err}
	}
	for index := range posts {
		if err := posts[index].Validate(); err != nil {
			return nil, &ParseError{Op: op, Err: err}
		}
	}

	SortFeed(posts)
	return posts, nil
}

// fetchProfile fetches and validates a profile payload. auth may be nil.
func (c *Client) fetchProfile(ctx context.Context, userID ID, auth *authorization) (*UserProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("feedapi: profile requires a user id")
	}

	path := "/user/profile/" + url.PathEscape(userID.String())
	body, err := c.doRequest(ctx, "profile", http.MethodGet, path, auth, nil, nil)
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &ParseError{Op: "profile", Err: err}
	}
	if err := profile.Validate(); err != nil {
		return nil, &ParseError{Op: "profile", Err: err}
	}
	return &profile, nil
}

// authorization carries the credentials attached to a request. The token
// stays in protected memory until header assembly.
type authorization struct {
	tokenType string
	token     *secret.Buffer
}

// header renders the Authorization header value, "{tokenType} {token}".
func (a *authorization) header() string {
	return a.tokenType + " " + a.token.String()
}

// doRequest performs a JSON API request and returns the response body.
// On 2xx, returns the body. On 4xx/5xx, returns an *APIError. On
// transport failure, returns a *RequestError. auth, requestBody, and
// query may be nil.
func (c *Client) doRequest(ctx context.Context, op, method, path string, auth *authorization, requestBody any, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("feedapi: encoding %s request body: %w", op, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("feedapi: creating %s request: %w", op, err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	return c.send(op, request, auth)
}

// doRequestForm performs a form-encoded POST (the login endpoint).
func (c *Client) doRequestForm(ctx context.Context, op, path string, form url.Values) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("feedapi: creating %s request: %w", op, err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(op, request, nil)
}

// doRequestMultipart performs a multipart upload with a single file field.
func (c *Client) doRequestMultipart(ctx context.Context, op, path string, auth *authorization, fieldName, fileName string, content io.Reader) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return nil, fmt.Errorf("feedapi: building %s form: %w", op, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("feedapi: reading %s content: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("feedapi: finalizing %s form: %w", op, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("feedapi: creating %s request: %w", op, err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(op, request, auth)
}

// send executes a prepared request and classifies the outcome.
func (c *Client) send(op string, request *http.Request, auth *authorization) ([]byte, error) {
	if auth != nil {
		request.Header.Set("Authorization", auth.header())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return nil, errorFromResponse(response.StatusCode, responseBody)
}
