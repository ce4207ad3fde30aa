// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/secret"
)

// SignInError reports that an account exists but signing into it failed.
// SignUp returns it when registration succeeded and the chained sign-in
// did not: the account is live on the server, only the local session is
// missing.
type SignInError struct {
	Username string
	Err      error
}

func (e *SignInError) Error() string {
	return fmt.Sprintf("sessionstore: signing in as %s: %v", e.Username, e.Err)
}

func (e *SignInError) Unwrap() error {
	return e.Err
}

// StoreConfig holds configuration for creating a Store.
type StoreConfig struct {
	// Backend persists the session fields. Required.
	Backend Backend
	// Client mints sessions against the API. Required.
	Client *feedapi.Client
	// Logger is used for structured logging. If nil, slog.Default().
	Logger *slog.Logger
}

// Store coordinates the credential lifecycle between the API client and
// the persistence backend.
type Store struct {
	backend Backend
	client  *feedapi.Client
	logger  *slog.Logger
}

// NewStore creates a Store.
func NewStore(config StoreConfig) (*Store, error) {
	if config.Backend == nil {
		return nil, fmt.Errorf("sessionstore: Backend is required")
	}
	if config.Client == nil {
		return nil, fmt.Errorf("sessionstore: Client is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: config.Backend, client: config.Client, logger: logger}, nil
}

// Hydrate rebuilds a session from the backend. Returns (nil, nil) when no
// complete session is stored: missing any of the four fields means
// anonymous, it is not an error. The token is not validated against the
// server; an expired token surfaces on the first authenticated call.
//
// The caller must Close a non-nil session.
func (s *Store) Hydrate() (*feedapi.Session, error) {
	fields := make(map[string]string, len(sessionKeys))
	for _, key := range sessionKeys {
		value, ok, err := s.backend.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok || value == "" {
			return nil, nil
		}
		fields[key] = value
	}

	session, err := s.client.SessionFromToken(
		feedapi.ID(fields[KeyUserID]),
		fields[KeyUsername],
		fields[KeyAuthTokenType],
		fields[KeyAuthToken],
	)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("hydrated session",
		"user_id", session.UserID(),
		"username", session.Username(),
	)
	return session, nil
}

// Persist writes the session's four fields to the backend as a unit. If
// any write fails, the backend is cleared so a partial session is never
// left behind.
func (s *Store) Persist(session *feedapi.Session) error {
	writes := map[string]string{
		KeyAuthToken:     session.AccessToken(),
		KeyAuthTokenType: session.TokenType(),
		KeyUsername:      session.Username(),
		KeyUserID:        session.UserID().String(),
	}
	for _, key := range sessionKeys {
		if err := s.backend.Set(key, writes[key]); err != nil {
			return errors.Join(err, s.Clear())
		}
	}
	return nil
}

// Clear removes all four session fields from the backend. Absent fields
// are skipped; every present field is attempted even if an earlier delete
// fails.
func (s *Store) Clear() error {
	var errs []error
	for _, key := range sessionKeys {
		if err := s.backend.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SignIn authenticates and persists the resulting session. On any
// failure no session is returned and the backend is unchanged except
// that a persistence failure clears it.
//
// The caller must Close the returned session; the password buffer stays
// owned by the caller.
func (s *Store) SignIn(ctx context.Context, username string, password *secret.Buffer) (*feedapi.Session, error) {
	session, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.Persist(session); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

// SignUp registers an account and signs into it with the same
// credentials. If registration succeeds but the chained sign-in fails,
// the error is a *SignInError: the account exists and the user can retry
// SignIn without registering again.
func (s *Store) SignUp(ctx context.Context, username, email string, password *secret.Buffer) (*feedapi.Session, error) {
	created, err := s.client.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	session, err := s.SignIn(ctx, created.Username, password)
	if err != nil {
		return nil, &SignInError{Username: created.Username, Err: err}
	}
	return session, nil
}

// SignOut clears the backend and closes the live session. session may be
// nil (signing out while anonymous clears any stored leftovers).
func (s *Store) SignOut(session *feedapi.Session) error {
	err := s.Clear()
	if session != nil {
		err = errors.Join(err, session.Close())
	}
	if err == nil {
		s.logger.Info("signed out")
	}
	return err
}
