// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/config"
	"github.com/fotoline-project/fotoline/sessionstore"
)

// ClientConnection carries the flags shared by every command that talks
// to the server: where the server is, where local state lives, and how
// long requests may take. It implements [FlagBinder] so commands embed
// it in their params struct.
//
// Flag values override the config file, which overrides built-in
// defaults. An empty flag leaves the config value in place.
type ClientConnection struct {
	ConfigFile string
	Server     string
	SessionDir string
	Timeout    time.Duration

	// resolved is the effective config after Resolve.
	resolved *config.Config
}

// AddFlags implements FlagBinder.
func (c *ClientConnection) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.ConfigFile, "config", "", "path to fotoline.yaml (default: $FOTOLINE_CONFIG if set)")
	flagSet.StringVar(&c.Server, "server", "", "base URL of the photo-sharing server (overrides config)")
	flagSet.StringVar(&c.SessionDir, "session-dir", "", "directory holding the saved session (overrides config)")
	flagSet.DurationVar(&c.Timeout, "timeout", 0, "per-request timeout (overrides config)")
}

// Resolve loads the effective configuration: the --config file if
// given, else $FOTOLINE_CONFIG if set, else built-in defaults, with
// flag overrides applied on top.
func (c *ClientConnection) Resolve() (*config.Config, error) {
	if c.resolved != nil {
		return c.resolved, nil
	}

	var cfg *config.Config
	var err error
	switch {
	case c.ConfigFile != "":
		cfg, err = config.LoadFile(c.ConfigFile)
	case os.Getenv("FOTOLINE_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, Validation("load config: %w", err)
	}

	if c.Server != "" {
		cfg.API.BaseURL = c.Server
	}
	if c.SessionDir != "" {
		cfg.Paths.SessionDir = c.SessionDir
	}
	if c.Timeout > 0 {
		cfg.API.RequestTimeout = c.Timeout
	}

	c.resolved = cfg
	return cfg, nil
}

// Client builds an anonymous API client from the resolved config.
func (c *ClientConnection) Client(logger *slog.Logger) (*feedapi.Client, error) {
	cfg, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	client, err := feedapi.NewClient(feedapi.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.API.RequestTimeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, Validation("create client: %w", err)
	}
	return client, nil
}

// Store builds the session store over the configured session directory.
func (c *ClientConnection) Store(logger *slog.Logger) (*sessionstore.Store, error) {
	cfg, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	backend, err := sessionstore.NewDirBackend(cfg.Paths.SessionDir)
	if err != nil {
		return nil, Internal("open session directory: %w", err)
	}
	client, err := c.Client(logger)
	if err != nil {
		return nil, err
	}
	return sessionstore.NewStore(sessionstore.StoreConfig{
		Backend: backend,
		Client:  client,
		Logger:  logger,
	})
}

// Session hydrates the saved session, if any. A nil session with a nil
// error means no one is signed in.
func (c *ClientConnection) Session(logger *slog.Logger) (*feedapi.Session, *sessionstore.Store, error) {
	store, err := c.Store(logger)
	if err != nil {
		return nil, nil, err
	}
	session, err := store.Hydrate()
	if err != nil {
		return nil, nil, Internal("load saved session: %w", err)
	}
	return session, store, nil
}

// RequireSession hydrates the saved session and fails with a sign-in
// hint when there is none.
func (c *ClientConnection) RequireSession(logger *slog.Logger) (*feedapi.Session, *sessionstore.Store, error) {
	session, store, err := c.Session(logger)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, Forbidden("not signed in").
			WithHint("Run 'fotoline login <username>' first.")
	}
	return session, store, nil
}
