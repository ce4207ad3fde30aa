// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fotoline-project/fotoline/feedapi"
)

// loginParams holds the parameters for the login command.
type loginParams struct {
	Connection   ClientConnection
	PasswordFile string `flag:"password-file" desc:"path to file containing the password, or - to prompt interactively (default: prompt)"`
}

// LoginCommand returns the "login" command. It signs in against the
// server and persists the session to the session directory; subsequent
// commands (feed, post, follow) pick it up transparently.
func LoginCommand() *Command {
	var params loginParams

	return &Command{
		Name:    "login",
		Summary: "Sign in and save the session locally",
		Description: `Sign in to a Fotoline server and save the session locally.

After login, commands like "fotoline post create" and "fotoline follow"
use the saved session transparently — no flags needed. The session is
stored as one file per field under the configured session directory
(default ~/.cache/fotoline/session), written with owner-only
permissions since it contains the access token.

The password can be provided via --password-file (a path to a file
containing the password) or prompted interactively if --password-file
is "-" or omitted.`,
		Usage: "fotoline login <username> [flags]",
		Examples: []Example{
			{
				Description: "Log in interactively (prompts for password)",
				Command:     "fotoline login ada",
			},
			{
				Description: "Log in against a specific server",
				Command:     "fotoline login ada --server http://photos.example.com:8000",
			},
			{
				Description: "Log in with password from file",
				Command:     "fotoline login ada --password-file /path/to/password",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) < 1 {
				return Validation("username is required\n\nUsage: fotoline login <username> [flags]")
			}
			username := args[0]
			if len(args) > 1 {
				return Validation("unexpected argument: %s", args[1])
			}

			password, err := ReadPassword(params.PasswordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			store, err := params.Connection.Store(logger)
			if err != nil {
				return err
			}

			session, err := store.SignIn(ctx, username, password)
			if err != nil {
				var apiErr *feedapi.APIError
				if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
					return Forbidden("login failed: %s", apiErr.Detail).
						WithHint("Check the username and password. New here? Run 'fotoline signup'.")
				}
				return Internal("login failed: %w", err)
			}
			defer session.Close()

			fmt.Fprintf(os.Stderr, "Logged in as %s (user id %s)\n", session.Username(), session.UserID())
			return nil
		},
	}
}
