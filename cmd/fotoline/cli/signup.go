// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fotoline-project/fotoline/sessionstore"
)

type signupParams struct {
	Connection   ClientConnection
	Email        string `flag:"email" desc:"email address for the new account (required)"`
	PasswordFile string `flag:"password-file" desc:"path to file containing the password, or - to prompt interactively (default: prompt)"`
}

// SignupCommand returns the "signup" command: create an account and
// sign in with it in one step.
func SignupCommand() *Command {
	var params signupParams

	return &Command{
		Name:    "signup",
		Summary: "Create an account and sign in",
		Description: `Create a new account and immediately sign in with it.

Registration and sign-in are separate server operations. If the account
is created but the chained sign-in fails, the account still exists; the
error says so, and a plain "fotoline login" will work once the cause is
resolved.`,
		Usage: "fotoline signup <username> --email <address> [flags]",
		Examples: []Example{
			{
				Description: "Create an account interactively",
				Command:     "fotoline signup ada --email ada@example.com",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) < 1 {
				return Validation("username is required\n\nUsage: fotoline signup <username> --email <address> [flags]")
			}
			username := args[0]
			if len(args) > 1 {
				return Validation("unexpected argument: %s", args[1])
			}
			if params.Email == "" {
				return Validation("--email is required")
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

			session, err := store.SignUp(ctx, username, params.Email, password)
			if err != nil {
				var signInErr *sessionstore.SignInError
				if errors.As(err, &signInErr) {
					return Internal("account %q created, but signing in with it failed: %w",
						signInErr.Username, signInErr.Err).
						WithHint("The account exists. Run 'fotoline login " + signInErr.Username + "' to retry.")
				}
				return Internal("signup failed: %w", err)
			}
			defer session.Close()

			fmt.Fprintf(os.Stderr, "Welcome, %s (user id %s). You are signed in.\n",
				session.Username(), session.UserID())
			return nil
		},
	}
}
