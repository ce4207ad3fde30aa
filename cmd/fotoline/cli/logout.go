// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

type logoutParams struct {
	Connection ClientConnection
}

// LogoutCommand returns the "logout" command: clear the saved session.
// The server has no logout endpoint; forgetting the token locally is
// the whole operation.
func LogoutCommand() *Command {
	var params logoutParams

	return &Command{
		Name:    "logout",
		Summary: "Forget the saved session",
		Usage:   "fotoline logout [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}

			session, store, err := params.Connection.Session(logger)
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Fprintln(os.Stderr, "Not signed in.")
				return nil
			}

			username := session.Username()
			if err := store.SignOut(session); err != nil {
				return Internal("clear session: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Signed out %s.\n", username)
			return nil
		},
	}
}
