// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

type whoamiParams struct {
	Connection ClientConnection
}

// WhoAmICommand returns the "whoami" command: print the saved session's
// identity without a network round trip. Exits 1 when not signed in so
// scripts can branch on it.
func WhoAmICommand() *Command {
	var params whoamiParams

	return &Command{
		Name:    "whoami",
		Summary: "Show the signed-in user",
		Usage:   "fotoline whoami [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}

			session, _, err := params.Connection.Session(logger)
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Fprintln(os.Stderr, "Not signed in.")
				return &ExitError{Code: 1}
			}
			defer session.Close()

			fmt.Fprintf(os.Stdout, "%s (user id %s)\n", session.Username(), session.UserID())
			return nil
		},
	}
}
