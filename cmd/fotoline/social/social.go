// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package social implements the "fotoline follow" and "fotoline
// unfollow" commands.
package social

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fotoline-project/fotoline/cmd/fotoline/cli"
	"github.com/fotoline-project/fotoline/feedapi"
)

type followParams struct {
	Connection cli.ClientConnection
}

// FollowCommand returns the "follow" command.
func FollowCommand() *cli.Command {
	var params followParams

	return &cli.Command{
		Name:    "follow",
		Summary: "Follow a user",
		Usage:   "fotoline follow <user-id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Follow user 42",
				Command:     "fotoline follow 42",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			userID, err := singleUserID(args)
			if err != nil {
				return err
			}

			session, _, err := params.Connection.RequireSession(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Follow(ctx, userID); err != nil {
				return followError("follow", err)
			}
			fmt.Fprintf(os.Stderr, "Now following %s.\n", userID)
			return nil
		},
	}
}

// UnfollowCommand returns the "unfollow" command.
func UnfollowCommand() *cli.Command {
	var params followParams

	return &cli.Command{
		Name:    "unfollow",
		Summary: "Stop following a user",
		Usage:   "fotoline unfollow <user-id> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			userID, err := singleUserID(args)
			if err != nil {
				return err
			}

			session, _, err := params.Connection.RequireSession(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Unfollow(ctx, userID); err != nil {
				return followError("unfollow", err)
			}
			fmt.Fprintf(os.Stderr, "Unfollowed %s.\n", userID)
			return nil
		},
	}
}

func singleUserID(args []string) (feedapi.ID, error) {
	if len(args) < 1 {
		return "", cli.Validation("user id is required")
	}
	if len(args) > 1 {
		return "", cli.Validation("unexpected argument: %s", args[1])
	}
	return feedapi.ID(args[0]), nil
}

// followError categorizes follow/unfollow failures. The server answers
// self-follow and double-follow with 400; surface those as conflicts
// rather than pre-validating them away.
func followError(op string, err error) error {
	switch {
	case feedapi.IsStatus(err, 404):
		return cli.NotFound("%s: %w", op, err)
	case feedapi.IsStatus(err, 400):
		return cli.Conflict("%s: %w", op, err)
	case feedapi.IsStatus(err, 401):
		return cli.Forbidden("%s: %w", op, err).
			WithHint("Your saved session may have expired. Run 'fotoline login' again.")
	case feedapi.IsRequestError(err):
		return cli.Transient("%s: %w", op, err)
	default:
		return cli.Internal("%s: %w", op, err)
	}
}
