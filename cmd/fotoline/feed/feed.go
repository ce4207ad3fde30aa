// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package feed implements the "fotoline feed" and "fotoline profile"
// commands: read-only views over the global feed and user profiles.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fotoline-project/fotoline/cmd/fotoline/cli"
	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/profile"
)

type feedParams struct {
	cli.JSONOutput
	Connection cli.ClientConnection
	User       string `flag:"user" desc:"show only this user's posts (user id)"`
	URLs       bool   `flag:"urls" desc:"include resolved image URLs"`
}

// FeedCommand returns the "feed" command: print the global feed, newest
// first, or one user's posts with --user. Works without a session.
func FeedCommand() *cli.Command {
	var params feedParams

	return &cli.Command{
		Name:    "feed",
		Summary: "Show the global feed",
		Usage:   "fotoline feed [flags]",
		Examples: []cli.Example{
			{
				Description: "Print the global feed",
				Command:     "fotoline feed",
			},
			{
				Description: "Print one user's posts with image URLs",
				Command:     "fotoline feed --user 42 --urls",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			client, err := params.Connection.Client(logger)
			if err != nil {
				return err
			}
			defer client.CloseIdleConnections()

			var posts []feedapi.Post
			if params.User != "" {
				posts, err = client.UserPosts(ctx, feedapi.ID(params.User))
			} else {
				posts, err = client.GlobalFeed(ctx)
			}
			if err != nil {
				return fetchError("load feed", err)
			}

			if done, err := params.EmitJSON(posts); done {
				return err
			}

			if len(posts) == 0 {
				fmt.Fprintln(os.Stderr, "No posts.")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAUTHOR\tAGE\tLIKES\tCAPTION")
			for i := range posts {
				post := &posts[i]
				row := fmt.Sprintf("%s\t%s\t%s\t%d\t%s",
					post.ID, post.AuthorName(), age(post.Timestamp),
					post.LikeCount, firstLine(post.Caption))
				if params.URLs {
					row += "\t" + feedapi.ResolveImageURL(client.BaseURL(), post)
				}
				fmt.Fprintln(tw, row)
			}
			return tw.Flush()
		},
	}
}

type profileParams struct {
	cli.JSONOutput
	Connection cli.ClientConnection
}

// ProfileCommand returns the "profile" command. With an explicit user
// id argument it shows that user; without one it falls back to the
// signed-in user.
func ProfileCommand() *cli.Command {
	var params profileParams

	return &cli.Command{
		Name:    "profile",
		Summary: "Show a user profile",
		Usage:   "fotoline profile [user-id] [flags]",
		Examples: []cli.Example{
			{
				Description: "Show your own profile (requires login)",
				Command:     "fotoline profile",
			},
			{
				Description: "Show another user's profile",
				Command:     "fotoline profile 42",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument: %s", args[1])
			}
			var routeID feedapi.ID
			if len(args) == 1 {
				routeID = feedapi.ID(args[0])
			}

			session, _, err := params.Connection.Session(logger)
			if err != nil {
				return err
			}
			if session != nil {
				defer session.Close()
			}

			subject, ok := profile.Resolve(routeID, session)
			if !ok {
				return cli.Validation("no profile subject").
					WithHint("Pass a user id, or run 'fotoline login' to see your own profile.")
			}

			var api profile.API
			if session != nil {
				api = session
			} else {
				client, err := params.Connection.Client(logger)
				if err != nil {
					return err
				}
				defer client.CloseIdleConnections()
				api = client
			}

			loader, err := profile.NewLoader(api, logger)
			if err != nil {
				return cli.Internal("create profile loader: %w", err)
			}
			view, err := loader.Load(ctx, subject)
			if err != nil {
				return fetchError("load profile", err)
			}

			if done, err := params.EmitJSON(view); done {
				return err
			}

			printProfile(view)
			if view.Failed() {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// printProfile renders a loaded profile view as text. Either half may
// have failed independently; render what loaded and say what didn't.
func printProfile(view *profile.View) {
	if view.ProfileErr != nil {
		fmt.Fprintf(os.Stderr, "profile details unavailable: %v\n", view.ProfileErr)
	} else if view.Profile != nil {
		info := view.Profile
		fmt.Fprintf(os.Stdout, "@%s (user id %s)\n", info.Username, info.ID)
		if info.Email != "" {
			fmt.Fprintf(os.Stdout, "  %s\n", info.Email)
		}
		fmt.Fprintf(os.Stdout, "  %d posts · %d followers · %d following\n",
			info.PostsCount, info.FollowersCount, info.FollowingCount)
	}

	if view.PostsErr != nil {
		fmt.Fprintf(os.Stderr, "posts unavailable: %v\n", view.PostsErr)
		return
	}
	for i := range view.Posts {
		post := &view.Posts[i]
		fmt.Fprintf(os.Stdout, "  %s  %s  %s\n", post.ID, age(post.Timestamp), firstLine(post.Caption))
	}
}

// fetchError maps feedapi error kinds onto CLI categories so scripts
// can tell a down server from a bad id.
func fetchError(op string, err error) error {
	switch {
	case feedapi.IsStatus(err, 404):
		return cli.NotFound("%s: %w", op, err)
	case feedapi.IsRequestError(err):
		return cli.Transient("%s: %w", op, err).
			WithHint("Is the server reachable? Check --server or the config file.")
	default:
		return cli.Internal("%s: %w", op, err)
	}
}

func firstLine(caption string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(caption), "\n")
	return line
}

// age formats a post timestamp as a compact age ("3h", "2d"). An
// unparseable timestamp renders as "-".
func age(timestamp string) string {
	at, ok := feedapi.ParseTimestamp(timestamp)
	if !ok {
		return "-"
	}
	elapsed := time.Since(at)
	switch {
	case elapsed < time.Minute:
		return "now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd", int(elapsed.Hours()/24))
	}
}
