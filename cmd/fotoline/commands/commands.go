// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete Fotoline CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/fotoline-project/fotoline/cmd/fotoline/cli"
	feedcmd "github.com/fotoline-project/fotoline/cmd/fotoline/feed"
	postcmd "github.com/fotoline-project/fotoline/cmd/fotoline/post"
	socialcmd "github.com/fotoline-project/fotoline/cmd/fotoline/social"
	"github.com/fotoline-project/fotoline/lib/version"
)

// Root builds and returns the complete Fotoline CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "fotoline",
		Description: `Fotoline: a terminal client for photo-sharing servers.

Browse the feed, manage your posts, and follow people from the command
line, or open the full-screen viewer with "fotoline viewer".`,
		Subcommands: []*cli.Command{
			cli.LoginCommand(),
			cli.LogoutCommand(),
			cli.SignupCommand(),
			cli.WhoAmICommand(),
			feedcmd.FeedCommand(),
			feedcmd.ProfileCommand(),
			postcmd.Command(),
			socialcmd.FollowCommand(),
			socialcmd.UnfollowCommand(),
			viewerCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("fotoline %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Sign in (saves the session locally)",
				Command:     "fotoline login ada",
			},
			{
				Description: "Print the global feed",
				Command:     "fotoline feed",
			},
			{
				Description: "Upload a photo",
				Command:     "fotoline post create --image-file sunset.jpg --caption 'golden hour'",
			},
			{
				Description: "Open the full-screen viewer",
				Command:     "fotoline viewer",
			},
		},
	}
}

// viewerCommand dispatches to the fotoline-viewer binary via PATH
// lookup, passing the remaining arguments through unchanged. Keeping
// the TUI in its own binary keeps the CLI startup light.
func viewerCommand() *cli.Command {
	return &cli.Command{
		Name:    "viewer",
		Summary: "Open the full-screen feed viewer",
		Usage:   "fotoline viewer [viewer flags]",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			binary, err := exec.LookPath("fotoline-viewer")
			if err != nil {
				return cli.NotFound("fotoline-viewer binary not found in PATH").
					WithHint("Install it with 'go install github.com/fotoline-project/fotoline/cmd/fotoline-viewer@latest'.")
			}

			command := exec.CommandContext(ctx, binary, args...)
			command.Stdin = os.Stdin
			command.Stdout = os.Stdout
			command.Stderr = os.Stderr
			if err := command.Run(); err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					return &cli.ExitError{Code: exitErr.ExitCode()}
				}
				return cli.Internal("run viewer: %w", err)
			}
			return nil
		},
	}
}
