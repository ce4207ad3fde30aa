// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package post implements the "fotoline post" command group: creating,
// deleting, liking, and fetching posts. Everything except "image"
// requires a saved session.
package post

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fotoline-project/fotoline/cmd/fotoline/cli"
	"github.com/fotoline-project/fotoline/feedapi"
)

// Command returns the "post" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "post",
		Summary: "Create, delete, like, and fetch posts",
		Subcommands: []*cli.Command{
			createCommand(),
			deleteCommand(),
			likeCommand(),
			unlikeCommand(),
			likesCommand(),
			imageCommand(),
		},
	}
}

type createParams struct {
	Connection cli.ClientConnection
	Caption    string `flag:"caption" desc:"post caption (markdown)"`
	ImageURL   string `flag:"image-url" desc:"absolute URL of an already-hosted image"`
	ImageFile  string `flag:"image-file" desc:"local image file to upload"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a post",
		Description: `Create a post from a local image file or an already-hosted URL.

With --image-file, the image is uploaded first and the post references
the server's copy. With --image-url, the post references the URL as-is.
Exactly one of the two must be given.`,
		Usage: "fotoline post create --image-file photo.jpg [--caption text] [flags]",
		Examples: []cli.Example{
			{
				Description: "Upload a photo with a caption",
				Command:     "fotoline post create --image-file sunset.jpg --caption 'golden hour'",
			},
			{
				Description: "Post an externally hosted image",
				Command:     "fotoline post create --image-url https://pics.example.com/a.jpg",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if (params.ImageFile == "") == (params.ImageURL == "") {
				return cli.Validation("exactly one of --image-file or --image-url is required")
			}

			session, _, err := params.Connection.RequireSession(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			request := feedapi.CreatePostRequest{Caption: params.Caption}
			if params.ImageFile != "" {
				file, err := os.Open(params.ImageFile)
				if err != nil {
					return cli.Validation("open image: %w", err)
				}
				result, err := session.UploadImage(ctx, params.ImageFile, file)
				file.Close()
				if err != nil {
					return uploadError(err)
				}
				logger.Info("image uploaded",
					"filename", result.Filename, "blake3", result.Checksum)
				request.ImageURL = result.Filename
				request.ImageURLType = feedapi.ImageURLRelative
			} else {
				request.ImageURL = params.ImageURL
				request.ImageURLType = feedapi.ImageURLAbsolute
			}

			created, err := session.CreatePost(ctx, request)
			if err != nil {
				return uploadError(err)
			}

			fmt.Fprintf(os.Stderr, "Created post %s.\n", created.ID)
			return nil
		},
	}
}

type sessionOnlyParams struct {
	Connection cli.ClientConnection
}

func deleteCommand() *cli.Command {
	var params sessionOnlyParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete one of your posts",
		Usage:   "fotoline post delete <post-id> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			postID, err := singlePostID(args)
			if err != nil {
				return err
			}

			session, _, err := params.Connection.RequireSession(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.DeletePost(ctx, postID); err != nil {
				return mutationError("delete post", err)
			}
			fmt.Fprintf(os.Stderr, "Deleted post %s.\n", postID)
			return nil
		},
	}
}

func likeCommand() *cli.Command {
	var params sessionOnlyParams

	return &cli.Command{
		Name:    "like",
		Summary: "Like a post",
		Usage:   "fotoline post like <post-id> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			postID, err := singlePostID(args)
			if err != nil {
				return err
			}

			session, _, err := params.Connection.RequireSession(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Like(ctx, postID); err != nil {
				return mutationError("like post", err)
			}
			fmt.Fprintf(os.Stderr, "Liked post %s.\n", postID)
			return nil
		},
	}
}

func unlikeCommand() *cli.Command {
	var params sessionOnlyParams

	return &cli.Command{
		Name:    "unlike",
		Summary: "Remove your like from a post",
		Usage:   "fotoline post unlike <post-id> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			postID, err := singlePostID(args)
			if err != nil {
				return err
			}

			session, _, err := params.Connection.RequireSession(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Unlike(ctx, postID); err != nil {
				return mutationError("unlike post", err)
			}
			fmt.Fprintf(os.Stderr, "Unliked post %s.\n", postID)
			return nil
		},
	}
}

type likesParams struct {
	cli.JSONOutput
	Connection cli.ClientConnection
	CountOnly  bool `flag:"count" desc:"print only the like count"`
}

func likesCommand() *cli.Command {
	var params likesParams

	return &cli.Command{
		Name:    "likes",
		Summary: "List who liked a post",
		Usage:   "fotoline post likes <post-id> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			postID, err := singlePostID(args)
			if err != nil {
				return err
			}

			session, _, err := params.Connection.RequireSession(logger)
			if err != nil {
				return err
			}
			defer session.Close()

			if params.CountOnly {
				count, err := session.LikesCount(ctx, postID)
				if err != nil {
					return mutationError("count likes", err)
				}
				fmt.Fprintf(os.Stdout, "%d\n", count)
				return nil
			}

			likes, err := session.Likes(ctx, postID)
			if err != nil {
				return mutationError("list likes", err)
			}
			if done, err := params.EmitJSON(likes); done {
				return err
			}
			if len(likes) == 0 {
				fmt.Fprintln(os.Stderr, "No likes.")
				return nil
			}
			for _, like := range likes {
				fmt.Fprintf(os.Stdout, "%s\n", like.UserID)
			}
			return nil
		},
	}
}

// singlePostID extracts the one required post-id argument.
func singlePostID(args []string) (feedapi.ID, error) {
	if len(args) < 1 {
		return "", cli.Validation("post id is required")
	}
	if len(args) > 1 {
		return "", cli.Validation("unexpected argument: %s", args[1])
	}
	return feedapi.ID(args[0]), nil
}

// uploadError categorizes create/upload failures.
func uploadError(err error) error {
	switch {
	case feedapi.IsStatus(err, 422):
		return cli.Validation("server rejected the post: %w", err)
	case feedapi.IsRequestError(err):
		return cli.Transient("create post: %w", err)
	default:
		return cli.Internal("create post: %w", err)
	}
}

// mutationError categorizes like/unlike/delete failures.
func mutationError(op string, err error) error {
	switch {
	case feedapi.IsStatus(err, 404):
		return cli.NotFound("%s: %w", op, err)
	case feedapi.IsStatus(err, 400), feedapi.IsStatus(err, 409):
		return cli.Conflict("%s: %w", op, err)
	case feedapi.IsStatus(err, 401), feedapi.IsStatus(err, 403):
		return cli.Forbidden("%s: %w", op, err).
			WithHint("Your saved session may have expired. Run 'fotoline login' again.")
	case feedapi.IsRequestError(err):
		return cli.Transient("%s: %w", op, err)
	default:
		return cli.Internal("%s: %w", op, err)
	}
}
