// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package post

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fotoline-project/fotoline/cmd/fotoline/cli"
	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/mediacache"
)

type imageParams struct {
	Connection cli.ClientConnection
	Out        string `flag:"out,o" desc:"write the image to this file (default: stdout)"`
	NoCache    bool   `flag:"no-cache" desc:"bypass the local media cache"`
}

// imageCommand returns "post image": download a post's image through
// the content-addressed media cache. Repeated fetches of the same URL
// are served from disk. Works without a session.
func imageCommand() *cli.Command {
	var params imageParams

	return &cli.Command{
		Name:    "image",
		Summary: "Download a post's image",
		Usage:   "fotoline post image <post-id> [flags]",
		Examples: []cli.Example{
			{
				Description: "Save a post's image to a file",
				Command:     "fotoline post image 7 --out photo.jpg",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			postID, err := singlePostID(args)
			if err != nil {
				return err
			}

			client, err := params.Connection.Client(logger)
			if err != nil {
				return err
			}
			defer client.CloseIdleConnections()

			// The feed endpoints have no single-post lookup; find the
			// post in the global feed like the original client does.
			posts, err := client.GlobalFeed(ctx)
			if err != nil {
				return fetchError("load feed", err)
			}
			var post *feedapi.Post
			for i := range posts {
				if posts[i].ID == postID {
					post = &posts[i]
					break
				}
			}
			if post == nil {
				return cli.NotFound("post %s not found in the feed", postID)
			}

			imageURL := feedapi.ResolveImageURL(client.BaseURL(), post)
			data, err := fetchImage(ctx, params, client, imageURL, logger)
			if err != nil {
				return err
			}

			if params.Out == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(params.Out, data, 0o644); err != nil {
				return cli.Internal("write %s: %w", params.Out, err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(data), params.Out)
			return nil
		},
	}
}

// fetchImage resolves the image bytes, going through the media cache
// unless --no-cache is set or the cache directory cannot be opened.
func fetchImage(ctx context.Context, params imageParams, client *feedapi.Client, imageURL string, logger *slog.Logger) ([]byte, error) {
	fetch := func(ctx context.Context, url string) ([]byte, error) {
		return client.FetchImage(ctx, url)
	}

	if params.NoCache {
		data, err := fetch(ctx, imageURL)
		if err != nil {
			return nil, fetchError("fetch image", err)
		}
		return data, nil
	}

	cfg, err := params.Connection.Resolve()
	if err != nil {
		return nil, err
	}
	cache, err := mediacache.Open(mediacache.CacheConfig{
		Path:   cfg.Paths.MediaCache,
		Logger: logger,
	})
	if err != nil {
		logger.Warn("media cache unavailable, fetching directly", "error", err)
		data, err := fetch(ctx, imageURL)
		if err != nil {
			return nil, fetchError("fetch image", err)
		}
		return data, nil
	}

	data, err := cache.GetOrFetch(ctx, imageURL, fetch)
	if err != nil {
		return nil, fetchError("fetch image", err)
	}
	return data, nil
}

// fetchError categorizes read-path failures.
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
