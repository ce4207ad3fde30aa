// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the Fotoline command framework: the command
// tree with pflag-based flag binding, structured help output, typo
// suggestions, categorized command errors, and the shared client and
// session plumbing that individual commands build on.
//
// Commands declare their flags as tagged struct fields and receive a
// context and a scoped logger:
//
//	var params feedParams
//	command := &cli.Command{
//	    Name:   "feed",
//	    Params: func() any { return &params },
//	    Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
//	        ...
//	    },
//	}
package cli
