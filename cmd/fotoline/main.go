// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fotoline-project/fotoline/cmd/fotoline/cli"
	"github.com/fotoline-project/fotoline/cmd/fotoline/commands"
	"github.com/fotoline-project/fotoline/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError with
		// the desired exit code. Don't print a redundant "error:" line
		// for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var commandErr *cli.CommandError
		if errors.As(err, &commandErr) && commandErr.Hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", commandErr.Hint)
		}
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("fotoline")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cli.NewCommandLogger(os.Getenv("FOTOLINE_DEBUG") != "")
	return commands.Root().Execute(ctx, os.Args[1:], logger)
}
