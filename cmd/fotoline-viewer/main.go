// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// fotoline-viewer is a standalone TUI for browsing the photo feed.
// Designed as a Fotoline CLI plugin: `fotoline viewer` dispatches to
// this binary via PATH lookup.
//
// The viewer hydrates the saved session from "fotoline login" if one
// exists; signed in, posts can be liked, deleted, and created from
// inside the UI. Without a session it browses read-only, and the
// in-TUI login form (press "s") can sign in without leaving the
// viewer.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fotoline-project/fotoline/cmd/fotoline/cli"
	"github.com/fotoline-project/fotoline/feedui"
	"github.com/fotoline-project/fotoline/lib/tui"
	"github.com/fotoline-project/fotoline/lib/version"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var connection cli.ClientConnection
	var themePath string
	var logOutput string

	flagSet := pflag.NewFlagSet("fotoline-viewer", pflag.ContinueOnError)
	connection.AddFlags(flagSet)
	flagSet.StringVar(&themePath, "theme", "", "JSONC theme override file (default: theme_file from config)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to TUI display)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("fotoline-viewer")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}

	return runViewer(&connection, themePath, logOutput)
}

// runViewer hydrates the saved session, builds the feed source over it
// (or an anonymous one when nothing is saved), and runs the TUI.
//
// Background logging (feed loads, mutations, session refresh) routes
// through a LogHandler that surfaces warnings and errors in the status
// bar instead of writing to stderr, which would corrupt the alt-screen
// display. An optional file logger captures all records to a JSONL
// file for post-mortem debugging.
func runViewer(connection *cli.ClientConnection, themePath string, logOutput string) error {
	tuiHandler := feedui.NewLogHandler(slog.LevelWarn)

	var backgroundLogger *slog.Logger
	if logOutput != "" {
		fileHandler, fileCloser, fileErr := openFileLogHandler(logOutput)
		if fileErr != nil {
			return cli.Validation("cannot open log file %s: %w", logOutput, fileErr)
		}
		defer fileCloser()
		backgroundLogger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		backgroundLogger = slog.New(tuiHandler)
	}

	configuration, err := connection.Resolve()
	if err != nil {
		return err
	}

	if themePath == "" {
		themePath = configuration.Paths.ThemeFile
	}
	theme, err := tui.LoadTheme(themePath)
	if err != nil {
		return cli.Validation("%w", err)
	}

	session, store, err := connection.Session(backgroundLogger)
	if err != nil {
		return err
	}

	var source feedui.Source
	if session != nil {
		source = feedui.NewSessionSource(session)
	} else {
		client, clientErr := connection.Client(backgroundLogger)
		if clientErr != nil {
			return clientErr
		}
		source = feedui.NewClientSource(client)
	}

	model, err := feedui.NewModel(feedui.ModelConfig{
		Source: source,
		Theme:  &theme,
		Logger: backgroundLogger,
		Auth:   store,
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	tuiHandler.SetProgram(program)

	_, err = program.Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Fotoline feed viewer — interactive terminal UI for the photo feed.

Uses the session saved by "fotoline login" when one exists; liking,
deleting, and posting are only available while signed in. Without a
session the feed is read-only, and pressing "s" inside the viewer
opens a login form.

Usage:
  fotoline-viewer [flags]

Examples:
  # Open the viewer against the configured server
  fotoline viewer

  # Point at a different server
  fotoline viewer --server http://localhost:8000

  # Override the color theme
  fotoline viewer --theme ~/dark.jsonc

  # Capture background logs for debugging
  fotoline viewer --log-output /tmp/viewer.jsonl

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// openFileLogHandler creates a slog.JSONHandler writing to the given
// file path. Returns the handler, a cleanup function to close the
// file, and any error. The file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
