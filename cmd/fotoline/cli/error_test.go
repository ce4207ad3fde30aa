// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestCommandError(t *testing.T) {
	base := errors.New("post 7 does not exist")
	err := NotFound("lookup failed: %w", base)

	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q", err.Category)
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error not reachable through Unwrap")
	}
	if err.Error() != "lookup failed: post 7 does not exist" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = err.WithHint("Check the post id with 'fotoline feed'.")
	if err.Hint == "" {
		t.Error("WithHint did not set the hint")
	}
}

func TestCommandErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Validation("username is required"))

	var commandErr *CommandError
	if !errors.As(wrapped, &commandErr) {
		t.Fatal("errors.As failed to find CommandError")
	}
	if commandErr.Category != CategoryValidation {
		t.Errorf("Category = %q", commandErr.Category)
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 3}
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) {
		t.Fatal("ExitError does not satisfy the ExitCode interface")
	}
	if coder.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d", coder.ExitCode())
	}
}
