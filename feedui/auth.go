// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/secret"
)

// authMode selects between the two faces of the auth form.
type authMode int

const (
	authModeLogin authMode = iota
	authModeSignup
)

// Form field labels double as lookup keys via form.value.
const (
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldPassword = "password"
	fieldCaption  = "caption"
	fieldImage    = "image file"
)

// authDoneMsg delivers the outcome of a sign-in or sign-up attempt.
type authDoneMsg struct {
	session *feedapi.Session
	err     error
}

// newAuthForm builds the login or signup form.
func newAuthForm(mode authMode) form {
	fields := []formField{
		{label: fieldUsername, placeholder: "who are you"},
	}
	title := "sign in · ctrl+t to create an account instead"
	if mode == authModeSignup {
		fields = append(fields, formField{label: fieldEmail, placeholder: "you@example.com"})
		title = "create account · ctrl+t to sign in instead"
	}
	fields = append(fields, formField{label: fieldPassword, masked: true})
	return form{title: title, fields: fields}
}

// validateAuthForm checks required fields, returning "" when the form
// can be submitted.
func validateAuthForm(mode authMode, f *form) string {
	if f.value(fieldUsername) == "" {
		return "username is required"
	}
	if mode == authModeSignup && f.value(fieldEmail) == "" {
		return "email is required"
	}
	if f.value(fieldPassword) == "" {
		return "password is required"
	}
	return ""
}

// startAuthSubmit returns the command performing the sign-in or
// sign-up. The password string is moved into a locked buffer inside
// the command; the form's copy is cleared by the caller on success.
func startAuthSubmit(auth Authenticator, mode authMode, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		buffer, err := secret.NewFromString(password)
		if err != nil {
			return authDoneMsg{err: fmt.Errorf("feedui: stage password: %w", err)}
		}
		defer buffer.Close()

		var session *feedapi.Session
		if mode == authModeSignup {
			session, err = auth.SignUp(ctx, username, email, buffer)
		} else {
			session, err = auth.SignIn(ctx, username, buffer)
		}
		return authDoneMsg{session: session, err: err}
	}
}
