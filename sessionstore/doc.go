// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package sessionstore persists sign-in state across process runs.
//
// A signed-in session is four values: the access token, its token type,
// the username, and the user id. The Store writes them through a Backend
// as an all-or-nothing unit, so a reader never observes a partial
// session: either all four keys are present (signed in) or none are
// (anonymous).
//
// Store also owns the credential lifecycle: SignIn authenticates and
// persists, SignUp registers and chains into SignIn, SignOut clears the
// backend and releases the live session. Hydrate rebuilds a session from
// the backend at startup without a network round trip; token validity is
// discovered lazily on the first authenticated call.
package sessionstore
