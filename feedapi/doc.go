// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package feedapi wraps the photo-sharing server's HTTP API.
//
// The package provides two core types. [Client] is an unauthenticated API
// client that serves the public surface — the global feed, per-user posts,
// and profile metadata — and handles login and registration, returning
// authenticated [Session] values. Client holds the server base URL and HTTP
// transport, shared across all Sessions derived from it.
//
// [Session] wraps a Client with an access token for the authenticated
// surface: post creation and deletion, image upload, likes, and
// follow/unfollow. Profile and per-user post reads are available on both
// types; the Session variants attach the Authorization header so the server
// can include viewer-specific data, while the Client variants degrade
// gracefully to anonymous reads.
//
// The access token lives in a secret.Buffer (mmap-backed, locked against
// swap, excluded from core dumps); callers must call Session.Close to
// release the protected memory.
//
// Every response body is decoded into an explicitly validated record. A
// non-2xx status becomes an [*APIError] carrying the server's detail
// message, a transport failure becomes a [*RequestError], and a 2xx body of
// the wrong shape becomes a [*ParseError] — a shape mismatch never
// propagates as a zero value into the UI layers.
package feedapi
