// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP response helpers shared by the Fotoline
// API client.
//
// Every helper bounds its body read so that a misbehaving server cannot
// drive the client into unbounded allocation. JSON API responses (feeds,
// profiles, auth payloads) are bounded at MaxResponseSize; image
// downloads at MaxImageSize; error bodies at MaxErrorBodySize. None of
// the helpers suit streaming responses, which should be consumed
// incrementally with io.Copy.
package netutil

import (
	"io"
)

// MaxResponseSize bounds JSON API response bodies: 32 MB. A feed response
// carries post metadata only (image bytes travel separately), so real
// responses are orders of magnitude smaller. The bound exists purely as a
// guard against a pathological server.
const MaxResponseSize int64 = 32 << 20

// MaxImageSize bounds image download bodies: 256 MB. Generous enough that
// it never interferes with a legitimate photo, small enough to keep one
// bad response from exhausting memory.
const MaxImageSize int64 = 256 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading API response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// ReadImage reads an image response body up to MaxImageSize bytes.
func ReadImage(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxImageSize))
}

// MaxErrorBodySize bounds error response bodies: 4 KB. An error payload
// is a short detail message; anything past that is noise.
const MaxErrorBodySize int64 = 4 << 10

// ErrorBody reads an HTTP error response body for diagnostic messages.
// Read errors are ignored — a truncated body is still better than
// nothing in an error message.
func ErrorBody(body io.Reader) []byte {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBodySize))
	return data
}
