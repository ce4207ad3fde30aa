// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the server. The server is a FastAPI
// application, so error bodies carry a "detail" field — either a plain
// message ("User not found") or, for 422 validation failures, a structured
// list that is flattened into one line here. Callers can use errors.As to
// branch on the status code:
//
//	var apiErr *feedapi.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound { ... }
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Detail is the server's human-readable error description.
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feedapi: server returned %d: %s", e.StatusCode, e.Detail)
}

// RequestError is a transport-level failure: the request could not be sent
// or the response could not be received. The attempt is terminal — nothing
// in this client retries — so callers surface it and leave existing state
// in place.
type RequestError struct {
	// Op names the failed operation ("global feed", "login", ...).
	Op string
	// Err is the underlying transport error.
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("feedapi: %s request failed: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ParseError is a 2xx response whose body did not match the expected
// shape. Distinct from APIError so that a malformed success response is
// never mistaken for a server-reported failure.
type ParseError struct {
	// Op names the operation whose response failed to parse.
	Op string
	// Err is the underlying decode or validation error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("feedapi: %s response malformed: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}

// IsRequestError reports whether err is a *RequestError: the request
// never produced an HTTP response (connection refused, timeout, DNS).
func IsRequestError(err error) bool {
	var requestErr *RequestError
	return errors.As(err, &requestErr)
}

// errorFromResponse builds an APIError from a non-2xx response body.
func errorFromResponse(statusCode int, body []byte) *APIError {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		return &APIError{StatusCode: statusCode, Detail: flattenDetail(envelope.Detail)}
	}

	// Non-JSON error body (proxy pages, plain text). Keep the raw text so
	// the user sees what the server actually said.
	return &APIError{StatusCode: statusCode, Detail: strings.TrimSpace(string(body))}
}

// flattenDetail renders a FastAPI detail value as a single line. A string
// detail is returned as-is; the structured 422 list becomes a semicolon-
// separated summary.
func flattenDetail(raw json.RawMessage) string {
	var message string
	if err := json.Unmarshal(raw, &message); err == nil {
		return message
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if len(item.Loc) > 0 {
				parts = append(parts, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
			} else {
				parts = append(parts, item.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return string(raw)
}
