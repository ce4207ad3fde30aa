// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedapi

import (
	"slices"
	"strings"
)

// SortFeed orders posts for display: newest first by creation timestamp.
// The sort is stable, so posts with equal timestamps keep their server
// order. Posts whose timestamps fail to parse sort after all parseable
// ones, also preserving server order; they are displayed, not dropped.
func SortFeed(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		aAt, aOK := ParseTimestamp(a.Timestamp)
		bAt, bOK := ParseTimestamp(b.Timestamp)
		switch {
		case aOK && !bOK:
			return -1
		case !aOK && bOK:
			return 1
		case !aOK && !bOK:
			return 0
		}
		return bAt.Compare(aAt)
	})
}

// ResolveImageURL turns a post's image reference into a fetchable URL.
// Absolute references are returned verbatim, including scheme and host.
// Relative references are server-side paths joined onto baseURL with
// exactly one separating slash regardless of how either side is written.
// Unknown reference types are treated as relative, matching the server's
// own static-file fallback.
func ResolveImageURL(baseURL string, post *Post) string {
	if post.ImageURLType == ImageURLAbsolute {
		return post.ImageURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(post.ImageURL, "/")
}
