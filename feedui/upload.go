// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fotoline-project/fotoline/feedapi"
)

// uploadDoneMsg delivers the outcome of the new-post flow: image
// upload followed by post creation.
type uploadDoneMsg struct {
	post *feedapi.Post
	err  error
}

// newUploadForm builds the new-post form.
func newUploadForm() form {
	return form{
		title: "new post",
		fields: []formField{
			{label: fieldImage, placeholder: "path/to/photo.jpg"},
			{label: fieldCaption, placeholder: "say something (markdown ok)"},
		},
	}
}

// validateUploadForm checks the form, returning "" when submittable.
// The image file must exist before the upload starts; catching a typo
// here beats a round trip that fails at the multipart stage.
func validateUploadForm(f *form) string {
	imagePath := f.value(fieldImage)
	if imagePath == "" {
		return "image file is required"
	}
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Sprintf("cannot read %s", imagePath)
	}
	return ""
}

// startUploadSubmit returns the command that uploads the image and
// creates the post referencing the server's stored copy.
func startUploadSubmit(publisher Publisher, imagePath, caption string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		data, err := os.ReadFile(imagePath)
		if err != nil {
			return uploadDoneMsg{err: fmt.Errorf("feedui: read image: %w", err)}
		}

		result, err := publisher.UploadImage(ctx, filepath.Base(imagePath), bytes.NewReader(data))
		if err != nil {
			return uploadDoneMsg{err: err}
		}

		post, err := publisher.CreatePost(ctx, feedapi.CreatePostRequest{
			Caption:      caption,
			ImageURL:     result.Filename,
			ImageURLType: feedapi.ImageURLRelative,
		})
		return uploadDoneMsg{post: post, err: err}
	}
}
