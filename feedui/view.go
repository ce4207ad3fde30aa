// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/fotoline-project/fotoline/feedapi"
	"github.com/fotoline-project/fotoline/lib/tui"
)

// Fixed chrome rows: tab bar, filter line, status bar.
const chromeRows = 3

// detailRows is the height reserved under the feed list for the
// selected post's detail block.
const detailRows = 7

// listHeight is the number of post rows that fit in the list pane.
func (model *Model) listHeight() int {
	height := model.height - chromeRows
	if model.activeTab == TabFeed {
		height -= detailRows
	}
	if height < 1 {
		return 1
	}
	return height
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "loading..."
	}

	var view strings.Builder
	view.WriteString(model.renderTabBar())
	view.WriteString("\n")

	switch model.activeScreen {
	case screenAuth:
		view.WriteString("\n" + model.authForm.render(model.theme, model.width))
	case screenUpload:
		view.WriteString("\n" + model.uploadForm.render(model.theme, model.width))
	default:
		switch model.activeTab {
		case TabFeed:
			view.WriteString(model.renderFeed())
		case TabProfile:
			view.WriteString(model.renderProfile())
		}
	}

	view.WriteString("\n")
	view.WriteString(model.renderStatusBar())
	return view.String()
}

func (model *Model) renderTabBar() string {
	active := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	feedLabel := " [1] feed "
	profileLabel := " [2] profile "
	var bar string
	if model.activeTab == TabFeed {
		bar = active.Render(feedLabel) + inactive.Render(profileLabel)
	} else {
		bar = inactive.Render(feedLabel) + active.Render(profileLabel)
	}

	identity := "anonymous"
	if _, username, ok := model.source.Identity(); ok {
		identity = "@" + username
	}
	identityRendered := inactive.Render(identity + " ")

	gap := model.width - ansi.StringWidth(bar) - ansi.StringWidth(identityRendered)
	if gap < 1 {
		gap = 1
	}
	return bar + strings.Repeat(" ", gap) + identityRendered
}

// renderFeed renders the filter line and the post list.
func (model *Model) renderFeed() string {
	var view strings.Builder
	view.WriteString(model.renderFilterLine())
	view.WriteString("\n")

	switch {
	case model.feedErr != nil && len(model.posts) == 0:
		view.WriteString(model.renderNotice("feed unavailable: " + model.feedErr.Error()))
	case model.feedLoading && len(model.posts) == 0:
		view.WriteString(model.renderNotice("loading feed..."))
	case len(model.visible) == 0 && model.filterInput != "":
		view.WriteString(model.renderNotice("no posts match " + model.filterInput))
	case len(model.visible) == 0:
		view.WriteString(model.renderNotice("no posts yet"))
	default:
		view.WriteString(model.renderPostList())
	}

	if post := model.selectedPost(); post != nil {
		view.WriteString("\n")
		view.WriteString(model.renderPostDetail(post))
	}
	return view.String()
}

// renderPostDetail renders the selected post's full caption (markdown)
// and image location in the block under the list.
func (model *Model) renderPostDetail(post *feedapi.Post) string {
	border := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var view strings.Builder
	view.WriteString(border.Render(strings.Repeat("─", max(model.width-1, 1))))
	view.WriteString("\n")

	imageURL := model.source.ResolveImageURL(post)
	meta := fmt.Sprintf(" %s · %s", post.AuthorName(), imageURL)
	if post.LikeCount > 0 {
		meta += fmt.Sprintf(" · ♥ %d", post.LikeCount)
	}
	view.WriteString(faint.Render(ansi.Truncate(meta, model.width-1, "…")))
	view.WriteString("\n")

	caption := renderCaption(post.Caption, model.theme, model.width-2)
	lines := strings.Split(caption, "\n")
	for index, line := range lines {
		if index >= detailRows-3 {
			view.WriteString(faint.Render(" …"))
			break
		}
		view.WriteString(" " + line + "\n")
	}
	return strings.TrimRight(view.String(), "\n")
}

func (model *Model) renderFilterLine() string {
	if model.focusRegion == FocusFilter {
		cursor := lipgloss.NewStyle().Foreground(model.theme.InputCursor).Bold(true).Render("▎")
		return lipgloss.NewStyle().Foreground(model.theme.NormalText).
			Render(" / " + model.filterInput + cursor)
	}
	if model.filterInput != "" {
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).
			Render(" filter: " + model.filterInput)
	}
	if model.feedErr != nil {
		return lipgloss.NewStyle().Foreground(model.theme.StatusError).
			Render(" ! " + model.feedErr.Error())
	}
	return ""
}

func (model *Model) renderPostList() string {
	height := model.listHeight()
	rows := make([]string, 0, height)

	end := model.scrollOffset + height
	if end > len(model.visible) {
		end = len(model.visible)
	}
	for index := model.scrollOffset; index < end; index++ {
		rows = append(rows, model.renderPostRow(index))
	}

	list := strings.Join(rows, "\n")
	if len(model.visible) <= height {
		return list
	}
	scrollbar := tui.RenderScrollbar(model.theme, len(rows), len(model.visible), height, model.scrollOffset, model.focusRegion == FocusList)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, scrollbar)
}

// renderPostRow renders one feed row: author, age, caption excerpt,
// like marker.
func (model *Model) renderPostRow(index int) string {
	post := model.visible[index]
	selected := index == model.cursor

	author := lipgloss.NewStyle().Foreground(model.theme.Username).Render(post.AuthorName())
	timestamp := lipgloss.NewStyle().Foreground(model.theme.Timestamp).Render(formatAge(post.Timestamp))

	caption := firstLine(post.Caption)
	if positions, ok := model.filterHighlights[post.ID]; ok {
		caption = highlightMatches(model.theme, post.AuthorName()+" "+post.Caption, positions)
		caption = firstLine(caption)
		author = ""
	}

	liked := ""
	if model.liked[post.ID] {
		liked = lipgloss.NewStyle().Foreground(model.theme.LikeCount).Render(" ♥")
	}

	row := " " + strings.TrimSpace(author+" "+timestamp+" "+caption) + liked
	row = ansi.Truncate(row, model.width-1, "…")

	if selected {
		return lipgloss.NewStyle().
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground).
			Width(model.width - 1).
			Render(row)
	}
	return row
}

// renderProfile renders the profile tab: header with counts, then the
// subject's posts. Each half of the profile view fails independently.
func (model *Model) renderProfile() string {
	var view strings.Builder
	view.WriteString("\n")

	switch {
	case model.profileSubject == "":
		view.WriteString(model.renderNotice("no profile to show: sign in or open a post author with Enter"))
		return view.String()
	case model.profileLoading && model.profileView == nil:
		view.WriteString(model.renderNotice("loading profile..."))
		return view.String()
	case model.profileErr != nil:
		view.WriteString(model.renderNotice("profile unavailable: " + model.profileErr.Error()))
		return view.String()
	case model.profileView == nil:
		view.WriteString(model.renderNotice("loading profile..."))
		return view.String()
	}

	profileView := model.profileView
	header := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	if profileView.ProfileErr != nil {
		view.WriteString(" " + faint.Render("profile details unavailable: "+profileView.ProfileErr.Error()))
		view.WriteString("\n")
	} else if profileView.Profile != nil {
		info := profileView.Profile
		view.WriteString(" " + header.Render("@"+info.Username) + "\n")
		view.WriteString(" " + faint.Render(fmt.Sprintf("%d posts · %d followers · %d following",
			info.PostsCount, info.FollowersCount, info.FollowingCount)))
		view.WriteString("\n")
	}
	view.WriteString("\n")

	if profileView.PostsErr != nil {
		view.WriteString(model.renderNotice("posts unavailable: " + profileView.PostsErr.Error()))
		return view.String()
	}
	if len(profileView.Posts) == 0 {
		view.WriteString(model.renderNotice("no posts"))
		return view.String()
	}

	captionStyle := lipgloss.NewStyle().Foreground(model.theme.Caption)
	timestampStyle := lipgloss.NewStyle().Foreground(model.theme.Timestamp)
	remaining := model.listHeight() - 4
	for index, post := range profileView.Posts {
		if index >= remaining {
			view.WriteString(" " + timestampStyle.Render(fmt.Sprintf("… %d more", len(profileView.Posts)-index)))
			break
		}
		line := " " + timestampStyle.Render(formatAge(post.Timestamp)) + " " + captionStyle.Render(firstLine(post.Caption))
		view.WriteString(ansi.Truncate(line, model.width-1, "…"))
		view.WriteString("\n")
	}
	return strings.TrimRight(view.String(), "\n")
}

// renderStatusBar shows the latest log message, or the key help line.
func (model *Model) renderStatusBar() string {
	if model.statusMessage != "" {
		color := model.theme.StatusInfo
		switch {
		case model.statusLevel >= slog.LevelError:
			color = model.theme.StatusError
		case model.statusLevel >= slog.LevelWarn:
			color = model.theme.StatusWarn
		}
		return lipgloss.NewStyle().Foreground(color).
			Render(ansi.Truncate(" "+model.statusMessage, model.width-1, "…"))
	}

	help := " j/k move · / filter · Enter author · 1/2 tabs · r refresh · q quit"
	if model.mutator != nil {
		help = " j/k move · / filter · L like · D delete · Enter author · r refresh · q quit"
	}
	if model.publisher != nil {
		help = " j/k move · / filter · L like · u new post · D delete · r refresh · q quit"
	} else if model.auth != nil {
		help += " · s sign in"
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).
		Render(ansi.Truncate(help, model.width-1, "…"))
}

func (model *Model) renderNotice(text string) string {
	return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" " + text)
}

// firstLine returns text up to the first newline.
func firstLine(text string) string {
	if index := strings.IndexByte(text, '\n'); index >= 0 {
		return text[:index]
	}
	return text
}

// formatAge renders a post timestamp as a compact age ("3h", "2d").
// Unparseable timestamps render as a placeholder; such posts still
// display, they just cannot claim an age.
func formatAge(timestamp string) string {
	at, ok := feedapi.ParseTimestamp(timestamp)
	if !ok {
		return "··"
	}
	return compactDuration(at)
}

// highlightMatches re-renders text with the matched rune positions
// tinted. positions index into the rune sequence of text, ascending.
func highlightMatches(theme tui.Theme, text string, positions []int) string {
	if len(positions) == 0 {
		return text
	}
	matched := lipgloss.NewStyle().Background(theme.MatchBackground)

	var out strings.Builder
	next := 0
	for index, character := range []rune(text) {
		if next < len(positions) && positions[next] == index {
			out.WriteString(matched.Render(string(character)))
			next++
			continue
		}
		out.WriteRune(character)
	}
	return out.String()
}

// compactDuration renders the time since at as a short age: seconds
// under a minute, then minutes, hours, days, weeks.
func compactDuration(at time.Time) string {
	age := time.Since(at)
	switch {
	case age < 0:
		return "now"
	case age < time.Minute:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	case age < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(age.Hours()/(24*7)))
	}
}
