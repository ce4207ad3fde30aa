// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import (
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/fotoline-project/fotoline/lib/tui"
)

// captionParserInstance is initialized once and reused; the goldmark
// Parser is safe to share.
var (
	captionParserInstance goldmark.Markdown
	captionParserOnce     sync.Once
)

func getCaptionParser() goldmark.Markdown {
	captionParserOnce.Do(func() {
		captionParserInstance = goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		)
	})
	return captionParserInstance
}

// renderCaption parses a post caption as markdown and renders styled,
// word-wrapped terminal text. Captions are inline-heavy: paragraphs,
// emphasis, code spans, links, the odd fenced code block. Soft line
// breaks become spaces so hard-wrapped captions reflow at any width.
func renderCaption(caption string, theme tui.Theme, width int) string {
	if strings.TrimSpace(caption) == "" {
		return ""
	}
	if width < 8 {
		width = 8
	}

	source := []byte(caption)
	document := getCaptionParser().Parser().Parse(text.NewReader(source))

	// Force the ANSI256 profile: this output always targets the TUI, and
	// auto-detection yields uncolored output without a TTY (tests).
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	renderer := &captionRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

// captionRenderer walks the goldmark AST accumulating inline text per
// block, then word-wraps each block as a unit when it closes.
type captionRenderer struct {
	source []byte
	theme  tui.Theme
	width  int

	output strings.Builder
	inline strings.Builder

	boldCount          int
	italicCount        int
	strikethroughCount int

	lipRenderer *lipgloss.Renderer
}

func (r *captionRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := node.(type) {
	case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
		if !entering {
			r.flushBlock()
		}

	case *ast.Text:
		if entering {
			r.inline.WriteString(r.styleText(string(node.Segment.Value(r.source))))
			if node.SoftLineBreak() {
				r.inline.WriteString(" ")
			}
			if node.HardLineBreak() {
				r.inline.WriteString("\n")
			}
		}

	case *ast.Emphasis:
		if entering {
			if node.Level >= 2 {
				r.boldCount++
			} else {
				r.italicCount++
			}
		} else {
			if node.Level >= 2 {
				r.boldCount--
			} else {
				r.italicCount--
			}
		}

	case *extast.Strikethrough:
		if entering {
			r.strikethroughCount++
		} else {
			r.strikethroughCount--
		}

	case *ast.CodeSpan:
		if entering {
			style := r.lipRenderer.NewStyle().Foreground(r.theme.LikeCount)
			r.inline.WriteString(style.Render(string(node.Text(r.source))))
		}
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		// Render the link text; append the destination dimmed.
		if !entering {
			style := r.lipRenderer.NewStyle().Foreground(r.theme.FaintText)
			r.inline.WriteString(style.Render(" <" + string(node.Destination) + ">"))
		}

	case *ast.AutoLink:
		if entering {
			style := r.lipRenderer.NewStyle().Foreground(r.theme.Username).Underline(true)
			r.inline.WriteString(style.Render(string(node.URL(r.source))))
		}
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock:
		if entering {
			r.flushBlock()
			r.writeCodeBlock(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

// styleText applies the currently open inline styles to a text run.
func (r *captionRenderer) styleText(value string) string {
	if r.boldCount == 0 && r.italicCount == 0 && r.strikethroughCount == 0 {
		return value
	}
	style := r.lipRenderer.NewStyle()
	if r.boldCount > 0 {
		style = style.Bold(true)
	}
	if r.italicCount > 0 {
		style = style.Italic(true)
	}
	if r.strikethroughCount > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(value)
}

// flushBlock word-wraps the accumulated inline text and appends it as
// one block, followed by a blank separator line.
func (r *captionRenderer) flushBlock() {
	block := strings.TrimSpace(r.inline.String())
	r.inline.Reset()
	if block == "" {
		return
	}
	r.output.WriteString(ansi.Wordwrap(block, r.width, " "))
	r.output.WriteString("\n\n")
}

// writeCodeBlock renders a fenced code block with chroma highlighting,
// falling back to dim monospace styling for unknown languages.
func (r *captionRenderer) writeCodeBlock(node *ast.FencedCodeBlock) {
	var code strings.Builder
	for i := range node.Lines().Len() {
		line := node.Lines().At(i)
		code.Write(line.Value(r.source))
	}

	language := string(node.Language(r.source))
	var highlighted strings.Builder
	if err := quick.Highlight(&highlighted, code.String(), language, "terminal256", "monokai"); err != nil {
		style := r.lipRenderer.NewStyle().Foreground(r.theme.FaintText)
		highlighted.Reset()
		highlighted.WriteString(style.Render(strings.TrimRight(code.String(), "\n")))
	}

	for line := range strings.SplitSeq(strings.TrimRight(highlighted.String(), "\n"), "\n") {
		r.output.WriteString("  " + line + "\n")
	}
	r.output.WriteString("\n")
}
