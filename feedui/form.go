// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package feedui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fotoline-project/fotoline/lib/tui"
)

// formField is one labeled text input on a form. Input handling
// follows the same rune-append scheme as the feed filter; there is no
// cursor movement within a field.
type formField struct {
	label string
	value string
	// masked fields render bullets instead of the typed text.
	masked bool
	// placeholder is shown dimmed while the field is empty.
	placeholder string
}

// form is a vertical stack of fields with one focused at a time.
// Tab/down and shift+tab/up move focus; enter on the last field (or
// ctrl+s anywhere) submits; esc cancels. The embedding model decides
// what submit and cancel mean.
type form struct {
	title   string
	fields  []formField
	focused int
	// errorText is a validation or submit failure shown under the
	// fields until the next keystroke.
	errorText string
	// submitting disables input while the submit command is in flight.
	submitting bool
}

// formResult tells the embedding model what a keystroke did.
type formResult int

const (
	formContinue formResult = iota
	formSubmit
	formCancel
)

// handleKey processes one keystroke. The caller acts on formSubmit and
// formCancel; formContinue means the form consumed the key.
func (f *form) handleKey(message tea.KeyMsg) formResult {
	if f.submitting {
		// Only escape works while a submit is in flight.
		if message.Type == tea.KeyEscape {
			return formCancel
		}
		return formContinue
	}

	f.errorText = ""

	switch message.Type {
	case tea.KeyEscape:
		return formCancel

	case tea.KeyEnter:
		if f.focused == len(f.fields)-1 {
			return formSubmit
		}
		f.focused++
		return formContinue

	case tea.KeyTab, tea.KeyDown:
		f.focused = (f.focused + 1) % len(f.fields)
		return formContinue

	case tea.KeyShiftTab, tea.KeyUp:
		f.focused = (f.focused - 1 + len(f.fields)) % len(f.fields)
		return formContinue

	case tea.KeyBackspace:
		field := &f.fields[f.focused]
		if len(field.value) > 0 {
			runes := []rune(field.value)
			field.value = string(runes[:len(runes)-1])
		}
		return formContinue

	case tea.KeyCtrlU:
		f.fields[f.focused].value = ""
		return formContinue

	case tea.KeyRunes, tea.KeySpace:
		field := &f.fields[f.focused]
		field.value += string(message.Runes)
		if message.Type == tea.KeySpace {
			field.value += " "
		}
		return formContinue
	}

	if message.String() == "ctrl+s" {
		return formSubmit
	}
	return formContinue
}

// value returns the trimmed text of the field with the given label.
func (f *form) value(label string) string {
	for i := range f.fields {
		if f.fields[i].label == label {
			return strings.TrimSpace(f.fields[i].value)
		}
	}
	return ""
}

// reset clears all field values and failure state.
func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].value = ""
	}
	f.focused = 0
	f.errorText = ""
	f.submitting = false
}

// render draws the form. width bounds the input line width.
func (f *form) render(theme tui.Theme, width int) string {
	labelWidth := 0
	for i := range f.fields {
		labelWidth = max(labelWidth, len(f.fields[i].label))
	}

	titleStyle := lipgloss.NewStyle().Foreground(theme.HeaderForeground).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(theme.FaintText)
	focusedLabel := lipgloss.NewStyle().Foreground(theme.NormalText).Bold(true)
	placeholderStyle := lipgloss.NewStyle().Foreground(theme.FaintText)

	var view strings.Builder
	view.WriteString(" " + titleStyle.Render(f.title) + "\n\n")

	for i := range f.fields {
		field := &f.fields[i]

		label := labelStyle
		marker := "  "
		if i == f.focused && !f.submitting {
			label = focusedLabel
			marker = lipgloss.NewStyle().Foreground(theme.InputPrompt).Render("▎ ")
		}

		text := field.value
		if field.masked {
			text = strings.Repeat("•", len([]rune(field.value)))
		}
		if text == "" && field.placeholder != "" {
			text = placeholderStyle.Render(field.placeholder)
		} else if i == f.focused && !f.submitting {
			text += lipgloss.NewStyle().Foreground(theme.InputCursor).Render("▎")
		}

		padded := field.label + strings.Repeat(" ", labelWidth-len(field.label))
		view.WriteString(" " + marker + label.Render(padded) + "  " + text + "\n")
	}

	view.WriteString("\n")
	switch {
	case f.submitting:
		view.WriteString(" " + labelStyle.Render("working...") + "\n")
	case f.errorText != "":
		errorStyle := lipgloss.NewStyle().Foreground(theme.StatusError)
		view.WriteString(" " + errorStyle.Render(f.errorText) + "\n")
	default:
		view.WriteString(" " + labelStyle.Render("enter submit · tab next field · esc cancel") + "\n")
	}

	return view.String()
}
