package ui

import (
	"github.com/rivo/tview"
)

// StatusBar represents a reusable status bar component with keyboard hints.
type StatusBar struct {
	*tview.TextView
	hints string
}

// NewStatusBar creates a new status bar with the given hints text.
// The hints text should describe keyboard shortcuts, e.g., "q quit  ←↑↓→ pan"
func NewStatusBar(hints string) *StatusBar {
	bar := &StatusBar{
		TextView: tview.NewTextView(),
		hints:    hints,
	}

	bar.SetDynamicColors(false).
		SetText(" " + hints + " ").
		SetTextColor(Theme.TextDim).
		SetTextAlign(tview.AlignCenter).
		SetBackgroundColor(Theme.Background)

	return bar
}

// SetHints updates the hints text.
func (s *StatusBar) SetHints(hints string) *StatusBar {
	s.hints = hints
	s.SetTextColor(Theme.TextDim)
	s.SetText(" " + hints + " ")
	return s
}

// Flash replaces the hints with a message until the next SetHints or Reset.
func (s *StatusBar) Flash(msg string, isError bool) {
	color := Theme.Success
	if isError {
		color = Theme.Error
	}
	s.SetTextColor(color)
	s.SetText(" " + msg + " ")
}

// Reset restores the current hints.
func (s *StatusBar) Reset() { s.SetHints(s.hints) }

// HeaderBar shows the editor title and context info.
type HeaderBar struct {
	*tview.TextView
	title string
}

// NewHeaderBar creates a new header bar.
func NewHeaderBar(title string) *HeaderBar {
	h := &HeaderBar{
		TextView: tview.NewTextView(),
		title:    title,
	}

	h.SetText(" " + title + " ").
		SetTextColor(Theme.Text).
		SetTextAlign(tview.AlignLeft).
		SetBackgroundColor(Theme.Primary)

	return h
}

// SetContext shows context after the title, e.g. the table count or selection.
func (h *HeaderBar) SetContext(context string) *HeaderBar {
	if context == "" {
		h.SetText(" " + h.title + " ")
		return h
	}
	h.SetText(" " + h.title + "  " + context + " ")
	return h
}
