package tui

import (
	"strings"

	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/termtext"
	"github.com/mattn/go-runewidth"
)

// cell prepares untrusted text for a fixed-width single-line column.
func cell(s string, width int) string {
	s = termtext.SingleLine(s)
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}

// firstLine returns the first line of s, marking that more follows.
func firstLine(s string) string {
	line, rest, found := strings.Cut(s, "\n")
	if found && strings.TrimSpace(rest) != "" {
		return line + " ..."
	}
	return line
}

// receivedLabel shortens the backend timestamp for the queue column.
func receivedLabel(raw string) string {
	e := escalation.Email{ReceivedAt: raw}
	if t, ok := e.ReceivedTime(); ok {
		return t.Format("Jan 02 15:04")
	}
	return raw
}
