package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/termtext"
)

// placeModal centers a bordered box over an otherwise empty screen.
func (m model) placeModal(content string) string {
	box := modalStyle.Width(min(max(m.width-6, 20), 80)).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m model) renderEditResponseView() string {
	var b strings.Builder

	title := fmt.Sprintf("Response for email #%d", m.editID)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\x1b[K\n\x1b[K\n") // Clear title and blank line

	if row, ok := m.reviewer.Row(m.editID); ok {
		b.WriteString(statusStyle.Render(cell("Re: "+row.Subject, max(m.width-2, 10))))
	}
	b.WriteString("\x1b[K\n\x1b[K\n")

	b.WriteString(m.responseInput.View())
	b.WriteString("\x1b[K\n")

	// Pad remaining space
	linesWritten := 5 + m.responseInput.Height()
	for linesWritten < m.height-1 {
		b.WriteString("\x1b[K\n")
		linesWritten++
	}

	b.WriteString(renderHelpTable([][]helpItem{
		{{"↵", "set"}, {"ctrl+j", "newline"}, {"esc", "cancel"}},
	}, m.width))
	b.WriteString("\x1b[K")
	b.WriteString("\x1b[J") // Clear to end of screen to prevent artifacts

	return b.String()
}

func (m model) renderConfirmSaveView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Save email #%d?", m.confirmID)))
	b.WriteString("\n\n")
	n := len(m.confirmDirty)
	noun := "email has"
	if n != 1 {
		noun = "emails have"
	}
	fmt.Fprintf(&b, "%d other %s unsaved edits: %s\n", n, noun, formatIDs(m.confirmDirty))
	b.WriteString("Saving reloads the queue and those edits will be lost.\n\n")
	b.WriteString(renderHelpTable([][]helpItem{
		{{"y/↵", "save anyway"}, {"n/esc", "cancel"}},
	}, 0))
	return m.placeModal(b.String())
}

func (m model) renderNoticeView() string {
	if len(m.pendingNotices) == 0 {
		return m.renderQueueView()
	}
	n := m.pendingNotices[0]

	var b strings.Builder
	switch n.Kind {
	case review.NoticeSaved:
		b.WriteString(flashStyle.Bold(true).Render("Saved"))
	case review.NoticeSaveFailed, review.NoticeLoadFailed:
		b.WriteString(errorStyle.Render("Error"))
	default:
		b.WriteString(titleStyle.Render("Notice"))
	}
	b.WriteString("\n\n")
	b.WriteString(termtext.Sanitize(n.Message))
	if n.Err != nil && n.Kind == review.NoticeSaveFailed {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(termtext.Sanitize(n.Err.Error())))
	}
	b.WriteString("\n\n")
	help := []helpItem{{"↵", "ok"}}
	if more := len(m.pendingNotices) - 1; more > 0 {
		help = append(help, helpItem{fmt.Sprintf("+%d", more), "more"})
	}
	b.WriteString(renderHelpTable([][]helpItem{help}, 0))
	return m.placeModal(b.String())
}
