package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/review"
)

// actions.go contains the commands that perform side effects: saving a
// row through the reviewer and copying to the clipboard.

func formatClipboardContent(row review.Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Email #%d from %s\n", row.EmailID, row.SenderEmail)
	fmt.Fprintf(&b, "Subject: %s\n", row.Subject)
	if row.ReceivedAt != "" {
		fmt.Fprintf(&b, "Received: %s\n", row.ReceivedAt)
	}
	b.WriteString("\n")
	b.WriteString(row.Body)
	if row.Response != "" {
		b.WriteString("\n\n--- Response ---\n")
		b.WriteString(row.Response)
	}
	return b.String()
}

func (m model) copyToClipboard(row review.Row) tea.Cmd {
	view := m.currentView // Capture view at trigger time
	content := formatClipboardContent(row)
	cb := m.clipboard
	return func() tea.Msg {
		if strings.TrimSpace(row.Body) == "" && row.Response == "" {
			return clipboardResultMsg{err: fmt.Errorf("no content to copy"), view: view}
		}
		return clipboardResultMsg{err: cb.WriteText(content), view: view}
	}
}

// saveRow commits one row. The reviewer reloads the queue after a
// successful save and emits the user-facing notice itself.
func (m model) saveRow(id int64) tea.Cmd {
	r := m.reviewer
	return func() tea.Msg {
		res, err := r.Save(context.Background(), id)
		return saveResultMsg{emailID: id, result: res, err: err}
	}
}

// cycleCategory moves the selected row's category through the closed set.
func (m *model) cycleCategory(row review.Row, delta int) error {
	next := escalation.CycleCategory(row.UpdatedCategory, delta)
	if err := m.reviewer.SetCategory(row.EmailID, next); err != nil {
		return err
	}
	m.refreshRows()
	return nil
}

func (m *model) toggleLearn(row review.Row) error {
	if err := m.reviewer.SetLearn(row.EmailID, !row.Learn); err != nil {
		return err
	}
	m.refreshRows()
	return nil
}
