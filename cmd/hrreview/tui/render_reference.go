package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func (m model) renderReferenceView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Category actions"))
	b.WriteString("\x1b[K\n")
	b.WriteString(statusStyle.Render("What the pipeline does with each category. Only human_intervention can be changed."))
	b.WriteString("\x1b[K\n\x1b[K\n")

	rows := m.actions.Rows()
	headerStyle := statusStyle.Bold(true).PaddingRight(2)
	cellStyle := lipgloss.NewStyle().PaddingRight(2)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		BorderHeader(true).
		BorderStyle(statusStyle).
		Headers("Category", "Action").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row == m.refSelectedIdx {
				return cellStyle.Inherit(selectedStyle)
			}
			if row >= 0 && row < len(rows) && rows[row].Editable() {
				return cellStyle.Inherit(editableStyle)
			}
			return cellStyle
		}).
		Wrap(false)

	for i, r := range rows {
		action := r.Action
		if action == "" {
			action = "-"
		}
		if r.Editable() && i == m.refSelectedIdx {
			action = "◀ " + action + " ▶"
		}
		t = t.Row(r.Category, action)
	}
	b.WriteString(t.Render())
	b.WriteString("\x1b[K\n\x1b[K\n")

	if flash := m.flashFor(viewReference); flash != "" {
		b.WriteString(flashStyle.Render(flash))
	}
	b.WriteString("\x1b[K\n")

	b.WriteString(renderHelpTable([][]helpItem{
		{{"↑/↓", "select"}, {"←/→", "change action"}, {"esc", "back"}},
	}, m.width))
	b.WriteString("\x1b[K")
	b.WriteString("\x1b[J")

	return b.String()
}
