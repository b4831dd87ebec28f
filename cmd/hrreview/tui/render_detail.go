package tui

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/hrdesk/hrreview/internal/escalation"
)

func (m model) detailHelpRows() [][]helpItem {
	return [][]helpItem{
		{{"c/C", "category"}, {"e", "response"}, {"L", "learn"}, {"s", "save"}, {"y", "copy"}},
		{{"↑/↓", "scroll"}, {"←/→", "prev/next"}, {"a", "actions"}, {"r", "reload"}, {"esc", "back"}},
	}
}

func (m model) detailHelpLines() int {
	return len(reflowHelpRows(m.detailHelpRows(), m.width))
}

func (m model) renderDetailView() string {
	row, _ := m.selectedRow()
	var b strings.Builder
	width := max(m.width-2, 10)

	title := fmt.Sprintf("Email #%d", row.EmailID)
	if row.Dirty() {
		title += " [unsaved]"
	}
	if m.saving && m.savingID == row.EmailID {
		title += " [saving...]"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\x1b[K\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label+": ") + cell(value, max(width-len(label)-2, 1)))
		b.WriteString("\x1b[K\n")
	}
	field("From", row.SenderEmail)
	field("Received", row.ReceivedAt)
	field("Subject", row.Subject)
	field("Classified", row.ClassifiedCategory)

	sep := statusStyle.Render(strings.Repeat("─", min(width, 200)))
	b.WriteString(sep + "\x1b[K\n")

	// Body, padded so the footer stays put
	bodyLines := strings.Split(m.bodyView.View(), "\n")
	for i := 0; i < m.bodyView.Height; i++ {
		if i < len(bodyLines) {
			b.WriteString(xansi.Truncate(bodyLines[i], width, ""))
		}
		b.WriteString("\x1b[K\n")
	}

	scroll := ""
	if m.bodyView.TotalLineCount() > m.bodyView.Height {
		scroll = fmt.Sprintf(" %d%%", int(m.bodyView.ScrollPercent()*100))
	}
	b.WriteString(sep + statusStyle.Render(scroll) + "\x1b[K\n")

	category := row.UpdatedCategory
	if category != row.ClassifiedCategory {
		category = dirtyStyle.Render(category) + statusStyle.Render(" (was "+row.ClassifiedCategory+")")
	} else {
		category = editableStyle.Render(category)
	}
	b.WriteString(labelStyle.Render("Category: ") + category + "\x1b[K\n")

	action, _ := m.actions.ActionFor(row.UpdatedCategory)
	if action == "" {
		action = "-"
	}
	b.WriteString(labelStyle.Render("Action: ") + statusStyle.Render(action) + "\x1b[K\n")

	learn := escalation.YesNo(row.Learn)
	if row.Learn {
		learn = learnStyle.Render(learn)
	}
	b.WriteString(labelStyle.Render("Learn: ") + learn + "\x1b[K\n")

	response := statusStyle.Render("(none)")
	if row.Response != "" {
		response = cell(firstLine(row.Response), max(width-10, 1))
	}
	b.WriteString(labelStyle.Render("Response: ") + response + "\x1b[K\n")

	if flash := m.flashFor(viewDetail); flash != "" {
		b.WriteString(flashStyle.Render(flash))
	} else if m.err != nil {
		b.WriteString(errorStyle.Render(cell(m.errorText(), width)))
	}
	b.WriteString("\x1b[K\n")

	b.WriteString(renderHelpTable(m.detailHelpRows(), m.width))
	b.WriteString("\x1b[K")
	b.WriteString("\x1b[J") // Clear to end of screen to prevent artifacts

	return b.String()
}
