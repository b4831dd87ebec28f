package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/hrdesk/hrreview/internal/backend"
	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/version"
)

func (m model) queueHelpRows() [][]helpItem {
	return [][]helpItem{
		{{"c/C", "category"}, {"e", "response"}, {"L", "learn"}, {"s", "save"}, {"y", "copy"}},
		{{"↑/↓", "navigate"}, {"↵", "open"}, {"r", "reload"}, {"a", "actions"}, {"q", "quit"}},
	}
}

func (m model) queueHelpLines() int {
	return len(reflowHelpRows(m.queueHelpRows(), m.width))
}

func (m model) queueVisibleRows() int {
	// title(1) + status(2) + header(2) + scroll(1) + flash(1) + help(dynamic)
	reserved := 7 + m.queueHelpLines()
	return max(m.height-reserved, 3)
}

func (m model) unsavedCount() int {
	n := 0
	for _, r := range m.rows {
		if r.Dirty() {
			n++
		}
	}
	return n
}

// errorText describes the last load error. When the backend could not be
// reached at all the dial error is replaced by the server address.
func (m model) errorText() string {
	if backend.IsConnectionError(m.err) {
		return fmt.Sprintf("Backend unreachable at %s (r to retry)", m.serverAddr)
	}
	return "Error: " + m.err.Error()
}

func (m model) renderQueueView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("hrreview escalations (%s)", version.Version)))
	b.WriteString("\x1b[K\n") // Clear to end of line

	statusLine := fmt.Sprintf("Server: %s | Escalations: %d | Unsaved: %d | Resync: %s",
		m.serverAddr, len(m.rows), m.unsavedCount(), m.reviewer.Policy())
	if m.width > 0 {
		statusLine = xansi.Truncate(statusLine, m.width, "…")
	}
	b.WriteString(statusStyle.Render(statusLine))
	b.WriteString("\x1b[K\n")

	// Line 3: load error or save progress
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(cell(m.errorText(), max(m.width-1, 10))))
	case m.saving:
		b.WriteString(dirtyStyle.Render(fmt.Sprintf("Saving email #%d...", m.savingID)))
	}
	b.WriteString("\x1b[K\n")

	visibleRows := m.queueVisibleRows()
	var scrollInfo string

	if len(m.rows) == 0 {
		switch {
		case m.loading:
			b.WriteString("Loading...")
		case !m.loaded:
			b.WriteString("Queue not loaded - press r to retry")
		default:
			b.WriteString("No escalations waiting for review")
		}
		b.WriteString("\x1b[K\n")
		// Pad empty queue to fill visibleRows plus the header lines we skipped
		for linesWritten := 1; linesWritten < visibleRows+2; linesWritten++ {
			b.WriteString("\x1b[K\n")
		}
	} else {
		idWidth := 5 // fits "Email"
		for _, r := range m.rows {
			idWidth = max(idWidth, len(fmt.Sprintf("%d", r.EmailID)))
		}
		colWidths := m.calculateColumnWidths(idWidth)

		// Header (with 2-char prefix to align with row selector, 1 for dirty marker)
		header := fmt.Sprintf("   %-*s %-12s %s %s %s %s",
			idWidth, "Email",
			"Received",
			cell("Sender", colWidths.sender),
			cell("Subject", colWidths.subject),
			cell("Category", colWidths.category),
			"Learn")
		b.WriteString(statusStyle.Render(header))
		b.WriteString("\x1b[K\n")
		b.WriteString("  " + strings.Repeat("-", min(max(m.width-4, 1), 200)))
		b.WriteString("\x1b[K\n")

		// Keep the selected row visible, centered when possible
		start, end := 0, len(m.rows)
		if len(m.rows) > visibleRows {
			start = max(m.selectedIdx-visibleRows/2, 0)
			end = start + visibleRows
			if end > len(m.rows) {
				end = len(m.rows)
				start = end - visibleRows
			}
		}

		linesWritten := 0
		for i := start; i < end; i++ {
			selected := i == m.selectedIdx
			line := m.renderRowLine(m.rows[i], selected, idWidth, colWidths)
			if selected {
				// Pad line to full terminal width for background styling
				lineWidth := lipgloss.Width(line)
				paddedLine := "> " + line
				if padding := m.width - lineWidth - 2; padding > 0 {
					paddedLine += strings.Repeat(" ", padding)
				}
				line = selectedStyle.Render(paddedLine)
			} else {
				line = "  " + line
			}
			if m.width > 0 {
				line = xansi.Truncate(line, m.width, "")
			}
			b.WriteString(line)
			b.WriteString("\x1b[K\n")
			linesWritten++
		}
		// Pad with clear-to-end-of-line sequences to prevent ghost text
		for ; linesWritten < visibleRows; linesWritten++ {
			b.WriteString("\x1b[K\n")
		}

		if len(m.rows) > visibleRows {
			scrollInfo = fmt.Sprintf("[showing %d-%d of %d]", start+1, end, len(m.rows))
		}
	}

	// Always emit scroll indicator line to maintain consistent height
	if scrollInfo != "" {
		b.WriteString(statusStyle.Render(scrollInfo))
	}
	b.WriteString("\x1b[K\n")

	if flash := m.flashFor(viewQueue); flash != "" {
		b.WriteString(flashStyle.Render(flash))
	}
	b.WriteString("\x1b[K\n")

	b.WriteString(renderHelpTable(m.queueHelpRows(), m.width))
	b.WriteString("\x1b[K") // Clear to end of line (no newline at end)
	b.WriteString("\x1b[J") // Clear to end of screen to prevent artifacts

	return b.String()
}

func (m model) calculateColumnWidths(idWidth int) columnWidths {
	// Fixed: prefix(2) + marker(1) + id + received(12) + learn(5) + 5 spaces
	fixedWidth := 2 + 1 + idWidth + 12 + 5 + 5
	availableWidth := max(6, m.width-fixedWidth)

	// Distribute available width: sender (30%), subject (40%), category (30%)
	senderWidth := max(1, availableWidth*30/100)
	subjectWidth := max(1, availableWidth*40/100)
	categoryWidth := max(1, availableWidth-senderWidth-subjectWidth)

	// Apply higher minimums only when there's plenty of space
	if availableWidth >= 60 {
		senderWidth = max(16, senderWidth)
		categoryWidth = max(18, categoryWidth)
		subjectWidth = max(1, availableWidth-senderWidth-categoryWidth)
	}

	return columnWidths{
		sender:   senderWidth,
		subject:  subjectWidth,
		category: categoryWidth,
	}
}

func (m model) renderRowLine(r review.Row, selected bool, idWidth int, colWidths columnWidths) string {
	marker := " "
	if r.Dirty() {
		marker = "*"
		if !selected {
			marker = dirtyStyle.Render(marker)
		}
	}

	category := cell(r.UpdatedCategory, colWidths.category)
	if !selected {
		switch {
		case r.UpdatedCategory != r.ClassifiedCategory:
			category = dirtyStyle.Render(category)
		case r.UpdatedCategory == escalation.HumanIntervention:
			category = humanStyle.Render(category)
		}
	}

	learn := escalation.YesNo(r.Learn)
	if r.Learn && !selected {
		learn = learnStyle.Render(learn)
	}

	return fmt.Sprintf("%s%-*d %-12s %s %s %s %s",
		marker,
		idWidth, r.EmailID,
		cell(receivedLabel(r.ReceivedAt), 12),
		cell(r.SenderEmail, colWidths.sender),
		cell(r.Subject, colWidths.subject),
		category,
		learn)
}
