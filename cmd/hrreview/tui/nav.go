package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/termtext"
)

// selectedRow returns the row under the cursor.
func (m model) selectedRow() (review.Row, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.rows) {
		return review.Row{}, false
	}
	return m.rows[m.selectedIdx], true
}

// selectIndex moves the cursor, clamped to the rows.
func (m *model) selectIndex(idx int) {
	if len(m.rows) == 0 {
		m.selectedIdx = -1
		m.selectedID, m.hasSelection = 0, false
		return
	}
	m.selectedIdx = max(0, min(len(m.rows)-1, idx))
	m.selectedID, m.hasSelection = m.rows[m.selectedIdx].EmailID, true
}

// refreshRows re-reads the reviewer queue and keeps the cursor on the same
// email ID when it is still present.
func (m *model) refreshRows() {
	m.rows = m.reviewer.Rows()
	m.loaded = m.reviewer.Loaded()
	if m.hasSelection {
		for i, r := range m.rows {
			if r.EmailID == m.selectedID {
				m.selectedIdx = i
				return
			}
		}
	}
	m.selectIndex(m.selectedIdx)
}

// refreshAfterReload refreshes the snapshot after the queue was replaced.
// A detail view whose email left the queue falls back to the queue view.
func (m *model) refreshAfterReload() {
	prev, had := m.selectedID, m.hasSelection
	m.refreshRows()
	if had && (!m.hasSelection || m.selectedID != prev) {
		if m.currentView == viewDetail {
			m.currentView = viewQueue
		}
		if m.currentView == viewNotice && m.noticeFromView == viewDetail {
			m.noticeFromView = viewQueue
		}
		m.setFlash(fmt.Sprintf("Email #%d is no longer in the queue", prev), 2*flashDuration, viewQueue)
	}
	m.syncBodyView(false)
}

// detailChromeLines is the number of detail-view lines outside the body.
const detailChromeLines = 13

// syncBodyView sizes the body viewport and loads the selected row's body.
// reset scrolls back to the top.
func (m *model) syncBodyView(reset bool) {
	m.bodyView.Width = max(m.width-2, 10)
	m.bodyView.Height = max(m.height-detailChromeLines-m.detailHelpLines(), 3)
	row, ok := m.selectedRow()
	if !ok {
		m.bodyView.SetContent("")
		return
	}
	body := termtext.Sanitize(row.Body)
	body = strings.ReplaceAll(body, "\t", "    ")
	m.bodyView.SetContent(lipgloss.NewStyle().Width(m.bodyView.Width).Render(body))
	if reset {
		m.bodyView.GotoTop()
	}
}

// baseView is the view a modal notice returns to.
func (m model) baseView() viewKind {
	if m.currentView == viewNotice {
		return m.noticeFromView
	}
	return m.currentView
}

func (m *model) setFlash(msg string, d time.Duration, view viewKind) {
	m.flashMessage = msg
	m.flashExpiresAt = time.Now().Add(d)
	m.flashView = view
}

func (m model) flashFor(view viewKind) string {
	if m.flashMessage == "" || m.flashView != view || !time.Now().Before(m.flashExpiresAt) {
		return ""
	}
	return m.flashMessage
}

// formatIDs renders email IDs as "#3, #11".
func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return strings.Join(parts, ", ")
}
