package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/stateflow"
)

const flashDuration = 3 * time.Second

// handleKeyMsg dispatches key events to view-specific handlers.
func (m model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal views that capture most keys
	switch m.currentView {
	case viewNotice:
		return m.handleNoticeKey(msg)
	case viewConfirmSave:
		return m.handleConfirmSaveKey(msg)
	case viewEditResponse:
		return m.handleEditResponseKey(msg)
	case viewReference:
		return m.handleReferenceKey(msg)
	}

	// Keys shared by the queue and detail views
	return m.handleGlobalKey(msg)
}

func (m model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.currentView == viewDetail {
			return m.handleEscKey()
		}
		return m, tea.Quit
	case "esc":
		return m.handleEscKey()
	case "up", "k", "down", "j", "pgup", "pgdown":
		if m.currentView == viewDetail {
			var cmd tea.Cmd
			m.bodyView, cmd = m.bodyView.Update(msg)
			return m, cmd
		}
		return m.handleQueueNavKey(msg.String())
	case "home", "g":
		if m.currentView == viewDetail {
			m.bodyView.GotoTop()
			return m, nil
		}
		m.selectIndex(0)
		return m, nil
	case "end", "G":
		if m.currentView == viewDetail {
			m.bodyView.GotoBottom()
			return m, nil
		}
		m.selectIndex(len(m.rows) - 1)
		return m, nil
	case "left", "h":
		return m.handlePrevNextKey(-1)
	case "right", "l":
		return m.handlePrevNextKey(1)
	case "enter":
		return m.handleEnterKey()
	case "c":
		return m.handleCategoryKey(1)
	case "C":
		return m.handleCategoryKey(-1)
	case "L":
		return m.handleLearnKey()
	case "e":
		return m.handleEditOpenKey()
	case "s":
		return m.handleSaveKey()
	case "y":
		return m.handleCopyKey()
	case "r":
		return m.handleReloadKey()
	case "a":
		return m.handleReferenceOpenKey()
	}
	return m, nil
}

func (m model) handleEscKey() (tea.Model, tea.Cmd) {
	if m.currentView == viewDetail {
		m.currentView = m.detailFromView
		if m.currentView == viewDetail {
			m.currentView = viewQueue
		}
	}
	return m, nil
}

func (m model) handleQueueNavKey(key string) (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	page := max(m.queueVisibleRows()-1, 1)
	idx := m.selectedIdx
	switch key {
	case "up", "k":
		idx--
	case "down", "j":
		idx++
	case "pgup":
		idx -= page
	case "pgdown":
		idx += page
	}
	m.selectIndex(idx)
	return m, nil
}

// handlePrevNextKey moves to the previous or next row. In the detail
// view the body is replaced with the new row's.
func (m model) handlePrevNextKey(delta int) (tea.Model, tea.Cmd) {
	if m.currentView != viewDetail || len(m.rows) == 0 {
		return m, nil
	}
	next := m.selectedIdx + delta
	if next < 0 || next >= len(m.rows) {
		if delta < 0 {
			m.setFlash("Already at the first email", flashDuration, viewDetail)
		} else {
			m.setFlash("Already at the last email", flashDuration, viewDetail)
		}
		return m, nil
	}
	m.selectIndex(next)
	m.syncBodyView(true)
	return m, nil
}

func (m model) handleEnterKey() (tea.Model, tea.Cmd) {
	if m.currentView != viewQueue {
		return m, nil
	}
	if _, ok := m.selectedRow(); !ok {
		return m, nil
	}
	m.detailFromView = viewQueue
	m.currentView = viewDetail
	m.syncBodyView(true)
	return m, nil
}

// editableRow returns the selected row unless a save is in flight. Edits
// made during a save would be lost to the resync that follows it.
func (m *model) editableRow() (review.Row, bool) {
	row, ok := m.selectedRow()
	if !ok {
		return review.Row{}, false
	}
	if m.saving {
		m.setFlash(fmt.Sprintf("Saving email #%d...", m.savingID), flashDuration, m.currentView)
		return review.Row{}, false
	}
	return row, true
}

func (m model) handleCategoryKey(delta int) (tea.Model, tea.Cmd) {
	row, ok := m.editableRow()
	if !ok {
		return m, nil
	}
	if err := m.cycleCategory(row, delta); err != nil {
		m.handleEditError(row.EmailID, err)
	}
	return m, nil
}

func (m model) handleLearnKey() (tea.Model, tea.Cmd) {
	row, ok := m.editableRow()
	if !ok {
		return m, nil
	}
	if err := m.toggleLearn(row); err != nil {
		m.handleEditError(row.EmailID, err)
	}
	return m, nil
}

func (m model) handleEditOpenKey() (tea.Model, tea.Cmd) {
	row, ok := m.editableRow()
	if !ok {
		return m, nil
	}
	m.editID = row.EmailID
	m.editFromView = m.currentView
	m.responseInput.SetWidth(max(m.width-8, 20))
	m.responseInput.SetValue(row.Response)
	m.currentView = viewEditResponse
	return m, m.responseInput.Focus()
}

func (m model) handleSaveKey() (tea.Model, tea.Cmd) {
	row, ok := m.editableRow()
	if !ok {
		return m, nil
	}
	if m.confirmDiscard && m.reviewer.Policy() == review.ResyncDiscard {
		if dirty := m.reviewer.DirtyIDs(row.EmailID); len(dirty) > 0 {
			m.confirmID = row.EmailID
			m.confirmDirty = dirty
			m.confirmFromView = m.currentView
			m.currentView = viewConfirmSave
			return m, nil
		}
	}
	return m.startSave(row.EmailID)
}

func (m model) startSave(id int64) (tea.Model, tea.Cmd) {
	m.saving = true
	m.savingID = id
	// The save reloads the queue; results of loads started before it are stale.
	m.fetchSeq++
	return m, m.saveRow(id)
}

func (m model) handleCopyKey() (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	return m, m.copyToClipboard(row)
}

func (m model) handleReloadKey() (tea.Model, tea.Cmd) {
	if m.saving {
		m.setFlash("Save in progress; the queue reloads after it", flashDuration, m.currentView)
		return m, nil
	}
	m.fetchSeq++
	m.loading = true
	return m, m.loadQueue()
}

func (m model) handleReferenceOpenKey() (tea.Model, tea.Cmd) {
	m.refFromView = m.currentView
	m.refSelectedIdx = 0
	if row, ok := m.selectedRow(); ok {
		for i, r := range m.actions.Rows() {
			if r.Category == row.UpdatedCategory {
				m.refSelectedIdx = i
				break
			}
		}
	}
	m.currentView = viewReference
	return m, nil
}

// handleEditError reports a failed edit. A missing row means a resync
// removed it; the snapshot is refreshed so the UI catches up.
func (m *model) handleEditError(id int64, err error) {
	if errors.Is(err, review.ErrNotFound) {
		m.refreshRows()
		m.setFlash(fmt.Sprintf("Email #%d is no longer in the queue", id), flashDuration, m.currentView)
		return
	}
	m.setFlash(err.Error(), flashDuration, m.currentView)
}

// handleEditResponseKey handles key input in the response modal.
func (m model) handleEditResponseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.responseInput.Blur()
		m.currentView = m.editFromView
		m.editID = 0
		return m, nil
	case "enter":
		id := m.editID
		m.responseInput.Blur()
		m.currentView = m.editFromView
		m.editID = 0
		if err := m.reviewer.SetResponse(id, m.responseInput.Value()); err != nil {
			m.handleEditError(id, err)
			return m, nil
		}
		m.refreshRows()
		return m, nil
	}
	var cmd tea.Cmd
	m.responseInput, cmd = m.responseInput.Update(msg)
	return m, cmd
}

// handleConfirmSaveKey handles the discard confirmation modal.
func (m model) handleConfirmSaveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y", "Y", "enter":
		id := m.confirmID
		m.currentView = m.confirmFromView
		m.confirmID = 0
		m.confirmDirty = nil
		return m.startSave(id)
	case "n", "N", "esc", "q":
		m.currentView = m.confirmFromView
		m.confirmID = 0
		m.confirmDirty = nil
		m.setFlash("Save canceled", flashDuration, m.currentView)
		return m, nil
	}
	return m, nil
}

// handleNoticeKey acknowledges the oldest blocking notice.
func (m model) handleNoticeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc", "q", " ":
		if len(m.pendingNotices) > 0 {
			m.pendingNotices = m.pendingNotices[1:]
		}
		if len(m.pendingNotices) == 0 {
			m.pendingNotices = nil
			m.currentView = m.noticeFromView
		}
	}
	return m, nil
}

// handleReferenceKey handles the category → action table.
func (m model) handleReferenceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "a":
		m.currentView = m.refFromView
		return m, nil
	case "up", "k":
		m.refSelectedIdx = max(m.refSelectedIdx-1, 0)
		return m, nil
	case "down", "j":
		m.refSelectedIdx = min(m.refSelectedIdx+1, m.actions.Len()-1)
		return m, nil
	case "left", "h":
		return m.cycleReferenceAction(-1)
	case "right", "l":
		return m.cycleReferenceAction(1)
	}
	return m, nil
}

func (m model) cycleReferenceAction(delta int) (tea.Model, tea.Cmd) {
	if _, err := m.actions.CycleAction(m.refSelectedIdx, delta); err != nil {
		if errors.Is(err, stateflow.ErrNotEditable) {
			m.setFlash("Only the human_intervention action can be changed", flashDuration, viewReference)
		} else {
			m.setFlash(err.Error(), flashDuration, viewReference)
		}
	}
	return m, nil
}

// handleQueueMsg refreshes the snapshot after a load.
func (m model) handleQueueMsg(msg queueMsg) (tea.Model, tea.Cmd) {
	// Discard results of loads overtaken by a reload or a save.
	if msg.seq < m.fetchSeq || errors.Is(msg.err, review.ErrSuperseded) {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.err = nil
	m.refreshAfterReload()
	return m, nil
}

// handleSaveResultMsg processes the end of a save and its resync.
func (m model) handleSaveResultMsg(msg saveResultMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	m.savingID = 0
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, review.ErrNotFound) {
			m.refreshRows()
			m.setFlash(fmt.Sprintf("Email #%d is no longer in the queue", msg.emailID), flashDuration, m.baseView())
		}
		// Other failures arrive as a blocking notice; the row keeps its edits.
		return m, nil
	}

	res := msg.result
	m.lastSave = &res
	m.err = res.ResyncErr
	m.refreshAfterReload()
	switch {
	case len(res.Discarded) > 0:
		m.setFlash("Discarded unsaved edits on "+formatIDs(res.Discarded), 2*flashDuration, m.baseView())
	case len(res.Preserved) > 0:
		m.setFlash("Kept unsaved edits on "+formatIDs(res.Preserved), 2*flashDuration, m.baseView())
	}
	return m, nil
}

// handleNoticeMsg queues blocking notices for acknowledgement and shows
// the rest as a flash. It always re-arms the notice listener.
func (m model) handleNoticeMsg(msg noticeMsg) (tea.Model, tea.Cmd) {
	n := review.Notice(msg)
	next := waitForNotice(m.notices)
	if !n.Blocking {
		m.setFlash(n.Message, 2*flashDuration, m.baseView())
		return m, next
	}
	m.pendingNotices = append(m.pendingNotices, n)
	if m.currentView != viewNotice {
		m.noticeFromView = m.currentView
		m.currentView = viewNotice
	}
	return m, next
}

// handleClipboardResultMsg processes clipboard copy results.
func (m model) handleClipboardResultMsg(msg clipboardResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setFlash(fmt.Sprintf("Copy failed: %v", msg.err), flashDuration, msg.view)
	} else {
		m.setFlash("Copied to clipboard", flashDuration, msg.view)
	}
	return m, nil
}

func (m model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.responseInput.SetWidth(max(m.width-8, 20))
	m.syncBodyView(false)
	return m, nil
}
