package tui

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hrdesk/hrreview/internal/backend"
	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/termtext"
)

func TestTUIInitialLoad(t *testing.T) {
	emails := testEmails()
	_, m := mockServerModel(t, escalationsHandler(t, emails, nil))

	if !m.loading {
		t.Fatal("Expected model to start in loading state")
	}
	m, _ = runCmd(t, m, m.loadQueue())

	if m.loading {
		t.Error("Expected loading to be cleared")
	}
	if len(m.rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(m.rows))
	}
	for i, r := range m.rows {
		if r.EmailID != emails[i].EmailID {
			t.Errorf("row %d: expected email %d, got %d", i, emails[i].EmailID, r.EmailID)
		}
		if r.UpdatedCategory != r.ClassifiedCategory || r.Response != "" || r.Learn {
			t.Errorf("row %d not initialized to defaults: %+v", i, r)
		}
	}
	if m.selectedIdx != 0 || m.selectedID != 7 {
		t.Errorf("Expected first row selected, got idx=%d id=%d", m.selectedIdx, m.selectedID)
	}
}

func TestTUILoadErrorKeepsRows(t *testing.T) {
	m, fc := newLoadedModel(t, review.ResyncDiscard, testEmails()...)
	fc.fetchErr = errors.New("connection refused")

	m, cmd := pressKey(m, 'r')
	if !m.loading {
		t.Error("Expected reload to set loading")
	}
	m, _ = runCmd(t, m, cmd)

	if m.err == nil || !strings.Contains(m.err.Error(), "connection refused") {
		t.Errorf("Expected load error to be recorded, got %v", m.err)
	}
	if len(m.rows) != 3 {
		t.Errorf("Expected rows to survive a failed reload, got %d", len(m.rows))
	}
	notices := drainNotices(m)
	if len(notices) != 1 || notices[0].Blocking || notices[0].Kind != review.NoticeLoadFailed {
		t.Errorf("Expected one passive load-failed notice, got %+v", notices)
	}
}

func TestTUILoadErrorStatusLine(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		not  string
	}{
		{
			name: "unreachable",
			err: &url.Error{Op: "Get", URL: "http://localhost/api/escalations",
				Err: errors.New("dial tcp 127.0.0.1:5000: connect: connection refused")},
			want: "Backend unreachable at http://localhost (r to retry)",
			not:  "dial tcp",
		},
		{
			name: "error status",
			err:  &backend.HTTPError{StatusCode: http.StatusInternalServerError, Detail: "database is locked"},
			want: "Error: ",
			not:  "unreachable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fc := newLoadedModel(t, review.ResyncDiscard, testEmails()...)
			m.width, m.height = 120, 30
			fc.fetchErr = tt.err

			m, cmd := pressKey(m, 'r')
			m, _ = runCmd(t, m, cmd)

			out := termtext.StripANSI(m.View())
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected %q in queue view, got:\n%s", tt.want, out)
			}
			if strings.Contains(out, tt.not) {
				t.Errorf("Did not expect %q in queue view, got:\n%s", tt.not, out)
			}
		})
	}
}

func TestTUIStaleQueueMsgDiscarded(t *testing.T) {
	m := initTestModel(t)
	m.fetchSeq = 2
	m.loading = true

	m, _ = updateModel(t, m, queueMsg{seq: 1, err: errors.New("old failure")})

	if m.err != nil {
		t.Errorf("Stale load result must not set error, got %v", m.err)
	}
	if !m.loading {
		t.Error("Stale load result must not clear loading")
	}
}

func TestTUISupersededLoadIgnored(t *testing.T) {
	m := initTestModel(t)
	m.loading = true

	m, _ = updateModel(t, m, queueMsg{seq: m.fetchSeq, err: review.ErrSuperseded})

	if m.err != nil {
		t.Errorf("Superseded load must not surface as an error, got %v", m.err)
	}
}

func TestTUIReloadKeepsSelectionByID(t *testing.T) {
	m, fc := newLoadedModel(t, review.ResyncDiscard, testEmails()...)
	m, _ = pressSpecial(m, tea.KeyDown)
	if m.selectedID != 3 {
		t.Fatalf("Expected email 3 selected, got %d", m.selectedID)
	}

	// Reorder on the server: email 3 moves to the end.
	e := testEmails()
	fc.setEmails(e[0], e[2], e[1])
	m, cmd := pressKey(m, 'r')
	m, _ = runCmd(t, m, cmd)

	if m.selectedID != 3 || m.selectedIdx != 2 {
		t.Errorf("Expected selection to follow email 3 to idx 2, got idx=%d id=%d", m.selectedIdx, m.selectedID)
	}
}

func TestTUIReloadKeepsSelectionOnEmailIDZero(t *testing.T) {
	e := testEmails()
	e[1].EmailID = 0
	m, fc := newLoadedModel(t, review.ResyncDiscard, e...)
	m, _ = pressSpecial(m, tea.KeyDown)
	if m.selectedID != 0 || !m.hasSelection {
		t.Fatalf("Expected email 0 selected, got id=%d selected=%v", m.selectedID, m.hasSelection)
	}

	fc.setEmails(e[0], e[2], e[1])
	m, cmd := pressKey(m, 'r')
	m, _ = runCmd(t, m, cmd)

	if m.selectedIdx != 2 || m.selectedID != 0 {
		t.Errorf("Expected selection to follow email 0 to idx 2, got idx=%d id=%d", m.selectedIdx, m.selectedID)
	}
	if got := m.flashFor(viewQueue); got != "" {
		t.Errorf("Expected no flash, got %q", got)
	}
}

func TestTUIReloadDropsLocalEdits(t *testing.T) {
	m := initTestModel(t)
	m, _ = pressKey(m, 'L')
	if !rowByID(t, m, 7).Learn {
		t.Fatal("Expected learn toggled on")
	}

	m, cmd := pressKey(m, 'r')
	m, _ = runCmd(t, m, cmd)

	if rowByID(t, m, 7).Dirty() {
		t.Error("Expected reload to replace rows with fresh defaults")
	}
}

func TestTUINavigationClamps(t *testing.T) {
	m := initTestModel(t)

	m, _ = pressSpecial(m, tea.KeyUp)
	if m.selectedIdx != 0 {
		t.Errorf("Expected idx 0 at top, got %d", m.selectedIdx)
	}
	m, _ = pressKey(m, 'G')
	if m.selectedIdx != 2 || m.selectedID != 11 {
		t.Errorf("Expected last row, got idx=%d id=%d", m.selectedIdx, m.selectedID)
	}
	m, _ = pressKey(m, 'j')
	if m.selectedIdx != 2 {
		t.Errorf("Expected idx to stay at 2, got %d", m.selectedIdx)
	}
	m, _ = pressKey(m, 'g')
	if m.selectedIdx != 0 {
		t.Errorf("Expected home to select first row, got %d", m.selectedIdx)
	}
}

func TestTUIEnterOpensDetailAndEscReturns(t *testing.T) {
	m := initTestModel(t, withSelection(1))

	m, _ = pressSpecial(m, tea.KeyEnter)
	assertView(t, m, viewDetail)

	m, _ = pressKey(m, 'l')
	if m.selectedID != 11 {
		t.Errorf("Expected next email 11 in detail view, got %d", m.selectedID)
	}
	m, _ = pressKey(m, 'l')
	if m.flashFor(viewDetail) != "Already at the last email" {
		t.Errorf("Unexpected flash %q", m.flashMessage)
	}

	m, _ = pressSpecial(m, tea.KeyEsc)
	assertView(t, m, viewQueue)
}

func TestTUIDetailFallsBackWhenRowLeavesQueue(t *testing.T) {
	m, fc := newLoadedModel(t, review.ResyncDiscard, testEmails()...)
	m, _ = pressSpecial(m, tea.KeyEnter)
	assertView(t, m, viewDetail)

	e := testEmails()
	fc.setEmails(e[1], e[2])
	m, cmd := pressKey(m, 'r')
	m, _ = runCmd(t, m, cmd)

	assertView(t, m, viewQueue)
	if m.selectedID != 3 {
		t.Errorf("Expected selection to move to email 3, got %d", m.selectedID)
	}
	if got := m.flashFor(viewQueue); got != "Email #7 is no longer in the queue" {
		t.Errorf("Unexpected flash %q", got)
	}
}

func TestTUIEmptyQueue(t *testing.T) {
	m, _ := newLoadedModel(t, review.ResyncDiscard)

	if m.selectedIdx != -1 {
		t.Errorf("Expected no selection, got %d", m.selectedIdx)
	}
	for _, k := range []rune{'c', 'L', 'e', 's', 'y'} {
		var cmd tea.Cmd
		m, cmd = pressKey(m, k)
		if cmd != nil {
			t.Errorf("key %q on empty queue returned a command", k)
		}
	}
	assertView(t, m, viewQueue)
	if out := m.View(); !strings.Contains(out, "No escalations waiting for review") {
		t.Errorf("Expected empty-queue message, got:\n%s", out)
	}
}

func TestTUIQueueRender(t *testing.T) {
	m := initTestModel(t, withDimensions(120, 30))
	m, _ = pressKey(m, 'c')

	out := m.View()
	for _, want := range []string{"hrreview escalations", "Payslip missing", "dana@example.com", "Escalations: 3", "Unsaved: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in queue view", want)
		}
	}
	if !strings.Contains(out, escalation.CycleCategory("Payroll Inquiry", 1)) {
		t.Error("Expected the new category in the queue view")
	}
}
