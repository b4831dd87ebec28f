package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/hrdesk/hrreview/internal/backend"
	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/review"
	"github.com/hrdesk/hrreview/internal/termtext"
)

// fakeClient is an in-memory backend. Updates overwrite the stored
// category the way the real backend does.
type fakeClient struct {
	mu        sync.Mutex
	emails    []escalation.Email
	updates   []escalation.Update
	fetchErr  error
	updateErr error
}

func (f *fakeClient) FetchEscalations(ctx context.Context) ([]escalation.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return slices.Clone(f.emails), nil
}

func (f *fakeClient) UpdateEmail(ctx context.Context, u escalation.Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.emails {
		if f.emails[i].EmailID == u.EmailID {
			f.emails[i].ClassifiedCategory = u.UpdatedCategory
		}
	}
	return nil
}

func (f *fakeClient) setEmails(emails ...escalation.Email) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = emails
}

// mockClipboard implements ClipboardWriter for testing
type mockClipboard struct {
	lastText string
	err      error
}

func (m *mockClipboard) WriteText(text string) error {
	if m.err != nil {
		return m.err
	}
	m.lastText = text
	return nil
}

func testEmails() []escalation.Email {
	return []escalation.Email{
		{EmailID: 7, SenderEmail: "dana@example.com", Subject: "Payslip missing",
			Body: "I did not get my payslip for February.", ReceivedAt: "2025-03-01 09:15:00",
			ClassifiedCategory: "Payroll Inquiry"},
		{EmailID: 3, SenderEmail: "lee@example.com", Subject: "Friday party",
			Body: "Is there cake?", ReceivedAt: "2025-03-01 10:00:00",
			ClassifiedCategory: escalation.HumanIntervention},
		{EmailID: 11, SenderEmail: "kim@example.com", Subject: "VPN",
			Body: "Cannot log in.", ReceivedAt: "2025-03-02 08:30:00",
			ClassifiedCategory: "IT & Access Issues"},
	}
}

type testModelOption func(*model)

func withCurrentView(v viewKind) testModelOption {
	return func(m *model) { m.currentView = v }
}

func withDimensions(w, h int) testModelOption {
	return func(m *model) { m.width = w; m.height = h }
}

func withSelection(idx int) testModelOption {
	return func(m *model) { m.selectIndex(idx) }
}

func withConfirm(on bool) testModelOption {
	return func(m *model) { m.confirmDiscard = on }
}

// newLoadedModel returns a model whose reviewer has loaded emails from an
// in-memory backend.
func newLoadedModel(t *testing.T, policy review.ResyncPolicy, emails ...escalation.Email) (model, *fakeClient) {
	t.Helper()
	fc := &fakeClient{emails: emails}
	notices := make(noticeChannel, noticeBuffer)
	r := review.New(fc, review.WithNotifier(notices), review.WithResyncPolicy(policy))
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	m := newModel("http://localhost", r, notices, withClipboardWriter(&mockClipboard{}))
	m.loading = false
	m.refreshRows()
	return m, fc
}

func initTestModel(t *testing.T, opts ...testModelOption) model {
	t.Helper()
	m, _ := newLoadedModel(t, review.ResyncDiscard, testEmails()...)
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// mockServerModel wires a model to a real HTTP client pointed at handler.
// Nothing is loaded yet.
func mockServerModel(t *testing.T, handler http.HandlerFunc) (*httptest.Server, model) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	notices := make(noticeChannel, noticeBuffer)
	r := review.New(backend.NewHTTPClient(ts.URL), review.WithNotifier(notices))
	m := newModel(ts.URL, r, notices, withClipboardWriter(&mockClipboard{}))
	return ts, m
}

// escalationsHandler serves emails on GET and delegates POSTs.
func escalationsHandler(t *testing.T, emails []escalation.Email, post http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/escalations":
			json.NewEncoder(w).Encode(emails)
		case r.URL.Path == "/api/update_email" && post != nil:
			post(w, r)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

// expectJSONPost is a helper to mock expected POST requests and respond with JSON.
func expectJSONPost[Req any, Res any](t *testing.T, path string, expected Req, response Res) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if path != "" && r.URL.Path != path {
			t.Errorf("Expected path %s, got %s", path, r.URL.Path)
		}

		var req Req
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if diff := cmp.Diff(expected, req); diff != "" {
			t.Errorf("Request payload mismatch (-want +got):\n%s", diff)
			http.Error(w, "payload mismatch", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(response)
	}
}

// assertMsgType is a helper to assert the type of a tea.Msg and return it.
func assertMsgType[T any](t *testing.T, msg tea.Msg) T {
	t.Helper()
	result, ok := msg.(T)
	if !ok {
		t.Fatalf("Expected %T, got %T: %v", new(T), msg, msg)
	}
	return result
}

func assertView(t *testing.T, m model, view viewKind) {
	t.Helper()
	if m.currentView != view {
		t.Errorf("Expected view=%d, got %d", view, m.currentView)
	}
}

func updateModel(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(model), cmd
}

func pressKey(m model, r rune) (model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return updated.(model), cmd
}

func pressSpecial(m model, key tea.KeyType) (model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: key})
	return updated.(model), cmd
}

func typeText(m model, s string) model {
	for _, r := range s {
		m, _ = pressKey(m, r)
	}
	return m
}

// runCmd executes cmd and feeds its message back into the model.
func runCmd(t *testing.T, m model, cmd tea.Cmd) (model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("Expected a command")
	}
	return updateModel(t, m, cmd())
}

// drainNotices returns every notice the reviewer has emitted so far.
func drainNotices(m model) []review.Notice {
	var out []review.Notice
	for {
		select {
		case n := <-m.notices:
			out = append(out, n)
		default:
			return out
		}
	}
}

func rowByID(t *testing.T, m model, id int64) review.Row {
	t.Helper()
	for _, r := range m.rows {
		if r.EmailID == id {
			return r
		}
	}
	t.Fatalf("email %d not in model rows", id)
	return review.Row{}
}

// modalText flattens a rendered modal to single-spaced plain text so
// assertions do not depend on where the box wraps.
func modalText(view string) string {
	view = termtext.StripANSI(view)
	view = strings.Map(func(r rune) rune {
		if strings.ContainsRune("│─╭╮╰╯", r) {
			return ' '
		}
		return r
	}, view)
	return strings.Join(strings.Fields(view), " ")
}
