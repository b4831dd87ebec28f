package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hrdesk/hrreview/internal/escalation"
)

// mockBackend serves a fixed escalation list and records update payloads.
type mockBackend struct {
	*httptest.Server

	mu         sync.Mutex
	emails     []escalation.Email
	updates    []escalation.Update
	fetchFail  bool
	updateFail bool
}

func newMockBackend(t *testing.T, emails ...escalation.Email) *mockBackend {
	t.Helper()
	mb := &mockBackend{emails: emails}
	mb.Server = httptest.NewServer(http.HandlerFunc(mb.serve))
	t.Cleanup(mb.Close)
	return mb
}

func (mb *mockBackend) serve(w http.ResponseWriter, r *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/escalations":
		if mb.fetchFail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "database is locked"})
			return
		}
		json.NewEncoder(w).Encode(mb.emails)
	case r.Method == http.MethodPost && r.URL.Path == "/api/update_email":
		var u escalation.Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		mb.updates = append(mb.updates, u)
		if mb.updateFail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "database is locked"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Email updated successfully"})
	default:
		http.NotFound(w, r)
	}
}

func (mb *mockBackend) Updates() []escalation.Update {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return append([]escalation.Update(nil), mb.updates...)
}

func testEmails() []escalation.Email {
	return []escalation.Email{
		{EmailID: 7, SenderEmail: "dana@example.com", Subject: "Payslip missing",
			Body: "I did not get my payslip for February.", ReceivedAt: "2025-03-01 09:15:00",
			ClassifiedCategory: "Payroll Inquiry"},
		{EmailID: 11, SenderEmail: "kim@example.com", Subject: "VPN\nagain",
			Body: "Cannot log in.", ReceivedAt: "2025-03-02 08:30:00",
			ClassifiedCategory: "IT & Access Issues"},
	}
}

// runCLI executes the root command with args.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func assertExitCode(t *testing.T, err error, want int) {
	t.Helper()
	var exitErr *exitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected exitError, got %v", err)
	}
	if exitErr.code != want {
		t.Errorf("Expected exit code %d, got %d", want, exitErr.code)
	}
}
