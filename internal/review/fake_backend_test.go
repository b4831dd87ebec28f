package review

import (
	"context"
	"slices"
	"sync"

	"github.com/hrdesk/hrreview/internal/escalation"
)

// fakeBackend behaves like the HR backend: it serves its emails in order
// and an update overwrites the stored category.
type fakeBackend struct {
	mu        sync.Mutex
	emails    []escalation.Email
	updates   []escalation.Update
	fetches   int
	fetchErr  error
	updateErr error
	// onFetch, when set, runs before a fetch returns. n is 1-based.
	onFetch func(n int) ([]escalation.Email, bool, error)
}

func newFakeBackend(emails ...escalation.Email) *fakeBackend {
	return &fakeBackend{emails: emails}
}

func (f *fakeBackend) FetchEscalations(ctx context.Context) ([]escalation.Email, error) {
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		if emails, handled, err := hook(n); handled {
			return emails, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return slices.Clone(f.emails), nil
}

func (f *fakeBackend) UpdateEmail(ctx context.Context, u escalation.Update) error {
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

func (f *fakeBackend) Updates() []escalation.Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.updates)
}

func (f *fakeBackend) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// recorder collects notices.
type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.notices)
}

func testEmails() []escalation.Email {
	return []escalation.Email{
		{EmailID: 7, SenderEmail: "dana@example.com", Subject: "Payslip missing", Body: "I did not get my payslip.",
			ReceivedAt: "2025-03-01 09:15:00", ClassifiedCategory: "Payroll Inquiry"},
		{EmailID: 3, SenderEmail: "lee@example.com", Subject: "Friday party", Body: "Is there cake?",
			ReceivedAt: "2025-03-01 10:00:00", ClassifiedCategory: escalation.HumanIntervention},
		{EmailID: 11, SenderEmail: "kim@example.com", Subject: "VPN", Body: "Cannot log in.",
			ReceivedAt: "2025-03-02 08:30:00", ClassifiedCategory: "IT & Access Issues"},
	}
}
