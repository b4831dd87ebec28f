package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hrdesk/hrreview/internal/backend"
	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/logging"
	"go.uber.org/zap"
)

// ResyncPolicy decides what happens to unsaved edits on other rows when a
// successful save reloads the queue.
type ResyncPolicy int

const (
	// ResyncDiscard replaces every row with fresh server state.
	ResyncDiscard ResyncPolicy = iota
	// ResyncPreserve re-applies unsaved edits to rows that survive the
	// reload.
	ResyncPreserve
)

// ParseResyncPolicy maps the config spelling to a policy.
func ParseResyncPolicy(s string) (ResyncPolicy, error) {
	switch s {
	case "", "discard":
		return ResyncDiscard, nil
	case "preserve":
		return ResyncPreserve, nil
	}
	return ResyncDiscard, fmt.Errorf("unknown resync policy %q", s)
}

func (p ResyncPolicy) String() string {
	if p == ResyncPreserve {
		return "preserve"
	}
	return "discard"
}

// SaveResult describes what a successful save did to the rest of the queue.
type SaveResult struct {
	EmailID int64
	// Discarded lists other rows whose unsaved edits were lost to the resync.
	Discarded []int64
	// Preserved lists other rows whose unsaved edits were carried over.
	Preserved []int64
	// ResyncErr is set when the save succeeded but the reload after it
	// failed; the queue then still shows the pre-save rows.
	ResyncErr error
}

// Reviewer composes the loader, the per-row editor and the committer around
// one Queue. Its methods are safe to call from multiple goroutines; network
// I/O never happens while the queue lock is held.
type Reviewer struct {
	mu     sync.Mutex
	queue  *Queue
	client backend.Client
	notify Notifier
	log    *zap.Logger
	policy ResyncPolicy
}

// Option configures a Reviewer.
type Option func(*Reviewer)

// WithNotifier sets where user-facing notices go.
func WithNotifier(n Notifier) Option {
	return func(r *Reviewer) {
		if n != nil {
			r.notify = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reviewer) {
		r.log = logging.OrNop(l)
	}
}

// WithResyncPolicy sets the policy applied after successful saves.
func WithResyncPolicy(p ResyncPolicy) Option {
	return func(r *Reviewer) { r.policy = p }
}

// New returns a Reviewer with an empty queue.
func New(client backend.Client, opts ...Option) *Reviewer {
	r := &Reviewer{
		queue:  NewQueue(),
		client: client,
		notify: Discard,
		log:    logging.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Policy returns the resync policy.
func (r *Reviewer) Policy() ResyncPolicy { return r.policy }

// Load fetches the escalation queue and replaces every row with fresh
// defaults. On failure the queue is left as it was and a passive notice is
// sent; nothing is retried. A load overtaken by a newer one returns
// ErrSuperseded and changes nothing.
func (r *Reviewer) Load(ctx context.Context) error {
	_, _, err := r.load(ctx, nil)
	return err
}

func (r *Reviewer) load(ctx context.Context, carry []Row) (restored, gone []int64, err error) {
	r.mu.Lock()
	tok := r.queue.BeginLoad()
	r.mu.Unlock()

	emails, err := r.client.FetchEscalations(ctx)

	r.mu.Lock()
	if !r.queue.Current(tok) {
		r.mu.Unlock()
		r.log.Debug("dropping stale escalations response", zap.Uint64("token", uint64(tok)), zap.Error(err))
		return nil, nil, ErrSuperseded
	}
	if err != nil {
		r.mu.Unlock()
		r.log.Warn("escalations fetch failed", zap.Error(err))
		r.notify.Notify(Notice{
			Kind:    NoticeLoadFailed,
			Message: fmt.Sprintf("Error fetching escalations: %v", err),
			Err:     err,
		})
		return nil, nil, fmt.Errorf("load escalations: %w", err)
	}

	emails, dups := Dedupe(emails)
	r.queue.Apply(tok, emails)
	if len(carry) > 0 {
		restored, gone = r.queue.restore(carry)
	}
	count := r.queue.Len()
	r.mu.Unlock()

	if len(dups) > 0 {
		r.log.Warn("backend returned duplicate email ids", zap.Int64s("email_ids", dups))
	}
	r.log.Info("escalations loaded", zap.Int("count", count), zap.Int("restored", len(restored)))
	return restored, gone, nil
}

// Save commits the edits of one row. A missing row fails with ErrNotFound
// and a category outside the closed set with ErrInvalidCategory, both
// before any request is made. If the backend rejects the save the queue is
// untouched so it can be retried. After a successful save the whole queue
// is reloaded.
func (r *Reviewer) Save(ctx context.Context, id int64) (SaveResult, error) {
	res := SaveResult{EmailID: id}

	r.mu.Lock()
	row, ok := r.queue.Row(id)
	if !ok {
		r.mu.Unlock()
		return res, fmt.Errorf("save email %d: %w", id, ErrNotFound)
	}
	others := r.queue.dirtyRows(id)
	r.mu.Unlock()

	if !escalation.ValidCategory(row.UpdatedCategory) {
		err := fmt.Errorf("save email %d: %q: %w", id, row.UpdatedCategory, ErrInvalidCategory)
		r.notify.Notify(Notice{
			Kind:     NoticeSaveFailed,
			EmailID:  id,
			Message:  fmt.Sprintf("Pick a category for email ID %d before saving.", id),
			Err:      err,
			Blocking: true,
		})
		return res, err
	}

	payload := row.Submission()
	if err := r.client.UpdateEmail(ctx, payload); err != nil {
		r.log.Error("email update failed", zap.Int64("email_id", id), zap.Error(err))
		r.notify.Notify(Notice{
			Kind:     NoticeSaveFailed,
			EmailID:  id,
			Message:  "Failed to update email.",
			Err:      err,
			Blocking: true,
		})
		return res, fmt.Errorf("save email %d: %w", id, err)
	}

	r.log.Info("email updated",
		zap.Int64("email_id", id),
		zap.String("updated_category", payload.UpdatedCategory),
		zap.Bool("learn", payload.Learn),
		zap.Int("unsaved_other_rows", len(others)))
	r.notify.Notify(Notice{
		Kind:     NoticeSaved,
		EmailID:  id,
		Message:  fmt.Sprintf("Updated email ID %d successfully!", id),
		Blocking: true,
	})

	var carry []Row
	if r.policy == ResyncPreserve {
		carry = others
	}
	restored, gone, err := r.load(ctx, carry)
	switch {
	case errors.Is(err, ErrSuperseded):
		// A newer load owns the queue now; it already replaced the rows.
		res.Discarded = idsOf(others)
	case err != nil:
		res.ResyncErr = err
	case r.policy == ResyncPreserve:
		res.Preserved = restored
		res.Discarded = gone
	default:
		res.Discarded = idsOf(others)
	}
	if len(res.Discarded) > 0 {
		r.log.Info("resync discarded unsaved edits", zap.Int64s("email_ids", res.Discarded))
	}
	return res, nil
}

// Rows returns a snapshot of the queue.
func (r *Reviewer) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Rows()
}

// Row returns a snapshot of one row.
func (r *Reviewer) Row(id int64) (Row, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Row(id)
}

// Loaded reports whether a load has ever succeeded.
func (r *Reviewer) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Loaded()
}

// DirtyIDs lists rows with unsaved edits other than except.
func (r *Reviewer) DirtyIDs(except int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.DirtyIDs(except)
}

func (r *Reviewer) SetCategory(id int64, category string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.SetCategory(id, category)
}

func (r *Reviewer) SetResponse(id int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.SetResponse(id, text)
}

func (r *Reviewer) SetLearn(id int64, learn bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.SetLearn(id, learn)
}

// Edit sets one field of one row from its string form.
func (r *Reviewer) Edit(id int64, field escalation.Field, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Edit(id, field, value)
}

func idsOf(rows []Row) []int64 {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.EmailID
	}
	return ids
}
