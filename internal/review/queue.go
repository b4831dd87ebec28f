// Package review is the escalation review state machine: it loads the
// escalation queue, tracks the reviewer's per-row edits and commits one
// row at a time back to the backend.
package review

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hrdesk/hrreview/internal/escalation"
)

var (
	// ErrNotFound is returned when an edit or save names an email that is
	// not in the current queue.
	ErrNotFound = errors.New("email not in queue")
	// ErrInvalidCategory is returned for categories outside the closed set.
	ErrInvalidCategory = errors.New("category not in the allowed set")
	// ErrSuperseded is returned by a load whose response arrived after a
	// newer load was started. Its result was dropped.
	ErrSuperseded = errors.New("load superseded by a newer request")
)

// Token identifies one load request. Tokens increase monotonically; only
// the response for the most recently issued token is applied.
type Token uint64

// Row is the reviewer's editable view of one escalated email.
type Row struct {
	escalation.Email

	UpdatedCategory string
	Response        string
	Learn           bool
}

// NewRow derives a row with default edits from a fetched email.
func NewRow(e escalation.Email) Row {
	return Row{
		Email:           e,
		UpdatedCategory: e.ClassifiedCategory,
	}
}

// Dirty reports whether any editable field differs from its default.
func (r Row) Dirty() bool {
	return r.UpdatedCategory != r.ClassifiedCategory || r.Response != "" || r.Learn
}

// Submission builds the payload that commits this row.
func (r Row) Submission() escalation.Update {
	return escalation.Update{
		EmailID:         r.EmailID,
		UpdatedCategory: r.UpdatedCategory,
		Response:        r.Response,
		Learn:           r.Learn,
	}
}

// Queue is the single owner of the escalation rows. Only Apply replaces the
// rows; the Set methods patch one field of one row.
//
// Queue is not safe for concurrent use; Reviewer serializes access.
type Queue struct {
	rows   []Row
	index  map[int64]int
	latest Token
	loaded bool
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{index: make(map[int64]int)}
}

// BeginLoad issues the token for a new load request.
func (q *Queue) BeginLoad() Token {
	q.latest++
	return q.latest
}

// Current reports whether tok is the most recently issued token.
func (q *Queue) Current(tok Token) bool {
	return tok == q.latest
}

// Apply replaces the whole queue with rows derived from emails, in order,
// if tok is still current. Unsaved edits are not carried over. It reports
// whether the emails were applied.
func (q *Queue) Apply(tok Token, emails []escalation.Email) bool {
	if !q.Current(tok) {
		return false
	}
	emails, _ = Dedupe(emails)
	rows := make([]Row, len(emails))
	index := make(map[int64]int, len(emails))
	for i, e := range emails {
		rows[i] = NewRow(e)
		index[e.EmailID] = i
	}
	q.rows = rows
	q.index = index
	q.loaded = true
	return true
}

// Loaded reports whether any load has been applied.
func (q *Queue) Loaded() bool { return q.loaded }

// Len returns the number of rows.
func (q *Queue) Len() int { return len(q.rows) }

// Rows returns a copy of the rows in server order.
func (q *Queue) Rows() []Row {
	return slices.Clone(q.rows)
}

// Row returns a copy of the row for id.
func (q *Queue) Row(id int64) (Row, bool) {
	i, ok := q.index[id]
	if !ok {
		return Row{}, false
	}
	return q.rows[i], true
}

// SetCategory overrides the category of one row.
func (q *Queue) SetCategory(id int64, category string) error {
	if !escalation.ValidCategory(category) {
		return fmt.Errorf("%q: %w", category, ErrInvalidCategory)
	}
	r, err := q.row(id)
	if err != nil {
		return err
	}
	r.UpdatedCategory = category
	return nil
}

// SetResponse sets the reply text of one row. Any text is accepted.
func (q *Queue) SetResponse(id int64, text string) error {
	r, err := q.row(id)
	if err != nil {
		return err
	}
	r.Response = text
	return nil
}

// SetLearn sets the training flag of one row.
func (q *Queue) SetLearn(id int64, learn bool) error {
	r, err := q.row(id)
	if err != nil {
		return err
	}
	r.Learn = learn
	return nil
}

// Edit sets one field from its string form. Learn accepts yes/no as well as
// the usual boolean spellings.
func (q *Queue) Edit(id int64, field escalation.Field, value string) error {
	switch field {
	case escalation.FieldCategory:
		return q.SetCategory(id, value)
	case escalation.FieldResponse:
		return q.SetResponse(id, value)
	case escalation.FieldLearn:
		learn, err := escalation.ParseLearn(value)
		if err != nil {
			return err
		}
		return q.SetLearn(id, learn)
	}
	return fmt.Errorf("unknown field %s", field)
}

// DirtyIDs lists rows with unsaved edits, excluding except, in queue order.
func (q *Queue) DirtyIDs(except int64) []int64 {
	var ids []int64
	for _, r := range q.rows {
		if r.EmailID != except && r.Dirty() {
			ids = append(ids, r.EmailID)
		}
	}
	return ids
}

// dirtyRows returns copies of the rows DirtyIDs would list.
func (q *Queue) dirtyRows(except int64) []Row {
	var rows []Row
	for _, r := range q.rows {
		if r.EmailID != except && r.Dirty() {
			rows = append(rows, r)
		}
	}
	return rows
}

// restore re-applies the edits of carried rows that are still present.
// A carried category that is no longer valid is dropped. It returns the
// ids that were restored and the ids that are gone.
func (q *Queue) restore(carried []Row) (restored, gone []int64) {
	for _, c := range carried {
		r, err := q.row(c.EmailID)
		if err != nil {
			gone = append(gone, c.EmailID)
			continue
		}
		if escalation.ValidCategory(c.UpdatedCategory) {
			r.UpdatedCategory = c.UpdatedCategory
		}
		r.Response = c.Response
		r.Learn = c.Learn
		restored = append(restored, c.EmailID)
	}
	return restored, gone
}

func (q *Queue) row(id int64) (*Row, error) {
	i, ok := q.index[id]
	if !ok {
		return nil, fmt.Errorf("email %d: %w", id, ErrNotFound)
	}
	return &q.rows[i], nil
}

// Dedupe drops repeated email ids, keeping the first occurrence. It returns
// the ids that were dropped.
func Dedupe(emails []escalation.Email) ([]escalation.Email, []int64) {
	seen := make(map[int64]bool, len(emails))
	var dups []int64
	out := emails[:0:0]
	for _, e := range emails {
		if seen[e.EmailID] {
			dups = append(dups, e.EmailID)
			continue
		}
		seen[e.EmailID] = true
		out = append(out, e)
	}
	return out, dups
}
