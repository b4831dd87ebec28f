// Package stateflow holds the category to action reference table shown to
// reviewers. It is display data only and is never sent to the backend.
package stateflow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hrdesk/hrreview/internal/escalation"
)

var (
	ErrNotEditable   = errors.New("only the human_intervention action can be changed")
	ErrUnknownAction = errors.New("unknown action")
)

// AwaitAdminReview is the default action for human_intervention.
const AwaitAdminReview = "No auto-response (await admin review)"

// Row pairs a category with the action the pipeline takes for it.
type Row struct {
	Category string `json:"category" yaml:"category"`
	Action   string `json:"action" yaml:"action"`
}

// Editable reports whether the row's action may be changed.
func (r Row) Editable() bool {
	return r.Category == escalation.HumanIntervention
}

var defaultRows = []Row{
	{"Leave Request", "Auto-approve leave"},
	{"Onboarding", "Send onboarding checklist"},
	{"Job Offer", "Forward to HR manager"},
	{"Payroll Inquiry", "Forward to payroll team"},
	{"Benefits Inquiry", "Forward to benefits coordinator"},
	{"Resignation & Exit", "Forward to HR manager"},
	{"Attendance & Timesheet", "Send attendance guidelines"},
	{"Recruitment Process", "Send interview schedule link"},
	{"Policy Clarification", "Send HR policy document"},
	{"Training & Development", "Send training program schedule"},
	{"Work From Home Requests", "Send remote work policy"},
	{"Relocation & Transfer", "Forward to HR transfer team"},
	{"Expense Reimbursement", "Send reimbursement form"},
	{"IT & Access Issues", "Forward to IT support"},
	{"Events & Celebrations", "Forward to events coordinator"},
	{escalation.HumanIntervention, AwaitAdminReview},
}

var actions = []string{
	"Auto-approve leave",
	"Send onboarding checklist",
	"Forward to HR manager",
	"Forward to payroll team",
	"Forward to benefits coordinator",
	"Send attendance guidelines",
	"Send interview schedule link",
	"Send HR policy document",
	"Send training program schedule",
	"Send remote work policy",
	"Forward to HR transfer team",
	"Send reimbursement form",
	"Forward to IT support",
	"Forward to events coordinator",
}

// Actions returns the closed set of actions selectable for
// human_intervention.
func Actions() []string {
	return slices.Clone(actions)
}

// Table is an in-memory copy of the reference rows.
type Table struct {
	rows []Row
}

// New returns a table initialized with the default rows.
func New() *Table {
	return &Table{rows: slices.Clone(defaultRows)}
}

// Rows returns a copy of the table rows.
func (t *Table) Rows() []Row {
	return slices.Clone(t.rows)
}

func (t *Table) Len() int { return len(t.rows) }

// ActionFor returns the action configured for category.
func (t *Table) ActionFor(category string) (string, bool) {
	for _, r := range t.rows {
		if r.Category == category {
			return r.Action, true
		}
	}
	return "", false
}

// SetAction changes the action of row index. An empty action clears the
// selection.
func (t *Table) SetAction(index int, action string) error {
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("row %d out of range", index)
	}
	if !t.rows[index].Editable() {
		return fmt.Errorf("%s: %w", t.rows[index].Category, ErrNotEditable)
	}
	if action != "" && !slices.Contains(actions, action) {
		return fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
	t.rows[index].Action = action
	return nil
}

// CycleAction moves the action of row index delta steps through the
// action set. The unselected state sits between the last and first
// actions.
func (t *Table) CycleAction(index int, delta int) (string, error) {
	if index < 0 || index >= len(t.rows) {
		return "", fmt.Errorf("row %d out of range", index)
	}
	if !t.rows[index].Editable() {
		return "", fmt.Errorf("%s: %w", t.rows[index].Category, ErrNotEditable)
	}
	// Position 0 is "unselected", 1..n are the actions.
	n := len(actions) + 1
	pos := slices.Index(actions, t.rows[index].Action) + 1
	pos = ((pos+delta)%n + n) % n
	next := ""
	if pos > 0 {
		next = actions[pos-1]
	}
	t.rows[index].Action = next
	return next, nil
}
