package escalation

import "slices"

// HumanIntervention is the catch-all category for emails that need a
// human to decide what happens next.
const HumanIntervention = "human_intervention"

// categories is the closed set accepted by the backend, in display order.
var categories = []string{
	"Leave Request",
	"Onboarding",
	"Job Offer",
	"Payroll Inquiry",
	"Benefits Inquiry",
	"Resignation & Exit",
	"Attendance & Timesheet",
	"Recruitment Process",
	"Policy Clarification",
	"Training & Development",
	"Work From Home Requests",
	"Relocation & Transfer",
	"Expense Reimbursement",
	"IT & Access Issues",
	"Events & Celebrations",
	HumanIntervention,
}

// Categories returns the closed category set in display order.
func Categories() []string {
	return slices.Clone(categories)
}

// ValidCategory reports whether s is one of the closed categories.
// Matching is exact; the backend does not normalize case.
func ValidCategory(s string) bool {
	return slices.Contains(categories, s)
}

// CategoryIndex returns the position of s in Categories, or -1.
func CategoryIndex(s string) int {
	return slices.Index(categories, s)
}

// CycleCategory returns the category delta steps away from current,
// wrapping at both ends. An unknown current value starts from the first
// category.
func CycleCategory(current string, delta int) string {
	n := len(categories)
	idx := CategoryIndex(current)
	if idx < 0 {
		if delta >= 0 {
			return categories[0]
		}
		return categories[n-1]
	}
	idx = ((idx+delta)%n + n) % n
	return categories[idx]
}
