package escalation

import (
	"fmt"
	"strings"
	"time"
)

// ReceivedAtLayout is the timestamp format the backend uses for received_at.
const ReceivedAtLayout = "2006-01-02 15:04:05"

// Email is an escalated email as served by GET /api/escalations.
// All fields are read-only for the reviewer.
type Email struct {
	EmailID            int64  `json:"email_id" yaml:"email_id"`
	SenderEmail        string `json:"sender_email" yaml:"sender_email"`
	Subject            string `json:"subject" yaml:"subject"`
	Body               string `json:"body" yaml:"body"`
	ReceivedAt         string `json:"received_at" yaml:"received_at"`
	ClassifiedCategory string `json:"classified_category" yaml:"classified_category"`
}

// ReceivedTime parses ReceivedAt. ok is false when the backend sent a
// value in some other format; callers should fall back to the raw string.
func (e Email) ReceivedTime() (t time.Time, ok bool) {
	t, err := time.ParseInLocation(ReceivedAtLayout, strings.TrimSpace(e.ReceivedAt), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Update is the body of POST /api/update_email.
type Update struct {
	EmailID         int64  `json:"email_id"`
	UpdatedCategory string `json:"updated_category"`
	Response        string `json:"response"`
	Learn           bool   `json:"learn"`
}

// Field names one editable column of an escalation row.
type Field int

const (
	FieldCategory Field = iota
	FieldResponse
	FieldLearn
)

func (f Field) String() string {
	switch f {
	case FieldCategory:
		return "category"
	case FieldResponse:
		return "response"
	case FieldLearn:
		return "learn"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParseField maps a user-facing field name to a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "category", "updated_category":
		return FieldCategory, nil
	case "response":
		return FieldResponse, nil
	case "learn":
		return FieldLearn, nil
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

// ParseLearn accepts the Yes/No wording of the review form as well as
// the usual boolean spellings.
func ParseLearn(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid learn value %q (want yes or no)", s)
}

// YesNo renders a learn flag the way the review form shows it.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
