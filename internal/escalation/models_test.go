package escalation

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEmailJSONFieldNames(t *testing.T) {
	raw := `{"email_id":7,"sender_email":"a@example.com","subject":"Payslip",` +
		`"body":"Where is my payslip?","received_at":"2025-03-01 09:15:00",` +
		`"classified_category":"Payroll Inquiry"}`

	var e Email
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.EmailID != 7 || e.SenderEmail != "a@example.com" || e.ClassifiedCategory != "Payroll Inquiry" {
		t.Errorf("unexpected decode: %+v", e)
	}
}

func TestUpdateJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Update{EmailID: 7, UpdatedCategory: HumanIntervention, Response: "Escalating to manager", Learn: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"email_id":7,"updated_category":"human_intervention","response":"Escalating to manager","learn":true}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestReceivedTime(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wantOK bool
	}{
		{"backend format", "2025-03-01 09:15:00", true},
		{"surrounding space", " 2025-03-01 09:15:00 ", true},
		{"rfc1123", "Sat, 01 Mar 2025 09:15:00 GMT", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Email{ReceivedAt: tt.in}.ReceivedTime()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (got.Year() != 2025 || got.Month() != time.March || got.Minute() != 15) {
				t.Errorf("unexpected time %v", got)
			}
		})
	}
}

func TestParseLearn(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"Yes", true, false},
		{"y", true, false},
		{"true", true, false},
		{"1", true, false},
		{"No", false, false},
		{" n ", false, false},
		{"false", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		got, err := ParseLearn(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLearn(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLearn(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]Field{
		"category":         FieldCategory,
		"updated_category": FieldCategory,
		"Response":         FieldResponse,
		"learn":            FieldLearn,
	} {
		got, err := ParseField(in)
		if err != nil || got != want {
			t.Errorf("ParseField(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseField("subject"); err == nil {
		t.Error("expected error for read-only field")
	}
}

func TestCategoriesClosedSet(t *testing.T) {
	cats := Categories()
	if len(cats) != 16 {
		t.Fatalf("expected 16 categories, got %d", len(cats))
	}
	if cats[len(cats)-1] != HumanIntervention {
		t.Errorf("expected %s last, got %s", HumanIntervention, cats[len(cats)-1])
	}

	// Mutating the returned slice must not leak into the closed set.
	cats[0] = "Free text"
	if ValidCategory("Free text") {
		t.Error("Categories returned the backing slice")
	}

	for _, c := range []string{"Leave Request", "IT & Access Issues", HumanIntervention} {
		if !ValidCategory(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
	for _, c := range []string{"", "leave request", "Salary or Payroll Inquiry"} {
		if ValidCategory(c) {
			t.Errorf("expected %q to be rejected", c)
		}
	}
}

func TestCycleCategory(t *testing.T) {
	tests := []struct {
		name    string
		current string
		delta   int
		want    string
	}{
		{"forward", "Leave Request", 1, "Onboarding"},
		{"backward", "Onboarding", -1, "Leave Request"},
		{"wrap forward", HumanIntervention, 1, "Leave Request"},
		{"wrap backward", "Leave Request", -1, HumanIntervention},
		{"unknown forward", "bogus", 1, "Leave Request"},
		{"unknown backward", "bogus", -1, HumanIntervention},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CycleCategory(tt.current, tt.delta); got != tt.want {
				t.Errorf("CycleCategory(%q, %d) = %q, want %q", tt.current, tt.delta, got, tt.want)
			}
		})
	}
}
