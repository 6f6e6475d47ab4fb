package rrule

import (
	"testing"
	"time"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestNextAfterDaily(t *testing.T) {
	dtstart := ts(t, "2026-02-01T09:00:00Z")
	after := ts(t, "2026-02-07T10:00:00Z")

	next, err := NextAfter("FREQ=DAILY", dtstart, after)
	if err != nil {
		t.Fatal(err)
	}
	if next == nil {
		t.Fatal("next = nil, want an occurrence")
	}
	want := ts(t, "2026-02-08T09:00:00Z")
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextAfterToleratesPrefix(t *testing.T) {
	dtstart := ts(t, "2026-02-01T09:00:00Z")
	after := ts(t, "2026-02-01T09:00:00Z")

	next, err := NextAfter("RRULE:FREQ=WEEKLY", dtstart, after)
	if err != nil {
		t.Fatal(err)
	}
	want := ts(t, "2026-02-08T09:00:00Z")
	if next == nil || !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextAfterExhaustedRule(t *testing.T) {
	dtstart := ts(t, "2026-02-01T09:00:00Z")
	after := ts(t, "2026-03-01T00:00:00Z")

	next, err := NextAfter("FREQ=DAILY;COUNT=3", dtstart, after)
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Errorf("next = %v, want nil for an exhausted rule", next)
	}
}

func TestUpcomingCapsCount(t *testing.T) {
	dtstart := ts(t, "2026-02-01T09:00:00Z")
	after := ts(t, "2026-02-03T00:00:00Z")

	out, err := Upcoming("FREQ=DAILY", dtstart, after, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(out))
	}
	if !out[0].Equal(ts(t, "2026-02-03T09:00:00Z")) {
		t.Errorf("first occurrence = %v", out[0])
	}
}

func TestIsRecurring(t *testing.T) {
	tests := []struct {
		rule string
		want bool
	}{
		{"FREQ=DAILY", true},
		{"RRULE:FREQ=WEEKLY;BYDAY=MO", true},
		{"", false},
		{"not a rule", false},
	}
	for _, tt := range tests {
		if got := IsRecurring(tt.rule); got != tt.want {
			t.Errorf("IsRecurring(%q) = %v, want %v", tt.rule, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		rule string
		want string
	}{
		{"", "one-off"},
		{"FREQ=DAILY", "every day"},
		{"FREQ=DAILY;INTERVAL=2", "every 2 days"},
		{"FREQ=WEEKLY;BYDAY=MO,WE,FR", "every week on Mon, Wed, Fri"},
		{"FREQ=MONTHLY;COUNT=6", "every month, 6 times"},
		{"RRULE:FREQ=WEEKLY", "every week"},
	}
	for _, tt := range tests {
		if got := Describe(tt.rule); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.rule, got, tt.want)
		}
	}
}
