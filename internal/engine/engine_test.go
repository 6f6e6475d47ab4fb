package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/daviskuo/daypulse/internal/clock"
	"github.com/daviskuo/daypulse/internal/models"
)

func testEngine() Engine {
	return New(clock.New(0))
}

func testSettings() *models.UserSettings {
	s := models.NewDefaultUserSettings(1)
	s.QuietStart = "22:00"
	s.QuietEnd = "07:00"
	return s
}

func openTodo(id int, due time.Time) *models.Todo {
	return &models.Todo{TodoID: id, UserID: 1, Title: "write report", DueTime: &due}
}

func TestEvaluateRuleTable(t *testing.T) {
	e := testEngine()
	s := testSettings()

	day := func(y int, m time.Month, d, hh, mm int) time.Time {
		return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	}

	cases := []struct {
		name string
		due  time.Time
		now  time.Time
		want Kind
		none bool
	}{
		{
			name: "due tomorrow, evening reference",
			due:  day(2026, 2, 9, 10, 0),
			now:  day(2026, 2, 8, 18, 30),
			want: KindDueTomorrowEvening,
		},
		{
			name: "due tomorrow, before evening",
			due:  day(2026, 2, 9, 10, 0),
			now:  day(2026, 2, 8, 17, 59),
			none: true,
		},
		{
			name: "due today, morning reference",
			due:  day(2026, 2, 8, 20, 0),
			now:  day(2026, 2, 8, 8, 0),
			want: KindDueTodayMorning,
		},
		{
			name: "due today, afternoon, more than 3h out",
			due:  day(2026, 2, 8, 23, 30),
			now:  day(2026, 2, 8, 14, 0),
			none: true,
		},
		{
			name: "due in exactly 3 hours",
			due:  day(2026, 2, 8, 17, 0),
			now:  day(2026, 2, 8, 14, 0),
			want: KindDueWithin3Hours,
		},
		{
			name: "due in 3 hours and 1 second",
			due:  day(2026, 2, 8, 17, 0).Add(time.Second),
			now:  day(2026, 2, 8, 14, 0),
			none: true,
		},
		{
			name: "overdue one day",
			due:  day(2026, 2, 7, 23, 0),
			now:  day(2026, 2, 8, 14, 0),
			want: KindOverdue1Day,
		},
		{
			name: "overdue three days",
			due:  day(2026, 2, 5, 23, 59).Add(59 * time.Second),
			now:  day(2026, 2, 8, 9, 0),
			want: KindOverdue3Days,
		},
		{
			name: "overdue two days matches nothing",
			due:  day(2026, 2, 6, 12, 0),
			now:  day(2026, 2, 8, 14, 0),
			none: true,
		},
		{
			name: "overdue seven days",
			due:  day(2026, 2, 1, 12, 0),
			now:  day(2026, 2, 8, 14, 0),
			want: KindOverdue7Days,
		},
		{
			name: "overdue fourteen days",
			due:  day(2026, 1, 25, 12, 0),
			now:  day(2026, 2, 8, 14, 0),
			want: KindOverdue14DaysPlus,
		},
		{
			name: "overdue far beyond fourteen days",
			due:  day(2025, 11, 2, 12, 0),
			now:  day(2026, 2, 8, 14, 0),
			want: KindOverdue14DaysPlus,
		},
		{
			name: "due in two days",
			due:  day(2026, 2, 10, 9, 0),
			now:  day(2026, 2, 8, 14, 0),
			none: true,
		},
	}

	for _, tc := range cases {
		ev := e.Evaluate(openTodo(1, tc.due), s, tc.now)
		if tc.none {
			if ev != nil {
				t.Errorf("%s: expected no reminder, got %s", tc.name, ev.Kind)
			}
			continue
		}
		if ev == nil {
			t.Errorf("%s: expected %s, got none", tc.name, tc.want)
			continue
		}
		if ev.Kind != tc.want {
			t.Errorf("%s: kind = %s, want %s", tc.name, ev.Kind, tc.want)
		}
	}
}

// A todo due later this morning matches both the morning rule and the
// three-hour rule; the morning rule must win.
func TestEvaluateMorningBeatsThreeHourWindow(t *testing.T) {
	e := testEngine()
	due := time.Date(2026, 2, 8, 11, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 8, 9, 30, 0, 0, time.UTC)

	ev := e.Evaluate(openTodo(1, due), testSettings(), now)
	if ev == nil {
		t.Fatal("expected a reminder")
	}
	if ev.Kind != KindDueTodayMorning {
		t.Fatalf("kind = %s, want %s", ev.Kind, KindDueTodayMorning)
	}
}

func TestEvaluateSkipsClosedAndUndated(t *testing.T) {
	e := testEngine()
	s := testSettings()
	now := time.Date(2026, 2, 8, 14, 0, 0, 0, time.UTC)
	due := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	completed := openTodo(1, due)
	completed.CompletedAt = &past
	released := openTodo(2, due)
	released.ReleasedAt = &past
	undated := &models.Todo{TodoID: 3, UserID: 1, Title: "someday"}

	for _, todo := range []*models.Todo{completed, released, undated, nil} {
		if ev := e.Evaluate(todo, s, now); ev != nil {
			t.Errorf("expected nil event, got %s", ev.Kind)
		}
	}
}

func TestGenerateQuietHours(t *testing.T) {
	e := testEngine()
	s := testSettings() // 22:00 - 07:00, wraps midnight
	todos := []*models.Todo{
		openTodo(1, time.Date(2026, 2, 8, 23, 50, 0, 0, time.UTC)),
	}

	quiet := []time.Time{
		time.Date(2026, 2, 8, 23, 30, 0, 0, time.UTC),
		time.Date(2026, 2, 8, 3, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 8, 22, 0, 0, 0, time.UTC), // boundary: start is quiet
	}
	for _, now := range quiet {
		if got := e.Generate(todos, s, now); len(got) != 0 {
			t.Errorf("at %v: expected empty output during quiet hours, got %d events", now, len(got))
		}
	}

	// 07:00 is the exclusive end of the window.
	now := time.Date(2026, 2, 8, 7, 0, 0, 0, time.UTC)
	if e.InQuietHours(s, now) {
		t.Error("07:00 should not be quiet when window ends at 07:00")
	}
}

func TestInQuietHoursSameDayWindow(t *testing.T) {
	e := testEngine()
	s := testSettings()
	s.QuietStart = "13:00"
	s.QuietEnd = "15:00"

	cases := []struct {
		hh, mm int
		want   bool
	}{
		{12, 59, false},
		{13, 0, true},
		{14, 30, true},
		{15, 0, false},
	}
	for _, tc := range cases {
		now := time.Date(2026, 2, 8, tc.hh, tc.mm, 0, 0, time.UTC)
		if got := e.InQuietHours(s, now); got != tc.want {
			t.Errorf("%02d:%02d: InQuietHours = %v, want %v", tc.hh, tc.mm, got, tc.want)
		}
	}
}

func TestGenerateKeepsInputOrderAndIsIdempotent(t *testing.T) {
	e := testEngine()
	s := testSettings()
	now := time.Date(2026, 2, 8, 14, 0, 0, 0, time.UTC)

	todos := []*models.Todo{
		openTodo(10, now.Add(2*time.Hour)),            // within 3h
		openTodo(11, now.AddDate(0, 0, 2)),            // nothing
		openTodo(12, now.AddDate(0, 0, -1)),           // overdue 1d
		openTodo(13, now.AddDate(0, 0, -7)),           // overdue 7d
		{TodoID: 14, UserID: 1, Title: "undated"},     // nothing
		openTodo(15, now.Add(90*time.Minute)),         // within 3h
	}

	first := e.Generate(todos, s, now)
	second := e.Generate(todos, s, now)

	wantIDs := []int{10, 12, 13, 15}
	if len(first) != len(wantIDs) {
		t.Fatalf("got %d events, want %d", len(first), len(wantIDs))
	}
	for i, ev := range first {
		if ev.Todo.TodoID != wantIDs[i] {
			t.Errorf("event %d: todo %d, want %d", i, ev.Todo.TodoID, wantIDs[i])
		}
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Generate is not idempotent for identical inputs")
	}
}

func TestEventCarriesFixedActions(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 2, 8, 14, 0, 0, 0, time.UTC)

	ev := e.Evaluate(openTodo(1, now.Add(time.Hour)), testSettings(), now)
	if ev == nil {
		t.Fatal("expected a reminder")
	}
	tags := []ActionTag{ActionRescheduleToday, ActionRescheduleTomorrow, ActionOpen}
	if len(ev.Actions) != len(tags) {
		t.Fatalf("got %d actions, want %d", len(ev.Actions), len(tags))
	}
	for i, a := range ev.Actions {
		if a.Tag != tags[i] {
			t.Errorf("action %d: tag %s, want %s", i, a.Tag, tags[i])
		}
		if a.Label == "" {
			t.Errorf("action %d: empty label", i)
		}
	}
}

func TestMessageToneFollowsGentleFlag(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 2, 8, 14, 0, 0, 0, time.UTC)
	todo := openTodo(1, now.AddDate(0, 0, -3))

	plain := testSettings()
	gentle := testSettings()
	gentle.GentleReminders = true

	a := e.Evaluate(todo, plain, now)
	b := e.Evaluate(todo, gentle, now)
	if a == nil || b == nil {
		t.Fatal("expected reminders")
	}
	if a.Kind != b.Kind {
		t.Fatalf("gentle flag changed the kind: %s vs %s", a.Kind, b.Kind)
	}
	if a.Message == b.Message {
		t.Error("gentle flag should change message tone")
	}
}
