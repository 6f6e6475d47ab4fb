package scheduler

import (
	"testing"
	"time"

	"github.com/daviskuo/daypulse/internal/clock"
	"github.com/daviskuo/daypulse/internal/engine"
	"github.com/daviskuo/daypulse/internal/models"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFilterNotifiableSkipsAlreadyNotifiedToday(t *testing.T) {
	cal := clock.New(0)
	now := ts("2026-02-07T15:00:00Z")
	earlierToday := ts("2026-02-07T09:00:00Z")
	yesterday := ts("2026-02-06T21:00:00Z")

	events := []engine.Event{
		{Todo: &models.Todo{TodoID: 1, LastNotifiedAt: &earlierToday}},
		{Todo: &models.Todo{TodoID: 2, LastNotifiedAt: &yesterday}},
		{Todo: &models.Todo{TodoID: 3}},
	}

	fresh := FilterNotifiable(cal, events, now)
	if len(fresh) != 2 {
		t.Fatalf("got %d events, want 2", len(fresh))
	}
	if fresh[0].Todo.TodoID != 2 || fresh[1].Todo.TodoID != 3 {
		t.Errorf("kept todos %d, %d; want 2, 3", fresh[0].Todo.TodoID, fresh[1].Todo.TodoID)
	}
}

func TestFilterNotifiableUsesCivilDayNotHostDay(t *testing.T) {
	// At UTC+8, 2026-02-06T22:00Z is already Feb 7 locally, the same civil
	// day as the reference instant.
	cal := clock.New(8 * 60)
	now := ts("2026-02-07T01:00:00Z")
	lastNight := ts("2026-02-06T22:00:00Z")

	events := []engine.Event{
		{Todo: &models.Todo{TodoID: 1, LastNotifiedAt: &lastNight}},
	}

	if fresh := FilterNotifiable(cal, events, now); len(fresh) != 0 {
		t.Errorf("got %d events, want 0: 22:00Z is the same UTC+8 civil day", len(fresh))
	}
}

func TestShouldSendDailySummary(t *testing.T) {
	cal := clock.New(0)
	yesterday := "2026-02-06"
	today := "2026-02-07"

	tests := []struct {
		name     string
		settings models.UserSettings
		now      time.Time
		want     bool
	}{
		{
			name:     "due after send time, never sent",
			settings: models.UserSettings{DailySummaryEnabled: true, DailySummaryTime: "08:00"},
			now:      ts("2026-02-07T08:30:00Z"),
			want:     true,
		},
		{
			name:     "before send time",
			settings: models.UserSettings{DailySummaryEnabled: true, DailySummaryTime: "08:00"},
			now:      ts("2026-02-07T07:59:00Z"),
			want:     false,
		},
		{
			name:     "already sent today",
			settings: models.UserSettings{DailySummaryEnabled: true, DailySummaryTime: "08:00", LastDailySummaryDay: &today},
			now:      ts("2026-02-07T09:00:00Z"),
			want:     false,
		},
		{
			name:     "sent yesterday, due again",
			settings: models.UserSettings{DailySummaryEnabled: true, DailySummaryTime: "08:00", LastDailySummaryDay: &yesterday},
			now:      ts("2026-02-07T08:00:00Z"),
			want:     true,
		},
		{
			name:     "disabled",
			settings: models.UserSettings{DailySummaryEnabled: false, DailySummaryTime: "08:00"},
			now:      ts("2026-02-07T09:00:00Z"),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSendDailySummary(cal, &tt.settings, tt.now); got != tt.want {
				t.Errorf("ShouldSendDailySummary() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildReminderTextSingleVersusMany(t *testing.T) {
	one := []engine.Event{
		{Todo: &models.Todo{TodoID: 1}, Message: "**Pay rent** is due today."},
	}
	if got := buildReminderText(one); got != "📋 **Reminder**\n\n**Pay rent** is due today." {
		t.Errorf("single-event text = %q", got)
	}

	many := append(one, engine.Event{Todo: &models.Todo{TodoID: 2}, Message: "**Call mom** is overdue."})
	got := buildReminderText(many)
	want := "📋 **Reminders** (2)\n\n1. **Pay rent** is due today.\n2. **Call mom** is overdue.\n"
	if got != want {
		t.Errorf("multi-event text = %q, want %q", got, want)
	}
}

func TestReminderKeyboardRowsAndCallbacks(t *testing.T) {
	events := []engine.Event{
		{
			Todo: &models.Todo{TodoID: 7},
			Actions: []engine.Action{
				{Label: "Do today", Tag: engine.ActionRescheduleToday},
				{Label: "Do tomorrow", Tag: engine.ActionRescheduleTomorrow},
				{Label: "Open", Tag: engine.ActionOpen},
			},
		},
	}

	markup := reminderKeyboard(events)
	if len(markup.InlineKeyboard) != 1 {
		t.Fatalf("got %d rows, want 1", len(markup.InlineKeyboard))
	}
	row := markup.InlineKeyboard[0]
	if len(row) != 3 {
		t.Fatalf("got %d buttons, want 3", len(row))
	}
	wantData := []string{"todo:reschedule_today:7", "todo:reschedule_tomorrow:7", "todo:open:7"}
	for i, btn := range row {
		if btn.CallbackData == nil || *btn.CallbackData != wantData[i] {
			t.Errorf("button %d callback = %v, want %q", i, btn.CallbackData, wantData[i])
		}
	}
	if row[0].Text != "Do today" {
		t.Errorf("single-todo button label = %q, want unprefixed label", row[0].Text)
	}
}
