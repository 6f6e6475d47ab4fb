package handlers

import (
	"strings"
	"testing"

	"github.com/daviskuo/daypulse/internal/models"
)

func TestApplyQuiet(t *testing.T) {
	s := models.NewDefaultUserSettings(1)

	if !applyQuiet(s, []string{"23:00", "07:30"}) {
		t.Fatal("applyQuiet rejected valid input")
	}
	if s.QuietStart != "23:00" || s.QuietEnd != "07:30" {
		t.Errorf("quiet hours = %s-%s, want 23:00-07:30", s.QuietStart, s.QuietEnd)
	}

	for _, args := range [][]string{
		{"23:00"},
		{"23:00", "late"},
		{"25:00", "07:30"},
		{},
	} {
		if applyQuiet(s, args) {
			t.Errorf("applyQuiet(%v) accepted, want rejection", args)
		}
	}
}

func TestApplyToggle(t *testing.T) {
	s := models.NewDefaultUserSettings(1)

	if !applyToggle(&s.GentleReminders, []string{"on"}) || !s.GentleReminders {
		t.Error("toggle on failed")
	}
	if !applyToggle(&s.GentleReminders, []string{"off"}) || s.GentleReminders {
		t.Error("toggle off failed")
	}
	if applyToggle(&s.GentleReminders, []string{"maybe"}) {
		t.Error("accepted a non on/off value")
	}
}

func TestApplySummary(t *testing.T) {
	s := models.NewDefaultUserSettings(1)

	if !applySummary(s, []string{"off"}) || s.DailySummaryEnabled {
		t.Error("summary off failed")
	}
	if !applySummary(s, []string{"07:45"}) {
		t.Fatal("summary time rejected")
	}
	if !s.DailySummaryEnabled || s.DailySummaryTime != "07:45" {
		t.Errorf("setting a time should enable the summary at that time, got %v %s", s.DailySummaryEnabled, s.DailySummaryTime)
	}
}

func TestApplyRelease(t *testing.T) {
	s := models.NewDefaultUserSettings(1)

	if !applyRelease(s, []string{"30"}) || s.AutoReleaseDays != 30 {
		t.Errorf("release days = %d, want 30", s.AutoReleaseDays)
	}
	if !applyRelease(s, []string{"off"}) || s.AutoReleaseDays != 0 {
		t.Errorf("release off should zero the window, got %d", s.AutoReleaseDays)
	}
	for _, args := range [][]string{{"0"}, {"-3"}, {"400"}, {"soon"}, {}} {
		if applyRelease(s, args) {
			t.Errorf("applyRelease(%v) accepted, want rejection", args)
		}
	}
}

func TestDescribeSettingsMentionsEverySetting(t *testing.T) {
	s := models.NewDefaultUserSettings(1)
	text := describeSettings(s)

	for _, want := range []string{"22:00", "08:00", "Quiet hours", "Daily summary", "Auto-release", "after 14 days"} {
		if !strings.Contains(text, want) {
			t.Errorf("describeSettings missing %q", want)
		}
	}
}
