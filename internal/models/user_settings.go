package models

import "time"

// UserSettings holds the per-user reminder and engagement policy. Quiet
// hours are stored as "HH:MM" wall-clock strings in the user's home
// calendar and may wrap midnight (start > end).
type UserSettings struct {
	UserID               int64      `json:"user_id"`
	QuietStart           string     `json:"quiet_start"` // HH:MM
	QuietEnd             string     `json:"quiet_end"`   // HH:MM
	AutoReleaseDays      int        `json:"auto_release_days"`
	GentleReminders      bool       `json:"gentle_reminders"`
	RemindersEnabled     bool       `json:"reminders_enabled"`
	DailySummaryEnabled  bool       `json:"daily_summary_enabled"`
	DailySummaryTime     string     `json:"daily_summary_time"` // HH:MM
	LastDailySummaryDay  *string    `json:"last_daily_summary_day"`
	LastTodoMessageID    *int       `json:"last_todo_message_id"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewDefaultUserSettings creates settings with the defaults applied to a
// fresh user row.
func NewDefaultUserSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:              userID,
		QuietStart:          "22:00",
		QuietEnd:            "08:00",
		AutoReleaseDays:     14,
		GentleReminders:     false,
		RemindersEnabled:    true,
		DailySummaryEnabled: true,
		DailySummaryTime:    "08:00",
		UpdatedAt:           time.Now(),
	}
}

// ClockMinutes parses an "HH:MM" string into minutes since midnight.
// Malformed input maps to 0, matching a midnight boundary.
func ClockMinutes(s string) int {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}

// ValidClock reports whether s is a well-formed "HH:MM" time of day.
func ValidClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
