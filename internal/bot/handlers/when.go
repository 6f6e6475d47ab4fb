package handlers

import (
	"errors"
	"time"

	"github.com/daviskuo/daypulse/internal/clock"
)

var errBadWhen = errors.New("unrecognized time")

// parseWhen reads a user-entered time from the front of fields and returns
// the instant plus how many tokens it consumed. Accepted forms, all in the
// home calendar:
//
//	HH:MM               today, or tomorrow if already past
//	today [HH:MM]       defaults to 18:00
//	tomorrow [HH:MM]    defaults to 09:00
//	YYYY-MM-DD [HH:MM]  defaults to 09:00
func parseWhen(cal clock.Calendar, now time.Time, fields []string) (time.Time, int, error) {
	if len(fields) == 0 {
		return time.Time{}, 0, errBadWhen
	}
	loc := cal.Location()
	dayStart := cal.StartOfDay(now)

	switch fields[0] {
	case "today":
		at, consumed := optionalClock(fields[1:], 18*time.Hour)
		return dayStart.Add(at), 1 + consumed, nil
	case "tomorrow":
		at, consumed := optionalClock(fields[1:], 9*time.Hour)
		return dayStart.Add(24*time.Hour + at), 1 + consumed, nil
	}

	if t, err := time.ParseInLocation("15:04", fields[0], loc); err == nil {
		when := dayStart.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
		if !when.After(now) {
			when = when.Add(24 * time.Hour)
		}
		return when, 1, nil
	}

	if day, err := time.ParseInLocation("2006-01-02", fields[0], loc); err == nil {
		at, consumed := optionalClock(fields[1:], 9*time.Hour)
		return day.Add(at), 1 + consumed, nil
	}

	return time.Time{}, 0, errBadWhen
}

// optionalClock reads an HH:MM token if one is next, otherwise falls back to
// the given offset from midnight.
func optionalClock(fields []string, fallback time.Duration) (time.Duration, int) {
	if len(fields) > 0 {
		if t, err := time.Parse("15:04", fields[0]); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, 1
		}
	}
	return fallback, 0
}
