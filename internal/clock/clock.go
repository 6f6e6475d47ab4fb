// Package clock projects instants onto the user's home civil calendar.
//
// The service may run on a host in any timezone, but "today", "this morning"
// and streak boundaries must always be computed in the user's home zone. The
// zone is modelled as a fixed UTC offset so the projection is plain
// arithmetic and independent of the host's tzdata.
package clock

import (
	"fmt"
	"time"
)

// Calendar converts instants to civil dates at a fixed UTC offset.
type Calendar struct {
	loc *time.Location
}

// New returns a Calendar at the given offset east of UTC, in minutes.
func New(offsetMinutes int) Calendar {
	name := fmt.Sprintf("UTC%+03d:%02d", offsetMinutes/60, abs(offsetMinutes%60))
	return Calendar{loc: time.FixedZone(name, offsetMinutes*60)}
}

// ParseOffset parses a "+HH:MM" / "-HH:MM" offset string into minutes.
func ParseOffset(s string) (int, error) {
	var sign rune
	var h, m int
	if _, err := fmt.Sscanf(s, "%c%02d:%02d", &sign, &h, &m); err != nil {
		return 0, fmt.Errorf("clock: invalid offset %q: %w", s, err)
	}
	if sign != '+' && sign != '-' {
		return 0, fmt.Errorf("clock: invalid offset %q: sign must be + or -", s)
	}
	if h > 14 || m > 59 {
		return 0, fmt.Errorf("clock: invalid offset %q: out of range", s)
	}
	minutes := h*60 + m
	if sign == '-' {
		minutes = -minutes
	}
	return minutes, nil
}

// DateKey returns the canonical YYYY-MM-DD key of t's civil day. Two
// instants map to the same key iff they fall on the same civil day.
func (c Calendar) DateKey(t time.Time) string {
	return t.In(c.loc).Format("2006-01-02")
}

// IsToday reports whether t and ref fall on the same civil day.
func (c Calendar) IsToday(t, ref time.Time) bool {
	return c.DateKey(t) == c.DateKey(ref)
}

// StartOfDay returns the instant at 00:00:00 of t's civil day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// Weekday returns t's civil day of week, 0 = Sunday through 6 = Saturday.
func (c Calendar) Weekday(t time.Time) int {
	return int(t.In(c.loc).Weekday())
}

// Hour returns t's civil hour of day, 0..23.
func (c Calendar) Hour(t time.Time) int {
	return t.In(c.loc).Hour()
}

// Location exposes the home-calendar location for parsing user-entered
// wall-clock times.
func (c Calendar) Location() *time.Location {
	return c.loc
}

// ClockTime renders t's civil wall-clock time as "HH:MM".
func (c Calendar) ClockTime(t time.Time) string {
	return t.In(c.loc).Format("15:04")
}

// MinuteOfDay returns t's civil minutes since midnight, 0..1439.
func (c Calendar) MinuteOfDay(t time.Time) int {
	local := t.In(c.loc)
	return local.Hour()*60 + local.Minute()
}

// DayDiff returns the signed civil-day distance from b's day to a's day:
// positive when a falls on a later civil day than b.
func (c Calendar) DayDiff(a, b time.Time) int {
	return daysSinceEpoch(c.StartOfDay(a)) - daysSinceEpoch(c.StartOfDay(b))
}

// DayDiffKey is DayDiff for an already-projected YYYY-MM-DD key, used where
// only the stored day key of an earlier instant survives.
func (c Calendar) DayDiffKey(a time.Time, key string) (int, error) {
	day, err := time.ParseInLocation("2006-01-02", key, c.loc)
	if err != nil {
		return 0, fmt.Errorf("clock: invalid date key %q: %w", key, err)
	}
	return daysSinceEpoch(c.StartOfDay(a)) - daysSinceEpoch(day), nil
}

func daysSinceEpoch(startOfDay time.Time) int {
	// startOfDay is midnight in c.loc; dividing the wall-clock-adjusted unix
	// time by a day length counts whole civil days regardless of offset.
	return int((startOfDay.Unix() + int64(offsetSeconds(startOfDay))) / 86400)
}

func offsetSeconds(t time.Time) int {
	_, off := t.Zone()
	return off
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
