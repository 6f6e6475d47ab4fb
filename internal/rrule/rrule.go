// Package rrule wraps teambition/rrule-go with the small surface the
// scheduler and handlers need: occurrence math over RFC 5545 RRULE strings
// and a short human description.
package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Parse parses an RFC 5545 RRULE string anchored at dtstart. A leading
// "RRULE:" prefix is tolerated.
func Parse(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	opt.Dtstart = dtstart
	return rrule.NewRRule(*opt)
}

// IsRecurring reports whether the string looks like a usable RRULE.
func IsRecurring(ruleStr string) bool {
	return ruleStr != "" && strings.Contains(strings.ToUpper(ruleStr), "FREQ=")
}

// NextAfter returns the first occurrence strictly after the given instant,
// or nil when the rule is exhausted.
func NextAfter(ruleStr string, dtstart, after time.Time) (*time.Time, error) {
	rule, err := Parse(ruleStr, dtstart)
	if err != nil {
		return nil, err
	}
	next := rule.After(after, false)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}

// Upcoming returns up to count occurrences after the given instant.
func Upcoming(ruleStr string, dtstart, after time.Time, count int) ([]time.Time, error) {
	rule, err := Parse(ruleStr, dtstart)
	if err != nil {
		return nil, err
	}

	var out []time.Time
	it := rule.Iterator()
	for {
		next, ok := it()
		if !ok {
			break
		}
		if !next.After(after) {
			continue
		}
		out = append(out, next)
		if len(out) >= count {
			break
		}
	}
	return out, nil
}

// Describe renders a short English description of the rule for list views,
// falling back to the raw string when it cannot be parsed.
func Describe(ruleStr string) string {
	raw := strings.TrimPrefix(ruleStr, "RRULE:")
	if raw == "" {
		return "one-off"
	}

	info := map[string]string{}
	for _, part := range strings.Split(raw, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 {
			info[strings.ToUpper(kv[0])] = kv[1]
		}
	}

	freqWords := map[string]string{
		"HOURLY":  "hour",
		"DAILY":   "day",
		"WEEKLY":  "week",
		"MONTHLY": "month",
		"YEARLY":  "year",
	}
	unit, ok := freqWords[info["FREQ"]]
	if !ok {
		return raw
	}

	var b strings.Builder
	if iv := info["INTERVAL"]; iv != "" && iv != "1" {
		fmt.Fprintf(&b, "every %s %ss", iv, unit)
	} else {
		fmt.Fprintf(&b, "every %s", unit)
	}

	if byDay := info["BYDAY"]; byDay != "" {
		dayWords := map[string]string{
			"MO": "Mon", "TU": "Tue", "WE": "Wed", "TH": "Thu",
			"FR": "Fri", "SA": "Sat", "SU": "Sun",
		}
		var days []string
		for _, d := range strings.Split(byDay, ",") {
			if w, ok := dayWords[d]; ok {
				days = append(days, w)
			}
		}
		if len(days) > 0 {
			fmt.Fprintf(&b, " on %s", strings.Join(days, ", "))
		}
	}

	if count := info["COUNT"]; count != "" {
		fmt.Fprintf(&b, ", %s times", count)
	}
	if until := info["UNTIL"]; until != "" {
		if t, err := time.Parse("20060102T150405Z", until); err == nil {
			fmt.Fprintf(&b, ", until %s", t.Format("2006-01-02"))
		}
	}

	return b.String()
}
