package models

import "time"

type Event struct {
	EventID             int        `json:"event_id"`
	UserID              int64      `json:"user_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Dtstart             *time.Time `json:"dtstart"`              // First occurrence, anchor for RRULE expansion
	Duration            int        `json:"duration"`             // Minutes
	NextOccurrence      *time.Time `json:"next_occurrence"`      // Next scheduled occurrence
	NotificationMinutes int        `json:"notification_minutes"` // Minutes before start to notify
	NotifiedAt          *time.Time `json:"notified_at"`          // Cleared when next_occurrence advances
	RecurrenceRule      string     `json:"recurrence_rule"`      // RFC 5545 RRULE
	Tags                string     `json:"tags"`
	CreatedAt           time.Time  `json:"created_at"`
}

// IsRecurring returns true if this event has a recurrence rule.
func (e *Event) IsRecurring() bool {
	return e.RecurrenceRule != ""
}

// EndTime returns the end of the occurrence anchored at dtstart, or nil when
// the event has no start or no duration.
func (e *Event) EndTime() *time.Time {
	if e.Dtstart == nil || e.Duration == 0 {
		return nil
	}
	end := e.Dtstart.Add(time.Duration(e.Duration) * time.Minute)
	return &end
}
