package models

import "time"

// Reminder is a standalone timed reminder, independent of any todo. It
// carries an optional RRULE for recurring schedules.
type Reminder struct {
	ReminderID     int        `json:"reminder_id"`
	UserID         int64      `json:"user_id"`
	Enabled        bool       `json:"enabled"`
	Message        string     `json:"message"`
	Description    string     `json:"description"`
	RecurrenceRule string     `json:"recurrence_rule"` // RFC 5545 RRULE
	Dtstart        *time.Time `json:"dtstart"`
	RemindAt       *time.Time `json:"remind_at"` // Next scheduled fire time
	NotifiedAt     *time.Time `json:"notified_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	LastMessageID  *int       `json:"last_message_id"` // Last sent message, deleted before resend
	Tags           string     `json:"tags"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsRecurring returns true if this reminder has a recurrence rule.
func (r *Reminder) IsRecurring() bool {
	return r.RecurrenceRule != ""
}
