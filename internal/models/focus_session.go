package models

import "time"

// FocusSession is one focus-timer run. A session ends either when the user
// stops it or when the scheduler notices the planned window has elapsed.
type FocusSession struct {
	SessionID      int        `json:"session_id"`
	UserID         int64      `json:"user_id"`
	TodoID         *int       `json:"todo_id"` // Optional task the session is attached to
	Label          string     `json:"label"`
	PlannedMinutes int        `json:"planned_minutes"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsRunning reports whether the session has not been closed yet.
func (s *FocusSession) IsRunning() bool {
	return s.EndedAt == nil
}

// PlannedEnd returns the instant the planned window elapses.
func (s *FocusSession) PlannedEnd() time.Time {
	return s.StartedAt.Add(time.Duration(s.PlannedMinutes) * time.Minute)
}
