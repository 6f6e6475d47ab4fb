// Package engagement maintains the user's gamification state: completion
// streaks, lifetime counters and earned badges.
//
// The ledger is a single aggregate per user. Transitions are pure functions
// from (ledger, event) to a new ledger value; the repository layer owns the
// read-modify-write cycle against Postgres and must serialize concurrent
// events (see repository.LedgerRepository.Mutate). Nothing in this package
// touches storage or the wall clock.
package engagement

import (
	"time"

	"github.com/daviskuo/daypulse/internal/clock"
)

// Badge is an earned achievement. The catalog of earnable badges lives in
// badges.go; a ledger only ever holds each badge id once.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

// Ledger is the persisted engagement aggregate.
type Ledger struct {
	UserID           int64   `json:"user_id"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	TotalCompleted   int     `json:"total_completed"`
	TotalReleased    int     `json:"total_released"`
	LastCompletedDay *string `json:"last_completed_day"` // YYYY-MM-DD
	Badges           []Badge `json:"badges"`
}

// HasBadge reports whether the ledger already holds the badge id.
func (l Ledger) HasBadge(id string) bool {
	for _, b := range l.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Rules evaluates ledger transitions in the user's home calendar.
type Rules struct {
	cal clock.Calendar
}

func NewRules(cal clock.Calendar) Rules {
	return Rules{cal: cal}
}

// ApplyCompletion folds one task completion into the ledger and returns the
// new ledger plus any badges earned by this completion.
//
// Streak transition: the first completion ever starts a streak of 1; a
// completion on the day after the last one extends the streak; a second
// completion on the same day leaves it unchanged; any gap resets it to 1.
// A completion instant earlier than the recorded last-completed day can only
// come from a caller replaying history out of order, and also resets to 1.
//
// remainingToday and remainingOverdue are optional situational counts taken
// after the completion; nil means unknown and never earns the corresponding
// badge.
func (r Rules) ApplyCompletion(l Ledger, completedAt time.Time, remainingToday, remainingOverdue *int) (Ledger, []Badge) {
	today := r.cal.DateKey(completedAt)

	newStreak := 1
	if l.LastCompletedDay != nil {
		diff, err := r.cal.DayDiffKey(completedAt, *l.LastCompletedDay)
		if err == nil {
			switch {
			case diff == 1:
				newStreak = l.CurrentStreak + 1
			case diff == 0:
				newStreak = l.CurrentStreak
			}
		}
	}

	next := l
	next.CurrentStreak = newStreak
	if newStreak > next.LongestStreak {
		next.LongestStreak = newStreak
	}
	next.TotalCompleted = l.TotalCompleted + 1
	next.LastCompletedDay = &today

	snap := snapshot{
		Streak:           newStreak,
		TotalCompleted:   next.TotalCompleted,
		CompletionHour:   r.cal.Hour(completedAt),
		RemainingToday:   remainingToday,
		RemainingOverdue: remainingOverdue,
	}

	var earned []Badge
	badges := make([]Badge, len(l.Badges), len(l.Badges)+1)
	copy(badges, l.Badges)
	for _, def := range Catalog() {
		if l.HasBadge(def.ID) || !def.Earned(snap) {
			continue
		}
		b := Badge{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			EarnedAt:    completedAt,
		}
		badges = append(badges, b)
		earned = append(earned, b)
	}
	next.Badges = badges

	return next, earned
}

// ApplyRelease folds one task release into the ledger. Releasing never
// touches streaks, completion counts or badges.
func (r Rules) ApplyRelease(l Ledger) Ledger {
	next := l
	next.TotalReleased = l.TotalReleased + 1
	return next
}
