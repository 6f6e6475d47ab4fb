// Package engine decides whether and what to remind for each open todo.
//
// The engine is a pure function layer: it takes the current todo list, the
// user's policy settings and a reference instant, and returns the reminder
// events that should fire right now. It performs no I/O and holds no state,
// so calling it twice with the same inputs yields the same output. Dispatch
// (Telegram delivery, dedupe against last_notified_at) belongs to the
// scheduler, not here.
package engine

import (
	"fmt"
	"time"

	"github.com/daviskuo/daypulse/internal/clock"
	"github.com/daviskuo/daypulse/internal/models"
)

// Kind tags the rule that produced a reminder event.
type Kind string

const (
	KindDueTomorrowEvening Kind = "due_tomorrow_evening"
	KindDueTodayMorning    Kind = "due_today_morning"
	KindDueWithin3Hours    Kind = "due_within_3h"
	KindOverdue1Day        Kind = "overdue_1d"
	KindOverdue3Days       Kind = "overdue_3d"
	KindOverdue7Days       Kind = "overdue_7d"
	KindOverdue14DaysPlus  Kind = "overdue_14d_plus"
)

// ActionTag identifies a suggested follow-up the user can take on a
// reminder. The dispatcher maps these onto inline keyboard buttons.
type ActionTag string

const (
	ActionRescheduleToday    ActionTag = "reschedule_today"
	ActionRescheduleTomorrow ActionTag = "reschedule_tomorrow"
	ActionOpen               ActionTag = "open"
)

type Action struct {
	Label string
	Tag   ActionTag
}

// Event is one reminder ready for dispatch. Events are built fresh on every
// Generate call and never persisted.
type Event struct {
	Todo    *models.Todo
	Kind    Kind
	Message string
	Actions []Action
}

type Engine struct {
	cal clock.Calendar
}

func New(cal clock.Calendar) Engine {
	return Engine{cal: cal}
}

// Generate evaluates every todo against the reminder rules at the given
// instant. Inside quiet hours it returns nothing regardless of the todo
// list. Output order follows input order.
func (e Engine) Generate(todos []*models.Todo, settings *models.UserSettings, now time.Time) []Event {
	if e.InQuietHours(settings, now) {
		return nil
	}
	var out []Event
	for _, todo := range todos {
		if ev := e.Evaluate(todo, settings, now); ev != nil {
			out = append(out, *ev)
		}
	}
	return out
}

// Evaluate applies the rule table to a single todo. The rules are checked in
// fixed priority order and the first match wins; near midday a todo due
// within three hours can also match the morning rule, and the morning rule
// deliberately takes precedence. Returns nil when no rule matches.
func (e Engine) Evaluate(todo *models.Todo, settings *models.UserSettings, now time.Time) *Event {
	if todo == nil || !todo.IsOpen() || todo.DueTime == nil {
		return nil
	}

	due := *todo.DueTime
	diffDays := e.cal.DayDiff(due, now)
	diffHours := due.Sub(now).Hours()
	hour := e.cal.Hour(now)

	var kind Kind
	switch {
	case diffDays == 1 && hour >= 18:
		kind = KindDueTomorrowEvening
	case diffDays == 0 && hour < 12:
		kind = KindDueTodayMorning
	case diffHours > 0 && diffHours <= 3:
		kind = KindDueWithin3Hours
	case diffDays == -1:
		kind = KindOverdue1Day
	case diffDays == -3:
		kind = KindOverdue3Days
	case diffDays == -7:
		kind = KindOverdue7Days
	case diffDays <= -14:
		kind = KindOverdue14DaysPlus
	default:
		return nil
	}

	return &Event{
		Todo:    todo,
		Kind:    kind,
		Message: message(kind, todo, settings.GentleReminders),
		Actions: suggestedActions(),
	}
}

// InQuietHours reports whether now falls inside the configured quiet window.
// A window whose start is later than its end wraps across midnight.
func (e Engine) InQuietHours(settings *models.UserSettings, now time.Time) bool {
	start := models.ClockMinutes(settings.QuietStart)
	end := models.ClockMinutes(settings.QuietEnd)
	cur := e.cal.MinuteOfDay(now)

	if start > end {
		return cur >= start || cur < end
	}
	return cur >= start && cur < end
}

// suggestedActions returns the fixed action set every reminder carries.
func suggestedActions() []Action {
	return []Action{
		{Label: "Do today", Tag: ActionRescheduleToday},
		{Label: "Do tomorrow", Tag: ActionRescheduleTomorrow},
		{Label: "Open", Tag: ActionOpen},
	}
}

func message(kind Kind, todo *models.Todo, gentle bool) string {
	title := todo.Title
	switch kind {
	case KindDueTomorrowEvening:
		if gentle {
			return fmt.Sprintf("Heads up for tomorrow: \"%s\" is due. A bit of prep tonight might help.", title)
		}
		return fmt.Sprintf("\"%s\" is due tomorrow. Worth a look this evening.", title)
	case KindDueTodayMorning:
		if gentle {
			return fmt.Sprintf("Good morning! \"%s\" is on today's plate, whenever suits you.", title)
		}
		return fmt.Sprintf("\"%s\" is due today.", title)
	case KindDueWithin3Hours:
		if gentle {
			return fmt.Sprintf("\"%s\" comes up within the next three hours.", title)
		}
		return fmt.Sprintf("\"%s\" is due within 3 hours.", title)
	case KindOverdue1Day:
		if gentle {
			return fmt.Sprintf("\"%s\" slipped past yesterday. Today could be a fresh start.", title)
		}
		return fmt.Sprintf("\"%s\" was due yesterday.", title)
	case KindOverdue3Days:
		if gentle {
			return fmt.Sprintf("\"%s\" has been waiting for 3 days. Still worth doing?", title)
		}
		return fmt.Sprintf("\"%s\" is 3 days overdue.", title)
	case KindOverdue7Days:
		if gentle {
			return fmt.Sprintf("A week has passed on \"%s\". Maybe reshape or reschedule it?", title)
		}
		return fmt.Sprintf("\"%s\" is a week overdue.", title)
	case KindOverdue14DaysPlus:
		if gentle {
			return fmt.Sprintf("\"%s\" has been open for two weeks or more. Releasing it is okay too.", title)
		}
		return fmt.Sprintf("\"%s\" is over two weeks overdue. Consider releasing it.", title)
	default:
		return title
	}
}
