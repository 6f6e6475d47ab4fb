package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/clock"
	"github.com/daviskuo/daypulse/internal/engagement"
	"github.com/daviskuo/daypulse/internal/engine"
	"github.com/daviskuo/daypulse/internal/format"
	"github.com/daviskuo/daypulse/internal/models"
	"github.com/daviskuo/daypulse/internal/repository"
	"github.com/daviskuo/daypulse/internal/rrule"
)

// Scheduler owns the background loop: it asks the engine what should fire,
// dispatches the resulting messages, rolls recurring items forward, releases
// stale todos and sends the daily summary.
type Scheduler struct {
	api           *tgbotapi.BotAPI
	cal           clock.Calendar
	eng           engine.Engine
	rules         engagement.Rules
	userRepo      *repository.UserRepository
	todoRepo      *repository.TodoRepository
	reminderRepo  *repository.ReminderRepository
	eventRepo     *repository.EventRepository
	settingsRepo  *repository.UserSettingsRepository
	ledgerRepo    *repository.LedgerRepository
	sessionRepo   *repository.FocusSessionRepository
	checkInterval time.Duration
	notifyCh      chan struct{}
}

func New(
	api *tgbotapi.BotAPI,
	cal clock.Calendar,
	checkInterval time.Duration,
	userRepo *repository.UserRepository,
	todoRepo *repository.TodoRepository,
	reminderRepo *repository.ReminderRepository,
	eventRepo *repository.EventRepository,
	settingsRepo *repository.UserSettingsRepository,
	ledgerRepo *repository.LedgerRepository,
	sessionRepo *repository.FocusSessionRepository,
) *Scheduler {
	return &Scheduler{
		api:           api,
		cal:           cal,
		eng:           engine.New(cal),
		rules:         engagement.NewRules(cal),
		userRepo:      userRepo,
		todoRepo:      todoRepo,
		reminderRepo:  reminderRepo,
		eventRepo:     eventRepo,
		settingsRepo:  settingsRepo,
		ledgerRepo:    ledgerRepo,
		sessionRepo:   sessionRepo,
		checkInterval: checkInterval,
		notifyCh:      make(chan struct{}, 1),
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	// Wait a bit for migrations to complete before first check
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			log.Println("Scheduler triggered by notification")
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	now := time.Now()
	s.checkTodoReminders(ctx, now)
	s.checkReminders(ctx, now)
	s.checkEvents(ctx, now)
	s.checkAutoRelease(ctx, now)
	s.checkDailySummary(ctx, now)
	s.checkFocusSessions(ctx, now)
}

// ==================== Todo reminders ====================

func (s *Scheduler) checkTodoReminders(ctx context.Context, now time.Time) {
	userIDs, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		return
	}

	for _, userID := range userIDs {
		s.checkUserTodos(ctx, userID, now)
	}
}

func (s *Scheduler) checkUserTodos(ctx context.Context, userID int64, now time.Time) {
	settings, err := s.settingsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		log.Printf("Failed to get settings for %d: %v", userID, err)
		return
	}
	if !settings.RemindersEnabled {
		return
	}

	todos, err := s.todoRepo.ListDueCandidates(ctx, userID)
	if err != nil {
		log.Printf("Failed to list due candidates for %d: %v", userID, err)
		return
	}

	events := FilterNotifiable(s.cal, s.eng.Generate(todos, settings, now), now)
	if len(events) == 0 {
		return
	}

	// Delete the previous combined reminder so the chat carries at most one.
	if settings.LastTodoMessageID != nil {
		deleteMsg := tgbotapi.NewDeleteMessage(userID, *settings.LastTodoMessageID)
		if _, err := s.api.Request(deleteMsg); err != nil {
			log.Printf("Failed to delete old reminder message %d: %v", *settings.LastTodoMessageID, err)
			// The user may have deleted it already, keep going
		}
	}

	parsed := format.Parse(buildReminderText(events))
	msg := tgbotapi.NewMessage(userID, parsed.Text)
	msg.Entities = parsed.Entities
	msg.ReplyMarkup = reminderKeyboard(events)

	sentMsg, err := s.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send todo reminder to %d: %v", userID, err)
		return
	}

	todoIDs := make([]int, len(events))
	for i, ev := range events {
		todoIDs[i] = ev.Todo.TodoID
	}
	if err := s.todoRepo.SetLastNotifiedAt(ctx, todoIDs, &now); err != nil {
		log.Printf("Failed to update last_notified_at: %v", err)
	}
	if err := s.settingsRepo.SetLastTodoMessageID(ctx, userID, sentMsg.MessageID); err != nil {
		log.Printf("Failed to update last_todo_message_id for %d: %v", userID, err)
	}

	log.Printf("Sent todo reminder to user %d with %d items (msg_id=%d)", userID, len(events), sentMsg.MessageID)
}

// FilterNotifiable drops events whose todo was already mentioned today. One
// nudge per todo per civil day.
func FilterNotifiable(cal clock.Calendar, events []engine.Event, now time.Time) []engine.Event {
	var fresh []engine.Event
	for _, ev := range events {
		if ev.Todo.LastNotifiedAt != nil && cal.IsToday(*ev.Todo.LastNotifiedAt, now) {
			continue
		}
		fresh = append(fresh, ev)
	}
	return fresh
}

func buildReminderText(events []engine.Event) string {
	if len(events) == 1 {
		return "📋 **Reminder**\n\n" + events[0].Message
	}

	text := fmt.Sprintf("📋 **Reminders** (%d)\n\n", len(events))
	for i, ev := range events {
		text += fmt.Sprintf("%d. %s\n", i+1, ev.Message)
	}
	return text
}

// reminderKeyboard lays out one button row per reminded todo. With several
// todos the labels carry the list number so rows stay tellable apart.
func reminderKeyboard(events []engine.Event) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, ev := range events {
		var row []tgbotapi.InlineKeyboardButton
		for _, action := range ev.Actions {
			label := action.Label
			if len(events) > 1 {
				label = fmt.Sprintf("%d· %s", i+1, action.Label)
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				label,
				fmt.Sprintf("todo:%s:%d", action.Tag, ev.Todo.TodoID),
			))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ==================== Standalone reminders ====================

func (s *Scheduler) checkReminders(ctx context.Context, now time.Time) {
	reminders, err := s.reminderRepo.GetPending(ctx, now)
	if err != nil {
		log.Printf("Failed to get pending reminders: %v", err)
		return
	}

	for _, reminder := range reminders {
		// Delete previous message if exists (to avoid flooding)
		if reminder.LastMessageID != nil {
			deleteMsg := tgbotapi.NewDeleteMessage(reminder.UserID, *reminder.LastMessageID)
			if _, err := s.api.Request(deleteMsg); err != nil {
				log.Printf("Failed to delete old reminder message %d: %v", *reminder.LastMessageID, err)
			}
		}

		text := "⏰ **Reminder**\n\n" + reminder.Message
		if reminder.Description != "" {
			text += "\n\n" + reminder.Description
		}
		if reminder.IsRecurring() {
			text += "\n\n🔄 " + rrule.Describe(reminder.RecurrenceRule)
		}

		parsed := format.Parse(text)
		msg := tgbotapi.NewMessage(reminder.UserID, parsed.Text)
		msg.Entities = parsed.Entities
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Got it", fmt.Sprintf("remind_ack:%d", reminder.ReminderID)),
			),
		)

		sentMsg, err := s.api.Send(msg)
		if err != nil {
			log.Printf("Failed to send reminder notification: %v", err)
			continue
		}

		s.reminderRepo.SetLastMessageID(ctx, reminder.ReminderID, sentMsg.MessageID)
		s.reminderRepo.SetNotifiedAt(ctx, reminder.ReminderID, &now)
		log.Printf("Sent reminder %d to user %d (msg_id=%d)", reminder.ReminderID, reminder.UserID, sentMsg.MessageID)
	}
}

// ==================== Events ====================

func (s *Scheduler) checkEvents(ctx context.Context, now time.Time) {
	events, err := s.eventRepo.GetDueForNotification(ctx, now)
	if err != nil {
		log.Printf("Failed to get due event notifications: %v", err)
		return
	}

	for _, event := range events {
		if event.NextOccurrence == nil {
			continue
		}

		text := "📅 **Upcoming event**\n\n**" + event.Title + "**\n"
		text += "⏰ " + event.NextOccurrence.Format("15:04")
		if until := time.Until(*event.NextOccurrence); until > time.Minute {
			text += " (in " + formatDuration(until) + ")"
		}
		if event.Duration > 0 {
			text += fmt.Sprintf("\n⏱ %d min", event.Duration)
		}
		if event.IsRecurring() {
			text += "\n🔄 " + rrule.Describe(event.RecurrenceRule)
		}
		if event.Description != "" {
			text += "\n\n" + event.Description
		}

		parsed := format.Parse(text)
		msg := tgbotapi.NewMessage(event.UserID, parsed.Text)
		msg.Entities = parsed.Entities
		if _, err := s.api.Send(msg); err != nil {
			log.Printf("Failed to send event notification: %v", err)
			continue
		}

		s.eventRepo.SetNotifiedAt(ctx, event.EventID, &now)
		log.Printf("Sent event notification %d to user %d", event.EventID, event.UserID)
	}

	s.rollPassedEvents(ctx, now)
}

// rollPassedEvents advances recurring events past their occurrence and
// retires one-off ones.
func (s *Scheduler) rollPassedEvents(ctx context.Context, now time.Time) {
	events, err := s.eventRepo.GetPassed(ctx, now)
	if err != nil {
		log.Printf("Failed to get passed events: %v", err)
		return
	}

	for _, event := range events {
		if event.RecurrenceRule == "" || event.Dtstart == nil {
			s.eventRepo.UpdateNextOccurrence(ctx, event.EventID, nil)
			continue
		}

		next, err := rrule.NextAfter(event.RecurrenceRule, *event.Dtstart, now)
		if err != nil {
			log.Printf("Failed to calculate next occurrence for event %d: %v", event.EventID, err)
			s.eventRepo.UpdateNextOccurrence(ctx, event.EventID, nil)
			continue
		}
		s.eventRepo.UpdateNextOccurrence(ctx, event.EventID, next)
		if next != nil {
			log.Printf("Scheduled next event %d at %s", event.EventID, next.Format("2006-01-02 15:04"))
		}
	}
}

// ==================== Auto-release ====================

func (s *Scheduler) checkAutoRelease(ctx context.Context, now time.Time) {
	userIDs, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		return
	}

	for _, userID := range userIDs {
		s.releaseStaleTodos(ctx, userID, now)
	}
}

func (s *Scheduler) releaseStaleTodos(ctx context.Context, userID int64, now time.Time) {
	settings, err := s.settingsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		log.Printf("Failed to get settings for %d: %v", userID, err)
		return
	}
	if settings.AutoReleaseDays <= 0 {
		return
	}

	cutoff := now.AddDate(0, 0, -settings.AutoReleaseDays)
	stale, err := s.todoRepo.ListReleaseCandidates(ctx, userID, cutoff)
	if err != nil {
		log.Printf("Failed to list release candidates for %d: %v", userID, err)
		return
	}
	if len(stale) == 0 {
		return
	}

	var released []*models.Todo
	for _, todo := range stale {
		if err := s.todoRepo.Release(ctx, todo.TodoID, userID, now); err != nil {
			log.Printf("Failed to release todo %d: %v", todo.TodoID, err)
			continue
		}
		if _, err := s.ledgerRepo.Mutate(ctx, userID, s.rules.ApplyRelease); err != nil {
			log.Printf("Failed to record release for %d: %v", userID, err)
		}
		released = append(released, todo)
	}
	if len(released) == 0 {
		return
	}

	text := "🍂 **Let go**\n\nThese sat for a while, so I cleared them off your plate:\n"
	for _, todo := range released {
		text += "• ~~" + todo.Title + "~~\n"
	}
	text += "\nNothing lost. Re-add any of them whenever they matter again."

	parsed := format.Parse(text)
	msg := tgbotapi.NewMessage(userID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := s.api.Send(msg); err != nil {
		log.Printf("Failed to send release note to %d: %v", userID, err)
	}
	log.Printf("Released %d stale todos for user %d", len(released), userID)
}

// ==================== Daily summary ====================

func (s *Scheduler) checkDailySummary(ctx context.Context, now time.Time) {
	userIDs, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		return
	}

	for _, userID := range userIDs {
		s.sendDailySummaryIfNeeded(ctx, userID, now)
	}
}

func (s *Scheduler) sendDailySummaryIfNeeded(ctx context.Context, userID int64, now time.Time) {
	settings, err := s.settingsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		log.Printf("Failed to get settings for %d: %v", userID, err)
		return
	}
	if !ShouldSendDailySummary(s.cal, settings, now) {
		return
	}

	dayStart := s.cal.StartOfDay(now)
	dayEnd := dayStart.Add(24 * time.Hour)

	events, err := s.eventRepo.GetInRange(ctx, userID, dayStart, dayEnd)
	if err != nil {
		log.Printf("Failed to get today's events for %d: %v", userID, err)
		events = nil
	}
	todos, err := s.todoRepo.ListOpen(ctx, userID)
	if err != nil {
		log.Printf("Failed to get todos for daily summary %d: %v", userID, err)
		todos = nil
	}
	ledger, err := s.ledgerRepo.GetOrCreate(ctx, userID)
	if err != nil {
		log.Printf("Failed to get ledger for %d: %v", userID, err)
	}

	text := s.buildDailySummaryText(events, todos, ledger, now)

	parsed := format.Parse(text)
	msg := tgbotapi.NewMessage(userID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := s.api.Send(msg); err != nil {
		log.Printf("Failed to send daily summary to %d: %v", userID, err)
		return
	}

	if err := s.settingsRepo.SetLastDailySummaryDay(ctx, userID, s.cal.DateKey(now)); err != nil {
		log.Printf("Failed to update last daily summary day for %d: %v", userID, err)
	}
	log.Printf("Sent daily summary to user %d", userID)
}

// ShouldSendDailySummary reports whether the summary is due: enabled, past
// the configured send time and not sent yet this civil day.
func ShouldSendDailySummary(cal clock.Calendar, settings *models.UserSettings, now time.Time) bool {
	if !settings.DailySummaryEnabled {
		return false
	}
	if cal.MinuteOfDay(now) < models.ClockMinutes(settings.DailySummaryTime) {
		return false
	}
	return settings.LastDailySummaryDay == nil || *settings.LastDailySummaryDay != cal.DateKey(now)
}

func (s *Scheduler) buildDailySummaryText(events []*models.Event, todos []*models.Todo, ledger engagement.Ledger, now time.Time) string {
	greeting := "Good morning"
	if h := s.cal.Hour(now); h >= 12 && h < 18 {
		greeting = "Good afternoon"
	} else if h >= 18 || h < 5 {
		greeting = "Good evening"
	}

	text := fmt.Sprintf("☀️ **%s**\n\n📅 %s\n", greeting, s.cal.DateKey(now))

	text += "\n**Today's events**\n"
	if len(events) == 0 {
		text += "• Nothing scheduled\n"
	} else {
		for _, event := range events {
			when := ""
			if event.NextOccurrence != nil {
				when = s.cal.ClockTime(*event.NextOccurrence) + " "
			}
			text += "• " + when + event.Title
			if event.Duration > 0 {
				text += fmt.Sprintf(" (%d min)", event.Duration)
			}
			text += "\n"
		}
	}

	text += "\n**Open tasks**\n"
	if len(todos) == 0 {
		text += "• All clear\n"
	} else {
		shown := len(todos)
		if shown > 10 {
			shown = 10
		}
		for i := 0; i < shown; i++ {
			todo := todos[i]
			due := ""
			if todo.DueTime != nil {
				switch diff := s.cal.DayDiff(*todo.DueTime, now); {
				case diff < 0:
					due = " (overdue)"
				case diff == 0:
					due = " (due today)"
				case diff == 1:
					due = " (due tomorrow)"
				}
			}
			text += "• " + todo.Title + due + "\n"
		}
		if len(todos) > 10 {
			text += fmt.Sprintf("• ...and %d more\n", len(todos)-10)
		}
	}

	if ledger.CurrentStreak > 0 {
		text += fmt.Sprintf("\n🔥 Streak: %d day", ledger.CurrentStreak)
		if ledger.CurrentStreak > 1 {
			text += "s"
		}
		text += "\n"
	}

	return text
}

// ==================== Focus sessions ====================

func (s *Scheduler) checkFocusSessions(ctx context.Context, now time.Time) {
	sessions, err := s.sessionRepo.GetElapsed(ctx, now)
	if err != nil {
		log.Printf("Failed to get elapsed focus sessions: %v", err)
		return
	}

	for _, session := range sessions {
		if err := s.sessionRepo.End(ctx, session.SessionID, session.PlannedEnd()); err != nil {
			log.Printf("Failed to end focus session %d: %v", session.SessionID, err)
			continue
		}

		text := fmt.Sprintf("🎯 **Focus session done**\n\n%d minutes are up", session.PlannedMinutes)
		if session.Label != "" {
			text += " on **" + session.Label + "**"
		}
		text += ". Take a break!"

		parsed := format.Parse(text)
		msg := tgbotapi.NewMessage(session.UserID, parsed.Text)
		msg.Entities = parsed.Entities
		if _, err := s.api.Send(msg); err != nil {
			log.Printf("Failed to send focus session notice to %d: %v", session.UserID, err)
		}
		log.Printf("Closed elapsed focus session %d for user %d", session.SessionID, session.UserID)
	}
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if d < time.Hour {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := int(d.Hours())
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d h", hours)
	}
	return fmt.Sprintf("%d h %d min", hours, mins)
}
