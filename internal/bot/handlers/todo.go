package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/engagement"
	"github.com/daviskuo/daypulse/internal/engine"
	"github.com/daviskuo/daypulse/internal/models"
)

func (h *Handlers) handleTodo(ctx context.Context, msg *tgbotapi.Message) {
	title := strings.TrimSpace(msg.CommandArguments())
	if title == "" {
		h.sendMessage(msg.Chat.ID, "Please give the task a title.\nUsage: /todo <title>")
		return
	}

	todo := &models.Todo{
		UserID: msg.From.ID,
		Title:  title,
	}
	if err := h.repos.Todo.Create(ctx, todo); err != nil {
		log.Printf("Failed to create todo: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not save the task, please try again.")
		return
	}

	h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Task #%d added. Set a due time with /due %d <when>", todo.TodoID, todo.TodoID))
}

func (h *Handlers) handleTodoList(ctx context.Context, msg *tgbotapi.Message) {
	todos, err := h.repos.Todo.ListOpen(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to list todos: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not load your tasks, please try again.")
		return
	}

	if len(todos) == 0 {
		h.sendMessage(msg.Chat.ID, "✨ Nothing open. Add a task with /todo <title>")
		return
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("📋 **Open tasks**\n\n")
	for _, todo := range todos {
		sb.WriteString(fmt.Sprintf("⬜ **%d.** %s", todo.TodoID, todo.Title))
		if todo.DueTime != nil {
			sb.WriteString("\n   📅 " + h.describeDue(*todo.DueTime, now))
		}
		sb.WriteString("\n\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

// describeDue renders a due instant relative to now in the home calendar.
func (h *Handlers) describeDue(due, now time.Time) string {
	clock := h.cal.ClockTime(due)
	switch diff := h.cal.DayDiff(due, now); {
	case diff < 0:
		return fmt.Sprintf("%s %s (overdue)", h.cal.DateKey(due), clock)
	case diff == 0:
		return "today " + clock
	case diff == 1:
		return "tomorrow " + clock
	default:
		return h.cal.DateKey(due) + " " + clock
	}
}

func (h *Handlers) handleTodoDone(ctx context.Context, msg *tgbotapi.Message) {
	todoID, ok := parseID(msg.CommandArguments())
	if !ok {
		h.sendMessage(msg.Chat.ID, "Usage: /done <id>")
		return
	}

	now := time.Now()
	todo, err := h.repos.Todo.GetByID(ctx, todoID, msg.From.ID)
	if err != nil {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Task #%d not found.", todoID))
		return
	}
	if todo.IsCompleted() {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Task #%d is already done.", todoID))
		return
	}
	if err := h.repos.Todo.Complete(ctx, todoID, msg.From.ID, now); err != nil {
		log.Printf("Failed to complete todo %d: %v", todoID, err)
		h.sendMessage(msg.Chat.ID, "Could not complete the task, please try again.")
		return
	}

	ledger, earned := h.recordCompletion(ctx, msg.From.ID, now)

	text := "🎉 Done: ~~" + todo.Title + "~~"
	if ledger.CurrentStreak > 1 {
		text += fmt.Sprintf("\n🔥 %d days in a row!", ledger.CurrentStreak)
	}
	for _, badge := range earned {
		text += fmt.Sprintf("\n%s New badge: **%s**: %s", badge.Icon, badge.Name, badge.Description)
	}
	h.sendMessage(msg.Chat.ID, text)
}

// recordCompletion folds a completion into the engagement ledger together
// with the post-completion workload counts.
func (h *Handlers) recordCompletion(ctx context.Context, userID int64, now time.Time) (engagement.Ledger, []engagement.Badge) {
	var remainingToday, remainingOverdue *int

	dayStart := h.cal.StartOfDay(now)
	if n, err := h.repos.Todo.CountRemainingToday(ctx, userID, dayStart, dayStart.Add(24*time.Hour)); err == nil {
		remainingToday = &n
	} else {
		log.Printf("Failed to count remaining today for %d: %v", userID, err)
	}
	if n, err := h.repos.Todo.CountOverdue(ctx, userID, now); err == nil {
		remainingOverdue = &n
	} else {
		log.Printf("Failed to count overdue for %d: %v", userID, err)
	}

	var earned []engagement.Badge
	ledger, err := h.repos.Ledger.Mutate(ctx, userID, func(l engagement.Ledger) engagement.Ledger {
		next, badges := h.rules.ApplyCompletion(l, now, remainingToday, remainingOverdue)
		earned = badges
		return next
	})
	if err != nil {
		log.Printf("Failed to record completion for %d: %v", userID, err)
		return engagement.Ledger{}, nil
	}
	return ledger, earned
}

func (h *Handlers) handleTodoUndone(ctx context.Context, msg *tgbotapi.Message) {
	todoID, ok := parseID(msg.CommandArguments())
	if !ok {
		h.sendMessage(msg.Chat.ID, "Usage: /undone <id>")
		return
	}

	if err := h.repos.Todo.Uncomplete(ctx, todoID, msg.From.ID); err != nil {
		log.Printf("Failed to reopen todo %d: %v", todoID, err)
		h.sendMessage(msg.Chat.ID, "Could not reopen the task, check the id.")
		return
	}
	// Streaks and badges already earned stay earned; reopening only brings
	// the task back.
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("↩️ Task #%d is open again.", todoID))
}

func (h *Handlers) handleTodoRelease(ctx context.Context, msg *tgbotapi.Message) {
	todoID, ok := parseID(msg.CommandArguments())
	if !ok {
		h.sendMessage(msg.Chat.ID, "Usage: /release <id>")
		return
	}

	todo, err := h.repos.Todo.GetByID(ctx, todoID, msg.From.ID)
	if err != nil {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Task #%d not found.", todoID))
		return
	}
	if err := h.repos.Todo.Release(ctx, todoID, msg.From.ID, time.Now()); err != nil {
		log.Printf("Failed to release todo %d: %v", todoID, err)
		h.sendMessage(msg.Chat.ID, "Could not release the task, please try again.")
		return
	}
	if _, err := h.repos.Ledger.Mutate(ctx, msg.From.ID, h.rules.ApplyRelease); err != nil {
		log.Printf("Failed to record release for %d: %v", msg.From.ID, err)
	}

	h.sendMessage(msg.Chat.ID, "🍂 Released ~~"+todo.Title+"~~. Off your plate, not lost.")
}

func (h *Handlers) handleTodoDue(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) < 2 {
		h.sendMessage(msg.Chat.ID, "Usage: /due <id> <when>\ne.g. /due 3 tomorrow 14:00")
		return
	}
	todoID, ok := parseID(fields[0])
	if !ok {
		h.sendMessage(msg.Chat.ID, "Usage: /due <id> <when>")
		return
	}

	when, _, err := parseWhen(h.cal, time.Now(), fields[1:])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "I couldn't read that time. Try HH:MM, today/tomorrow HH:MM or YYYY-MM-DD HH:MM.")
		return
	}

	if err := h.repos.Todo.Reschedule(ctx, todoID, msg.From.ID, when); err != nil {
		log.Printf("Failed to reschedule todo %d: %v", todoID, err)
		h.sendMessage(msg.Chat.ID, "Could not move the task, check the id.")
		return
	}
	h.notify()

	h.sendMessage(msg.Chat.ID, fmt.Sprintf("📅 Task #%d is now due %s.", todoID, h.describeDue(when, time.Now())))
}

// handleTodoCallback reacts to the action buttons attached to reminders.
func (h *Handlers) handleTodoCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, action string, todoID int) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	now := time.Now()

	todo, err := h.repos.Todo.GetByID(ctx, todoID, userID)
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("Task #%d is gone.", todoID))
		return
	}

	switch engine.ActionTag(action) {
	case engine.ActionRescheduleToday:
		// Later today: this evening, or two hours out when the evening has
		// already started.
		when := h.cal.StartOfDay(now).Add(18 * time.Hour)
		if !when.After(now) {
			when = now.Add(2 * time.Hour)
		}
		h.reschedule(ctx, chatID, userID, todo, when, now)
	case engine.ActionRescheduleTomorrow:
		when := h.cal.StartOfDay(now).Add(24*time.Hour + 9*time.Hour)
		h.reschedule(ctx, chatID, userID, todo, when, now)
	case engine.ActionOpen:
		h.sendMessage(chatID, h.describeTodo(todo, now))
	}
}

func (h *Handlers) reschedule(ctx context.Context, chatID, userID int64, todo *models.Todo, when, now time.Time) {
	if err := h.repos.Todo.Reschedule(ctx, todo.TodoID, userID, when); err != nil {
		log.Printf("Failed to reschedule todo %d: %v", todo.TodoID, err)
		h.sendMessage(chatID, "Could not move the task, please try again.")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("📅 **%s** moved to %s.", todo.Title, h.describeDue(when, now)))
}

func (h *Handlers) describeTodo(todo *models.Todo, now time.Time) string {
	text := fmt.Sprintf("**%s** (#%d)", todo.Title, todo.TodoID)
	if todo.Description != "" {
		text += "\n" + todo.Description
	}
	if todo.DueTime != nil {
		text += "\n📅 " + h.describeDue(*todo.DueTime, now)
	}
	text += fmt.Sprintf("\n\n/done %d · /due %d <when> · /release %d", todo.TodoID, todo.TodoID, todo.TodoID)
	return text
}

func parseID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
