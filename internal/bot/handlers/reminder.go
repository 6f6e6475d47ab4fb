package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/models"
	"github.com/daviskuo/daypulse/internal/rrule"
)

func (h *Handlers) handleReminder(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.CommandArguments())
	now := time.Now()

	when, consumed, err := parseWhen(h.cal, now, fields)
	if err != nil || consumed >= len(fields) {
		h.sendMessage(msg.Chat.ID, "Usage: /remind <when> <message>\ne.g. /remind 14:00 stand-up notes\nAppend RRULE:FREQ=DAILY (or any RRULE) to repeat.")
		return
	}

	rest := fields[consumed:]
	rule := ""
	if last := rest[len(rest)-1]; strings.HasPrefix(last, "RRULE:") {
		rule = strings.TrimPrefix(last, "RRULE:")
		rest = rest[:len(rest)-1]
	}
	message := strings.Join(rest, " ")
	if message == "" {
		h.sendMessage(msg.Chat.ID, "The reminder needs a message.")
		return
	}

	if rule != "" {
		if _, err := rrule.Parse(rule, when); err != nil {
			h.sendMessage(msg.Chat.ID, "That RRULE doesn't parse: "+err.Error())
			return
		}
	}

	reminder := &models.Reminder{
		UserID:         msg.From.ID,
		Enabled:        true,
		Message:        message,
		RecurrenceRule: rule,
		Dtstart:        &when,
		RemindAt:       &when,
	}
	if err := h.repos.Reminder.Create(ctx, reminder); err != nil {
		log.Printf("Failed to create reminder: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not save the reminder, please try again.")
		return
	}
	h.notify()

	text := fmt.Sprintf("⏰ Reminder #%d set for %s %s.", reminder.ReminderID, h.cal.DateKey(when), h.cal.ClockTime(when))
	if reminder.IsRecurring() {
		text += "\n🔄 " + rrule.Describe(reminder.RecurrenceRule)
	}
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleReminderList(ctx context.Context, msg *tgbotapi.Message) {
	reminders, err := h.repos.Reminder.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to list reminders: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not load your reminders, please try again.")
		return
	}

	if len(reminders) == 0 {
		h.sendMessage(msg.Chat.ID, "No reminders set. Create one with /remind <when> <message>")
		return
	}

	var sb strings.Builder
	sb.WriteString("⏰ **Reminders**\n\n")
	for _, reminder := range reminders {
		state := "🔔"
		if !reminder.Enabled {
			state = "🔕"
		}
		sb.WriteString(fmt.Sprintf("%s **%d.** %s", state, reminder.ReminderID, reminder.Message))
		if reminder.RemindAt != nil {
			sb.WriteString(fmt.Sprintf("\n   📅 %s %s", h.cal.DateKey(*reminder.RemindAt), h.cal.ClockTime(*reminder.RemindAt)))
		}
		if reminder.IsRecurring() {
			sb.WriteString("\n   🔄 " + rrule.Describe(reminder.RecurrenceRule))
		}
		sb.WriteString("\n\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

// handleReminderAck confirms a fired reminder; recurring ones roll forward
// to their next occurrence, one-off ones retire.
func (h *Handlers) handleReminderAck(ctx context.Context, callback *tgbotapi.CallbackQuery, reminderID int) {
	userID := callback.From.ID
	now := time.Now()

	reminder, err := h.repos.Reminder.GetByID(ctx, reminderID, userID)
	if err != nil {
		return
	}
	if err := h.repos.Reminder.SetAcknowledged(ctx, reminderID, userID, now); err != nil {
		log.Printf("Failed to acknowledge reminder %d: %v", reminderID, err)
		return
	}

	var next *time.Time
	if reminder.IsRecurring() && reminder.Dtstart != nil {
		next, err = rrule.NextAfter(reminder.RecurrenceRule, *reminder.Dtstart, now)
		if err != nil {
			log.Printf("Failed to advance reminder %d: %v", reminderID, err)
			next = nil
		}
	}
	if err := h.repos.Reminder.Advance(ctx, reminderID, next); err != nil {
		log.Printf("Failed to advance reminder %d: %v", reminderID, err)
	}

	text := "✅ " + reminder.Message
	if next != nil {
		text += fmt.Sprintf("\n🔄 Next: %s %s", h.cal.DateKey(*next), h.cal.ClockTime(*next))
	}
	h.editMessageText(callback.Message.Chat.ID, callback.Message.MessageID, text)
}
