package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/models"
	"github.com/daviskuo/daypulse/internal/rrule"
)

func (h *Handlers) handleEvent(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.CommandArguments())
	now := time.Now()

	when, consumed, err := parseWhen(h.cal, now, fields)
	if err != nil || len(fields) < consumed+2 {
		h.sendMessage(msg.Chat.ID, "Usage: /event <when> <minutes> <title>\ne.g. /event tomorrow 10:00 60 dentist\nAppend RRULE:FREQ=WEEKLY (or any RRULE) to repeat.")
		return
	}

	duration, err := strconv.Atoi(fields[consumed])
	if err != nil || duration < 0 {
		h.sendMessage(msg.Chat.ID, "The duration must be a number of minutes.")
		return
	}

	rest := fields[consumed+1:]
	rule := ""
	if last := rest[len(rest)-1]; strings.HasPrefix(last, "RRULE:") {
		rule = strings.TrimPrefix(last, "RRULE:")
		rest = rest[:len(rest)-1]
	}
	title := strings.Join(rest, " ")
	if title == "" {
		h.sendMessage(msg.Chat.ID, "The event needs a title.")
		return
	}

	if rule != "" {
		if _, err := rrule.Parse(rule, when); err != nil {
			h.sendMessage(msg.Chat.ID, "That RRULE doesn't parse: "+err.Error())
			return
		}
	}

	event := &models.Event{
		UserID:              msg.From.ID,
		Title:               title,
		Dtstart:             &when,
		Duration:            duration,
		NextOccurrence:      &when,
		NotificationMinutes: 15,
		RecurrenceRule:      rule,
	}
	if err := h.repos.Event.Create(ctx, event); err != nil {
		log.Printf("Failed to create event: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not save the event, please try again.")
		return
	}
	h.notify()

	text := fmt.Sprintf("📅 Event #%d: **%s** on %s %s.", event.EventID, title, h.cal.DateKey(when), h.cal.ClockTime(when))
	if event.IsRecurring() {
		text += "\n🔄 " + rrule.Describe(event.RecurrenceRule)
	}
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleEventList(ctx context.Context, msg *tgbotapi.Message) {
	events, err := h.repos.Event.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to list events: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not load your events, please try again.")
		return
	}

	if len(events) == 0 {
		h.sendMessage(msg.Chat.ID, "No events. Add one with /event <when> <minutes> <title>")
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 **Events**\n\n")
	for _, event := range events {
		sb.WriteString(fmt.Sprintf("**%d.** %s", event.EventID, event.Title))
		if event.NextOccurrence != nil {
			sb.WriteString(fmt.Sprintf("\n   ⏰ %s %s", h.cal.DateKey(*event.NextOccurrence), h.cal.ClockTime(*event.NextOccurrence)))
		}
		if event.Duration > 0 {
			sb.WriteString(fmt.Sprintf(" · %d min", event.Duration))
		}
		if event.IsRecurring() {
			sb.WriteString("\n   🔄 " + rrule.Describe(event.RecurrenceRule))
		}
		sb.WriteString("\n\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}
