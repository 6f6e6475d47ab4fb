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
)

const defaultFocusMinutes = 25

func (h *Handlers) handleFocus(ctx context.Context, msg *tgbotapi.Message) {
	if running, err := h.repos.FocusSession.GetRunning(ctx, msg.From.ID); err == nil && running != nil {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("A %d-minute session is already running. Stop it with /focusdone", running.PlannedMinutes))
		return
	}

	fields := strings.Fields(msg.CommandArguments())
	minutes := defaultFocusMinutes
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			if n <= 0 || n > 8*60 {
				h.sendMessage(msg.Chat.ID, "Pick a length between 1 minute and 8 hours.")
				return
			}
			minutes = n
			fields = fields[1:]
		}
	}

	session := &models.FocusSession{
		UserID:         msg.From.ID,
		PlannedMinutes: minutes,
		StartedAt:      time.Now(),
	}

	// A "#<id>" token ties the session to a task, anything else is a label.
	if len(fields) > 0 && strings.HasPrefix(fields[0], "#") {
		if todoID, ok := parseID(strings.TrimPrefix(fields[0], "#")); ok {
			if todo, err := h.repos.Todo.GetByID(ctx, todoID, msg.From.ID); err == nil {
				session.TodoID = &todoID
				session.Label = todo.Title
				fields = fields[1:]
			}
		}
	}
	if session.Label == "" {
		session.Label = strings.Join(fields, " ")
	}

	if err := h.repos.FocusSession.Create(ctx, session); err != nil {
		log.Printf("Failed to create focus session: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not start the timer, please try again.")
		return
	}

	text := fmt.Sprintf("🎯 Focusing for %d minutes", minutes)
	if session.Label != "" {
		text += " on **" + session.Label + "**"
	}
	text += ". I'll ping you when time is up."
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleFocusDone(ctx context.Context, msg *tgbotapi.Message) {
	session, err := h.repos.FocusSession.GetRunning(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to get running focus session: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not check your timer, please try again.")
		return
	}
	if session == nil {
		h.sendMessage(msg.Chat.ID, "No timer running. Start one with /focus")
		return
	}

	now := time.Now()
	if err := h.repos.FocusSession.End(ctx, session.SessionID, now); err != nil {
		log.Printf("Failed to end focus session %d: %v", session.SessionID, err)
		h.sendMessage(msg.Chat.ID, "Could not stop the timer, please try again.")
		return
	}

	elapsed := int(now.Sub(session.StartedAt).Minutes())
	text := fmt.Sprintf("🎯 Stopped after %d of %d minutes", elapsed, session.PlannedMinutes)
	if session.Label != "" {
		text += " on **" + session.Label + "**"
	}
	text += "."
	h.sendMessage(msg.Chat.ID, text)
}
