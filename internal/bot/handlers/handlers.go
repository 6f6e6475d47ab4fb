package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/clock"
	"github.com/daviskuo/daypulse/internal/engagement"
	"github.com/daviskuo/daypulse/internal/format"
	"github.com/daviskuo/daypulse/internal/repository"
)

type Repositories struct {
	User         *repository.UserRepository
	Note         *repository.NoteRepository
	Todo         *repository.TodoRepository
	Reminder     *repository.ReminderRepository
	Event        *repository.EventRepository
	UserSettings *repository.UserSettingsRepository
	Ledger       *repository.LedgerRepository
	FocusSession *repository.FocusSessionRepository
}

type Handlers struct {
	api    *tgbotapi.BotAPI
	repos  *Repositories
	cal    clock.Calendar
	rules  engagement.Rules
	notify func() // nudges the scheduler to re-check right away
}

func New(api *tgbotapi.BotAPI, repos *Repositories, cal clock.Calendar, notify func()) *Handlers {
	return &Handlers{
		api:    api,
		repos:  repos,
		cal:    cal,
		rules:  engagement.NewRules(cal),
		notify: notify,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	// Ensure user exists
	_, err := h.repos.User.GetOrCreate(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		log.Printf("Failed to get/create user: %v", err)
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "todo":
		h.handleTodo(ctx, msg)
	case "todos":
		h.handleTodoList(ctx, msg)
	case "done":
		h.handleTodoDone(ctx, msg)
	case "undone":
		h.handleTodoUndone(ctx, msg)
	case "release":
		h.handleTodoRelease(ctx, msg)
	case "due":
		h.handleTodoDue(ctx, msg)
	case "note":
		h.handleNote(ctx, msg)
	case "notes":
		h.handleNoteList(ctx, msg)
	case "remind":
		h.handleReminder(ctx, msg)
	case "reminders":
		h.handleReminderList(ctx, msg)
	case "event":
		h.handleEvent(ctx, msg)
	case "events":
		h.handleEventList(ctx, msg)
	case "focus":
		h.handleFocus(ctx, msg)
	case "focusdone":
		h.handleFocusDone(ctx, msg)
	case "stats":
		h.handleStats(ctx, msg)
	case "badges":
		h.handleBadges(ctx, msg)
	case "settings":
		h.handleSettings(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command. See /help for what I can do.")
	}
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Answer callback to remove loading state
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	parts := strings.Split(callback.Data, ":")
	switch parts[0] {
	case "todo":
		// "todo:<action>:<todoID>" from a reminder keyboard
		if len(parts) != 3 {
			return
		}
		todoID, err := strconv.Atoi(parts[2])
		if err != nil {
			return
		}
		h.handleTodoCallback(ctx, callback, parts[1], todoID)
	case "remind_ack":
		// "remind_ack:<reminderID>"
		if len(parts) != 2 {
			return
		}
		reminderID, err := strconv.Atoi(parts[1])
		if err != nil {
			return
		}
		h.handleReminderAck(ctx, callback, reminderID)
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	parsed := format.Parse(text)
	msg := tgbotapi.NewMessage(chatID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) editMessageText(chatID int64, messageID int, text string) {
	parsed := format.Parse(text)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, parsed.Text)
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	name := msg.From.FirstName
	if name == "" {
		name = msg.From.UserName
	}
	text := "👋 Hi " + name + "!\n\n" +
		"I'm DayPulse, your day-to-day sidekick. I keep your tasks, notes, " +
		"reminders and events in one chat and nudge you at the right moments.\n\n" +
		"Add your first task with /todo, or see everything I can do with /help."
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	text := `**Tasks**
/todo <title> - add a task
/todos - list open tasks
/done <id> - complete a task
/undone <id> - reopen a completed task
/release <id> - let a task go without completing it
/due <id> <when> - set or move the due time

**Notes**
/note <text> - jot something down
/notes [keyword] - list or search notes

**Reminders & events**
/remind <when> <message> - timed reminder, RRULE: suffix repeats it
/reminders - list reminders
/event <when> <minutes> <title> - calendar event
/events - list upcoming events

**Focus**
/focus [minutes] [label] - start a focus timer
/focusdone - stop the running timer

**Progress**
/stats - streaks and totals
/badges - earned badges

**Settings**
/settings - show and change preferences

<when> is HH:MM, today/tomorrow HH:MM, or YYYY-MM-DD HH:MM.`
	h.sendMessage(msg.Chat.ID, text)
}
