package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/bot/handlers"
	"github.com/daviskuo/daypulse/internal/clock"
	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/repository"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
}

// New wires the command handlers against the shared Telegram API client.
// notify is handed through to the handlers so data changes can nudge the
// scheduler immediately instead of waiting out the tick.
func New(api *tgbotapi.BotAPI, db *database.DB, cal clock.Calendar, notify func()) (*Bot, error) {
	if api == nil {
		return nil, fmt.Errorf("nil telegram api")
	}

	repos := &handlers.Repositories{
		User:         repository.NewUserRepository(db),
		Note:         repository.NewNoteRepository(db),
		Todo:         repository.NewTodoRepository(db),
		Reminder:     repository.NewReminderRepository(db),
		Event:        repository.NewEventRepository(db),
		UserSettings: repository.NewUserSettingsRepository(db),
		Ledger:       repository.NewLedgerRepository(db),
		FocusSession: repository.NewFocusSessionRepository(db),
	}

	return &Bot{
		api:      api,
		handlers: handlers.New(api, repos, cal, notify),
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handlers.HandleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handlers.HandleCommand(ctx, update.Message)
	}
}
