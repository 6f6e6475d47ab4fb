package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/bot"
	"github.com/daviskuo/daypulse/internal/clock"
	"github.com/daviskuo/daypulse/internal/config"
	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/repository"
	"github.com/daviskuo/daypulse/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate required config
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	cal := clock.New(cfg.HomeUTCOffset)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Create Telegram API client shared by bot and scheduler
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}

	if cfg.DevChatID != 0 {
		if _, err := api.Send(tgbotapi.NewMessage(cfg.DevChatID, "DayPulse is up")); err != nil {
			log.Printf("Failed to notify dev chat: %v", err)
		}
	}

	// Create and start scheduler
	sched := scheduler.New(
		api,
		cal,
		cfg.CheckInterval,
		repository.NewUserRepository(db),
		repository.NewTodoRepository(db),
		repository.NewReminderRepository(db),
		repository.NewEventRepository(db),
		repository.NewUserSettingsRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewFocusSessionRepository(db),
	)
	go sched.Start(ctx)

	// Create and start bot
	b, err := bot.New(api, db, cal, sched.Notify)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting bot...")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
}
