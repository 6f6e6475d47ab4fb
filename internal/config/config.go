package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/daviskuo/daypulse/internal/clock"
)

type Config struct {
	DatabaseURI   string
	TelegramToken string
	HomeUTCOffset int // minutes east of UTC
	CheckInterval time.Duration
	DevChatID     int64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	offset, err := clock.ParseOffset(getEnvOrDefault("HOME_UTC_OFFSET", "+00:00"))
	if err != nil {
		return nil, fmt.Errorf("HOME_UTC_OFFSET: %w", err)
	}

	interval, err := time.ParseDuration(getEnvOrDefault("CHECK_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("CHECK_INTERVAL: %w", err)
	}

	var devChatID int64
	if raw := os.Getenv("DEV_CHAT_ID"); raw != "" {
		devChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("DEV_CHAT_ID: %w", err)
		}
	}

	return &Config{
		DatabaseURI:   os.Getenv("DATABASE_URI"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		HomeUTCOffset: offset,
		CheckInterval: interval,
		DevChatID:     devChatID,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
