package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/engagement"
)

func (h *Handlers) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	ledger, err := h.repos.Ledger.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to get ledger for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Could not load your stats, please try again.")
		return
	}

	now := time.Now()
	dayStart := h.cal.StartOfDay(now)
	focusToday, err := h.repos.FocusSession.CountToday(ctx, msg.From.ID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		log.Printf("Failed to count focus sessions for %d: %v", msg.From.ID, err)
	}

	var sb strings.Builder
	sb.WriteString("📊 **Your stats**\n\n")
	sb.WriteString(fmt.Sprintf("🔥 Current streak: %d\n", ledger.CurrentStreak))
	sb.WriteString(fmt.Sprintf("🏔 Longest streak: %d\n", ledger.LongestStreak))
	sb.WriteString(fmt.Sprintf("✅ Completed: %d\n", ledger.TotalCompleted))
	sb.WriteString(fmt.Sprintf("🍂 Released: %d\n", ledger.TotalReleased))
	sb.WriteString(fmt.Sprintf("🏅 Badges: %d of %d\n", len(ledger.Badges), len(engagement.Catalog())))
	if focusToday > 0 {
		sb.WriteString(fmt.Sprintf("🎯 Focus sessions today: %d\n", focusToday))
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleBadges(ctx context.Context, msg *tgbotapi.Message) {
	ledger, err := h.repos.Ledger.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to get ledger for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Could not load your badges, please try again.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏅 **Badges**\n\n")
	for _, def := range engagement.Catalog() {
		if ledger.HasBadge(def.ID) {
			sb.WriteString(fmt.Sprintf("%s **%s**: %s\n", def.Icon, def.Name, def.Description))
		} else {
			sb.WriteString(fmt.Sprintf("🔒 %s: %s\n", def.Name, def.Description))
		}
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}
