package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/models"
)

// handleSettings shows current preferences or applies a change.
//
//	/settings                      show everything
//	/settings quiet 22:00 08:00    quiet hours (may wrap midnight)
//	/settings gentle on|off        softer reminder wording
//	/settings reminders on|off     todo nudges
//	/settings summary on|off|HH:MM daily summary and its send time
//	/settings release <days>|off   auto-release window
func (h *Handlers) handleSettings(ctx context.Context, msg *tgbotapi.Message) {
	settings, err := h.repos.UserSettings.GetOrCreate(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to get user settings: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not load your settings, please try again.")
		return
	}

	fields := strings.Fields(msg.CommandArguments())
	if len(fields) == 0 {
		h.sendMessage(msg.Chat.ID, describeSettings(settings))
		return
	}

	ok := false
	switch fields[0] {
	case "quiet":
		ok = applyQuiet(settings, fields[1:])
	case "gentle":
		ok = applyToggle(&settings.GentleReminders, fields[1:])
	case "reminders":
		ok = applyToggle(&settings.RemindersEnabled, fields[1:])
	case "summary":
		ok = applySummary(settings, fields[1:])
	case "release":
		ok = applyRelease(settings, fields[1:])
	}
	if !ok {
		h.sendMessage(msg.Chat.ID, "I didn't get that. /settings without arguments lists the options.")
		return
	}

	if err := h.repos.UserSettings.Update(ctx, settings); err != nil {
		log.Printf("Failed to update settings for %d: %v", msg.From.ID, err)
		h.sendMessage(msg.Chat.ID, "Could not save the change, please try again.")
		return
	}
	h.sendMessage(msg.Chat.ID, "✅ Saved.\n\n"+describeSettings(settings))
}

func describeSettings(s *models.UserSettings) string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	release := "off"
	if s.AutoReleaseDays > 0 {
		release = fmt.Sprintf("after %d days", s.AutoReleaseDays)
	}

	return "⚙️ **Settings**\n\n" +
		fmt.Sprintf("🌙 Quiet hours: %s to %s\n", s.QuietStart, s.QuietEnd) +
		fmt.Sprintf("💬 Gentle wording: %s\n", onOff(s.GentleReminders)) +
		fmt.Sprintf("🔔 Task reminders: %s\n", onOff(s.RemindersEnabled)) +
		fmt.Sprintf("☀️ Daily summary: %s at %s\n", onOff(s.DailySummaryEnabled), s.DailySummaryTime) +
		fmt.Sprintf("🍂 Auto-release: %s\n\n", release) +
		"Change with /settings quiet|gentle|reminders|summary|release ..."
}

func applyQuiet(s *models.UserSettings, args []string) bool {
	if len(args) != 2 || !models.ValidClock(args[0]) || !models.ValidClock(args[1]) {
		return false
	}
	s.QuietStart, s.QuietEnd = args[0], args[1]
	return true
}

func applyToggle(target *bool, args []string) bool {
	if len(args) != 1 {
		return false
	}
	switch args[0] {
	case "on":
		*target = true
	case "off":
		*target = false
	default:
		return false
	}
	return true
}

func applySummary(s *models.UserSettings, args []string) bool {
	if len(args) != 1 {
		return false
	}
	switch {
	case args[0] == "on":
		s.DailySummaryEnabled = true
	case args[0] == "off":
		s.DailySummaryEnabled = false
	case models.ValidClock(args[0]):
		s.DailySummaryEnabled = true
		s.DailySummaryTime = args[0]
	default:
		return false
	}
	return true
}

func applyRelease(s *models.UserSettings, args []string) bool {
	if len(args) != 1 {
		return false
	}
	if args[0] == "off" {
		s.AutoReleaseDays = 0
		return true
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 1 || days > 365 {
		return false
	}
	s.AutoReleaseDays = days
	return true
}
