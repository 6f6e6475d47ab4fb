package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/daviskuo/daypulse/internal/models"
)

func (h *Handlers) handleNote(ctx context.Context, msg *tgbotapi.Message) {
	content := strings.TrimSpace(msg.CommandArguments())
	if content == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /note <text>")
		return
	}

	note := &models.Note{
		UserID:  msg.From.ID,
		Content: content,
	}
	if err := h.repos.Note.Create(ctx, note); err != nil {
		log.Printf("Failed to create note: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not save the note, please try again.")
		return
	}

	h.sendMessage(msg.Chat.ID, fmt.Sprintf("📝 Noted (#%d).", note.NoteID))
}

func (h *Handlers) handleNoteList(ctx context.Context, msg *tgbotapi.Message) {
	keyword := strings.TrimSpace(msg.CommandArguments())

	var (
		notes []*models.Note
		err   error
	)
	if keyword != "" {
		notes, err = h.repos.Note.Search(ctx, msg.From.ID, keyword)
	} else {
		notes, err = h.repos.Note.GetByUserID(ctx, msg.From.ID, 20)
	}
	if err != nil {
		log.Printf("Failed to list notes: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not load your notes, please try again.")
		return
	}

	if len(notes) == 0 {
		if keyword != "" {
			h.sendMessage(msg.Chat.ID, "No notes matching \""+keyword+"\".")
		} else {
			h.sendMessage(msg.Chat.ID, "No notes yet. Jot one down with /note <text>")
		}
		return
	}

	var sb strings.Builder
	if keyword != "" {
		sb.WriteString("🔍 **Notes matching \"" + keyword + "\"**\n\n")
	} else {
		sb.WriteString("📝 **Recent notes**\n\n")
	}
	for _, note := range notes {
		sb.WriteString(fmt.Sprintf("**%d.** %s _%s_\n\n", note.NoteID, note.Content, h.cal.DateKey(note.CreatedAt)))
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}
