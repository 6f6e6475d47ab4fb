package models

import "time"

type Note struct {
	NoteID    int       `json:"note_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Tags      string    `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}
