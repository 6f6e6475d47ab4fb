package repository

import (
	"context"

	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/models"
)

type NoteRepository struct {
	db *database.DB
}

func NewNoteRepository(db *database.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO note (user_id, content, tags) VALUES ($1, $2, $3)
		 RETURNING note_id, created_at`,
		note.UserID, note.Content, note.Tags,
	).Scan(&note.NoteID, &note.CreatedAt)
}

func (r *NoteRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*models.Note, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT note_id, user_id, content, tags, created_at
		 FROM note WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.NoteID, &note.UserID, &note.Content, &note.Tags, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (r *NoteRepository) Search(ctx context.Context, userID int64, keyword string) ([]*models.Note, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT note_id, user_id, content, tags, created_at
		 FROM note WHERE user_id = $1 AND (content ILIKE $2 OR tags ILIKE $2)
		 ORDER BY created_at DESC`,
		userID, "%"+keyword+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(&note.NoteID, &note.UserID, &note.Content, &note.Tags, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (r *NoteRepository) Delete(ctx context.Context, noteID int, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM note WHERE note_id = $1 AND user_id = $2`,
		noteID, userID,
	)
	return err
}
