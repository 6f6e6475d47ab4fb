package repository

import (
	"context"
	"time"

	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/models"
)

const sessionColumns = `session_id, user_id, todo_id, label, planned_minutes, started_at, ended_at, created_at`

type FocusSessionRepository struct {
	db *database.DB
}

func NewFocusSessionRepository(db *database.DB) *FocusSessionRepository {
	return &FocusSessionRepository{db: db}
}

func (r *FocusSessionRepository) Create(ctx context.Context, session *models.FocusSession) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO focus_session (user_id, todo_id, label, planned_minutes, started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING session_id, created_at`,
		session.UserID, session.TodoID, session.Label, session.PlannedMinutes, session.StartedAt,
	).Scan(&session.SessionID, &session.CreatedAt)
}

// GetRunning returns the user's active session, or nil when none is open.
func (r *FocusSessionRepository) GetRunning(ctx context.Context, userID int64) (*models.FocusSession, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM focus_session
		 WHERE user_id = $1 AND ended_at IS NULL
		 ORDER BY started_at DESC LIMIT 1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	session := &models.FocusSession{}
	if err := rows.Scan(scanSessionTargets(session)...); err != nil {
		return nil, err
	}
	return session, nil
}

// GetElapsed returns running sessions whose planned window has passed, for
// the scheduler to close out.
func (r *FocusSessionRepository) GetElapsed(ctx context.Context, now time.Time) ([]*models.FocusSession, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM focus_session
		 WHERE ended_at IS NULL
		 AND started_at + (planned_minutes || ' minutes')::interval <= $1`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.FocusSession
	for rows.Next() {
		session := &models.FocusSession{}
		if err := rows.Scan(scanSessionTargets(session)...); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *FocusSessionRepository) End(ctx context.Context, sessionID int, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE focus_session SET ended_at = $1 WHERE session_id = $2 AND ended_at IS NULL`,
		at, sessionID,
	)
	return err
}

// CountToday returns the number of sessions finished within [dayStart,
// dayEnd), for the stats view.
func (r *FocusSessionRepository) CountToday(ctx context.Context, userID int64, dayStart, dayEnd time.Time) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM focus_session
		 WHERE user_id = $1 AND ended_at >= $2 AND ended_at < $3`,
		userID, dayStart, dayEnd,
	).Scan(&n)
	return n, err
}

func scanSessionTargets(s *models.FocusSession) []any {
	return []any{
		&s.SessionID, &s.UserID, &s.TodoID, &s.Label, &s.PlannedMinutes,
		&s.StartedAt, &s.EndedAt, &s.CreatedAt,
	}
}
