package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/engagement"
)

type LedgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetOrCreate returns the user's engagement ledger, creating an empty row
// on first use.
func (r *LedgerRepository) GetOrCreate(ctx context.Context, userID int64) (engagement.Ledger, error) {
	var ledger engagement.Ledger
	var badgesJSON []byte
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO engagement_ledger (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING user_id, current_streak, longest_streak, total_completed, total_released,
		           last_completed_day, badges`,
		userID,
	).Scan(&ledger.UserID, &ledger.CurrentStreak, &ledger.LongestStreak,
		&ledger.TotalCompleted, &ledger.TotalReleased, &ledger.LastCompletedDay, &badgesJSON)
	if err != nil {
		return engagement.Ledger{}, err
	}
	if err := json.Unmarshal(badgesJSON, &ledger.Badges); err != nil {
		return engagement.Ledger{}, fmt.Errorf("ledger badges for user %d are corrupt: %w", userID, err)
	}
	return ledger, nil
}

// Mutate applies fn to the user's ledger inside a transaction that holds
// the row lock. The streak and badge transitions are pure functions, so
// this read-modify-write boundary is the only place concurrent completion
// or release events could lose updates; the upsert's ON CONFLICT DO UPDATE
// locks the row for the duration of the transaction, serializing them.
func (r *LedgerRepository) Mutate(ctx context.Context, userID int64, fn func(engagement.Ledger) engagement.Ledger) (engagement.Ledger, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return engagement.Ledger{}, err
	}
	defer tx.Rollback(ctx)

	var ledger engagement.Ledger
	var badgesJSON []byte
	err = tx.QueryRow(ctx,
		`INSERT INTO engagement_ledger (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING user_id, current_streak, longest_streak, total_completed, total_released,
		           last_completed_day, badges`,
		userID,
	).Scan(&ledger.UserID, &ledger.CurrentStreak, &ledger.LongestStreak,
		&ledger.TotalCompleted, &ledger.TotalReleased, &ledger.LastCompletedDay, &badgesJSON)
	if err != nil {
		return engagement.Ledger{}, err
	}
	if err := json.Unmarshal(badgesJSON, &ledger.Badges); err != nil {
		return engagement.Ledger{}, fmt.Errorf("ledger badges for user %d are corrupt: %w", userID, err)
	}

	next := fn(ledger)

	if next.Badges == nil {
		next.Badges = []engagement.Badge{}
	}
	nextBadges, err := json.Marshal(next.Badges)
	if err != nil {
		return engagement.Ledger{}, err
	}
	_, err = tx.Exec(ctx,
		`UPDATE engagement_ledger SET
		    current_streak = $1, longest_streak = $2, total_completed = $3,
		    total_released = $4, last_completed_day = $5, badges = $6, updated_at = $7
		 WHERE user_id = $8`,
		next.CurrentStreak, next.LongestStreak, next.TotalCompleted,
		next.TotalReleased, next.LastCompletedDay, nextBadges, time.Now(), userID,
	)
	if err != nil {
		return engagement.Ledger{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return engagement.Ledger{}, err
	}
	return next, nil
}
