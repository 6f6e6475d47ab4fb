package repository

import (
	"context"
	"time"

	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/models"
)

const settingsColumns = `user_id, quiet_start::text, quiet_end::text, auto_release_days,
	 gentle_reminders, reminders_enabled, daily_summary_enabled, daily_summary_time::text,
	 last_daily_summary_day, last_todo_message_id, updated_at`

type UserSettingsRepository struct {
	db *database.DB
}

func NewUserSettingsRepository(db *database.DB) *UserSettingsRepository {
	return &UserSettingsRepository{db: db}
}

// GetOrCreate retrieves user settings, creating a default row if none
// exists.
func (r *UserSettingsRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING `+settingsColumns,
		userID,
	).Scan(scanSettingsTargets(settings)...)
	if err != nil {
		return nil, err
	}
	normalizeClockStrings(settings)
	return settings, nil
}

func (r *UserSettingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1`,
		userID,
	).Scan(scanSettingsTargets(settings)...)
	if err != nil {
		return nil, err
	}
	normalizeClockStrings(settings)
	return settings, nil
}

func (r *UserSettingsRepository) Update(ctx context.Context, settings *models.UserSettings) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE user_settings SET
		    quiet_start = $1::time,
		    quiet_end = $2::time,
		    auto_release_days = $3,
		    gentle_reminders = $4,
		    reminders_enabled = $5,
		    daily_summary_enabled = $6,
		    daily_summary_time = $7::time,
		    updated_at = $8
		 WHERE user_id = $9`,
		settings.QuietStart,
		settings.QuietEnd,
		settings.AutoReleaseDays,
		settings.GentleReminders,
		settings.RemindersEnabled,
		settings.DailySummaryEnabled,
		settings.DailySummaryTime,
		time.Now(),
		settings.UserID,
	)
	return err
}

func (r *UserSettingsRepository) SetLastDailySummaryDay(ctx context.Context, userID int64, day string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE user_settings SET last_daily_summary_day = $1 WHERE user_id = $2`,
		day, userID,
	)
	return err
}

func (r *UserSettingsRepository) SetLastTodoMessageID(ctx context.Context, userID int64, messageID int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE user_settings SET last_todo_message_id = $1 WHERE user_id = $2`,
		messageID, userID,
	)
	return err
}

func scanSettingsTargets(s *models.UserSettings) []any {
	return []any{
		&s.UserID, &s.QuietStart, &s.QuietEnd, &s.AutoReleaseDays,
		&s.GentleReminders, &s.RemindersEnabled, &s.DailySummaryEnabled,
		&s.DailySummaryTime, &s.LastDailySummaryDay, &s.LastTodoMessageID,
		&s.UpdatedAt,
	}
}

// normalizeClockStrings trims Postgres TIME values ("22:00:00") down to the
// HH:MM form the rest of the code works with.
func normalizeClockStrings(s *models.UserSettings) {
	if len(s.QuietStart) > 5 {
		s.QuietStart = s.QuietStart[:5]
	}
	if len(s.QuietEnd) > 5 {
		s.QuietEnd = s.QuietEnd[:5]
	}
	if len(s.DailySummaryTime) > 5 {
		s.DailySummaryTime = s.DailySummaryTime[:5]
	}
}
