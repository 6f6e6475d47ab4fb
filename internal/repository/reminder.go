package repository

import (
	"context"
	"time"

	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/models"
)

const reminderColumns = `reminder_id, user_id, enabled, message, description, recurrence_rule,
	 dtstart, remind_at, notified_at, acknowledged_at, last_message_id, tags, created_at`

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminder (user_id, enabled, message, description, recurrence_rule, dtstart, remind_at, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING reminder_id, created_at`,
		reminder.UserID, reminder.Enabled, reminder.Message, reminder.Description,
		reminder.RecurrenceRule, reminder.Dtstart, reminder.RemindAt, reminder.Tags,
	).Scan(&reminder.ReminderID, &reminder.CreatedAt)
}

func (r *ReminderRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminder WHERE user_id = $1
		 ORDER BY remind_at ASC NULLS LAST`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (r *ReminderRepository) GetByID(ctx context.Context, reminderID int, userID int64) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminder WHERE reminder_id = $1 AND user_id = $2`,
		reminderID, userID,
	).Scan(scanReminderTargets(reminder)...)
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// GetPending returns enabled reminders whose fire time has arrived and that
// have not been notified for the current occurrence.
func (r *ReminderRepository) GetPending(ctx context.Context, until time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminder
		 WHERE enabled = true AND remind_at IS NOT NULL AND remind_at <= $1 AND notified_at IS NULL
		 ORDER BY remind_at ASC`,
		until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReminders(rows)
}

// Advance moves a reminder to its next occurrence and clears the
// notification state; a nil next disables one-shot reminders.
func (r *ReminderRepository) Advance(ctx context.Context, reminderID int, next *time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminder SET remind_at = $1, notified_at = NULL, acknowledged_at = NULL,
		 enabled = ($1 IS NOT NULL) WHERE reminder_id = $2`,
		next, reminderID,
	)
	return err
}

func (r *ReminderRepository) SetNotifiedAt(ctx context.Context, reminderID int, at *time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminder SET notified_at = $1 WHERE reminder_id = $2`,
		at, reminderID,
	)
	return err
}

func (r *ReminderRepository) SetAcknowledged(ctx context.Context, reminderID int, userID int64, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminder SET acknowledged_at = $1 WHERE reminder_id = $2 AND user_id = $3`,
		at, reminderID, userID,
	)
	return err
}

func (r *ReminderRepository) SetLastMessageID(ctx context.Context, reminderID int, messageID int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminder SET last_message_id = $1 WHERE reminder_id = $2`,
		messageID, reminderID,
	)
	return err
}

func (r *ReminderRepository) Delete(ctx context.Context, reminderID int, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reminder WHERE reminder_id = $1 AND user_id = $2`,
		reminderID, userID,
	)
	return err
}

func scanReminderTargets(reminder *models.Reminder) []any {
	return []any{
		&reminder.ReminderID, &reminder.UserID, &reminder.Enabled, &reminder.Message,
		&reminder.Description, &reminder.RecurrenceRule, &reminder.Dtstart, &reminder.RemindAt,
		&reminder.NotifiedAt, &reminder.AcknowledgedAt, &reminder.LastMessageID,
		&reminder.Tags, &reminder.CreatedAt,
	}
}

func scanReminders(rows interface {
	Next() bool
	Scan(dest ...any) error
}) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	for rows.Next() {
		reminder := &models.Reminder{}
		if err := rows.Scan(scanReminderTargets(reminder)...); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, nil
}
