package repository

import (
	"context"
	"time"

	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/models"
)

const eventColumns = `event_id, user_id, title, description, dtstart, duration, next_occurrence,
	 notification_minutes, notified_at, recurrence_rule, tags, created_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO event (user_id, title, description, dtstart, duration, next_occurrence,
		 notification_minutes, recurrence_rule, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING event_id, created_at`,
		event.UserID, event.Title, event.Description, event.Dtstart, event.Duration,
		event.NextOccurrence, event.NotificationMinutes, event.RecurrenceRule, event.Tags,
	).Scan(&event.EventID, &event.CreatedAt)
}

func (r *EventRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event WHERE user_id = $1
		 ORDER BY next_occurrence ASC NULLS LAST`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) GetByID(ctx context.Context, eventID int, userID int64) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM event WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(scanEventTargets(event)...)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// GetInRange returns events whose next occurrence falls within
// [start, end), the calendar view's query.
func (r *EventRepository) GetInRange(ctx context.Context, userID int64, start, end time.Time) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event
		 WHERE user_id = $1 AND next_occurrence >= $2 AND next_occurrence < $3
		 ORDER BY next_occurrence ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetDueForNotification returns events entering their notification lead
// window that have not been announced yet.
func (r *EventRepository) GetDueForNotification(ctx context.Context, now time.Time) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event
		 WHERE next_occurrence IS NOT NULL AND notified_at IS NULL
		   AND next_occurrence - (notification_minutes || ' minutes')::interval <= $1
		 ORDER BY next_occurrence ASC`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// SetNotifiedAt marks an event as announced for its current occurrence.
func (r *EventRepository) SetNotifiedAt(ctx context.Context, eventID int, at *time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET notified_at = $1 WHERE event_id = $2`,
		at, eventID,
	)
	return err
}

// GetPassed returns events whose next occurrence lies in the past, so the
// scheduler can roll recurring ones forward.
func (r *EventRepository) GetPassed(ctx context.Context, now time.Time) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM event
		 WHERE next_occurrence IS NOT NULL AND next_occurrence <= $1
		 ORDER BY next_occurrence ASC`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET title = $1, description = $2, dtstart = $3, duration = $4,
		 next_occurrence = $5, notification_minutes = $6, recurrence_rule = $7, tags = $8
		 WHERE event_id = $9 AND user_id = $10`,
		event.Title, event.Description, event.Dtstart, event.Duration, event.NextOccurrence,
		event.NotificationMinutes, event.RecurrenceRule, event.Tags, event.EventID, event.UserID,
	)
	return err
}

func (r *EventRepository) UpdateNextOccurrence(ctx context.Context, eventID int, next *time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET next_occurrence = $1, notified_at = NULL WHERE event_id = $2`,
		next, eventID,
	)
	return err
}

func (r *EventRepository) Delete(ctx context.Context, eventID int, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM event WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	return err
}

func scanEventTargets(event *models.Event) []any {
	return []any{
		&event.EventID, &event.UserID, &event.Title, &event.Description, &event.Dtstart,
		&event.Duration, &event.NextOccurrence, &event.NotificationMinutes,
		&event.NotifiedAt, &event.RecurrenceRule, &event.Tags, &event.CreatedAt,
	}
}

func scanEvents(rows interface {
	Next() bool
	Scan(dest ...any) error
}) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(scanEventTargets(event)...); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
