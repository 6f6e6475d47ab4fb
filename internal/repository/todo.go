package repository

import (
	"context"
	"time"

	"github.com/daviskuo/daypulse/internal/database"
	"github.com/daviskuo/daypulse/internal/models"
)

const todoColumns = `todo_id, user_id, title, priority, description, due_time,
	 completed_at, released_at, last_notified_at, tags, created_at`

type TodoRepository struct {
	db *database.DB
}

func NewTodoRepository(db *database.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO todo (user_id, title, priority, description, due_time, tags)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING todo_id, created_at`,
		todo.UserID, todo.Title, todo.Priority, todo.Description, todo.DueTime, todo.Tags,
	).Scan(&todo.TodoID, &todo.CreatedAt)
}

func (r *TodoRepository) GetByID(ctx context.Context, todoID int, userID int64) (*models.Todo, error) {
	todo := &models.Todo{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todo WHERE todo_id = $1 AND user_id = $2`,
		todoID, userID,
	).Scan(scanTargets(todo)...)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// ListOpen returns all open (not completed, not released) todos, most urgent
// first.
func (r *TodoRepository) ListOpen(ctx context.Context, userID int64) ([]*models.Todo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todo
		 WHERE user_id = $1 AND completed_at IS NULL AND released_at IS NULL
		 ORDER BY due_time ASC NULLS LAST, priority DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

// ListDueCandidates returns open todos that carry a due time, in due order.
// This is the reminder engine's input set.
func (r *TodoRepository) ListDueCandidates(ctx context.Context, userID int64) ([]*models.Todo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todo
		 WHERE user_id = $1 AND completed_at IS NULL AND released_at IS NULL AND due_time IS NOT NULL
		 ORDER BY due_time ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE todo SET title = $1, priority = $2, description = $3, due_time = $4, tags = $5
		 WHERE todo_id = $6 AND user_id = $7`,
		todo.Title, todo.Priority, todo.Description, todo.DueTime, todo.Tags, todo.TodoID, todo.UserID,
	)
	return err
}

func (r *TodoRepository) Reschedule(ctx context.Context, todoID int, userID int64, dueTime time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE todo SET due_time = $1, last_notified_at = NULL WHERE todo_id = $2 AND user_id = $3`,
		dueTime, todoID, userID,
	)
	return err
}

func (r *TodoRepository) Complete(ctx context.Context, todoID int, userID int64, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE todo SET completed_at = $1 WHERE todo_id = $2 AND user_id = $3`,
		at, todoID, userID,
	)
	return err
}

func (r *TodoRepository) Uncomplete(ctx context.Context, todoID int, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE todo SET completed_at = NULL WHERE todo_id = $1 AND user_id = $2`,
		todoID, userID,
	)
	return err
}

func (r *TodoRepository) Release(ctx context.Context, todoID int, userID int64, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE todo SET released_at = $1 WHERE todo_id = $2 AND user_id = $3 AND completed_at IS NULL`,
		at, todoID, userID,
	)
	return err
}

func (r *TodoRepository) Delete(ctx context.Context, todoID int, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM todo WHERE todo_id = $1 AND user_id = $2`,
		todoID, userID,
	)
	return err
}

// ListReleaseCandidates returns open todos whose due time passed before the
// cutoff, the input set for the auto-release sweep.
func (r *TodoRepository) ListReleaseCandidates(ctx context.Context, userID int64, cutoff time.Time) ([]*models.Todo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+todoColumns+` FROM todo
		 WHERE user_id = $1 AND completed_at IS NULL AND released_at IS NULL
		 AND due_time IS NOT NULL AND due_time < $2
		 ORDER BY due_time ASC`,
		userID, cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTodos(rows)
}

// CountRemainingToday counts open todos still due within the given civil
// day, bounded by [dayStart, dayEnd).
func (r *TodoRepository) CountRemainingToday(ctx context.Context, userID int64, dayStart, dayEnd time.Time) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM todo
		 WHERE user_id = $1 AND completed_at IS NULL AND released_at IS NULL
		 AND due_time >= $2 AND due_time < $3`,
		userID, dayStart, dayEnd,
	).Scan(&n)
	return n, err
}

// CountOverdue counts open todos whose due time lies before the given
// instant.
func (r *TodoRepository) CountOverdue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM todo
		 WHERE user_id = $1 AND completed_at IS NULL AND released_at IS NULL
		 AND due_time IS NOT NULL AND due_time < $2`,
		userID, now,
	).Scan(&n)
	return n, err
}

func (r *TodoRepository) SetLastNotifiedAt(ctx context.Context, todoIDs []int, at *time.Time) error {
	if len(todoIDs) == 0 {
		return nil
	}
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE todo SET last_notified_at = $1 WHERE todo_id = ANY($2)`,
		at, todoIDs,
	)
	return err
}

func scanTargets(todo *models.Todo) []any {
	return []any{
		&todo.TodoID, &todo.UserID, &todo.Title, &todo.Priority, &todo.Description,
		&todo.DueTime, &todo.CompletedAt, &todo.ReleasedAt, &todo.LastNotifiedAt,
		&todo.Tags, &todo.CreatedAt,
	}
}

func scanTodos(rows interface {
	Next() bool
	Scan(dest ...any) error
}) ([]*models.Todo, error) {
	var todos []*models.Todo
	for rows.Next() {
		todo := &models.Todo{}
		if err := rows.Scan(scanTargets(todo)...); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, nil
}
