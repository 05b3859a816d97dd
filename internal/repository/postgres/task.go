package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taskdo/backend/internal/apperrors"
	"github.com/taskdo/backend/internal/models"
	"github.com/taskdo/backend/internal/repository"
)

type TaskRepo struct {
	DB DBTX
}

const createTask = `-- name: CreateTask
INSERT INTO tasks (user_id, title, description, deadline)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, created_at, title, description, done, deadline
`

func (r *TaskRepo) CreateTask(ctx context.Context, arg repository.CreateTaskParams) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, createTask, arg.UserID, arg.Title, arg.Description, arg.Deadline)
	task, err := pgx.CollectOneRow(rows, rowToTask)
	if err != nil {
		return task, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

const getTask = `-- name: GetTask
SELECT id, user_id, created_at, title, description, done, deadline
FROM tasks
WHERE id = $1 AND user_id = $2
`

func (r *TaskRepo) GetTask(ctx context.Context, id int64, userID int64) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, getTask, id, userID)
	task, err := pgx.CollectOneRow(rows, rowToTask)

	switch {
	case err == nil:
		return task, nil
	case errors.Is(err, pgx.ErrNoRows):
		return task, fmt.Errorf("repo error: %w", apperrors.ErrTaskNotFound)
	default:
		return task, fmt.Errorf("db error: %w", err)
	}
}

const listTasks = `-- name: ListTasks
SELECT id, user_id, created_at, title, description, done, deadline
FROM tasks
WHERE user_id = $1
ORDER BY created_at, id
`

func (r *TaskRepo) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	rows, _ := r.DB.Query(ctx, listTasks, userID)
	tasks, err := pgx.CollectRows(rows, rowToTask)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tasks, nil
}

const updateTask = `-- name: UpdateTask
UPDATE tasks
SET title       = COALESCE($3, title),
    description = COALESCE($4, description),
    done        = COALESCE($5, done),
    deadline    = CASE
                      WHEN $7 THEN NULL
                      WHEN $6::timestamptz IS NOT NULL THEN $6
                      ELSE deadline
                  END
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, created_at, title, description, done, deadline
`

func (r *TaskRepo) UpdateTask(ctx context.Context, arg repository.UpdateTaskParams) (models.Task, error) {
	rows, _ := r.DB.Query(ctx, updateTask,
		arg.ID, arg.UserID,
		arg.Title, arg.Description, arg.Done,
		arg.Deadline, arg.ClearDeadline,
	)
	task, err := pgx.CollectOneRow(rows, rowToTask)

	switch {
	case err == nil:
		return task, nil
	case errors.Is(err, pgx.ErrNoRows):
		return task, fmt.Errorf("repo error: %w", apperrors.ErrTaskNotFound)
	default:
		return task, fmt.Errorf("db error: %w", err)
	}
}

const deleteTask = `-- name: DeleteTask
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`

func (r *TaskRepo) DeleteTask(ctx context.Context, id int64, userID int64) error {
	tag, err := r.DB.Exec(ctx, deleteTask, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrTaskNotFound)
	}

	return nil
}

func rowToTask(row pgx.CollectableRow) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.Title, &t.Description, &t.Done, &t.Deadline)
	return t, err
}
