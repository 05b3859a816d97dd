package repository

import (
	"context"
	"time"

	"github.com/taskdo/backend/internal/models"
)

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If a user with the same email exists has to return apperrors.ErrEmailAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by its id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Refresh session repository interface
type SessionRepo interface {
	// Persist a new refresh session
	// If the owning user does not exist must return apperrors.ErrForeignKeyViolation
	Create(ctx context.Context, session models.RefreshSession) (models.RefreshSession, error)

	// Return the session with the given token hash iff it is active at 'now'
	// (not revoked and not expired). Otherwise apperrors.ErrSessionNotFound
	GetActive(ctx context.Context, tokenHash string, now time.Time) (models.RefreshSession, error)

	// Set revoked_at on the single active session with the given token hash
	// Must never overwrite an existing revoked_at and must return
	// apperrors.ErrSessionNotFound if no active session matches
	Revoke(ctx context.Context, tokenHash string, at time.Time) (models.RefreshSession, error)

	// Revoke every active session owned by the user, return how many were revoked
	RevokeAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error)
}

type CreateTaskParams struct {
	UserID      int64
	Title       string
	Description string
	Deadline    *time.Time
}

type UpdateTaskParams struct {
	ID     int64
	UserID int64

	// nil fields keep their stored value
	Title       *string
	Description *string
	Done        *bool
	Deadline    *time.Time

	// ClearDeadline wins over Deadline and sets the column to NULL
	ClearDeadline bool
}

// Task repository interface
// Every operation is scoped to the owning user: a task of another user
// is indistinguishable from a missing one (apperrors.ErrTaskNotFound)
type TaskRepo interface {
	CreateTask(ctx context.Context, arg CreateTaskParams) (models.Task, error)
	GetTask(ctx context.Context, id int64, userID int64) (models.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]models.Task, error)
	UpdateTask(ctx context.Context, arg UpdateTaskParams) (models.Task, error)
	DeleteTask(ctx context.Context, id int64, userID int64) error
}

// Storage aggregates the repositories over one connection source
type Storage interface {
	User() UserRepo
	Session() SessionRepo
	Task() TaskRepo

	// InTx runs fn with a Storage bound to a single transaction.
	// Commits if fn returns nil, rolls back otherwise.
	InTx(ctx context.Context, fn func(Storage) error) error
}
