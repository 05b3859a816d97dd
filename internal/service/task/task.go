package task

import (
	"context"
	"time"

	"github.com/taskdo/backend/internal/models"
	"github.com/taskdo/backend/internal/repository"
)

type CreateParams struct {
	Title       string
	Description string
	Deadline    *time.Time
}

type UpdateParams struct {
	Title         *string
	Description   *string
	Done          *bool
	Deadline      *time.Time
	ClearDeadline bool
}

// TaskService is the task CRUD, always scoped to the acting user
type TaskService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *TaskService {
	return &TaskService{storage: storage}
}

func (s *TaskService) Create(ctx context.Context, user models.User, arg CreateParams) (models.Task, error) {
	return s.storage.Task().CreateTask(ctx, repository.CreateTaskParams{
		UserID:      user.ID,
		Title:       arg.Title,
		Description: arg.Description,
		Deadline:    arg.Deadline,
	})
}

// Get returns the user's task or apperrors.ErrTaskNotFound.
// A task owned by somebody else is a not-found, not a permission error.
func (s *TaskService) Get(ctx context.Context, user models.User, id int64) (models.Task, error) {
	return s.storage.Task().GetTask(ctx, id, user.ID)
}

func (s *TaskService) List(ctx context.Context, user models.User) ([]models.Task, error) {
	return s.storage.Task().ListTasks(ctx, user.ID)
}

func (s *TaskService) Update(ctx context.Context, user models.User, id int64, arg UpdateParams) (models.Task, error) {
	return s.storage.Task().UpdateTask(ctx, repository.UpdateTaskParams{
		ID:            id,
		UserID:        user.ID,
		Title:         arg.Title,
		Description:   arg.Description,
		Done:          arg.Done,
		Deadline:      arg.Deadline,
		ClearDeadline: arg.ClearDeadline,
	})
}

func (s *TaskService) Delete(ctx context.Context, user models.User, id int64) error {
	return s.storage.Task().DeleteTask(ctx, id, user.ID)
}
