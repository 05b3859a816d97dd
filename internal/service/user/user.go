package user

import (
	"context"

	"github.com/taskdo/backend/internal/models"
	"github.com/taskdo/backend/internal/repository"
)

// UserService reads user records. Creation goes through the auth service,
// which owns password hashing.
type UserService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *UserService {
	return &UserService{storage: storage}
}

// GetByID returns the user or apperrors.ErrUserNotFound
func (s *UserService) GetByID(ctx context.Context, id int64) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, id)
}

// GetByEmail returns the user or apperrors.ErrUserNotFound
func (s *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.storage.User().GetUserByEmail(ctx, email)
}
