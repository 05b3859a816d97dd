package apperrors

import (
	"errors"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrIncorrectPassword  = errors.New("incorrect password")

	ErrSessionNotFound     = errors.New("refresh session not found")
	ErrForeignKeyViolation = errors.New("referenced row does not exist")

	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")

	ErrTaskNotFound = errors.New("task not found")
)
