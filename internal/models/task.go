package models

import (
	"time"
)

type Task struct {
	ID          int64
	UserID      int64
	CreatedAt   time.Time
	Title       string
	Description string
	Done        bool
	Deadline    *time.Time // nil if the task has no deadline
}
