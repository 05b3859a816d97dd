package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/taskdo/backend/internal/apperrors"
	"github.com/taskdo/backend/internal/handlers/render"
	"github.com/taskdo/backend/internal/handlers/userctx"
	"github.com/taskdo/backend/internal/logger"
	"github.com/taskdo/backend/internal/models"
	"github.com/taskdo/backend/internal/service/task"
)

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Done        bool       `json:"done"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toTaskResponse(t models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Done:        t.Done,
		Deadline:    t.Deadline,
		CreatedAt:   t.CreatedAt,
	}
}

// taskID parses the path value. Unparsable ids map to not found so the
// response is the same as for a missing row.
func taskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func handleCreateTask(taskService taskService, l logger.Logger) http.Handler {
	type request struct {
		Title       string     `json:"title" validate:"required,min=1,max=200"`
		Description string     `json:"description" validate:"max=2000"`
		Deadline    *time.Time `json:"deadline"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := taskService.Create(r.Context(), user, task.CreateParams{
			Title:       data.Title,
			Description: data.Description,
			Deadline:    data.Deadline,
		})
		if err != nil {
			l.Error("Failed to create task", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toTaskResponse(created), http.StatusCreated)
	})
}

func handleListTasks(taskService taskService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		tasks, err := taskService.List(r.Context(), user)
		if err != nil {
			l.Error("Failed to list tasks", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		list := make([]taskResponse, 0, len(tasks))
		for _, t := range tasks {
			list = append(list, toTaskResponse(t))
		}
		render.JSON(w, list)
	})
}

func handleGetTask(taskService taskService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := taskID(r)
		if err != nil {
			render.ServiceError(w, "Task not found", http.StatusNotFound)
			return
		}

		t, err := taskService.Get(r.Context(), user, id)
		switch {
		case err == nil:
			render.JSON(w, toTaskResponse(t))
		case errors.Is(err, apperrors.ErrTaskNotFound):
			render.ServiceError(w, "Task not found", http.StatusNotFound)
		default:
			l.Error("Failed to get task", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateTask(taskService taskService, l logger.Logger) http.Handler {
	type request struct {
		Title         *string    `json:"title" validate:"omitempty,min=1,max=200"`
		Description   *string    `json:"description" validate:"omitempty,max=2000"`
		Done          *bool      `json:"done"`
		Deadline      *time.Time `json:"deadline"`
		ClearDeadline bool       `json:"clear_deadline"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := taskID(r)
		if err != nil {
			render.ServiceError(w, "Task not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		t, err := taskService.Update(r.Context(), user, id, task.UpdateParams{
			Title:         data.Title,
			Description:   data.Description,
			Done:          data.Done,
			Deadline:      data.Deadline,
			ClearDeadline: data.ClearDeadline,
		})
		switch {
		case err == nil:
			render.JSON(w, toTaskResponse(t))
		case errors.Is(err, apperrors.ErrTaskNotFound):
			render.ServiceError(w, "Task not found", http.StatusNotFound)
		default:
			l.Error("Failed to update task", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteTask(taskService taskService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := taskID(r)
		if err != nil {
			render.ServiceError(w, "Task not found", http.StatusNotFound)
			return
		}

		err = taskService.Delete(r.Context(), user, id)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrTaskNotFound):
			render.ServiceError(w, "Task not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete task", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
