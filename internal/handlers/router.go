package handlers

import (
	"context"
	"net/http"

	"github.com/taskdo/backend/internal/handlers/middleware"
	"github.com/taskdo/backend/internal/logger"
	"github.com/taskdo/backend/internal/models"
	"github.com/taskdo/backend/internal/service/task"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	taskService taskService,
	mail mailService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	// Kept under /api/auth so the refresh cookie path covers exactly these routes
	apiauth := http.NewServeMux()
	apiauth.Handle("POST /register", handleRegister(authService, mail, logger))
	apiauth.Handle("POST /login", handleLogin(authService, logger))
	apiauth.Handle("POST /refresh", handleTokenRefresh(authService, logger))
	apiauth.Handle("POST /logout", withAuth(handleLogout(authService, logger)))

	apiusers := http.NewServeMux()
	apiusers.Handle("GET /me", withAuth(handleUserMe()))
	apiusers.Handle("GET /{id}", withAuth(handleUserByID(userService, logger)))

	apitasks := http.NewServeMux()
	apitasks.Handle("POST /{$}", withAuth(handleCreateTask(taskService, logger)))
	apitasks.Handle("GET /{$}", withAuth(handleListTasks(taskService, logger)))
	apitasks.Handle("GET /{id}", withAuth(handleGetTask(taskService, logger)))
	apitasks.Handle("PATCH /{id}", withAuth(handleUpdateTask(taskService, logger)))
	apitasks.Handle("DELETE /{id}", withAuth(handleDeleteTask(taskService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))
	root.Handle("/api/users/", http.StripPrefix("/api/users", apiusers))
	root.Handle("/api/tasks", http.StripPrefix("/api/tasks", apitasks))
	root.Handle("/api/tasks/", http.StripPrefix("/api/tasks", apitasks))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user and start the first session
	// Has to return apperrors.ErrEmailAlreadyExists if the email is taken
	Register(ctx context.Context, name string, email string, password string) (models.User, models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound or apperrors.ErrIncorrectPassword
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Rotate the refresh token: revoke the presented one, issue a new pair
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Revoke every active session of the user
	Logout(ctx context.Context, userID int64) error

	// Set auth tokens (access, refresh) to response
	SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair)

	// Get refresh token from request
	GetRefreshString(r *http.Request) (string, error)

	// Get request and return user if it authenticated or error
	GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error)
}

type userService interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

type taskService interface {
	Create(ctx context.Context, user models.User, arg task.CreateParams) (models.Task, error)
	Get(ctx context.Context, user models.User, id int64) (models.Task, error)
	List(ctx context.Context, user models.User) ([]models.Task, error)
	Update(ctx context.Context, user models.User, id int64, arg task.UpdateParams) (models.Task, error)
	Delete(ctx context.Context, user models.User, id int64) error
}

type mailService interface {
	EnqueueWelcome(user models.User)
}
