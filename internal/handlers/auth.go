package handlers

import (
	"errors"
	"net/http"

	"github.com/taskdo/backend/internal/apperrors"
	"github.com/taskdo/backend/internal/handlers/render"
	"github.com/taskdo/backend/internal/handlers/userctx"
	"github.com/taskdo/backend/internal/logger"
)

func handleRegister(authService authService, mail mailService, l logger.Logger) http.Handler {
	type request struct {
		Name     string `json:"name" validate:"required,min=2,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type response struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := authService.Register(r.Context(), data.Name, data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrEmailAlreadyExists):
				render.ServiceError(w, "User with this email already exists", http.StatusConflict)
			default:
				l.Error("Failed to register user", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		mail.EnqueueWelcome(user)

		authService.SetTokenPairToResponse(w, pair)
		render.JSONWithStatus(w, response{ID: user.ID, Name: user.Name, Email: user.Email}, http.StatusCreated)
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrIncorrectPassword):
				render.ServiceError(w, "Incorrect password", http.StatusUnauthorized)
			default:
				l.Error("Failed to login user", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		authService.SetTokenPairToResponse(w, pair)
		render.JSON(w, response{Message: "User logged in successfully"})
	})
}

func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := authService.GetRefreshString(r)
		if err != nil {
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}

		pair, err := authService.Refresh(r.Context(), refresh)
		if err != nil {
			// Same body for every failure kind: expired, revoked, forged or
			// replayed tokens must be indistinguishable to the caller
			l.Info("Refresh rejected", "error", err)
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}

		authService.SetTokenPairToResponse(w, pair)
		render.JSON(w, response{Message: "Tokens refreshed successfully"})
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := authService.Logout(r.Context(), user.ID); err != nil {
			l.Error("Failed to logout user", "error", err, "user_id", user.ID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Message: "All sessions revoked"})
	})
}
