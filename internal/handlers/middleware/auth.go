package middleware

import (
	"context"
	"net/http"

	"github.com/taskdo/backend/internal/handlers/render"
	"github.com/taskdo/backend/internal/handlers/userctx"
	"github.com/taskdo/backend/internal/models"
)

type authService interface {
	GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error)
}

// Authenticate the request and put the user into the request context.
// Requests without a valid access token are rejected with 401.
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.GetUserFromRequest(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
