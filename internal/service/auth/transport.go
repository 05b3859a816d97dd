package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/taskdo/backend/internal/apperrors"
	"github.com/taskdo/backend/internal/models"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/auth"
)

// SetTokenPairToResponse writes the access token to the Authorization header
// and the refresh token to an HttpOnly cookie scoped to the auth endpoints
func (s *AuthService) SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair) {
	w.Header().Set("Authorization", "Bearer "+pair.Access.Value)

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     refreshCookiePath,
		Expires:  pair.Refresh.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetTokenPairToRequest mirrors SetTokenPairToResponse for outgoing requests.
// Meant for tests and internal clients.
func (s *AuthService) SetTokenPairToRequest(r *http.Request, pair models.TokenPair) {
	r.Header.Set("Authorization", "Bearer "+pair.Access.Value)
	r.AddCookie(&http.Cookie{
		Name:  refreshCookieName,
		Value: pair.Refresh.Value,
		Path:  refreshCookiePath,
	})
}

// GetRefreshString extracts the raw refresh token from the request cookie
func (s *AuthService) GetRefreshString(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return "", fmt.Errorf("no refresh cookie: %w", apperrors.ErrTokenInvalid)
	}

	return cookie.Value, nil
}

// GetUserFromRequest authenticates the request by its bearer access token
// and loads the acting user
func (s *AuthService) GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return models.User{}, fmt.Errorf("no bearer token: %w", apperrors.ErrTokenInvalid)
	}

	userID, err := s.ParseAccess(raw)
	if err != nil {
		return models.User{}, err
	}

	return s.storage.User().GetUserByID(ctx, userID)
}
