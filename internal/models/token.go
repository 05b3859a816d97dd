package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is one issuance of a refresh token.
// TokenHash is the sha256 hex digest of the raw token; the raw token itself
// is handed to the client once and never stored.
type RefreshSession struct {
	ID        uuid.UUID
	UserID    int64
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time // nil while the session is not revoked
}

// Active reports whether the session may still be exchanged at the given moment.
func (s RefreshSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by the auth service on login, register or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
