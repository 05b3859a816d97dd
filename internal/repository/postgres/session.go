package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskdo/backend/internal/apperrors"
	"github.com/taskdo/backend/internal/models"
)

type SessionRepo struct {
	DB DBTX
}

const createSession = `-- name: CreateSession
INSERT INTO refresh_sessions (id, user_id, token_hash, created_at, expires_at, revoked_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, token_hash, created_at, expires_at, revoked_at
`

func (r *SessionRepo) Create(ctx context.Context, session models.RefreshSession) (models.RefreshSession, error) {
	rows, _ := r.DB.Query(ctx, createSession,
		session.ID, session.UserID, session.TokenHash,
		session.CreatedAt, session.ExpiresAt, session.RevokedAt,
	)
	created, err := pgx.CollectOneRow(rows, rowToSession)

	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
			return created, fmt.Errorf("repo error: %w", apperrors.ErrForeignKeyViolation)
		default:
			return created, fmt.Errorf("db error: %w", err)
		}
	}

	return created, nil
}

const getActiveSession = `-- name: GetActiveSession
SELECT id, user_id, token_hash, created_at, expires_at, revoked_at
FROM refresh_sessions
WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
`

// GetActive returns the session iff it is neither revoked nor expired.
// Expired rows are filtered here, not purged.
func (r *SessionRepo) GetActive(ctx context.Context, tokenHash string, now time.Time) (models.RefreshSession, error) {
	rows, _ := r.DB.Query(ctx, getActiveSession, tokenHash, now)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrSessionNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const revokeSession = `-- name: RevokeSession
UPDATE refresh_sessions
SET revoked_at = $2
WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
RETURNING id, user_id, token_hash, created_at, expires_at, revoked_at
`

// Revoke marks the active session with the given hash revoked.
// The predicate keeps revocation monotonic and makes racing rotations
// serialize on the row lock: the loser sees zero rows.
func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string, at time.Time) (models.RefreshSession, error) {
	rows, _ := r.DB.Query(ctx, revokeSession, tokenHash, at)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrSessionNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const revokeAllForUser = `-- name: RevokeAllSessionsForUser
UPDATE refresh_sessions
SET revoked_at = $2
WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2
`

func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, revokeAllForUser, userID, at)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rowToSession(row pgx.CollectableRow) (models.RefreshSession, error) {
	var s models.RefreshSession
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt)
	return s, err
}
