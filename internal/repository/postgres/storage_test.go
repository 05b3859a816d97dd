package postgres_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdo/backend/internal/apperrors"
	"github.com/taskdo/backend/internal/models"
	"github.com/taskdo/backend/internal/repository"
	"github.com/taskdo/backend/internal/repository/postgres"
	"github.com/taskdo/backend/internal/testutil"
)

func Test_Storage_InTx(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newSession := func(userID int64, hash string) models.RefreshSession {
		now := time.Now().Truncate(time.Second)
		return models.RefreshSession{
			ID:        uuid.New(),
			UserID:    userID,
			TokenHash: hash,
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		}
	}

	t.Run("commits on nil", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := testutil.CreateUser(t, tx, "Tom", "tom@example.com", "hash")
			storage := postgres.NewStorage(tx)

			err := storage.InTx(t.Context(), func(s repository.Storage) error {
				_, err := s.Session().Create(t.Context(), newSession(user.ID, "committed"))
				return err
			})

			require.NoError(t, err)

			_, err = storage.Session().GetActive(t.Context(), "committed", time.Now())
			assert.NoError(t, err, "work done by a successful InTx must be visible")
		})
	})

	t.Run("rolls back on error", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := testutil.CreateUser(t, tx, "Tom", "tom@example.com", "hash")
			storage := postgres.NewStorage(tx)
			session := newSession(user.ID, "rolled-back")

			_, err := storage.Session().Create(t.Context(), session)
			require.NoError(t, err)

			boom := errors.New("boom")
			err = storage.InTx(t.Context(), func(s repository.Storage) error {
				// revoke succeeds inside the transaction, then the whole
				// unit fails: partial application must not survive
				if _, err := s.Session().Revoke(t.Context(), session.TokenHash, time.Now()); err != nil {
					return err
				}
				return boom
			})
			require.ErrorIs(t, err, boom)

			_, err = storage.Session().GetActive(t.Context(), session.TokenHash, time.Now())
			assert.NoError(t, err, "the revoke must have been rolled back with the failed transaction")
		})
	})

	t.Run("translated errors pass through", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			err := storage.InTx(t.Context(), func(s repository.Storage) error {
				_, err := s.Session().Revoke(t.Context(), "no-such-hash", time.Now())
				return err
			})

			require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
		})
	})
}
