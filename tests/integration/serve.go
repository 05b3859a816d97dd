package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/taskdo/backend/internal/handlers"
	"github.com/taskdo/backend/internal/logger"
	"github.com/taskdo/backend/internal/models"
	"github.com/taskdo/backend/internal/repository"
	"github.com/taskdo/backend/internal/repository/postgres"
	"github.com/taskdo/backend/internal/service/auth"
	"github.com/taskdo/backend/internal/service/task"
	"github.com/taskdo/backend/internal/service/user"
)

// Cheap argon2 parameters to keep registration heavy tests fast
var testHasher = auth.NewArgon2Hasher(auth.Argon2Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
})

type Services struct {
	AuthService *auth.AuthService
	UserService *user.UserService
	TaskService *task.TaskService
	Storage     repository.Storage
}

type mailSink struct{}

func (mailSink) EnqueueWelcome(models.User) {}

// RunTx serves the full production router over a db transaction
// (one connection cause one transaction) and rolls it back at test end
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	tx, err := dbpool.Begin(t.Context())
	require.NoError(t, err)
	defer tx.Rollback(t.Context()) // nolint:errcheck

	storage := postgres.NewStorage(tx)

	as, err := auth.NewService(auth.Config{SecretKey: "test-secret", Hasher: testHasher}, storage)
	require.NoError(t, err, "auth service starting error")

	us := user.NewService(storage)
	ts := task.NewService(storage)

	router := handlers.NewRouter(as, us, ts, mailSink{}, logger.NewNoOpLogger())

	srv := httptest.NewServer(router)
	defer srv.Close()

	fn(srv.URL, Services{
		AuthService: as,
		UserService: us,
		TaskService: ts,
		Storage:     storage,
	})
}
