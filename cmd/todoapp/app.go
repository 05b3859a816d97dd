package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/taskdo/backend/internal/db"
	"github.com/taskdo/backend/internal/handlers"
	"github.com/taskdo/backend/internal/logger"
	"github.com/taskdo/backend/internal/repository/postgres"
	"github.com/taskdo/backend/internal/service/auth"
	"github.com/taskdo/backend/internal/service/mailer"
	"github.com/taskdo/backend/internal/service/task"
	"github.com/taskdo/backend/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	mail   *mailer.Notifier
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	log := logger.New(c.Environment, c.LogLevel)

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	authService, err := auth.NewService(auth.Config{
		SecretKey:       c.SecretKey,
		AccessTokenTTL:  c.AccessTokenTTL,
		RefreshTokenTTL: c.RefreshTokenTTL,
	}, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(storage)
	taskService := task.NewService(storage)
	mail := mailer.New(mailer.LogSender{Logger: log}, log)

	mux := handlers.NewRouter(
		authService,
		userService,
		taskService,
		mail,
		log,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     log,
		mail:       mail,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	mailStopped := s.mail.Run(srvCtx)

	idleConnsClosed := make(chan struct{})
	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-mailStopped

	return err
}
