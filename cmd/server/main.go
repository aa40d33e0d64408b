package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "pollsite/docs"
	"pollsite/internal/clock"
	"pollsite/internal/config"
	"pollsite/internal/domain/question"
	"pollsite/internal/domain/user"
	api "pollsite/internal/http"
	"pollsite/internal/metrics"
	"pollsite/internal/platform/database"
	jwtpkg "pollsite/internal/platform/jwt"
	"pollsite/internal/repository/postgres"
	"pollsite/internal/worker"
)

// @title           Polls API
// @version         1.0
// @description     Questions go live at their publication time; visitors vote and read results.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	api.SetLogger(logger)
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.DB_DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.MigrateUp(db.DB); err != nil {
			return err
		}
		logger.Info("database schema up to date")
	}

	userSvc := user.NewService(postgres.NewUserRepo(db))
	questionSvc := question.NewService(postgres.NewQuestionRepo(db), clock.Real{})

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin, err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		logger.Info("administrator ready", "email", admin.Email, "id", admin.ID)
	}

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	voteCh := make(chan worker.VoteEvent, 100)
	statsWorker := worker.NewStatsWorker(voteCh, logger.With("component", "stats_worker"))
	go statsWorker.Run(ctx)

	router := api.NewRouter(questionSvc, userSvc, jwtMgr, voteCh, db, api.VoteLimit{
		PerMinute: cfg.VoteRatePerMinute,
		Burst:     cfg.VoteBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
