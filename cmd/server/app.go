package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskcycle/taskcycle-api/internal/config"
	"github.com/taskcycle/taskcycle-api/internal/domain/recur"
	"github.com/taskcycle/taskcycle-api/internal/platform/logger"
	"github.com/taskcycle/taskcycle-api/internal/platform/postgres"
	"github.com/taskcycle/taskcycle-api/internal/scheduler"
	"github.com/taskcycle/taskcycle-api/internal/service/auth"
	"github.com/taskcycle/taskcycle-api/internal/service/taskgen"
	"github.com/taskcycle/taskcycle-api/internal/store"
)

// application holds the wired dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	recurService     recur.Service
	generator        *taskgen.Generator
	scheduler        *scheduler.Scheduler
}

// newApplication loads configuration and wires every component the server
// needs, failing fast on any misconfiguration.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Int("horizon_days", cfg.Scheduler.HorizonDays))

	db, err := openDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	taskStore := postgres.NewPostgresTaskStore(db, log)
	recurService := recur.NewDefaultService()
	generator := taskgen.NewGenerator(taskStore, taskgen.NewSQLTxManager(db), recurService)

	sched, err := scheduler.New(cfg.Scheduler, generator, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &application{
		config:           cfg,
		logger:           log,
		db:               db,
		userStore:        postgres.NewPostgresUserStore(db, log),
		taskStore:        taskStore,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		recurService:     recurService,
		generator:        generator,
		scheduler:        sched,
	}, nil
}

// cleanup releases the application's resources during shutdown.
func (app *application) cleanup() {
	app.scheduler.Stop()
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}
