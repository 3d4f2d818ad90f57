package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/preptrack/preptrack-api/internal/config"
	"github.com/preptrack/preptrack-api/internal/events"
	"github.com/preptrack/preptrack-api/internal/platform/postgres"
	"github.com/preptrack/preptrack-api/internal/service/auth"
	"github.com/preptrack/preptrack-api/internal/service/dashboard"
	"github.com/preptrack/preptrack-api/internal/service/progress"
	"github.com/preptrack/preptrack-api/internal/store"
)

// application holds the server's wired dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	subjectStore  store.SubjectStore
	topicStore    store.TopicStore
	subtopicStore store.SubtopicStore
	activityStore store.ActivityStore

	jwtService       auth.JWTService
	progressService  progress.ProgressService
	dashboardService dashboard.DashboardService
}

// newApplication connects to the database, applies pending migrations, and
// wires the stores and services together.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	subjectStore := postgres.NewPostgresSubjectStore(db, logger)
	topicStore := postgres.NewPostgresTopicStore(db, logger)
	subtopicStore := postgres.NewPostgresSubtopicStore(db, logger)
	activityStore := postgres.NewPostgresActivityStore(db, logger)

	eventEmitter := events.NewInMemoryEventEmitter(logger)
	eventEmitter.RegisterHandler(events.NewSlogNotificationHandler(logger))

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	progressService := progress.NewProgressService(
		db, subtopicStore, activityStore, eventEmitter, logger)
	dashboardService := dashboard.NewDashboardService(
		subjectStore, topicStore, subtopicStore, activityStore, logger)

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		subjectStore:     subjectStore,
		topicStore:       topicStore,
		subtopicStore:    subtopicStore,
		activityStore:    activityStore,
		jwtService:       jwtService,
		progressService:  progressService,
		dashboardService: dashboardService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		closeDatabase(app.db, app.logger)
		app.db = nil
	}
}

func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database connection", "error", err)
	}
}
