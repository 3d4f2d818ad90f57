package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/platform/logger"
	"github.com/preptrack/preptrack-api/internal/store"
)

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the ActivityStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore interface
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// Increment implements store.ActivityStore.Increment
// The upsert-and-add is one statement, so concurrent completions for the
// same scope and day serialize inside PostgreSQL instead of losing updates
// to a read-modify-write race.
func (s *PostgresActivityStore) Increment(
	ctx context.Context,
	scope domain.Scope,
	date time.Time,
	delta int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	day := domain.DateOnly(date)
	now := time.Now().UTC()

	query := `
		INSERT INTO daily_activity (
			id, user_id, track, department, activity_date,
			subtopics_completed, time_spent_minutes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7)
		ON CONFLICT (user_id, track, department, activity_date)
		DO UPDATE SET
			subtopics_completed = daily_activity.subtopics_completed + EXCLUDED.subtopics_completed,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		uuid.New(),
		scope.UserID,
		scope.Track,
		scope.Department,
		day,
		delta,
		now,
	)

	if err != nil {
		log.Error("failed to increment daily activity",
			slog.String("error", err.Error()),
			slog.String("user_id", scope.UserID.String()),
			slog.Time("date", day))
		return MapError(err)
	}

	log.Debug("daily activity incremented",
		slog.String("user_id", scope.UserID.String()),
		slog.Time("date", day),
		slog.Int("delta", delta))
	return nil
}

// Range implements store.ActivityStore.Range
func (s *PostgresActivityStore) Range(
	ctx context.Context,
	scope domain.Scope,
	from, to time.Time,
) ([]*domain.DailyActivity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, track, department, activity_date,
			subtopics_completed, time_spent_minutes, created_at, updated_at
		FROM daily_activity
		WHERE user_id = $1 AND track = $2 AND department = $3
			AND activity_date BETWEEN $4 AND $5
		ORDER BY activity_date
	`

	rows, err := s.db.QueryContext(
		ctx,
		query,
		scope.UserID,
		scope.Track,
		scope.Department,
		domain.DateOnly(from),
		domain.DateOnly(to),
	)
	if err != nil {
		log.Error("failed to query daily activity range",
			slog.String("error", err.Error()),
			slog.String("user_id", scope.UserID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.DailyActivity
	for rows.Next() {
		var entry domain.DailyActivity
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Track,
			&entry.Department,
			&entry.Date,
			&entry.SubtopicsCompleted,
			&entry.TimeSpentMinutes,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}
