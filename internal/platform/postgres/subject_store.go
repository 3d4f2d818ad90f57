package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/platform/logger"
	"github.com/preptrack/preptrack-api/internal/store"
)

// PostgresSubjectStore implements the store.SubjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSubjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubjectStore creates a new PostgreSQL implementation of the SubjectStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSubjectStore(db store.DBTX, logger *slog.Logger) *PostgresSubjectStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "subject_store")),
	}
}

// Ensure PostgresSubjectStore implements store.SubjectStore interface
var _ store.SubjectStore = (*PostgresSubjectStore)(nil)

// Create implements store.SubjectStore.Create
func (s *PostgresSubjectStore) Create(ctx context.Context, subject *domain.Subject) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subject.Validate(); err != nil {
		log.Warn("subject validation failed during create",
			slog.String("error", err.Error()),
			slog.String("subject_id", subject.ID.String()))
		return err
	}

	query := `
		INSERT INTO subjects (id, user_id, track, department, name, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		subject.ID,
		subject.UserID,
		subject.Track,
		subject.Department,
		subject.Name,
		subject.Position,
		subject.CreatedAt,
		subject.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create subject",
			slog.String("error", err.Error()),
			slog.String("subject_id", subject.ID.String()),
			slog.String("user_id", subject.UserID.String()))
		return MapError(err)
	}

	log.Debug("subject created",
		slog.String("subject_id", subject.ID.String()),
		slog.String("name", subject.Name))
	return nil
}

// GetByID implements store.SubjectStore.GetByID
// Returns store.ErrSubjectNotFound if the subject does not exist.
func (s *PostgresSubjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, track, department, name, position, created_at, updated_at
		FROM subjects
		WHERE id = $1
	`

	var subject domain.Subject
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&subject.ID,
		&subject.UserID,
		&subject.Track,
		&subject.Department,
		&subject.Name,
		&subject.Position,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subject not found", slog.String("subject_id", id.String()))
			return nil, store.ErrSubjectNotFound
		}
		log.Error("failed to get subject by ID",
			slog.String("error", err.Error()),
			slog.String("subject_id", id.String()))
		return nil, MapError(err)
	}

	return &subject, nil
}

// ListByScope implements store.SubjectStore.ListByScope
// Subjects are ordered by position, then creation time, which gives the
// aggregator its stable tie-break order.
func (s *PostgresSubjectStore) ListByScope(
	ctx context.Context,
	scope domain.Scope,
) ([]*domain.Subject, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, track, department, name, position, created_at, updated_at
		FROM subjects
		WHERE user_id = $1 AND track = $2 AND department = $3
		ORDER BY position, created_at
	`

	rows, err := s.db.QueryContext(ctx, query, scope.UserID, scope.Track, scope.Department)
	if err != nil {
		log.Error("failed to list subjects",
			slog.String("error", err.Error()),
			slog.String("user_id", scope.UserID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []*domain.Subject
	for rows.Next() {
		var subject domain.Subject
		if err := rows.Scan(
			&subject.ID,
			&subject.UserID,
			&subject.Track,
			&subject.Department,
			&subject.Name,
			&subject.Position,
			&subject.CreatedAt,
			&subject.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		subjects = append(subjects, &subject)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return subjects, nil
}

// WithTx implements store.SubjectStore.WithTx
func (s *PostgresSubjectStore) WithTx(tx *sql.Tx) store.SubjectStore {
	return &PostgresSubjectStore{
		db:     tx,
		logger: s.logger,
	}
}

// PostgresTopicStore implements the store.TopicStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicStore creates a new PostgreSQL implementation of the TopicStore interface.
func NewPostgresTopicStore(db store.DBTX, logger *slog.Logger) *PostgresTopicStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_store")),
	}
}

// Ensure PostgresTopicStore implements store.TopicStore interface
var _ store.TopicStore = (*PostgresTopicStore)(nil)

// Create implements store.TopicStore.Create
func (s *PostgresTopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := topic.Validate(); err != nil {
		log.Warn("topic validation failed during create",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	query := `
		INSERT INTO topics (id, subject_id, name, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		topic.ID,
		topic.SubjectID,
		topic.Name,
		topic.Position,
		topic.CreatedAt,
		topic.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TopicStore.GetByID
// Returns store.ErrTopicNotFound if the topic does not exist.
func (s *PostgresTopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	query := `
		SELECT id, subject_id, name, position, created_at, updated_at
		FROM topics
		WHERE id = $1
	`

	var topic domain.Topic
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&topic.ID,
		&topic.SubjectID,
		&topic.Name,
		&topic.Position,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTopicNotFound
		}
		return nil, MapError(err)
	}

	return &topic, nil
}

// CountByScope implements store.TopicStore.CountByScope
func (s *PostgresTopicStore) CountByScope(ctx context.Context, scope domain.Scope) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM topics t
		JOIN subjects s ON s.id = t.subject_id
		WHERE s.user_id = $1 AND s.track = $2 AND s.department = $3
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, scope.UserID, scope.Track, scope.Department).
		Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.TopicStore.WithTx
func (s *PostgresTopicStore) WithTx(tx *sql.Tx) store.TopicStore {
	return &PostgresTopicStore{
		db:     tx,
		logger: s.logger,
	}
}
