package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/platform/logger"
	"github.com/preptrack/preptrack-api/internal/store"
)

// subtopicColumns is the column list shared by every subtopic read. Status
// and the revision checklist live on one row so a single UPDATE keeps them
// atomic.
const subtopicColumns = `
	st.id, st.topic_id, st.name, st.position, st.status,
	st.learned, st.learned_at,
	st.revised1, st.revised1_at,
	st.revised2, st.revised2_at,
	st.revised3, st.revised3_at,
	st.final_revised, st.final_revised_at,
	st.last_revised_at,
	st.created_at, st.updated_at`

// PostgresSubtopicStore implements the store.SubtopicStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSubtopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubtopicStore creates a new PostgreSQL implementation of the SubtopicStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSubtopicStore(db store.DBTX, logger *slog.Logger) *PostgresSubtopicStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubtopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "subtopic_store")),
	}
}

// Ensure PostgresSubtopicStore implements store.SubtopicStore interface
var _ store.SubtopicStore = (*PostgresSubtopicStore)(nil)

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type scanner interface {
	Scan(dest ...any) error
}

func scanSubtopic(sc scanner, extra ...any) (*domain.Subtopic, error) {
	var subtopic domain.Subtopic
	dest := []any{
		&subtopic.ID,
		&subtopic.TopicID,
		&subtopic.Name,
		&subtopic.Position,
		&subtopic.Status,
		&subtopic.Revision.Learned,
		&subtopic.Revision.LearnedAt,
		&subtopic.Revision.Revised1,
		&subtopic.Revision.Revised1At,
		&subtopic.Revision.Revised2,
		&subtopic.Revision.Revised2At,
		&subtopic.Revision.Revised3,
		&subtopic.Revision.Revised3At,
		&subtopic.Revision.FinalRevised,
		&subtopic.Revision.FinalRevisedAt,
		&subtopic.Revision.LastRevisedAt,
		&subtopic.CreatedAt,
		&subtopic.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	return &subtopic, nil
}

// Create implements store.SubtopicStore.Create
func (s *PostgresSubtopicStore) Create(ctx context.Context, subtopic *domain.Subtopic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subtopic.Validate(); err != nil {
		log.Warn("subtopic validation failed during create",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopic.ID.String()))
		return err
	}

	query := `
		INSERT INTO subtopics (
			id, topic_id, name, position, status,
			learned, learned_at,
			revised1, revised1_at,
			revised2, revised2_at,
			revised3, revised3_at,
			final_revised, final_revised_at,
			last_revised_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		subtopic.ID,
		subtopic.TopicID,
		subtopic.Name,
		subtopic.Position,
		subtopic.Status,
		subtopic.Revision.Learned,
		subtopic.Revision.LearnedAt,
		subtopic.Revision.Revised1,
		subtopic.Revision.Revised1At,
		subtopic.Revision.Revised2,
		subtopic.Revision.Revised2At,
		subtopic.Revision.Revised3,
		subtopic.Revision.Revised3At,
		subtopic.Revision.FinalRevised,
		subtopic.Revision.FinalRevisedAt,
		subtopic.Revision.LastRevisedAt,
		subtopic.CreatedAt,
		subtopic.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create subtopic",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopic.ID.String()))
		return MapError(err)
	}

	log.Debug("subtopic created",
		slog.String("subtopic_id", subtopic.ID.String()),
		slog.String("name", subtopic.Name))
	return nil
}

// GetByID implements store.SubtopicStore.GetByID
// Returns store.ErrSubtopicNotFound if the subtopic does not exist.
func (s *PostgresSubtopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + subtopicColumns + `
		FROM subtopics st
		WHERE st.id = $1
	`

	subtopic, err := scanSubtopic(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subtopic not found", slog.String("subtopic_id", id.String()))
			return nil, store.ErrSubtopicNotFound
		}
		log.Error("failed to get subtopic by ID",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", id.String()))
		return nil, MapError(err)
	}

	return subtopic, nil
}

// GetRecordForUpdate implements store.SubtopicStore.GetRecordForUpdate
// It joins up to the owning subject and locks the subtopic row with
// SELECT FOR UPDATE. Must be called within a transaction.
// Returns store.ErrSubtopicNotFound if the subtopic does not exist.
func (s *PostgresSubtopicStore) GetRecordForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*store.SubtopicRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + subtopicColumns + `,
			s.id, s.name, s.user_id, s.track, s.department
		FROM subtopics st
		JOIN topics t ON t.id = st.topic_id
		JOIN subjects s ON s.id = t.subject_id
		WHERE st.id = $1
		FOR UPDATE OF st
	`

	record := &store.SubtopicRecord{}
	subtopic, err := scanSubtopic(
		s.db.QueryRowContext(ctx, query, id),
		&record.SubjectID,
		&record.SubjectName,
		&record.Scope.UserID,
		&record.Scope.Track,
		&record.Scope.Department,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("subtopic not found for update", slog.String("subtopic_id", id.String()))
			return nil, store.ErrSubtopicNotFound
		}
		log.Error("failed to lock subtopic for update",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", id.String()))
		return nil, MapError(err)
	}

	record.Subtopic = subtopic
	return record, nil
}

// Update implements store.SubtopicStore.Update
// Status and the whole revision checklist are written in one statement so a
// concurrent reader never sees them out of sync.
// Returns store.ErrSubtopicNotFound if the subtopic does not exist.
func (s *PostgresSubtopicStore) Update(ctx context.Context, subtopic *domain.Subtopic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subtopic.Validate(); err != nil {
		log.Warn("subtopic validation failed during update",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopic.ID.String()))
		return err
	}

	query := `
		UPDATE subtopics
		SET name = $1,
			position = $2,
			status = $3,
			learned = $4, learned_at = $5,
			revised1 = $6, revised1_at = $7,
			revised2 = $8, revised2_at = $9,
			revised3 = $10, revised3_at = $11,
			final_revised = $12, final_revised_at = $13,
			last_revised_at = $14,
			updated_at = $15
		WHERE id = $16
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		subtopic.Name,
		subtopic.Position,
		subtopic.Status,
		subtopic.Revision.Learned,
		subtopic.Revision.LearnedAt,
		subtopic.Revision.Revised1,
		subtopic.Revision.Revised1At,
		subtopic.Revision.Revised2,
		subtopic.Revision.Revised2At,
		subtopic.Revision.Revised3,
		subtopic.Revision.Revised3At,
		subtopic.Revision.FinalRevised,
		subtopic.Revision.FinalRevisedAt,
		subtopic.Revision.LastRevisedAt,
		subtopic.UpdatedAt,
		subtopic.ID,
	)

	if err != nil {
		log.Error("failed to update subtopic",
			slog.String("error", err.Error()),
			slog.String("subtopic_id", subtopic.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUpdateFailed, err)
	}
	if rowsAffected == 0 {
		return store.ErrSubtopicNotFound
	}

	log.Debug("subtopic updated",
		slog.String("subtopic_id", subtopic.ID.String()),
		slog.String("status", subtopic.Status.String()))
	return nil
}

// ListRecordsByScope implements store.SubtopicStore.ListRecordsByScope
func (s *PostgresSubtopicStore) ListRecordsByScope(
	ctx context.Context,
	scope domain.Scope,
) ([]*store.SubtopicRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + subtopicColumns + `,
			s.id, s.name, s.user_id, s.track, s.department
		FROM subtopics st
		JOIN topics t ON t.id = st.topic_id
		JOIN subjects s ON s.id = t.subject_id
		WHERE s.user_id = $1 AND s.track = $2 AND s.department = $3
		ORDER BY s.position, s.created_at, t.position, st.position
	`

	rows, err := s.db.QueryContext(ctx, query, scope.UserID, scope.Track, scope.Department)
	if err != nil {
		log.Error("failed to list subtopics",
			slog.String("error", err.Error()),
			slog.String("user_id", scope.UserID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var records []*store.SubtopicRecord
	for rows.Next() {
		record := &store.SubtopicRecord{}
		subtopic, err := scanSubtopic(
			rows,
			&record.SubjectID,
			&record.SubjectName,
			&record.Scope.UserID,
			&record.Scope.Track,
			&record.Scope.Department,
		)
		if err != nil {
			return nil, MapError(err)
		}
		record.Subtopic = subtopic
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// WithTx implements store.SubtopicStore.WithTx
func (s *PostgresSubtopicStore) WithTx(tx *sql.Tx) store.SubtopicStore {
	return &PostgresSubtopicStore{
		db:     tx,
		logger: s.logger,
	}
}
