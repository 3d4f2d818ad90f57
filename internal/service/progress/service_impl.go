package progress

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/domain/revision"
	"github.com/preptrack/preptrack-api/internal/events"
	"github.com/preptrack/preptrack-api/internal/platform/logger"
	"github.com/preptrack/preptrack-api/internal/store"
)

// Verify interface compliance at compile time
var _ ProgressService = (*progressServiceImpl)(nil)

// transitionFn applies a pure state transition to a locked record.
type transitionFn func(subtopic *domain.Subtopic, subjectName string) (*domain.Subtopic, revision.SideEffects, error)

// progressServiceImpl implements the ProgressService interface.
type progressServiceImpl struct {
	db        *sql.DB
	subtopics store.SubtopicStore
	activity  store.ActivityStore
	emitter   events.EventEmitter
	logger    *slog.Logger

	// runInTx is store.RunInTransaction in production; tests substitute an
	// in-memory runner.
	runInTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewProgressService creates a new ProgressService implementation.
func NewProgressService(
	db *sql.DB,
	subtopics store.SubtopicStore,
	activity store.ActivityStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) ProgressService {
	if db == nil {
		panic("db cannot be nil")
	}
	if subtopics == nil {
		panic("subtopics store cannot be nil")
	}
	if activity == nil {
		panic("activity store cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &progressServiceImpl{
		db:        db,
		subtopics: subtopics,
		activity:  activity,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "progress_service")),
		runInTx:   store.RunInTransaction,
	}
}

// ApplyCycleStatus implements ProgressService.ApplyCycleStatus.
func (s *progressServiceImpl) ApplyCycleStatus(
	ctx context.Context,
	userID, subtopicID uuid.UUID,
	now time.Time,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("applying status cycle",
		slog.String("user_id", userID.String()),
		slog.String("subtopic_id", subtopicID.String()))

	return s.applyTransition(ctx, userID, subtopicID, now,
		func(subtopic *domain.Subtopic, subjectName string) (*domain.Subtopic, revision.SideEffects, error) {
			updated, effects := revision.CycleStatus(subtopic, subjectName, now)
			return updated, effects, nil
		})
}

// ApplyToggleRevision implements ProgressService.ApplyToggleRevision.
func (s *progressServiceImpl) ApplyToggleRevision(
	ctx context.Context,
	userID, subtopicID uuid.UUID,
	field domain.RevisionField,
	now time.Time,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("applying revision toggle",
		slog.String("user_id", userID.String()),
		slog.String("subtopic_id", subtopicID.String()),
		slog.String("field", string(field)))

	// Reject unknown fields before opening a transaction.
	if _, err := (&domain.Revision{}).Flag(field); err != nil {
		log.Warn("invalid revision field",
			slog.String("user_id", userID.String()),
			slog.String("field", string(field)))
		return nil, err
	}

	return s.applyTransition(ctx, userID, subtopicID, now,
		func(subtopic *domain.Subtopic, subjectName string) (*domain.Subtopic, revision.SideEffects, error) {
			return revision.ToggleRevision(subtopic, field, subjectName, now)
		})
}

// applyTransition runs one transition attempt inside a transaction, retrying
// once on a detected write conflict, then dispatches side effects after the
// commit. The record mutation is the unit of correctness; the ledger
// increment and notification are fire-and-forget afterwards.
func (s *progressServiceImpl) applyTransition(
	ctx context.Context,
	userID, subtopicID uuid.UUID,
	now time.Time,
	fn transitionFn,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, scope, err := s.attemptTransition(ctx, userID, subtopicID, fn)
	if err != nil && store.IsConflictError(err) {
		log.Warn("write conflict during transition, retrying once",
			slog.String("subtopic_id", subtopicID.String()))
		result, scope, err = s.attemptTransition(ctx, userID, subtopicID, fn)
		if err != nil && store.IsConflictError(err) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	if err != nil {
		return nil, err
	}

	s.dispatchSideEffects(ctx, scope, result, now)
	return result, nil
}

// attemptTransition performs a single locked read-apply-write cycle.
func (s *progressServiceImpl) attemptTransition(
	ctx context.Context,
	userID, subtopicID uuid.UUID,
	fn transitionFn,
) (*Result, domain.Scope, error) {
	var result *Result
	var scope domain.Scope

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.subtopics.WithTx(tx)

		record, err := txStore.GetRecordForUpdate(ctx, subtopicID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrSubtopicNotFound
			}
			return fmt.Errorf("failed to lock subtopic: %w", err)
		}

		if record.Scope.UserID != userID {
			return ErrSubtopicNotOwned
		}

		updated, effects, err := fn(record.Subtopic, record.SubjectName)
		if err != nil {
			return err
		}

		if err := txStore.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update subtopic: %w", err)
		}

		scope = record.Scope
		result = &Result{
			Subtopic:    updated,
			SubjectName: record.SubjectName,
			Effects:     effects,
		}
		return nil
	})

	if err != nil {
		return nil, domain.Scope{}, err
	}
	return result, scope, nil
}

// dispatchSideEffects applies the committed transition's intents. Failures
// here are logged and recorded on the result but never fail the call: the
// record change has already committed and must stay committed.
func (s *progressServiceImpl) dispatchSideEffects(
	ctx context.Context,
	scope domain.Scope,
	result *Result,
	now time.Time,
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if result.Effects.LedgerIncrement {
		if err := s.activity.Increment(ctx, scope, now, 1); err != nil {
			log.Error("ledger increment failed after committed transition",
				slog.String("error", err.Error()),
				slog.String("user_id", scope.UserID.String()),
				slog.String("subtopic_id", result.Subtopic.ID.String()))
			result.LedgerError = err
		}
	}

	if result.Effects.Notification != nil {
		event := events.NewNotificationEvent(scope.UserID, *result.Effects.Notification)
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			log.Error("notification emission failed",
				slog.String("error", err.Error()),
				slog.String("user_id", scope.UserID.String()),
				slog.String("title", result.Effects.Notification.Title))
		}
	}
}
