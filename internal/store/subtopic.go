package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// SubtopicRecord couples a subtopic with its owning subject and scope, read
// in one join. The transition engine needs the subject name for notification
// copy and the scope for the ledger increment; the aggregator needs the
// subject ID for per-subject grouping.
type SubtopicRecord struct {
	Subtopic    *domain.Subtopic
	SubjectID   uuid.UUID
	SubjectName string
	Scope       domain.Scope
}

// SubtopicStore defines the interface for subtopic progress persistence.
type SubtopicStore interface {
	// Create saves a new subtopic.
	// Returns validation errors from the domain Subtopic if data is invalid.
	Create(ctx context.Context, subtopic *domain.Subtopic) error

	// GetByID retrieves a subtopic by its unique ID.
	// Returns ErrSubtopicNotFound if the subtopic does not exist.
	// NOTE: This method does NOT provide any row locking, so it should not be
	// used when you plan to update the row and need concurrency protection.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error)

	// GetRecordForUpdate retrieves a subtopic together with its subject
	// context, taking a row-level lock with SELECT FOR UPDATE. It must be
	// called within a transaction; concurrent transition calls on the same
	// record serialize on this lock so neither applies against a stale status.
	// Returns ErrSubtopicNotFound if the subtopic does not exist.
	GetRecordForUpdate(ctx context.Context, id uuid.UUID) (*SubtopicRecord, error)

	// Update writes a subtopic's status and full revision checklist as one
	// row update, so a concurrent reader never observes status and the
	// learned flag out of sync.
	// Returns ErrSubtopicNotFound if the subtopic does not exist.
	// Returns validation errors from the domain Subtopic if data is invalid.
	Update(ctx context.Context, subtopic *domain.Subtopic) error

	// ListRecordsByScope returns every subtopic in the scope with its
	// subject context, ordered by subject position, then topic position,
	// then subtopic position.
	ListRecordsByScope(ctx context.Context, scope domain.Scope) ([]*SubtopicRecord, error)

	// WithTx returns a new SubtopicStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	WithTx(tx *sql.Tx) SubtopicStore
}
