package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// SubjectStore defines the interface for subject data persistence.
type SubjectStore interface {
	// Create saves a new subject.
	// It handles domain validation internally.
	// Returns validation errors from the domain Subject if data is invalid.
	Create(ctx context.Context, subject *domain.Subject) error

	// GetByID retrieves a subject by its unique ID.
	// Returns ErrSubjectNotFound if the subject does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error)

	// ListByScope returns all subjects in the given scope, ordered by
	// position then creation time. This ordering is what makes the
	// weakest-subject tie-break deterministic.
	ListByScope(ctx context.Context, scope domain.Scope) ([]*domain.Subject, error)

	// WithTx returns a new SubjectStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) SubjectStore
}

// TopicStore defines the interface for topic data persistence.
type TopicStore interface {
	// Create saves a new topic.
	// Returns validation errors from the domain Topic if data is invalid.
	Create(ctx context.Context, topic *domain.Topic) error

	// GetByID retrieves a topic by its unique ID.
	// Returns ErrTopicNotFound if the topic does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)

	// CountByScope returns the number of topics whose subject belongs to the scope.
	CountByScope(ctx context.Context, scope domain.Scope) (int, error)

	// WithTx returns a new TopicStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TopicStore
}
