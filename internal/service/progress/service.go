// Package progress exposes the two mutation entry points of the progress
// state machine: cycling a subtopic's status and toggling a revision flag.
// Each call applies the pure transition from the revision package under a
// row lock, commits, and only then dispatches side effects, so a ledger or
// notification failure can never roll back the state change.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/domain/revision"
)

// Service errors
var (
	// ErrSubtopicNotFound is returned when the subtopic does not exist.
	ErrSubtopicNotFound = errors.New("subtopic not found")

	// ErrSubtopicNotOwned is returned when the subtopic belongs to a
	// different user than the caller.
	ErrSubtopicNotOwned = errors.New("subtopic does not belong to user")

	// ErrConflict is returned when a concurrent write still conflicts after
	// the internal retry.
	ErrConflict = errors.New("concurrent update conflict")
)

// Result is the outcome of a transition: the committed record, the
// side-effect intents that were dispatched, and any non-fatal side-effect
// failure. LedgerError being set does NOT mean the transition failed; the
// state change is committed regardless.
type Result struct {
	Subtopic    *domain.Subtopic
	SubjectName string
	Effects     revision.SideEffects

	// LedgerError reports a failed daily-ledger increment after the record
	// change committed. Nil on success or when no increment was requested.
	LedgerError error
}

// ProgressService applies progress state transitions to subtopics.
type ProgressService interface {
	// ApplyCycleStatus advances the subtopic's status one step through
	// NotStarted -> InProgress -> Mastered -> NotStarted and dispatches the
	// resulting side effects.
	// Returns ErrSubtopicNotFound, ErrSubtopicNotOwned or ErrConflict.
	ApplyCycleStatus(
		ctx context.Context,
		userID, subtopicID uuid.UUID,
		now time.Time,
	) (*Result, error)

	// ApplyToggleRevision flips one of the five revision checklist flags and
	// dispatches the resulting side effects.
	// Returns domain.ErrInvalidRevisionField for unknown field names, plus
	// the same errors as ApplyCycleStatus.
	ApplyToggleRevision(
		ctx context.Context,
		userID, subtopicID uuid.UUID,
		field domain.RevisionField,
		now time.Time,
	) (*Result, error)
}
