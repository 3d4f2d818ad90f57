package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Subject-specific validation errors
var (
	// ErrSubjectIDEmpty is returned when a subject ID is empty or nil.
	ErrSubjectIDEmpty = errors.New("subject ID cannot be empty")

	// ErrSubjectNameEmpty is returned when a subject's name is empty.
	ErrSubjectNameEmpty = errors.New("subject name cannot be empty")
)

// Subject is the top level of the curriculum hierarchy within a scope.
// Subjects own topics, which in turn own subtopics.
type Subject struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Track      Track     `json:"track"`
	Department string    `json:"department"`
	Name       string    `json:"name"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Scope returns the scope tuple the subject belongs to.
func (s *Subject) Scope() Scope {
	return Scope{
		UserID:     s.UserID,
		Track:      s.Track,
		Department: s.Department,
	}
}

// NewSubject creates a new Subject in the given scope.
// It generates a new UUID for the subject ID and sets the timestamps.
// Returns an error if validation fails.
func NewSubject(scope Scope, name string, position int) (*Subject, error) {
	now := time.Now().UTC()
	subject := &Subject{
		ID:         uuid.New(),
		UserID:     scope.UserID,
		Track:      scope.Track,
		Department: scope.Department,
		Name:       name,
		Position:   position,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := subject.Validate(); err != nil {
		return nil, err
	}

	return subject, nil
}

// Validate checks if the Subject has valid data.
// Returns an error if any field fails validation.
func (s *Subject) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSubjectIDEmpty
	}

	if err := s.Scope().Validate(); err != nil {
		return err
	}

	if s.Name == "" {
		return ErrSubjectNameEmpty
	}

	return nil
}
