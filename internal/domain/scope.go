package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Track selects which curriculum world a user is working in.
type Track string

// Supported track values
const (
	TrackPlacement Track = "placement"
	TrackSarkari   Track = "sarkari"
)

// DefaultDepartment is used when no department is given for the placement track.
const DefaultDepartment = "general"

// Scope-specific validation errors
var (
	// ErrScopeUserIDEmpty is returned when a scope's user ID is empty or nil.
	ErrScopeUserIDEmpty = errors.New("scope user ID cannot be empty")

	// ErrScopeInvalidTrack is returned when a scope's track is not a known value.
	ErrScopeInvalidTrack = errors.New("scope track must be placement or sarkari")

	// ErrScopeDepartmentEmpty is returned when a scope's department is empty.
	ErrScopeDepartmentEmpty = errors.New("scope department cannot be empty")
)

// Scope identifies the (user, track, department) tuple that partitions all
// progress data into isolated worlds. Switching track or department selects a
// disjoint set of subjects, topics, subtopics, and ledger entries.
type Scope struct {
	UserID     uuid.UUID `json:"user_id"`
	Track      Track     `json:"track"`
	Department string    `json:"department"`
}

// NewScope creates a Scope for the given user, applying defaults:
// an empty track becomes placement, and an empty department becomes "general".
func NewScope(userID uuid.UUID, track Track, department string) Scope {
	if track == "" {
		track = TrackPlacement
	}
	if department == "" {
		department = DefaultDepartment
	}
	return Scope{
		UserID:     userID,
		Track:      track,
		Department: department,
	}
}

// Validate checks if the Scope has valid data.
// Returns an error if any field fails validation.
func (s Scope) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrScopeUserIDEmpty
	}

	if s.Track != TrackPlacement && s.Track != TrackSarkari {
		return ErrScopeInvalidTrack
	}

	if s.Department == "" {
		return ErrScopeDepartmentEmpty
	}

	return nil
}
