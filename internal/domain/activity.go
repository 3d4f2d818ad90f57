package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DailyActivity-specific validation errors
var (
	ErrActivityIDEmpty      = errors.New("daily activity ID cannot be empty")
	ErrActivityDateZero     = errors.New("daily activity date cannot be zero")
	ErrActivityNegativeDone = errors.New("daily activity completed count cannot be negative")
)

// DailyActivity is one ledger entry: the per-day counters for a scope.
// Exactly one entry exists per (scope, calendar date); it is created lazily
// on the first completion of the day and never deleted by the engine.
type DailyActivity struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Track              Track     `json:"track"`
	Department         string    `json:"department"`
	Date               time.Time `json:"date"` // calendar date, midnight UTC
	SubtopicsCompleted int       `json:"subtopics_completed"`
	TimeSpentMinutes   int       `json:"time_spent_minutes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Scope returns the scope tuple the entry belongs to.
func (a *DailyActivity) Scope() Scope {
	return Scope{
		UserID:     a.UserID,
		Track:      a.Track,
		Department: a.Department,
	}
}

// Validate checks if the DailyActivity has valid data.
func (a *DailyActivity) Validate() error {
	if a.ID == uuid.Nil {
		return ErrActivityIDEmpty
	}

	if err := a.Scope().Validate(); err != nil {
		return err
	}

	if a.Date.IsZero() {
		return ErrActivityDateZero
	}

	if a.SubtopicsCompleted < 0 {
		return ErrActivityNegativeDone
	}

	return nil
}

// DateOnly truncates t to midnight in its own location, yielding the
// calendar date a completion counts toward.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
