package store

import (
	"context"
	"time"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// ActivityStore defines the interface for the daily activity ledger.
// The ledger is append-and-increment only; the engine never deletes entries.
type ActivityStore interface {
	// Increment adds delta to the subtopicsCompleted counter for the
	// (scope, date) entry, creating the entry with delta if it does not
	// exist yet. The upsert-and-add is a single atomic statement so
	// concurrent increments for the same day never lose updates.
	// Only the calendar date portion of date is used.
	Increment(ctx context.Context, scope domain.Scope, date time.Time, delta int) error

	// Range returns all entries for the scope with dates in [from, to],
	// ordered by date ascending. Only calendar dates are compared.
	Range(ctx context.Context, scope domain.Scope, from, to time.Time) ([]*domain.DailyActivity, error)
}
