package revision

import (
	"github.com/preptrack/preptrack-api/internal/domain"
)

// Tier pairs a revision flag with its fixed day offset from the learned date.
type Tier struct {
	Field         domain.RevisionField
	ThresholdDays int
}

// Schedule returns the revision tiers in ascending threshold order. The
// offsets are compiled-in constants, not per-user configuration. Keeping the
// schedule as an ordered list lets the due-date evaluator fold over it
// instead of branching per tier, so adding a tier later is a one-line change.
func Schedule() []Tier {
	return []Tier{
		{Field: domain.FieldRevised1, ThresholdDays: 1},
		{Field: domain.FieldRevised2, ThresholdDays: 3},
		{Field: domain.FieldRevised3, ThresholdDays: 7},
		{Field: domain.FieldFinalRevised, ThresholdDays: 30},
	}
}
