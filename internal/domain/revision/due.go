package revision

import (
	"time"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// DaysSinceLearned returns the whole number of days elapsed between the
// record's learned date and now, rounded down. Returns -1 when the record
// has no learned date, meaning no revision tier can be due yet.
func DaysSinceLearned(subtopic *domain.Subtopic, now time.Time) int {
	learnedAt := subtopic.Revision.LearnedAt
	if learnedAt == nil {
		return -1
	}
	elapsed := now.Sub(*learnedAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed.Hours() / 24)
}

// IsOverdue reports whether any revision tier's threshold has passed while
// that tier's flag is still unset. The tiers are independent thresholds,
// not a sequential gate: a record overdue on several tiers at once is still
// just overdue.
func IsOverdue(subtopic *domain.Subtopic, now time.Time) bool {
	days := DaysSinceLearned(subtopic, now)
	if days < 0 {
		return false
	}

	for _, tier := range Schedule() {
		done, err := subtopic.Revision.Flag(tier.Field)
		if err != nil {
			continue
		}
		if !done && days >= tier.ThresholdDays {
			return true
		}
	}
	return false
}

// FilterOverdue returns the subset of subtopics that are overdue at now,
// preserving input order.
func FilterOverdue(subtopics []*domain.Subtopic, now time.Time) []*domain.Subtopic {
	var overdue []*domain.Subtopic
	for _, s := range subtopics {
		if IsOverdue(s, now) {
			overdue = append(overdue, s)
		}
	}
	return overdue
}

// CountOverdue returns how many subtopics are overdue at now. Each record
// counts once no matter how many tiers it is overdue on.
func CountOverdue(subtopics []*domain.Subtopic, now time.Time) int {
	count := 0
	for _, s := range subtopics {
		if IsOverdue(s, now) {
			count++
		}
	}
	return count
}
