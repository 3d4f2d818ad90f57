package revision

import (
	"fmt"
	"time"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// SideEffects describes what a transition asks its caller to do after the
// updated record has been committed. The state machine itself performs no
// I/O; failures while dispatching these must never roll back the mutation.
type SideEffects struct {
	// LedgerIncrement is set when today's daily activity counter should be
	// incremented by one. Only CycleStatus reaching mastery sets this.
	LedgerIncrement bool

	// Notification is the milestone message to emit, nil when the
	// transition hit no milestone.
	Notification *domain.Notification
}

// CycleStatus advances a subtopic's status one step through the fixed cycle
// NotStarted -> InProgress -> Mastered -> NotStarted, keeping the revision
// checklist's learned flag synchronized with the status.
//
// Reaching Mastered from any other status sets learned with its timestamp,
// refreshes lastRevisedDate, and requests a ledger increment plus a mastery
// notification. Leaving Mastered clears learned and its timestamp. The other
// revision tiers are left untouched.
//
// The input record is not modified; a new record is returned.
func CycleStatus(
	subtopic *domain.Subtopic,
	subjectName string,
	now time.Time,
) (*domain.Subtopic, SideEffects) {
	oldStatus := subtopic.Status
	newStatus := oldStatus.Next()

	updated := subtopic.Clone()
	updated.Status = newStatus
	updated.UpdatedAt = now

	var effects SideEffects

	if newStatus == domain.StatusMastered {
		at := now
		// SetFlag cannot fail for a known field.
		_ = updated.Revision.SetFlag(domain.FieldLearned, true, &at)
		last := now
		updated.Revision.LastRevisedAt = &last

		if oldStatus != domain.StatusMastered {
			effects.LedgerIncrement = true
			effects.Notification = masteryNotification(subtopic.Name, subjectName)
		}
	} else {
		_ = updated.Revision.SetFlag(domain.FieldLearned, false, nil)
	}

	return updated, effects
}

// ToggleRevision flips one revision checklist flag, keeping its paired
// timestamp in sync and refreshing lastRevisedDate whenever a flag turns on.
// Setting a flag produces a per-tier milestone notification; clearing one
// produces nothing.
//
// Toggling the learned flag also synchronizes the status: Mastered when set,
// NotStarted when cleared. This path intentionally never touches the daily
// ledger; only CycleStatus counts completions.
//
// Returns domain.ErrInvalidRevisionField for unknown field names. The input
// record is not modified; a new record is returned.
func ToggleRevision(
	subtopic *domain.Subtopic,
	field domain.RevisionField,
	subjectName string,
	now time.Time,
) (*domain.Subtopic, SideEffects, error) {
	current, err := subtopic.Revision.Flag(field)
	if err != nil {
		return nil, SideEffects{}, err
	}
	newValue := !current

	updated := subtopic.Clone()
	updated.UpdatedAt = now

	if newValue {
		at := now
		_ = updated.Revision.SetFlag(field, true, &at)
		last := now
		updated.Revision.LastRevisedAt = &last
	} else {
		_ = updated.Revision.SetFlag(field, false, nil)
	}

	if field == domain.FieldLearned {
		if newValue {
			updated.Status = domain.StatusMastered
		} else {
			updated.Status = domain.StatusNotStarted
		}
	}

	var effects SideEffects
	if newValue {
		effects.Notification = tierNotification(field, subtopic.Name, subjectName)
	}

	return updated, effects, nil
}

// tierTitles maps each revision field to the title of its milestone
// notification.
var tierTitles = map[domain.RevisionField]string{
	domain.FieldLearned:      "Subtopic Mastered",
	domain.FieldRevised1:     "First Revision Done",
	domain.FieldRevised2:     "Second Revision Done",
	domain.FieldRevised3:     "Third Revision Done",
	domain.FieldFinalRevised: "Final Revision Done",
}

func masteryNotification(subtopicName, subjectName string) *domain.Notification {
	return &domain.Notification{
		Title:    "Subtopic Mastered",
		Message:  fmt.Sprintf("You mastered %q in %s. Revision schedule started.", subtopicName, subjectName),
		Severity: domain.SeveritySuccess,
	}
}

func tierNotification(field domain.RevisionField, subtopicName, subjectName string) *domain.Notification {
	title := tierTitles[field]
	var message string
	if field == domain.FieldLearned {
		message = fmt.Sprintf("You mastered %q in %s. Revision schedule started.", subtopicName, subjectName)
	} else {
		message = fmt.Sprintf("%s for %q in %s. Keep the streak going.", title, subtopicName, subjectName)
	}
	return &domain.Notification{
		Title:    title,
		Message:  message,
		Severity: domain.SeveritySuccess,
	}
}
