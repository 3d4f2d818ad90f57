package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents a subtopic's mastery state.
type Status int

// Possible status values. The order matters: CycleStatus advances
// NotStarted -> InProgress -> Mastered -> NotStarted.
const (
	StatusNotStarted Status = 0
	StatusInProgress Status = 1
	StatusMastered   Status = 2
)

// Next returns the status that follows s in the fixed three-state cycle.
func (s Status) Next() Status {
	return (s + 1) % 3
}

// IsValid reports whether s is one of the three known status values.
func (s Status) IsValid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusMastered
}

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusMastered:
		return "mastered"
	default:
		return "unknown"
	}
}

// RevisionField names one of the five revision checklist flags.
type RevisionField string

// The five revision checklist fields. Learned marks initial mastery;
// the four revision tiers follow it on a fixed day-offset schedule.
const (
	FieldLearned      RevisionField = "learned"
	FieldRevised1     RevisionField = "revised1"
	FieldRevised2     RevisionField = "revised2"
	FieldRevised3     RevisionField = "revised3"
	FieldFinalRevised RevisionField = "finalRevised"
)

// RevisionFields lists all valid revision fields in checklist order.
func RevisionFields() []RevisionField {
	return []RevisionField{
		FieldLearned,
		FieldRevised1,
		FieldRevised2,
		FieldRevised3,
		FieldFinalRevised,
	}
}

// Subtopic-specific validation errors
var (
	// ErrSubtopicIDEmpty is returned when a subtopic ID is empty or nil.
	ErrSubtopicIDEmpty = errors.New("subtopic ID cannot be empty")

	// ErrSubtopicTopicIDEmpty is returned when a subtopic's topic ID is empty or nil.
	ErrSubtopicTopicIDEmpty = errors.New("subtopic topic ID cannot be empty")

	// ErrSubtopicNameEmpty is returned when a subtopic's name is empty.
	ErrSubtopicNameEmpty = errors.New("subtopic name cannot be empty")

	// ErrSubtopicInvalidStatus is returned when a subtopic's status is out of range.
	ErrSubtopicInvalidStatus = errors.New("subtopic status must be 0, 1 or 2")

	// ErrInvalidRevisionField is returned when a revision field name is not
	// one of the five known flags.
	ErrInvalidRevisionField = errors.New("invalid revision field")

	// ErrStatusLearnedMismatch is returned when status and revision.learned
	// disagree. The two must never drift apart.
	ErrStatusLearnedMismatch = errors.New("status and revision learned flag out of sync")

	// ErrFlagTimestampMismatch is returned when a revision flag and its
	// timestamp disagree: a timestamp must be present iff the flag is set.
	ErrFlagTimestampMismatch = errors.New("revision flag and timestamp out of sync")
)

// Revision is a subtopic's spaced-repetition checklist: five independent
// boolean flags, each with a timestamp present iff the flag is set, plus the
// time of the most recent flag set.
type Revision struct {
	Learned        bool       `json:"learned"`
	LearnedAt      *time.Time `json:"learned_at,omitempty"`
	Revised1       bool       `json:"revised1"`
	Revised1At     *time.Time `json:"revised1_at,omitempty"`
	Revised2       bool       `json:"revised2"`
	Revised2At     *time.Time `json:"revised2_at,omitempty"`
	Revised3       bool       `json:"revised3"`
	Revised3At     *time.Time `json:"revised3_at,omitempty"`
	FinalRevised   bool       `json:"final_revised"`
	FinalRevisedAt *time.Time `json:"final_revised_at,omitempty"`
	LastRevisedAt  *time.Time `json:"last_revised_at,omitempty"`
}

// Flag returns the value of the named revision flag.
// Returns ErrInvalidRevisionField for unknown field names.
func (r *Revision) Flag(field RevisionField) (bool, error) {
	switch field {
	case FieldLearned:
		return r.Learned, nil
	case FieldRevised1:
		return r.Revised1, nil
	case FieldRevised2:
		return r.Revised2, nil
	case FieldRevised3:
		return r.Revised3, nil
	case FieldFinalRevised:
		return r.FinalRevised, nil
	default:
		return false, ErrInvalidRevisionField
	}
}

// FlagAt returns the timestamp paired with the named revision flag.
// Returns ErrInvalidRevisionField for unknown field names.
func (r *Revision) FlagAt(field RevisionField) (*time.Time, error) {
	switch field {
	case FieldLearned:
		return r.LearnedAt, nil
	case FieldRevised1:
		return r.Revised1At, nil
	case FieldRevised2:
		return r.Revised2At, nil
	case FieldRevised3:
		return r.Revised3At, nil
	case FieldFinalRevised:
		return r.FinalRevisedAt, nil
	default:
		return nil, ErrInvalidRevisionField
	}
}

// SetFlag sets the named flag and its paired timestamp together, keeping the
// flag/timestamp invariant. A nil at clears the timestamp.
func (r *Revision) SetFlag(field RevisionField, value bool, at *time.Time) error {
	switch field {
	case FieldLearned:
		r.Learned, r.LearnedAt = value, at
	case FieldRevised1:
		r.Revised1, r.Revised1At = value, at
	case FieldRevised2:
		r.Revised2, r.Revised2At = value, at
	case FieldRevised3:
		r.Revised3, r.Revised3At = value, at
	case FieldFinalRevised:
		r.FinalRevised, r.FinalRevisedAt = value, at
	default:
		return ErrInvalidRevisionField
	}
	return nil
}

// Validate checks the flag/timestamp pairing invariant for every field.
func (r *Revision) Validate() error {
	for _, field := range RevisionFields() {
		flag, err := r.Flag(field)
		if err != nil {
			return err
		}
		at, err := r.FlagAt(field)
		if err != nil {
			return err
		}
		if flag != (at != nil) {
			return ErrFlagTimestampMismatch
		}
	}
	return nil
}

// Subtopic is the leaf of the curriculum hierarchy and the unit the progress
// state machine operates on. Its status and revision checklist are always
// updated together: status == Mastered holds exactly when revision.learned
// is set.
type Subtopic struct {
	ID        uuid.UUID `json:"id"`
	TopicID   uuid.UUID `json:"topic_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	Status    Status    `json:"status"`
	Revision  Revision  `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubtopic creates a new Subtopic under the given topic with status
// NotStarted and an empty revision checklist.
// Returns an error if validation fails.
func NewSubtopic(topicID uuid.UUID, name string, position int) (*Subtopic, error) {
	now := time.Now().UTC()
	subtopic := &Subtopic{
		ID:        uuid.New(),
		TopicID:   topicID,
		Name:      name,
		Position:  position,
		Status:    StatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := subtopic.Validate(); err != nil {
		return nil, err
	}

	return subtopic, nil
}

// Validate checks if the Subtopic has valid data, including the two state
// machine invariants: status/learned synchronization and flag/timestamp
// pairing.
func (s *Subtopic) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSubtopicIDEmpty
	}

	if s.TopicID == uuid.Nil {
		return ErrSubtopicTopicIDEmpty
	}

	if s.Name == "" {
		return ErrSubtopicNameEmpty
	}

	if !s.Status.IsValid() {
		return ErrSubtopicInvalidStatus
	}

	if (s.Status == StatusMastered) != s.Revision.Learned {
		return ErrStatusLearnedMismatch
	}

	return s.Revision.Validate()
}

// Clone returns a deep copy of the subtopic. Transition functions operate on
// copies so a failed update never leaves a half-mutated record behind.
func (s *Subtopic) Clone() *Subtopic {
	clone := *s
	clone.Revision.LearnedAt = cloneTime(s.Revision.LearnedAt)
	clone.Revision.Revised1At = cloneTime(s.Revision.Revised1At)
	clone.Revision.Revised2At = cloneTime(s.Revision.Revised2At)
	clone.Revision.Revised3At = cloneTime(s.Revision.Revised3At)
	clone.Revision.FinalRevisedAt = cloneTime(s.Revision.FinalRevisedAt)
	clone.Revision.LastRevisedAt = cloneTime(s.Revision.LastRevisedAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
