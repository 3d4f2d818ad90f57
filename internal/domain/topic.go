package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Topic-specific validation errors
var (
	ErrTopicIDEmpty        = errors.New("topic ID cannot be empty")
	ErrTopicSubjectIDEmpty = errors.New("topic subject ID cannot be empty")
	ErrTopicNameEmpty      = errors.New("topic name cannot be empty")
)

// Topic is the middle level of the curriculum hierarchy, owned by a subject.
type Topic struct {
	ID        uuid.UUID `json:"id"`
	SubjectID uuid.UUID `json:"subject_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTopic creates a new Topic under the given subject.
// Returns an error if validation fails.
func NewTopic(subjectID uuid.UUID, name string, position int) (*Topic, error) {
	now := time.Now().UTC()
	topic := &Topic{
		ID:        uuid.New(),
		SubjectID: subjectID,
		Name:      name,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := topic.Validate(); err != nil {
		return nil, err
	}

	return topic, nil
}

// Validate checks if the Topic has valid data.
func (t *Topic) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTopicIDEmpty
	}

	if t.SubjectID == uuid.Nil {
		return ErrTopicSubjectIDEmpty
	}

	if t.Name == "" {
		return ErrTopicNameEmpty
	}

	return nil
}
