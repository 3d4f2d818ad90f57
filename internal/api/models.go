// Package api provides HTTP handlers for the API.
package api

import (
	"time"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// RevisionResponse represents the revision checklist of a subtopic.
type RevisionResponse struct {
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

// SubtopicResponse represents the response data for a subtopic progress record.
type SubtopicResponse struct {
	ID       string           `json:"id"`
	TopicID  string           `json:"topic_id"`
	Name     string           `json:"name"`
	Position int              `json:"position"`
	Status   int              `json:"status"`
	Revision RevisionResponse `json:"revision"`
}

// NotificationResponse carries a milestone toast message back to the client.
type NotificationResponse struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// TransitionResponse is the result of a status cycle or revision toggle.
type TransitionResponse struct {
	Subtopic     SubtopicResponse      `json:"subtopic"`
	Notification *NotificationResponse `json:"notification,omitempty"`
}

// ToggleRevisionRequest represents the request body for toggling a revision flag.
type ToggleRevisionRequest struct {
	Field string `json:"field" validate:"required,oneof=learned revised1 revised2 revised3 finalRevised"`
}

// subtopicToResponse converts a domain.Subtopic to a SubtopicResponse.
func subtopicToResponse(subtopic *domain.Subtopic) SubtopicResponse {
	return SubtopicResponse{
		ID:       subtopic.ID.String(),
		TopicID:  subtopic.TopicID.String(),
		Name:     subtopic.Name,
		Position: subtopic.Position,
		Status:   int(subtopic.Status),
		Revision: RevisionResponse{
			Learned:        subtopic.Revision.Learned,
			LearnedAt:      subtopic.Revision.LearnedAt,
			Revised1:       subtopic.Revision.Revised1,
			Revised1At:     subtopic.Revision.Revised1At,
			Revised2:       subtopic.Revision.Revised2,
			Revised2At:     subtopic.Revision.Revised2At,
			Revised3:       subtopic.Revision.Revised3,
			Revised3At:     subtopic.Revision.Revised3At,
			FinalRevised:   subtopic.Revision.FinalRevised,
			FinalRevisedAt: subtopic.Revision.FinalRevisedAt,
			LastRevisedAt:  subtopic.Revision.LastRevisedAt,
		},
	}
}

// notificationToResponse converts an optional domain.Notification.
func notificationToResponse(notification *domain.Notification) *NotificationResponse {
	if notification == nil {
		return nil
	}
	return &NotificationResponse{
		Title:    notification.Title,
		Message:  notification.Message,
		Severity: string(notification.Severity),
	}
}
