// Package dashboard computes the read-side metrics bundle for a scope: per
// subject progress, overall completion, weakest subject, revision due count,
// streak, and the activity series behind the trend chart and heatmap. The
// bundle is recomputed from storage on every call; nothing is cached here.
package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// SubjectStats holds the per-subject completion breakdown.
type SubjectStats struct {
	SubjectID  uuid.UUID `json:"subject_id"`
	Name       string    `json:"name"`
	Total      int       `json:"total"`
	Completed  int       `json:"completed"`
	InProgress int       `json:"in_progress"`
	NotStarted int       `json:"not_started"`
	// Progress is completed/total as a rounded percentage, 0 for an
	// empty subject.
	Progress int `json:"progress"`
}

// DayStat is one day of the 30-day activity series.
type DayStat struct {
	Date             string `json:"date"`
	Completed        int    `json:"completed"`
	TimeSpentMinutes int    `json:"time_spent_minutes"`
}

// HeatmapCell is one day of the 365-day completion heatmap.
type HeatmapCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MetricsBundle is the full dashboard payload for one scope.
type MetricsBundle struct {
	TotalSubjects       int            `json:"total_subjects"`
	TotalTopics         int            `json:"total_topics"`
	TotalSubtopics      int            `json:"total_subtopics"`
	CompletedSubtopics  int            `json:"completed_subtopics"`
	InProgressSubtopics int            `json:"in_progress_subtopics"`
	OverallProgress     int            `json:"overall_progress"`
	Subjects            []SubjectStats `json:"subjects"`
	// WeakestSubject is the lowest-progress subject among those with at
	// least one subtopic; nil when no subject qualifies.
	WeakestSubject   *SubjectStats `json:"weakest_subject,omitempty"`
	RevisionDueCount int           `json:"revision_due_count"`
	Streak           int           `json:"streak"`
	WeeklyStats      []DayStat     `json:"weekly_stats"`
	HeatmapData      []HeatmapCell `json:"heatmap_data"`
}

// DashboardService computes dashboard metrics for a scope.
type DashboardService interface {
	// ComputeDashboard builds the metrics bundle for the scope as of now.
	// Zero subjects yields zero-valued metrics, not an error; storage read
	// failures are propagated.
	ComputeDashboard(ctx context.Context, scope domain.Scope, now time.Time) (*MetricsBundle, error)
}
