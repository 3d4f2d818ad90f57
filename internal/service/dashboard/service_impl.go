package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/domain/revision"
	"github.com/preptrack/preptrack-api/internal/store"
)

const (
	// dateKeyLayout keys ledger entries by calendar date.
	dateKeyLayout = "2006-01-02"

	weeklyWindowDays  = 30
	heatmapWindowDays = 365
)

// dashboardServiceImpl implements DashboardService over the curriculum and
// ledger stores.
type dashboardServiceImpl struct {
	subjects  store.SubjectStore
	topics    store.TopicStore
	subtopics store.SubtopicStore
	activity  store.ActivityStore
	logger    *slog.Logger
}

// NewDashboardService creates a new dashboard service.
// Panics if any dependency is nil, as this represents a programming error.
func NewDashboardService(
	subjects store.SubjectStore,
	topics store.TopicStore,
	subtopics store.SubtopicStore,
	activity store.ActivityStore,
	logger *slog.Logger,
) DashboardService {
	if subjects == nil {
		panic("subject store cannot be nil")
	}
	if topics == nil {
		panic("topic store cannot be nil")
	}
	if subtopics == nil {
		panic("subtopic store cannot be nil")
	}
	if activity == nil {
		panic("activity store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &dashboardServiceImpl{
		subjects:  subjects,
		topics:    topics,
		subtopics: subtopics,
		activity:  activity,
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}
}

func (s *dashboardServiceImpl) ComputeDashboard(
	ctx context.Context,
	scope domain.Scope,
	now time.Time,
) (*MetricsBundle, error) {
	if err := scope.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scope: %w", err)
	}

	subjects, err := s.subjects.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}

	topicCount, err := s.topics.CountByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}

	records, err := s.subtopics.ListRecordsByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtopics: %w", err)
	}

	today := domain.DateOnly(now)
	ledger, err := s.activity.Range(ctx, scope, today.AddDate(0, 0, -heatmapWindowDays), today)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity ledger: %w", err)
	}

	bundle := &MetricsBundle{
		TotalSubjects: len(subjects),
		TotalTopics:   topicCount,
		Subjects:      make([]SubjectStats, 0, len(subjects)),
		WeeklyStats:   []DayStat{},
		HeatmapData:   []HeatmapCell{},
	}

	s.aggregateSubjects(bundle, subjects, records)

	allSubtopics := make([]*domain.Subtopic, 0, len(records))
	for _, record := range records {
		allSubtopics = append(allSubtopics, record.Subtopic)
	}
	bundle.RevisionDueCount = revision.CountOverdue(allSubtopics, now)

	s.aggregateLedger(bundle, ledger, today)

	s.logger.DebugContext(ctx, "dashboard computed",
		slog.String("user_id", scope.UserID.String()),
		slog.String("track", string(scope.Track)),
		slog.Int("total_subtopics", bundle.TotalSubtopics),
		slog.Int("streak", bundle.Streak))

	return bundle, nil
}

// aggregateSubjects fills the per-subject breakdown, the global subtopic
// counters, and the weakest-subject pick.
func (s *dashboardServiceImpl) aggregateSubjects(
	bundle *MetricsBundle,
	subjects []*domain.Subject,
	records []*store.SubtopicRecord,
) {
	bySubject := make(map[string][]*domain.Subtopic, len(subjects))
	for _, record := range records {
		key := record.SubjectID.String()
		bySubject[key] = append(bySubject[key], record.Subtopic)
	}

	weakestIdx := -1
	for _, subject := range subjects {
		stats := SubjectStats{
			SubjectID: subject.ID,
			Name:      subject.Name,
		}
		for _, subtopic := range bySubject[subject.ID.String()] {
			stats.Total++
			switch subtopic.Status {
			case domain.StatusMastered:
				stats.Completed++
			case domain.StatusInProgress:
				stats.InProgress++
			}
		}
		stats.NotStarted = stats.Total - stats.Completed - stats.InProgress
		stats.Progress = roundPercent(stats.Completed, stats.Total)

		bundle.TotalSubtopics += stats.Total
		bundle.CompletedSubtopics += stats.Completed
		bundle.InProgressSubtopics += stats.InProgress
		bundle.Subjects = append(bundle.Subjects, stats)

		// Strict less-than keeps the first subject in list order on ties.
		if stats.Total > 0 &&
			(weakestIdx < 0 || stats.Progress < bundle.Subjects[weakestIdx].Progress) {
			weakestIdx = len(bundle.Subjects) - 1
		}
	}

	bundle.OverallProgress = roundPercent(bundle.CompletedSubtopics, bundle.TotalSubtopics)
	if weakestIdx >= 0 {
		weakest := bundle.Subjects[weakestIdx]
		bundle.WeakestSubject = &weakest
	}
}

// aggregateLedger derives the streak, the 30-day series, and the 365-day
// heatmap from the ledger entries, which arrive ordered by date ascending.
func (s *dashboardServiceImpl) aggregateLedger(
	bundle *MetricsBundle,
	ledger []*domain.DailyActivity,
	today time.Time,
) {
	completedByDay := make(map[string]int, len(ledger))
	weeklyFrom := today.AddDate(0, 0, -weeklyWindowDays)

	for _, entry := range ledger {
		date := domain.DateOnly(entry.Date)
		completedByDay[date.Format(dateKeyLayout)] = entry.SubtopicsCompleted

		bundle.HeatmapData = append(bundle.HeatmapData, HeatmapCell{
			Date:  date.Format(dateKeyLayout),
			Count: entry.SubtopicsCompleted,
		})
		if !date.Before(weeklyFrom) {
			bundle.WeeklyStats = append(bundle.WeeklyStats, DayStat{
				Date:             date.Format(dateKeyLayout),
				Completed:        entry.SubtopicsCompleted,
				TimeSpentMinutes: entry.TimeSpentMinutes,
			})
		}
	}

	bundle.Streak = computeStreak(completedByDay, today)
}

// computeStreak walks backward day by day counting consecutive days with at
// least one completion. A day with no completions yet today does not break
// an ongoing streak: when today is empty the walk starts from yesterday.
func computeStreak(completedByDay map[string]int, today time.Time) int {
	day := today
	if completedByDay[day.Format(dateKeyLayout)] <= 0 {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for completedByDay[day.Format(dateKeyLayout)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// roundPercent returns part/total as a percentage rounded to the nearest
// integer, 0 when total is zero.
func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
