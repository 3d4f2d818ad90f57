package dashboard

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/store"
)

// The fakes key their data by scope so the isolation tests exercise the same
// partitioning contract the real stores implement in SQL.

type fakeSubjectStore struct {
	byScope map[domain.Scope][]*domain.Subject
}

var _ store.SubjectStore = (*fakeSubjectStore)(nil)

func (f *fakeSubjectStore) Create(ctx context.Context, subject *domain.Subject) error {
	return nil
}

func (f *fakeSubjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	return nil, store.ErrSubjectNotFound
}

func (f *fakeSubjectStore) ListByScope(
	ctx context.Context,
	scope domain.Scope,
) ([]*domain.Subject, error) {
	return f.byScope[scope], nil
}

func (f *fakeSubjectStore) WithTx(tx *sql.Tx) store.SubjectStore { return f }

type fakeTopicStore struct {
	counts map[domain.Scope]int
}

var _ store.TopicStore = (*fakeTopicStore)(nil)

func (f *fakeTopicStore) Create(ctx context.Context, topic *domain.Topic) error { return nil }

func (f *fakeTopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	return nil, store.ErrTopicNotFound
}

func (f *fakeTopicStore) CountByScope(ctx context.Context, scope domain.Scope) (int, error) {
	return f.counts[scope], nil
}

func (f *fakeTopicStore) WithTx(tx *sql.Tx) store.TopicStore { return f }

type fakeSubtopicStore struct {
	byScope map[domain.Scope][]*store.SubtopicRecord
}

var _ store.SubtopicStore = (*fakeSubtopicStore)(nil)

func (f *fakeSubtopicStore) Create(ctx context.Context, subtopic *domain.Subtopic) error {
	return nil
}

func (f *fakeSubtopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error) {
	return nil, store.ErrSubtopicNotFound
}

func (f *fakeSubtopicStore) GetRecordForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*store.SubtopicRecord, error) {
	return nil, store.ErrSubtopicNotFound
}

func (f *fakeSubtopicStore) Update(ctx context.Context, subtopic *domain.Subtopic) error {
	return nil
}

func (f *fakeSubtopicStore) ListRecordsByScope(
	ctx context.Context,
	scope domain.Scope,
) ([]*store.SubtopicRecord, error) {
	return f.byScope[scope], nil
}

func (f *fakeSubtopicStore) WithTx(tx *sql.Tx) store.SubtopicStore { return f }

type fakeActivityStore struct {
	byScope map[domain.Scope][]*domain.DailyActivity
}

var _ store.ActivityStore = (*fakeActivityStore)(nil)

func (f *fakeActivityStore) Increment(
	ctx context.Context,
	scope domain.Scope,
	date time.Time,
	delta int,
) error {
	return nil
}

func (f *fakeActivityStore) Range(
	ctx context.Context,
	scope domain.Scope,
	from, to time.Time,
) ([]*domain.DailyActivity, error) {
	var out []*domain.DailyActivity
	for _, entry := range f.byScope[scope] {
		date := domain.DateOnly(entry.Date)
		if date.Before(from) || date.After(to) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

type fixture struct {
	subjects  *fakeSubjectStore
	topics    *fakeTopicStore
	subtopics *fakeSubtopicStore
	activity  *fakeActivityStore
	service   DashboardService
	scope     domain.Scope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		subjects:  &fakeSubjectStore{byScope: map[domain.Scope][]*domain.Subject{}},
		topics:    &fakeTopicStore{counts: map[domain.Scope]int{}},
		subtopics: &fakeSubtopicStore{byScope: map[domain.Scope][]*store.SubtopicRecord{}},
		activity:  &fakeActivityStore{byScope: map[domain.Scope][]*domain.DailyActivity{}},
		scope:     domain.NewScope(uuid.New(), domain.TrackPlacement, ""),
	}
	f.service = NewDashboardService(
		f.subjects, f.topics, f.subtopics, f.activity,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

// addSubject registers a subject with the given status counts worth of
// subtopics in the fixture's scope.
func (f *fixture) addSubject(
	t *testing.T,
	name string,
	completed, inProgress, notStarted int,
) *domain.Subject {
	t.Helper()

	subject, err := domain.NewSubject(f.scope, name, len(f.subjects.byScope[f.scope]))
	require.NoError(t, err)
	f.subjects.byScope[f.scope] = append(f.subjects.byScope[f.scope], subject)

	position := 0
	add := func(status domain.Status, count int) {
		for i := 0; i < count; i++ {
			subtopic, err := domain.NewSubtopic(uuid.New(), "st", position)
			require.NoError(t, err)
			position++
			subtopic.Status = status
			if status == domain.StatusMastered {
				learnedAt := time.Now().UTC().Add(-time.Hour)
				subtopic.Revision.Learned = true
				subtopic.Revision.LearnedAt = &learnedAt
			}
			f.subtopics.byScope[f.scope] = append(f.subtopics.byScope[f.scope],
				&store.SubtopicRecord{
					Subtopic:    subtopic,
					SubjectID:   subject.ID,
					SubjectName: subject.Name,
					Scope:       f.scope,
				})
		}
	}
	add(domain.StatusMastered, completed)
	add(domain.StatusInProgress, inProgress)
	add(domain.StatusNotStarted, notStarted)
	return subject
}

func (f *fixture) addLedgerEntry(date time.Time, completed, timeSpent int) {
	f.activity.byScope[f.scope] = append(f.activity.byScope[f.scope], &domain.DailyActivity{
		ID:                 uuid.New(),
		UserID:             f.scope.UserID,
		Track:              f.scope.Track,
		Department:         f.scope.Department,
		Date:               domain.DateOnly(date),
		SubtopicsCompleted: completed,
		TimeSpentMinutes:   timeSpent,
	})
}

func TestComputeDashboardSubjectAggregation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addSubject(t, "DSA", 5, 2, 3)
	f.addSubject(t, "OS", 0, 0, 4)
	f.topics.counts[f.scope] = 6
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, now)
	require.NoError(t, err)

	assert.Equal(t, 2, bundle.TotalSubjects)
	assert.Equal(t, 6, bundle.TotalTopics)
	assert.Equal(t, 14, bundle.TotalSubtopics)
	assert.Equal(t, 5, bundle.CompletedSubtopics)
	assert.Equal(t, 2, bundle.InProgressSubtopics)
	assert.Equal(t, 36, bundle.OverallProgress, "round(5/14*100)")

	require.Len(t, bundle.Subjects, 2)
	assert.Equal(t, "DSA", bundle.Subjects[0].Name)
	assert.Equal(t, 10, bundle.Subjects[0].Total)
	assert.Equal(t, 3, bundle.Subjects[0].NotStarted)
	assert.Equal(t, 50, bundle.Subjects[0].Progress)
	assert.Equal(t, 0, bundle.Subjects[1].Progress)

	require.NotNil(t, bundle.WeakestSubject)
	assert.Equal(t, "OS", bundle.WeakestSubject.Name)
}

func TestComputeDashboardWeakestSubjectTieBreak(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addSubject(t, "First", 1, 0, 1)
	f.addSubject(t, "Second", 1, 0, 1)

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, time.Now().UTC())
	require.NoError(t, err)

	require.NotNil(t, bundle.WeakestSubject)
	assert.Equal(t, "First", bundle.WeakestSubject.Name, "equal progress keeps list order")
}

func TestComputeDashboardWeakestSubjectSkipsEmptySubjects(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addSubject(t, "Empty", 0, 0, 0)
	f.addSubject(t, "Started", 1, 1, 0)

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, time.Now().UTC())
	require.NoError(t, err)

	require.NotNil(t, bundle.WeakestSubject)
	assert.Equal(t, "Started", bundle.WeakestSubject.Name)
}

func TestComputeDashboardEmptyScopeIsZeroValued(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, time.Now().UTC())
	require.NoError(t, err)

	assert.Zero(t, bundle.TotalSubtopics)
	assert.Zero(t, bundle.OverallProgress)
	assert.Nil(t, bundle.WeakestSubject)
	assert.Zero(t, bundle.Streak)
	assert.Empty(t, bundle.Subjects)
	assert.Empty(t, bundle.WeeklyStats)
	assert.Empty(t, bundle.HeatmapData)
}

func TestComputeDashboardStreakCountsBackFromToday(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	now := time.Date(2025, 6, 15, 22, 30, 0, 0, time.UTC)
	f.addLedgerEntry(now, 2, 30)
	f.addLedgerEntry(now.AddDate(0, 0, -1), 1, 20)
	f.addLedgerEntry(now.AddDate(0, 0, -2), 3, 45)
	f.addLedgerEntry(now.AddDate(0, 0, -4), 5, 60)

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, now)
	require.NoError(t, err)

	assert.Equal(t, 3, bundle.Streak, "gap at day -3 ends the streak")
}

func TestComputeDashboardStreakFallsBackToYesterday(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	f.addLedgerEntry(now.AddDate(0, 0, -1), 1, 20)
	f.addLedgerEntry(now.AddDate(0, 0, -2), 2, 25)

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, now)
	require.NoError(t, err)

	assert.Equal(t, 2, bundle.Streak, "an empty today does not break the streak yet")
}

func TestComputeDashboardStreakZeroEntryBreaks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	f.addLedgerEntry(now, 0, 15)
	f.addLedgerEntry(now.AddDate(0, 0, -1), 0, 10)
	f.addLedgerEntry(now.AddDate(0, 0, -2), 4, 50)

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, now)
	require.NoError(t, err)

	assert.Equal(t, 0, bundle.Streak, "entries with zero completions do not count")
}

func TestComputeDashboardActivitySeries(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	f.addLedgerEntry(now.AddDate(0, 0, -40), 2, 30) // heatmap only
	f.addLedgerEntry(now.AddDate(0, 0, -10), 1, 20)
	f.addLedgerEntry(now, 3, 60)

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, now)
	require.NoError(t, err)

	require.Len(t, bundle.HeatmapData, 3)
	assert.Equal(t, "2025-05-06", bundle.HeatmapData[0].Date)
	assert.Equal(t, 2, bundle.HeatmapData[0].Count)

	require.Len(t, bundle.WeeklyStats, 2, "the 40-day-old entry is outside the 30-day window")
	assert.Equal(t, "2025-06-05", bundle.WeeklyStats[0].Date)
	assert.Equal(t, 1, bundle.WeeklyStats[0].Completed)
	assert.Equal(t, 20, bundle.WeeklyStats[0].TimeSpentMinutes)
	assert.Equal(t, "2025-06-15", bundle.WeeklyStats[1].Date)
}

func TestComputeDashboardRevisionDueCount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	subject := f.addSubject(t, "DSA", 2, 0, 0)
	now := time.Now().UTC()

	// First mastered record learned two days ago with no revisions done:
	// overdue on the one-day tier. The second was learned an hour ago.
	records := f.subtopics.byScope[f.scope]
	require.Len(t, records, 2)
	require.Equal(t, subject.ID, records[0].SubjectID)
	twoDaysAgo := now.AddDate(0, 0, -2)
	records[0].Subtopic.Revision.LearnedAt = &twoDaysAgo

	bundle, err := f.service.ComputeDashboard(context.Background(), f.scope, now)
	require.NoError(t, err)
	assert.Equal(t, 1, bundle.RevisionDueCount)
}

func TestComputeDashboardScopeIsolation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.addSubject(t, "DSA", 5, 0, 5)
	f.addLedgerEntry(time.Now().UTC(), 3, 30)

	other := domain.NewScope(f.scope.UserID, domain.TrackSarkari, "mechanical")
	bundle, err := f.service.ComputeDashboard(context.Background(), other, time.Now().UTC())
	require.NoError(t, err)

	assert.Zero(t, bundle.TotalSubjects)
	assert.Zero(t, bundle.TotalSubtopics)
	assert.Zero(t, bundle.Streak)
	assert.Empty(t, bundle.HeatmapData)
}
