package revision

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// learnedSubtopic builds a mastered subtopic whose learned date is the given
// number of days before now, with the given tiers already ticked.
func learnedSubtopic(t *testing.T, now time.Time, daysAgo int, done ...domain.RevisionField) *domain.Subtopic {
	t.Helper()
	subtopic, err := domain.NewSubtopic(uuid.New(), "Stacks", 0)
	require.NoError(t, err)

	learnedAt := now.AddDate(0, 0, -daysAgo)
	subtopic.Status = domain.StatusMastered
	require.NoError(t, subtopic.Revision.SetFlag(domain.FieldLearned, true, &learnedAt))
	for _, field := range done {
		at := learnedAt
		require.NoError(t, subtopic.Revision.SetFlag(field, true, &at))
	}
	require.NoError(t, subtopic.Validate())
	return subtopic
}

func TestScheduleOrderAndOffsets(t *testing.T) {
	t.Parallel()
	schedule := Schedule()
	require.Len(t, schedule, 4)
	assert.Equal(t, Tier{Field: domain.FieldRevised1, ThresholdDays: 1}, schedule[0])
	assert.Equal(t, Tier{Field: domain.FieldRevised2, ThresholdDays: 3}, schedule[1])
	assert.Equal(t, Tier{Field: domain.FieldRevised3, ThresholdDays: 7}, schedule[2])
	assert.Equal(t, Tier{Field: domain.FieldFinalRevised, ThresholdDays: 30}, schedule[3])
}

func TestIsOverdue(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		daysAgo int
		done    []domain.RevisionField
		want    bool
	}{
		{
			name:    "two days unrevised is overdue on first tier",
			daysAgo: 2,
			want:    true,
		},
		{
			name:    "two days with first revision done is not overdue",
			daysAgo: 2,
			done:    []domain.RevisionField{domain.FieldRevised1},
			want:    false,
		},
		{
			name:    "same day is never overdue",
			daysAgo: 0,
			want:    false,
		},
		{
			name:    "four days with only first revision is overdue on second tier",
			daysAgo: 4,
			done:    []domain.RevisionField{domain.FieldRevised1},
			want:    true,
		},
		{
			name:    "thirty days with three tiers done is overdue on final",
			daysAgo: 30,
			done: []domain.RevisionField{
				domain.FieldRevised1, domain.FieldRevised2, domain.FieldRevised3,
			},
			want: true,
		},
		{
			name:    "all tiers done is never overdue",
			daysAgo: 400,
			done: []domain.RevisionField{
				domain.FieldRevised1, domain.FieldRevised2,
				domain.FieldRevised3, domain.FieldFinalRevised,
			},
			want: false,
		},
		{
			name:    "overdue on several tiers at once is still overdue",
			daysAgo: 10,
			want:    true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			subtopic := learnedSubtopic(t, now, tc.daysAgo, tc.done...)
			assert.Equal(t, tc.want, IsOverdue(subtopic, now))
		})
	}
}

func TestIsOverdueIgnoresUnlearnedRecords(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	subtopic, err := domain.NewSubtopic(uuid.New(), "Queues", 0)
	require.NoError(t, err)

	assert.False(t, IsOverdue(subtopic, now))
	assert.Equal(t, -1, DaysSinceLearned(subtopic, now))
}

func TestDaysSinceLearnedFloors(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// 47 hours elapsed is still 1 whole day.
	subtopic := learnedSubtopic(t, now, 0)
	learnedAt := now.Add(-47 * time.Hour)
	require.NoError(t, subtopic.Revision.SetFlag(domain.FieldLearned, true, &learnedAt))
	assert.Equal(t, 1, DaysSinceLearned(subtopic, now))

	// A learned date in the future clamps to zero days.
	future := now.Add(6 * time.Hour)
	require.NoError(t, subtopic.Revision.SetFlag(domain.FieldLearned, true, &future))
	assert.Equal(t, 0, DaysSinceLearned(subtopic, now))
}

func TestCountOverdueCountsEachRecordOnce(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	subtopics := []*domain.Subtopic{
		learnedSubtopic(t, now, 10), // overdue on tiers 1, 2 and 3
		learnedSubtopic(t, now, 2, domain.FieldRevised1), // not overdue
		learnedSubtopic(t, now, 2),                       // overdue on tier 1
	}
	// And one never learned.
	fresh, err := domain.NewSubtopic(uuid.New(), "Graphs", 0)
	require.NoError(t, err)
	subtopics = append(subtopics, fresh)

	assert.Equal(t, 2, CountOverdue(subtopics, now))

	overdue := FilterOverdue(subtopics, now)
	require.Len(t, overdue, 2)
	assert.Same(t, subtopics[0], overdue[0])
	assert.Same(t, subtopics[2], overdue[1])
}
