package progress

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/events"
	"github.com/preptrack/preptrack-api/internal/store"
)

// fakeSubtopicStore is an in-memory store.SubtopicStore for service tests.
type fakeSubtopicStore struct {
	records       map[uuid.UUID]*store.SubtopicRecord
	updates       []*domain.Subtopic
	conflictsLeft int
	updateErr     error
}

var _ store.SubtopicStore = (*fakeSubtopicStore)(nil)

func (f *fakeSubtopicStore) Create(ctx context.Context, subtopic *domain.Subtopic) error {
	return nil
}

func (f *fakeSubtopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subtopic, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, store.ErrSubtopicNotFound
	}
	return record.Subtopic.Clone(), nil
}

func (f *fakeSubtopicStore) GetRecordForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*store.SubtopicRecord, error) {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return nil, store.ErrConflict
	}
	record, ok := f.records[id]
	if !ok {
		return nil, store.ErrSubtopicNotFound
	}
	return &store.SubtopicRecord{
		Subtopic:    record.Subtopic.Clone(),
		SubjectID:   record.SubjectID,
		SubjectName: record.SubjectName,
		Scope:       record.Scope,
	}, nil
}

func (f *fakeSubtopicStore) Update(ctx context.Context, subtopic *domain.Subtopic) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	record, ok := f.records[subtopic.ID]
	if !ok {
		return store.ErrSubtopicNotFound
	}
	record.Subtopic = subtopic.Clone()
	f.updates = append(f.updates, subtopic)
	return nil
}

func (f *fakeSubtopicStore) ListRecordsByScope(
	ctx context.Context,
	scope domain.Scope,
) ([]*store.SubtopicRecord, error) {
	return nil, nil
}

func (f *fakeSubtopicStore) WithTx(tx *sql.Tx) store.SubtopicStore {
	return f
}

type ledgerCall struct {
	scope domain.Scope
	date  time.Time
	delta int
}

// fakeActivityStore records increments and can be told to fail.
type fakeActivityStore struct {
	calls []ledgerCall
	err   error
}

var _ store.ActivityStore = (*fakeActivityStore)(nil)

func (f *fakeActivityStore) Increment(
	ctx context.Context,
	scope domain.Scope,
	date time.Time,
	delta int,
) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, ledgerCall{scope: scope, date: date, delta: delta})
	return nil
}

func (f *fakeActivityStore) Range(
	ctx context.Context,
	scope domain.Scope,
	from, to time.Time,
) ([]*domain.DailyActivity, error) {
	return nil, nil
}

// fakeEmitter captures emitted notification events.
type fakeEmitter struct {
	events []*events.NotificationEvent
	err    error
}

func (f *fakeEmitter) EmitEvent(ctx context.Context, event *events.NotificationEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type testEnv struct {
	service   *progressServiceImpl
	subtopics *fakeSubtopicStore
	activity  *fakeActivityStore
	emitter   *fakeEmitter
	userID    uuid.UUID
	subtopic  *domain.Subtopic
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userID := uuid.New()
	subtopic, err := domain.NewSubtopic(uuid.New(), "Two Pointers", 0)
	require.NoError(t, err)

	subtopics := &fakeSubtopicStore{
		records: map[uuid.UUID]*store.SubtopicRecord{
			subtopic.ID: {
				Subtopic:    subtopic,
				SubjectID:   uuid.New(),
				SubjectName: "DSA",
				Scope:       domain.NewScope(userID, domain.TrackPlacement, ""),
			},
		},
	}
	activity := &fakeActivityStore{}
	emitter := &fakeEmitter{}

	service := &progressServiceImpl{
		subtopics: subtopics,
		activity:  activity,
		emitter:   emitter,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		runInTx: func(ctx context.Context, db *sql.DB, fn store.TxFn) error {
			return fn(ctx, nil)
		},
	}

	return &testEnv{
		service:   service,
		subtopics: subtopics,
		activity:  activity,
		emitter:   emitter,
		userID:    userID,
		subtopic:  subtopic,
	}
}

func TestApplyCycleStatusToMasteredDispatchesSideEffects(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// NotStarted -> InProgress: no side effects.
	result, err := env.service.ApplyCycleStatus(ctx, env.userID, env.subtopic.ID, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, result.Subtopic.Status)
	assert.Empty(t, env.activity.calls)
	assert.Empty(t, env.emitter.events)

	// InProgress -> Mastered: ledger + notification.
	result, err = env.service.ApplyCycleStatus(ctx, env.userID, env.subtopic.ID, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMastered, result.Subtopic.Status)
	assert.True(t, result.Effects.LedgerIncrement)
	assert.NoError(t, result.LedgerError)

	require.Len(t, env.activity.calls, 1)
	assert.Equal(t, env.userID, env.activity.calls[0].scope.UserID)
	assert.Equal(t, 1, env.activity.calls[0].delta)

	require.Len(t, env.emitter.events, 1)
	assert.Equal(t, "Subtopic Mastered", env.emitter.events[0].Notification.Title)
	assert.Equal(t, env.userID, env.emitter.events[0].UserID)

	// The committed record in the store matches the returned one.
	stored, err := env.subtopics.GetByID(ctx, env.subtopic.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMastered, stored.Status)
	assert.True(t, stored.Revision.Learned)

	// Mastered -> NotStarted: ledger is never decremented.
	_, err = env.service.ApplyCycleStatus(ctx, env.userID, env.subtopic.ID, now)
	require.NoError(t, err)
	assert.Len(t, env.activity.calls, 1)
}

func TestApplyCycleStatusNotFound(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.service.ApplyCycleStatus(context.Background(), env.userID, uuid.New(), time.Now().UTC())
	assert.ErrorIs(t, err, ErrSubtopicNotFound)
}

func TestApplyCycleStatusWrongUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.service.ApplyCycleStatus(context.Background(), uuid.New(), env.subtopic.ID, time.Now().UTC())
	assert.ErrorIs(t, err, ErrSubtopicNotOwned)
	assert.Empty(t, env.subtopics.updates, "no write may happen for a foreign record")
}

func TestApplyToggleRevisionInvalidField(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	_, err := env.service.ApplyToggleRevision(
		context.Background(), env.userID, env.subtopic.ID,
		domain.RevisionField("revised9"), time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrInvalidRevisionField)
	assert.Empty(t, env.subtopics.updates)
}

func TestApplyToggleRevisionNeverTouchesLedger(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// true then false: notification only on the set, ledger untouched both ways.
	result, err := env.service.ApplyToggleRevision(ctx, env.userID, env.subtopic.ID, domain.FieldRevised1, now)
	require.NoError(t, err)
	assert.True(t, result.Subtopic.Revision.Revised1)
	assert.Empty(t, env.activity.calls)
	require.Len(t, env.emitter.events, 1)
	assert.Equal(t, "First Revision Done", env.emitter.events[0].Notification.Title)

	result, err = env.service.ApplyToggleRevision(ctx, env.userID, env.subtopic.ID, domain.FieldRevised1, now)
	require.NoError(t, err)
	assert.False(t, result.Subtopic.Revision.Revised1)
	assert.Empty(t, env.activity.calls)
	assert.Len(t, env.emitter.events, 1)
}

func TestApplyToggleRevisionLearnedSkipsLedger(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	result, err := env.service.ApplyToggleRevision(
		context.Background(), env.userID, env.subtopic.ID,
		domain.FieldLearned, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMastered, result.Subtopic.Status)
	assert.Empty(t, env.activity.calls, "only cycleStatus counts completions")
	require.Len(t, env.emitter.events, 1)
}

func TestApplyTransitionRetriesOnceOnConflict(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.subtopics.conflictsLeft = 1

	result, err := env.service.ApplyCycleStatus(context.Background(), env.userID, env.subtopic.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, result.Subtopic.Status)
}

func TestApplyTransitionSurfacesPersistentConflict(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.subtopics.conflictsLeft = 2

	_, err := env.service.ApplyCycleStatus(context.Background(), env.userID, env.subtopic.ID, time.Now().UTC())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLedgerFailureDoesNotFailTransition(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.activity.err = errors.New("ledger unavailable")
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := env.service.ApplyCycleStatus(ctx, env.userID, env.subtopic.ID, now)
	require.NoError(t, err)
	result, err := env.service.ApplyCycleStatus(ctx, env.userID, env.subtopic.ID, now)
	require.NoError(t, err, "a failed ledger increment must not fail the committed mutation")
	assert.Error(t, result.LedgerError)
	assert.Equal(t, domain.StatusMastered, result.Subtopic.Status)

	// The state change stayed committed.
	stored, err := env.subtopics.GetByID(ctx, env.subtopic.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMastered, stored.Status)
}

func TestEmitterFailureDoesNotFailTransition(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.emitter.err = errors.New("sink down")
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := env.service.ApplyCycleStatus(ctx, env.userID, env.subtopic.ID, now)
	require.NoError(t, err)
	result, err := env.service.ApplyCycleStatus(ctx, env.userID, env.subtopic.ID, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMastered, result.Subtopic.Status)
	assert.NoError(t, result.LedgerError)
}
