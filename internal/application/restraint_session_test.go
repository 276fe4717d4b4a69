package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
	"github.com/bnema/rclctl/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type instantClock struct {
	waits []time.Duration
}

func (c *instantClock) Now() time.Time { return time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC) }

func (c *instantClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

func hardLimit(v float64) *float64 { return &v }

func fixtureSet() domain.RestraintSet {
	return domain.RestraintSet{
		Values: map[domain.Dimension]float64{
			"HALLUCINATION_RESISTANCE": 0.40,
			"CURIOSITY":                0.30,
			"LATENCY_BUDGET_MS":        500,
		},
		HardLimits: map[domain.Dimension]*float64{
			"HALLUCINATION_RESISTANCE": hardLimit(0.70),
			"CURIOSITY":                nil,
		},
	}
}

func loadedSession(t *testing.T) (*RestraintSession, *mocks.MockRestraintBackend, *instantClock) {
	t.Helper()

	backend := mocks.NewMockRestraintBackend(t)
	clock := &instantClock{}
	session := NewRestraintSession(backend, clock, DefaultRefreshDelay)
	session.Apply(fixtureSet())
	return session, backend, clock
}

func TestRestraintSessionEditTracksPendingAgainstBaseline(t *testing.T) {
	session, _, _ := loadedSession(t)
	assert.Equal(t, SessionClean, session.State())

	pending, err := session.Edit("CURIOSITY", 0.35)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.Equal(t, SessionDirty, session.State())

	pending, err = session.Edit("CURIOSITY", 0.3004)
	require.NoError(t, err)
	assert.False(t, pending)
	assert.Equal(t, SessionClean, session.State())
	assert.Empty(t, session.Pending())
}

func TestRestraintSessionDirtyWhileAnyDimensionPending(t *testing.T) {
	session, _, _ := loadedSession(t)

	_, err := session.Edit("CURIOSITY", 0.5)
	require.NoError(t, err)
	_, err = session.Edit("HALLUCINATION_RESISTANCE", 0.5)
	require.NoError(t, err)
	_, err = session.Edit("CURIOSITY", 0.30)
	require.NoError(t, err)

	assert.Equal(t, SessionDirty, session.State())
	assert.Equal(t, domain.PendingChangeSet{"HALLUCINATION_RESISTANCE": 0.5}, session.Pending())
}

func TestRestraintSessionResetRestoresBaselineWithoutBackend(t *testing.T) {
	session, _, _ := loadedSession(t)

	for i := 0; i < 5; i++ {
		_, err := session.Nudge("CURIOSITY", 1)
		require.NoError(t, err)
	}
	_, err := session.Edit("LATENCY_BUDGET_MS", 900)
	require.NoError(t, err)

	restored := session.Reset()
	assert.ElementsMatch(t, []domain.Dimension{"CURIOSITY", "LATENCY_BUDGET_MS"}, restored)
	assert.Empty(t, session.Pending())

	for _, row := range session.Snapshot().Rows {
		assert.InDelta(t, row.Baseline, row.Value, 1e-9, row.Dimension)
		assert.False(t, row.Pending)
	}
}

func TestRestraintSessionSaveOverHardLimitRequiresAuthorization(t *testing.T) {
	session, _, _ := loadedSession(t)

	_, err := session.Edit("HALLUCINATION_RESISTANCE", 0.75)
	require.NoError(t, err)
	assert.Equal(t, domain.PendingChangeSet{"HALLUCINATION_RESISTANCE": 0.75}, session.Pending())
	assert.True(t, session.RequiresAuth())

	// the mock has no expectations: any request would fail the test
	result, err := session.Save(context.Background())
	require.ErrorIs(t, err, domain.ErrAuthorizationRequired)
	assert.Zero(t, result.Attempted())
	assert.Equal(t, SessionDirty, session.State())
}

func TestRestraintSessionSaveReplaysAuthorizationOnEveryUpdate(t *testing.T) {
	session, backend, clock := loadedSession(t)

	_, err := session.Edit("HALLUCINATION_RESISTANCE", 0.75)
	require.NoError(t, err)
	_, err = session.Edit("CURIOSITY", 0.45)
	require.NoError(t, err)
	require.NoError(t, session.Authorize("operator-key"))

	var order []domain.Dimension
	backend.EXPECT().UpdateRestraint(mock.Anything, mock.MatchedBy(func(u ports.RestraintUpdate) bool {
		return u.Authorized && u.AuthorizationKey == "operator-key"
	})).Run(func(args mock.Arguments) {
		order = append(order, args.Get(1).(ports.RestraintUpdate).Dimension)
	}).Return("ok", nil).Times(2)

	refreshed := fixtureSet()
	refreshed.Values["HALLUCINATION_RESISTANCE"] = 0.75
	refreshed.Values["CURIOSITY"] = 0.45
	backend.EXPECT().GetRestraints(mock.Anything).Return(refreshed, nil).Once()

	result, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Dimension{"CURIOSITY", "HALLUCINATION_RESISTANCE"}, order)
	assert.Len(t, result.Saved, 2)
	assert.Empty(t, result.Failed)
	assert.True(t, result.Refreshed)
	assert.Equal(t, []time.Duration{DefaultRefreshDelay}, clock.waits)
	assert.Equal(t, SessionClean, session.State())
	assert.False(t, session.Authorized())
}

func TestRestraintSessionSavePartialSuccessTalliesIndependently(t *testing.T) {
	session, backend, _ := loadedSession(t)

	_, err := session.Edit("CURIOSITY", 0.45)
	require.NoError(t, err)
	_, err = session.Edit("LATENCY_BUDGET_MS", 800)
	require.NoError(t, err)

	backend.EXPECT().UpdateRestraint(mock.Anything, ports.RestraintUpdate{Dimension: "CURIOSITY", Value: 0.45}).Return("", nil).Once()
	backend.EXPECT().UpdateRestraint(mock.Anything, ports.RestraintUpdate{Dimension: "LATENCY_BUDGET_MS", Value: 800}).Return("", errors.New("rejected")).Once()

	refreshed := fixtureSet()
	refreshed.Values["CURIOSITY"] = 0.45
	backend.EXPECT().GetRestraints(mock.Anything).Return(refreshed, nil).Once()

	result, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Dimension{"CURIOSITY"}, result.Saved)
	assert.Contains(t, result.Failed, domain.Dimension("LATENCY_BUDGET_MS"))
	assert.Equal(t, 2, result.Attempted())

	// the failed edit stays pending against the refreshed baseline
	assert.Equal(t, domain.PendingChangeSet{"LATENCY_BUDGET_MS": 800}, session.Pending())
	assert.Equal(t, SessionDirty, session.State())
}

func TestRestraintSessionSaveAllFailuresSkipsRefresh(t *testing.T) {
	session, backend, clock := loadedSession(t)

	_, err := session.Edit("CURIOSITY", 0.45)
	require.NoError(t, err)
	backend.EXPECT().UpdateRestraint(mock.Anything, mock.Anything).Return("", errors.New("down")).Once()

	result, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Saved)
	assert.Len(t, result.Failed, 1)
	assert.False(t, result.Refreshed)
	assert.Empty(t, clock.waits)
}

func TestRestraintSessionLockedDimensionNeedsKey(t *testing.T) {
	backend := mocks.NewMockRestraintBackend(t)
	session := NewRestraintSession(backend, &instantClock{}, 0)
	set := fixtureSet()
	set.Values["HALLUCINATION_RESISTANCE"] = 0.70
	session.Apply(set)

	_, err := session.Edit("HALLUCINATION_RESISTANCE", 0.65)
	require.ErrorIs(t, err, domain.ErrDimensionLocked)

	require.NoError(t, session.Authorize("k"))
	pending, err := session.Edit("HALLUCINATION_RESISTANCE", 0.65)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestRestraintSessionRejectsUnknownDimensionAndEmptyKey(t *testing.T) {
	session, _, _ := loadedSession(t)

	_, err := session.Edit("NOPE", 0.1)
	require.ErrorIs(t, err, domain.ErrUnknownDimension)
	require.ErrorIs(t, session.Authorize("  "), domain.ErrValidation)
}

func TestRestraintSessionSaveWithoutChangesIsNoop(t *testing.T) {
	session, _, _ := loadedSession(t)

	result, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Attempted())
}

func TestRestraintSessionSnapshotMarksLimits(t *testing.T) {
	session, _, _ := loadedSession(t)
	_, err := session.Edit("HALLUCINATION_RESISTANCE", 0.75)
	require.NoError(t, err)

	matrix := session.Snapshot()
	require.Len(t, matrix.Rows, 3)
	assert.True(t, matrix.RequiresAuth)
	assert.Equal(t, 1, matrix.PendingCount)

	byDim := map[domain.Dimension]RestraintRow{}
	for _, row := range matrix.Rows {
		byDim[row.Dimension] = row
	}
	assert.True(t, byDim["HALLUCINATION_RESISTANCE"].ExceedsLimit)
	assert.Nil(t, byDim["CURIOSITY"].HardLimit)
	assert.True(t, byDim["LATENCY_BUDGET_MS"].Budget)
}
