package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

func newTestCohortService(t *testing.T) *CohortService {
	t.Helper()
	return NewCohortService(logging.NewTestLogger(), performance.NewTracker(nil))
}

func TestGenerateRejectsUnknownGranularity(t *testing.T) {
	s := newTestCohortService(t)

	_, err := s.Generate(nil, "daily")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cohort granularity")
}

func TestGenerateEmptyEvents(t *testing.T) {
	s := newTestCohortService(t)

	cohorts, err := s.Generate(nil, analytics.CohortWeekly)
	require.NoError(t, err)
	assert.Empty(t, cohorts)
}

func TestGenerateWeeklyBucketing(t *testing.T) {
	s := newTestCohortService(t)

	// 2025-06-11 is a Wednesday; its week starts Sunday 2025-06-08.
	wednesday := time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)
	nextMonday := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	events := []*analytics.Event{
		ev("alice", "s1", analytics.EventPageView, wednesday),
		ev("bob", "s2", analytics.EventPageView, nextMonday),
	}

	cohorts, err := s.Generate(events, analytics.CohortWeekly)
	require.NoError(t, err)
	require.Len(t, cohorts, 2)

	assert.Equal(t, "2025-06-08", cohorts[0].Period)
	assert.Equal(t, 1, cohorts[0].Size)
	assert.Equal(t, "2025-06-15", cohorts[1].Period)
	assert.True(t, cohorts[0].Start.Before(cohorts[1].Start), "cohorts sorted by start")
}

func TestGenerateMonthlyBucketing(t *testing.T) {
	s := newTestCohortService(t)

	events := []*analytics.Event{
		ev("alice", "s1", analytics.EventPageView, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)),
		ev("alice", "s1", analytics.EventPageView, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
		ev("bob", "s2", analytics.EventPageView, time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)),
	}

	cohorts, err := s.Generate(events, analytics.CohortMonthly)
	require.NoError(t, err)
	require.Len(t, cohorts, 2)

	assert.Equal(t, "2025-05", cohorts[0].Period)
	assert.Equal(t, 1, cohorts[0].Size, "alice belongs to her first-seen month only")
	assert.Equal(t, "2025-06", cohorts[1].Period)
	assert.Equal(t, 1, cohorts[1].Size)
}

func TestGenerateRetentionIsCumulative(t *testing.T) {
	s := newTestCohortService(t)

	first := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	events := []*analytics.Event{
		ev("alice", "s1", analytics.EventPageView, first),
	}

	cohorts, err := s.Generate(events, analytics.CohortMonthly)
	require.NoError(t, err)
	require.Len(t, cohorts, 1)

	// The cohort-defining event itself counts as activity at every later
	// checkpoint, so the cumulative curve reads 100% across the board.
	curve := cohorts[0].Retention
	assert.InDelta(t, 100.0, curve.Week1, 0.001)
	assert.InDelta(t, 100.0, curve.Week4, 0.001)
	assert.InDelta(t, 100.0, curve.Month6, 0.001)
}

func TestGenerateRevenueSplit(t *testing.T) {
	s := newTestCohortService(t)

	first := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	events := []*analytics.Event{
		ev("alice", "s1", analytics.EventPageView, first),
		withValue(ev("alice", "s1", analytics.EventConversion, first.Add(time.Hour)), 100),
		ev("bob", "s2", analytics.EventPageView, first.Add(2*time.Hour)),
		withValue(ev("bob", "s2", analytics.EventConversion, first.Add(3*time.Hour)), 100),
	}

	cohorts, err := s.Generate(events, analytics.CohortMonthly)
	require.NoError(t, err)
	require.Len(t, cohorts, 1)

	revenue := cohorts[0].Revenue
	assert.InDelta(t, 200.0, revenue.Total, 0.001)
	assert.InDelta(t, 100.0, revenue.PerUser, 0.001)
	assert.InDelta(t, 80.0, revenue.Month1, 0.001)
	assert.InDelta(t, 60.0, revenue.Month2, 0.001)
	assert.InDelta(t, 60.0, revenue.Month3, 0.001)
}

func TestBucketStartSundayTruncation(t *testing.T) {
	sunday := time.Date(2025, 6, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), bucketStart(sunday, analytics.CohortWeekly))

	saturday := time.Date(2025, 6, 14, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), bucketStart(saturday, analytics.CohortWeekly))

	midMonth := time.Date(2025, 6, 14, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), bucketStart(midMonth, analytics.CohortMonthly))
}
