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

func newTestExportService(t *testing.T) (*ExportService, *EventService) {
	t.Helper()
	logger := logging.NewTestLogger()
	tracker := performance.NewTracker(nil)

	eventService, cacheManager := newTestEventService(t, &memoryEventRepo{})

	metrics := NewMetricsService(logger, tracker)
	funnels := NewFunnelService(logger, tracker)
	abTests := NewABTestService(newMemoryABTestRepo(), logger, tracker)
	cohorts := NewCohortService(logger, tracker)
	realTime := NewRealTimeService(cacheManager, 30*time.Minute, logger, tracker)

	export := NewExportService(eventService, metrics, funnels, abTests, cohorts, realTime, logger, tracker)
	return export, eventService
}

func TestExportEmptyEngine(t *testing.T) {
	export, _ := newTestExportService(t)

	bundle := export.Export(nil)

	require.NotNil(t, bundle)
	assert.False(t, bundle.GeneratedAt.IsZero())
	assert.Empty(t, bundle.Events)
	assert.NotNil(t, bundle.Metrics)
	assert.NotNil(t, bundle.RealTime)
	assert.Len(t, bundle.Funnels, 2, "default funnels are always analyzed")
	assert.Empty(t, bundle.ABTests)
}

func TestExportBundlesTrackedEvents(t *testing.T) {
	export, events := newTestExportService(t)

	_, err := events.Track(validTrackRequest())
	require.NoError(t, err)

	bundle := export.Export(nil)

	require.Len(t, bundle.Events, 1)
	assert.Equal(t, 1, bundle.Metrics.UniqueUsers)
	assert.Equal(t, 1, bundle.RealTime.ActiveUsers)
	assert.NotEmpty(t, bundle.WeeklyCohorts)
	assert.NotEmpty(t, bundle.MonthlyCohorts)
}

func TestExportHonorsDateRange(t *testing.T) {
	export, events := newTestExportService(t)

	_, err := events.Track(validTrackRequest())
	require.NoError(t, err)

	past := &analytics.DateRange{
		Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	bundle := export.Export(past)

	assert.Empty(t, bundle.Events)
	assert.Equal(t, past, bundle.DateRange)
}
