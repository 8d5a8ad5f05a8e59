package services

import (
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

// ExportBundle packages raw events together with every derived view for
// offline analysis.
type ExportBundle struct {
	GeneratedAt   time.Time                    `json:"generatedAt"`
	DateRange     *analytics.DateRange         `json:"dateRange,omitempty"`
	Events        []*analytics.Event           `json:"events"`
	Metrics       *analytics.AnalyticsMetrics  `json:"metrics"`
	Funnels       []*analytics.FunnelAnalysis  `json:"funnels"`
	ABTests       []*analytics.ABTest          `json:"abTests"`
	WeeklyCohorts []*analytics.CohortAnalysis  `json:"weeklyCohorts"`
	MonthlyCohorts []*analytics.CohortAnalysis `json:"monthlyCohorts"`
	RealTime      *analytics.RealTimeSnapshot  `json:"realTime"`
}

// ExportService assembles the full analytics bundle from the read-side
// services.
type ExportService struct {
	events      *EventService
	metrics     *MetricsService
	funnels     *FunnelService
	abTests     *ABTestService
	cohorts     *CohortService
	realTime    *RealTimeService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewExportService creates a new export service with its dependencies.
func NewExportService(
	events *EventService,
	metrics *MetricsService,
	funnels *FunnelService,
	abTests *ABTestService,
	cohorts *CohortService,
	realTime *RealTimeService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *ExportService {
	return &ExportService{
		events:      events,
		metrics:     metrics,
		funnels:     funnels,
		abTests:     abTests,
		cohorts:     cohorts,
		realTime:    realTime,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Export bundles events and all derived views. Individual view failures
// leave that section empty rather than failing the whole export.
func (s *ExportService) Export(rng *analytics.DateRange) *ExportBundle {
	start := time.Now()
	marker := s.perfTracker.StartOperation("analytics:export")
	defer marker.Complete()

	allEvents := s.events.Events()
	filtered := analytics.FilterEvents(allEvents, rng)

	bundle := &ExportBundle{
		GeneratedAt: time.Now().UTC(),
		DateRange:   rng,
		Events:      filtered,
		Metrics:     s.metrics.Compute(allEvents, rng),
		RealTime:    s.realTime.Snapshot(),
	}

	for _, funnel := range s.funnels.Funnels() {
		analysis, err := s.funnels.Analyze(funnel.Name, allEvents, rng)
		if err != nil {
			s.logger.Analytics().Error("Export funnel analysis failed", "error", err.Error(), "funnel", funnel.Name)
			continue
		}
		bundle.Funnels = append(bundle.Funnels, analysis)
	}

	tests, err := s.abTests.All()
	if err != nil {
		s.logger.Analytics().Error("Export A/B test listing failed", "error", err.Error())
	}
	for _, test := range tests {
		results, err := s.abTests.Results(test.ID, filtered)
		if err != nil || results == nil {
			continue
		}
		bundle.ABTests = append(bundle.ABTests, results)
	}

	if weekly, err := s.cohorts.Generate(filtered, analytics.CohortWeekly); err == nil {
		bundle.WeeklyCohorts = weekly
	}
	if monthly, err := s.cohorts.Generate(filtered, analytics.CohortMonthly); err == nil {
		bundle.MonthlyCohorts = monthly
	}

	marker.SetSuccess(true)
	s.logger.Analytics().Info("Analytics export generated",
		"events", len(filtered),
		"funnels", len(bundle.Funnels),
		"abTests", len(bundle.ABTests),
		"duration", time.Since(start))
	return bundle
}
