package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/risingpath/pulse-go/internal/application/services"
	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

const queryDateLayout = "2006-01-02"

// AnalyticsHandlers contains all read-side analytics HTTP handlers
type AnalyticsHandlers struct {
	eventService    *services.EventService
	metricsService  *services.MetricsService
	funnelService   *services.FunnelService
	cohortService   *services.CohortService
	realTimeService *services.RealTimeService
	exportService   *services.ExportService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies
func NewAnalyticsHandlers(
	eventService *services.EventService,
	metricsService *services.MetricsService,
	funnelService *services.FunnelService,
	cohortService *services.CohortService,
	realTimeService *services.RealTimeService,
	exportService *services.ExportService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		eventService:    eventService,
		metricsService:  metricsService,
		funnelService:   funnelService,
		cohortService:   cohortService,
		realTimeService: realTimeService,
		exportService:   exportService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// parseDateRange reads optional startDate/endDate query params. The end
// date is inclusive through the end of that day. A nil range means all-time.
func parseDateRange(c *gin.Context) (*analytics.DateRange, error) {
	startStr := c.Query("startDate")
	endStr := c.Query("endDate")
	if startStr == "" && endStr == "" {
		return nil, nil
	}

	rng := &analytics.DateRange{}
	if startStr != "" {
		start, err := time.Parse(queryDateLayout, startStr)
		if err != nil {
			return nil, err
		}
		rng.Start = start
	}
	if endStr != "" {
		end, err := time.Parse(queryDateLayout, endStr)
		if err != nil {
			return nil, err
		}
		rng.End = end.Add(24*time.Hour - time.Nanosecond)
	}
	return rng, nil
}

// GetMetrics handles GET /api/v1/analytics/metrics
func (h *AnalyticsHandlers) GetMetrics(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_metrics_request")
	defer marker.Complete()

	rng, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, expected YYYY-MM-DD"})
		return
	}

	metrics := h.metricsService.Compute(h.eventService.Events(), rng)

	marker.SetSuccess(true)
	h.logger.Analytics().Debug("Computed dashboard metrics", "duration", time.Since(start))
	c.JSON(http.StatusOK, metrics)
}

// GetFunnel handles GET /api/v1/analytics/funnels/:name
func (h *AnalyticsHandlers) GetFunnel(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_funnel_request")
	defer marker.Complete()

	rng, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, expected YYYY-MM-DD"})
		return
	}

	name := c.Param("name")
	analysis, err := h.funnelService.Analyze(name, h.eventService.Events(), rng)
	if err != nil {
		h.logger.Analytics().Debug("Funnel analysis failed", "funnel", name, "error", err.Error())
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	h.logger.Analytics().Debug("Computed funnel analysis", "funnel", name, "duration", time.Since(start))
	c.JSON(http.StatusOK, analysis)
}

// GetCohorts handles GET /api/v1/analytics/cohorts
func (h *AnalyticsHandlers) GetCohorts(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_cohorts_request")
	defer marker.Complete()

	granularity := analytics.CohortGranularity(c.DefaultQuery("granularity", string(analytics.CohortWeekly)))
	cohorts, err := h.cohortService.Generate(h.eventService.Events(), granularity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"granularity": granularity, "cohorts": cohorts})
}

// GetRealTime handles GET /api/v1/analytics/realtime
func (h *AnalyticsHandlers) GetRealTime(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_realtime_request")
	defer marker.Complete()

	snapshot := h.realTimeService.Snapshot()

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, snapshot)
}

// GetExport handles GET /api/v1/analytics/export - full analytics bundle
func (h *AnalyticsHandlers) GetExport(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_export_request")
	defer marker.Complete()

	rng, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, expected YYYY-MM-DD"})
		return
	}

	bundle := h.exportService.Export(rng)

	marker.SetSuccess(true)
	h.logger.Analytics().Info("Generated analytics export", "events", len(bundle.Events), "duration", time.Since(start))
	c.JSON(http.StatusOK, bundle)
}
