package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingpath/pulse-go/internal/application/services"
	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/caching/manager"
	"github.com/risingpath/pulse-go/internal/infrastructure/messaging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

// failingEventRepo simulates a broken durable buffer: the ingestion
// endpoint must still accept events.
type failingEventRepo struct{}

func (failingEventRepo) StoreEvent(*analytics.Event) error       { return fmt.Errorf("disk full") }
func (failingEventRepo) LoadEvents() ([]*analytics.Event, error) { return nil, nil }
func (failingEventRepo) Compact() error                          { return nil }
func (failingEventRepo) CountEvents() (int, error)               { return 0, nil }

type memoryABTestRepo struct{}

func (memoryABTestRepo) StoreTest(*analytics.ABTest) error               { return nil }
func (memoryABTestRepo) FindTest(string) (*analytics.ABTest, error)      { return nil, nil }
func (memoryABTestRepo) FindAllTests() ([]*analytics.ABTest, error)      { return nil, nil }
func (memoryABTestRepo) UpdateStatus(string, analytics.TestStatus) error { return nil }

type disabledForwarder struct{}

func (disabledForwarder) Forward(*analytics.Event) error { return nil }
func (disabledForwarder) Enabled() bool                  { return false }

func newTestRouter(t *testing.T, repo analytics.EventRepository) (*gin.Engine, *services.EventService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewTestLogger()
	tracker := performance.NewTracker(nil)
	cacheManager, err := manager.NewManager(100)
	require.NoError(t, err)

	abTests := services.NewABTestService(memoryABTestRepo{}, logger, tracker)
	broadcaster := messaging.NewLiveBroadcaster(logger)
	eventService := services.NewEventService(cacheManager, repo, disabledForwarder{}, abTests, broadcaster, logger, tracker)

	metricsService := services.NewMetricsService(logger, tracker)
	funnelService := services.NewFunnelService(logger, tracker)
	cohortService := services.NewCohortService(logger, tracker)
	realTimeService := services.NewRealTimeService(cacheManager, 30*time.Minute, logger, tracker)
	exportService := services.NewExportService(eventService, metricsService, funnelService, abTests, cohortService, realTimeService, logger, tracker)

	eventHandlers := NewEventHandlers(eventService, logger, tracker)
	analyticsHandlers := NewAnalyticsHandlers(eventService, metricsService, funnelService, cohortService, realTimeService, exportService, logger, tracker)

	r := gin.New()
	r.POST("/api/v1/events", eventHandlers.PostEvent)
	r.GET("/api/v1/analytics/metrics", analyticsHandlers.GetMetrics)
	r.GET("/api/v1/analytics/funnels/:name", analyticsHandlers.GetFunnel)
	r.GET("/api/v1/analytics/cohorts", analyticsHandlers.GetCohorts)
	r.GET("/api/v1/analytics/realtime", analyticsHandlers.GetRealTime)
	return r, eventService
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestPostEventAccepted(t *testing.T) {
	r, eventService := newTestRouter(t, failingEventRepo{})

	w := postJSON(r, "/api/v1/events", `{
		"sessionId": "s1",
		"type": "page_view",
		"category": "engagement",
		"metadata": {"page": "/pricing"}
	}`)

	assert.Equal(t, http.StatusAccepted, w.Code, "persistence failure must not surface to the client")
	assert.JSONEq(t, `{"status": "accepted"}`, w.Body.String())
	assert.Len(t, eventService.Events(), 1)
}

func TestPostEventRejectsMalformedBody(t *testing.T) {
	r, _ := newTestRouter(t, failingEventRepo{})

	w := postJSON(r, "/api/v1/events", `{"type": "page_view"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostEventRejectsInvalidType(t *testing.T) {
	r, _ := newTestRouter(t, failingEventRepo{})

	w := postJSON(r, "/api/v1/events", `{
		"sessionId": "s1",
		"type": "hover",
		"category": "engagement"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMetrics(t *testing.T) {
	r, _ := newTestRouter(t, failingEventRepo{})

	w := get(r, "/api/v1/analytics/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uniqueUsers"`)
}

func TestGetMetricsRejectsBadDates(t *testing.T) {
	r, _ := newTestRouter(t, failingEventRepo{})

	w := get(r, "/api/v1/analytics/metrics?startDate=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFunnelUnknownIs404(t *testing.T) {
	r, _ := newTestRouter(t, failingEventRepo{})

	w := get(r, "/api/v1/analytics/funnels/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFunnelKnown(t *testing.T) {
	r, _ := newTestRouter(t, failingEventRepo{})

	w := get(r, "/api/v1/analytics/funnels/lead-magnet")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalConversionRate"`)
}

func TestGetCohortsRejectsBadGranularity(t *testing.T) {
	r, _ := newTestRouter(t, failingEventRepo{})

	w := get(r, "/api/v1/analytics/cohorts?granularity=daily")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/api/v1/analytics/cohorts")
	assert.Equal(t, http.StatusOK, w.Code, "defaults to weekly")
}

func TestGetRealTime(t *testing.T) {
	r, _ := newTestRouter(t, failingEventRepo{})

	w := get(r, "/api/v1/analytics/realtime")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"activeUsers"`)
}
