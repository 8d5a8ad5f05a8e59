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

// ABTestHandlers contains A/B test management HTTP handlers
type ABTestHandlers struct {
	abTestService *services.ABTestService
	eventService  *services.EventService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewABTestHandlers creates A/B test handlers with injected dependencies
func NewABTestHandlers(abTestService *services.ABTestService, eventService *services.EventService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ABTestHandlers {
	return &ABTestHandlers{
		abTestService: abTestService,
		eventService:  eventService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// PostTest handles POST /api/v1/abtests - create a test definition
func (h *ABTestHandlers) PostTest(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_abtest_request")
	defer marker.Complete()

	var test analytics.ABTest
	if err := c.ShouldBindJSON(&test); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	id, err := h.abTestService.Create(&test)
	if err != nil {
		h.logger.Analytics().Warn("A/B test creation rejected", "name", test.Name, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	h.logger.Analytics().Info("A/B test created", "testId", id, "name", test.Name)
	c.JSON(http.StatusCreated, gin.H{"id": id, "status": test.Status})
}

// GetTests handles GET /api/v1/abtests - list all test definitions
func (h *ABTestHandlers) GetTests(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_abtests_request")
	defer marker.Complete()

	tests, err := h.abTestService.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tests"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

// PutTestStatus handles PUT /api/v1/abtests/:id/status - lifecycle transitions
func (h *ABTestHandlers) PutTestStatus(c *gin.Context) {
	marker := h.perfTracker.StartOperation("put_abtest_status_request")
	defer marker.Complete()

	var req struct {
		Status analytics.TestStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	testID := c.Param("id")
	if err := h.abTestService.SetStatus(testID, req.Status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	h.logger.Analytics().Info("A/B test status updated", "testId", testID, "status", req.Status)
	c.JSON(http.StatusOK, gin.H{"id": testID, "status": req.Status})
}

// GetAssignment handles GET /api/v1/abtests/:id/assignment - deterministic
// variant bucketing for a user
func (h *ABTestHandlers) GetAssignment(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_assignment_request")
	defer marker.Complete()

	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	testID := c.Param("id")
	variantID, err := h.abTestService.Assignment(testID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Assignment failed"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"testId": testID, "userId": userID, "variantId": variantID})
}

// GetResults handles GET /api/v1/abtests/:id/results - per-variant stats
// with statistical confidence
func (h *ABTestHandlers) GetResults(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_results_request")
	defer marker.Complete()

	testID := c.Param("id")
	test, err := h.abTestService.Results(testID, h.eventService.Events())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute results"})
		return
	}
	if test == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown test"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Analytics().Debug("Computed A/B test results", "testId", testID, "duration", time.Since(start))
	c.JSON(http.StatusOK, test)
}
