package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/risingpath/pulse-go/internal/application/services"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

// EventHandlers contains event ingestion HTTP handlers
type EventHandlers struct {
	eventService *services.EventService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewEventHandlers creates event handlers with injected dependencies
func NewEventHandlers(eventService *services.EventService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EventHandlers {
	return &EventHandlers{
		eventService: eventService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// PostEvent handles POST /api/v1/events - fire-and-forget event ingestion.
// Malformed requests are rejected; everything else is accepted even when
// downstream side effects fail.
func (h *EventHandlers) PostEvent(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_event_request")
	defer marker.Complete()

	var req services.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Events().Debug("Event request JSON binding failed", "error", err.Error())
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if _, err := h.eventService.Track(&req); err != nil {
		h.logger.Events().Warn("Event rejected", "error", err.Error(), "sessionId", req.SessionID)
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
