package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/risingpath/pulse-go/internal/application/container"
)

// HealthHandlers contains the service health check handler
type HealthHandlers struct {
	container *container.Container
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(container *container.Container) *HealthHandlers {
	return &HealthHandlers{container: container}
}

// GetHealth handles GET /health - liveness plus basic engine stats
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	status := "ok"
	httpStatus := http.StatusOK
	if err := h.container.DB.Ping(); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":      status,
		"uptime":      h.container.PerfTracker.Uptime().String(),
		"events":      h.container.CacheManager.Events.Len(),
		"liveClients": h.container.Broadcaster.ClientCount(),
	})
}
