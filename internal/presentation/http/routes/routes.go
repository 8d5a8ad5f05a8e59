// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/risingpath/pulse-go/internal/application/container"
	"github.com/risingpath/pulse-go/internal/presentation/http/handlers"
	"github.com/risingpath/pulse-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.Logger, container.PerfTracker)
	eventHandlers := handlers.NewEventHandlers(container.EventService, container.Logger, container.PerfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(
		container.EventService,
		container.MetricsService,
		container.FunnelService,
		container.CohortService,
		container.RealTimeService,
		container.ExportService,
		container.Logger,
		container.PerfTracker,
	)
	abTestHandlers := handlers.NewABTestHandlers(container.ABTestService, container.EventService, container.Logger, container.PerfTracker)
	liveHandlers := handlers.NewLiveHandlers(container.Broadcaster, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container)

	r.GET("/health", healthHandlers.GetHealth)

	api := r.Group("/api/v1")
	{
		// Ingestion is unauthenticated so browser snippets can post directly
		api.POST("/events", eventHandlers.PostEvent)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
		}

		// Assignment runs on the public tracking path
		api.GET("/abtests/:id/assignment", abTestHandlers.GetAssignment)

		// Websocket clients cannot set an Authorization header from the
		// browser, so the live feed stays outside the auth group
		api.GET("/analytics/live", liveHandlers.GetLive)

		abtests := api.Group("/abtests")
		abtests.Use(authHandlers.AuthMiddleware())
		{
			abtests.POST("", abTestHandlers.PostTest)
			abtests.GET("", abTestHandlers.GetTests)
			abtests.PUT("/:id/status", abTestHandlers.PutTestStatus)
			abtests.GET("/:id/results", abTestHandlers.GetResults)
		}

		analytics := api.Group("/analytics")
		analytics.Use(authHandlers.AuthMiddleware())
		{
			analytics.GET("/metrics", analyticsHandlers.GetMetrics)
			analytics.GET("/funnels/:name", analyticsHandlers.GetFunnel)
			analytics.GET("/cohorts", analyticsHandlers.GetCohorts)
			analytics.GET("/realtime", analyticsHandlers.GetRealTime)
			analytics.GET("/export", analyticsHandlers.GetExport)
		}
	}

	return r
}
