// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/risingpath/pulse-go/internal/application/services"
	"github.com/risingpath/pulse-go/internal/infrastructure/caching/manager"
	"github.com/risingpath/pulse-go/internal/infrastructure/messaging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
	persistence "github.com/risingpath/pulse-go/internal/infrastructure/persistence/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/persistence/database"
	"github.com/risingpath/pulse-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Analytics Services (stateless singletons)
	EventService    *services.EventService
	MetricsService  *services.MetricsService
	FunnelService   *services.FunnelService
	ABTestService   *services.ABTestService
	CohortService   *services.CohortService
	RealTimeService *services.RealTimeService
	ExportService   *services.ExportService
	AuthService     *services.AuthService

	// Infrastructure Dependencies
	DB           *database.DB
	CacheManager *manager.Manager
	Broadcaster  *messaging.LiveBroadcaster
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(logger *logging.ChanneledLogger) (*Container, error) {
	perfTracker := performance.NewTracker(nil)

	db, err := database.Open(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.EnsureSchema(); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	cacheManager, err := manager.NewManager(config.RealTimeMirrorCap)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache manager: %w", err)
	}

	eventRepo := persistence.NewSQLEventRepository(db, config.EventBufferCap, logger)
	abTestRepo := persistence.NewSQLABTestRepository(db, logger)
	collector := messaging.NewCollectorClient(config.CollectorEndpoint, config.CollectorTimeout, logger)
	broadcaster := messaging.NewLiveBroadcaster(logger)

	authService, err := services.NewAuthService(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	abTestService := services.NewABTestService(abTestRepo, logger, perfTracker)
	eventService := services.NewEventService(cacheManager, eventRepo, collector, abTestService, broadcaster, logger, perfTracker)
	metricsService := services.NewMetricsService(logger, perfTracker)
	funnelService := services.NewFunnelService(logger, perfTracker)
	cohortService := services.NewCohortService(logger, perfTracker)
	realTimeService := services.NewRealTimeService(cacheManager, config.RealTimeWindow, logger, perfTracker)
	exportService := services.NewExportService(eventService, metricsService, funnelService, abTestService, cohortService, realTimeService, logger, perfTracker)

	return &Container{
		EventService:    eventService,
		MetricsService:  metricsService,
		FunnelService:   funnelService,
		ABTestService:   abTestService,
		CohortService:   cohortService,
		RealTimeService: realTimeService,
		ExportService:   exportService,
		AuthService:     authService,

		DB:           db,
		CacheManager: cacheManager,
		Broadcaster:  broadcaster,
		Logger:       logger,
		PerfTracker:  perfTracker,
	}, nil
}

// Close releases infrastructure resources.
func (c *Container) Close() error {
	return c.DB.Close()
}
