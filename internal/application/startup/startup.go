// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/risingpath/pulse-go/internal/application/container"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/presentation/http/server"
	"github.com/risingpath/pulse-go/pkg/config"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("\033[32m" + `
  ░█▀█░█░█░█░░░█▀▀░█▀▀
  ░█▀▀░█░█░█░░░▀▀█░█▀▀
  ░▀░░░▀▀▀░▀▀▀░▀▀▀░▀▀▀
` + "\033[97m" + `
  behavioral analytics engine
` + "\033[0m")

	// Step 1: Create the channeled logger
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.LogDirectory = config.LogDirectory
	logger, err := logging.NewChanneledLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Startup().Info("Channeled logging initialized", "directory", config.LogDirectory)

	// Step 2: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer, err := container.NewContainer(logger)
	if err != nil {
		return fmt.Errorf("container initialization failed: %w", err)
	}
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 3: Hydrate the event log from the persisted buffer
	logger.Startup().Info("Hydrating event log from persisted buffer...")
	hydrateStart := time.Now()
	if err := appContainer.EventService.Hydrate(); err != nil {
		logger.Startup().Error("Event log hydration failed", "error", err.Error(), "duration", time.Since(hydrateStart))
	} else {
		logger.Startup().Info("Event log hydrated", "duration", time.Since(hydrateStart))
	}

	// Step 4: Start the live feed broadcaster
	go appContainer.Broadcaster.Run()
	logger.Startup().Info("Live feed broadcaster started")

	// Step 5: Schedule background jobs
	logger.Startup().Info("Scheduling background jobs...")
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(config.CompactionSchedule, appContainer.EventService.Compact); err != nil {
		return fmt.Errorf("failed to schedule buffer compaction: %w", err)
	}
	if _, err := scheduler.AddFunc(config.MirrorPruneSchedule, appContainer.RealTimeService.PruneMirror); err != nil {
		return fmt.Errorf("failed to schedule mirror pruning: %w", err)
	}
	scheduler.Start()
	logger.Startup().Info("Background jobs scheduled",
		"compaction", config.CompactionSchedule,
		"mirrorPrune", config.MirrorPruneSchedule)

	// Step 6: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	scheduler.Stop()
	logger.Shutdown().Info("Background jobs stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing infrastructure...")
	if err := appContainer.Close(); err != nil {
		logger.Shutdown().Error("Error closing container", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
