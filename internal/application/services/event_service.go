// Package services provides the application layer: stateless singleton
// services wired by the container, one per analytics concern.
package services

import (
	"fmt"
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/caching/manager"
	"github.com/risingpath/pulse-go/internal/infrastructure/messaging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
	"github.com/risingpath/pulse-go/internal/infrastructure/security"
)

// TrackRequest is an event as submitted by a UI collaborator: everything
// but the ID and timestamp, which are assigned at ingestion.
type TrackRequest struct {
	UserID    string              `json:"userId"`
	SessionID string              `json:"sessionId" binding:"required"`
	Type      analytics.EventType `json:"type" binding:"required"`
	Category  analytics.Category  `json:"category" binding:"required"`
	Action    string              `json:"action"`
	Label     string              `json:"label"`
	Value     *float64            `json:"value"`
	Metadata  map[string]any      `json:"metadata"`
}

// EventService orchestrates event ingestion: append to the in-memory log,
// then best-effort side effects (durable buffer, remote collector, A/B
// bookkeeping, real-time mirror, live feed). Side-effect failures are
// logged and swallowed: analytics loss is acceptable, breaking the
// calling UI is not.
type EventService struct {
	cacheManager *manager.Manager
	repo         analytics.EventRepository
	forwarder    messaging.Forwarder
	abTests      *ABTestService
	broadcaster  *messaging.LiveBroadcaster
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewEventService creates a new event service with its dependencies.
func NewEventService(
	cacheManager *manager.Manager,
	repo analytics.EventRepository,
	forwarder messaging.Forwarder,
	abTests *ABTestService,
	broadcaster *messaging.LiveBroadcaster,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *EventService {
	return &EventService{
		cacheManager: cacheManager,
		repo:         repo,
		forwarder:    forwarder,
		abTests:      abTests,
		broadcaster:  broadcaster,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Hydrate seeds the in-memory log from the persisted buffer. Called once
// during startup.
func (s *EventService) Hydrate() error {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return fmt.Errorf("failed to hydrate event log: %w", err)
	}
	s.cacheManager.Events.Hydrate(events)
	s.logger.Events().Info("Event log hydrated", "events", len(events))
	return nil
}

// Track ingests one event. Never returns an error for downstream
// side-effect failures; only a structurally invalid request is rejected.
func (s *EventService) Track(req *TrackRequest) (*analytics.Event, error) {
	marker := s.perfTracker.StartOperation("events:track")
	defer marker.Complete()

	if err := validateTrackRequest(req); err != nil {
		marker.SetError(err)
		return nil, err
	}

	event := &analytics.Event{
		ID:        security.GenerateULID(),
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Type:      req.Type,
		Category:  req.Category,
		Action:    req.Action,
		Label:     req.Label,
		Value:     req.Value,
		Timestamp: time.Now().UTC(),
		Metadata:  req.Metadata,
	}

	s.cacheManager.Events.Append(event)
	s.cacheManager.Recent.Add(event)

	if err := s.repo.StoreEvent(event); err != nil {
		// In-memory state stays authoritative for the session.
		s.logger.Events().Error("Event persistence failed", "error", err.Error(), "eventId", event.ID)
	}

	s.abTests.RecordExposure(event)
	s.broadcaster.BroadcastEvent(event)

	if s.forwarder.Enabled() {
		go func() {
			if err := s.forwarder.Forward(event); err != nil {
				s.logger.Collector().Error("Collector forward failed", "error", err.Error(), "eventId", event.ID)
			}
		}()
	}

	marker.SetSuccess(true)
	s.logger.Events().Debug("Event tracked",
		"eventId", event.ID,
		"type", event.Type,
		"sessionId", event.SessionID)
	return event, nil
}

// Events returns a snapshot of the in-memory log.
func (s *EventService) Events() []*analytics.Event {
	return s.cacheManager.Events.Snapshot()
}

// Compact re-applies the durable buffer cap. Driven by the background
// scheduler as a safety net alongside per-insert trimming.
func (s *EventService) Compact() {
	if err := s.repo.Compact(); err != nil {
		s.logger.Database().Error("Scheduled compaction failed", "error", err.Error())
	}
}

func validateTrackRequest(req *TrackRequest) error {
	if req.SessionID == "" {
		return fmt.Errorf("sessionId is required")
	}
	switch req.Type {
	case analytics.EventPageView, analytics.EventToolUse, analytics.EventContentView,
		analytics.EventCTAClick, analytics.EventFormSubmit, analytics.EventConversion,
		analytics.EventExit:
	default:
		return fmt.Errorf("invalid event type %q", req.Type)
	}
	switch req.Category {
	case analytics.CategoryEngagement, analytics.CategoryConversion,
		analytics.CategoryRetention, analytics.CategoryAcquisition:
	default:
		return fmt.Errorf("invalid event category %q", req.Category)
	}
	return nil
}
