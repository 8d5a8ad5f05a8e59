package services

import (
	"sort"
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/caching/manager"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

// topListSize caps the top-pages and top-sources tables.
const topListSize = 10

// RealTimeService answers "what's happening right now" from a bounded
// window over the event log, without rescanning all history for the
// recent-events feed.
type RealTimeService struct {
	cacheManager *manager.Manager
	window       time.Duration
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewRealTimeService creates a new real-time monitor with its dependencies.
func NewRealTimeService(cacheManager *manager.Manager, window time.Duration, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RealTimeService {
	return &RealTimeService{
		cacheManager: cacheManager,
		window:       window,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Snapshot computes the live view over the last window of events.
func (s *RealTimeService) Snapshot() *analytics.RealTimeSnapshot {
	return s.SnapshotAt(time.Now().UTC())
}

// SnapshotAt is Snapshot with an explicit reference time.
func (s *RealTimeService) SnapshotAt(now time.Time) *analytics.RealTimeSnapshot {
	marker := s.perfTracker.StartOperation("analytics:realtime_snapshot")
	defer marker.Complete()

	windowStart := now.Add(-s.window)
	snapshot := &analytics.RealTimeSnapshot{
		WindowStart: windowStart,
		TopPages:    []analytics.PageCount{},
		TopSources:  []analytics.SourceCount{},
	}

	actors := make(map[string]bool)
	pageViews := make(map[string]int)
	sourceUsers := make(map[string]map[string]bool)

	for _, e := range s.cacheManager.Events.Snapshot() {
		if e.Timestamp.Before(windowStart) || e.Timestamp.After(now) {
			continue
		}
		actors[e.ActorKey()] = true
		if e.Type == analytics.EventPageView {
			snapshot.PageViews++
			if page := e.MetaString(analytics.MetaPage); page != "" {
				pageViews[page]++
			}
		}
		if e.Type == analytics.EventConversion {
			snapshot.Conversions++
		}
		if source := e.MetaString(analytics.MetaSource); source != "" {
			if sourceUsers[source] == nil {
				sourceUsers[source] = make(map[string]bool)
			}
			sourceUsers[source][e.ActorKey()] = true
		}
	}
	snapshot.ActiveUsers = len(actors)

	for page, views := range pageViews {
		snapshot.TopPages = append(snapshot.TopPages, analytics.PageCount{Page: page, Views: views})
	}
	sort.Slice(snapshot.TopPages, func(i, j int) bool {
		if snapshot.TopPages[i].Views != snapshot.TopPages[j].Views {
			return snapshot.TopPages[i].Views > snapshot.TopPages[j].Views
		}
		return snapshot.TopPages[i].Page < snapshot.TopPages[j].Page
	})
	if len(snapshot.TopPages) > topListSize {
		snapshot.TopPages = snapshot.TopPages[:topListSize]
	}

	for source, users := range sourceUsers {
		snapshot.TopSources = append(snapshot.TopSources, analytics.SourceCount{Source: source, Users: len(users)})
	}
	sort.Slice(snapshot.TopSources, func(i, j int) bool {
		if snapshot.TopSources[i].Users != snapshot.TopSources[j].Users {
			return snapshot.TopSources[i].Users > snapshot.TopSources[j].Users
		}
		return snapshot.TopSources[i].Source < snapshot.TopSources[j].Source
	})
	if len(snapshot.TopSources) > topListSize {
		snapshot.TopSources = snapshot.TopSources[:topListSize]
	}

	// The mirror holds the raw feed for dashboards; only in-window
	// entries are reported.
	for _, e := range s.cacheManager.Recent.Snapshot() {
		if !e.Timestamp.Before(windowStart) && !e.Timestamp.After(now) {
			snapshot.RecentEvents = append(snapshot.RecentEvents, e)
		}
	}

	marker.SetSuccess(true)
	return snapshot
}

// PruneMirror drops mirrored events that have left the window. Driven by
// the background scheduler.
func (s *RealTimeService) PruneMirror() {
	cutoff := time.Now().UTC().Add(-s.window)
	pruned := s.cacheManager.Recent.PruneOlderThan(cutoff)
	if pruned > 0 {
		s.logger.Realtime().Debug("Real-time mirror pruned", "pruned", pruned, "remaining", s.cacheManager.Recent.Len())
	}
}
