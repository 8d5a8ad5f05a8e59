package services

import (
	"math"
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

// Lead score weights per event type, capped at maxLeadScore. These are
// calibrated heuristics, not a statistical model; dashboards depend on the
// exact values.
const (
	leadWeightPageView    = 1
	leadWeightContentView = 3
	leadWeightToolUse     = 5
	leadWeightCTAClick    = 7
	leadWeightFormSubmit  = 10
	maxLeadScore          = 100

	churnWindow = 7 * 24 * time.Hour
)

// MetricsService derives the AnalyticsMetrics aggregate from an event set.
// Pure computation: same events and range always produce the same output.
type MetricsService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewMetricsService creates a new metrics service with its dependencies.
func NewMetricsService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MetricsService {
	return &MetricsService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Compute derives the full aggregate over the optionally date-ranged
// subset of events. The unfiltered set is still consulted for all-time
// first-seen timestamps (new vs returning users).
func (s *MetricsService) Compute(allEvents []*analytics.Event, rng *analytics.DateRange) *analytics.AnalyticsMetrics {
	return s.ComputeAt(allEvents, rng, time.Now().UTC())
}

// ComputeAt is Compute with an explicit reference time for the churn-risk
// recency window.
func (s *MetricsService) ComputeAt(allEvents []*analytics.Event, rng *analytics.DateRange, now time.Time) *analytics.AnalyticsMetrics {
	start := time.Now()
	marker := s.perfTracker.StartOperation("analytics:compute_metrics")
	defer marker.Complete()

	events := analytics.FilterEvents(allEvents, rng)

	metrics := &analytics.AnalyticsMetrics{
		ToolUsage:          make(map[string]*analytics.ToolUsage),
		ContentPerformance: make(map[string]*analytics.ContentPerformance),
	}
	if len(events) == 0 {
		marker.SetSuccess(true)
		return metrics
	}

	s.computeTraffic(metrics, events, allEvents)
	s.computeConversion(metrics, events)
	s.computeToolUsage(metrics, events)
	s.computeContentPerformance(metrics, events)
	s.computeBehavioral(metrics, events, now)

	marker.SetSuccess(true)
	s.logger.Analytics().Debug("Computed analytics metrics",
		"events", len(events),
		"uniqueUsers", metrics.UniqueUsers,
		"duration", time.Since(start))
	return metrics
}

func (s *MetricsService) computeTraffic(m *analytics.AnalyticsMetrics, events, allEvents []*analytics.Event) {
	actors := make(map[string]bool)
	sessions := make(map[string]bool)
	windowStart := events[0].Timestamp
	windowEnd := events[0].Timestamp

	for _, e := range events {
		actors[e.ActorKey()] = true
		sessions[e.SessionID] = true
		if e.Timestamp.Before(windowStart) {
			windowStart = e.Timestamp
		}
		if e.Timestamp.After(windowEnd) {
			windowEnd = e.Timestamp
		}
	}
	m.UniqueUsers = len(actors)
	m.Sessions = len(sessions)

	// First-seen is an all-time property: an actor is "new" in this window
	// only when their very first event falls inside it.
	firstSeen := make(map[string]time.Time)
	for _, e := range allEvents {
		actor := e.ActorKey()
		if ts, ok := firstSeen[actor]; !ok || e.Timestamp.Before(ts) {
			firstSeen[actor] = e.Timestamp
		}
	}
	for actor := range actors {
		ts, ok := firstSeen[actor]
		if ok && !ts.Before(windowStart) && !ts.After(windowEnd) {
			m.NewUsers++
		}
	}
	m.ReturningUsers = m.UniqueUsers - m.NewUsers

	// Bounce rate: sessions whose only page_view is their single page_view.
	pageViewsPerSession := make(map[string]int)
	sessionFirst := make(map[string]time.Time)
	sessionLast := make(map[string]time.Time)
	for _, e := range events {
		if e.Type == analytics.EventPageView {
			pageViewsPerSession[e.SessionID]++
			m.PageViews++
		}
		if ts, ok := sessionFirst[e.SessionID]; !ok || e.Timestamp.Before(ts) {
			sessionFirst[e.SessionID] = e.Timestamp
		}
		if ts, ok := sessionLast[e.SessionID]; !ok || e.Timestamp.After(ts) {
			sessionLast[e.SessionID] = e.Timestamp
		}
	}
	bounced := 0
	for _, count := range pageViewsPerSession {
		if count == 1 {
			bounced++
		}
	}
	if m.Sessions > 0 {
		m.BounceRate = float64(bounced) / float64(m.Sessions) * 100
	}

	var totalDuration time.Duration
	for sessionID := range sessions {
		totalDuration += sessionLast[sessionID].Sub(sessionFirst[sessionID])
	}
	if m.Sessions > 0 {
		m.AvgSessionDuration = totalDuration.Seconds() / float64(m.Sessions)
	}
}

func (s *MetricsService) computeConversion(m *analytics.AnalyticsMetrics, events []*analytics.Event) {
	for _, e := range events {
		if e.Type != analytics.EventConversion {
			continue
		}
		m.Conversions++
		if e.Value != nil {
			m.RevenueAttribution += *e.Value
		}
	}
	if m.UniqueUsers > 0 {
		m.ConversionRate = float64(m.Conversions) / float64(m.UniqueUsers) * 100
	}
}

func (s *MetricsService) computeToolUsage(m *analytics.AnalyticsMetrics, events []*analytics.Event) {
	type toolAccumulator struct {
		users         map[string]bool
		sessions      map[string]bool
		starts        int
		completions   int
		totalDuration float64
		durationCount int
	}
	tools := make(map[string]*toolAccumulator)

	for _, e := range events {
		if e.Type != analytics.EventToolUse {
			continue
		}
		tool := e.MetaString(analytics.MetaTool)
		if tool == "" {
			continue
		}
		acc := tools[tool]
		if acc == nil {
			acc = &toolAccumulator{
				users:    make(map[string]bool),
				sessions: make(map[string]bool),
			}
			tools[tool] = acc
		}
		acc.users[e.ActorKey()] = true
		acc.sessions[e.SessionID] = true
		switch e.Action {
		case "start":
			acc.starts++
		case "complete":
			acc.completions++
		}
		if d, ok := e.MetaFloat(analytics.MetaDuration); ok {
			acc.totalDuration += d
			acc.durationCount++
		}
	}

	for tool, acc := range tools {
		usage := &analytics.ToolUsage{
			Users:       len(acc.users),
			Sessions:    len(acc.sessions),
			Completions: acc.completions,
		}
		if acc.durationCount > 0 {
			usage.AvgDuration = acc.totalDuration / float64(acc.durationCount)
		}
		if acc.starts > 0 {
			usage.DropOffRate = float64(acc.starts-acc.completions) / float64(acc.starts) * 100
		}
		m.ToolUsage[tool] = usage
	}
}

func (s *MetricsService) computeContentPerformance(m *analytics.AnalyticsMetrics, events []*analytics.Event) {
	type contentAccumulator struct {
		views     int
		viewers   map[string]bool
		totalTime float64
		timeCount int
		shares    int
	}
	contents := make(map[string]*contentAccumulator)

	for _, e := range events {
		content := e.MetaString(analytics.MetaContent)
		if content == "" {
			continue
		}
		acc := contents[content]
		if acc == nil {
			acc = &contentAccumulator{viewers: make(map[string]bool)}
			contents[content] = acc
		}
		if e.Type == analytics.EventContentView {
			acc.views++
			acc.viewers[e.ActorKey()] = true
			if d, ok := e.MetaFloat(analytics.MetaDuration); ok {
				acc.totalTime += d
				acc.timeCount++
			}
		}
		if e.Action == "share" {
			acc.shares++
		}
	}

	for content, acc := range contents {
		if acc.views == 0 && acc.shares == 0 {
			continue
		}
		perf := &analytics.ContentPerformance{
			Views:         acc.views,
			UniqueViewers: len(acc.viewers),
		}
		if acc.timeCount > 0 {
			perf.AvgTimeSpent = acc.totalTime / float64(acc.timeCount)
		}
		if acc.views > 0 {
			perf.ShareRate = float64(acc.shares) / float64(acc.views) * 100
		}
		// Coarse engagement heuristic keyed off average time spent.
		switch {
		case perf.AvgTimeSpent > 60:
			perf.EngagementScore = 85
		case perf.AvgTimeSpent > 30:
			perf.EngagementScore = 65
		default:
			perf.EngagementScore = 45
		}
		m.ContentPerformance[content] = perf
	}
}

func (s *MetricsService) computeBehavioral(m *analytics.AnalyticsMetrics, events []*analytics.Event, now time.Time) {
	score := 0
	for _, e := range events {
		switch e.Type {
		case analytics.EventPageView:
			score += leadWeightPageView
		case analytics.EventContentView:
			score += leadWeightContentView
		case analytics.EventToolUse:
			score += leadWeightToolUse
		case analytics.EventCTAClick:
			score += leadWeightCTAClick
		case analytics.EventFormSubmit:
			score += leadWeightFormSubmit
		}
	}
	if score > maxLeadScore {
		score = maxLeadScore
	}
	m.LeadScore = score

	recent := 0
	cutoff := now.Add(-churnWindow)
	for _, e := range events {
		if e.Timestamp.After(cutoff) {
			recent++
		}
	}
	switch {
	case recent == 0:
		m.ChurnRisk = 85
	case recent > 10:
		m.ChurnRisk = 15
	default:
		m.ChurnRisk = math.Max(10, 60-float64(recent)*5)
	}

	m.LifetimeValue = math.Round(m.RevenueAttribution + float64(m.LeadScore)*2)
}
