package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

// FunnelService holds the registry of named conversion funnels and
// evaluates them against the event log.
type FunnelService struct {
	funnels     map[string]*analytics.ConversionFunnel
	mu          sync.RWMutex
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewFunnelService creates the service seeded with the platform's default
// funnels.
func NewFunnelService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FunnelService {
	s := &FunnelService{
		funnels:     make(map[string]*analytics.ConversionFunnel),
		logger:      logger,
		perfTracker: perfTracker,
	}
	for _, funnel := range defaultFunnels() {
		s.funnels[funnel.Name] = funnel
	}
	return s
}

// defaultFunnels returns the static funnel configuration shipped with the
// platform: the lead-magnet capture path and the webinar registration path.
func defaultFunnels() []*analytics.ConversionFunnel {
	return []*analytics.ConversionFunnel{
		{
			Name: "lead-magnet",
			Steps: []analytics.FunnelStep{
				{Name: "Landing", EventType: analytics.EventPageView, Criteria: map[string]string{analytics.MetaPage: "landing"}},
				{Name: "CTA Click", EventType: analytics.EventCTAClick},
				{Name: "Form Submit", EventType: analytics.EventFormSubmit},
				{Name: "Conversion", EventType: analytics.EventConversion},
			},
		},
		{
			Name: "webinar-registration",
			Steps: []analytics.FunnelStep{
				{Name: "Webinar Page", EventType: analytics.EventPageView, Criteria: map[string]string{analytics.MetaPage: "webinar"}},
				{Name: "Register Click", EventType: analytics.EventCTAClick, Criteria: map[string]string{"label": "webinar-register"}},
				{Name: "Registration", EventType: analytics.EventFormSubmit, Criteria: map[string]string{"label": "webinar-register"}},
				{Name: "Attended", EventType: analytics.EventConversion, Criteria: map[string]string{"label": "webinar-attended"}},
			},
		},
	}
}

// Register adds or replaces a funnel definition.
func (s *FunnelService) Register(funnel *analytics.ConversionFunnel) error {
	if funnel.Name == "" {
		return fmt.Errorf("funnel name is required")
	}
	if len(funnel.Steps) == 0 {
		return fmt.Errorf("funnel %q has no steps", funnel.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funnels[funnel.Name] = funnel
	s.logger.Analytics().Info("Funnel registered", "funnel", funnel.Name, "steps", len(funnel.Steps))
	return nil
}

// Funnels returns the registered funnel definitions.
func (s *FunnelService) Funnels() []*analytics.ConversionFunnel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	funnels := make([]*analytics.ConversionFunnel, 0, len(s.funnels))
	for _, f := range s.funnels {
		funnels = append(funnels, f)
	}
	return funnels
}

// Analyze computes the step-by-step conversion table for a named funnel.
// An unknown funnel name is a caller mistake and fails loudly.
func (s *FunnelService) Analyze(name string, events []*analytics.Event, rng *analytics.DateRange) (*analytics.FunnelAnalysis, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("analytics:analyze_funnel")
	defer marker.Complete()

	s.mu.RLock()
	funnel, exists := s.funnels[name]
	s.mu.RUnlock()
	if !exists {
		err := fmt.Errorf("unknown funnel %q", name)
		marker.SetError(err)
		return nil, err
	}

	filtered := analytics.FilterEvents(events, rng)

	analysis := &analytics.FunnelAnalysis{
		Funnel: name,
		Steps:  make([]analytics.FunnelStepResult, 0, len(funnel.Steps)),
	}

	previousUsers := 0
	for i, step := range funnel.Steps {
		actors := make(map[string]bool)
		for _, e := range filtered {
			if step.Matches(e) {
				actors[e.ActorKey()] = true
			}
		}
		users := len(actors)

		result := analytics.FunnelStepResult{
			Name:  step.Name,
			Users: users,
		}
		if i == 0 {
			result.ConversionRate = 100
		} else {
			if previousUsers > 0 {
				result.ConversionRate = float64(users) / float64(previousUsers) * 100
				result.DropOff = previousUsers - users
			}
		}
		analysis.Steps = append(analysis.Steps, result)
		previousUsers = users
	}

	firstUsers := analysis.Steps[0].Users
	lastUsers := analysis.Steps[len(analysis.Steps)-1].Users
	if firstUsers > 0 {
		analysis.TotalConversionRate = float64(lastUsers) / float64(firstUsers) * 100
	}

	marker.SetSuccess(true)
	s.logger.Analytics().Debug("Funnel analyzed",
		"funnel", name,
		"events", len(filtered),
		"entryUsers", firstUsers,
		"duration", time.Since(start))
	return analysis, nil
}
