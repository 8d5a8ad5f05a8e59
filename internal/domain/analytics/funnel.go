package analytics

// FunnelStep is one stage of a conversion funnel. An event counts toward
// the step when its type matches and every criteria entry matches either a
// top-level field or a metadata key.
type FunnelStep struct {
	Name      string            `json:"name"`
	EventType EventType         `json:"eventType"`
	Criteria  map[string]string `json:"criteria,omitempty"`
}

// Matches reports whether an event satisfies this step.
func (s *FunnelStep) Matches(e *Event) bool {
	if e.Type != s.EventType {
		return false
	}
	for key, want := range s.Criteria {
		switch key {
		case "action":
			if e.Action != want {
				return false
			}
		case "label":
			if e.Label != want {
				return false
			}
		case "category":
			if string(e.Category) != want {
				return false
			}
		case "userId":
			if e.UserID != want {
				return false
			}
		case "sessionId":
			if e.SessionID != want {
				return false
			}
		default:
			if e.MetaString(key) != want {
				return false
			}
		}
	}
	return true
}

// ConversionFunnel is a named ordered sequence of steps. Funnels are static
// configuration, never derived from data.
type ConversionFunnel struct {
	Name  string       `json:"name"`
	Steps []FunnelStep `json:"steps"`
}

// FunnelStepResult reports the per-step outcome of a funnel analysis.
type FunnelStepResult struct {
	Name           string  `json:"name"`
	Users          int     `json:"users"`
	ConversionRate float64 `json:"conversionRate"`
	DropOff        int     `json:"dropOff"`
}

// FunnelAnalysis is the full conversion table for one funnel.
type FunnelAnalysis struct {
	Funnel              string             `json:"funnel"`
	Steps               []FunnelStepResult `json:"steps"`
	TotalConversionRate float64            `json:"totalConversionRate"`
}
