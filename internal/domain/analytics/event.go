// Package analytics defines the core domain types and repository contracts
// for the Pulse behavioral analytics engine.
package analytics

import (
	"fmt"
	"time"
)

// EventType classifies what kind of user interaction an event records.
type EventType string

const (
	EventPageView    EventType = "page_view"
	EventToolUse     EventType = "tool_use"
	EventContentView EventType = "content_view"
	EventCTAClick    EventType = "cta_click"
	EventFormSubmit  EventType = "form_submit"
	EventConversion  EventType = "conversion"
	EventExit        EventType = "exit"
)

// Category groups events by their role in the customer lifecycle.
type Category string

const (
	CategoryEngagement  Category = "engagement"
	CategoryConversion  Category = "conversion"
	CategoryRetention   Category = "retention"
	CategoryAcquisition Category = "acquisition"
)

// Metadata keys read by the metrics calculator. The metadata map is
// schema-less on ingestion, but these are the keys that actually drive
// derived metrics.
const (
	MetaPage        = "page"
	MetaTool        = "tool"
	MetaContent     = "content"
	MetaSource      = "source"
	MetaMedium      = "medium"
	MetaCampaign    = "campaign"
	MetaDevice      = "device"
	MetaBrowser     = "browser"
	MetaDuration    = "duration"
	MetaScrollDepth = "scrollDepth"
	MetaExitIntent  = "exitIntent"
	MetaABTest      = "abTest"
	MetaABVariant   = "abVariant"
)

// Event is the atomic analytics fact. Immutable once created.
type Event struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId,omitempty"`
	SessionID string         `json:"sessionId"`
	Type      EventType      `json:"type"`
	Category  Category       `json:"category"`
	Action    string         `json:"action,omitempty"`
	Label     string         `json:"label,omitempty"`
	Value     *float64       `json:"value,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ActorKey returns the identifying actor for unique-user counting:
// the stable user ID when known, the session ID for anonymous visitors.
func (e *Event) ActorKey() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.SessionID
}

// MetaString returns a metadata value coerced to string, or "" when absent.
func (e *Event) MetaString(key string) string {
	if e.Metadata == nil {
		return ""
	}
	v, ok := e.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// MetaFloat returns a numeric metadata value. JSON decoding produces
// float64, but ints appear when events are constructed in-process.
func (e *Event) MetaFloat(key string) (float64, bool) {
	if e.Metadata == nil {
		return 0, false
	}
	switch v := e.Metadata[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// DateRange bounds a query to [Start, End] inclusive. A zero Start or End
// leaves that side unbounded.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts falls inside the range.
func (r *DateRange) Contains(ts time.Time) bool {
	if r == nil {
		return true
	}
	if !r.Start.IsZero() && ts.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && ts.After(r.End) {
		return false
	}
	return true
}

// FilterEvents returns the subset of events inside the range, preserving
// insertion order.
func FilterEvents(events []*Event, rng *DateRange) []*Event {
	if rng == nil {
		return events
	}
	filtered := make([]*Event, 0, len(events))
	for _, e := range events {
		if rng.Contains(e.Timestamp) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
