// Package stores provides concrete in-memory store implementations
package stores

import (
	"sync"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
)

// EventLog is the append-only in-memory event list: the single source of
// truth for read-side computations during the current process lifetime.
// Writers append under lock; readers take a snapshot copy so computations
// never observe partial state.
type EventLog struct {
	events []*analytics.Event
	mu     sync.RWMutex
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{
		events: make([]*analytics.Event, 0, 256),
	}
}

// Hydrate seeds the log from the persisted buffer. Called once at startup
// before any appends.
func (l *EventLog) Hydrate(events []*analytics.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events[:0], events...)
}

// Append adds one event to the log.
func (l *EventLog) Append(event *analytics.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Snapshot returns a copy of the log in insertion order. Events themselves
// are immutable, so sharing pointers is safe.
func (l *EventLog) Snapshot() []*analytics.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snapshot := make([]*analytics.Event, len(l.events))
	copy(snapshot, l.events)
	return snapshot
}

// Len returns the current log length.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
