package stores

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
)

// RecentEvents is the rolling mirror behind the real-time monitor: the
// most recent events capped at a fixed size, oldest evicted first. Backed
// by an LRU cache keyed by event ID; pure insertion-order FIFO since
// entries are never touched after Add.
type RecentEvents struct {
	cache *lru.Cache[string, *analytics.Event]
}

// NewRecentEvents creates a mirror capped at the given size.
func NewRecentEvents(cap int) (*RecentEvents, error) {
	cache, err := lru.New[string, *analytics.Event](cap)
	if err != nil {
		return nil, err
	}
	return &RecentEvents{cache: cache}, nil
}

// Add records one event, evicting the oldest entry when full.
func (r *RecentEvents) Add(event *analytics.Event) {
	r.cache.Add(event.ID, event)
}

// Snapshot returns the mirrored events oldest-first.
func (r *RecentEvents) Snapshot() []*analytics.Event {
	keys := r.cache.Keys()
	events := make([]*analytics.Event, 0, len(keys))
	for _, key := range keys {
		if event, ok := r.cache.Peek(key); ok {
			events = append(events, event)
		}
	}
	return events
}

// PruneOlderThan drops mirrored events with timestamps before the cutoff.
func (r *RecentEvents) PruneOlderThan(cutoff time.Time) int {
	pruned := 0
	for _, key := range r.cache.Keys() {
		event, ok := r.cache.Peek(key)
		if !ok {
			continue
		}
		if event.Timestamp.Before(cutoff) {
			r.cache.Remove(key)
			pruned++
		}
	}
	return pruned
}

// Len returns the current mirror size.
func (r *RecentEvents) Len() int {
	return r.cache.Len()
}
