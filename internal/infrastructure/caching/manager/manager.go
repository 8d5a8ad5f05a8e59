// Package manager provides the unified facade over the in-memory stores.
package manager

import (
	"github.com/risingpath/pulse-go/internal/infrastructure/caching/stores"
)

// Manager fronts the in-memory analytics state: the append-only event log
// and the capped real-time mirror.
type Manager struct {
	Events *stores.EventLog
	Recent *stores.RecentEvents
}

// NewManager creates the in-memory stores with the given mirror cap.
func NewManager(mirrorCap int) (*Manager, error) {
	recent, err := stores.NewRecentEvents(mirrorCap)
	if err != nil {
		return nil, err
	}
	return &Manager{
		Events: stores.NewEventLog(),
		Recent: recent,
	}, nil
}
