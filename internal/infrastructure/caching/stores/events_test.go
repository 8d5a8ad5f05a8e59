package stores

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
)

func testEvent(id string, ts time.Time) *analytics.Event {
	return &analytics.Event{
		ID:        id,
		SessionID: "s1",
		Type:      analytics.EventPageView,
		Category:  analytics.CategoryEngagement,
		Timestamp: ts,
	}
}

func TestEventLogAppendAndSnapshot(t *testing.T) {
	log := NewEventLog()
	now := time.Now().UTC()

	log.Append(testEvent("a", now))
	log.Append(testEvent("b", now.Add(time.Second)))

	snapshot := log.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a", snapshot[0].ID)
	assert.Equal(t, "b", snapshot[1].ID)
	assert.Equal(t, 2, log.Len())
}

func TestEventLogSnapshotIsIsolated(t *testing.T) {
	log := NewEventLog()
	now := time.Now().UTC()
	log.Append(testEvent("a", now))

	snapshot := log.Snapshot()
	log.Append(testEvent("b", now.Add(time.Second)))

	assert.Len(t, snapshot, 1, "a snapshot must not see later appends")
	assert.Len(t, log.Snapshot(), 2)
}

func TestEventLogHydrateReplaces(t *testing.T) {
	log := NewEventLog()
	now := time.Now().UTC()
	log.Append(testEvent("stale", now))

	log.Hydrate([]*analytics.Event{
		testEvent("a", now),
		testEvent("b", now.Add(time.Second)),
	})

	snapshot := log.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "a", snapshot[0].ID)
}

func TestRecentEventsCapEvictsOldest(t *testing.T) {
	mirror, err := NewRecentEvents(100)
	require.NoError(t, err)
	now := time.Now().UTC()

	for i := 0; i < 150; i++ {
		mirror.Add(testEvent(fmt.Sprintf("e-%03d", i), now.Add(time.Duration(i)*time.Second)))
	}

	assert.Equal(t, 100, mirror.Len())

	snapshot := mirror.Snapshot()
	require.Len(t, snapshot, 100)
	assert.Equal(t, "e-050", snapshot[0].ID, "oldest surviving entry")
	assert.Equal(t, "e-149", snapshot[99].ID, "newest entry last")
}

func TestRecentEventsPruneOlderThan(t *testing.T) {
	mirror, err := NewRecentEvents(100)
	require.NoError(t, err)
	now := time.Now().UTC()

	mirror.Add(testEvent("stale-1", now.Add(-2*time.Hour)))
	mirror.Add(testEvent("stale-2", now.Add(-time.Hour)))
	mirror.Add(testEvent("fresh", now))

	pruned := mirror.PruneOlderThan(now.Add(-30 * time.Minute))

	assert.Equal(t, 2, pruned)
	assert.Equal(t, 1, mirror.Len())
	require.Len(t, mirror.Snapshot(), 1)
	assert.Equal(t, "fresh", mirror.Snapshot()[0].ID)
}
