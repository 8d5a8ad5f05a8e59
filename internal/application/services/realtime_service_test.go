package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/caching/manager"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

func newTestRealTimeService(t *testing.T) (*RealTimeService, *manager.Manager) {
	t.Helper()
	cacheManager, err := manager.NewManager(100)
	require.NoError(t, err)
	s := NewRealTimeService(cacheManager, 30*time.Minute, logging.NewTestLogger(), performance.NewTracker(nil))
	return s, cacheManager
}

func pageView(userID, sessionID, page string, ts time.Time) *analytics.Event {
	return withMeta(ev(userID, sessionID, analytics.EventPageView, ts), map[string]any{analytics.MetaPage: page})
}

func TestSnapshotEmptyWindow(t *testing.T) {
	s, _ := newTestRealTimeService(t)

	snapshot := s.SnapshotAt(testNow)

	assert.Equal(t, testNow.Add(-30*time.Minute), snapshot.WindowStart)
	assert.Zero(t, snapshot.ActiveUsers)
	assert.Zero(t, snapshot.PageViews)
	assert.Zero(t, snapshot.Conversions)
	assert.NotNil(t, snapshot.TopPages, "empty lists serialize as [], not null")
	assert.NotNil(t, snapshot.TopSources)
	assert.Empty(t, snapshot.RecentEvents)
}

func TestSnapshotWindowFiltering(t *testing.T) {
	s, cacheManager := newTestRealTimeService(t)

	inWindow := pageView("alice", "s1", "/pricing", testNow.Add(-5*time.Minute))
	outOfWindow := pageView("bob", "s2", "/pricing", testNow.Add(-2*time.Hour))
	cacheManager.Events.Append(inWindow)
	cacheManager.Events.Append(outOfWindow)
	cacheManager.Recent.Add(inWindow)
	cacheManager.Recent.Add(outOfWindow)

	snapshot := s.SnapshotAt(testNow)

	assert.Equal(t, 1, snapshot.ActiveUsers)
	assert.Equal(t, 1, snapshot.PageViews)
	require.Len(t, snapshot.RecentEvents, 1)
	assert.Equal(t, inWindow.ID, snapshot.RecentEvents[0].ID)
}

func TestSnapshotTopPagesAndSources(t *testing.T) {
	s, cacheManager := newTestRealTimeService(t)
	base := testNow.Add(-10 * time.Minute)

	for i := 0; i < 3; i++ {
		cacheManager.Events.Append(pageView("alice", "s1", "/pricing", base.Add(time.Duration(i)*time.Minute)))
	}
	cacheManager.Events.Append(pageView("bob", "s2", "/blog", base))

	google := withMeta(ev("alice", "s1", analytics.EventPageView, base), map[string]any{analytics.MetaSource: "google"})
	direct1 := withMeta(ev("bob", "s2", analytics.EventPageView, base), map[string]any{analytics.MetaSource: "direct"})
	direct2 := withMeta(ev("carol", "s3", analytics.EventPageView, base), map[string]any{analytics.MetaSource: "direct"})
	cacheManager.Events.Append(google)
	cacheManager.Events.Append(direct1)
	cacheManager.Events.Append(direct2)

	cacheManager.Events.Append(ev("alice", "s1", analytics.EventConversion, base.Add(time.Minute)))

	snapshot := s.SnapshotAt(testNow)

	require.NotEmpty(t, snapshot.TopPages)
	assert.Equal(t, "/pricing", snapshot.TopPages[0].Page)
	assert.Equal(t, 3, snapshot.TopPages[0].Views)

	require.Len(t, snapshot.TopSources, 2)
	assert.Equal(t, "direct", snapshot.TopSources[0].Source)
	assert.Equal(t, 2, snapshot.TopSources[0].Users)

	assert.Equal(t, 1, snapshot.Conversions)
	assert.Equal(t, 3, snapshot.ActiveUsers)
}

func TestSnapshotTopListsCapped(t *testing.T) {
	s, cacheManager := newTestRealTimeService(t)
	base := testNow.Add(-10 * time.Minute)

	for i := 0; i < 15; i++ {
		cacheManager.Events.Append(pageView("alice", "s1", fmt.Sprintf("/page-%02d", i), base))
	}

	snapshot := s.SnapshotAt(testNow)

	assert.Len(t, snapshot.TopPages, 10)
}

func TestPruneMirror(t *testing.T) {
	s, cacheManager := newTestRealTimeService(t)

	now := time.Now().UTC()
	fresh := ev("alice", "s1", analytics.EventPageView, now.Add(-time.Minute))
	stale := ev("bob", "s2", analytics.EventPageView, now.Add(-2*time.Hour))
	cacheManager.Recent.Add(fresh)
	cacheManager.Recent.Add(stale)

	s.PruneMirror()

	assert.Equal(t, 1, cacheManager.Recent.Len())
}
