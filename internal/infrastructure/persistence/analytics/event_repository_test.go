package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/persistence/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewConnection("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema())
	t.Cleanup(func() { db.Close() })
	return db
}

func storedEvent(id string, ts time.Time) *domain.Event {
	value := 49.50
	return &domain.Event{
		ID:        id,
		UserID:    "alice",
		SessionID: "s1",
		Type:      domain.EventConversion,
		Category:  domain.CategoryConversion,
		Action:    "purchase",
		Label:     "starter-plan",
		Value:     &value,
		Timestamp: ts,
		Metadata:  map[string]any{domain.MetaSource: "google"},
	}
}

func TestStoreAndLoadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLEventRepository(db, 1000, logging.NewTestLogger())
	ts := time.Date(2025, 6, 15, 12, 0, 0, 123456789, time.UTC)

	require.NoError(t, repo.StoreEvent(storedEvent("e1", ts)))

	loaded, err := repo.LoadEvents()
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, domain.EventConversion, got.Type)
	assert.Equal(t, domain.CategoryConversion, got.Category)
	assert.Equal(t, "purchase", got.Action)
	assert.Equal(t, "starter-plan", got.Label)
	require.NotNil(t, got.Value)
	assert.InDelta(t, 49.50, *got.Value, 0.001)
	assert.True(t, ts.Equal(got.Timestamp), "nanosecond precision survives the round trip")
	assert.Equal(t, "google", got.MetaString(domain.MetaSource))
}

func TestStoreEventWithoutOptionalFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLEventRepository(db, 1000, logging.NewTestLogger())

	event := &domain.Event{
		ID:        "anon",
		SessionID: "s9",
		Type:      domain.EventPageView,
		Category:  domain.CategoryEngagement,
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, repo.StoreEvent(event))

	loaded, err := repo.LoadEvents()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Empty(t, loaded[0].UserID)
	assert.Nil(t, loaded[0].Value)
	assert.Nil(t, loaded[0].Metadata)
}

func TestBufferCapEvictsOldest(t *testing.T) {
	db := newTestDB(t)
	const cap = 50
	repo := NewSQLEventRepository(db, cap, logging.NewTestLogger())
	base := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	for i := 0; i < cap+20; i++ {
		e := storedEvent(fmt.Sprintf("e-%03d", i), base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.StoreEvent(e))
	}

	count, err := repo.CountEvents()
	require.NoError(t, err)
	assert.Equal(t, cap, count, "buffer never exceeds the cap")

	loaded, err := repo.LoadEvents()
	require.NoError(t, err)
	require.Len(t, loaded, cap)
	assert.Equal(t, "e-020", loaded[0].ID, "oldest rows evicted first")
	assert.Equal(t, "e-069", loaded[cap-1].ID)
}

func TestLoadEventsPreservesInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLEventRepository(db, 1000, logging.NewTestLogger())
	base := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	// Same created_at: id is the order tiebreaker.
	require.NoError(t, repo.StoreEvent(storedEvent("a", base)))
	require.NoError(t, repo.StoreEvent(storedEvent("b", base)))
	require.NoError(t, repo.StoreEvent(storedEvent("c", base.Add(time.Second))))

	loaded, err := repo.LoadEvents()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "a", loaded[0].ID)
	assert.Equal(t, "b", loaded[1].ID)
	assert.Equal(t, "c", loaded[2].ID)
}

func TestCompactOnEmptyBuffer(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLEventRepository(db, 10, logging.NewTestLogger())

	assert.NoError(t, repo.Compact())
}
