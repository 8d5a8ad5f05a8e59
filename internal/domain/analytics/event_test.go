package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActorKeyPrefersUserID(t *testing.T) {
	e := &Event{UserID: "user-1", SessionID: "sess-1"}
	assert.Equal(t, "user-1", e.ActorKey())

	anon := &Event{SessionID: "sess-2"}
	assert.Equal(t, "sess-2", anon.ActorKey())
}

func TestMetaString(t *testing.T) {
	e := &Event{Metadata: map[string]any{
		MetaPage:     "landing",
		MetaDuration: 42.5,
	}}

	assert.Equal(t, "landing", e.MetaString(MetaPage))
	assert.Equal(t, "42.5", e.MetaString(MetaDuration))
	assert.Equal(t, "", e.MetaString("missing"))

	noMeta := &Event{}
	assert.Equal(t, "", noMeta.MetaString(MetaPage))
}

func TestMetaFloat(t *testing.T) {
	e := &Event{Metadata: map[string]any{
		"float":  45.0,
		"int":    int(30),
		"string": "not-a-number",
	}}

	v, ok := e.MetaFloat("float")
	assert.True(t, ok)
	assert.Equal(t, 45.0, v)

	v, ok = e.MetaFloat("int")
	assert.True(t, ok)
	assert.Equal(t, 30.0, v)

	_, ok = e.MetaFloat("string")
	assert.False(t, ok)

	_, ok = e.MetaFloat("missing")
	assert.False(t, ok)
}

func TestDateRangeContains(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
	rng := &DateRange{Start: start, End: end}

	assert.True(t, rng.Contains(start), "start is inclusive")
	assert.True(t, rng.Contains(end), "end is inclusive")
	assert.True(t, rng.Contains(start.AddDate(0, 0, 15)))
	assert.False(t, rng.Contains(start.Add(-time.Second)))
	assert.False(t, rng.Contains(end.Add(time.Second)))

	var nilRange *DateRange
	assert.True(t, nilRange.Contains(start), "nil range is unbounded")

	openEnd := &DateRange{Start: start}
	assert.True(t, openEnd.Contains(end.AddDate(1, 0, 0)))
}

func TestFilterEventsPreservesOrder(t *testing.T) {
	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	events := []*Event{
		{ID: "a", Timestamp: base},
		{ID: "b", Timestamp: base.AddDate(0, 0, 5)},
		{ID: "c", Timestamp: base.AddDate(0, 0, 40)},
	}

	rng := &DateRange{Start: base, End: base.AddDate(0, 0, 10)}
	filtered := FilterEvents(events, rng)

	assert.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].ID)
	assert.Equal(t, "b", filtered[1].ID)

	assert.Len(t, FilterEvents(events, nil), 3)
}
