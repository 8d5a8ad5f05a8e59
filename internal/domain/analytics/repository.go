package analytics

// EventRepository is the persistence adapter behind the in-memory event
// log. Implementations keep a bounded durable mirror of the most recent
// events, evicting oldest-first past the cap.
type EventRepository interface {
	// StoreEvent appends an event to the durable buffer and trims it to
	// the configured cap.
	StoreEvent(event *Event) error

	// LoadEvents returns the persisted buffer in original insertion order.
	LoadEvents() ([]*Event, error)

	// Compact re-applies the cap, discarding oldest rows beyond it.
	Compact() error

	// CountEvents returns the current persisted buffer length.
	CountEvents() (int, error)
}

// ABTestRepository stores experiment definitions. Derived counters are a
// read-time projection over events and are never written back here.
type ABTestRepository interface {
	StoreTest(test *ABTest) error
	FindTest(id string) (*ABTest, error)
	FindAllTests() ([]*ABTest, error)
	UpdateStatus(id string, status TestStatus) error
}
