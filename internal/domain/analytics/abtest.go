package analytics

import "time"

// TestStatus is the lifecycle state of an experiment.
type TestStatus string

const (
	TestDraft     TestStatus = "draft"
	TestRunning   TestStatus = "running"
	TestPaused    TestStatus = "paused"
	TestCompleted TestStatus = "completed"
)

// Variant is one arm of an experiment. Traffic is the allocation
// percentage; weights across all variants of one test sum to 100.
// Participants, Conversions, ConversionRate and IsWinner are derived from
// the event log on every read, never stored authoritatively.
type Variant struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Traffic        float64 `json:"traffic"`
	Participants   int     `json:"participants"`
	Conversions    int     `json:"conversions"`
	ConversionRate float64 `json:"conversionRate"`
	IsWinner       bool    `json:"isWinner"`
}

// ABTest is an experiment definition. The variant list is fixed at
// creation; only the derived counters change as a read-time projection.
type ABTest struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     TestStatus `json:"status"`
	Goal       string     `json:"goal"`
	Variants   []Variant  `json:"variants"`
	Confidence float64    `json:"confidence"`
	CreatedAt  time.Time  `json:"createdAt"`
}
