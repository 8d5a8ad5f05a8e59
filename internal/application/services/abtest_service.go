package services

import (
	"fmt"
	"math"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
	"github.com/risingpath/pulse-go/internal/infrastructure/security"
)

// minSampleSize is the per-variant participant floor below which the
// significance computation reports an inconclusive confidence of 0.
const minSampleSize = 100

// ABTestService manages experiment definitions, deterministic variant
// assignment and read-time result projection.
type ABTestService struct {
	repo        analytics.ABTestRepository
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewABTestService creates a new A/B test service with its dependencies.
func NewABTestService(repo analytics.ABTestRepository, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ABTestService {
	return &ABTestService{
		repo:        repo,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Create validates and stores a new experiment. The variant list is fixed
// from this point on. Returns the assigned test ID.
func (s *ABTestService) Create(test *analytics.ABTest) (string, error) {
	if test.Name == "" {
		return "", fmt.Errorf("test name is required")
	}
	if len(test.Variants) < 2 {
		return "", fmt.Errorf("test %q needs at least two variants", test.Name)
	}

	var totalTraffic float64
	for i := range test.Variants {
		if test.Variants[i].ID == "" {
			return "", fmt.Errorf("variant %d of test %q has no id", i, test.Name)
		}
		totalTraffic += test.Variants[i].Traffic
	}
	if math.Abs(totalTraffic-100) > 0.001 {
		return "", fmt.Errorf("variant traffic of test %q sums to %.2f, want 100", test.Name, totalTraffic)
	}

	if test.ID == "" {
		test.ID = security.GenerateULID()
	}
	if test.Status == "" {
		test.Status = analytics.TestDraft
	}
	if test.CreatedAt.IsZero() {
		test.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.StoreTest(test); err != nil {
		return "", err
	}

	s.logger.Analytics().Info("A/B test created",
		"testId", test.ID,
		"name", test.Name,
		"status", test.Status,
		"variants", len(test.Variants))
	return test.ID, nil
}

// SetStatus transitions an experiment's lifecycle state.
func (s *ABTestService) SetStatus(testID string, status analytics.TestStatus) error {
	switch status {
	case analytics.TestDraft, analytics.TestRunning, analytics.TestPaused, analytics.TestCompleted:
	default:
		return fmt.Errorf("invalid test status %q", status)
	}
	return s.repo.UpdateStatus(testID, status)
}

// Assignment returns the variant ID for a user, or "" when the test is
// unknown or not running. Assignment is a pure function of userID and
// testID: the same user always lands in the same variant without any
// per-user state.
func (s *ABTestService) Assignment(testID, userID string) (string, error) {
	test, err := s.repo.FindTest(testID)
	if err != nil {
		return "", err
	}
	if test == nil || test.Status != analytics.TestRunning {
		return "", nil
	}

	bucket := float64(murmur3.Sum32([]byte(userID+testID)) % 100)

	cumulative := 0.0
	for i := range test.Variants {
		cumulative += test.Variants[i].Traffic
		if bucket < cumulative {
			return test.Variants[i].ID, nil
		}
	}
	// Rounding slack in traffic percentages falls into the last variant.
	return test.Variants[len(test.Variants)-1].ID, nil
}

// RecordExposure is the per-event bookkeeping hook on the tracking path.
// Results are a read-time projection, so this only sanity-checks the tag
// and surfaces unknown test IDs in the logs.
func (s *ABTestService) RecordExposure(event *analytics.Event) {
	testID := event.MetaString(analytics.MetaABTest)
	if testID == "" {
		return
	}
	test, err := s.repo.FindTest(testID)
	if err != nil {
		s.logger.Analytics().Error("A/B exposure lookup failed", "error", err.Error(), "testId", testID)
		return
	}
	if test == nil {
		s.logger.Analytics().Warn("Event tagged with unknown A/B test",
			"testId", testID,
			"eventId", event.ID)
		return
	}
	s.logger.Analytics().Debug("A/B exposure recorded",
		"testId", testID,
		"variant", event.MetaString(analytics.MetaABVariant),
		"eventId", event.ID)
}

// Results recomputes each variant's counters from the event log and
// attaches a significance estimate. Returns nil when the test is unknown.
func (s *ABTestService) Results(testID string, events []*analytics.Event) (*analytics.ABTest, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("analytics:abtest_results")
	defer marker.Complete()

	test, err := s.repo.FindTest(testID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	if test == nil {
		marker.SetSuccess(true)
		return nil, nil
	}

	participants := make(map[string]map[string]bool, len(test.Variants))
	conversions := make(map[string]int, len(test.Variants))
	for i := range test.Variants {
		participants[test.Variants[i].ID] = make(map[string]bool)
	}

	for _, e := range events {
		if e.MetaString(analytics.MetaABTest) != testID {
			continue
		}
		variantID := e.MetaString(analytics.MetaABVariant)
		actors, known := participants[variantID]
		if !known {
			continue
		}
		actors[e.ActorKey()] = true
		if e.Type == analytics.EventConversion {
			conversions[variantID]++
		}
	}

	winner := -1
	bestRate := -1.0
	for i := range test.Variants {
		v := &test.Variants[i]
		v.Participants = len(participants[v.ID])
		v.Conversions = conversions[v.ID]
		v.ConversionRate = 0
		v.IsWinner = false
		if v.Participants > 0 {
			v.ConversionRate = float64(v.Conversions) / float64(v.Participants) * 100
		}
		if v.ConversionRate > bestRate {
			bestRate = v.ConversionRate
			winner = i
		}
	}
	if winner >= 0 {
		test.Variants[winner].IsWinner = true
	}

	test.Confidence = s.computeConfidence(test.Variants)

	marker.SetSuccess(true)
	s.logger.Analytics().Debug("A/B test results computed",
		"testId", testID,
		"confidence", test.Confidence,
		"duration", time.Since(start))
	return test, nil
}

// computeConfidence runs a simplified two-sample z computation over the
// first two variants and maps the statistic onto coarse confidence
// percentages. Deliberately approximate: the thresholds are part of the
// dashboard contract and must not be "improved" in place.
func (s *ABTestService) computeConfidence(variants []analytics.Variant) float64 {
	if len(variants) < 2 {
		return 0
	}
	a, b := variants[0], variants[1]
	if a.Participants < minSampleSize || b.Participants < minSampleSize {
		return 0
	}

	pA := float64(a.Conversions) / float64(a.Participants)
	pB := float64(b.Conversions) / float64(b.Participants)
	pooled := float64(a.Conversions+b.Conversions) / float64(a.Participants+b.Participants)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(a.Participants) + 1/float64(b.Participants)))
	if se == 0 {
		return 0
	}

	z := math.Abs(pA-pB) / se
	switch {
	case z > 2.58:
		return 99
	case z > 1.96:
		return 95
	case z > 1.645:
		return 90
	default:
		return math.Round(math.Min(z*50, 85))
	}
}

// All returns every stored experiment definition without derived counters.
func (s *ABTestService) All() ([]*analytics.ABTest, error) {
	return s.repo.FindAllTests()
}
