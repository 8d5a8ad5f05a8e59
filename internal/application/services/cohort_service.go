package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/risingpath/pulse-go/internal/domain/analytics"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/logging"
	"github.com/risingpath/pulse-go/internal/infrastructure/observability/performance"
)

// Retention checkpoints measured from cohort start. Months use fixed
// 30-day approximations to match the dashboard contract.
var retentionCheckpoints = []struct {
	name   string
	offset time.Duration
}{
	{"week1", 7 * 24 * time.Hour},
	{"week2", 14 * 24 * time.Hour},
	{"week3", 21 * 24 * time.Hour},
	{"week4", 28 * 24 * time.Hour},
	{"month2", 60 * 24 * time.Hour},
	{"month3", 90 * 24 * time.Hour},
	{"month6", 180 * 24 * time.Hour},
}

// Revenue attribution split across the cohort's first three months. A
// modeling simplification: the split is fixed, not measured.
const (
	revenueSplitMonth1 = 0.40
	revenueSplitMonth2 = 0.30
	revenueSplitMonth3 = 0.30
)

// CohortService groups users by acquisition period and derives retention
// and revenue curves per cohort.
type CohortService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCohortService creates a new cohort service with its dependencies.
func NewCohortService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CohortService {
	return &CohortService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Generate buckets every actor by the period of their first-seen event and
// computes the per-cohort curves. Retention is cumulative "ever active up
// to X", by contract.
func (s *CohortService) Generate(events []*analytics.Event, granularity analytics.CohortGranularity) ([]*analytics.CohortAnalysis, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("analytics:generate_cohorts")
	defer marker.Complete()

	if granularity != analytics.CohortWeekly && granularity != analytics.CohortMonthly {
		err := fmt.Errorf("invalid cohort granularity %q", granularity)
		marker.SetError(err)
		return nil, err
	}

	firstSeen := make(map[string]time.Time)
	eventsByActor := make(map[string][]*analytics.Event)
	for _, e := range events {
		actor := e.ActorKey()
		if ts, ok := firstSeen[actor]; !ok || e.Timestamp.Before(ts) {
			firstSeen[actor] = e.Timestamp
		}
		eventsByActor[actor] = append(eventsByActor[actor], e)
	}

	type cohortAccumulator struct {
		start   time.Time
		members []string
	}
	cohorts := make(map[string]*cohortAccumulator)
	for actor, ts := range firstSeen {
		cohortStart := bucketStart(ts, granularity)
		key := cohortKey(cohortStart, granularity)
		acc := cohorts[key]
		if acc == nil {
			acc = &cohortAccumulator{start: cohortStart}
			cohorts[key] = acc
		}
		acc.members = append(acc.members, actor)
	}

	results := make([]*analytics.CohortAnalysis, 0, len(cohorts))
	for key, acc := range cohorts {
		analysis := &analytics.CohortAnalysis{
			Period: key,
			Start:  acc.start,
			Size:   len(acc.members),
		}

		// Cumulative retention: an actor counts at a checkpoint when any
		// of their events falls at or before cohortStart + offset.
		retained := make([]int, len(retentionCheckpoints))
		var revenue float64
		for _, actor := range acc.members {
			for _, e := range eventsByActor[actor] {
				if e.Type == analytics.EventConversion && e.Value != nil {
					revenue += *e.Value
				}
			}
			for i, cp := range retentionCheckpoints {
				if hasActivityBefore(eventsByActor[actor], acc.start.Add(cp.offset)) {
					retained[i]++
				}
			}
		}

		curve := &analysis.Retention
		if analysis.Size > 0 {
			pct := func(n int) float64 { return float64(n) / float64(analysis.Size) * 100 }
			curve.Week1 = pct(retained[0])
			curve.Week2 = pct(retained[1])
			curve.Week3 = pct(retained[2])
			curve.Week4 = pct(retained[3])
			curve.Month2 = pct(retained[4])
			curve.Month3 = pct(retained[5])
			curve.Month6 = pct(retained[6])
		}

		analysis.Revenue.Total = revenue
		if analysis.Size > 0 {
			analysis.Revenue.PerUser = revenue / float64(analysis.Size)
		}
		analysis.Revenue.Month1 = revenue * revenueSplitMonth1
		analysis.Revenue.Month2 = revenue * revenueSplitMonth2
		analysis.Revenue.Month3 = revenue * revenueSplitMonth3

		results = append(results, analysis)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Start.Before(results[j].Start)
	})

	marker.SetSuccess(true)
	s.logger.Analytics().Debug("Cohort analysis generated",
		"granularity", granularity,
		"cohorts", len(results),
		"duration", time.Since(start))
	return results, nil
}

// hasActivityBefore reports whether any event is at or before the cutoff.
func hasActivityBefore(events []*analytics.Event, cutoff time.Time) bool {
	for _, e := range events {
		if !e.Timestamp.After(cutoff) {
			return true
		}
	}
	return false
}

// bucketStart truncates a timestamp to its cohort period start: the
// preceding Sunday for weekly cohorts, the first of the month otherwise.
func bucketStart(ts time.Time, granularity analytics.CohortGranularity) time.Time {
	ts = ts.UTC()
	if granularity == analytics.CohortWeekly {
		day := ts.Truncate(24 * time.Hour)
		daysSinceSunday := int(ts.Weekday())
		return day.AddDate(0, 0, -daysSinceSunday)
	}
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func cohortKey(start time.Time, granularity analytics.CohortGranularity) string {
	if granularity == analytics.CohortWeekly {
		return start.Format("2006-01-02")
	}
	return start.Format("2006-01")
}
