package analytics

import "time"

// CohortGranularity selects the acquisition bucketing period.
type CohortGranularity string

const (
	CohortWeekly  CohortGranularity = "week"
	CohortMonthly CohortGranularity = "month"
)

// RetentionCurve holds the cumulative "ever active up to X" retention
// percentages for a cohort at fixed checkpoints.
type RetentionCurve struct {
	Week1  float64 `json:"week1"`
	Week2  float64 `json:"week2"`
	Week3  float64 `json:"week3"`
	Week4  float64 `json:"week4"`
	Month2 float64 `json:"month2"`
	Month3 float64 `json:"month3"`
	Month6 float64 `json:"month6"`
}

// CohortRevenue reports attributed revenue for one cohort. The month 1/2/3
// figures are a fixed 40/30/30 split of the total, not independently
// measured.
type CohortRevenue struct {
	Total   float64 `json:"total"`
	PerUser float64 `json:"perUser"`
	Month1  float64 `json:"month1"`
	Month2  float64 `json:"month2"`
	Month3  float64 `json:"month3"`
}

// CohortAnalysis is one row of a cohort table: all users first seen in the
// same period, with their retention and revenue curves.
type CohortAnalysis struct {
	Period    string         `json:"period"`
	Start     time.Time      `json:"start"`
	Size      int            `json:"size"`
	Retention RetentionCurve `json:"retention"`
	Revenue   CohortRevenue  `json:"revenue"`
}
