package analytics

import "time"

// ToolUsage aggregates interactions with one interactive tool
// (metadata "tool" key).
type ToolUsage struct {
	Users       int     `json:"users"`
	Sessions    int     `json:"sessions"`
	Completions int     `json:"completions"`
	AvgDuration float64 `json:"avgDuration"`
	DropOffRate float64 `json:"dropOffRate"`
}

// ContentPerformance aggregates consumption of one content item
// (metadata "content" key).
type ContentPerformance struct {
	Views           int     `json:"views"`
	UniqueViewers   int     `json:"uniqueViewers"`
	AvgTimeSpent    float64 `json:"avgTimeSpent"`
	ShareRate       float64 `json:"shareRate"`
	EngagementScore int     `json:"engagementScore"`
}

// AnalyticsMetrics is the full aggregate a dashboard reads in one call.
// All fields are derived from a filtered event set; computing twice over
// the same events yields identical output.
type AnalyticsMetrics struct {
	UniqueUsers        int                            `json:"uniqueUsers"`
	NewUsers           int                            `json:"newUsers"`
	ReturningUsers     int                            `json:"returningUsers"`
	Sessions           int                            `json:"sessions"`
	BounceRate         float64                        `json:"bounceRate"`
	AvgSessionDuration float64                        `json:"avgSessionDuration"`
	PageViews          int                            `json:"pageViews"`
	Conversions        int                            `json:"conversions"`
	ConversionRate     float64                        `json:"conversionRate"`
	RevenueAttribution float64                        `json:"revenueAttribution"`
	ToolUsage          map[string]*ToolUsage          `json:"toolUsage"`
	ContentPerformance map[string]*ContentPerformance `json:"contentPerformance"`
	LeadScore          int                            `json:"leadScore"`
	ChurnRisk          float64                        `json:"churnRisk"`
	LifetimeValue      float64                        `json:"lifetimeValue"`
}

// PageCount is one row of a top-pages table.
type PageCount struct {
	Page  string `json:"page"`
	Views int    `json:"views"`
}

// SourceCount is one row of a top-traffic-sources table.
type SourceCount struct {
	Source string `json:"source"`
	Users  int    `json:"users"`
}

// RealTimeSnapshot is the windowed live view over recent events.
type RealTimeSnapshot struct {
	WindowStart  time.Time     `json:"windowStart"`
	ActiveUsers  int           `json:"activeUsers"`
	PageViews    int           `json:"pageViews"`
	Conversions  int           `json:"conversions"`
	TopPages     []PageCount   `json:"topPages"`
	TopSources   []SourceCount `json:"topSources"`
	RecentEvents []*Event      `json:"recentEvents"`
}
