// Package analytics turns the raw event stream into comparative,
// time-bucketed metrics for a project and date range.
//
// The package is organized into focused modules:
//   - comparison.go: period-over-period percentage change
//   - visitors.go: unique users (scalar + first-occurrence series)
//   - sessions.go: session counts
//   - pageviews.go: page-view counts
//   - engagement.go: bounce rate and average session duration
//   - metrics.go: top-N breakdowns (pages, countries, browsers, devices, events)
//   - referrers.go: traffic-source derivation and top sources
//   - service.go: the orchestrator fanning the aggregators out
package analytics

import (
	"time"

	"sightline/internal/events"
	"sightline/internal/timerange"
)

// Ranked list sizes.
const (
	TopPagesLimit     = 20
	TopDimensionLimit = 10
)

// QueryParams carries the validated scope every aggregator operates on.
type QueryParams struct {
	ProjectID string
	Window    timerange.Window
	Filters   events.Filters
}

// Metric is one comparative measurement: the current-window scalar, the
// previous-window scalar, the signed percentage change, and the bucketed
// series aligned index-for-index with its labels.
type Metric struct {
	Total         float64  `json:"total"`
	PreviousTotal float64  `json:"previous_total"`
	ChangePercent float64  `json:"change_percent"`
	Series        []int64  `json:"series"`
	Labels        []string `json:"labels"`
}

// RankedResult is one row of a top-N breakdown. Which count fields are
// populated depends on the dimension.
type RankedResult struct {
	Key      string `json:"key"`
	Users    int64  `json:"users,omitempty"`
	Views    int64  `json:"views,omitempty"`
	Sessions int64  `json:"sessions,omitempty"`
	Count    int64  `json:"count,omitempty"`
	Category string `json:"category,omitempty"`
}

// TimeRange is the resolved current window as returned to the caller.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Report is the unified analytics envelope for one request.
type Report struct {
	TimeRange          TimeRange      `json:"time_range"`
	Granularity        string         `json:"granularity"`
	UniqueUsers        Metric         `json:"unique_users"`
	PageViews          Metric         `json:"page_views"`
	Sessions           Metric         `json:"sessions"`
	BounceRate         Metric         `json:"bounce_rate"`
	AvgSessionDuration Metric         `json:"avg_session_duration"`
	Pages              []RankedResult `json:"pages"`
	Sources            []RankedResult `json:"sources"`
	Countries          []RankedResult `json:"countries"`
	Browsers           []RankedResult `json:"browsers"`
	Devices            []RankedResult `json:"devices"`
	TopEvents          []RankedResult `json:"top_events"`
	RecentEvents       []events.Event `json:"recent_events"`
}
