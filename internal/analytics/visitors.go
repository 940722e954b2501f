package analytics

import (
	"context"
	"time"

	"sightline/internal/events"
	"sightline/internal/timerange"
)

// SeriesTotals pairs an aggregate scalar with its bucketed series.
type SeriesTotals struct {
	Total  int64
	Series []int64
}

// UniqueUsersTotal counts distinct session identifiers across all
// record kinds in the window.
func UniqueUsersTotal(ctx context.Context, store *events.Store, params QueryParams) (int64, error) {
	sessions, err := store.DistinctSessions(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypeAny)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}

// UniqueUsersInTimeFrame returns the unique-users scalar and its series.
// Each session lands in exactly one bucket, the one containing its
// first-ever timestamp within the window, so the series always sums to
// the total.
func UniqueUsersInTimeFrame(ctx context.Context, store *events.Store, params QueryParams, buckets []timerange.Bucket, g timerange.Granularity) (SeriesTotals, error) {
	extents, err := store.SessionExtents(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypeAny)
	if err != nil {
		return SeriesTotals{}, err
	}
	return SeriesTotals{
		Total:  int64(len(extents)),
		Series: firstSeenSeries(extents, buckets, g),
	}, nil
}

// firstSeenSeries buckets sessions by their first-seen timestamp.
func firstSeenSeries(extents []events.SessionExtent, buckets []timerange.Bucket, g timerange.Granularity) []int64 {
	firsts := make([]time.Time, len(extents))
	for i, extent := range extents {
		firsts[i] = extent.FirstSeen
	}
	return timerange.BuildSeries(buckets, g, firsts)
}
