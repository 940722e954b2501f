package analytics

import (
	"context"

	"sightline/internal/events"
	"sightline/internal/timerange"
)

// PageViewsTotal counts page-view records in the window, no dedup.
func PageViewsTotal(ctx context.Context, store *events.Store, params QueryParams) (int64, error) {
	return store.CountMatching(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView)
}

// PageViewsInTimeFrame returns the page-views scalar and its series.
// Records are bucketed by their own timestamps; a record inside the
// window but outside every bucket still counts toward the total.
func PageViewsInTimeFrame(ctx context.Context, store *events.Store, params QueryParams, buckets []timerange.Bucket, g timerange.Granularity) (SeriesTotals, error) {
	timestamps, err := store.RecordTimestamps(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView)
	if err != nil {
		return SeriesTotals{}, err
	}
	return SeriesTotals{
		Total:  int64(len(timestamps)),
		Series: timerange.BuildSeries(buckets, g, timestamps),
	}, nil
}
