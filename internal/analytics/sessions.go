package analytics

import (
	"context"

	"sightline/internal/events"
	"sightline/internal/timerange"
)

// SessionsTotal counts distinct sessions with page-view activity in the
// window. It is computed independently of the unique-users scalar: a
// session carrying only custom events counts as a user but not as a
// session.
func SessionsTotal(ctx context.Context, store *events.Store, params QueryParams) (int64, error) {
	sessions, err := store.DistinctSessions(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}

// SessionsInTimeFrame returns the sessions scalar and its series. Like
// unique users, each session is attributed to the bucket of its first
// page view within the window.
func SessionsInTimeFrame(ctx context.Context, store *events.Store, params QueryParams, buckets []timerange.Bucket, g timerange.Granularity) (SeriesTotals, error) {
	extents, err := store.SessionExtents(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView)
	if err != nil {
		return SeriesTotals{}, err
	}
	return SeriesTotals{
		Total:  int64(len(extents)),
		Series: firstSeenSeries(extents, buckets, g),
	}, nil
}
