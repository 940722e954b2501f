package analytics

import (
	"context"

	"sightline/internal/events"
)

// BounceRateInTimeFrame computes the percentage of sessions with exactly
// one page view, rounded to two decimals. No sessions yields 0.
func BounceRateInTimeFrame(ctx context.Context, store *events.Store, params QueryParams) (float64, error) {
	extents, err := store.SessionExtents(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView)
	if err != nil {
		return 0, err
	}
	return bounceRateOf(extents), nil
}

func bounceRateOf(extents []events.SessionExtent) float64 {
	if len(extents) == 0 {
		return 0
	}
	var bounced int64
	for _, extent := range extents {
		if extent.RecordCount == 1 {
			bounced++
		}
	}
	return round2(100 * float64(bounced) / float64(len(extents)))
}

// AvgSessionDurationInTimeFrame computes the mean session duration in
// seconds over sessions with more than one page view. Single-view
// sessions are excluded entirely rather than counted as zero, so
// bounces never deflate the average. No qualifying sessions yields 0.
func AvgSessionDurationInTimeFrame(ctx context.Context, store *events.Store, params QueryParams) (float64, error) {
	extents, err := store.SessionExtents(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView)
	if err != nil {
		return 0, err
	}
	return avgSessionDurationOf(extents), nil
}

func avgSessionDurationOf(extents []events.SessionExtent) float64 {
	var totalSeconds float64
	var qualifying int64
	for _, extent := range extents {
		if extent.RecordCount <= 1 {
			continue
		}
		totalSeconds += extent.LastSeen.Sub(extent.FirstSeen).Seconds()
		qualifying++
	}
	if qualifying == 0 {
		return 0
	}
	return totalSeconds / float64(qualifying)
}
