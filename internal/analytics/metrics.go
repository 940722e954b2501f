package analytics

import (
	"context"
	"sort"

	"sightline/internal/events"
)

// TopPagesInTimeFrame fetches the top pages by view count. Users is the
// distinct session count per path.
func TopPagesInTimeFrame(ctx context.Context, store *events.Store, params QueryParams) ([]RankedResult, error) {
	groups, err := store.GroupByField(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView, "pathname")
	if err != nil {
		return nil, err
	}

	results := make([]RankedResult, len(groups))
	for i, group := range groups {
		results[i] = RankedResult{
			Key:   group.Value,
			Users: group.DistinctSessions,
			Views: group.RecordCount,
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Views > results[j].Views
	})
	return truncate(results, TopPagesLimit), nil
}

// TopCountriesInTimeFrame fetches the top countries by distinct
// sessions. Records without a country fold into "Unknown".
func TopCountriesInTimeFrame(ctx context.Context, store *events.Store, params QueryParams) ([]RankedResult, error) {
	return topDimension(ctx, store, params, "country", events.UnknownCountry)
}

// TopBrowsersInTimeFrame fetches the top browsers by distinct sessions.
func TopBrowsersInTimeFrame(ctx context.Context, store *events.Store, params QueryParams) ([]RankedResult, error) {
	return topDimension(ctx, store, params, "browser", events.UnknownBrowser)
}

// TopDevicesInTimeFrame fetches the top devices by distinct sessions.
// Each row additionally carries the fixed device category.
func TopDevicesInTimeFrame(ctx context.Context, store *events.Store, params QueryParams) ([]RankedResult, error) {
	results, err := topDimension(ctx, store, params, "device", events.DeviceDesktop)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Category = events.DeviceCategory(results[i].Key)
	}
	return results, nil
}

// TopEventsInTimeFrame fetches the top custom events by occurrence
// count; Users is the distinct session count per event name.
func TopEventsInTimeFrame(ctx context.Context, store *events.Store, params QueryParams) ([]RankedResult, error) {
	groups, err := store.GroupByField(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypeCustomEvent, "custom_event_name")
	if err != nil {
		return nil, err
	}

	results := make([]RankedResult, len(groups))
	for i, group := range groups {
		results[i] = RankedResult{
			Key:   group.Value,
			Count: group.RecordCount,
			Users: group.DistinctSessions,
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Count > results[j].Count
	})
	return truncate(results, TopDimensionLimit), nil
}

// topDimension groups page views by a dimension column, substitutes the
// fallback for empty values, and ranks by distinct sessions descending
// with first-seen tie-break.
func topDimension(ctx context.Context, store *events.Store, params QueryParams, field, fallback string) ([]RankedResult, error) {
	groups, err := store.GroupByField(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView, field)
	if err != nil {
		return nil, err
	}

	merged := make([]RankedResult, 0, len(groups))
	index := make(map[string]int, len(groups))
	for _, group := range groups {
		key := group.Value
		if key == "" {
			key = fallback
		}
		if i, seen := index[key]; seen {
			merged[i].Users += group.DistinctSessions
			merged[i].Sessions += group.DistinctSessions
			continue
		}
		index[key] = len(merged)
		merged = append(merged, RankedResult{
			Key:      key,
			Users:    group.DistinctSessions,
			Sessions: group.DistinctSessions,
		})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Users > merged[j].Users
	})
	return truncate(merged, TopDimensionLimit), nil
}

func truncate(results []RankedResult, limit int) []RankedResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
