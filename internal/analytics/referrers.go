package analytics

import (
	"context"
	"sort"

	"sightline/internal/events"
)

// TopSourcesInTimeFrame fetches the top traffic sources by distinct
// sessions. Records without a referrer fold into "Direct"; everything
// else is keyed by the referrer's bare host. Hosts that normalize to the
// same key are merged in scan order.
func TopSourcesInTimeFrame(ctx context.Context, store *events.Store, params QueryParams) ([]RankedResult, error) {
	groups, err := store.GroupByField(ctx, params.ProjectID, params.Window, params.Filters, events.EventTypePageView, "referrer_hostname")
	if err != nil {
		return nil, err
	}

	merged := make([]RankedResult, 0, len(groups))
	index := make(map[string]int, len(groups))
	for _, group := range groups {
		key := events.SourceKey(events.ReferrerHost(group.Value))
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
