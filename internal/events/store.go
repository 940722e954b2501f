package events

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sightline/internal/timerange"
)

// Filters narrows aggregation to specific dimension values. Values within
// a field are combined with OR, fields with AND. The source value
// "Direct" matches records with no referrer.
type Filters struct {
	Countries []string
	Browsers  []string
	Devices   []string
	Sources   []string
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return len(f.Countries) == 0 && len(f.Browsers) == 0 && len(f.Devices) == 0 && len(f.Sources) == 0
}

// FieldGroup is one row of a grouped dimension query.
type FieldGroup struct {
	Value            string
	RecordCount      int64
	DistinctSessions int64
}

// SessionExtent summarizes one session's page-view activity inside a
// window: first and last timestamps plus the record count. It feeds
// bounce rate, average session duration and first-occurrence bucketing.
type SessionExtent struct {
	SessionID   string
	FirstSeen   time.Time
	LastSeen    time.Time
	RecordCount int64
}

// Groupable dimension fields, mapped to their column names. Anything
// else is rejected before reaching SQL.
var groupableFields = map[string]string{
	"pathname":          "pathname",
	"referrer_hostname": "referrer_hostname",
	"country":           "country",
	"browser":           "browser",
	"device":            "device",
	"custom_event_name": "custom_event_name",
}

// Store is the read-only query adapter over the append-only events
// table. All aggregation queries in the engine go through it.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// scope builds the shared WHERE clause: project, window, kind, filters.
func (s *Store) scope(ctx context.Context, projectID string, w timerange.Window, f Filters, kind EventType) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&Event{}).
		Where("project_id = ?", projectID).
		Where("timestamp >= ? AND timestamp <= ?", w.From.UTC(), w.To.UTC())

	if kind != EventTypeAny {
		query = query.Where("event_type = ?", kind)
	}
	if len(f.Countries) > 0 {
		query = query.Where("country IN ?", f.Countries)
	}
	if len(f.Browsers) > 0 {
		query = query.Where("browser IN ?", f.Browsers)
	}
	if len(f.Devices) > 0 {
		query = query.Where("device IN ?", f.Devices)
	}
	if len(f.Sources) > 0 {
		hosts := make([]string, 0, len(f.Sources))
		direct := false
		for _, source := range f.Sources {
			if source == DirectSource {
				direct = true
				continue
			}
			hosts = append(hosts, source)
		}
		switch {
		case direct && len(hosts) > 0:
			query = query.Where("(referrer_hostname IN ? OR referrer_hostname = '' OR referrer_hostname IS NULL)", hosts)
		case direct:
			query = query.Where("(referrer_hostname = '' OR referrer_hostname IS NULL)")
		default:
			query = query.Where("referrer_hostname IN ?", hosts)
		}
	}
	return query
}

// CountMatching returns the number of records matching the scope.
func (s *Store) CountMatching(ctx context.Context, projectID string, w timerange.Window, f Filters, kind EventType) (int64, error) {
	var count int64
	if err := s.scope(ctx, projectID, w, f, kind).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return count, nil
}

// DistinctSessions returns the set of session identifiers observed in
// the scope.
func (s *Store) DistinctSessions(ctx context.Context, projectID string, w timerange.Window, f Filters, kind EventType) ([]string, error) {
	var sessions []string
	err := s.scope(ctx, projectID, w, f, kind).
		Distinct("session_id").
		Order("session_id ASC").
		Pluck("session_id", &sessions).Error
	if err != nil {
		return nil, fmt.Errorf("fetching distinct sessions: %w", err)
	}
	return sessions, nil
}

// GroupByField groups matching records by a dimension column and returns
// per-value record and distinct-session counts in first-seen scan order.
// Callers apply their own ranking with a stable sort so that ties keep
// this order.
func (s *Store) GroupByField(ctx context.Context, projectID string, w timerange.Window, f Filters, kind EventType, field string) ([]FieldGroup, error) {
	column, ok := groupableFields[field]
	if !ok {
		return nil, fmt.Errorf("field %q is not groupable", field)
	}

	var results []FieldGroup
	err := s.scope(ctx, projectID, w, f, kind).
		Select(fmt.Sprintf("%s AS value, COUNT(*) AS record_count, COUNT(DISTINCT session_id) AS distinct_sessions", column)).
		Group(column).
		Order("MIN(id) ASC").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("grouping by %s: %w", field, err)
	}
	return results, nil
}

// SessionExtents returns one row per session covering its activity of
// the given kind in the window, ordered by first-seen timestamp. Extents
// are folded client-side from the ordered row scan, which produces the
// same result as a grouped MIN/MAX query.
func (s *Store) SessionExtents(ctx context.Context, projectID string, w timerange.Window, f Filters, kind EventType) ([]SessionExtent, error) {
	var rows []struct {
		SessionID string
		Timestamp time.Time
	}
	err := s.scope(ctx, projectID, w, f, kind).
		Select("session_id, timestamp").
		Order("timestamp ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetching session extents: %w", err)
	}

	index := make(map[string]int, len(rows))
	extents := make([]SessionExtent, 0, len(rows))
	for _, row := range rows {
		i, seen := index[row.SessionID]
		if !seen {
			index[row.SessionID] = len(extents)
			extents = append(extents, SessionExtent{
				SessionID:   row.SessionID,
				FirstSeen:   row.Timestamp,
				LastSeen:    row.Timestamp,
				RecordCount: 1,
			})
			continue
		}
		extents[i].LastSeen = row.Timestamp
		extents[i].RecordCount++
	}
	return extents, nil
}

// RecordTimestamps returns the raw timestamps of matching records. The
// page-views series buckets these client-side, which by construction
// produces the same result as a server-side grouped query.
func (s *Store) RecordTimestamps(ctx context.Context, projectID string, w timerange.Window, f Filters, kind EventType) ([]time.Time, error) {
	var timestamps []time.Time
	err := s.scope(ctx, projectID, w, f, kind).
		Order("timestamp ASC").
		Pluck("timestamp", &timestamps).Error
	if err != nil {
		return nil, fmt.Errorf("fetching record timestamps: %w", err)
	}
	return timestamps, nil
}

// RecentEvents returns the most recent events for a project, newest
// first.
func (s *Store) RecentEvents(ctx context.Context, projectID string, limit int) ([]Event, error) {
	var recent []Event
	err := s.db.WithContext(ctx).Model(&Event{}).
		Where("project_id = ?", projectID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("fetching recent events: %w", err)
	}
	if recent == nil {
		recent = []Event{}
	}
	return recent, nil
}
