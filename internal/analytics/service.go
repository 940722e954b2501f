package analytics

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"sightline/internal/events"
	"sightline/internal/pkg/async"
	"sightline/internal/projects"
	"sightline/internal/timerange"
)

// DefaultRecentEventsLimit bounds the recent-events list in the report.
const DefaultRecentEventsLimit = 50

// ComputeParams is one analytics request, validated once at the service
// boundary.
type ComputeParams struct {
	ProjectID string
	RangeKey  timerange.RangeKey
	Timezone  string
	Filters   events.Filters
}

// Service orchestrates the aggregator fan-out for analytics requests.
type Service struct {
	db          *gorm.DB
	store       *events.Store
	resolver    *timerange.Resolver
	logger      *slog.Logger
	recentLimit int
}

func NewService(db *gorm.DB, logger *slog.Logger, timeProvider ...timerange.TimeProvider) *Service {
	return &Service{
		db:          db,
		store:       events.NewStore(db),
		resolver:    timerange.NewResolver(timeProvider...),
		logger:      logger,
		recentLimit: DefaultRecentEventsLimit,
	}
}

// SetRecentEventsLimit overrides the recent-events list size.
func (s *Service) SetRecentEventsLimit(limit int) {
	if limit > 0 {
		s.recentLimit = limit
	}
}

// Compute resolves the range, fans all aggregators out for both windows
// concurrently, folds the scalars through the comparator, and assembles
// the report. Any single aggregator failure aborts the whole request; a
// partial report is never returned.
func (s *Service) Compute(ctx context.Context, params ComputeParams) (*Report, error) {
	if err := projects.ValidateID(params.ProjectID); err != nil {
		return nil, err
	}
	if _, err := projects.GetByID(s.db, params.ProjectID); err != nil {
		return nil, err
	}

	resolution, err := s.resolver.Resolve(params.RangeKey, params.Timezone)
	if err != nil {
		return nil, err
	}

	buckets := timerange.Buckets(resolution.Current, resolution.Granularity)
	labels := timerange.Labels(buckets)

	current := QueryParams{ProjectID: params.ProjectID, Window: resolution.Current, Filters: params.Filters}
	previous := QueryParams{ProjectID: params.ProjectID, Window: resolution.Previous, Filters: params.Filters}

	s.logger.Debug("computing analytics",
		slog.String("projectId", params.ProjectID),
		slog.String("range", string(params.RangeKey)),
		slog.Time("from", resolution.Current.From),
		slog.Time("to", resolution.Current.To),
		slog.Int("buckets", len(buckets)))

	tasks := []async.Task{
		{
			Name: "uniqueUsers",
			Execute: func(ctx context.Context) (interface{}, error) {
				return UniqueUsersInTimeFrame(ctx, s.store, current, buckets, resolution.Granularity)
			},
		},
		{
			Name: "pageViews",
			Execute: func(ctx context.Context) (interface{}, error) {
				return PageViewsInTimeFrame(ctx, s.store, current, buckets, resolution.Granularity)
			},
		},
		{
			Name: "sessions",
			Execute: func(ctx context.Context) (interface{}, error) {
				return SessionsInTimeFrame(ctx, s.store, current, buckets, resolution.Granularity)
			},
		},
		{
			Name: "bounceRate",
			Execute: func(ctx context.Context) (interface{}, error) {
				return BounceRateInTimeFrame(ctx, s.store, current)
			},
		},
		{
			Name: "avgSessionDuration",
			Execute: func(ctx context.Context) (interface{}, error) {
				return AvgSessionDurationInTimeFrame(ctx, s.store, current)
			},
		},
		{
			Name: "pages",
			Execute: func(ctx context.Context) (interface{}, error) {
				return TopPagesInTimeFrame(ctx, s.store, current)
			},
		},
		{
			Name: "sources",
			Execute: func(ctx context.Context) (interface{}, error) {
				return TopSourcesInTimeFrame(ctx, s.store, current)
			},
		},
		{
			Name: "countries",
			Execute: func(ctx context.Context) (interface{}, error) {
				return TopCountriesInTimeFrame(ctx, s.store, current)
			},
		},
		{
			Name: "browsers",
			Execute: func(ctx context.Context) (interface{}, error) {
				return TopBrowsersInTimeFrame(ctx, s.store, current)
			},
		},
		{
			Name: "devices",
			Execute: func(ctx context.Context) (interface{}, error) {
				return TopDevicesInTimeFrame(ctx, s.store, current)
			},
		},
		{
			Name: "topEvents",
			Execute: func(ctx context.Context) (interface{}, error) {
				return TopEventsInTimeFrame(ctx, s.store, current)
			},
		},
		{
			Name: "recentEvents",
			Execute: func(ctx context.Context) (interface{}, error) {
				return s.store.RecentEvents(ctx, params.ProjectID, s.recentLimit)
			},
		},
		{
			Name: "previousUniqueUsers",
			Execute: func(ctx context.Context) (interface{}, error) {
				return UniqueUsersTotal(ctx, s.store, previous)
			},
		},
		{
			Name: "previousPageViews",
			Execute: func(ctx context.Context) (interface{}, error) {
				return PageViewsTotal(ctx, s.store, previous)
			},
		},
		{
			Name: "previousSessions",
			Execute: func(ctx context.Context) (interface{}, error) {
				return SessionsTotal(ctx, s.store, previous)
			},
		},
		{
			Name: "previousBounceRate",
			Execute: func(ctx context.Context) (interface{}, error) {
				return BounceRateInTimeFrame(ctx, s.store, previous)
			},
		},
		{
			Name: "previousAvgSessionDuration",
			Execute: func(ctx context.Context) (interface{}, error) {
				return AvgSessionDurationInTimeFrame(ctx, s.store, previous)
			},
		},
	}

	results, err := async.Run(ctx, len(tasks), tasks)
	if err != nil {
		return nil, err
	}

	uniqueUsers := results["uniqueUsers"].(SeriesTotals)
	pageViews := results["pageViews"].(SeriesTotals)
	sessions := results["sessions"].(SeriesTotals)

	return &Report{
		TimeRange:   TimeRange{Start: resolution.Current.From, End: resolution.Current.To},
		Granularity: string(resolution.Granularity),
		UniqueUsers: comparativeMetric(float64(uniqueUsers.Total), float64(results["previousUniqueUsers"].(int64)), uniqueUsers.Series, labels),
		PageViews:   comparativeMetric(float64(pageViews.Total), float64(results["previousPageViews"].(int64)), pageViews.Series, labels),
		Sessions:    comparativeMetric(float64(sessions.Total), float64(results["previousSessions"].(int64)), sessions.Series, labels),
		BounceRate: comparativeMetric(
			results["bounceRate"].(float64),
			results["previousBounceRate"].(float64),
			[]int64{}, []string{}),
		AvgSessionDuration: comparativeMetric(
			results["avgSessionDuration"].(float64),
			results["previousAvgSessionDuration"].(float64),
			[]int64{}, []string{}),
		Pages:        results["pages"].([]RankedResult),
		Sources:      results["sources"].([]RankedResult),
		Countries:    results["countries"].([]RankedResult),
		Browsers:     results["browsers"].([]RankedResult),
		Devices:      results["devices"].([]RankedResult),
		TopEvents:    results["topEvents"].([]RankedResult),
		RecentEvents: results["recentEvents"].([]events.Event),
	}, nil
}

func comparativeMetric(total, previousTotal float64, series []int64, labels []string) Metric {
	return Metric{
		Total:         total,
		PreviousTotal: previousTotal,
		ChangePercent: ChangePercent(total, previousTotal),
		Series:        series,
		Labels:        labels,
	}
}
