package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sightline/internal/analytics"
	"sightline/internal/events"
	"sightline/internal/projects"
	"sightline/internal/testsupport"
	"sightline/internal/timerange"
)

// Frozen at July 15, 2024, 15:30:45 UTC. last_7_days resolves to
// July 9 00:00:00 through July 15 23:59:59.999999999; the previous
// window is July 2 through July 8.
var serviceNow = time.Date(2024, 7, 15, 15, 30, 45, 0, time.UTC)

func newTestService(t *testing.T) (*analytics.Service, string) {
	t.Helper()
	db := testsupport.SetupTestDB(t)
	clock := &testsupport.FixedClock{FixedTime: serviceNow}
	service := analytics.NewService(db, testsupport.GetLogger(), clock)
	project := testsupport.CreateTestProject(t, db, t.Name()+".example.com")
	return service, project.ID
}

func computeLast7Days(t *testing.T, service *analytics.Service, projectID string) *analytics.Report {
	t.Helper()
	report, err := service.Compute(context.Background(), analytics.ComputeParams{
		ProjectID: projectID,
		RangeKey:  timerange.RangeLast7Days,
		Timezone:  "UTC",
	})
	require.NoError(t, err)
	return report
}

func TestComputeEmptyProject(t *testing.T) {
	service, projectID := newTestService(t)

	report := computeLast7Days(t, service, projectID)

	assert.Equal(t, float64(0), report.UniqueUsers.Total)
	assert.Equal(t, float64(0), report.PageViews.Total)
	assert.Equal(t, float64(0), report.Sessions.Total)
	assert.Equal(t, float64(0), report.BounceRate.Total)
	assert.Equal(t, float64(0), report.AvgSessionDuration.Total)
	assert.Equal(t, float64(0), report.PageViews.ChangePercent)

	// Zero-filled series, one entry per day.
	assert.Equal(t, []int64{0, 0, 0, 0, 0, 0, 0}, report.PageViews.Series)
	assert.Len(t, report.PageViews.Labels, 7)

	assert.Empty(t, report.Pages)
	assert.Empty(t, report.Sources)
	assert.Empty(t, report.Countries)
	assert.Empty(t, report.Browsers)
	assert.Empty(t, report.Devices)
	assert.Empty(t, report.TopEvents)
	assert.Empty(t, report.RecentEvents)
}

func TestComputeSinglePageView(t *testing.T) {
	service, projectID := newTestService(t)
	db := testsupport.SetupTestDB(t)

	testsupport.CreatePageView(t, db, projectID, "s1", "/", time.Date(2024, 7, 12, 10, 0, 0, 0, time.UTC))

	report := computeLast7Days(t, service, projectID)

	assert.Equal(t, float64(1), report.UniqueUsers.Total)
	assert.Equal(t, float64(1), report.PageViews.Total)
	assert.Equal(t, float64(1), report.Sessions.Total)
	// A single view is a bounce with no measurable duration.
	assert.Equal(t, float64(100), report.BounceRate.Total)
	assert.Equal(t, float64(0), report.AvgSessionDuration.Total)

	assert.Equal(t, []int64{0, 0, 0, 1, 0, 0, 0}, report.PageViews.Series)
	assert.Len(t, report.RecentEvents, 1)
}

func TestComputeReturningSession(t *testing.T) {
	service, projectID := newTestService(t)
	db := testsupport.SetupTestDB(t)

	// Same session active on two different days.
	testsupport.CreatePageView(t, db, projectID, "s1", "/", time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC))
	testsupport.CreatePageView(t, db, projectID, "s1", "/about", time.Date(2024, 7, 12, 8, 0, 0, 0, time.UTC))

	report := computeLast7Days(t, service, projectID)

	assert.Equal(t, float64(1), report.UniqueUsers.Total)
	assert.Equal(t, float64(2), report.PageViews.Total)
	assert.Equal(t, float64(1), report.Sessions.Total)
	assert.Equal(t, float64(0), report.BounceRate.Total)
	assert.Equal(t, float64(2*24*3600), report.AvgSessionDuration.Total)

	// The session lands once, in its first-seen bucket.
	assert.Equal(t, []int64{0, 1, 0, 0, 0, 0, 0}, report.UniqueUsers.Series)
	// Each view lands in its own bucket.
	assert.Equal(t, []int64{0, 1, 0, 1, 0, 0, 0}, report.PageViews.Series)
}

func TestComputeCustomEventOnlySession(t *testing.T) {
	service, projectID := newTestService(t)
	db := testsupport.SetupTestDB(t)

	at := time.Date(2024, 7, 11, 9, 0, 0, 0, time.UTC)
	testsupport.CreatePageView(t, db, projectID, "s1", "/", at)
	testsupport.CreateCustomEvent(t, db, projectID, "s2", "api_call", at)

	report := computeLast7Days(t, service, projectID)

	// s2 counts as a user but never as a session or page view.
	assert.Equal(t, float64(2), report.UniqueUsers.Total)
	assert.Equal(t, float64(1), report.Sessions.Total)
	assert.Equal(t, float64(1), report.PageViews.Total)

	require.Len(t, report.TopEvents, 1)
	assert.Equal(t, "api_call", report.TopEvents[0].Key)
}

func TestComputeComparison(t *testing.T) {
	service, projectID := newTestService(t)
	db := testsupport.SetupTestDB(t)

	// Four views in the previous window (July 2 through July 8).
	prev := time.Date(2024, 7, 3, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		testsupport.CreatePageView(t, db, projectID, "p1", "/", prev.Add(time.Duration(i)*time.Minute))
	}
	// Two views in the current window.
	cur := time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC)
	testsupport.CreatePageView(t, db, projectID, "c1", "/", cur)
	testsupport.CreatePageView(t, db, projectID, "c1", "/about", cur.Add(time.Minute))

	report := computeLast7Days(t, service, projectID)

	assert.Equal(t, float64(2), report.PageViews.Total)
	assert.Equal(t, float64(4), report.PageViews.PreviousTotal)
	assert.Equal(t, float64(-50), report.PageViews.ChangePercent)

	// Previous-window views never appear in the current series.
	var sum int64
	for _, v := range report.PageViews.Series {
		sum += v
	}
	assert.Equal(t, int64(2), sum)
}

func TestComputeIdempotent(t *testing.T) {
	service, projectID := newTestService(t)
	db := testsupport.SetupTestDB(t)

	testsupport.CreatePageView(t, db, projectID, "s1", "/", time.Date(2024, 7, 12, 10, 0, 0, 0, time.UTC))

	first := computeLast7Days(t, service, projectID)
	second := computeLast7Days(t, service, projectID)
	assert.Equal(t, first, second)
}

func TestComputeFilters(t *testing.T) {
	service, projectID := newTestService(t)
	db := testsupport.SetupTestDB(t)

	at := time.Date(2024, 7, 11, 9, 0, 0, 0, time.UTC)
	testsupport.CreatePageView(t, db, projectID, "s1", "/", at, testsupport.WithCountry("US"))
	testsupport.CreatePageView(t, db, projectID, "s2", "/", at, testsupport.WithCountry("DE"))

	report, err := service.Compute(context.Background(), analytics.ComputeParams{
		ProjectID: projectID,
		RangeKey:  timerange.RangeLast7Days,
		Timezone:  "UTC",
		Filters:   events.Filters{Countries: []string{"US"}},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(1), report.PageViews.Total)
	require.Len(t, report.Countries, 1)
	assert.Equal(t, "US", report.Countries[0].Key)
}

func TestComputeValidation(t *testing.T) {
	service, projectID := newTestService(t)
	ctx := context.Background()

	t.Run("malformed project id", func(t *testing.T) {
		_, err := service.Compute(ctx, analytics.ComputeParams{
			ProjectID: "not-a-uuid", RangeKey: timerange.RangeLast7Days, Timezone: "UTC",
		})
		assert.ErrorIs(t, err, projects.ErrInvalidProjectID)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := service.Compute(ctx, analytics.ComputeParams{
			ProjectID: "123e4567-e89b-12d3-a456-426614174000", RangeKey: timerange.RangeLast7Days, Timezone: "UTC",
		})
		assert.ErrorIs(t, err, projects.ErrProjectNotFound)
	})

	t.Run("unknown range key", func(t *testing.T) {
		_, err := service.Compute(ctx, analytics.ComputeParams{
			ProjectID: projectID, RangeKey: "last_century", Timezone: "UTC",
		})
		assert.ErrorIs(t, err, timerange.ErrInvalidRangeKey)
	})

	t.Run("invalid timezone", func(t *testing.T) {
		_, err := service.Compute(ctx, analytics.ComputeParams{
			ProjectID: projectID, RangeKey: timerange.RangeLast7Days, Timezone: "Atlantis/Capital",
		})
		assert.ErrorIs(t, err, timerange.ErrInvalidTimezone)
	})
}
