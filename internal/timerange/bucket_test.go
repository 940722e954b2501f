package timerange_test

import (
	"sightline/internal/timerange"

	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketsChronologicalOrder(t *testing.T) {
	w := timerange.Window{
		From: time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 7, 15, 23, 59, 59, 999999999, time.UTC),
	}
	buckets := timerange.Buckets(w, timerange.GranularityDay)

	require.Len(t, buckets, 7)
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].Start.Before(buckets[i].Start))
	}
	assert.Equal(t, "Jul 9", buckets[0].Label)
	assert.Equal(t, "Jul 15", buckets[6].Label)
}

func TestBucketsZeroDurationWindow(t *testing.T) {
	instant := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	buckets := timerange.Buckets(timerange.Window{From: instant, To: instant}, timerange.GranularityHour)
	assert.Len(t, buckets, 1)
}

func TestBucketsCalendarMonthSteps(t *testing.T) {
	// Month steps respect calendar lengths, including February in a leap year.
	w := timerange.Window{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 4, 30, 23, 59, 59, 999999999, time.UTC),
	}
	buckets := timerange.Buckets(w, timerange.GranularityMonth)

	require.Len(t, buckets, 4)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), buckets[1].Start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), buckets[2].Start)
	assert.Equal(t, "Feb 2024", buckets[1].Label)
}

func TestBucketIndex(t *testing.T) {
	w := timerange.Window{
		From: time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 7, 15, 23, 59, 59, 999999999, time.UTC),
	}
	buckets := timerange.Buckets(w, timerange.GranularityDay)

	testCases := []struct {
		name     string
		t        time.Time
		expected int
	}{
		{"exactly on first bucket start", time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC), 0},
		{"middle of a bucket", time.Date(2024, 7, 11, 13, 45, 0, 0, time.UTC), 2},
		{"last nanosecond of last bucket", time.Date(2024, 7, 15, 23, 59, 59, 999999999, time.UTC), 6},
		{"before the window", time.Date(2024, 7, 8, 23, 59, 59, 0, time.UTC), -1},
		{"after the window", time.Date(2024, 7, 16, 0, 0, 0, 0, time.UTC), -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, timerange.BucketIndex(buckets, timerange.GranularityDay, tc.t))
		})
	}
}

func TestBuildSeriesZeroFills(t *testing.T) {
	w := timerange.Window{
		From: time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 7, 15, 23, 59, 59, 999999999, time.UTC),
	}
	buckets := timerange.Buckets(w, timerange.GranularityDay)

	timestamps := []time.Time{
		time.Date(2024, 7, 9, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 9, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 12, 8, 30, 0, 0, time.UTC),
		// Outside the window: dropped, never miscounted.
		time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC),
	}

	series := timerange.BuildSeries(buckets, timerange.GranularityDay, timestamps)
	assert.Equal(t, []int64{2, 0, 0, 1, 0, 0, 0}, series)
}

func TestBuildSeriesEmptyInput(t *testing.T) {
	w := timerange.Window{
		From: time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 7, 10, 23, 59, 59, 999999999, time.UTC),
	}
	buckets := timerange.Buckets(w, timerange.GranularityDay)

	series := timerange.BuildSeries(buckets, timerange.GranularityDay, nil)
	assert.Equal(t, []int64{0, 0}, series)
}

func TestLabels(t *testing.T) {
	w := timerange.Window{
		From: time.Date(2024, 7, 15, 13, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 7, 15, 15, 59, 59, 999999999, time.UTC),
	}
	buckets := timerange.Buckets(w, timerange.GranularityHour)
	assert.Equal(t, []string{"13:00", "14:00", "15:00"}, timerange.Labels(buckets))
}
