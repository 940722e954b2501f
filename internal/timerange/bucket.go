package timerange

import (
	"sort"
	"time"
)

// maxBuckets caps the walk as a guard against malformed windows.
const maxBuckets = 1000

// Bucket is a fixed-width chronological slot. Its implicit end is
// Start plus one granularity unit; a timestamp t belongs to the bucket
// iff Start <= t < end.
type Bucket struct {
	Start time.Time
	Label string
}

// Buckets walks the window from its start in steps of one granularity
// unit and returns the ordered bucket sequence. The last bucket's start
// is always <= window.To; its end may exceed it (partial final bucket).
// A zero-duration window yields exactly one bucket.
func Buckets(w Window, g Granularity) []Bucket {
	buckets := make([]Bucket, 0, 32)
	cur := w.From
	for !cur.After(w.To) && len(buckets) < maxBuckets {
		buckets = append(buckets, Bucket{Start: cur, Label: label(cur, g)})
		cur = step(cur, g)
	}
	if len(buckets) == 0 {
		buckets = append(buckets, Bucket{Start: w.From, Label: label(w.From, g)})
	}
	return buckets
}

// Labels extracts the label column from a bucket sequence.
func Labels(buckets []Bucket) []string {
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	return labels
}

// BucketIndex locates the bucket a timestamp belongs to, or -1 when the
// timestamp falls outside every bucket (clock skew, window edges).
func BucketIndex(buckets []Bucket, g Granularity, t time.Time) int {
	if len(buckets) == 0 || t.Before(buckets[0].Start) {
		return -1
	}
	// First bucket whose start is strictly after t, minus one.
	i := sort.Search(len(buckets), func(i int) bool {
		return buckets[i].Start.After(t)
	}) - 1
	if t.Before(step(buckets[i].Start, g)) {
		return i
	}
	return -1
}

// BuildSeries counts timestamps into their buckets, zero-filling empty
// ones. Timestamps outside all buckets are dropped silently; callers
// keep them in scalar totals when they fall inside the window.
func BuildSeries(buckets []Bucket, g Granularity, timestamps []time.Time) []int64 {
	series := make([]int64, len(buckets))
	for _, t := range timestamps {
		if i := BucketIndex(buckets, g, t); i >= 0 {
			series[i]++
		}
	}
	return series
}

func step(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityMinute:
		return t.Add(time.Minute)
	case GranularityHour:
		return t.Add(time.Hour)
	case GranularityDay:
		return t.AddDate(0, 0, 1)
	case GranularityWeek:
		return t.AddDate(0, 0, 7)
	case GranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func label(t time.Time, g Granularity) string {
	switch g {
	case GranularityMinute:
		return t.Format("15:04")
	case GranularityHour:
		return t.Format("15:00")
	case GranularityDay:
		return t.Format("Jan 2")
	case GranularityWeek:
		return "Week of " + t.Format("Jan 2")
	case GranularityMonth:
		return t.Format("Jan 2006")
	default:
		return t.Format("2006-01-02")
	}
}
