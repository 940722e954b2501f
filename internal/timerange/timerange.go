// Package timerange resolves named date-range keys into concrete time
// windows and projects event timestamps onto ordered, fixed-granularity
// buckets. All window arithmetic is calendar-aware: month and week steps
// use AddDate, never fixed millisecond multiples.
package timerange

import (
	"errors"
	"fmt"
	"time"
)

// Granularity is the bucket width unit for a resolved range.
type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
	GranularityDay    Granularity = "day"
	GranularityWeek   Granularity = "week"
	GranularityMonth  Granularity = "month"
)

// RangeKey identifies one of the fixed, shipped date ranges.
type RangeKey string

const (
	RangeLastHour     RangeKey = "last_hour"
	RangeLast24Hours  RangeKey = "last_24_hours"
	RangeLast7Days    RangeKey = "last_7_days"
	RangeLast30Days   RangeKey = "last_30_days"
	RangeLast6Months  RangeKey = "last_6_months"
	RangeLast12Months RangeKey = "last_12_months"
)

var (
	ErrInvalidRangeKey = errors.New("invalid range key")
	ErrInvalidTimezone = errors.New("invalid timezone")
)

// RangeDefinition is the shipped configuration for a range key. The
// ExpectedBuckets field is advisory: the actual bucket count is always
// derived by walking the resolved window.
type RangeDefinition struct {
	Key             RangeKey
	Label           string
	Granularity     Granularity
	ExpectedBuckets int
}

var rangeDefinitions = map[RangeKey]RangeDefinition{
	RangeLastHour:     {Key: RangeLastHour, Label: "Last hour", Granularity: GranularityMinute, ExpectedBuckets: 60},
	RangeLast24Hours:  {Key: RangeLast24Hours, Label: "Last 24 hours", Granularity: GranularityHour, ExpectedBuckets: 24},
	RangeLast7Days:    {Key: RangeLast7Days, Label: "Last 7 days", Granularity: GranularityDay, ExpectedBuckets: 7},
	RangeLast30Days:   {Key: RangeLast30Days, Label: "Last 30 days", Granularity: GranularityDay, ExpectedBuckets: 30},
	RangeLast6Months:  {Key: RangeLast6Months, Label: "Last 6 months", Granularity: GranularityWeek, ExpectedBuckets: 26},
	RangeLast12Months: {Key: RangeLast12Months, Label: "Last 12 months", Granularity: GranularityMonth, ExpectedBuckets: 12},
}

// Definition returns the shipped configuration for a range key.
func Definition(key RangeKey) (RangeDefinition, error) {
	def, ok := rangeDefinitions[key]
	if !ok {
		return RangeDefinition{}, fmt.Errorf("%w: %q", ErrInvalidRangeKey, key)
	}
	return def, nil
}

// Window is a closed-inclusive period between two instants.
type Window struct {
	From time.Time
	To   time.Time
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.To.Sub(w.From)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// Resolution is the output of resolving a range key: the current window,
// the immediately preceding window of equal duration, and the granularity
// that bucket generation must use.
type Resolution struct {
	Current     Window
	Previous    Window
	Granularity Granularity
	Location    *time.Location
}

// TimeProvider supplies the current time; injectable for deterministic tests.
type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// Resolver turns (rangeKey, timezone) pairs into Resolutions.
type Resolver struct {
	timeProvider TimeProvider
}

func NewResolver(timeProvider ...TimeProvider) *Resolver {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	return &Resolver{timeProvider: provider}
}

// Resolve validates the range key and timezone and computes the current
// and previous windows. An unresolvable timezone fails the call; there is
// no silent UTC fallback.
func (r *Resolver) Resolve(key RangeKey, timezone string) (*Resolution, error) {
	def, err := Definition(key)
	if err != nil {
		return nil, err
	}

	if timezone == "" {
		return nil, fmt.Errorf("%w: empty timezone", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, timezone, err)
	}

	now := r.timeProvider.Now(loc)
	current := currentWindow(def, now, loc)

	// The previous window is contiguous and non-overlapping: it ends one
	// tick before the current window starts and spans the same duration.
	duration := current.Duration()
	prevTo := current.From.Add(-time.Nanosecond)
	previous := Window{From: prevTo.Add(-duration), To: prevTo}

	return &Resolution{
		Current:     current,
		Previous:    previous,
		Granularity: def.Granularity,
		Location:    loc,
	}, nil
}

// currentWindow aligns the window to granularity-unit boundaries so that
// walking it yields exactly the advisory bucket count. Day and coarser
// granularities floor the start to 00:00:00 and ceil the end to
// 23:59:59.999999999, making day-level comparisons stable regardless of
// the time of day the query runs.
func currentWindow(def RangeDefinition, now time.Time, loc *time.Location) Window {
	switch def.Key {
	case RangeLastHour:
		minute := now.Truncate(time.Minute)
		return Window{
			From: minute.Add(-59 * time.Minute),
			To:   minute.Add(time.Minute - time.Nanosecond),
		}
	case RangeLast24Hours:
		hour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, loc)
		return Window{
			From: hour.Add(-23 * time.Hour),
			To:   hour.Add(time.Hour - time.Nanosecond),
		}
	case RangeLast7Days:
		return Window{
			From: startOfDay(now, loc).AddDate(0, 0, -6),
			To:   endOfDay(now, loc),
		}
	case RangeLast30Days:
		return Window{
			From: startOfDay(now, loc).AddDate(0, 0, -29),
			To:   endOfDay(now, loc),
		}
	case RangeLast6Months:
		// 26 week-wide buckets anchored on today, not on Monday boundaries.
		return Window{
			From: startOfDay(now, loc).AddDate(0, 0, -181),
			To:   endOfDay(now, loc),
		}
	case RangeLast12Months:
		return Window{
			From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -11, 0),
			To:   endOfDay(now, loc),
		}
	}
	// Unreachable: Definition already rejected unknown keys.
	return Window{From: now, To: now}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	return startOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
