package timeutil

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidRange covers both an unknown period keyword and a year outside
// the reportable range.
var ErrInvalidRange = errors.New("invalid period or year")

// Period is a dashboard reporting granularity.
type Period string

const (
	PeriodWeek         Period = "week"
	PeriodMonth        Period = "month"
	PeriodSixMonths    Period = "6months"
	PeriodTwelveMonths Period = "12months"
)

// ParsePeriod normalizes a raw query value into a Period.
func ParsePeriod(raw string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodSixMonths:
		return PeriodSixMonths, nil
	case PeriodTwelveMonths:
		return PeriodTwelveMonths, nil
	}
	return "", ErrInvalidRange
}

// Bucket is one discrete slice of a reporting range. EndAt is exclusive.
type Bucket struct {
	Label   string
	StartAt time.Time
	EndAt   time.Time
}

// Elapsed reports whether the bucket has started relative to ref. Buckets
// that have not elapsed are emitted for forward display but carry no
// aggregate.
func (b Bucket) Elapsed(ref time.Time) bool {
	return !b.StartAt.After(ref)
}

// BucketSpec describes a bucketed reporting request.
type BucketSpec struct {
	Period     Period
	Year       int
	Reference  time.Time
	LaunchYear int
}

// Buckets maps the request onto an ordered sequence of calendar buckets:
// 7 daily buckets for week, the calendar days of the reference month for
// month, and 6 or 12 monthly buckets anchored on the requested year.
func Buckets(spec BucketSpec) ([]Bucket, error) {
	period, err := ParsePeriod(string(spec.Period))
	if err != nil {
		return nil, err
	}
	ref := spec.Reference
	loc := EnsureLocation(ref.Location())
	if spec.Year < spec.LaunchYear || spec.Year > ref.Year() {
		return nil, ErrInvalidRange
	}

	switch period {
	case PeriodWeek:
		end := TruncateToDay(ref, loc)
		buckets := make([]Bucket, 0, 7)
		for i := 6; i >= 0; i-- {
			day := end.AddDate(0, 0, -i)
			buckets = append(buckets, dayBucket(day))
		}
		return buckets, nil
	case PeriodMonth:
		first := time.Date(spec.Year, ref.Month(), 1, 0, 0, 0, 0, loc)
		next := first.AddDate(0, 1, 0)
		buckets := make([]Bucket, 0, 31)
		for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
			buckets = append(buckets, dayBucket(day))
		}
		return buckets, nil
	case PeriodSixMonths:
		endMonth := 12
		if spec.Year == ref.Year() {
			endMonth = int(ref.Month())
			if endMonth < 6 {
				endMonth = 6
			}
		}
		return monthBuckets(spec.Year, endMonth-5, endMonth, loc), nil
	case PeriodTwelveMonths:
		return monthBuckets(spec.Year, 1, 12, loc), nil
	}
	return nil, ErrInvalidRange
}

// Span returns the overall [start, end) covered by the buckets.
func Span(buckets []Bucket) (time.Time, time.Time) {
	if len(buckets) == 0 {
		return time.Time{}, time.Time{}
	}
	return buckets[0].StartAt, buckets[len(buckets)-1].EndAt
}

func dayBucket(day time.Time) Bucket {
	return Bucket{
		Label:   day.Format("Jan 02"),
		StartAt: day,
		EndAt:   day.AddDate(0, 0, 1),
	}
}

func monthBuckets(year, firstMonth, lastMonth int, loc *time.Location) []Bucket {
	buckets := make([]Bucket, 0, lastMonth-firstMonth+1)
	for m := firstMonth; m <= lastMonth; m++ {
		start := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, loc)
		buckets = append(buckets, Bucket{
			Label:   start.Format("Jan"),
			StartAt: start,
			EndAt:   start.AddDate(0, 1, 0),
		})
	}
	return buckets
}

// EnsureLocation returns UTC when loc is nil.
func EnsureLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// TruncateToDay normalizes the timestamp to midnight in the provided zone.
func TruncateToDay(t time.Time, loc *time.Location) time.Time {
	loc = EnsureLocation(loc)
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// AvailableYears lists the selectable reporting years, launch year first.
func AvailableYears(launchYear int, ref time.Time) []int {
	current := ref.Year()
	if launchYear > current {
		launchYear = current
	}
	years := make([]int, 0, current-launchYear+1)
	for y := launchYear; y <= current; y++ {
		years = append(years, y)
	}
	return years
}
