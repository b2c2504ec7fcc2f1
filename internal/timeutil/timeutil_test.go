package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestBucketsWeek(t *testing.T) {
	ref := time.Date(2025, time.March, 12, 14, 30, 0, 0, time.UTC)
	buckets, err := Buckets(BucketSpec{Period: PeriodWeek, Year: 2025, Reference: ref, LaunchYear: 2023})
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	first := buckets[0]
	if !first.StartAt.Equal(time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first bucket start %v", first.StartAt)
	}
	last := buckets[6]
	if !last.EndAt.Equal(time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last bucket end %v", last.EndAt)
	}
	for _, b := range buckets {
		if !b.Elapsed(ref) {
			t.Fatalf("week buckets should all have started, %s has not", b.Label)
		}
	}
}

func TestBucketsMonthUsesCalendarDays(t *testing.T) {
	ref := time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC)
	buckets, err := Buckets(BucketSpec{Period: PeriodMonth, Year: 2024, Reference: ref, LaunchYear: 2023})
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}
	if len(buckets) != 29 {
		t.Fatalf("expected 29 days for Feb 2024, got %d", len(buckets))
	}
	if buckets[0].Elapsed(ref) != true {
		t.Fatalf("Feb 1 should have elapsed")
	}
	if buckets[28].Elapsed(ref) {
		t.Fatalf("Feb 29 should not have elapsed on Feb 10")
	}
}

func TestBucketsTwelveMonthsEmitsFutureMonths(t *testing.T) {
	ref := time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)
	buckets, err := Buckets(BucketSpec{Period: PeriodTwelveMonths, Year: 2025, Reference: ref, LaunchYear: 2023})
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}
	if len(buckets) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(buckets))
	}
	elapsed := 0
	for _, b := range buckets {
		if b.Elapsed(ref) {
			elapsed++
		}
	}
	if elapsed != 4 {
		t.Fatalf("expected Jan-Apr elapsed, got %d buckets", elapsed)
	}
	if buckets[0].Label != "Jan" || buckets[11].Label != "Dec" {
		t.Fatalf("unexpected labels %s..%s", buckets[0].Label, buckets[11].Label)
	}
}

func TestBucketsSixMonths(t *testing.T) {
	tests := []struct {
		name       string
		ref        time.Time
		year       int
		firstMonth time.Month
		lastMonth  time.Month
	}{
		{"late in current year", time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), 2025, time.May, time.October},
		{"early in current year clamps forward", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 2025, time.January, time.June},
		{"past year uses second half", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), 2024, time.July, time.December},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets, err := Buckets(BucketSpec{Period: PeriodSixMonths, Year: tt.year, Reference: tt.ref, LaunchYear: 2023})
			if err != nil {
				t.Fatalf("buckets: %v", err)
			}
			if len(buckets) != 6 {
				t.Fatalf("expected 6 buckets, got %d", len(buckets))
			}
			if got := buckets[0].StartAt.Month(); got != tt.firstMonth {
				t.Fatalf("first month: want %s, got %s", tt.firstMonth, got)
			}
			if got := buckets[5].StartAt.Month(); got != tt.lastMonth {
				t.Fatalf("last month: want %s, got %s", tt.lastMonth, got)
			}
		})
	}
}

func TestBucketsInvalidYear(t *testing.T) {
	ref := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	for _, year := range []int{2022, 2026} {
		_, err := Buckets(BucketSpec{Period: PeriodTwelveMonths, Year: year, Reference: ref, LaunchYear: 2023})
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("year %d: expected ErrInvalidRange, got %v", year, err)
		}
	}
}

func TestBucketsInvalidPeriod(t *testing.T) {
	ref := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if _, err := Buckets(BucketSpec{Period: "quarter", Year: 2025, Reference: ref, LaunchYear: 2023}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSpan(t *testing.T) {
	ref := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	buckets, err := Buckets(BucketSpec{Period: PeriodTwelveMonths, Year: 2025, Reference: ref, LaunchYear: 2023})
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}
	start, end := Span(buckets)
	if !start.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected span start %v", start)
	}
	if !end.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected span end %v", end)
	}
}

func TestAvailableYears(t *testing.T) {
	ref := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	years := AvailableYears(2023, ref)
	want := []int{2023, 2024, 2025}
	if len(years) != len(want) {
		t.Fatalf("expected %d years, got %d", len(want), len(years))
	}
	for i, y := range want {
		if years[i] != y {
			t.Fatalf("index %d: want %d, got %d", i, y, years[i])
		}
	}
}
