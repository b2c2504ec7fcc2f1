package revenue

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avelo-hq/revenue-console/internal/store"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

var testRef = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func testBuckets(t *testing.T, period timeutil.Period, year int) []timeutil.Bucket {
	t.Helper()
	buckets, err := timeutil.Buckets(timeutil.BucketSpec{
		Period:     period,
		Year:       year,
		Reference:  testRef,
		LaunchYear: 2023,
	})
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}
	return buckets
}

func paidPlan(tier int32, name string, monthlyCents, yearlyCents int64) store.Plan {
	return store.Plan{
		ID:                uuid.New(),
		Tier:              tier,
		Name:              name,
		PriceMonthlyCents: monthlyCents,
		PriceYearlyCents:  yearlyCents,
		Currency:          "EUR",
	}
}

func activeSub(userID, planID uuid.UUID, period store.BillingPeriod, startedAt time.Time) store.Subscription {
	return store.Subscription{
		ID:            uuid.New(),
		UserID:        userID,
		PlanID:        planID,
		BillingPeriod: period,
		Status:        store.SubscriptionActive,
		StartedAt:     startedAt,
	}
}

func canceledSub(userID, planID uuid.UUID, period store.BillingPeriod, startedAt, canceledAt time.Time) store.Subscription {
	return store.Subscription{
		ID:            uuid.New(),
		UserID:        userID,
		PlanID:        planID,
		BillingPeriod: period,
		Status:        store.SubscriptionCanceled,
		StartedAt:     startedAt,
		CanceledAt:    &canceledAt,
	}
}

func TestComputeRealMRRKeepsCadencesSeparate(t *testing.T) {
	pro := paidPlan(1, "Pro", 999, 9900)
	started := testRef.AddDate(0, -3, 0)

	subs := []store.Subscription{
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, started),
	}

	snap := Compute(Inputs{
		Plans:         []store.Plan{pro},
		Subscriptions: subs,
		Buckets:       testBuckets(t, timeutil.PeriodTwelveMonths, 2025),
		Reference:     testRef,
		TotalUsers:    3,
		Metric:        MetricMRR,
		LaunchYear:    2023,
		Currency:      "EUR",
	})

	if snap.RealMRR != 29.97 {
		t.Fatalf("realMRR: want 29.97, got %v", snap.RealMRR)
	}
	if snap.RealARR != 0 {
		t.Fatalf("realARR: want 0, got %v", snap.RealARR)
	}
	if snap.TotalRevenue != 29.97 {
		t.Fatalf("totalRevenue: want 29.97, got %v", snap.TotalRevenue)
	}
}

func TestComputeTotalIsLiteralSumNotBlended(t *testing.T) {
	pro := paidPlan(1, "Pro", 999, 9900)
	started := testRef.AddDate(0, -6, 0)

	subs := []store.Subscription{
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingYearly, started),
	}

	snap := Compute(Inputs{
		Plans:         []store.Plan{pro},
		Subscriptions: subs,
		Buckets:       testBuckets(t, timeutil.PeriodTwelveMonths, 2025),
		Reference:     testRef,
		TotalUsers:    3,
		Metric:        MetricMRR,
		LaunchYear:    2023,
	})

	if snap.RealMRR != 19.98 {
		t.Fatalf("realMRR: want 19.98, got %v", snap.RealMRR)
	}
	if snap.RealARR != 99.00 {
		t.Fatalf("realARR: want 99.00, got %v", snap.RealARR)
	}
	// 19.98 + 99.00, never 99/12 folded into a monthly equivalent.
	if snap.TotalRevenue != 118.98 {
		t.Fatalf("totalRevenue: want 118.98, got %v", snap.TotalRevenue)
	}
}

func TestComputePlanDistributionCountInvariant(t *testing.T) {
	starter := paidPlan(1, "Starter", 499, 4900)
	pro := paidPlan(2, "Pro", 999, 9900)
	started := testRef.AddDate(0, -2, 0)

	subs := []store.Subscription{
		activeSub(uuid.New(), starter.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingYearly, started),
		canceledSub(uuid.New(), pro.ID, store.BillingMonthly, started, testRef.AddDate(0, -1, 0)),
	}

	snap := Compute(Inputs{
		Plans:         []store.Plan{starter, pro},
		Subscriptions: subs,
		Buckets:       testBuckets(t, timeutil.PeriodTwelveMonths, 2025),
		Reference:     testRef,
		TotalUsers:    4,
		Metric:        MetricMRR,
		LaunchYear:    2023,
	})

	var total int64
	for _, plan := range snap.PlanDistribution {
		total += plan.Count
	}
	if total != 3 {
		t.Fatalf("distribution counts should equal active subscriptions: want 3, got %d", total)
	}
	for _, plan := range snap.PlanDistribution {
		if plan.Name == "Pro" {
			if plan.Count != 2 {
				t.Fatalf("Pro count: want 2, got %d", plan.Count)
			}
			if plan.RealMRR != 9.99 || plan.RealARR != 99.00 {
				t.Fatalf("Pro revenue split: got mrr=%v arr=%v", plan.RealMRR, plan.RealARR)
			}
		}
	}
}

func TestComputeChurnRate(t *testing.T) {
	pro := paidPlan(1, "Pro", 999, 9900)
	windowStart := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	before := windowStart.AddDate(0, -4, 0)

	subs := []store.Subscription{
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, before),
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, before),
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, before),
		canceledSub(uuid.New(), pro.ID, store.BillingMonthly, before, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)),
	}

	snap := Compute(Inputs{
		Plans:         []store.Plan{pro},
		Subscriptions: subs,
		Buckets:       testBuckets(t, timeutil.PeriodTwelveMonths, 2025),
		Reference:     testRef,
		TotalUsers:    4,
		Metric:        MetricMRR,
		LaunchYear:    2023,
	})

	// 4 active at window start, 1 canceled inside the window.
	if snap.ChurnRate != 25 {
		t.Fatalf("churnRate: want 25, got %v", snap.ChurnRate)
	}
}

func TestComputeRatesGuardZeroDenominators(t *testing.T) {
	snap := Compute(Inputs{
		Plans:      []store.Plan{paidPlan(1, "Pro", 999, 9900)},
		Buckets:    testBuckets(t, timeutil.PeriodTwelveMonths, 2025),
		Reference:  testRef,
		TotalUsers: 0,
		Metric:     MetricMRR,
		LaunchYear: 2023,
	})
	if snap.ChurnRate != 0 {
		t.Fatalf("churnRate on empty data: want 0, got %v", snap.ChurnRate)
	}
	if snap.ConversionRate != 0 {
		t.Fatalf("conversionRate on zero users: want 0, got %v", snap.ConversionRate)
	}
}

func TestComputeConversionRateIgnoresFreePlans(t *testing.T) {
	free := store.Plan{ID: uuid.New(), Tier: 0, Name: "Free", IsFree: true}
	pro := paidPlan(1, "Pro", 999, 9900)
	started := testRef.AddDate(0, -1, 0)

	subs := []store.Subscription{
		activeSub(uuid.New(), free.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingYearly, started),
	}

	snap := Compute(Inputs{
		Plans:         []store.Plan{free, pro},
		Subscriptions: subs,
		Buckets:       testBuckets(t, timeutil.PeriodTwelveMonths, 2025),
		Reference:     testRef,
		TotalUsers:    8,
		Metric:        MetricMRR,
		LaunchYear:    2023,
	})

	// 2 paid users out of 8.
	if snap.ConversionRate != 25 {
		t.Fatalf("conversionRate: want 25, got %v", snap.ConversionRate)
	}
}

func TestComputeHistoryDistinguishesFutureFromZero(t *testing.T) {
	pro := paidPlan(1, "Pro", 999, 9900)
	subs := []store.Subscription{
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}

	snap := Compute(Inputs{
		Plans:         []store.Plan{pro},
		Subscriptions: subs,
		Buckets:       testBuckets(t, timeutil.PeriodTwelveMonths, 2025),
		Reference:     testRef,
		TotalUsers:    1,
		Metric:        MetricMRR,
		LaunchYear:    2023,
	})

	if len(snap.RevenueHistory) != 12 {
		t.Fatalf("expected 12 history points, got %d", len(snap.RevenueHistory))
	}
	jan := snap.RevenueHistory[0]
	if jan.Value == nil || *jan.Value != 0 {
		t.Fatalf("January elapsed with no revenue must be 0, got %v", jan.Value)
	}
	mar := snap.RevenueHistory[2]
	if mar.Value == nil || *mar.Value != 9.99 {
		t.Fatalf("March: want 9.99, got %v", mar.Value)
	}
	dec := snap.RevenueHistory[11]
	if dec.Value != nil {
		t.Fatalf("December has not elapsed in June, value must be nil, got %v", *dec.Value)
	}
}

func TestComputeMetricSelectsSeriesOnly(t *testing.T) {
	pro := paidPlan(1, "Pro", 999, 9900)
	started := testRef.AddDate(0, -4, 0)
	subs := []store.Subscription{
		activeSub(uuid.New(), pro.ID, store.BillingMonthly, started),
		activeSub(uuid.New(), pro.ID, store.BillingYearly, started),
	}
	base := Inputs{
		Plans:         []store.Plan{pro},
		Subscriptions: subs,
		Buckets:       testBuckets(t, timeutil.PeriodTwelveMonths, 2025),
		Reference:     testRef,
		TotalUsers:    2,
		LaunchYear:    2023,
	}

	base.Metric = MetricMRR
	mrrSnap := Compute(base)
	base.Metric = MetricARR
	arrSnap := Compute(base)

	if mrrSnap.RealMRR != arrSnap.RealMRR || mrrSnap.TotalRevenue != arrSnap.TotalRevenue || mrrSnap.ChurnRate != arrSnap.ChurnRate {
		t.Fatalf("metric must only change the history series")
	}
	june := 5
	if *mrrSnap.RevenueHistory[june].Value != 9.99 {
		t.Fatalf("mrr series: want 9.99, got %v", *mrrSnap.RevenueHistory[june].Value)
	}
	if *arrSnap.RevenueHistory[june].Value != 99.00 {
		t.Fatalf("arr series: want 99.00, got %v", *arrSnap.RevenueHistory[june].Value)
	}
}

func TestParseMetric(t *testing.T) {
	if m, err := ParseMetric(""); err != nil || m != MetricMRR {
		t.Fatalf("empty metric should default to mrr, got %v %v", m, err)
	}
	if m, err := ParseMetric(" ARR "); err != nil || m != MetricARR {
		t.Fatalf("expected arr, got %v %v", m, err)
	}
	if _, err := ParseMetric("blended"); err == nil {
		t.Fatalf("expected error for unknown metric")
	}
}
