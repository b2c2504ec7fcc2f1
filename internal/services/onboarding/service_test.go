package onboarding

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avelo-hq/revenue-console/internal/store"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

var funnelRef = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func funnelBuckets(t *testing.T) []timeutil.Bucket {
	t.Helper()
	buckets, err := timeutil.Buckets(timeutil.BucketSpec{
		Period:     timeutil.PeriodTwelveMonths,
		Year:       2025,
		Reference:  funnelRef,
		LaunchYear: 2023,
	})
	if err != nil {
		t.Fatalf("buckets: %v", err)
	}
	return buckets
}

func signup(createdAt time.Time) store.User {
	return store.User{ID: uuid.New(), Email: "user@example.com", CreatedAt: createdAt}
}

func TestComputeFunnelRates(t *testing.T) {
	pro := store.Plan{ID: uuid.New(), Tier: 1, Name: "Pro", PriceMonthlyCents: 999}
	free := store.Plan{ID: uuid.New(), Tier: 0, Name: "Free", IsFree: true}
	paidUser := uuid.New()

	analytics := Compute(Inputs{
		Signups: []store.User{
			signup(time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)),
			signup(time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)),
			signup(time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)),
		},
		Subscriptions: []store.Subscription{
			{
				ID:            uuid.New(),
				UserID:        paidUser,
				PlanID:        pro.ID,
				BillingPeriod: store.BillingMonthly,
				Status:        store.SubscriptionActive,
				StartedAt:     funnelRef.AddDate(0, -1, 0),
			},
			{
				ID:            uuid.New(),
				UserID:        uuid.New(),
				PlanID:        free.ID,
				BillingPeriod: store.BillingMonthly,
				Status:        store.SubscriptionActive,
				StartedAt:     funnelRef.AddDate(0, -1, 0),
			},
		},
		Plans:      []store.Plan{free, pro},
		Buckets:    funnelBuckets(t),
		Reference:  funnelRef,
		TotalUsers: 4,
		Completed:  3,
		LaunchYear: 2023,
	})

	if analytics.SignupsInPeriod != 3 {
		t.Fatalf("signupsInPeriod: want 3, got %d", analytics.SignupsInPeriod)
	}
	if analytics.CompletionRate != 75 {
		t.Fatalf("completionRate: want 75, got %v", analytics.CompletionRate)
	}
	// Only the Pro subscriber is paid; the free-plan subscription does not count.
	if analytics.PaidConversionRate != 25 {
		t.Fatalf("paidConversionRate: want 25, got %v", analytics.PaidConversionRate)
	}
}

func TestComputeSignupHistoryBuckets(t *testing.T) {
	analytics := Compute(Inputs{
		Signups: []store.User{
			signup(time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)),
			signup(time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)),
		},
		Buckets:    funnelBuckets(t),
		Reference:  funnelRef,
		TotalUsers: 2,
		LaunchYear: 2023,
	})

	if len(analytics.SignupHistory) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(analytics.SignupHistory))
	}
	feb := analytics.SignupHistory[1]
	if feb.Count == nil || *feb.Count != 2 {
		t.Fatalf("February: want 2, got %v", feb.Count)
	}
	jan := analytics.SignupHistory[0]
	if jan.Count == nil || *jan.Count != 0 {
		t.Fatalf("elapsed empty bucket must be 0, got %v", jan.Count)
	}
	dec := analytics.SignupHistory[11]
	if dec.Count != nil {
		t.Fatalf("future bucket must be nil, got %v", *dec.Count)
	}
}

func TestComputeEmptyDatabase(t *testing.T) {
	analytics := Compute(Inputs{
		Buckets:    funnelBuckets(t),
		Reference:  funnelRef,
		LaunchYear: 2023,
	})
	if analytics.CompletionRate != 0 || analytics.PaidConversionRate != 0 {
		t.Fatalf("rates on zero users must be 0, got %v / %v", analytics.CompletionRate, analytics.PaidConversionRate)
	}
}
