package revenue

import (
	"context"
	"errors"
	"time"

	"github.com/avelo-hq/revenue-console/internal/store"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

// Service exposes the revenue aggregation consumed by the admin dashboard.
// It is request-scoped and stateless: each call fetches a fresh read-only
// snapshot and runs the pure computation over it.
type Service struct {
	store           *store.Store
	launchYear      int
	billingCurrency string
	timezone        *time.Location
	now             func() time.Time
}

// NewService wires the aggregator to its data source and reporting settings.
func NewService(st *store.Store, launchYear int, billingCurrency string, timezone *time.Location) *Service {
	return &Service{
		store:           st,
		launchYear:      launchYear,
		billingCurrency: billingCurrency,
		timezone:        timeutil.EnsureLocation(timezone),
		now:             time.Now,
	}
}

// Params selects the reporting window and the history series.
type Params struct {
	Period string
	Year   int
	Metric string
}

// Snapshot computes the revenue payload for one request.
func (s *Service) Snapshot(ctx context.Context, params Params) (Snapshot, error) {
	if s == nil || s.store == nil {
		return Snapshot{}, errors.New("revenue service not initialized")
	}

	ref := s.now().In(s.timezone)
	period, err := timeutil.ParsePeriod(params.Period)
	if err != nil {
		return Snapshot{}, err
	}
	metric, err := ParseMetric(params.Metric)
	if err != nil {
		return Snapshot{}, err
	}
	year := params.Year
	if year == 0 {
		year = ref.Year()
	}

	buckets, err := timeutil.Buckets(timeutil.BucketSpec{
		Period:     period,
		Year:       year,
		Reference:  ref,
		LaunchYear: s.launchYear,
	})
	if err != nil {
		return Snapshot{}, err
	}
	start, end := timeutil.Span(buckets)

	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	sales, err := s.store.ListCreditPackSales(ctx, start, end)
	if err != nil {
		return Snapshot{}, err
	}
	totalUsers, err := s.store.CountUsers(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Compute(Inputs{
		Plans:         plans,
		Subscriptions: subs,
		CreditSales:   sales,
		Buckets:       buckets,
		Reference:     ref,
		TotalUsers:    totalUsers,
		Metric:        metric,
		LaunchYear:    s.launchYear,
		Currency:      s.billingCurrency,
	})
	snap.Period = string(period)
	snap.Year = year
	return snap, nil
}
