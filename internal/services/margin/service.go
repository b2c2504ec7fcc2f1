package margin

import (
	"context"
	"errors"
	"time"

	"github.com/avelo-hq/revenue-console/internal/currency"
	"github.com/avelo-hq/revenue-console/internal/store"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

// costWindow is the trailing usage window the per-user cost totals cover.
// Plan prices are monthly, so cost is matched to roughly one billing month.
const costWindow = 30 * 24 * time.Hour

// Service produces the per-plan cost and margin report.
type Service struct {
	store           *store.Store
	billingCurrency string
	timezone        *time.Location
	now             func() time.Time
}

func NewService(st *store.Store, billingCurrency string, timezone *time.Location) *Service {
	return &Service{
		store:           st,
		billingCurrency: billingCurrency,
		timezone:        timeutil.EnsureLocation(timezone),
		now:             time.Now,
	}
}

// PlanCosts joins active subscribers against their trailing-month usage
// cost and converts via the latest exchange-rate snapshot. The snapshot
// rate is applied to all usage regardless of its date: a documented
// approximation, which is why the rate used is echoed in the response.
func (s *Service) PlanCosts(ctx context.Context) (Summary, error) {
	if s == nil || s.store == nil {
		return Summary{}, errors.New("margin service not initialized")
	}

	ref := s.now().In(s.timezone)
	end := ref
	start := end.Add(-costWindow)

	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return Summary{}, err
	}
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return Summary{}, err
	}
	userCosts, err := s.store.SumUsageCostByUser(ctx, start, end)
	if err != nil {
		return Summary{}, err
	}
	unpriced, err := s.store.ListUsersWithUnpricedModels(ctx, start, end)
	if err != nil {
		return Summary{}, err
	}

	var rate currency.Rate
	if s.billingCurrency != currency.USD {
		row, found, err := s.store.LatestExchangeRate(ctx, s.billingCurrency)
		if err != nil {
			return Summary{}, err
		}
		if found {
			rate = currency.RateFromMicros(row.QuoteCurrency, row.RateMicros, row.AsOf)
		}
	}

	summary := Compute(Inputs{
		Plans:         plans,
		Subscriptions: subs,
		UserCosts:     userCosts,
		UnpricedUsers: unpriced,
		Rate:          rate,
		Reference:     ref,
	})
	summary.WindowStart = start
	summary.WindowEnd = end
	return summary, nil
}
