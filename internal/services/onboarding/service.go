package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelo-hq/revenue-console/internal/store"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

// SignupPoint is one chart bucket of new signups. Count is nil for buckets
// that have not elapsed yet.
type SignupPoint struct {
	Label string `json:"label"`
	Count *int64 `json:"count"`
}

// Analytics is the onboarding funnel payload.
type Analytics struct {
	Period              string        `json:"period"`
	Year                int           `json:"year"`
	TotalUsers          int64         `json:"totalUsers"`
	SignupsInPeriod     int64         `json:"signupsInPeriod"`
	CompletedOnboarding int64         `json:"completedOnboarding"`
	CompletionRate      float64       `json:"completionRate"`
	PaidConversionRate  float64       `json:"paidConversionRate"`
	SignupHistory       []SignupPoint `json:"signupHistory"`
	AvailableYears      []int         `json:"availableYears"`
}

// Service aggregates the signup and onboarding-completion funnel.
type Service struct {
	store      *store.Store
	launchYear int
	timezone   *time.Location
	now        func() time.Time
}

func NewService(st *store.Store, launchYear int, timezone *time.Location) *Service {
	return &Service{
		store:      st,
		launchYear: launchYear,
		timezone:   timeutil.EnsureLocation(timezone),
		now:        time.Now,
	}
}

// Params selects the reporting window.
type Params struct {
	Period string
	Year   int
}

// Snapshot computes the funnel for one request.
func (s *Service) Snapshot(ctx context.Context, params Params) (Analytics, error) {
	if s == nil || s.store == nil {
		return Analytics{}, errors.New("onboarding service not initialized")
	}

	ref := s.now().In(s.timezone)
	period, err := timeutil.ParsePeriod(params.Period)
	if err != nil {
		return Analytics{}, err
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
		return Analytics{}, err
	}
	start, end := timeutil.Span(buckets)

	totalUsers, err := s.store.CountUsers(ctx)
	if err != nil {
		return Analytics{}, err
	}
	signups, err := s.store.ListSignups(ctx, start, end)
	if err != nil {
		return Analytics{}, err
	}
	completed, err := s.store.CountCompletedOnboarding(ctx)
	if err != nil {
		return Analytics{}, err
	}
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return Analytics{}, err
	}
	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return Analytics{}, err
	}

	analytics := Compute(Inputs{
		Signups:       signups,
		Subscriptions: subs,
		Plans:         plans,
		Buckets:       buckets,
		Reference:     ref,
		TotalUsers:    totalUsers,
		Completed:     completed,
		LaunchYear:    s.launchYear,
	})
	analytics.Period = string(period)
	analytics.Year = year
	return analytics, nil
}

// Inputs is the read-only snapshot Compute aggregates over.
type Inputs struct {
	Signups       []store.User
	Subscriptions []store.Subscription
	Plans         []store.Plan
	Buckets       []timeutil.Bucket
	Reference     time.Time
	TotalUsers    int64
	Completed     int64
	LaunchYear    int
}

// Compute buckets signups and derives the funnel rates. All rates guard
// their denominators and stay inside [0, 100].
func Compute(in Inputs) Analytics {
	freePlans := make(map[uuid.UUID]bool, len(in.Plans))
	for _, p := range in.Plans {
		freePlans[p.ID] = p.IsFree
	}
	paidUsers := make(map[uuid.UUID]struct{})
	for _, sub := range in.Subscriptions {
		if sub.Status != store.SubscriptionActive || !sub.ActiveAt(in.Reference) {
			continue
		}
		if freePlans[sub.PlanID] {
			continue
		}
		paidUsers[sub.UserID] = struct{}{}
	}

	history := make([]SignupPoint, 0, len(in.Buckets))
	for _, bucket := range in.Buckets {
		point := SignupPoint{Label: bucket.Label}
		if bucket.Elapsed(in.Reference) {
			var count int64
			for _, user := range in.Signups {
				if !user.CreatedAt.Before(bucket.StartAt) && user.CreatedAt.Before(bucket.EndAt) {
					count++
				}
			}
			point.Count = &count
		}
		history = append(history, point)
	}

	return Analytics{
		TotalUsers:          in.TotalUsers,
		SignupsInPeriod:     int64(len(in.Signups)),
		CompletedOnboarding: in.Completed,
		CompletionRate:      ratePercent(in.Completed, in.TotalUsers),
		PaidConversionRate:  ratePercent(int64(len(paidUsers)), in.TotalUsers),
		SignupHistory:       history,
		AvailableYears:      timeutil.AvailableYears(in.LaunchYear, in.Reference),
	}
}

func ratePercent(numerator, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	value := decimal.NewFromInt(numerator).
		Div(decimal.NewFromInt(denominator)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
