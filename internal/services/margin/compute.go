package margin

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelo-hq/revenue-console/internal/currency"
	"github.com/avelo-hq/revenue-console/internal/store"
)

// Severity bands for marginPercent. The thresholds are part of the output
// contract: alerting consumers rely on the same cut points as the dashboard.
const (
	BandCritical = "critical"
	BandWarning  = "warning"
	BandHealthy  = "healthy"
)

// Reasons a plan's cost figures are unavailable. "No data" is never reported
// as zero cost or a 100% margin.
const (
	ReasonNoActiveSubscribers = "no_active_subscribers"
	ReasonMissingModelPricing = "missing_model_pricing"
)

// Band classifies a non-null margin percentage: <50 critical, [50,70)
// warning, >=70 healthy.
func Band(marginPercent float64) string {
	switch {
	case marginPercent < 50:
		return BandCritical
	case marginPercent < 70:
		return BandWarning
	default:
		return BandHealthy
	}
}

// PlanCost is one plan's row in the cost report. Cost and margin fields are
// pointers: nil means unavailable, with UnavailableReason set; an elapsed
// computation that genuinely produced zero reports a non-nil 0.
type PlanCost struct {
	PlanID            string   `json:"planId"`
	Plan              string   `json:"plan"`
	Tier              int32    `json:"tier"`
	SubscriberCount   int64    `json:"subscriberCount"`
	CostMinUsd        *float64 `json:"costMinUsd"`
	CostAvgUsd        *float64 `json:"costAvgUsd"`
	CostMaxUsd        *float64 `json:"costMaxUsd"`
	CostAvg           *float64 `json:"costAvg"`
	CostCurrency      string   `json:"costCurrency,omitempty"`
	GrossMargin       *float64 `json:"grossMargin"`
	MarginPercent     *float64 `json:"marginPercent"`
	Band              string   `json:"band,omitempty"`
	UnavailableReason string   `json:"unavailableReason,omitempty"`
}

// Summary is the full plan-costs payload, including the exchange-rate
// snapshot every row was converted with.
type Summary struct {
	Costs        []PlanCost    `json:"costs"`
	ExchangeRate currency.Rate `json:"exchangeRate"`
	WindowStart  time.Time     `json:"windowStart"`
	WindowEnd    time.Time     `json:"windowEnd"`
}

// Inputs is the point-in-time snapshot Compute allocates costs over.
// UserCosts holds each user's summed usage cost for the window; UnpricedUsers
// lists users whose telemetry references a model with no active pricing row.
type Inputs struct {
	Plans         []store.Plan
	Subscriptions []store.Subscription
	UserCosts     []store.UserCost
	UnpricedUsers []uuid.UUID
	Rate          currency.Rate
	Reference     time.Time
}

// Compute joins each plan's active subscriber set against per-user usage
// cost totals. Costs are summed per user first, then min/avg/max is taken
// across users, so one heavy user cannot skew the average. Churned users'
// historical usage is excluded: this is a snapshot of the current cohort.
// A model missing an active pricing row poisons only the plans whose
// subscribers used it, never the whole report.
func Compute(in Inputs) Summary {
	costByUser := make(map[uuid.UUID]int64, len(in.UserCosts))
	for _, uc := range in.UserCosts {
		costByUser[uc.UserID] = uc.CostUsdMicros
	}
	unpriced := make(map[uuid.UUID]struct{}, len(in.UnpricedUsers))
	for _, id := range in.UnpricedUsers {
		unpriced[id] = struct{}{}
	}

	subscribers := make(map[uuid.UUID][]uuid.UUID, len(in.Plans))
	for _, sub := range in.Subscriptions {
		if sub.Status != store.SubscriptionActive || !sub.ActiveAt(in.Reference) {
			continue
		}
		subscribers[sub.PlanID] = append(subscribers[sub.PlanID], sub.UserID)
	}

	costs := make([]PlanCost, 0, len(in.Plans))
	for _, plan := range in.Plans {
		costs = append(costs, planCost(plan, subscribers[plan.ID], costByUser, unpriced, in.Rate))
	}
	return Summary{Costs: costs, ExchangeRate: in.Rate}
}

func planCost(plan store.Plan, users []uuid.UUID, costByUser map[uuid.UUID]int64, unpriced map[uuid.UUID]struct{}, rate currency.Rate) PlanCost {
	row := PlanCost{
		PlanID:          plan.ID.String(),
		Plan:            plan.Name,
		Tier:            plan.Tier,
		SubscriberCount: int64(len(users)),
	}
	if len(users) == 0 {
		row.UnavailableReason = ReasonNoActiveSubscribers
		return row
	}

	var minMicros, maxMicros, sumMicros int64
	for i, userID := range users {
		if _, bad := unpriced[userID]; bad {
			row.UnavailableReason = ReasonMissingModelPricing
			return row
		}
		// A subscriber with no telemetry in the window has a real cost
		// of zero and counts toward the distribution.
		micros := costByUser[userID]
		if i == 0 || micros < minMicros {
			minMicros = micros
		}
		if micros > maxMicros {
			maxMicros = micros
		}
		sumMicros += micros
	}

	avgUsd := currency.FromMicros(sumMicros).
		Div(decimal.NewFromInt(int64(len(users)))).
		Round(2)
	row.CostMinUsd = floatPtr(currency.FromMicros(minMicros))
	row.CostMaxUsd = floatPtr(currency.FromMicros(maxMicros))
	row.CostAvgUsd = floatPtr(avgUsd)

	converted := currency.Normalize(avgUsd, rate)
	row.CostAvg = floatPtr(converted.Value)
	row.CostCurrency = converted.Currency

	revenue := currency.FromCents(plan.PriceMonthlyCents)
	if revenue.IsZero() {
		// Free plan: a margin over zero revenue is meaningless, not 100%.
		return row
	}
	gross := revenue.Sub(converted.Value)
	row.GrossMargin = floatPtr(gross)
	percent := gross.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
	row.MarginPercent = floatPtr(percent)
	row.Band = Band(percent.InexactFloat64())
	return row
}

func floatPtr(d decimal.Decimal) *float64 {
	v := currency.ToFloat(d)
	return &v
}
