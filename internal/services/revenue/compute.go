package revenue

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelo-hq/revenue-console/internal/currency"
	"github.com/avelo-hq/revenue-console/internal/store"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

var (
	ErrInvalidRange  = timeutil.ErrInvalidRange
	ErrInvalidMetric = errors.New("invalid metric")
)

// Metric selects which recurring-revenue series populates the history chart.
// It never changes any other computed value.
type Metric string

const (
	MetricMRR Metric = "mrr"
	MetricARR Metric = "arr"
)

// ParseMetric normalizes a raw query value, defaulting to MRR.
func ParseMetric(raw string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MetricMRR:
		return MetricMRR, nil
	case MetricARR:
		return MetricARR, nil
	}
	return "", ErrInvalidMetric
}

// Snapshot is the full revenue payload consumed verbatim by the dashboard.
// Every numeric field is present even when zero; nil is reserved for history
// buckets that have not yet elapsed.
type Snapshot struct {
	Period            string         `json:"period"`
	Year              int            `json:"year"`
	Metric            Metric         `json:"metric"`
	Currency          string         `json:"currency"`
	RealMRR           float64        `json:"realMRR"`
	RealARR           float64        `json:"realARR"`
	TotalRevenue      float64        `json:"totalRevenue"`
	ChurnRate         float64        `json:"churnRate"`
	ConversionRate    float64        `json:"conversionRate"`
	PlanDistribution  []PlanRevenue  `json:"planDistribution"`
	CreditRevenue     float64        `json:"creditRevenue"`
	CreditPackDetails []PackRevenue  `json:"creditPackDetails"`
	RevenueHistory    []HistoryPoint `json:"revenueHistory"`
	AvailableYears    []int          `json:"availableYears"`
}

// PlanRevenue is the per-plan slice of the distribution. Count spans both
// billing periods; the revenue fields stay split by cadence.
type PlanRevenue struct {
	PlanID  string  `json:"planId"`
	Name    string  `json:"name"`
	Tier    int32   `json:"tier"`
	Count   int64   `json:"count"`
	RealMRR float64 `json:"realMRR"`
	RealARR float64 `json:"realARR"`
}

// HistoryPoint is one chart bucket. Value is nil only when the bucket has
// not elapsed yet; an elapsed bucket with no revenue reports 0.
type HistoryPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// Inputs is the read-only snapshot Compute aggregates over. Everything is
// fetched up front so the computation is deterministic and lock-free.
type Inputs struct {
	Plans         []store.Plan
	Subscriptions []store.Subscription
	CreditSales   []store.CreditPackSale
	Buckets       []timeutil.Bucket
	Reference     time.Time
	TotalUsers    int64
	Metric        Metric
	LaunchYear    int
	Currency      string
}

// Compute reconciles subscription state and credit-pack sales into the
// revenue snapshot. Real MRR covers only monthly-billed subscriptions at
// their monthly price, real ARR only yearly-billed ones at their yearly
// price; the total is their literal sum, never a period-normalized blend.
func Compute(in Inputs) Snapshot {
	plansByID := make(map[uuid.UUID]store.Plan, len(in.Plans))
	for _, p := range in.Plans {
		plansByID[p.ID] = p
	}

	now := in.Reference
	realMRR := decimal.Zero
	realARR := decimal.Zero
	paidUsers := make(map[uuid.UUID]struct{})

	type planAccum struct {
		count int64
		mrr   decimal.Decimal
		arr   decimal.Decimal
	}
	perPlan := make(map[uuid.UUID]*planAccum, len(in.Plans))
	for _, p := range in.Plans {
		perPlan[p.ID] = &planAccum{mrr: decimal.Zero, arr: decimal.Zero}
	}

	for _, sub := range in.Subscriptions {
		if sub.Status != store.SubscriptionActive || !sub.ActiveAt(now) {
			continue
		}
		plan, ok := plansByID[sub.PlanID]
		if !ok {
			continue
		}
		accum := perPlan[plan.ID]
		accum.count++
		switch sub.BillingPeriod {
		case store.BillingMonthly:
			price := currency.FromCents(plan.PriceMonthlyCents)
			realMRR = realMRR.Add(price)
			accum.mrr = accum.mrr.Add(price)
		case store.BillingYearly:
			price := currency.FromCents(plan.PriceYearlyCents)
			realARR = realARR.Add(price)
			accum.arr = accum.arr.Add(price)
		}
		if !plan.IsFree {
			paidUsers[sub.UserID] = struct{}{}
		}
	}

	distribution := make([]PlanRevenue, 0, len(in.Plans))
	for _, p := range in.Plans {
		accum := perPlan[p.ID]
		distribution = append(distribution, PlanRevenue{
			PlanID:  p.ID.String(),
			Name:    p.Name,
			Tier:    p.Tier,
			Count:   accum.count,
			RealMRR: currency.ToFloat(accum.mrr),
			RealARR: currency.ToFloat(accum.arr),
		})
	}

	start, end := timeutil.Span(in.Buckets)
	credits := AggregateCreditPacks(in.CreditSales)

	return Snapshot{
		Metric:            in.Metric,
		Currency:          in.Currency,
		RealMRR:           currency.ToFloat(realMRR),
		RealARR:           currency.ToFloat(realARR),
		TotalRevenue:      currency.ToFloat(realMRR.Add(realARR)),
		ChurnRate:         churnRate(in.Subscriptions, start, end),
		ConversionRate:    ratePercent(int64(len(paidUsers)), in.TotalUsers),
		PlanDistribution:  distribution,
		CreditRevenue:     currency.ToFloat(credits.TotalRevenue),
		CreditPackDetails: credits.ByPack,
		RevenueHistory:    historySeries(in.Buckets, in.Subscriptions, plansByID, in.Metric, now),
		AvailableYears:    timeutil.AvailableYears(in.LaunchYear, now),
	}
}

// churnRate is the percentage of subscriptions active at the window start
// that were canceled inside the window. Zero denominator short-circuits to 0.
func churnRate(subs []store.Subscription, start, end time.Time) float64 {
	var activeAtStart, canceledInPeriod int64
	for _, sub := range subs {
		if sub.ActiveAt(start) {
			activeAtStart++
		}
		if sub.CanceledAt != nil && !sub.CanceledAt.Before(start) && sub.CanceledAt.Before(end) {
			canceledInPeriod++
		}
	}
	return ratePercent(canceledInPeriod, activeAtStart)
}

// historySeries computes one recurring-revenue value per bucket. Buckets
// that have not elapsed stay nil so the chart can distinguish "hasn't
// happened" from "zero revenue".
func historySeries(buckets []timeutil.Bucket, subs []store.Subscription, plans map[uuid.UUID]store.Plan, metric Metric, ref time.Time) []HistoryPoint {
	points := make([]HistoryPoint, 0, len(buckets))
	for _, bucket := range buckets {
		point := HistoryPoint{Label: bucket.Label}
		if bucket.Elapsed(ref) {
			total := decimal.Zero
			for _, sub := range subs {
				if sub.StartedAt.After(bucket.EndAt) {
					continue
				}
				if sub.CanceledAt != nil && !sub.CanceledAt.After(bucket.EndAt) {
					continue
				}
				plan, ok := plans[sub.PlanID]
				if !ok {
					continue
				}
				switch {
				case metric == MetricMRR && sub.BillingPeriod == store.BillingMonthly:
					total = total.Add(currency.FromCents(plan.PriceMonthlyCents))
				case metric == MetricARR && sub.BillingPeriod == store.BillingYearly:
					total = total.Add(currency.FromCents(plan.PriceYearlyCents))
				}
			}
			value := currency.ToFloat(total)
			point.Value = &value
		}
		points = append(points, point)
	}
	return points
}

// ratePercent converts numerator/denominator into a percentage clamped to
// [0, 100], returning 0 on an empty denominator.
func ratePercent(numerator, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(numerator).
		Div(decimal.NewFromInt(denominator)).
		Mul(decimal.NewFromInt(100))
	value := rate.Round(2).InexactFloat64()
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
