package openaiusage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avelo-hq/revenue-console/internal/chartmath"
	"github.com/avelo-hq/revenue-console/internal/store"
	"github.com/avelo-hq/revenue-console/internal/timeutil"
)

// LeaderStore holds one session's last shown leader. A missing session key
// means no leader is held yet.
type LeaderStore interface {
	Get(ctx context.Context, session string) (chartmath.Leader, bool, error)
	Set(ctx context.Context, session string, leader chartmath.Leader) error
}

// Service aggregates model-usage telemetry for the analytics dashboard.
type Service struct {
	store      *store.Store
	leaders    LeaderStore
	tolerance  float64
	topLimit   int
	launchYear int
	timezone   *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(st *store.Store, leaders LeaderStore, tolerance float64, topLimit, launchYear int, timezone *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if topLimit <= 0 {
		topLimit = 5
	}
	return &Service{
		store:      st,
		leaders:    leaders,
		tolerance:  tolerance,
		topLimit:   topLimit,
		launchYear: launchYear,
		timezone:   timeutil.EnsureLocation(timezone),
		logger:     logger,
		now:        time.Now,
	}
}

// Params selects the reporting window and the dashboard session whose held
// top-feature leader should stabilize the summary card.
type Params struct {
	Period  string
	Session string
}

// Snapshot computes the usage report for one request. All table rows come
// back sorted by descending cost straight from the aggregation queries.
func (s *Service) Snapshot(ctx context.Context, params Params) (Report, error) {
	if s == nil || s.store == nil {
		return Report{}, errors.New("usage service not initialized")
	}

	ref := s.now().In(s.timezone)
	period, err := timeutil.ParsePeriod(params.Period)
	if err != nil {
		return Report{}, err
	}
	buckets, err := timeutil.Buckets(timeutil.BucketSpec{
		Period:     period,
		Year:       ref.Year(),
		Reference:  ref,
		LaunchYear: s.launchYear,
	})
	if err != nil {
		return Report{}, err
	}
	start, end := timeutil.Span(buckets)

	totals, err := s.store.SumUsage(ctx, start, end)
	if err != nil {
		return Report{}, err
	}
	byFeature, err := s.store.AggregateUsageByFeature(ctx, start, end)
	if err != nil {
		return Report{}, err
	}
	byModel, err := s.store.AggregateUsageByModel(ctx, start, end)
	if err != nil {
		return Report{}, err
	}
	topUsers, err := s.store.TopUsersByCost(ctx, start, end, s.topLimit)
	if err != nil {
		return Report{}, err
	}
	pricing, err := s.store.ListActiveModelPricing(ctx)
	if err != nil {
		return Report{}, err
	}
	priced := make(map[string]struct{}, len(pricing))
	for _, p := range pricing {
		priced[p.ModelName] = struct{}{}
	}

	report := Report{
		Period: string(period),
		Totals: totalsFrom(totals),
	}
	for _, row := range byFeature {
		report.ByFeature = append(report.ByFeature, breakdown(row.Feature, row.UsageTotals))
	}
	for _, row := range byModel {
		entry := breakdown(row.Model, row.UsageTotals)
		// A model in telemetry with no active pricing row must be flagged,
		// never silently costed as zero.
		_, ok := priced[row.Model]
		entry.MissingPricing = !ok
		report.ByModel = append(report.ByModel, entry)
	}
	for _, row := range topUsers {
		report.TopUsers = append(report.TopUsers, breakdown(row.Email, row.UsageTotals))
	}
	if len(report.ByFeature) > s.topLimit {
		report.TopFeatures = report.ByFeature[:s.topLimit]
	} else {
		report.TopFeatures = report.ByFeature
	}

	if leader := s.stabilizedTopFeature(ctx, params.Session, report.ByFeature); !leader.IsZero() {
		report.TopFeature = &leader
	}
	return report, nil
}

// stabilizedTopFeature runs the incoming ranking through the session's held
// leader. Cache failures degrade to the raw ranking rather than failing the
// whole report.
func (s *Service) stabilizedTopFeature(ctx context.Context, session string, byFeature []Breakdown) chartmath.Leader {
	var incoming chartmath.Leader
	if len(byFeature) > 0 {
		incoming = chartmath.Leader{Candidate: byFeature[0].Name, Value: byFeature[0].CostUsd}
	}
	if session == "" || s.leaders == nil {
		return incoming
	}

	held, _, err := s.leaders.Get(ctx, session)
	if err != nil {
		s.logger.Warn("leader cache read failed", "error", err)
		return incoming
	}
	stable := chartmath.Stabilize(held, incoming, s.tolerance)
	if err := s.leaders.Set(ctx, session, stable); err != nil {
		s.logger.Warn("leader cache write failed", "error", err)
	}
	return stable
}
