package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UsageTotals sums request counts, token counts, and cost over a window.
type UsageTotals struct {
	Requests         int64
	PromptTokens     int64
	CachedTokens     int64
	CompletionTokens int64
	CostUsdMicros    int64
}

// UserCost is a per-user total cost over a window, pre-aggregated in SQL so
// the allocator works on one row per user rather than one per call.
type UserCost struct {
	UserID        uuid.UUID
	CostUsdMicros int64
}

// FeatureUsage is per-feature aggregate usage.
type FeatureUsage struct {
	Feature string
	UsageTotals
}

// ModelUsage is per-model aggregate usage.
type ModelUsage struct {
	Model string
	UsageTotals
}

// UserUsage is per-user aggregate usage joined with the user's email.
type UserUsage struct {
	UserID uuid.UUID
	Email  string
	UsageTotals
}

// SumUsage aggregates all usage-cost telemetry inside [start, end).
func (s *Store) SumUsage(ctx context.Context, start, end time.Time) (UsageTotals, error) {
	var t UsageTotals
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(cached_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(cost_usd_micros), 0)
		FROM usage_cost_records
		WHERE occurred_at >= $1 AND occurred_at < $2`, start, end).
		Scan(&t.Requests, &t.PromptTokens, &t.CachedTokens, &t.CompletionTokens, &t.CostUsdMicros)
	if err != nil {
		return UsageTotals{}, fmt.Errorf("sum usage: %w", err)
	}
	return t, nil
}

// SumUsageCostByUser returns the total cost per user inside [start, end).
func (s *Store) SumUsageCostByUser(ctx context.Context, start, end time.Time) ([]UserCost, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, COALESCE(SUM(cost_usd_micros), 0)
		FROM usage_cost_records
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY user_id`, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum usage cost by user: %w", err)
	}
	defer rows.Close()

	costs := make([]UserCost, 0)
	for rows.Next() {
		var c UserCost
		if err := rows.Scan(&c.UserID, &c.CostUsdMicros); err != nil {
			return nil, fmt.Errorf("scan user cost: %w", err)
		}
		costs = append(costs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sum usage cost by user: %w", err)
	}
	return costs, nil
}

// AggregateUsageByFeature groups usage inside [start, end) per feature,
// costliest first.
func (s *Store) AggregateUsageByFeature(ctx context.Context, start, end time.Time) ([]FeatureUsage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT feature, COUNT(*),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(cached_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(cost_usd_micros), 0)
		FROM usage_cost_records
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY feature
		ORDER BY SUM(cost_usd_micros) DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage by feature: %w", err)
	}
	defer rows.Close()

	items := make([]FeatureUsage, 0)
	for rows.Next() {
		var f FeatureUsage
		if err := rows.Scan(&f.Feature, &f.Requests, &f.PromptTokens, &f.CachedTokens, &f.CompletionTokens, &f.CostUsdMicros); err != nil {
			return nil, fmt.Errorf("scan feature usage: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate usage by feature: %w", err)
	}
	return items, nil
}

// AggregateUsageByModel groups usage inside [start, end) per model,
// costliest first.
func (s *Store) AggregateUsageByModel(ctx context.Context, start, end time.Time) ([]ModelUsage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT model, COUNT(*),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(cached_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(cost_usd_micros), 0)
		FROM usage_cost_records
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY model
		ORDER BY SUM(cost_usd_micros) DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage by model: %w", err)
	}
	defer rows.Close()

	items := make([]ModelUsage, 0)
	for rows.Next() {
		var m ModelUsage
		if err := rows.Scan(&m.Model, &m.Requests, &m.PromptTokens, &m.CachedTokens, &m.CompletionTokens, &m.CostUsdMicros); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate usage by model: %w", err)
	}
	return items, nil
}

// TopUsersByCost returns the costliest users inside [start, end).
func (s *Store) TopUsersByCost(ctx context.Context, start, end time.Time, limit int) ([]UserUsage, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT u.user_id, COALESCE(usr.email, ''), COUNT(*),
		       COALESCE(SUM(u.prompt_tokens), 0),
		       COALESCE(SUM(u.cached_tokens), 0),
		       COALESCE(SUM(u.completion_tokens), 0),
		       COALESCE(SUM(u.cost_usd_micros), 0)
		FROM usage_cost_records u
		LEFT JOIN users usr ON usr.id = u.user_id
		WHERE u.occurred_at >= $1 AND u.occurred_at < $2
		GROUP BY u.user_id, usr.email
		ORDER BY SUM(u.cost_usd_micros) DESC
		LIMIT $3`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("top users by cost: %w", err)
	}
	defer rows.Close()

	items := make([]UserUsage, 0, limit)
	for rows.Next() {
		var u UserUsage
		if err := rows.Scan(&u.UserID, &u.Email, &u.Requests, &u.PromptTokens, &u.CachedTokens, &u.CompletionTokens, &u.CostUsdMicros); err != nil {
			return nil, fmt.Errorf("scan user usage: %w", err)
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top users by cost: %w", err)
	}
	return items, nil
}

// ListUsersWithUnpricedModels returns users whose telemetry inside
// [start, end) references a model with no active pricing row. Their plans
// cannot claim a trustworthy cost figure.
func (s *Store) ListUsersWithUnpricedModels(ctx context.Context, start, end time.Time) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT u.user_id
		FROM usage_cost_records u
		WHERE u.occurred_at >= $1 AND u.occurred_at < $2
		  AND NOT EXISTS (
			SELECT 1 FROM model_pricing p
			WHERE p.model_name = u.model AND p.is_active
		  )`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list users with unpriced models: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users with unpriced models: %w", err)
	}
	return ids, nil
}
