package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Plan is a subscription plan row. Tier is the sole ordering key; the name is
// derived from it. Price edits never rewrite past revenue snapshots because
// every derived figure is recomputed from current prices on demand.
type Plan struct {
	ID                uuid.UUID
	Tier              int32
	Name              string
	PriceMonthlyCents int64
	PriceYearlyCents  int64
	Currency          string
	IsFree            bool
}

// ListPlans returns every plan ordered by tier.
func (s *Store) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tier, name, price_monthly_cents, price_yearly_cents, currency, is_free
		FROM plans
		ORDER BY tier`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]Plan, 0)
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Tier, &p.Name, &p.PriceMonthlyCents, &p.PriceYearlyCents, &p.Currency, &p.IsFree); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}
