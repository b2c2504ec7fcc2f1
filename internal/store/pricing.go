package store

import (
	"context"
	"fmt"
)

// ModelPricing is a per-model token price row. Only active rows participate
// in cost validation; historical cost on usage records was computed at call
// time and is never recomputed when pricing changes.
type ModelPricing struct {
	ModelName                  string
	InputPriceMicrosPerMToken  int64
	OutputPriceMicrosPerMToken int64
	CachePriceMicrosPerMToken  int64
	IsActive                   bool
}

// ListActiveModelPricing returns the active pricing rows.
func (s *Store) ListActiveModelPricing(ctx context.Context) ([]ModelPricing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT model_name, input_price_micros_per_mtoken, output_price_micros_per_mtoken,
		       cache_price_micros_per_mtoken, is_active
		FROM model_pricing
		WHERE is_active
		ORDER BY model_name`)
	if err != nil {
		return nil, fmt.Errorf("list active model pricing: %w", err)
	}
	defer rows.Close()

	pricing := make([]ModelPricing, 0)
	for rows.Next() {
		var p ModelPricing
		if err := rows.Scan(&p.ModelName, &p.InputPriceMicrosPerMToken, &p.OutputPriceMicrosPerMToken, &p.CachePriceMicrosPerMToken, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan model pricing: %w", err)
		}
		pricing = append(pricing, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active model pricing: %w", err)
	}
	return pricing, nil
}

// UpsertModelPricing inserts or replaces a pricing row by model name.
func (s *Store) UpsertModelPricing(ctx context.Context, p ModelPricing) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO model_pricing (model_name, input_price_micros_per_mtoken,
			output_price_micros_per_mtoken, cache_price_micros_per_mtoken, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (model_name) DO UPDATE SET
			input_price_micros_per_mtoken = EXCLUDED.input_price_micros_per_mtoken,
			output_price_micros_per_mtoken = EXCLUDED.output_price_micros_per_mtoken,
			cache_price_micros_per_mtoken = EXCLUDED.cache_price_micros_per_mtoken,
			is_active = EXCLUDED.is_active`,
		p.ModelName, p.InputPriceMicrosPerMToken, p.OutputPriceMicrosPerMToken, p.CachePriceMicrosPerMToken, p.IsActive)
	if err != nil {
		return fmt.Errorf("upsert model pricing %s: %w", p.ModelName, err)
	}
	return nil
}
