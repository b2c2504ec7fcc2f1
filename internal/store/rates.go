package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ExchangeRateRow is the current snapshot for one quote currency, stored as
// a micro-unit fixed-point rate (units of quote per 1 USD).
type ExchangeRateRow struct {
	QuoteCurrency string
	RateMicros    int64
	AsOf          time.Time
}

// LatestExchangeRate returns the stored snapshot for the quote currency.
// A missing row is not an error: conversion falls back to tagging amounts
// with their source currency.
func (s *Store) LatestExchangeRate(ctx context.Context, quote string) (ExchangeRateRow, bool, error) {
	var row ExchangeRateRow
	err := s.pool.QueryRow(ctx, `
		SELECT quote_currency, rate_micros, as_of
		FROM exchange_rates
		WHERE quote_currency = $1`, quote).
		Scan(&row.QuoteCurrency, &row.RateMicros, &row.AsOf)
	if errors.Is(err, pgx.ErrNoRows) {
		return ExchangeRateRow{}, false, nil
	}
	if err != nil {
		return ExchangeRateRow{}, false, fmt.Errorf("latest exchange rate: %w", err)
	}
	return row, true, nil
}

// UpsertExchangeRate replaces the snapshot for the quote currency.
func (s *Store) UpsertExchangeRate(ctx context.Context, row ExchangeRateRow) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO exchange_rates (quote_currency, rate_micros, as_of)
		VALUES ($1, $2, $3)
		ON CONFLICT (quote_currency) DO UPDATE SET
			rate_micros = EXCLUDED.rate_micros,
			as_of = EXCLUDED.as_of`,
		row.QuoteCurrency, row.RateMicros, row.AsOf)
	if err != nil {
		return fmt.Errorf("upsert exchange rate %s: %w", row.QuoteCurrency, err)
	}
	return nil
}
