package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreditPackSale is one immutable one-off sale. The price recorded here at
// sale time is authoritative; later pack price changes must not rewrite
// revenue history.
type CreditPackSale struct {
	ID           uuid.UUID
	PackID       uuid.UUID
	PackName     string
	CreditAmount int64
	PriceCents   int64
	Currency     string
	SoldAt       time.Time
}

// ListCreditPackSales returns the sales recorded inside [start, end).
func (s *Store) ListCreditPackSales(ctx context.Context, start, end time.Time) ([]CreditPackSale, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, pack_id, pack_name, credit_amount, price_cents, currency, sold_at
		FROM credit_pack_sales
		WHERE sold_at >= $1 AND sold_at < $2
		ORDER BY sold_at`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list credit pack sales: %w", err)
	}
	defer rows.Close()

	sales := make([]CreditPackSale, 0)
	for rows.Next() {
		var sale CreditPackSale
		if err := rows.Scan(&sale.ID, &sale.PackID, &sale.PackName, &sale.CreditAmount, &sale.PriceCents, &sale.Currency, &sale.SoldAt); err != nil {
			return nil, fmt.Errorf("scan credit pack sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credit pack sales: %w", err)
	}
	return sales, nil
}
