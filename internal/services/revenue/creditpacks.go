package revenue

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelo-hq/revenue-console/internal/currency"
	"github.com/avelo-hq/revenue-console/internal/store"
)

// PackRevenue is the per-pack slice of one-off credit sales.
type PackRevenue struct {
	PackID       string  `json:"packId"`
	PackName     string  `json:"packName"`
	SalesCount   int64   `json:"salesCount"`
	UnitPrice    float64 `json:"unitPrice"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// CreditSummary totals credit-pack sales for one window.
type CreditSummary struct {
	TotalRevenue decimal.Decimal
	ByPack       []PackRevenue
}

// AggregateCreditPacks sums immutable sales into per-pack revenue. Every
// figure uses the price recorded at sale time: a later pack price change
// must not rewrite history. When sales in the window carry different
// recorded prices, the total stays the true recorded sum and unitPrice
// reports the most recent one.
func AggregateCreditPacks(sales []store.CreditPackSale) CreditSummary {
	type packAccum struct {
		name      string
		count     int64
		total     decimal.Decimal
		unitCents int64
	}
	order := make([]uuid.UUID, 0)
	packs := make(map[uuid.UUID]*packAccum)

	total := decimal.Zero
	for _, sale := range sales {
		price := currency.FromCents(sale.PriceCents)
		total = total.Add(price)

		accum, ok := packs[sale.PackID]
		if !ok {
			accum = &packAccum{name: sale.PackName, total: decimal.Zero}
			packs[sale.PackID] = accum
			order = append(order, sale.PackID)
		}
		accum.count++
		accum.total = accum.total.Add(price)
		accum.unitCents = sale.PriceCents
	}

	byPack := make([]PackRevenue, 0, len(order))
	for _, id := range order {
		accum := packs[id]
		byPack = append(byPack, PackRevenue{
			PackID:       id.String(),
			PackName:     accum.name,
			SalesCount:   accum.count,
			UnitPrice:    currency.ToFloat(currency.FromCents(accum.unitCents)),
			TotalRevenue: currency.ToFloat(accum.total),
		})
	}

	return CreditSummary{TotalRevenue: total, ByPack: byPack}
}
