package revenue

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avelo-hq/revenue-console/internal/store"
)

func sale(packID uuid.UUID, name string, priceCents int64, soldAt time.Time) store.CreditPackSale {
	return store.CreditPackSale{
		ID:           uuid.New(),
		PackID:       packID,
		PackName:     name,
		CreditAmount: 1000,
		PriceCents:   priceCents,
		Currency:     "EUR",
		SoldAt:       soldAt,
	}
}

func TestAggregateCreditPacksSumsPerPack(t *testing.T) {
	small := uuid.New()
	large := uuid.New()
	at := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	summary := AggregateCreditPacks([]store.CreditPackSale{
		sale(small, "Small Pack", 500, at),
		sale(small, "Small Pack", 500, at.Add(time.Hour)),
		sale(large, "Large Pack", 2000, at.Add(2*time.Hour)),
	})

	if got := summary.TotalRevenue.StringFixed(2); got != "30.00" {
		t.Fatalf("total: want 30.00, got %s", got)
	}
	if len(summary.ByPack) != 2 {
		t.Fatalf("expected 2 packs, got %d", len(summary.ByPack))
	}
	first := summary.ByPack[0]
	if first.PackName != "Small Pack" || first.SalesCount != 2 || first.TotalRevenue != 10.00 || first.UnitPrice != 5.00 {
		t.Fatalf("small pack: %+v", first)
	}
	second := summary.ByPack[1]
	if second.SalesCount != 1 || second.TotalRevenue != 20.00 {
		t.Fatalf("large pack: %+v", second)
	}
}

func TestAggregateCreditPacksUsesPriceAtSaleTime(t *testing.T) {
	pack := uuid.New()
	at := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	// Two sales recorded at 5.00, then the pack was repriced to 7.50.
	summary := AggregateCreditPacks([]store.CreditPackSale{
		sale(pack, "Starter Pack", 500, at),
		sale(pack, "Starter Pack", 500, at.Add(time.Hour)),
		sale(pack, "Starter Pack", 750, at.Add(48*time.Hour)),
	})

	only := summary.ByPack[0]
	if only.SalesCount != 3 {
		t.Fatalf("salesCount: want 3, got %d", only.SalesCount)
	}
	// Recorded sum, not count x current price (which would be 22.50).
	if only.TotalRevenue != 17.50 {
		t.Fatalf("totalRevenue: want 17.50, got %v", only.TotalRevenue)
	}
	if only.UnitPrice != 7.50 {
		t.Fatalf("unitPrice reports the most recent recorded price: want 7.50, got %v", only.UnitPrice)
	}
}

func TestAggregateCreditPacksEmptyWindow(t *testing.T) {
	summary := AggregateCreditPacks(nil)
	if !summary.TotalRevenue.IsZero() {
		t.Fatalf("empty window total must be zero, got %s", summary.TotalRevenue)
	}
	if len(summary.ByPack) != 0 {
		t.Fatalf("expected no packs, got %d", len(summary.ByPack))
	}
}
