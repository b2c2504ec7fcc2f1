package currency

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeConvertsAtSnapshotRate(t *testing.T) {
	rate := Rate{Quote: "EUR", Rate: decimal.RequireFromString("0.92"), AsOf: time.Now()}
	got := Normalize(decimal.RequireFromString("4.00"), rate)
	if got.Currency != "EUR" {
		t.Fatalf("expected EUR, got %s", got.Currency)
	}
	if !got.Value.Equal(decimal.RequireFromString("3.68")) {
		t.Fatalf("expected 3.68, got %s", got.Value)
	}
}

func TestNormalizeWithoutRateKeepsSourceCurrency(t *testing.T) {
	got := Normalize(decimal.RequireFromString("12.50"), Rate{})
	if got.Currency != USD {
		t.Fatalf("expected unconverted USD amount, got %s", got.Currency)
	}
	if !got.Value.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("value must pass through unchanged, got %s", got.Value)
	}
}

func TestNormalizeRejectsNonPositiveRate(t *testing.T) {
	rate := Rate{Quote: "EUR", Rate: decimal.Zero}
	if got := Normalize(decimal.NewFromInt(10), rate); got.Currency != USD {
		t.Fatalf("zero rate must not convert, got %s", got.Currency)
	}
}

func TestFixedPointHelpers(t *testing.T) {
	if got := FromCents(999); !got.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("FromCents(999): got %s", got)
	}
	if got := FromMicros(4_000_000); !got.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("FromMicros(4000000): got %s", got)
	}
	rate := RateFromMicros("EUR", 920_000, time.Now())
	if !rate.Rate.Equal(decimal.RequireFromString("0.92")) {
		t.Fatalf("RateFromMicros: got %s", rate.Rate)
	}
	if ToFloat(decimal.RequireFromString("26.294")) != 26.29 {
		t.Fatalf("ToFloat should round to currency precision")
	}
}
