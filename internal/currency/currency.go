package currency

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// USD is the denomination of all usage-cost telemetry.
	USD = "USD"

	centsPerUnit  = 100
	microsPerUnit = 1_000_000
)

// Rate is the current exchange-rate snapshot: units of Quote per 1 USD.
// Margin computations always use the latest snapshot, not a historical rate
// matched to the usage date; that approximation is deliberate and carried
// through to the API contract.
type Rate struct {
	Quote string          `json:"quoteCurrency"`
	Rate  decimal.Decimal `json:"rate"`
	AsOf  time.Time       `json:"asOf"`
}

// Valid reports whether the snapshot can be used for conversion.
func (r Rate) Valid() bool {
	return r.Quote != "" && r.Rate.IsPositive()
}

// Amount is a monetary value tagged with its currency. Conversion never
// fails: when no usable rate exists the amount keeps its source currency so
// the caller can decide how to display it.
type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// Normalize converts a USD-denominated amount into the rate's quote currency.
func Normalize(usd decimal.Decimal, rate Rate) Amount {
	if !rate.Valid() {
		return Amount{Value: usd, Currency: USD}
	}
	return Amount{Value: usd.Mul(rate.Rate).Round(2), Currency: rate.Quote}
}

// FromCents converts an integer cent amount into a decimal currency value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(centsPerUnit))
}

// FromMicros converts integer USD micros into a decimal currency value.
func FromMicros(micros int64) decimal.Decimal {
	return decimal.NewFromInt(micros).Div(decimal.NewFromInt(microsPerUnit))
}

// RateFromMicros builds a snapshot from a micro-unit fixed-point rate.
func RateFromMicros(quote string, micros int64, asOf time.Time) Rate {
	return Rate{
		Quote: quote,
		Rate:  decimal.NewFromInt(micros).Div(decimal.NewFromInt(microsPerUnit)),
		AsOf:  asOf,
	}
}

// ToFloat rounds to currency precision and returns the JSON-boundary float.
func ToFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
