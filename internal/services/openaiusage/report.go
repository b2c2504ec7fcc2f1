package openaiusage

import (
	"github.com/avelo-hq/revenue-console/internal/chartmath"
	"github.com/avelo-hq/revenue-console/internal/currency"
	"github.com/avelo-hq/revenue-console/internal/store"
)

// Breakdown is one row of a per-feature, per-model, or per-user table.
// Rows arrive already sorted by descending cost.
type Breakdown struct {
	Name             string  `json:"name"`
	Requests         int64   `json:"requests"`
	PromptTokens     int64   `json:"promptTokens"`
	CachedTokens     int64   `json:"cachedTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	TotalTokens      int64   `json:"totalTokens"`
	CostUsd          float64 `json:"costUsd"`
	MissingPricing   bool    `json:"missingPricing,omitempty"`
}

// Totals is the window-wide aggregate.
type Totals struct {
	Requests         int64   `json:"requests"`
	PromptTokens     int64   `json:"promptTokens"`
	CachedTokens     int64   `json:"cachedTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	TotalTokens      int64   `json:"totalTokens"`
	CostUsd          float64 `json:"costUsd"`
}

// Report is the full usage-analytics payload. TopFeature is stabilized
// against the session's held leader so near-tied features do not flicker
// across refreshes.
type Report struct {
	Period      string            `json:"period"`
	Totals      Totals            `json:"totals"`
	ByFeature   []Breakdown       `json:"byFeature"`
	ByModel     []Breakdown       `json:"byModel"`
	TopUsers    []Breakdown       `json:"topUsers"`
	TopFeatures []Breakdown       `json:"topFeatures"`
	TopFeature  *chartmath.Leader `json:"topFeature"`
}

func totalsFrom(t store.UsageTotals) Totals {
	return Totals{
		Requests:         t.Requests,
		PromptTokens:     t.PromptTokens,
		CachedTokens:     t.CachedTokens,
		CompletionTokens: t.CompletionTokens,
		TotalTokens:      t.PromptTokens + t.CachedTokens + t.CompletionTokens,
		CostUsd:          costUsd(t.CostUsdMicros),
	}
}

func breakdown(name string, t store.UsageTotals) Breakdown {
	return Breakdown{
		Name:             name,
		Requests:         t.Requests,
		PromptTokens:     t.PromptTokens,
		CachedTokens:     t.CachedTokens,
		CompletionTokens: t.CompletionTokens,
		TotalTokens:      t.PromptTokens + t.CachedTokens + t.CompletionTokens,
		CostUsd:          costUsd(t.CostUsdMicros),
	}
}

func costUsd(micros int64) float64 {
	return currency.ToFloat(currency.FromMicros(micros))
}
