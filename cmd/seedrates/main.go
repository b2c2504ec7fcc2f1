package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avelo-hq/revenue-console/internal/config"
	"github.com/avelo-hq/revenue-console/internal/database"
	"github.com/avelo-hq/revenue-console/internal/store"
)

// seedrates upserts the exchange-rate snapshot and model-pricing rows
// declared in config. Rerunning it refreshes the snapshot in place.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := database.RunMigrations(ctx, cfg.Database); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	dbPool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer dbPool.Close()

	st := store.New(dbPool)
	now := time.Now().UTC()

	for _, seed := range cfg.Seed.ExchangeRates {
		row := store.ExchangeRateRow{
			QuoteCurrency: seed.QuoteCurrency,
			RateMicros:    microsFromFloat(seed.Rate),
			AsOf:          now,
		}
		if err := st.UpsertExchangeRate(ctx, row); err != nil {
			log.Fatalf("upsert exchange rate %s: %v", seed.QuoteCurrency, err)
		}
		log.Printf("seeded exchange rate %s = %v", seed.QuoteCurrency, seed.Rate)
	}

	for _, seed := range cfg.Seed.ModelPricing {
		pricing := store.ModelPricing{
			ModelName:                  seed.ModelName,
			InputPriceMicrosPerMToken:  microsFromFloat(seed.InputPerMTokens),
			OutputPriceMicrosPerMToken: microsFromFloat(seed.OutputPerMTokens),
			CachePriceMicrosPerMToken:  microsFromFloat(seed.CachePerMTokens),
			IsActive:                   seed.IsActive,
		}
		if err := st.UpsertModelPricing(ctx, pricing); err != nil {
			log.Fatalf("upsert model pricing %s: %v", seed.ModelName, err)
		}
		log.Printf("seeded model pricing %s (active=%v)", seed.ModelName, seed.IsActive)
	}
}

func microsFromFloat(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(1_000_000)).Round(0).IntPart()
}
