package main

import (
	"log"

	"github.com/avelo-hq/revenue-console/internal/config"
)

func main() {
	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("server: %+v", cfg.Server)
	log.Printf("reporting: %+v", cfg.Reporting)
	log.Printf("analytics: %+v", cfg.Analytics)
	log.Printf("seed: %d exchange rates, %d pricing rows", len(cfg.Seed.ExchangeRates), len(cfg.Seed.ModelPricing))
}
