package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/avelo-hq/revenue-console/internal/cache"
	"github.com/avelo-hq/revenue-console/internal/config"
	"github.com/avelo-hq/revenue-console/internal/observability"
	marginsvc "github.com/avelo-hq/revenue-console/internal/services/margin"
	onboardingsvc "github.com/avelo-hq/revenue-console/internal/services/onboarding"
	usagesvc "github.com/avelo-hq/revenue-console/internal/services/openaiusage"
	revenuesvc "github.com/avelo-hq/revenue-console/internal/services/revenue"
	"github.com/avelo-hq/revenue-console/internal/store"
)

// Container aggregates runtime dependencies for handlers and services.
type Container struct {
	Config            *config.Config
	DBPool            *pgxpool.Pool
	Redis             *redis.Client
	Store             *store.Store
	Revenue           *revenuesvc.Service
	Margin            *marginsvc.Service
	Usage             *usagesvc.Service
	Onboarding        *onboardingsvc.Service
	Leaders           *cache.LeaderCache
	Observability     *observability.Provider
	ReportingLocation *time.Location
}

// NewContainer builds a dependency container from the provided primitives.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if pool == nil {
		return nil, fmt.Errorf("db pool is required")
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	locName := strings.TrimSpace(cfg.Reporting.Timezone)
	if locName == "" {
		locName = "UTC"
	}
	reportingLoc, err := time.LoadLocation(locName)
	if err != nil {
		return nil, fmt.Errorf("load reporting timezone: %w", err)
	}

	st := store.New(pool)
	leaders := cache.NewLeaderCache(redisClient, cfg.Analytics.LeaderSessionTTL)

	obsProvider, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("setup observability: %w", err)
	}

	container := &Container{
		Config:            cfg,
		DBPool:            pool,
		Redis:             redisClient,
		Store:             st,
		Revenue:           revenuesvc.NewService(st, cfg.Reporting.LaunchYear, cfg.Reporting.BillingCurrency, reportingLoc),
		Margin:            marginsvc.NewService(st, cfg.Reporting.BillingCurrency, reportingLoc),
		Usage:             usagesvc.NewService(st, leaders, cfg.Analytics.LeaderTolerance, cfg.Analytics.TopLimit, cfg.Reporting.LaunchYear, reportingLoc, slog.Default()),
		Onboarding:        onboardingsvc.NewService(st, cfg.Reporting.LaunchYear, reportingLoc),
		Leaders:           leaders,
		Observability:     obsProvider,
		ReportingLocation: reportingLoc,
	}
	return container, nil
}

// Shutdown releases container-held resources.
func (c *Container) Shutdown(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.Observability != nil {
		if err := c.Observability.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
