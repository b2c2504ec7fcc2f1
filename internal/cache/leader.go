package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelo-hq/revenue-console/internal/chartmath"
)

// LeaderCache holds one dashboard session's last shown leader so repeated
// recomputations can apply hysteresis. Keys expire with the session TTL;
// a missing key means no leader is held.
type LeaderCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderCache(client *redis.Client, ttl time.Duration) *LeaderCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &LeaderCache{client: client, ttl: ttl}
}

func (c *LeaderCache) Get(ctx context.Context, session string) (chartmath.Leader, bool, error) {
	if c == nil || c.client == nil || session == "" {
		return chartmath.Leader{}, false, nil
	}
	data, err := c.client.Get(ctx, c.prefixed(session)).Bytes()
	if err == redis.Nil {
		return chartmath.Leader{}, false, nil
	}
	if err != nil {
		return chartmath.Leader{}, false, fmt.Errorf("get leader: %w", err)
	}
	var leader chartmath.Leader
	if err := json.Unmarshal(data, &leader); err != nil {
		// A corrupt entry behaves like an expired one.
		return chartmath.Leader{}, false, nil
	}
	return leader, true, nil
}

func (c *LeaderCache) Set(ctx context.Context, session string, leader chartmath.Leader) error {
	if c == nil || c.client == nil || session == "" {
		return nil
	}
	data, err := json.Marshal(leader)
	if err != nil {
		return fmt.Errorf("marshal leader: %w", err)
	}
	if err := c.client.Set(ctx, c.prefixed(session), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set leader: %w", err)
	}
	return nil
}

func (c *LeaderCache) prefixed(session string) string {
	return "leader:" + session
}
