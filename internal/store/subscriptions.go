package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BillingPeriod is the cadence a subscription is billed on. Monthly and
// yearly revenue are always reported separately, never blended.
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingYearly  BillingPeriod = "yearly"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription is one user-plan binding. Canceled rows are retained for
// churn computation.
type Subscription struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	PlanID        uuid.UUID
	BillingPeriod BillingPeriod
	Status        SubscriptionStatus
	StartedAt     time.Time
	CanceledAt    *time.Time
}

// ListSubscriptions returns the full subscription history as a point-in-time
// snapshot. The revenue aggregator needs canceled rows too, so no status
// filter is applied here.
func (s *Store) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, plan_id, billing_period, status, started_at, canceled_at
		FROM subscriptions
		ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]Subscription, 0)
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.BillingPeriod, &sub.Status, &sub.StartedAt, &sub.CanceledAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// ActiveAt reports whether the subscription was active as of ts: started on
// or before ts and not canceled by then.
func (sub Subscription) ActiveAt(ts time.Time) bool {
	if sub.StartedAt.After(ts) {
		return false
	}
	return sub.CanceledAt == nil || sub.CanceledAt.After(ts)
}
