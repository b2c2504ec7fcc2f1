package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is a console account row. Only the fields the analytics engine reads
// are modeled here.
type User struct {
	ID                    uuid.UUID
	Email                 string
	CreatedAt             time.Time
	OnboardingCompletedAt *time.Time
}

// CountUsers returns the total number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// ListSignups returns account creation events inside [start, end) for
// bucketed onboarding series.
func (s *Store) ListSignups(ctx context.Context, start, end time.Time) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, created_at, onboarding_completed_at
		FROM users
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list signups: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt, &u.OnboardingCompletedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list signups: %w", err)
	}
	return users, nil
}

// CountCompletedOnboarding returns how many accounts finished onboarding.
func (s *Store) CountCompletedOnboarding(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE onboarding_completed_at IS NOT NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed onboarding: %w", err)
	}
	return count, nil
}
