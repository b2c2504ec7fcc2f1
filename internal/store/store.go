package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the pgx pool with the read models the analytics engine
// consumes. Every query is a read-only snapshot; aggregation happens either
// in SQL (index-backed GROUP BY) or in the pure service layer, never with
// table locks.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store over the shared connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
