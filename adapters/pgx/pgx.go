// Package pgx implements sesame's storage ports on PostgreSQL via pgxpool.
// Every operation is a single parameterized statement; concurrency
// correctness leans entirely on per-row atomicity in the database.
package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucienvx/sesame/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.AuthStorage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}
