package db

import (
	"context"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/ledger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query
// functions run inside or outside a unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

// Store is the PostgreSQL implementation of ledger.Store.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

var _ ledger.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Queries: &Queries{db: pool}, pool: pool}
}

// InTx runs fn inside a READ COMMITTED transaction. The transaction commits
// only when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(q ledger.Queries) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperr.StoreFailure("begin", err)
	}
	// Rollback after Commit is a no-op
	defer tx.Rollback(ctx)

	if err := fn(&Queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.StoreFailure("commit", err)
	}
	return nil
}
