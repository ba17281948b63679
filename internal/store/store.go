package store

import (
	"context"
	"database/sql"

	"github.com/safar/storefront/internal/database"
)

// Store runs queries against either the pool or a single transaction.
type Store struct {
	db *sql.DB
	q  database.Querier
}

func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) withTx(tx *sql.Tx) *Store {
	return &Store{db: s.db, q: tx}
}

// Tx runs fn in a read committed transaction.
func (s *Store) Tx(ctx context.Context, fn func(*Store) error) error {
	return database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return fn(s.withTx(tx))
	})
}

// RetryTx runs fn in a serializable transaction, retrying on serialization
// failures and deadlocks.
func (s *Store) RetryTx(ctx context.Context, fn func(*Store) error) error {
	return database.WithRetry(ctx, s.db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		return fn(s.withTx(tx))
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
