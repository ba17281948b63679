package database

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"
)

type TxOptions struct {
	IsolationLevel sql.IsolationLevel
	ReadOnly       bool
	MaxRetries     int
}

func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel: sql.LevelReadCommitted,
		ReadOnly:       false,
		MaxRetries:     3,
	}
}

// SerializableTxOptions is used for checkout finalization, where a payment
// and the order flags must be written as one unit.
func SerializableTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}
}

const initialBackoff = 50 * time.Millisecond

type stage int

const (
	stageBody stage = iota
	stageCommit
)

type txError struct {
	stage stage
	err   error
}

func runTx(ctx context.Context, db *sql.DB, opts TxOptions, fn func(*sql.Tx) error) *txError {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{
		Isolation: opts.IsolationLevel,
		ReadOnly:  opts.ReadOnly,
	})
	if err != nil {
		return &txError{stage: stageBody, err: fmt.Errorf("begin transaction: %w", err)}
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return &txError{stage: stageBody, err: fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)}
		}
		return &txError{stage: stageBody, err: err}
	}

	if err := tx.Commit(); err != nil {
		return &txError{stage: stageCommit, err: fmt.Errorf("commit transaction: %w", err)}
	}

	return nil
}

func WithTransaction(ctx context.Context, db *sql.DB, opts TxOptions, fn func(*sql.Tx) error) error {
	if txErr := runTx(ctx, db, opts, fn); txErr != nil {
		return txErr.err
	}
	return nil
}

// WithRetry runs fn in a fresh transaction until it succeeds, fails with a
// permanent error, or MaxRetries is exhausted. Serialization failures and
// deadlocks are retried with jittered exponential backoff.
func WithRetry(ctx context.Context, db *sql.DB, opts TxOptions, fn func(*sql.Tx) error) error {
	backoff := initialBackoff

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		txErr := runTx(ctx, db, opts, fn)
		if txErr == nil {
			return nil
		}

		if !IsRetryable(txErr.err) {
			return txErr.err
		}

		if attempt == opts.MaxRetries {
			if txErr.stage == stageCommit {
				return fmt.Errorf("max retries (%d) exceeded on commit: %w", opts.MaxRetries, txErr.err)
			}
			return fmt.Errorf("max retries (%d) exceeded: %w", opts.MaxRetries, txErr.err)
		}

		if err := sleepWithJitter(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
	}
}

func sleepWithJitter(ctx context.Context, backoff time.Duration) error {
	jitter := time.Duration(rand.Int63n(int64(backoff / 4)))

	select {
	case <-time.After(backoff + jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
