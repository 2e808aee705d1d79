// Package pgsql is the PostgreSQL record store. Each unit of work is one REPEATABLE READ
// transaction; records a unit of work mutates are loaded with FOR UPDATE.
package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	"github.com/SscSPs/pos_reconciliation/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeReadOnlyTransaction  = "25006"

	defaultAttempts = 3
)

// DB implements portsrepo.TransactionManager on a pgx pool.
type DB struct {
	pool     *pgxpool.Pool
	attempts int
}

// NewDB creates a store over an open pool.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool, attempts: defaultAttempts}
}

// Ensure DB implements portsrepo.TransactionManager
var _ portsrepo.TransactionManager = (*DB)(nil)

// WithinTx runs fn in a read-write transaction. A serialization failure is retried
// from scratch a few times before it surfaces as apperrors.ErrConflict.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context, store portsrepo.Store) error) error {
	var err error
	for attempt := 1; attempt <= db.attempts; attempt++ {
		err = db.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, false, fn)
		if !isRetryable(err) {
			return err
		}
		middleware.GetLoggerFromCtx(ctx).Debug("Retrying unit of work after serialization failure",
			slog.Int("attempt", attempt), slog.String("error", err.Error()))
	}
	return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
}

// ReadSnapshot runs fn in a read-only REPEATABLE READ transaction, so every query sees
// the same committed state.
func (db *DB) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, store portsrepo.Store) error) error {
	return db.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, true, fn)
}

func (db *DB) run(ctx context.Context, opts pgx.TxOptions, readOnly bool, fn func(ctx context.Context, store portsrepo.Store) error) error {
	tx, err := db.pool.BeginTx(ctx, opts)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		// Rollback after Commit is a no-op returning ErrTxClosed.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, &txStore{tx: tx, readOnly: readOnly}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "commit")
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

// mapError turns driver errors into application errors. Serialization failures are
// passed through unchanged so WithinTx can retry them.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, op)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, op, pgErr.ConstraintName)
		case codeCheckViolation:
			if pgErr.ConstraintName == "cash_balance_non_negative" {
				return fmt.Errorf("%w: %s", apperrors.ErrNegativeBalance, op)
			}
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, op, pgErr.ConstraintName)
		case codeSerializationFailure, codeDeadlockDetected:
			return err
		case codeReadOnlyTransaction:
			return fmt.Errorf("%s: %w", op, errReadOnly)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

var errReadOnly = errors.New("write attempted in a read-only snapshot")

// txStore implements portsrepo.Store inside one transaction.
type txStore struct {
	tx       pgx.Tx
	readOnly bool
}

// Ensure txStore implements portsrepo.Store
var _ portsrepo.Store = (*txStore)(nil)

func (s *txStore) writable() error {
	if s.readOnly {
		return errReadOnly
	}
	return nil
}

// forUpdate returns the row-lock clause for loads inside a read-write unit of work.
func (s *txStore) forUpdate() string {
	if s.readOnly {
		return ""
	}
	return " FOR UPDATE"
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
