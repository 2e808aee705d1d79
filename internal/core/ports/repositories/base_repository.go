package repositories

import (
	"context"
)

// TransactionManager runs units of work against the record store.
type TransactionManager interface {
	// WithinTx runs fn in a read-write unit of work. Every change fn makes through the
	// given Store is committed together when fn returns nil and discarded otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error

	// ReadSnapshot runs fn against a consistent view of committed records. Writes through
	// the given Store fail.
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
