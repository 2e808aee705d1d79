// Package memory is an in-process record store. Each unit of work runs against a
// copy-on-write view of the data and is swapped in only when it succeeds.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var errReadOnly = errors.New("write attempted in a read-only snapshot")

type dataset struct {
	sales        map[string]domain.Sale
	debts        map[string]domain.Debt
	companyDebts map[string]domain.CompanyDebt
	loans        map[string]domain.PersonalLoan
	purchases    map[string]domain.BuyingHistoryEntry
	stock        map[string]domain.StockLevel
	history      []domain.PaymentRecord
	returns      []domain.ReturnRecord
	balance      domain.Balance
	rate         *domain.ExchangeRate
}

func newDataset() *dataset {
	return &dataset{
		sales:        map[string]domain.Sale{},
		debts:        map[string]domain.Debt{},
		companyDebts: map[string]domain.CompanyDebt{},
		loans:        map[string]domain.PersonalLoan{},
		purchases:    map[string]domain.BuyingHistoryEntry{},
		stock:        map[string]domain.StockLevel{},
		balance:      domain.Balance{USDBalance: decimal.Zero, IQDBalance: decimal.Zero},
	}
}

// fork copies the maps. Records are values and are cloned on every load and save, so
// sharing them between the committed data and the fork is safe.
func (d *dataset) fork() *dataset {
	out := &dataset{
		sales:        maps.Clone(d.sales),
		debts:        maps.Clone(d.debts),
		companyDebts: maps.Clone(d.companyDebts),
		loans:        maps.Clone(d.loans),
		purchases:    maps.Clone(d.purchases),
		stock:        maps.Clone(d.stock),
		history:      d.history[:len(d.history):len(d.history)],
		returns:      d.returns[:len(d.returns):len(d.returns)],
		balance:      d.balance,
	}
	if d.rate != nil {
		r := *d.rate
		out.rate = &r
	}
	return out
}

// DB is the in-memory record store.
type DB struct {
	mu   sync.RWMutex
	data *dataset
}

// Option configures a DB at construction.
type Option func(*dataset)

// WithRate seeds the live exchange rate.
func WithRate(rate domain.ExchangeRate) Option {
	return func(d *dataset) {
		d.rate = &rate
	}
}

// WithBalance seeds the cash drawer.
func WithBalance(balance domain.Balance) Option {
	return func(d *dataset) {
		d.balance = balance
	}
}

// WithStock seeds inventory levels.
func WithStock(levels ...domain.StockLevel) Option {
	return func(d *dataset) {
		for _, l := range levels {
			d.stock[l.ItemRef] = l
		}
	}
}

// NewDB creates an empty store.
func NewDB(opts ...Option) *DB {
	data := newDataset()
	for _, opt := range opts {
		opt(data)
	}
	return &DB{data: data}
}

// Ensure DB implements portsrepo.TransactionManager
var _ portsrepo.TransactionManager = (*DB)(nil)

// WithinTx runs fn against a private fork and publishes it on success. Units of work
// are serialized by the write lock; readers keep seeing the last committed data.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context, store portsrepo.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	work := db.data.fork()
	if err := fn(ctx, &txStore{data: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("unit of work cancelled before commit: %w", err)
	}
	db.data = work
	return nil
}

// ReadSnapshot runs fn against the committed data under a read lock.
func (db *DB) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, store portsrepo.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(ctx, &txStore{data: db.data, readOnly: true})
}

type txStore struct {
	data     *dataset
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
