package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/adapters/database/memory"
	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rate = domain.ExchangeRate{USDToIQD: decimal.NewFromInt(1250), IQDToUSD: decimal.RequireFromString("0.0008")}

func testSale(id string, at time.Time) domain.Sale {
	return domain.Sale{
		ID:       id,
		Currency: domain.USD,
		Total:    decimal.NewFromInt(10),
		Rate:     rate,
		Items: []domain.LineItem{{
			ID: id + "-l1", ItemRef: "sku-1", Quantity: 1,
			BuyingPrice: decimal.NewFromInt(6), SellingPrice: decimal.NewFromInt(10), ProductCurrency: domain.USD,
		}},
		AuditFields: domain.AuditFields{CreatedAt: at, LastUpdatedAt: at},
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB(memory.WithRate(rate))
	boom := errors.New("boom")

	err := db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		require.NoError(t, store.SaveSale(ctx, testSale("s1", time.Now())))
		_, err := store.AdjustBalance(ctx, domain.USD, decimal.NewFromInt(10))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = db.ReadSnapshot(ctx, func(ctx context.Context, store portsrepo.Store) error {
		_, err := store.LoadSale(ctx, "s1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		bal, err := store.GetBalance(ctx)
		require.NoError(t, err)
		assert.True(t, bal.USDBalance.IsZero())
		return nil
	})
	require.NoError(t, err)
}

func TestWithinTx_CommitsAndIsolatesClones(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	sale := testSale("s1", time.Now())

	require.NoError(t, db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		return store.SaveSale(ctx, sale)
	}))
	sale.Items[0].Quantity = 99

	require.NoError(t, db.ReadSnapshot(ctx, func(ctx context.Context, store portsrepo.Store) error {
		got, err := store.LoadSale(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, got.Items[0].Quantity)
		return nil
	}))
}

func TestReadSnapshot_RejectsWrites(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	err := db.ReadSnapshot(ctx, func(ctx context.Context, store portsrepo.Store) error {
		return store.SaveSale(ctx, testSale("s1", time.Now()))
	})
	assert.Error(t, err)
}

func TestWithinTx_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	db := memory.NewDB()
	called := false
	err := db.WithinTx(ctx, func(context.Context, portsrepo.Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestAdjustBalance_RejectsNegative(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB(memory.WithBalance(domain.Balance{USDBalance: decimal.NewFromInt(5), IQDBalance: decimal.Zero}))
	err := db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		_, err := store.AdjustBalance(ctx, domain.USD, decimal.NewFromInt(-6))
		return err
	})
	assert.ErrorIs(t, err, apperrors.ErrNegativeBalance)

	err = db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		bal, err := store.AdjustBalance(ctx, domain.USD, decimal.NewFromInt(-5))
		require.NoError(t, err)
		assert.True(t, bal.USDBalance.IsZero())
		return nil
	})
	require.NoError(t, err)
}

func TestStockMovements(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB(memory.WithStock(domain.StockLevel{ItemRef: "sku-1", OnHand: 8, MaxStock: 10}))

	require.NoError(t, db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		n, err := store.RestoreStock(ctx, "sku-1", 5)
		require.NoError(t, err)
		assert.Equal(t, 2, n, "capped at MaxStock")

		n, err = store.RemoveStock(ctx, "sku-1", 15)
		require.NoError(t, err)
		assert.Equal(t, 10, n, "capped at on-hand")

		n, err = store.RestoreStock(ctx, "untracked", 3)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = store.RemoveStock(ctx, "never-stocked", 3)
		require.NoError(t, err)
		assert.Zero(t, n)

		require.NoError(t, store.AddStock(ctx, "sku-2", 4))
		level, err := store.GetStock(ctx, "sku-2")
		require.NoError(t, err)
		assert.Equal(t, 4, level.OnHand)
		return nil
	}))
}

func TestListSales_WindowIsHalfOpen(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		for i, id := range []string{"a", "b", "c"} {
			if err := store.SaveSale(ctx, testSale(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.ReadSnapshot(ctx, func(ctx context.Context, store portsrepo.Store) error {
		sales, err := store.ListSales(ctx, base, base.Add(2*time.Hour))
		require.NoError(t, err)
		require.Len(t, sales, 2)
		assert.Equal(t, "a", sales[0].ID)
		assert.Equal(t, "b", sales[1].ID)
		return nil
	}))
}

func TestSaveDebt_OnePerSale(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	err := db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		require.NoError(t, store.SaveDebt(ctx, domain.Debt{ID: "d1", SaleID: "s1"}))
		return store.SaveDebt(ctx, domain.Debt{ID: "d2", SaleID: "s1"})
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestCurrentRate_Missing(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	err := db.ReadSnapshot(ctx, func(ctx context.Context, store portsrepo.Store) error {
		_, err := store.CurrentRate(ctx)
		return err
	})
	assert.ErrorIs(t, err, apperrors.ErrMissingExchangeRate)
}

func TestListReturns_WindowAndRollback(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		for i, id := range []string{"r1", "r2"} {
			rec := domain.ReturnRecord{ID: id, RecordKind: domain.KindSale, RecordID: "s1", Quantity: 1, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
			if err := store.AppendReturn(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}))
	err := db.WithinTx(ctx, func(ctx context.Context, store portsrepo.Store) error {
		require.NoError(t, store.AppendReturn(ctx, domain.ReturnRecord{ID: "r3", CreatedAt: base}))
		return errors.New("abort")
	})
	require.Error(t, err)

	require.NoError(t, db.ReadSnapshot(ctx, func(ctx context.Context, store portsrepo.Store) error {
		all, err := store.ListReturns(ctx, base, base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Len(t, all, 2)
		first, err := store.ListReturns(ctx, base, base.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.Equal(t, "r1", first[0].ID)
		return nil
	}))
}
