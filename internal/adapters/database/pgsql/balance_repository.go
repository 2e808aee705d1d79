package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
	"github.com/SscSPs/pos_reconciliation/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

// --- balance ---

func (s *txStore) GetBalance(ctx context.Context) (domain.Balance, error) {
	var m models.CashBalance
	err := s.tx.QueryRow(ctx, `SELECT usd_balance, iqd_balance FROM cash_balance WHERE id = 1`).Scan(&m.USDBalance, &m.IQDBalance)
	if err != nil {
		return domain.Balance{}, mapError(err, "get balance")
	}
	return mapping.ToDomainBalance(m), nil
}

// AdjustBalance applies delta in one statement; the table's check constraint rejects a
// negative result.
func (s *txStore) AdjustBalance(ctx context.Context, currency domain.Currency, delta decimal.Decimal) (domain.Balance, error) {
	if err := s.writable(); err != nil {
		return domain.Balance{}, err
	}
	var query string
	switch currency {
	case domain.USD:
		query = `UPDATE cash_balance SET usd_balance = usd_balance + $1 WHERE id = 1 RETURNING usd_balance, iqd_balance`
	case domain.IQD:
		query = `UPDATE cash_balance SET iqd_balance = iqd_balance + $1 WHERE id = 1 RETURNING usd_balance, iqd_balance`
	default:
		return domain.Balance{}, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, currency)
	}
	var m models.CashBalance
	if err := s.tx.QueryRow(ctx, query, delta).Scan(&m.USDBalance, &m.IQDBalance); err != nil {
		return domain.Balance{}, mapError(err, fmt.Sprintf("adjust %s balance by %s", currency, delta))
	}
	return mapping.ToDomainBalance(m), nil
}

// --- inventory ---

func (s *txStore) GetStock(ctx context.Context, itemRef string) (domain.StockLevel, error) {
	var m models.StockLevel
	err := s.tx.QueryRow(ctx, `SELECT item_ref, on_hand, max_stock FROM stock_levels WHERE item_ref = $1`, itemRef).
		Scan(&m.ItemRef, &m.OnHand, &m.MaxStock)
	if err != nil {
		return domain.StockLevel{}, mapError(err, "get stock of "+itemRef)
	}
	return mapping.ToDomainStockLevel(m), nil
}

func (s *txStore) SetStockLevel(ctx context.Context, level domain.StockLevel) error {
	if err := s.writable(); err != nil {
		return err
	}
	_, err := s.tx.Exec(ctx, `
		INSERT INTO stock_levels (item_ref, on_hand, max_stock)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_ref) DO UPDATE SET on_hand = EXCLUDED.on_hand, max_stock = EXCLUDED.max_stock`,
		level.ItemRef, level.OnHand, level.MaxStock)
	return mapError(err, "set stock of "+level.ItemRef)
}

func (s *txStore) AddStock(ctx context.Context, itemRef string, quantity int) error {
	if err := s.writable(); err != nil {
		return err
	}
	_, err := s.tx.Exec(ctx, `
		INSERT INTO stock_levels (item_ref, on_hand, max_stock)
		VALUES ($1, $2, 0)
		ON CONFLICT (item_ref) DO UPDATE SET on_hand = stock_levels.on_hand + EXCLUDED.on_hand`,
		itemRef, quantity)
	return mapError(err, "add stock of "+itemRef)
}

func (s *txStore) RestoreStock(ctx context.Context, itemRef string, quantity int) (int, error) {
	if err := s.writable(); err != nil {
		return 0, err
	}
	var m models.StockLevel
	err := s.tx.QueryRow(ctx, `SELECT item_ref, on_hand, max_stock FROM stock_levels WHERE item_ref = $1 FOR UPDATE`, itemRef).
		Scan(&m.ItemRef, &m.OnHand, &m.MaxStock)
	if err != nil {
		if mapped := mapError(err, "restore stock of "+itemRef); !isNotFound(mapped) {
			return 0, mapped
		}
		m = models.StockLevel{ItemRef: itemRef}
	}
	level := mapping.ToDomainStockLevel(m)
	n := min(quantity, level.Room())
	level.OnHand += n
	if err := s.SetStockLevel(ctx, level); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *txStore) RemoveStock(ctx context.Context, itemRef string, quantity int) (int, error) {
	if err := s.writable(); err != nil {
		return 0, err
	}
	var onHand int
	err := s.tx.QueryRow(ctx, `SELECT on_hand FROM stock_levels WHERE item_ref = $1 FOR UPDATE`, itemRef).Scan(&onHand)
	if err != nil {
		if mapped := mapError(err, "remove stock of "+itemRef); !isNotFound(mapped) {
			return 0, mapped
		}
		return 0, nil
	}
	n := min(quantity, max(onHand, 0))
	if _, err := s.tx.Exec(ctx, `UPDATE stock_levels SET on_hand = on_hand - $2 WHERE item_ref = $1`, itemRef, n); err != nil {
		return 0, mapError(err, "remove stock of "+itemRef)
	}
	return n, nil
}

// --- exchange rate ---

func (s *txStore) CurrentRate(ctx context.Context) (domain.ExchangeRate, error) {
	var m models.ExchangeRate
	err := s.tx.QueryRow(ctx, `SELECT usd_to_iqd, iqd_to_usd, last_updated_at FROM exchange_rates WHERE id = 1`).
		Scan(&m.USDToIQD, &m.IQDToUSD, &m.LastUpdatedAt)
	if err != nil {
		mapped := mapError(err, "load live rate")
		if isNotFound(mapped) {
			return domain.ExchangeRate{}, fmt.Errorf("%w: live rate is not set", apperrors.ErrMissingExchangeRate)
		}
		return domain.ExchangeRate{}, mapped
	}
	return mapping.ToDomainExchangeRate(m), nil
}

func (s *txStore) SetCurrentRate(ctx context.Context, rate domain.ExchangeRate) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := rate.Validate(); err != nil {
		return err
	}
	_, err := s.tx.Exec(ctx, `
		INSERT INTO exchange_rates (id, usd_to_iqd, iqd_to_usd, last_updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE SET
			usd_to_iqd = EXCLUDED.usd_to_iqd,
			iqd_to_usd = EXCLUDED.iqd_to_usd,
			last_updated_at = EXCLUDED.last_updated_at`,
		rate.USDToIQD, rate.IQDToUSD)
	return mapError(err, "set live rate")
}
